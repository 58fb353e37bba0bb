package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/novrain/SL-651/internal/packet"
)

// DefaultResolveTimeout 单次取值超时
const DefaultResolveTimeout = time.Second

// Source 以 Redis 字符串键保存的要素取值，键为 prefix + 模板中的 dataSource
type Source struct {
	rdb     redis.Cmdable
	prefix  string
	timeout time.Duration
	breaker *Breaker
}

// NewSource 创建 Redis 数据源
func NewSource(rdb redis.Cmdable, prefix string) *Source {
	return &Source{rdb: rdb, prefix: prefix, timeout: DefaultResolveTimeout}
}

// WithTimeout 设置单次取值超时
func (s *Source) WithTimeout(d time.Duration) *Source {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// WithBreaker 以熔断器保护取值，熔断期间取值返回 ErrBreakerOpen
func (s *Source) WithBreaker(b *Breaker) *Source {
	s.breaker = b
	return s
}

// Breaker 返回熔断器，未设置时为 nil
func (s *Source) Breaker() *Breaker {
	return s.breaker
}

// Resolve 实现 packet.DataSource；键不存在或取值非数值时返回 ErrUnresolvedDataSource
func (s *Source) Resolve(key string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.ResolveContext(ctx, key)
}

// ResolveContext 带上下文的取值
func (s *Source) ResolveContext(ctx context.Context, key string) (float64, error) {
	raw, err := s.get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: key %q not in redis", packet.ErrUnresolvedDataSource, key)
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: key %q holds %q", packet.ErrUnresolvedDataSource, key, raw)
	}
	return v, nil
}

func (s *Source) get(ctx context.Context, key string) (string, error) {
	if s.breaker == nil {
		return s.rdb.Get(ctx, s.prefix+key).Result()
	}
	var raw string
	var missing bool
	err := s.breaker.Do(func() error {
		var err error
		raw, err = s.rdb.Get(ctx, s.prefix+key).Result()
		if errors.Is(err, redis.Nil) {
			missing = true
			return nil
		}
		return err
	})
	if missing {
		return "", redis.Nil
	}
	return raw, err
}

// Store 写入要素取值，ttl 为 0 表示不过期
func (s *Source) Store(ctx context.Context, key string, v float64, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.prefix+key, strconv.FormatFloat(v, 'f', -1, 64), ttl).Err()
}

var _ packet.DataSource = (*Source)(nil)
