package redis

import (
	"errors"
	"sync"
	"time"
)

// BreakerState 熔断器状态
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // 放行
	BreakerOpen                         // 拒绝，直到冷却结束
	BreakerHalfOpen                     // 放行少量试探请求
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

const (
	DefaultBreakerThreshold = 5
	DefaultBreakerCooldown  = 30 * time.Second
	defaultHalfOpenProbes   = 4
)

var (
	// ErrBreakerOpen Redis 连续失败后熔断，取值直接拒绝
	ErrBreakerOpen = errors.New("redis breaker is open")
	// ErrBreakerProbing 半开状态试探名额已用完
	ErrBreakerProbing = errors.New("redis breaker is probing")
)

// Breaker 保护 Redis 取值的熔断器。
// 只有连接类错误计入失败，键不存在由调用方视为成功。
type Breaker struct {
	mu        sync.Mutex
	state     BreakerState
	failures  int
	probes    int
	successes int
	openedAt  time.Time
	changedAt time.Time
	trips     int64

	threshold int
	cooldown  time.Duration
	maxProbes int

	now      func() time.Time
	onChange func(from, to BreakerState)
}

// NewBreaker 创建熔断器，threshold 或 cooldown 非正时取默认值
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = DefaultBreakerThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultBreakerCooldown
	}
	b := &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		maxProbes: defaultHalfOpenProbes,
		now:       time.Now,
	}
	b.changedAt = b.now()
	return b
}

// OnStateChange 设置状态变化回调，回调在锁外同步执行
func (b *Breaker) OnStateChange(fn func(from, to BreakerState)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Do 在熔断器保护下执行 fn
func (b *Breaker) Do(fn func() error) error {
	if err := b.acquire(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	var from, to BreakerState
	changed := false
	defer func() {
		cb := b.onChange
		b.mu.Unlock()
		if changed && cb != nil {
			cb(from, to)
		}
	}()

	switch b.state {
	case BreakerClosed:
		return nil
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return ErrBreakerOpen
		}
		from, to, changed = b.state, BreakerHalfOpen, true
		b.enter(BreakerHalfOpen)
		b.probes = 1
		return nil
	default:
		if b.probes >= b.maxProbes {
			return ErrBreakerProbing
		}
		b.probes++
		return nil
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	from := b.state
	switch {
	case err != nil && b.state == BreakerHalfOpen:
		b.trip()
	case err != nil:
		b.failures++
		if b.failures >= b.threshold {
			b.trip()
		}
	case b.state == BreakerHalfOpen:
		b.successes++
		if b.successes >= b.maxProbes/2 {
			b.enter(BreakerClosed)
		}
	default:
		b.failures = 0
	}
	to, cb := b.state, b.onChange
	b.mu.Unlock()
	if from != to && cb != nil {
		cb(from, to)
	}
}

func (b *Breaker) trip() {
	b.enter(BreakerOpen)
	b.openedAt = b.now()
	b.trips++
}

func (b *Breaker) enter(s BreakerState) {
	b.state = s
	b.failures, b.successes, b.probes = 0, 0, 0
	b.changedAt = b.now()
}

// State 当前状态
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset 手动恢复为放行状态
func (b *Breaker) Reset() {
	b.mu.Lock()
	b.enter(BreakerClosed)
	b.mu.Unlock()
}

// BreakerStats 熔断器统计
type BreakerStats struct {
	State           string    `json:"state"`
	Failures        int       `json:"failures"`
	Trips           int64     `json:"trips"`
	LastStateChange time.Time `json:"last_state_change"`
}

// Stats 统计快照
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerStats{
		State:           b.state.String(),
		Failures:        b.failures,
		Trips:           b.trips,
		LastStateChange: b.changedAt,
	}
}
