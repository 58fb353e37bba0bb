package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/novrain/SL-651/internal/config"
	"github.com/novrain/SL-651/internal/packet"
)

// 需要本地 Redis（localhost:6379, DB 15），不可用时跳过
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("Redis不可用，跳过测试: %v", err)
	}
	t.Cleanup(func() {
		rdb.FlushDB(context.Background())
		_ = rdb.Close()
	})
	return rdb
}

func TestSource_Resolve(t *testing.T) {
	rdb := setupTestRedis(t)
	src := NewSource(rdb, "sl651:test:")
	ctx := context.Background()

	t.Run("命中", func(t *testing.T) {
		require.NoError(t, src.Store(ctx, "station.rain", 12.5, time.Minute))
		v, err := src.Resolve("station.rain")
		require.NoError(t, err)
		assert.Equal(t, 12.5, v)
	})

	t.Run("键不存在", func(t *testing.T) {
		_, err := src.Resolve("station.missing")
		assert.ErrorIs(t, err, packet.ErrUnresolvedDataSource)
	})

	t.Run("非数值", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, "sl651:test:bad", "abc", time.Minute).Err())
		_, err := src.Resolve("bad")
		assert.ErrorIs(t, err, packet.ErrUnresolvedDataSource)
	})
}

func TestSource_CreatePacket(t *testing.T) {
	rdb := setupTestRedis(t)
	src := NewSource(rdb, "sl651:test:")
	require.NoError(t, src.Store(context.Background(), "level", 3.25, time.Minute))

	c, err := packet.NewCreator(packet.Document{
		"schemaName":   "level",
		"functionCode": "34",
		"elements": []any{map[string]any{
			"type":             "number",
			"identifierLeader": "39",
			"dataDef":          "23",
			"dataSource":       "level",
		}},
	})
	require.NoError(t, err)

	pkg, err := c.CreatePacket(src)
	require.NoError(t, err)
	assert.Equal(t, 1, pkg.ElementCount())
}

func TestNewClient_Unreachable(t *testing.T) {
	// 保留端口 1 上不会有 Redis
	_, err := NewClient(cfgpkg.RedisConfig{
		Addr:        "127.0.0.1:1",
		PoolSize:    1,
		DialTimeout: 200 * time.Millisecond,
	})
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	opts := Options(cfgpkg.RedisConfig{
		Addr:        "redis:6379",
		DB:          3,
		PoolSize:    8,
		ReadTimeout: time.Second,
	})
	assert.Equal(t, "redis:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 8, opts.PoolSize)
	assert.Equal(t, time.Second, opts.ReadTimeout)
}
