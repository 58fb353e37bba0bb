package schemawatch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novrain/SL-651/internal/metrics"
	"github.com/novrain/SL-651/internal/packet"
	"github.com/novrain/SL-651/internal/protocol/sl651"
)

const levelSchema = `{
  "schemaName": "level",
  "functionCode": "34",
  "elements": [
    {"type": "number", "identifierLeader": "39", "dataDef": "23", "dataSource": "station.level"}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistry_CreatePacket(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "level.json", levelSchema)

	m := metrics.NewCodecMetrics(metrics.NewRegistry())
	reg := NewRegistry(nil, packet.MapSource{"station.level": 1.5}, m, nil)
	n, err := reg.LoadDirectory(dir)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	t.Run("默认数据源", func(t *testing.T) {
		pkg, err := reg.CreatePacket("level", nil)
		require.NoError(t, err)
		el, _ := pkg.GetElement(0)
		assert.Equal(t, 1.5, el.(*sl651.NumberElement).Float())
	})

	t.Run("请求数据优先", func(t *testing.T) {
		pkg, err := reg.CreatePacket("level", packet.MapSource{"station.level": 2.25})
		require.NoError(t, err)
		el, _ := pkg.GetElement(0)
		assert.Equal(t, 2.25, el.(*sl651.NumberElement).Float())
	})

	t.Run("模板不存在", func(t *testing.T) {
		_, err := reg.CreatePacket("missing", nil)
		assert.ErrorIs(t, err, ErrSchemaNotFound)
	})
}

func TestRegistry_NoSourceFailsClosed(t *testing.T) {
	dir := t.TempDir()
	reg := NewRegistry(nil, nil, nil, nil)
	_, err := reg.LoadFile(writeFile(t, dir, "level.json", levelSchema))
	require.NoError(t, err)

	_, err = reg.CreatePacket("level", nil)
	assert.ErrorIs(t, err, packet.ErrUnresolvedDataSource)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "level.json", levelSchema)
	reg := NewRegistry(nil, packet.MapSource{"station.level": 1}, nil, nil)
	_, err := reg.LoadFile(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = reg.LoadFile(path)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := reg.CreatePacket("level", nil)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, reg.Len())
}
