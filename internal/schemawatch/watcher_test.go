package schemawatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novrain/SL-651/internal/protocol/sl651"
)

func startWatcher(t *testing.T, reg *Registry, dir string) {
	t.Helper()
	w, err := NewWatcher(reg, dir, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
}

func TestWatcher_ReloadsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	reg := NewRegistry(nil, nil, nil, nil)
	startWatcher(t, reg, dir)

	writeFile(t, dir, "keepalive.json", `{"schemaName":"keepalive","functionCode":"2F"}`)
	assert.Eventually(t, func() bool {
		return reg.Get("keepalive") != nil
	}, 2*time.Second, 10*time.Millisecond)

	writeFile(t, dir, "keepalive.json", `{"schemaName":"keepalive","functionCode":"2F","direction":1}`)
	assert.Eventually(t, func() bool {
		c := reg.Get("keepalive")
		return c != nil && c.Direction() == sl651.Down
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, reg.Len())
}

func TestWatcher_IgnoresInvalidAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	reg := NewRegistry(nil, nil, nil, nil)
	startWatcher(t, reg, dir)

	writeFile(t, dir, "notes.txt", `{"schemaName":"txt","functionCode":"2F"}`)
	writeFile(t, dir, "broken.json", `{"schemaName":`)
	writeFile(t, dir, "hour.yaml", "schemaName: hour\nfunctionCode: \"34\"\n")

	assert.Eventually(t, func() bool {
		return reg.Get("hour") != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Nil(t, reg.Get("txt"))
	assert.Equal(t, 1, reg.Len())
}

func TestNewWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(NewRegistry(nil, nil, nil, nil), "/nonexistent/sl651/schemas", 0, nil)
	assert.Error(t, err)
}
