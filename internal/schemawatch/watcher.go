package schemawatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/novrain/SL-651/internal/metrics"
)

// DefaultDebounce 同一批文件事件的合并窗口
const DefaultDebounce = 200 * time.Millisecond

// Watcher 监听模板目录，新建或修改的模板文件重新加载到 Registry
// 删除文件只记录日志，已登记的模板保留
type Watcher struct {
	reg      *Registry
	dir      string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *zap.Logger
}

func NewWatcher(reg *Registry, dir string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("new fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{reg: reg, dir: dir, debounce: debounce, fsw: fsw, logger: logger}, nil
}

// Run 处理文件事件直到 ctx 取消或 Close
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	w.logger.Info("schema watcher started", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.reg.Accepts(ev.Name) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
				pending[ev.Name] = struct{}{}
				if timer == nil {
					timer = time.NewTimer(w.debounce)
					fire = timer.C
				} else {
					timer.Reset(w.debounce)
				}
			case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
				w.logger.Info("schema file removed, registered schema kept", zap.String("file", ev.Name))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("schema watcher error", zap.Error(err))
		case <-fire:
			w.reload(pending)
			pending = make(map[string]struct{})
			timer, fire = nil, nil
		}
	}
}

func (w *Watcher) reload(pending map[string]struct{}) {
	files := make([]string, 0, len(pending))
	for f := range pending {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, f := range files {
		c, err := w.reg.LoadFile(f)
		if w.reg.metrics != nil {
			w.reg.metrics.SchemaReloadTotal.WithLabelValues(metrics.Result(err)).Inc()
		}
		if err != nil {
			w.logger.Warn("schema reload failed", zap.String("file", f), zap.Error(err))
			continue
		}
		w.logger.Info("schema reloaded", zap.String("file", f), zap.String("schema", c.SchemaName()))
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}
