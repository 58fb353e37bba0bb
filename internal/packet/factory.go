package packet

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultExtensions 目录加载时识别的模板文件扩展名
var DefaultExtensions = []string{".json", ".yaml", ".yml"}

// Factory 按模板名称登记的 Creator 集合，保持加载顺序
// 非并发安全，需要并发访问时由上层加锁
type Factory struct {
	creators   []*Creator
	extensions map[string]bool
	logger     *zap.Logger
}

// Option Factory 选项
type Option func(*Factory)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithExtensions 设置目录加载识别的扩展名（含点号）
func WithExtensions(exts ...string) Option {
	return func(f *Factory) {
		if len(exts) == 0 {
			return
		}
		f.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			f.extensions[ext] = true
		}
	}
}

func NewFactory(opts ...Option) *Factory {
	f := &Factory{logger: zap.NewNop()}
	WithExtensions(DefaultExtensions...)(f)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Push 登记 Creator；同名模板原位替换，返回是否发生替换
func (f *Factory) Push(c *Creator) bool {
	if c == nil {
		return false
	}
	for i, old := range f.creators {
		if old.SameSchema(c) {
			f.creators[i] = c
			return true
		}
	}
	f.creators = append(f.creators, c)
	return false
}

// Get 按名称查找，不存在返回 nil
func (f *Factory) Get(name string) *Creator {
	for _, c := range f.creators {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (f *Factory) Len() int { return len(f.creators) }

// Names 按登记顺序返回模板名称
func (f *Factory) Names() []string {
	names := make([]string, len(f.creators))
	for i, c := range f.creators {
		names[i] = c.name
	}
	return names
}

// Creators 按登记顺序返回 Creator 列表的副本
func (f *Factory) Creators() []*Creator {
	out := make([]*Creator, len(f.creators))
	copy(out, f.creators)
	return out
}

// Accepts 扩展名是否为可加载的模板文件
func (f *Factory) Accepts(path string) bool {
	return f.extensions[strings.ToLower(filepath.Ext(path))]
}

// LoadFile 解析单个模板文件并登记；无效模板返回 ErrInvalidSchema，Factory 不变
func (f *Factory) LoadFile(path string) (*Creator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	doc, err := ParseDocument(path, data)
	if err != nil {
		return nil, err
	}
	c, err := NewCreator(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	replaced := f.Push(c)
	f.logger.Debug("schema loaded",
		zap.String("file", path),
		zap.String("schema", c.name),
		zap.Stringer("function_code", c.funcCode),
		zap.Int("elements", c.ElementCount()),
		zap.Bool("replaced", replaced))
	return c, nil
}

// LoadDirectory 按文件名顺序加载目录下的模板文件，单个文件失败只记录并跳过
// 返回成功加载的个数；只有目录本身不可读时返回错误
func (f *Factory) LoadDirectory(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read schema dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !f.Accepts(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	loaded := 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := f.LoadFile(path); err != nil {
			f.logger.Warn("skip schema file", zap.String("file", path), zap.Error(err))
			continue
		}
		loaded++
	}
	f.logger.Info("schema directory loaded",
		zap.String("dir", dir),
		zap.Int("loaded", loaded),
		zap.Int("skipped", len(names)-loaded))
	return loaded, nil
}
