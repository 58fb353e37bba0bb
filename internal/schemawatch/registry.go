package schemawatch

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/novrain/SL-651/internal/metrics"
	"github.com/novrain/SL-651/internal/packet"
	"github.com/novrain/SL-651/internal/protocol/sl651"
)

// ErrSchemaNotFound 模板未登记
var ErrSchemaNotFound = errors.New("schemawatch: schema not found")

// Registry 并发安全的模板登记表，包装 packet.Factory
type Registry struct {
	mu      sync.RWMutex
	factory *packet.Factory
	source  packet.DataSource
	metrics *metrics.CodecMetrics
	logger  *zap.Logger
}

// NewRegistry source 为非内联要素的默认数据源，可为 nil；m 可为 nil
func NewRegistry(factory *packet.Factory, source packet.DataSource, m *metrics.CodecMetrics, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if factory == nil {
		factory = packet.NewFactory(packet.WithLogger(logger))
	}
	return &Registry{factory: factory, source: source, metrics: m, logger: logger}
}

func (r *Registry) LoadDirectory(dir string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.factory.LoadDirectory(dir)
	r.updateGauge()
	return n, err
}

func (r *Registry) LoadFile(path string) (*packet.Creator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.factory.LoadFile(path)
	r.updateGauge()
	return c, err
}

// Push 直接登记已构造的模板
func (r *Registry) Push(c *packet.Creator) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	replaced := r.factory.Push(c)
	r.updateGauge()
	return replaced
}

func (r *Registry) Get(name string) *packet.Creator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factory.Get(name)
}

func (r *Registry) Creators() []*packet.Creator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factory.Creators()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factory.Len()
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factory.Names()
}

// Accepts 扩展名是否为可加载的模板文件
func (r *Registry) Accepts(path string) bool {
	return r.factory.Accepts(path)
}

// CreatePacket 按名称生成报文；extra 优先于默认数据源
func (r *Registry) CreatePacket(name string, extra packet.DataSource) (sl651.Message, error) {
	c := r.Get(name)
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrSchemaNotFound, name)
	}
	var data packet.DataSource
	switch {
	case extra != nil && r.source != nil:
		data = packet.ChainSource{extra, r.source}
	case extra != nil:
		data = extra
	default:
		data = r.source
	}
	pkg, err := c.CreatePacket(data)
	if r.metrics != nil {
		r.metrics.PacketCreateTotal.WithLabelValues(name, metrics.Result(err)).Inc()
	}
	if err != nil {
		r.logger.Debug("create packet failed", zap.String("schema", name), zap.Error(err))
		return nil, err
	}
	return pkg, nil
}

func (r *Registry) updateGauge() {
	if r.metrics != nil {
		r.metrics.SchemasLoaded.Set(float64(r.factory.Len()))
	}
}
