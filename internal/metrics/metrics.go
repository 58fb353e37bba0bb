package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/novrain/SL-651/internal/packet"
	"github.com/novrain/SL-651/internal/protocol/sl651"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// CodecMetrics 编解码与模板相关指标
type CodecMetrics struct {
	FrameEncodeTotal    *prometheus.CounterVec // labels: direction, result
	FrameDecodeTotal    *prometheus.CounterVec // labels: direction, result
	PacketCreateTotal   *prometheus.CounterVec // labels: schema, result
	SchemaReloadTotal   *prometheus.CounterVec // labels: result
	SchemasLoaded       prometheus.Gauge       // 当前登记的模板数
	ConsoleRequestTotal *prometheus.CounterVec // labels: route, code
}

// NewCodecMetrics 注册并返回编解码指标
func NewCodecMetrics(reg prometheus.Registerer) *CodecMetrics {
	m := &CodecMetrics{
		FrameEncodeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sl651_frame_encode_total",
			Help: "SL651 frame encode attempts.",
		}, []string{"direction", "result"}),
		FrameDecodeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sl651_frame_decode_total",
			Help: "SL651 frame decode attempts.",
		}, []string{"direction", "result"}),
		PacketCreateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sl651_packet_create_total",
			Help: "Packets instantiated from schemas.",
		}, []string{"schema", "result"}),
		SchemaReloadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sl651_schema_reload_total",
			Help: "Schema file reloads triggered by the directory watcher.",
		}, []string{"result"}),
		SchemasLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sl651_schemas_loaded",
			Help: "Current number of registered schemas.",
		}),
		ConsoleRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sl651_console_request_total",
			Help: "Codec console requests by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(m.FrameEncodeTotal, m.FrameDecodeTotal, m.PacketCreateTotal,
		m.SchemaReloadTotal, m.SchemasLoaded, m.ConsoleRequestTotal)
	return m
}

// ResultOK 成功时的 result 标签
const ResultOK = "ok"

var resultLabels = []struct {
	err   error
	label string
}{
	{sl651.ErrMalformedHead, "malformed_head"},
	{sl651.ErrChecksumMismatch, "checksum_mismatch"},
	{sl651.ErrUnknownIdentifier, "unknown_identifier"},
	{sl651.ErrTruncatedElement, "truncated_element"},
	{sl651.ErrIncompleteMessage, "incomplete_message"},
	{sl651.ErrTrailingBytes, "trailing_bytes"},
	{sl651.ErrValueOutOfRange, "value_out_of_range"},
	{sl651.ErrInvalidBCD, "invalid_bcd"},
	{packet.ErrInvalidSchema, "invalid_schema"},
	{packet.ErrUnresolvedDataSource, "unresolved_data_source"},
}

// Result 将错误归类为低基数的 result 标签
func Result(err error) string {
	if err == nil {
		return ResultOK
	}
	for _, r := range resultLabels {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "error"
}
