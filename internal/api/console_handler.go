package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/novrain/SL-651/internal/api/middleware"
	"github.com/novrain/SL-651/internal/metrics"
	"github.com/novrain/SL-651/internal/packet"
	"github.com/novrain/SL-651/internal/protocol/sl651"
	"github.com/novrain/SL-651/internal/schemawatch"
)

// ConsoleHandler 编解码控制台：按模板生成报文、解码报文
type ConsoleHandler struct {
	reg     *schemawatch.Registry
	metrics *metrics.CodecMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewConsoleHandler m 可为 nil
func NewConsoleHandler(reg *schemawatch.Registry, m *metrics.CodecMetrics, logger *zap.Logger) *ConsoleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleHandler{reg: reg, metrics: m, logger: logger, now: time.Now}
}

// ListSchemas 列出已登记的模板
func (h *ConsoleHandler) ListSchemas(c *gin.Context) {
	creators := h.reg.Creators()
	list := make([]SchemaInfo, 0, len(creators))
	for _, cr := range creators {
		list = append(list, SchemaInfo{
			Name:         cr.SchemaName(),
			FunctionCode: hexByte(uint8(cr.FunctionCode())),
			FunctionName: cr.FunctionCode().String(),
			Direction:    cr.Direction().String(),
			Elements:     cr.ElementCount(),
		})
	}
	respondOK(c, list)
}

// CreateFrame 按模板生成报文并编码为十六进制
func (h *ConsoleHandler) CreateFrame(c *gin.Context) {
	name := c.Param("name")
	var req CreateFrameRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	var extra packet.DataSource
	if len(req.Data) > 0 {
		extra = packet.MapSource(req.Data)
	}
	msg, err := h.reg.CreatePacket(name, extra)
	if err != nil {
		h.logger.Warn("create packet failed",
			zap.String("schema", name),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err))
		respondError(c, statusFor(err), err.Error())
		return
	}
	if err := req.Head.apply(msg, h.now()); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	b := sl651.NewBuffer(msg.Size())
	err = msg.Encode(b)
	h.observe(encodeCounter, msg.Direction(), err)
	if err != nil {
		respondError(c, statusFor(err), err.Error())
		return
	}
	respondOK(c, FrameView{
		Schema:       name,
		FunctionCode: hexByte(uint8(msg.Head().FuncCode)),
		Direction:    msg.Direction().String(),
		Size:         b.Len(),
		Hex:          sl651.BytesToHex(b.Bytes()),
	})
}

// DecodeFrame 解码十六进制报文
func (h *ConsoleHandler) DecodeFrame(c *gin.Context) {
	var req DecodeFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if *req.Elements < 0 {
		respondError(c, http.StatusBadRequest, "elements must not be negative")
		return
	}
	raw, err := sl651.HexToBytes(req.Hex)
	if err != nil {
		respondError(c, http.StatusBadRequest, "hex: "+err.Error())
		return
	}
	// 每个要素至少占一个标识符
	if *req.Elements > len(raw)/sl651.ElementIdentifierLen {
		respondError(c, http.StatusBadRequest,
			fmt.Sprintf("elements %d exceeds what %d frame bytes can hold", *req.Elements, len(raw)))
		return
	}

	dir := sl651.Up
	if strings.EqualFold(req.Direction, "down") {
		dir = sl651.Down
	}
	msg := sl651.NewMessage(dir, *req.Elements)
	r := sl651.NewReader(raw)
	err = msg.Decode(r)
	if err == nil && r.Remaining() > 0 {
		// 单帧解码，多余数据视为错误
		err = sl651.ErrTrailingBytes
	}
	h.observe(decodeCounter, dir, err)
	if err != nil {
		h.logger.Info("decode frame failed",
			zap.String("direction", dir.String()),
			zap.String("result", metrics.Result(err)),
			zap.Error(err))
		respondError(c, statusFor(err), err.Error())
		return
	}

	elements := msg.Elements()
	views := make([]ElementView, 0, len(elements))
	for _, el := range elements {
		views = append(views, describeElement(el))
	}
	respondOK(c, DecodedFrame{
		Head:        describeHead(msg),
		MessageHead: describeMessageHead(msg),
		Elements:    views,
	})
}

func (h *ConsoleHandler) observe(vec func(*metrics.CodecMetrics) *prometheus.CounterVec, dir sl651.Direction, err error) {
	if h.metrics == nil {
		return
	}
	vec(h.metrics).WithLabelValues(dir.String(), metrics.Result(err)).Inc()
}

func encodeCounter(m *metrics.CodecMetrics) *prometheus.CounterVec { return m.FrameEncodeTotal }

func decodeCounter(m *metrics.CodecMetrics) *prometheus.CounterVec { return m.FrameDecodeTotal }

// statusFor 将领域错误映射为 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, schemawatch.ErrSchemaNotFound):
		return http.StatusNotFound
	case errors.Is(err, packet.ErrInvalidSchema),
		errors.Is(err, packet.ErrUnresolvedDataSource),
		errors.Is(err, sl651.ErrValueOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sl651.ErrMalformedHead),
		errors.Is(err, sl651.ErrChecksumMismatch),
		errors.Is(err, sl651.ErrUnknownIdentifier),
		errors.Is(err, sl651.ErrTruncatedElement),
		errors.Is(err, sl651.ErrIncompleteMessage),
		errors.Is(err, sl651.ErrTrailingBytes),
		errors.Is(err, sl651.ErrInvalidBCD):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func hexByte(b uint8) string {
	return fmt.Sprintf("%02X", b)
}
