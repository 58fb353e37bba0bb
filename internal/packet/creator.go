package packet

import (
	"fmt"
	"strings"

	"github.com/novrain/SL-651/internal/protocol/sl651"
)

// 模板文档字段
const (
	fieldSchemaName   = "schemaName"
	fieldFunctionCode = "functionCode"
	fieldDirection    = "direction"
	fieldElements     = "elements"
)

// Creator 报文模板：按模板声明的要素顺序生成报文
type Creator struct {
	schema    Document
	name      string
	funcCode  sl651.FunctionCode
	direction sl651.Direction
	fragments []Document
}

// NewCreator 校验模板文档：必须包含字符串 schemaName 与 functionCode（字符串或数值）
func NewCreator(schema Document) (*Creator, error) {
	name, ok := schema.String(fieldSchemaName)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidSchema, fieldSchemaName)
	}
	fc, ok := schema.Uint8(fieldFunctionCode)
	if !ok {
		return nil, fmt.Errorf("%w: schema %q: bad %s", ErrInvalidSchema, name, fieldFunctionCode)
	}
	fragments, ok := schema.Elements(fieldElements)
	if !ok {
		return nil, fmt.Errorf("%w: schema %q: %s must be an array", ErrInvalidSchema, name, fieldElements)
	}
	return &Creator{
		schema:    schema,
		name:      name,
		funcCode:  sl651.FunctionCode(fc),
		direction: parseDirection(schema),
		fragments: fragments,
	}, nil
}

// direction 为 1 或 "down" 时是下行，其余按上行处理
func parseDirection(schema Document) sl651.Direction {
	if s, ok := schema.String(fieldDirection); ok {
		if strings.EqualFold(s, "down") {
			return sl651.Down
		}
		return sl651.Up
	}
	if f, ok := schema.Float(fieldDirection); ok && f == float64(sl651.Down) {
		return sl651.Down
	}
	return sl651.Up
}

// SchemaName 模板名称
func (c *Creator) SchemaName() string { return c.name }

// SameSchema 模板名称相同即视为同一模板
func (c *Creator) SameSchema(other *Creator) bool {
	return other != nil && c.name == other.name
}

func (c *Creator) FunctionCode() sl651.FunctionCode { return c.funcCode }

func (c *Creator) Direction() sl651.Direction { return c.direction }

// ElementCount 模板声明的要素个数，即生成报文的要素容量
func (c *Creator) ElementCount() int { return len(c.fragments) }

// Schema 原始模板文档
func (c *Creator) Schema() Document { return c.schema }

// CreatePacket 按模板生成报文，任一要素失败则整体失败，不返回半成品
// 成功时只填写功能码，地址、密码、流水号与时间由调用方补齐
func (c *Creator) CreatePacket(data DataSource) (sl651.Message, error) {
	msg := sl651.NewMessage(c.direction, len(c.fragments))
	for i, fragment := range c.fragments {
		ec, err := newElementCreator(fragment)
		if err != nil {
			return nil, fmt.Errorf("schema %q element %d: %w", c.name, i, err)
		}
		el, err := ec.CreateElement(data)
		if err != nil {
			return nil, fmt.Errorf("schema %q element %d: %w", c.name, i, err)
		}
		if err := msg.PushElement(el); err != nil {
			return nil, fmt.Errorf("schema %q element %d: %w", c.name, i, err)
		}
	}
	msg.Head().FuncCode = c.funcCode
	return msg, nil
}
