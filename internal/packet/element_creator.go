package packet

import (
	"fmt"
	"math"
	"sort"

	"github.com/novrain/SL-651/internal/protocol/sl651"
)

// 要素片段字段
const (
	fieldType              = "type"
	fieldIdentifierLeader  = "identifierLeader"
	fieldDataDef           = "dataDef"
	fieldSupportSignedFlag = "supportSignedFlag"
	fieldDataSource        = "dataSource"
	fieldValue             = "value"

	// InlineValueSelector 取值来自片段自身的 value 字段
	InlineValueSelector = "valueField"
)

// ElementCreator 按要素片段创建要素
type ElementCreator interface {
	CreateElement(data DataSource) (sl651.Element, error)
}

// ElementCreatorFunc 由要素片段构造 ElementCreator
type ElementCreatorFunc func(fragment Document) ElementCreator

var elementCreators = map[string]ElementCreatorFunc{
	"number": func(fragment Document) ElementCreator { return NewNumberElementCreator(fragment) },
}

// RegisterElementCreator 登记要素类型，应在初始化阶段调用
func RegisterElementCreator(typeName string, fn ElementCreatorFunc) {
	elementCreators[typeName] = fn
}

// ElementTypes 已登记的要素类型名
func ElementTypes() []string {
	names := make([]string, 0, len(elementCreators))
	for name := range elementCreators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newElementCreator(fragment Document) (ElementCreator, error) {
	typeName, ok := fragment.String(fieldType)
	if !ok {
		return nil, fmt.Errorf("%w: element without type", ErrInvalidSchema)
	}
	fn, ok := elementCreators[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: unknown element type %q", ErrInvalidSchema, typeName)
	}
	return fn(fragment), nil
}

// NumberElementCreator 数值要素
//
//	{"type": "number", "identifierLeader": "39", "dataDef": "23",
//	 "supportSignedFlag": true, "dataSource": "valueField", "value": 12.345}
//
// dataSource 为 valueField 时取 value 字段，否则作为键交给 DataSource 查询
type NumberElementCreator struct {
	schema Document
}

func NewNumberElementCreator(schema Document) *NumberElementCreator {
	return &NumberElementCreator{schema: schema}
}

func (c *NumberElementCreator) CreateElement(data DataSource) (sl651.Element, error) {
	leader, _ := c.schema.Uint8(fieldIdentifierLeader)
	dataDef, _ := c.schema.Uint8(fieldDataDef)
	selector, hasSelector := c.schema.String(fieldDataSource)
	if leader == 0 || dataDef == 0 || !hasSelector {
		return nil, fmt.Errorf("%w: number element needs %s, %s and %s",
			ErrInvalidSchema, fieldIdentifierLeader, fieldDataDef, fieldDataSource)
	}
	if !sl651.IsNumberElement(leader) {
		return nil, fmt.Errorf("%w: 0x%02X is not a number identifier", ErrInvalidSchema, leader)
	}

	v, err := c.value(selector, data)
	if err != nil {
		return nil, err
	}

	el := sl651.NewNumberElement(leader, dataDef, c.schema.Bool(fieldSupportSignedFlag))
	if math.Abs(v*math.Pow10(el.Precision())) >= maxScaled {
		return nil, fmt.Errorf("element 0x%02X: %w: value %v", leader, sl651.ErrValueOutOfRange, v)
	}
	if el.IsInteger() {
		el.SetInteger(int64(math.Round(v)))
	} else {
		el.SetFloat(v)
	}
	// 试编码，宽度或符号不满足时在创建阶段失败
	if err := el.Encode(sl651.NewBuffer(el.Size())); err != nil {
		return nil, fmt.Errorf("element 0x%02X: %w", leader, err)
	}
	return el, nil
}

// maxScaled 缩放后的值需能放入 int64
const maxScaled = 1e18

func (c *NumberElementCreator) value(selector string, data DataSource) (float64, error) {
	if selector == InlineValueSelector {
		v, ok := c.schema.Float(fieldValue)
		if !ok {
			return 0, fmt.Errorf("%w: %s selected but %s missing", ErrInvalidSchema, InlineValueSelector, fieldValue)
		}
		return v, nil
	}
	if data == nil {
		return 0, fmt.Errorf("%w: no data source for key %q", ErrUnresolvedDataSource, selector)
	}
	v, err := data.Resolve(selector)
	if err != nil {
		return 0, fmt.Errorf("%w: key %q: %w", ErrUnresolvedDataSource, selector, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: key %q resolved to %v", ErrUnresolvedDataSource, selector, v)
	}
	return v, nil
}
