package packet

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document 报文模板文档（JSON/YAML 解析后的对象）
type Document map[string]any

// ParseDocument 按扩展名解析模板文档，.json 以外的扩展名按 YAML 处理
func ParseDocument(path string, data []byte) (Document, error) {
	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal schema %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal schema %s: %w", path, err)
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidSchema, path)
	}
	return doc, nil
}

// Has 字段是否存在
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// String 读取字符串字段
func (d Document) String(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

// Uint8 读取单字节字段；字符串按十六进制解析（"2F"、"0x2F"），数值须为 0-255 的整数
func (d Document) Uint8(key string) (uint8, bool) {
	switch v := d[key].(type) {
	case string:
		s := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(v), "0x"), "0X")
		n, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 0, false
		}
		return uint8(n), true
	default:
		f, ok := d.Float(key)
		if !ok || f < 0 || f > math.MaxUint8 || f != math.Trunc(f) {
			return 0, false
		}
		return uint8(f), true
	}
}

// Float 读取数值字段，兼容 JSON 与 YAML 的数值类型
func (d Document) Float(key string) (float64, bool) {
	switch v := d[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Bool 读取开关字段，非 0 数值视为 true
func (d Document) Bool(key string) bool {
	if b, ok := d[key].(bool); ok {
		return b
	}
	f, ok := d.Float(key)
	return ok && f != 0
}

// Elements 读取要素片段数组；字段缺失时返回空，类型不符时 ok 为 false
func (d Document) Elements(key string) ([]Document, bool) {
	raw, exists := d[key]
	if !exists || raw == nil {
		return nil, true
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Document, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			out = append(out, Document(v))
		case Document:
			out = append(out, v)
		default:
			// 非对象片段保留为空文档，创建时按无效模板处理
			out = append(out, Document{})
		}
	}
	return out, true
}
