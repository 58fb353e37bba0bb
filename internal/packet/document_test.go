package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Uint8(t *testing.T) {
	doc := Document{
		"hex":      "2F",
		"prefixed": "0x39",
		"number":   float64(47),
		"yamlInt":  52,
		"fraction": 1.5,
		"negative": float64(-1),
		"tooLarge": 300,
		"badHex":   "ZZ",
	}

	tests := []struct {
		key  string
		want uint8
		ok   bool
	}{
		{"hex", 0x2F, true},
		{"prefixed", 0x39, true},
		{"number", 47, true},
		{"yamlInt", 52, true},
		{"fraction", 0, false},
		{"negative", 0, false},
		{"tooLarge", 0, false},
		{"badHex", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := doc.Uint8(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocument_Bool(t *testing.T) {
	doc := Document{"t": true, "one": float64(1), "zero": 0, "s": "true"}
	assert.True(t, doc.Bool("t"))
	assert.True(t, doc.Bool("one"))
	assert.False(t, doc.Bool("zero"))
	assert.False(t, doc.Bool("s"))
	assert.False(t, doc.Bool("missing"))
}

func TestDocument_Elements(t *testing.T) {
	t.Run("缺失视为空", func(t *testing.T) {
		els, ok := Document{}.Elements("elements")
		assert.True(t, ok)
		assert.Empty(t, els)
	})

	t.Run("类型错误", func(t *testing.T) {
		_, ok := Document{"elements": "x"}.Elements("elements")
		assert.False(t, ok)
	})

	t.Run("混合片段", func(t *testing.T) {
		doc := Document{"elements": []any{
			map[string]any{"type": "number"},
			Document{"type": "number"},
			"bogus",
		}}
		els, ok := doc.Elements("elements")
		require.True(t, ok)
		require.Len(t, els, 3)
		assert.Equal(t, "number", els[0]["type"])
		assert.Equal(t, "number", els[1]["type"])
		assert.Empty(t, els[2])
	})
}

func TestParseDocument(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		doc, err := ParseDocument("a.json", []byte(`{"schemaName":"x","functionCode":"2F","elements":[{"type":"number"}]}`))
		require.NoError(t, err)
		fc, ok := doc.Uint8("functionCode")
		assert.True(t, ok)
		assert.Equal(t, uint8(0x2F), fc)
		els, ok := doc.Elements("elements")
		require.True(t, ok)
		assert.Len(t, els, 1)
	})

	t.Run("YAML", func(t *testing.T) {
		src := "schemaName: x\nfunctionCode: 0x34\nelements:\n  - type: number\n    dataDef: \"23\"\n"
		doc, err := ParseDocument("a.yaml", []byte(src))
		require.NoError(t, err)
		fc, ok := doc.Uint8("functionCode")
		assert.True(t, ok)
		assert.Equal(t, uint8(0x34), fc)
		els, ok := doc.Elements("elements")
		require.True(t, ok)
		require.Len(t, els, 1)
		dd, ok := els[0].Uint8("dataDef")
		assert.True(t, ok)
		assert.Equal(t, uint8(0x23), dd)
	})

	t.Run("语法错误", func(t *testing.T) {
		_, err := ParseDocument("a.json", []byte(`{`))
		assert.Error(t, err)
	})

	t.Run("空文档", func(t *testing.T) {
		_, err := ParseDocument("a.yml", []byte(""))
		assert.ErrorIs(t, err, ErrInvalidSchema)
	})
}
