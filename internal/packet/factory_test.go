package packet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/novrain/SL-651/internal/protocol/sl651"
)

func writeSchema(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mustCreator(t *testing.T, doc Document) *Creator {
	t.Helper()
	c, err := NewCreator(doc)
	require.NoError(t, err)
	return c
}

func TestFactory_PushReplacesInPlace(t *testing.T) {
	f := NewFactory()
	a := mustCreator(t, Document{"schemaName": "a", "functionCode": "2F"})
	b := mustCreator(t, Document{"schemaName": "b", "functionCode": "34"})
	a2 := mustCreator(t, Document{"schemaName": "a", "functionCode": "30"})

	assert.False(t, f.Push(a))
	assert.False(t, f.Push(b))
	assert.True(t, f.Push(a2))
	assert.False(t, f.Push(nil))

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"a", "b"}, f.Names())
	assert.Same(t, a2, f.Get("a"))
	assert.Equal(t, sl651.FuncTest, f.Get("a").FunctionCode())
	assert.Nil(t, f.Get("missing"))
}

func TestFactory_LoadFileKeepalive(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, "keepalive.json",
		`{"schemaName":"keepalive","functionCode":47,"direction":0,"elements":[]}`)

	f := NewFactory()
	c, err := f.LoadFile(path)
	require.NoError(t, err)
	assert.Same(t, c, f.Get("keepalive"))

	pkg, err := c.CreatePacket(MapSource{})
	require.NoError(t, err)
	assert.Equal(t, sl651.Up, pkg.Direction())
	assert.Equal(t, sl651.FunctionCode(0x2F), pkg.Head().FuncCode)
	assert.Equal(t, 0, pkg.ElementCount())
}

func TestFactory_LoadFileInvalid(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory()

	for name, content := range map[string]string{
		"no_name.json": `{"functionCode":"2F"}`,
		"no_fc.json":   `{"schemaName":"x"}`,
		"bad_fc.json":  `{"schemaName":"x","functionCode":[1]}`,
		"broken.json":  `{"schemaName":`,
		"no_name.yaml": "functionCode: 0x2F\n",
	} {
		_, err := f.LoadFile(writeSchema(t, dir, name, content))
		assert.Error(t, err, name)
	}
	assert.Equal(t, 0, f.Len())

	_, err := f.LoadFile(filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}

func TestFactory_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "01_keepalive.json", `{"schemaName":"keepalive","functionCode":"2F"}`)
	writeSchema(t, dir, "02_broken.json", `{"schemaName":`)
	writeSchema(t, dir, "03_hour.yaml", `
schemaName: hour
functionCode: "34"
elements:
  - type: number
    identifierLeader: "39"
    dataDef: "23"
    dataSource: valueField
    value: 1.5
`)
	writeSchema(t, dir, "04_keepalive_v2.yml", "schemaName: keepalive\nfunctionCode: 0x2F\ndirection: 1\n")
	writeSchema(t, dir, "notes.txt", "schemaName: ignored\nfunctionCode: 1\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	core, logs := observer.New(zap.WarnLevel)
	f := NewFactory(WithLogger(zap.New(core)))
	n, err := f.LoadDirectory(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"keepalive", "hour"}, f.Names())
	assert.Equal(t, sl651.Down, f.Get("keepalive").Direction(), "later file replaces earlier one")
	assert.Equal(t, 1, logs.FilterMessage("skip schema file").Len())

	pkg, err := f.Get("hour").CreatePacket(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, pkg.ElementCount())
}

func TestFactory_LoadDirectoryMissing(t *testing.T) {
	_, err := NewFactory().LoadDirectory(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestFactory_WithExtensions(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "a.json", `{"schemaName":"a","functionCode":"2F"}`)
	writeSchema(t, dir, "b.yaml", "schemaName: b\nfunctionCode: \"2F\"\n")

	f := NewFactory(WithExtensions("yaml"))
	assert.True(t, f.Accepts("X.YAML"))
	assert.False(t, f.Accepts("a.json"))

	n, err := f.LoadDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"b"}, f.Names())
}

func TestFactory_LoadShippedSchemas(t *testing.T) {
	f := NewFactory()
	n, err := f.LoadDirectory(filepath.Join("..", "..", "schemas"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"hour", "keepalive", "query_element"}, f.Names())

	pkg, err := f.Get("hour").CreatePacket(MapSource{"station_level": -0.5, "station_rain": 2})
	require.NoError(t, err)
	b := sl651.NewBuffer(pkg.Size())
	require.NoError(t, pkg.Encode(b))

	decoded := sl651.NewUplinkMessage(3)
	require.NoError(t, decoded.Decode(sl651.NewReader(b.Bytes())))
	assert.Equal(t, pkg.Elements(), decoded.Elements())
}
