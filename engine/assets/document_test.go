package assets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/renderer/geometry"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
	"github.com/spaghettifunk/epifaneia/engine/renderer/shaders"
)

func parse(t *testing.T, src string) (*Document, error) {
	t.Helper()
	return ParseDocument("test.json", strings.NewReader(src))
}

func TestParseDocument(t *testing.T) {
	doc, err := parse(t, `{"text": "@vertex fn vs_main() {}", "data": [[[1, 2.5]]]}`)
	require.NoError(t, err)
	assert.Equal(t, "@vertex fn vs_main() {}", doc.Text)
	assert.Equal(t, []interface{}{[]interface{}{[]interface{}{json.Number("1"), json.Number("2.5")}}}, doc.Data)
	assert.Len(t, doc.Geometry(), 8)
}

func TestParseDocumentMalformed(t *testing.T) {
	for _, src := range []string{
		`[1, 2]`, `"text"`, `42`, `null`, `{"text": `, ``,
		`{}`, `{"text": "x"}`, `{"data": []}`, `{"Text": "x", "Data": []}`,
	} {
		_, err := parse(t, src)
		assert.ErrorIs(t, err, core.ErrMalformedDocument, src)
	}
}

func TestParseDocumentDegrades(t *testing.T) {
	doc, err := parse(t, `{"text": 12, "data": "nope"}`)
	require.NoError(t, err)
	assert.Equal(t, "", doc.Text)
	assert.Equal(t, geometry.Placeholder(), doc.Geometry())

	doc, err = parse(t, `{"text": null, "data": null}`)
	require.NoError(t, err)
	assert.Equal(t, "", doc.Text)
	assert.Nil(t, doc.Data)
	assert.Equal(t, geometry.Placeholder(), doc.Geometry())
}

func TestLoadDocument(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, core.ErrMissingDocument)

	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte("{\n\t\"text\": \"src\",\n\t\"data\": []\n}"), 0o644))
	doc, err := JSONLoader{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "src", doc.Text)
	assert.False(t, doc.LoadedAt.IsZero())
}

func TestSampleDocument(t *testing.T) {
	doc, err := LoadDocument(filepath.Join("..", "..", "testdata", "sample.json"))
	require.NoError(t, err)
	assert.Equal(t, shaders.SampleWGSL, doc.Text)
	assert.Len(t, doc.Geometry(), 64)

	words, err := shaders.Compile(&metadata.PipelineConfig{
		Label:              "sample",
		Source:             doc.Text,
		VertexEntryPoint:   shaders.VertexEntryPoint,
		FragmentEntryPoint: shaders.FragmentEntryPoint,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, words)
}
