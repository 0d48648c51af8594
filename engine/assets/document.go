package assets

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/renderer/geometry"
)

// Document is the viewer input: a JSON object with the SDF shader under
// "text" and point geometry under "data".
type Document struct {
	Path string
	// Text is the WGSL source. Empty when the value is not a string.
	Text string
	// Data is the decoded "data" value. Numbers are json.Number.
	Data     interface{}
	LoadedAt time.Time
}

// Geometry encodes Data for the SDF pass. Never empty.
func (d *Document) Geometry() []byte {
	return geometry.Encode(d.Data)
}

// LoadDocument opens and parses the document at path.
func LoadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMissingDocument, err)
	}
	defer f.Close()

	return ParseDocument(path, f)
}

// ParseDocument decodes a document. Both keys are required; values of the
// wrong type degrade to an empty shader or the placeholder geometry.
func ParseDocument(path string, r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var root interface{}
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedDocument, path, err)
	}
	obj, ok := root.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s: top level is not an object", core.ErrMalformedDocument, path)
	}

	for _, key := range []string{"text", "data"} {
		if _, ok := obj[key]; !ok {
			return nil, fmt.Errorf("%w: %s: missing %q key", core.ErrMalformedDocument, path, key)
		}
	}

	doc := &Document{Path: path, LoadedAt: time.Now(), Data: obj["data"]}

	switch text := obj["text"].(type) {
	case string:
		doc.Text = text
	default:
		core.LogWarn("document %s: \"text\" is a %T, using an empty shader", path, text)
	}

	return doc, nil
}
