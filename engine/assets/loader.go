package assets

// Loader produces a Document from a path. The engine reloads through it at
// the start of every session.
type Loader interface {
	Load(path string) (*Document, error)
}

type JSONLoader struct{}

func (JSONLoader) Load(path string) (*Document, error) {
	return LoadDocument(path)
}
