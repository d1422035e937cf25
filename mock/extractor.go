package mock

import "github.com/fwojciec/curator"

var _ curator.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of curator.Extractor.
type Extractor struct {
	ExtractFn func(pkg *curator.Package, doc *curator.Document) ([]*curator.RawExample, error)
}

func (e *Extractor) Extract(pkg *curator.Package, doc *curator.Document) ([]*curator.RawExample, error) {
	return e.ExtractFn(pkg, doc)
}

var _ curator.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of curator.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) (*curator.ExtractResult, error)
}

func (e *ContentExtractor) Extract(html string) (*curator.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ curator.Converter = (*Converter)(nil)

// Converter is a mock implementation of curator.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
