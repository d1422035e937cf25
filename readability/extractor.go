// Package readability isolates the main content of reference pages with
// go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/curator"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements curator.ContentExtractor at compile time.
var _ curator.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
// Class attributes are kept so highlight-* markers on code blocks survive
// until markdown conversion.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*curator.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, curator.Errorf(curator.EINVALID, "empty HTML input")
	}

	parser := readability.NewParser()
	parser.KeepClasses = true

	article, err := parser.Parse(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, curator.Errorf(curator.EINVALID, "readability: %v", err)
	}

	return &curator.ExtractResult{
		Title:       article.Title,
		Description: article.Excerpt,
		ContentHTML: article.Content,
	}, nil
}
