// Package goldmark finds code examples in generic reference documentation
// by walking the goldmark AST of the page's markdown rendering.
package goldmark

import (
	"bytes"
	"strings"

	"github.com/fwojciec/curator"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var _ curator.Extractor = (*ReferenceExtractor)(nil)

// pythonLanguages are fence info strings treated as Python source.
var pythonLanguages = map[string]bool{
	"python":   true,
	"py":       true,
	"python3":  true,
	"ipython":  true,
	"ipython3": true,
	"pycon":    true,
}

// ReferenceExtractor extracts fenced Python code from API references,
// tutorials and other pages without a gallery structure.
type ReferenceExtractor struct {
	// ContentExtractor narrows HTML pages to their main content. When nil
	// the whole page is converted.
	ContentExtractor curator.ContentExtractor

	// Converter renders HTML as markdown. Required for HTML documents.
	Converter curator.Converter
}

// NewReferenceExtractor creates a new ReferenceExtractor.
func NewReferenceExtractor(content curator.ContentExtractor, conv curator.Converter) *ReferenceExtractor {
	return &ReferenceExtractor{ContentExtractor: content, Converter: conv}
}

// Extract implements curator.Extractor. Python-tagged fences carry
// curator.ReferencePrior; untagged fences carry a zero prior; fences in
// other languages are skipped.
func (e *ReferenceExtractor) Extract(pkg *curator.Package, doc *curator.Document) ([]*curator.RawExample, error) {
	source, title, err := e.markdown(doc)
	if err != nil {
		return nil, &curator.ExtractionError{URL: doc.URL, Family: curator.FamilyReference, Err: err}
	}

	src := []byte(source)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var paragraph string
	var examples []*curator.RawExample
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.Heading:
			if t := inlineText(node, src); t != "" {
				title = t
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.Paragraph:
			if t := inlineText(node, src); t != "" {
				paragraph = t
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.FencedCodeBlock:
			prior, ok := languagePrior(string(node.Language(src)))
			if !ok {
				return gmast.WalkSkipChildren, nil
			}
			code := strings.TrimRight(string(node.Lines().Value(src)), "\n ")
			if strings.TrimSpace(code) == "" {
				return gmast.WalkSkipChildren, nil
			}
			examples = append(examples, &curator.RawExample{
				Package:     pkg.Name,
				SourceURL:   doc.URL,
				Title:       title,
				Description: paragraph,
				Code:        code,
				Family:      curator.FamilyReference,
				Prior:       prior,
				Position:    len(examples),
			})
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})

	return examples, nil
}

// markdown returns the document as markdown along with its page title.
// Markdown and plain-text sources are used as is.
func (e *ReferenceExtractor) markdown(doc *curator.Document) (string, string, error) {
	if doc.IsMarkdown() {
		return doc.Body, "", nil
	}
	if strings.TrimSpace(doc.Body) == "" {
		return "", "", curator.Errorf(curator.EINVALID, "empty document")
	}
	if e.Converter == nil {
		return "", "", curator.Errorf(curator.EINVALID, "no HTML converter configured")
	}

	html, title := doc.Body, ""
	if e.ContentExtractor != nil {
		res, err := e.ContentExtractor.Extract(doc.Body)
		if err != nil {
			return "", "", err
		}
		html, title = res.ContentHTML, res.Title
	}

	md, err := e.Converter.Convert(html)
	if err != nil {
		return "", "", err
	}
	return md, title, nil
}

// languagePrior maps a fence language to the example's confidence prior.
// The second result is false for languages that are not Python.
func languagePrior(lang string) (float64, bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch {
	case lang == "":
		return 0, true
	case pythonLanguages[lang]:
		return curator.ReferencePrior, true
	}
	return 0, false
}

// inlineText flattens the inline children of n to plain text.
func inlineText(n gmast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}
