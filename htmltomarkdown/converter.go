// Package htmltomarkdown converts documentation HTML to Markdown, keeping
// the language of Sphinx-highlighted code blocks as fence info strings.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/curator"
)

// Ensure Converter implements curator.Converter at compile time.
var _ curator.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", curator.Errorf(curator.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", curator.Errorf(curator.EINVALID, "failed to parse HTML: %v", err)
	}
	TagCodeLanguages(doc.Selection)

	result, err := c.conv.ConvertNode(doc.Nodes[0])
	if err != nil {
		return "", err
	}

	return string(result), nil
}

// TagCodeLanguages copies the lexer name of Sphinx highlight wrappers
// (div.highlight-python and friends) onto the wrapped pre element as a
// language- class. highlight-default stays untagged; highlight-none
// becomes text.
func TagCodeLanguages(sel *goquery.Selection) {
	sel.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		if hasLanguageClass(pre) {
			return
		}
		lang := highlightLanguage(pre)
		if lang == "" {
			return
		}
		pre.AddClass("language-" + lang)
	})
}

func hasLanguageClass(sel *goquery.Selection) bool {
	for _, class := range strings.Fields(sel.AttrOr("class", "")) {
		if strings.HasPrefix(class, "language-") || strings.HasPrefix(class, "lang-") {
			return true
		}
	}
	return sel.Find("code[class*=language-]").Length() > 0
}

// highlightLanguage returns the lexer of the nearest highlight-* wrapper
// of sel, including sel itself.
func highlightLanguage(sel *goquery.Selection) string {
	for s := sel; s.Length() > 0; s = s.Parent() {
		for _, class := range strings.Fields(s.AttrOr("class", "")) {
			lang, ok := strings.CutPrefix(class, "highlight-")
			if !ok || lang == "" {
				continue
			}
			switch lang {
			case "default":
				return ""
			case "none":
				return "text"
			}
			return lang
		}
	}
	return ""
}
