package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/curator"
)

var _ curator.Extractor = (*GalleryExtractor)(nil)

// galleryChrome matches sphinx-gallery decoration that is not part of the
// example narrative.
const galleryChrome = ".sphx-glr-download-link-note, .sphx-glr-footer, .sphx-glr-signature, .sphx-glr-timing, .sphx-glr-script-out, .sphx-glr-thumbnails"

// GalleryExtractor reads sphinx-gallery style example pages. Every
// highlighted code block becomes one example, described by the paragraphs
// written since the previous block.
type GalleryExtractor struct{}

// NewGalleryExtractor creates a new GalleryExtractor.
func NewGalleryExtractor() *GalleryExtractor {
	return &GalleryExtractor{}
}

// Extract implements curator.Extractor.
func (e *GalleryExtractor) Extract(pkg *curator.Package, doc *curator.Document) ([]*curator.RawExample, error) {
	d, err := parse(doc, curator.FamilyGallery)
	if err != nil {
		return nil, err
	}

	title := pageTitle(d)
	var paragraphs []string
	var examples []*curator.RawExample

	articleBody(d).Find(headingSelector + ", p, pre").Each(func(_ int, sel *goquery.Selection) {
		if sel.Closest(galleryChrome).Length() > 0 {
			return
		}
		switch goquery.NodeName(sel) {
		case "p":
			if text := collapse(sel.Text()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		case "pre":
			if !isExampleCode(sel) {
				return
			}
			code := codeText(sel)
			if code == "" {
				return
			}
			examples = append(examples, &curator.RawExample{
				Package:     pkg.Name,
				SourceURL:   doc.URL,
				Title:       title,
				Description: strings.Join(paragraphs, "\n\n"),
				Code:        code,
				Family:      curator.FamilyGallery,
				Prior:       curator.StructuredPrior,
				Position:    len(examples),
			})
			paragraphs = nil
		default:
			if t := headingText(sel); t != "" {
				title = t
			}
		}
	})

	return examples, nil
}

// isExampleCode reports whether pre is highlighted source rather than
// captured output or a literal block.
func isExampleCode(pre *goquery.Selection) bool {
	if pre.HasClass("literal-block") {
		return false
	}
	wrapper := pre.Closest(`div[class*="highlight-"]`)
	if wrapper.Length() == 0 {
		return false
	}
	return !wrapper.HasClass("highlight-none")
}
