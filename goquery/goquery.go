// Package goquery extracts code examples and links from rendered
// documentation HTML using goquery selectors.
package goquery

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/curator"
)

// headingSelector matches section headings in document order.
const headingSelector = "h1, h2, h3, h4, h5, h6"

// parse reads an untrusted page body. Failures are reported as extraction
// errors for the given family.
func parse(doc *curator.Document, family curator.DocFamily) (*goquery.Document, error) {
	if strings.TrimSpace(doc.Body) == "" {
		return nil, &curator.ExtractionError{URL: doc.URL, Family: family, Err: curator.Errorf(curator.EINVALID, "empty document")}
	}
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc.Body))
	if err != nil {
		return nil, &curator.ExtractionError{URL: doc.URL, Family: family, Err: curator.Errorf(curator.EINVALID, "failed to parse HTML: %v", err)}
	}
	return d, nil
}

// articleBody narrows a page to its main article, trying the markup of
// common Sphinx themes before falling back to body.
func articleBody(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"div[itemprop=articleBody]", "div.body", "article", "main"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Find("body").First()
}

// headingText returns the text of a heading without the permalink pilcrow.
func headingText(sel *goquery.Selection) string {
	s := sel.Clone()
	s.Find("a.headerlink").Remove()
	return collapse(strings.ReplaceAll(s.Text(), "¶", ""))
}

// pageTitle returns the first h1 of the page, else its title element.
func pageTitle(doc *goquery.Document) string {
	if h := doc.Find("h1").First(); h.Length() > 0 {
		if t := headingText(h); t != "" {
			return t
		}
	}
	return collapse(doc.Find("title").First().Text())
}

// collapse folds runs of whitespace into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// codeText returns the text of a pre element with trailing whitespace
// removed from every line.
func codeText(pre *goquery.Selection) string {
	lines := strings.Split(pre.Text(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// urlBasename returns the last path element of rawURL without extension.
func urlBasename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return u.Host
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
