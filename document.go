package curator

import (
	"path"
	"strings"
)

// Document is a raw page returned by a Fetcher. Bodies come from untrusted
// hosts and must be parsed defensively.
type Document struct {
	URL         string `json:"url"`
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}

// IsNotebook reports whether the document is a raw Jupyter notebook rather
// than rendered HTML.
func (d *Document) IsNotebook() bool {
	if strings.Contains(d.ContentType, "ipynb") {
		return true
	}
	if strings.HasSuffix(urlPath(d.URL), ".ipynb") {
		return true
	}
	body := strings.TrimSpace(d.Body)
	return strings.HasPrefix(body, "{") && strings.Contains(body, `"cells"`)
}

// IsMarkdown reports whether the document is markdown or plain text source
// rather than HTML.
func (d *Document) IsMarkdown() bool {
	if strings.Contains(d.ContentType, "markdown") || strings.HasPrefix(d.ContentType, "text/plain") {
		return true
	}
	switch path.Ext(urlPath(d.URL)) {
	case ".md", ".markdown", ".txt", ".rst":
		return true
	}
	return false
}

func urlPath(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return rawURL
}
