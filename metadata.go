package curator

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var importRe = regexp.MustCompile(`(?m)^\s*(?:from\s+([A-Za-z_][\w.]*)\s+import|import\s+([A-Za-z_][\w.]*(?:\s*,\s*[A-Za-z_][\w.]*)*))`)

// ExtractDependencies returns the sorted, unique top-level module names
// imported by Python code. Relative imports are ignored.
func ExtractDependencies(code string) []string {
	seen := make(map[string]bool)
	for _, m := range importRe.FindAllStringSubmatch(code, -1) {
		var names []string
		if m[1] != "" {
			names = []string{m[1]}
		} else {
			names = strings.Split(m[2], ",")
		}
		for _, n := range names {
			n = strings.TrimSpace(n)
			if i := strings.IndexByte(n, '.'); i >= 0 {
				n = n[:i]
			}
			if n != "" {
				seen[n] = true
			}
		}
	}
	deps := make([]string, 0, len(seen))
	for d := range seen {
		deps = append(deps, d)
	}
	sort.Strings(deps)
	return deps
}

// categoryRules map URL keywords to gallery categories, checked in order.
var categoryRules = []struct {
	keyword  string
	category string
}{
	{"getting_started", "basic"},
	{"diagnostic", "diagnostics"},
	{"coord", "coordinates"},
	{"map", "maps"},
	{"time", "time_series"},
	{"plot", "plotting"},
	{"data", "data_acquisition"},
}

// DefaultCategory is used when no URL keyword matches.
const DefaultCategory = "general"

// CategoryFromURL infers a gallery category from keywords in a page URL
// path. Host names are ignored.
func CategoryFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	lower := strings.ToLower(p)
	for _, r := range categoryRules {
		if strings.Contains(lower, r.keyword) {
			return r.category
		}
	}
	return DefaultCategory
}

// Slugify lowercases s, keeps letters and digits, joins words with '_' and
// truncates to max runes.
func Slugify(s string, max int) string {
	var words []string
	var cur strings.Builder
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			cur.WriteRune(r)
			continue
		}
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	slug := strings.Join(words, "_")
	if len(slug) > max {
		slug = strings.TrimRight(slug[:max], "_")
	}
	if slug == "" {
		return "example"
	}
	return slug
}
