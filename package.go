package curator

import (
	"net/url"
	"path"
	"strings"
)

// DocFamily identifies which structural convention a package's
// documentation follows. The set is closed.
type DocFamily int

const (
	// FamilyGallery is pre-rendered example pages (sphinx-gallery).
	FamilyGallery DocFamily = iota + 1
	// FamilyNotebook is executed notebooks (nbsphinx or raw .ipynb).
	FamilyNotebook
	// FamilyReference is API reference pages with no example convention.
	FamilyReference
)

// String returns the configuration name of the family.
func (f DocFamily) String() string {
	switch f {
	case FamilyGallery:
		return "gallery"
	case FamilyNotebook:
		return "notebook"
	case FamilyReference:
		return "reference"
	default:
		return "unknown"
	}
}

// ParseDocFamily maps a configuration name to a DocFamily. The names used
// by Sphinx tooling are accepted as aliases.
func ParseDocFamily(s string) (DocFamily, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gallery", "sphinx-gallery":
		return FamilyGallery, nil
	case "notebook", "nbsphinx", "jupyter":
		return FamilyNotebook, nil
	case "reference", "sphinx", "generic":
		return FamilyReference, nil
	}
	return 0, Errorf(EINVALID, "unknown doc family %q", s)
}

// Package describes a documentation site to scrape and how to read it.
type Package struct {
	Name        string    `json:"name"`
	DocsURL     string    `json:"docsUrl"`
	RepoURL     string    `json:"repoUrl"`
	Description string    `json:"description"`
	Family      DocFamily `json:"family"`

	// Patterns are path globs (path.Match syntax) identifying example
	// pages below DocsURL. Patterns without metacharacters name a page
	// directly.
	Patterns []string `json:"patterns"`

	// Priority orders processing only; higher goes first.
	Priority int `json:"priority"`

	// Render requests a JavaScript-capable fetcher for this package.
	Render bool `json:"render"`
}

// Validate returns an error if the package contains invalid fields.
func (p *Package) Validate() error {
	if p.Name == "" {
		return Errorf(EINVALID, "package name required")
	}
	if p.DocsURL == "" {
		return Errorf(EINVALID, "package %q: docs URL required", p.Name)
	}
	u, err := url.Parse(p.DocsURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Errorf(EINVALID, "package %q: docs URL must be absolute", p.Name)
	}
	if p.Family < FamilyGallery || p.Family > FamilyReference {
		return Errorf(EINVALID, "package %q: unknown doc family", p.Name)
	}
	if len(p.Patterns) == 0 {
		return Errorf(EINVALID, "package %q: at least one pattern required", p.Name)
	}
	for _, pattern := range p.Patterns {
		if _, err := path.Match(pattern, ""); err != nil {
			return Errorf(EINVALID, "package %q: invalid pattern %q", p.Name, pattern)
		}
	}
	return nil
}

// IsGlob reports whether pattern contains path.Match metacharacters.
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// ResolvePattern joins a literal pattern onto the package docs URL.
func (p *Package) ResolvePattern(pattern string) (string, error) {
	base, err := url.Parse(p.DocsURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(pattern)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// MatchURL reports whether rawURL is on the package's docs host and its
// path matches one of the glob patterns. It returns the index of the first
// matching pattern, or -1.
func (p *Package) MatchURL(rawURL string) int {
	base, err := url.Parse(p.DocsURL)
	if err != nil {
		return -1
	}
	u, err := url.Parse(rawURL)
	if err != nil || !strings.EqualFold(u.Host, base.Host) {
		return -1
	}
	for i, pattern := range p.Patterns {
		if !IsGlob(pattern) {
			continue
		}
		if ok, _ := path.Match(pattern, u.Path); ok {
			return i
		}
	}
	return -1
}
