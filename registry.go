package curator

import (
	"context"
	"sort"
)

// RegistrySource loads the package catalog at the start of a run.
type RegistrySource interface {
	// LoadRegistry returns the validated registry.
	// Returns EINVALID if the catalog cannot be read or is malformed.
	LoadRegistry(ctx context.Context) (*Registry, error)
}

// Registry is the catalog of packages to scrape. It is immutable once
// built.
type Registry struct {
	packages []*Package
}

// NewRegistry validates the packages and returns a registry ordered by
// descending priority, then name.
func NewRegistry(pkgs ...*Package) (*Registry, error) {
	seen := make(map[string]bool, len(pkgs))
	sorted := make([]*Package, 0, len(pkgs))
	for _, p := range pkgs {
		if p == nil {
			return nil, Errorf(EINVALID, "nil package in registry")
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, Errorf(EINVALID, "duplicate package %q", p.Name)
		}
		seen[p.Name] = true
		sorted = append(sorted, p)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].Name < sorted[j].Name
	})
	return &Registry{packages: sorted}, nil
}

// Packages returns the packages in processing order.
func (r *Registry) Packages() []*Package {
	out := make([]*Package, len(r.packages))
	copy(out, r.packages)
	return out
}

// Len returns the number of packages.
func (r *Registry) Len() int { return len(r.packages) }

// LoadRegistry lets a fixed Registry act as its own source.
func (r *Registry) LoadRegistry(context.Context) (*Registry, error) {
	return r, nil
}

// DefaultPackages returns the built-in catalog of heliophysics packages.
func DefaultPackages() []*Package {
	return []*Package{
		{
			Name:        "sunpy",
			DocsURL:     "https://docs.sunpy.org",
			RepoURL:     "https://github.com/sunpy/sunpy",
			Description: "Python for Solar Physics",
			Family:      FamilyGallery,
			Patterns: []string{
				"/en/stable/generated/gallery/index.html",
				"/en/stable/generated/gallery/*/plot_*.html",
			},
			Priority: 2,
		},
		{
			Name:        "plasmapy",
			DocsURL:     "https://docs.plasmapy.org",
			RepoURL:     "https://github.com/PlasmaPy/PlasmaPy",
			Description: "Python for Plasma Physics",
			Family:      FamilyNotebook,
			Patterns: []string{
				"/en/stable/examples.html",
				"/en/stable/notebooks/*/*.html",
			},
			Priority: 2,
		},
		{
			Name:        "pyspedas",
			DocsURL:     "https://pyspedas.readthedocs.io",
			RepoURL:     "https://github.com/spedas/pyspedas",
			Description: "Python Space Physics Environment Data Analysis Software",
			Family:      FamilyReference,
			Patterns: []string{
				"/en/latest/getting_started.html",
				"/en/latest/*.html",
			},
			Priority: 1,
		},
		{
			Name:        "spacepy",
			DocsURL:     "https://spacepy.github.io",
			RepoURL:     "https://github.com/spacepy/spacepy",
			Description: "Space Science Tools for Python",
			Family:      FamilyReference,
			Patterns: []string{
				"/quickstart.html",
				"/autosummary/spacepy.*.html",
			},
			Priority: 1,
		},
		{
			Name:        "pysat",
			DocsURL:     "https://pysat.readthedocs.io",
			RepoURL:     "https://github.com/pysat/pysat",
			Description: "Python Satellite Data Analysis Toolkit",
			Family:      FamilyReference,
			Patterns: []string{
				"/en/latest/examples.html",
				"/en/latest/examples/*.html",
			},
			Priority: 1,
		},
	}
}
