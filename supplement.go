package curator

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

// Repository files maintained alongside the generated examples. The
// requirements file lives at the repository root, the readme in the
// gallery directory.
const (
	RequirementsFile = "requirements.txt"
	GalleryReadme    = "README.txt"
)

// noticeHeading marks a readme that already carries the notice.
const noticeHeading = "Automated Examples"

// CommonRequirements are the packages added to the gallery requirements
// when an example imports them. Other imports are left to the gallery
// maintainers.
var CommonRequirements = []string{
	"astropy", "matplotlib", "numpy", "plasmapy", "pysat",
	"pyspedas", "scipy", "spacepy", "sunpy",
}

// Requirements returns the sorted common requirements imported by the
// accepted examples.
func Requirements(examples []*ProcessedExample) []string {
	var out []string
	for _, ex := range examples {
		if !ex.Accepted() {
			continue
		}
		for _, dep := range ex.Dependencies {
			dep = strings.ToLower(dep)
			if slices.Contains(CommonRequirements, dep) && !slices.Contains(out, dep) {
				out = append(out, dep)
			}
		}
	}
	slices.Sort(out)
	return out
}

// MergeRequirements appends the deps missing from a requirements file.
// Pinned entries such as "numpy>=1.24" count as present. It reports
// whether anything was added.
func MergeRequirements(existing string, deps []string) (string, bool) {
	present := make(map[string]bool)
	for _, line := range strings.Split(existing, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		present[requirementName(line)] = true
	}

	var b strings.Builder
	b.WriteString(existing)
	added := false
	for _, dep := range deps {
		if present[dep] {
			continue
		}
		if !added && existing != "" && !strings.HasSuffix(existing, "\n") {
			b.WriteString("\n")
		}
		b.WriteString(dep)
		b.WriteString("\n")
		present[dep] = true
		added = true
	}
	return b.String(), added
}

func requirementName(line string) string {
	if i := strings.IndexAny(line, "<>=!~[;@ \t"); i >= 0 {
		line = line[:i]
	}
	return strings.ToLower(line)
}

// GalleryNotice is the readme section describing generated examples.
func GalleryNotice(date time.Time, updated int) string {
	return fmt.Sprintf(`

# %s
Some examples in this gallery are automatically generated from PyHC package
documentation using the automated scraping system. These examples are prefixed
with 'auto_' and include the generation date.

Last automated update: %s
Examples updated in this run: %d
`, noticeHeading, date.Format("2006-01-02"), updated)
}

// AddGalleryNotice appends GalleryNotice to a readme once. It reports
// whether the readme changed.
func AddGalleryNotice(existing string, date time.Time, updated int) (string, bool) {
	if strings.Contains(existing, noticeHeading) {
		return existing, false
	}
	return existing + GalleryNotice(date, updated), true
}

// Supplement returns cs extended with the requirements and readme updates
// that accompany its examples. read returns the current content of a
// repository-relative path. Missing files are not created, and paths
// already in cs are left alone, so applying Supplement twice is harmless.
func Supplement(cs *Changeset, read func(path string) ([]byte, error), now time.Time) (*Changeset, error) {
	if cs.Len() == 0 {
		return cs, nil
	}
	out := &Changeset{
		Files:        slices.Clone(cs.Files),
		Dir:          cs.Dir,
		Requirements: cs.Requirements,
	}
	has := func(p string) bool {
		return slices.ContainsFunc(out.Files, func(f FileChange) bool { return f.Path == p })
	}
	examples := 0
	for _, f := range cs.Files {
		if f.Key != "" {
			examples++
		}
	}

	if len(cs.Requirements) > 0 && !has(RequirementsFile) {
		data, err := read(RequirementsFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if merged, ok := MergeRequirements(string(data), cs.Requirements); ok {
				out.Files = append(out.Files, FileChange{Path: RequirementsFile, Content: merged})
			}
		}
	}

	readme := path.Join(cs.Dir, GalleryReadme)
	if !has(readme) {
		data, err := read(readme)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if updated, ok := AddGalleryNotice(string(data), now, examples); ok {
				out.Files = append(out.Files, FileChange{Path: readme, Content: updated})
			}
		}
	}
	return out, nil
}
