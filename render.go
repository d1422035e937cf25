package curator

import (
	"fmt"
	"path"
	"strings"
)

const separatorWidth = 78

// Render formats a processed example as a sphinx-gallery Python file. The
// output depends only on ex, so repeated runs produce identical diffs.
func Render(ex *ProcessedExample) string {
	title := oneLine(ex.Title)
	if title == "" {
		title = "Untitled example"
	}

	var b strings.Builder
	b.WriteString("# coding: utf-8\n")
	b.WriteString("\"\"\"\n")
	b.WriteString(docstringSafe(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", max(len([]rune(title))+4, 40)))
	b.WriteString("\n\n")

	if desc := strings.TrimSpace(ex.CleanDescription); desc != "" {
		b.WriteString(docstringSafe(desc))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Source: %s\n", ex.SourceURL)
	fmt.Fprintf(&b, "Package: %s\n", ex.Package)
	if ex.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", ex.Category)
	}
	if len(ex.Dependencies) > 0 {
		fmt.Fprintf(&b, "Dependencies: %s\n", strings.Join(ex.Dependencies, ", "))
	}
	fmt.Fprintf(&b, "Processing confidence: %.2f\n", ex.Confidence)

	if len(ex.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range ex.Warnings {
			fmt.Fprintf(&b, "- %s\n", docstringSafe(oneLine(w)))
		}
	}
	b.WriteString("\"\"\"\n\n")

	b.WriteString(strings.Repeat("#", separatorWidth))
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(ex.CleanCode, " \t\n"))
	b.WriteString("\n")
	return b.String()
}

// GalleryPath returns the repository-relative path for an example file.
// The key suffix keeps names unique and stable across runs.
func GalleryPath(dir string, ex *ProcessedExample) string {
	name := fmt.Sprintf("auto_%s_%s_%s.py", Slugify(ex.Package, 20), Slugify(ex.Title, 40), ex.Key.Short())
	return path.Join(dir, name)
}

func docstringSafe(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"""`, `'''`)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
