package curator

import (
	"encoding/json"
	"strings"
)

// CellKind is the type of a notebook cell.
type CellKind int

// Cell kinds.
const (
	CellMarkdown CellKind = iota + 1
	CellCode
	CellRaw
)

// Cell is one notebook cell, regardless of whether it came from an .ipynb
// file or a rendered notebook page.
type Cell struct {
	Kind   CellKind
	Source string
}

// CellGroup is a run of contiguous code cells with its description.
type CellGroup struct {
	Description string
	Code        string
}

type ipynb struct {
	Cells []struct {
		CellType string          `json:"cell_type"`
		Source   json.RawMessage `json:"source"`
	} `json:"cells"`
}

// ParseNotebook decodes nbformat 4 JSON into cells.
func ParseNotebook(data []byte) ([]Cell, error) {
	var nb ipynb
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, Errorf(EINVALID, "invalid notebook JSON: %v", err)
	}
	cells := make([]Cell, 0, len(nb.Cells))
	for _, c := range nb.Cells {
		src, err := cellSource(c.Source)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid cell source: %v", err)
		}
		var kind CellKind
		switch c.CellType {
		case "code":
			kind = CellCode
		case "markdown":
			kind = CellMarkdown
		default:
			kind = CellRaw
		}
		cells = append(cells, Cell{Kind: kind, Source: src})
	}
	return cells, nil
}

// cellSource accepts both the string and the list-of-lines encodings.
func cellSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", err
	}
	return strings.Join(lines, ""), nil
}

// GroupCells merges each run of contiguous code cells into one example
// body and pairs it with the nearest preceding markdown cell. A notebook
// without code cells yields no groups.
func GroupCells(cells []Cell) []CellGroup {
	var groups []CellGroup
	var description string
	var run []string

	flush := func() {
		if len(run) > 0 {
			groups = append(groups, CellGroup{
				Description: description,
				Code:        strings.Join(run, "\n\n"),
			})
		}
		run = nil
	}

	for _, c := range cells {
		switch c.Kind {
		case CellCode:
			if src := strings.TrimSpace(c.Source); src != "" {
				run = append(run, src)
			}
		case CellMarkdown:
			flush()
			if text := markdownText(c.Source); text != "" && !isGeneratedBanner(text) {
				description = text
			}
		default:
			flush()
		}
	}
	flush()
	return groups
}

// NotebookTitle returns the first markdown heading, or "".
func NotebookTitle(cells []Cell) string {
	for _, c := range cells {
		if c.Kind != CellMarkdown {
			continue
		}
		for _, line := range strings.Split(c.Source, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "#") {
				return strings.TrimSpace(strings.TrimLeft(line, "#"))
			}
		}
	}
	return ""
}

// markdownText flattens a markdown cell into a one-paragraph description.
// Heading markers are dropped.
func markdownText(src string) string {
	var parts []string
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

func isGeneratedBanner(text string) bool {
	return strings.HasPrefix(text, "This page was generated")
}
