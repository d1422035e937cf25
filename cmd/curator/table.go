package main

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// table writes rows as left-aligned columns padded by display width, so
// package names and titles with wide characters stay aligned.
type table struct {
	rows [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(w io.Writer) error {
	var widths []int
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var sb strings.Builder
	for _, row := range t.rows {
		for i, cell := range row {
			sb.WriteString(cell)
			if i == len(row)-1 {
				break
			}
			sb.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)+2))
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
