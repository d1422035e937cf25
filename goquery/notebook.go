package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/curator"
)

var _ curator.Extractor = (*NotebookExtractor)(nil)

// NotebookExtractor reads Jupyter notebooks, either as raw .ipynb JSON or
// as pages rendered by nbsphinx. Runs of contiguous code cells form one
// example each.
type NotebookExtractor struct{}

// NewNotebookExtractor creates a new NotebookExtractor.
func NewNotebookExtractor() *NotebookExtractor {
	return &NotebookExtractor{}
}

// Extract implements curator.Extractor. A notebook without code cells
// yields no examples and no error.
func (e *NotebookExtractor) Extract(pkg *curator.Package, doc *curator.Document) ([]*curator.RawExample, error) {
	var cells []curator.Cell
	var title string

	if doc.IsNotebook() {
		c, err := curator.ParseNotebook([]byte(doc.Body))
		if err != nil {
			return nil, &curator.ExtractionError{URL: doc.URL, Family: curator.FamilyNotebook, Err: err}
		}
		cells = c
		title = curator.NotebookTitle(cells)
	} else {
		d, err := parse(doc, curator.FamilyNotebook)
		if err != nil {
			return nil, err
		}
		cells = renderedCells(articleBody(d))
		if title = curator.NotebookTitle(cells); title == "" {
			title = pageTitle(d)
		}
	}
	if title == "" {
		title = urlBasename(doc.URL)
	}

	groups := curator.GroupCells(cells)
	examples := make([]*curator.RawExample, 0, len(groups))
	for i, g := range groups {
		examples = append(examples, &curator.RawExample{
			Package:     pkg.Name,
			SourceURL:   doc.URL,
			Title:       title,
			Description: g.Description,
			Code:        g.Code,
			Family:      curator.FamilyNotebook,
			Prior:       curator.StructuredPrior,
			Position:    i,
		})
	}
	return examples, nil
}

// renderedCells rebuilds notebook cells from nbsphinx markup: div.nbinput
// holds code, div.nboutput is dropped and headings and paragraphs become
// markdown cells.
func renderedCells(body *goquery.Selection) []curator.Cell {
	var cells []curator.Cell
	body.Find("div.nbinput, div.nboutput, " + headingSelector + ", p").Each(func(_ int, sel *goquery.Selection) {
		name := goquery.NodeName(sel)
		if name == "div" {
			if sel.HasClass("nbinput") {
				cells = append(cells, curator.Cell{Kind: curator.CellCode, Source: inputCode(sel)})
			}
			return
		}
		if sel.Closest("div.nbinput, div.nboutput").Length() > 0 {
			return
		}
		if name == "p" {
			if text := collapse(sel.Text()); text != "" {
				cells = append(cells, curator.Cell{Kind: curator.CellMarkdown, Source: text})
			}
			return
		}
		if text := headingText(sel); text != "" {
			level := int(name[1] - '0')
			cells = append(cells, curator.Cell{Kind: curator.CellMarkdown, Source: strings.Repeat("#", level) + " " + text})
		}
	})
	return cells
}

// inputCode returns the source of an nbsphinx input cell, skipping the
// execution-count prompt.
func inputCode(cell *goquery.Selection) string {
	pre := cell.Find("div.input_area pre").First()
	if pre.Length() == 0 {
		pre = cell.Find("pre").Last()
	}
	return codeText(pre)
}
