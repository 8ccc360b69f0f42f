package codec

import (
	"github.com/kobzarvs/treesheets/internal/cell"
	"github.com/kobzarvs/treesheets/internal/document"
	"github.com/kobzarvs/treesheets/internal/text"
)

const (
	maxGridDim     = 4096
	maxGridCells   = 1 << 20
	maxDepth       = 256
	maxSpacing     = 1 << 16
	maxColumnWidth = 1 << 20
)

// What a node carries after its attributes.
const (
	contentsText uint8 = iota
	contentsGrid
	contentsBoth
	contentsNeither
)

type treeReader struct {
	r       *reader
	version uint8

	cells     int
	textBytes int
}

func (t *treeReader) cell(depth int) (*cell.Cell, error) {
	if depth > maxDepth {
		return nil, failf(ErrCorruptTree, "cells nested deeper than %d", maxDepth)
	}
	c := cell.New()
	if err := readGates(t.r, t.version, cellGates, c); err != nil {
		return nil, err
	}
	contents, err := t.r.u8()
	if err != nil {
		return nil, err
	}
	if contents > contentsNeither {
		return nil, failf(ErrCorruptTree, "cell contents %d", contents)
	}
	t.cells++
	if contents == contentsText || contents == contentsBoth {
		if err := readGates(t.r, t.version, textGates, &c.Text); err != nil {
			return nil, err
		}
		t.textBytes += len(c.Text.Value)
	}
	if contents == contentsGrid || contents == contentsBoth {
		g, err := t.grid(depth)
		if err != nil {
			return nil, err
		}
		c.SetGrid(g)
	}
	return c, nil
}

func (t *treeReader) grid(depth int) (*cell.Grid, error) {
	var rec gridRecord
	if err := readGates(t.r, t.version, gridGates, &rec); err != nil {
		return nil, err
	}
	n := rec.cols * rec.rows
	cells := make([]*cell.Cell, 0, min(n, 1024))
	for i := 0; i < n; i++ {
		c, err := t.cell(depth + 1)
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	g, err := cell.Assemble(rec.cols, rec.rows, cells)
	if err != nil {
		return nil, failf(ErrCorruptTree, "%v", err)
	}
	g.Spacing = rec.spacing
	g.Folded = rec.folded
	copy(g.ColWidths, rec.colWidths)
	return g, nil
}

// tags reads name/color pairs up to the empty name.
func (t *treeReader) tags(dst *document.TagTable) error {
	for {
		var rec tagRecord
		name, err := t.r.str()
		if err != nil {
			return err
		}
		if name == "" {
			return nil
		}
		rec.name = name
		if err := readGates(t.r, t.version, tagColorGates, &rec); err != nil {
			return err
		}
		dst.Set(rec.name, rec.color)
	}
}

func hasText(t text.Text) bool {
	return t.Value != "" || t.Style != 0 || t.RelSize != 0 || !t.LastEdit.IsZero()
}

func writeCell(w *writer, c *cell.Cell) {
	writeGates(w, cellGates, c)
	withText, withGrid := hasText(c.Text), c.Grid != nil
	switch {
	case withText && withGrid:
		w.u8(contentsBoth)
	case withText:
		w.u8(contentsText)
	case withGrid:
		w.u8(contentsGrid)
	default:
		w.u8(contentsNeither)
	}
	if withText {
		writeGates(w, textGates, &c.Text)
	}
	if withGrid {
		writeGrid(w, c.Grid)
	}
}

func writeGrid(w *writer, g *cell.Grid) {
	rec := gridRecord{
		cols:      g.Cols,
		rows:      g.Rows,
		spacing:   g.Spacing,
		folded:    g.Folded,
		colWidths: g.ColWidths,
	}
	writeGates(w, gridGates, &rec)
	for _, c := range g.Cells() {
		writeCell(w, c)
	}
}

func writeTags(w *writer, tags *document.TagTable) {
	for _, name := range tags.Names() {
		rec := tagRecord{name: name}
		rec.color, _ = tags.Color(name)
		w.str(rec.name)
		writeGates(w, tagColorGates, &rec)
	}
	w.str("")
}
