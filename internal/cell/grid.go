package cell

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strconv"
	"strings"
)

// AutoWidth is the column width sentinel meaning "derive from content".
const AutoWidth = 0

// DefaultSpacing is the outer spacing of a new grid.
const DefaultSpacing = 3

var (
	ErrEmptyGrid  = errors.New("grid must be at least 1x1")
	ErrHasGrid    = errors.New("cell already has a grid")
	ErrOutOfRange = errors.New("grid index out of range")
)

// Grid is a dense cols x rows array of cells stored row-major. Every slot
// holds a cell; empty slots are empty leaves.
type Grid struct {
	Cols      int
	Rows      int
	ColWidths []int
	// RowHeights is derived by layout.
	RowHeights []int
	Spacing    int
	Folded     bool

	cells []*Cell
	owner *Cell

	colPx  []int
	gap    int
	w, h   int
	offset image.Point
}

// NewGrid builds a grid filled with fresh empty cells.
func NewGrid(cols, rows int) (*Grid, error) {
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyGrid, cols, rows)
	}
	g := &Grid{
		Cols:       cols,
		Rows:       rows,
		ColWidths:  make([]int, cols),
		RowHeights: make([]int, rows),
		Spacing:    DefaultSpacing,
		cells:      make([]*Cell, cols*rows),
	}
	for i := range g.cells {
		g.cells[i] = g.adopt(New())
	}
	return g, nil
}

func (g *Grid) adopt(c *Cell) *Cell {
	c.parent = g
	c.valid = false
	return c
}

// Owner is the cell this grid belongs to.
func (g *Grid) Owner() *Cell { return g.owner }

func (g *Grid) InRange(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Cols && y < g.Rows
}

func (g *Grid) At(x, y int) *Cell {
	if !g.InRange(x, y) {
		return nil
	}
	return g.cells[y*g.Cols+x]
}

// Set replaces the cell at x, y. The previous occupant is released.
func (g *Grid) Set(x, y int, c *Cell) error {
	if !g.InRange(x, y) {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, x, y, g.Cols, g.Rows)
	}
	if c == nil {
		c = New()
	}
	old := g.cells[y*g.Cols+x]
	if old != nil {
		old.parent = nil
	}
	g.cells[y*g.Cols+x] = g.adopt(c)
	g.invalidate()
	return nil
}

// Cells returns the slots in row-major order. The slice must not be modified.
func (g *Grid) Cells() []*Cell { return g.cells }

// Find returns the position of c in g.
func (g *Grid) Find(c *Cell) (x, y int, ok bool) {
	for i, n := range g.cells {
		if n == c {
			return i % g.Cols, i / g.Cols, true
		}
	}
	return 0, 0, false
}

func (g *Grid) invalidate() {
	if g.owner != nil {
		g.owner.Invalidate()
	}
}

func (g *Grid) clone() *Grid {
	n := &Grid{
		Cols:       g.Cols,
		Rows:       g.Rows,
		ColWidths:  append([]int(nil), g.ColWidths...),
		RowHeights: make([]int, g.Rows),
		Spacing:    g.Spacing,
		Folded:     g.Folded,
		cells:      make([]*Cell, len(g.cells)),
	}
	for i, c := range g.cells {
		n.cells[i] = n.adopt(c.Clone())
	}
	return n
}

// SetColWidth fixes column x to w pixels; AutoWidth restores auto sizing.
func (g *Grid) SetColWidth(x, w int) error {
	if x < 0 || x >= g.Cols {
		return fmt.Errorf("%w: column %d of %d", ErrOutOfRange, x, g.Cols)
	}
	if w < 0 {
		w = AutoWidth
	}
	g.ColWidths[x] = w
	g.invalidate()
	return nil
}

func (g *Grid) resize(cols, rows int, src func(x, y int) *Cell) {
	cells := make([]*Cell, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			c := src(x, y)
			if c == nil {
				c = New()
			}
			cells[y*cols+x] = g.adopt(c)
		}
	}
	g.Cols, g.Rows, g.cells = cols, rows, cells
	g.RowHeights = make([]int, rows)
	g.invalidate()
}

// InsertCols inserts n empty columns before column at (at == Cols appends).
func (g *Grid) InsertCols(at, n int) error {
	if at < 0 || at > g.Cols || n < 1 {
		return fmt.Errorf("%w: insert %d columns at %d of %d", ErrOutOfRange, n, at, g.Cols)
	}
	old := g.snapshot()
	g.resize(g.Cols+n, g.Rows, func(x, y int) *Cell {
		switch {
		case x < at:
			return old.at(x, y)
		case x < at+n:
			return nil
		default:
			return old.at(x-n, y)
		}
	})
	widths := make([]int, 0, g.Cols)
	widths = append(widths, g.ColWidths[:at]...)
	widths = append(widths, make([]int, n)...)
	g.ColWidths = append(widths, g.ColWidths[at:]...)
	return nil
}

// InsertRows inserts n empty rows before row at (at == Rows appends).
func (g *Grid) InsertRows(at, n int) error {
	if at < 0 || at > g.Rows || n < 1 {
		return fmt.Errorf("%w: insert %d rows at %d of %d", ErrOutOfRange, n, at, g.Rows)
	}
	old := g.snapshot()
	g.resize(g.Cols, g.Rows+n, func(x, y int) *Cell {
		switch {
		case y < at:
			return old.at(x, y)
		case y < at+n:
			return nil
		default:
			return old.at(x, y-n)
		}
	})
	return nil
}

// DeleteCols removes columns [at, at+n). A grid never shrinks below one column.
func (g *Grid) DeleteCols(at, n int) error {
	if at < 0 || n < 1 || at+n > g.Cols {
		return fmt.Errorf("%w: delete %d columns at %d of %d", ErrOutOfRange, n, at, g.Cols)
	}
	if g.Cols-n < 1 {
		return ErrEmptyGrid
	}
	old := g.snapshot()
	for y := 0; y < old.rows; y++ {
		for x := at; x < at+n; x++ {
			old.at(x, y).parent = nil
		}
	}
	g.resize(g.Cols-n, g.Rows, func(x, y int) *Cell {
		if x < at {
			return old.at(x, y)
		}
		return old.at(x+n, y)
	})
	g.ColWidths = append(g.ColWidths[:at:at], g.ColWidths[at+n:]...)
	return nil
}

// DeleteRows removes rows [at, at+n). A grid never shrinks below one row.
func (g *Grid) DeleteRows(at, n int) error {
	if at < 0 || n < 1 || at+n > g.Rows {
		return fmt.Errorf("%w: delete %d rows at %d of %d", ErrOutOfRange, n, at, g.Rows)
	}
	if g.Rows-n < 1 {
		return ErrEmptyGrid
	}
	old := g.snapshot()
	for y := at; y < at+n; y++ {
		for x := 0; x < old.cols; x++ {
			old.at(x, y).parent = nil
		}
	}
	g.resize(g.Cols, g.Rows-n, func(x, y int) *Cell {
		if y < at {
			return old.at(x, y)
		}
		return old.at(x, y+n)
	})
	return nil
}

// Transpose swaps rows and columns. Column widths return to auto.
func (g *Grid) Transpose() {
	old := g.snapshot()
	g.resize(old.rows, old.cols, func(x, y int) *Cell {
		return old.at(y, x)
	})
	g.ColWidths = make([]int, g.Cols)
}

// SortRows reorders rows by the text in column col. Numbers compare
// numerically and sort before other text; the sort is stable.
func (g *Grid) SortRows(col int, descending bool) error {
	if col < 0 || col >= g.Cols {
		return fmt.Errorf("%w: sort column %d of %d", ErrOutOfRange, col, g.Cols)
	}
	old := g.snapshot()
	order := make([]int, g.Rows)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a := old.at(col, order[i]).Text.Value
		b := old.at(col, order[j]).Text.Value
		if descending {
			return lessCellText(b, a)
		}
		return lessCellText(a, b)
	})
	g.resize(g.Cols, g.Rows, func(x, y int) *Cell {
		return old.at(x, order[y])
	})
	return nil
}

func lessCellText(a, b string) bool {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	switch {
	case errA == nil && errB == nil:
		return fa < fb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

type gridSnapshot struct {
	cols, rows int
	cells      []*Cell
}

func (g *Grid) snapshot() gridSnapshot {
	return gridSnapshot{cols: g.Cols, rows: g.Rows, cells: g.cells}
}

func (s gridSnapshot) at(x, y int) *Cell {
	return s.cells[y*s.cols+x]
}

// Assemble builds a grid around existing cells given in row-major order.
func Assemble(cols, rows int, cells []*Cell) (*Grid, error) {
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyGrid, cols, rows)
	}
	if len(cells) != cols*rows {
		return nil, fmt.Errorf("%w: %d cells for %dx%d", ErrOutOfRange, len(cells), cols, rows)
	}
	g := &Grid{
		Cols:       cols,
		Rows:       rows,
		ColWidths:  make([]int, cols),
		RowHeights: make([]int, rows),
		Spacing:    DefaultSpacing,
		cells:      make([]*Cell, len(cells)),
	}
	for i, c := range cells {
		if c == nil {
			c = New()
		}
		g.cells[i] = g.adopt(c)
	}
	return g, nil
}
