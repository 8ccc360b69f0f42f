// Package cell implements the document tree: cells that hold text and
// optionally own a nested grid of further cells, and the layout engine that
// sizes and positions them.
package cell

import (
	"image"

	"github.com/kobzarvs/treesheets/internal/draw"
	"github.com/kobzarvs/treesheets/internal/text"
)

// NoImage marks a cell without an image reference.
const NoImage = -1

// MaxBorderWidth is the widest border a cell may carry.
const MaxBorderWidth = 5

type DrawStyle uint8

const (
	DrawGrid DrawStyle = iota
	DrawBubbles
	DrawLines
)

// Type is the evaluation role of a cell.
type Type uint8

const (
	TypeData Type = iota
	TypeCode
	TypeVarAssign
	TypeViewH
	TypeVarRead
	TypeViewV
)

// Placement says where the label goes relative to the grid.
type Placement uint8

const (
	TextAbove Placement = iota
	TextBeside
	TextBelow
)

// Cell is a tree node. It owns its Grid exclusively; Image is a lookup key
// into the document's image list, never an owner.
type Cell struct {
	Text        text.Text
	Grid        *Grid
	CellColor   draw.Color
	TextColor   draw.Color
	BorderColor draw.Color
	BorderWidth int
	Tag         string
	Image       int
	DrawStyle   DrawStyle
	Type        Type
	Placement   Placement

	// parent is the grid holding this cell. It is only used to invalidate
	// cached layout upwards.
	parent *Grid

	valid    bool
	key      layoutKey
	w, h     int
	tw, th   int
	pad      int
	imgW     int
	imgH     int
	fontSize int
	tiny     bool
	wrapped  text.Wrapped

	offset     image.Point
	textOrigin image.Point
	imgOrigin  image.Point
}

// New returns an empty leaf with default colors.
func New() *Cell {
	return &Cell{
		CellColor:   draw.DefaultCellColor,
		TextColor:   draw.DefaultTextColor,
		BorderColor: draw.DefaultBorderColor,
		Image:       NoImage,
	}
}

func NewText(s string) *Cell {
	c := New()
	c.Text.Value = s
	return c
}

func (c *Cell) HasText() bool  { return !c.Text.IsEmpty() }
func (c *Cell) HasGrid() bool  { return c.Grid != nil }
func (c *Cell) HasImage() bool { return c.Image != NoImage }

// Parent returns the cell owning the grid this cell sits in.
func (c *Cell) Parent() *Cell {
	if c.parent == nil {
		return nil
	}
	return c.parent.owner
}

// ParentGrid returns the grid holding this cell, nil for a root.
func (c *Cell) ParentGrid() *Grid {
	return c.parent
}

// Invalidate drops the cached layout of c and every ancestor. Call it after
// changing exported fields directly.
func (c *Cell) Invalidate() {
	for n := c; n != nil; n = n.Parent() {
		n.valid = false
	}
}

// InvalidateTree drops cached layout for the whole subtree, needed when the
// measurer itself is swapped.
func (c *Cell) InvalidateTree() {
	c.Walk(func(n *Cell, _ int) bool {
		n.valid = false
		return true
	})
	c.Invalidate()
}

func (c *Cell) SetText(s string) {
	c.Text.SetValue(s)
	c.Invalidate()
}

func (c *Cell) SetStyle(s draw.Style) {
	c.Text.SetStyle(s)
	c.Invalidate()
}

func (c *Cell) SetRelSize(rel int, o Options) {
	c.Text.SetRelSize(rel, o.MinTextDelta, o.MaxTextDelta)
	c.Invalidate()
}

func (c *Cell) SetBorder(width int, color draw.Color) {
	if width < 0 {
		width = 0
	}
	if width > MaxBorderWidth {
		width = MaxBorderWidth
	}
	c.BorderWidth = width
	c.BorderColor = color
	c.Invalidate()
}

func (c *Cell) SetImage(i int) {
	c.Image = i
	c.Invalidate()
}

func (c *Cell) SetPlacement(p Placement) {
	c.Placement = p
	c.Invalidate()
}

// Folded reports whether the cell hides its grid.
func (c *Cell) Folded() bool {
	return c.Grid != nil && c.Grid.Folded
}

// SetFolded folds or unfolds the grid; the grid stays in memory either way.
func (c *Cell) SetFolded(fold bool) {
	if c.Grid == nil || c.Grid.Folded == fold {
		return
	}
	c.Grid.Folded = fold
	c.Invalidate()
}

// FoldAll applies fold to every grid in the subtree.
func (c *Cell) FoldAll(fold bool) {
	c.Walk(func(n *Cell, _ int) bool {
		if n.Grid != nil {
			n.Grid.Folded = fold
			n.valid = false
		}
		return true
	})
	c.Invalidate()
}

func (c *Cell) UnfoldAll() { c.FoldAll(false) }

// Walk visits the subtree in pre-order, folded grids included. Returning
// false from fn skips the children of that cell.
func (c *Cell) Walk(fn func(c *Cell, depth int) bool) {
	c.walk(fn, 0)
}

func (c *Cell) walk(fn func(*Cell, int) bool, depth int) {
	if !fn(c, depth) || c.Grid == nil {
		return
	}
	for _, ch := range c.Grid.cells {
		ch.walk(fn, depth+1)
	}
}

// Count returns the number of cells in the subtree and their total text bytes.
func (c *Cell) Count() (cells, textBytes int) {
	c.Walk(func(n *Cell, _ int) bool {
		cells++
		textBytes += len(n.Text.Value)
		return true
	})
	return cells, textBytes
}

// Clone deep-copies the subtree. The copy has no parent and no cached layout.
func (c *Cell) Clone() *Cell {
	n := c.shallow()
	if c.Grid != nil {
		n.SetGrid(c.Grid.clone())
	}
	return n
}

// shallow copies the attributes of c without its grid.
func (c *Cell) shallow() *Cell {
	return &Cell{
		Text:        c.Text,
		CellColor:   c.CellColor,
		TextColor:   c.TextColor,
		BorderColor: c.BorderColor,
		BorderWidth: c.BorderWidth,
		Tag:         c.Tag,
		Image:       c.Image,
		DrawStyle:   c.DrawStyle,
		Type:        c.Type,
		Placement:   c.Placement,
	}
}

// SetGrid makes c the owner of g, replacing any previous grid.
func (c *Cell) SetGrid(g *Grid) {
	if c.Grid != nil {
		c.Grid.owner = nil
	}
	c.Grid = g
	if g != nil {
		g.owner = c
	}
	c.Invalidate()
}

// AddGrid gives a leaf a fresh cols x rows grid of empty cells.
func (c *Cell) AddGrid(cols, rows int) (*Grid, error) {
	if c.Grid != nil {
		return nil, ErrHasGrid
	}
	g, err := NewGrid(cols, rows)
	if err != nil {
		return nil, err
	}
	c.SetGrid(g)
	return g, nil
}

// At is the child at x, y of the cell's grid, or nil.
func (c *Cell) At(x, y int) *Cell {
	if c.Grid == nil {
		return nil
	}
	return c.Grid.At(x, y)
}

// RemoveGrid destroys the grid and everything under it.
func (c *Cell) RemoveGrid() {
	c.SetGrid(nil)
}

// Flatten replaces a nested structure with a single column holding every
// leaf of the subtree in pre-order.
func (c *Cell) Flatten() {
	if c.Grid == nil {
		return
	}
	var leaves []*Cell
	for _, ch := range c.Grid.cells {
		ch.Walk(func(n *Cell, _ int) bool {
			if n.Grid == nil {
				leaves = append(leaves, n)
				return true
			}
			if n.HasText() {
				leaves = append(leaves, n.shallow())
			}
			return true
		})
	}
	if len(leaves) == 0 {
		leaves = append(leaves, New())
	}
	g := &Grid{
		Cols:       1,
		Rows:       len(leaves),
		ColWidths:  []int{AutoWidth},
		Spacing:    c.Grid.Spacing,
		cells:      leaves,
		RowHeights: make([]int, len(leaves)),
	}
	for _, l := range leaves {
		l.parent = g
		l.valid = false
	}
	c.SetGrid(g)
}

// Size returns the cached layout size.
func (c *Cell) Size() (w, h int) { return c.w, c.h }

// Rect is the cell's placed rectangle.
func (c *Cell) Rect() image.Rectangle {
	return image.Rectangle{Min: c.offset, Max: c.offset.Add(image.Pt(c.w, c.h))}
}

// TextRect covers the label and its image.
func (c *Cell) TextRect() image.Rectangle {
	return image.Rectangle{Min: c.textOrigin, Max: c.textOrigin.Add(image.Pt(c.tw, c.th))}
}

// ImageRect is where the image is drawn; empty without one.
func (c *Cell) ImageRect() image.Rectangle {
	return image.Rectangle{Min: c.imgOrigin, Max: c.imgOrigin.Add(image.Pt(c.imgW, c.imgH))}
}

// GridRect is the placed rectangle of the grid; empty when there is no
// visible grid.
func (c *Cell) GridRect() image.Rectangle {
	if c.Grid == nil || c.Grid.Folded {
		return image.Rectangle{}
	}
	return c.Grid.Rect()
}

// Wrapped is the line layout of the label from the last Layout call.
func (c *Cell) Wrapped() text.Wrapped { return c.wrapped }

// FontSize is the point size picked by the last Layout call; 0 when tiny.
func (c *Cell) FontSize() int { return c.fontSize }

// Tiny reports whether the last layout was forced to fit.
func (c *Cell) Tiny() bool { return c.tiny }
