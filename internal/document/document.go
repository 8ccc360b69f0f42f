// Package document ties a cell tree to its image list, tag table and view
// state. It keeps image references and tags consistent but leaves structural
// edits to callers working on Root directly.
package document

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/kobzarvs/treesheets/internal/cell"
	"github.com/kobzarvs/treesheets/internal/draw"
	"github.com/kobzarvs/treesheets/internal/images"
)

var ErrOutOfBoundsSelection = errors.New("selection out of bounds")

// Step selects slot X, Y in the grid of the current cell.
type Step struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Path routes from the root to a descendant. An empty path is the root.
type Path []Step

func (p Path) Clone() Path {
	return append(Path(nil), p...)
}

type Document struct {
	Root   *cell.Cell
	Images *images.List
	Tags   *TagTable
	// Version is the format version the document was loaded at or last
	// saved with. Zero for a document never read from or written to disk.
	Version uint8

	Selection Path
	SelWidth  uint8
	SelHeight uint8
	// Zoom is how many steps of Selection the view descends before drawing.
	Zoom    uint8
	ScrollX int
	ScrollY int
}

// New returns a document whose root holds a single empty slot.
func New() *Document {
	root := cell.New()
	if _, err := root.AddGrid(1, 1); err != nil {
		panic(err)
	}
	d := Empty()
	d.Root = root
	return d
}

// Empty returns a document with no root, ready to be filled by a loader.
func Empty() *Document {
	return &Document{
		Images:    images.NewList(),
		Tags:      NewTagTable(),
		SelWidth:  1,
		SelHeight: 1,
	}
}

// WalkPath follows path from the root. When a step leaves the grid it is
// standing on, the walk stops at the deepest valid cell and returns it with
// the clamped path and an error wrapping ErrOutOfBoundsSelection.
func (d *Document) WalkPath(path Path) (*cell.Cell, Path, error) {
	c := d.Root
	for i, s := range path {
		if c.Grid == nil {
			return c, path[:i].Clone(), fmt.Errorf("%w: step %d into a cell without grid", ErrOutOfBoundsSelection, i)
		}
		next := c.Grid.At(s.X, s.Y)
		if next == nil {
			return c, path[:i].Clone(), fmt.Errorf("%w: step %d (%d,%d) outside %dx%d",
				ErrOutOfBoundsSelection, i, s.X, s.Y, c.Grid.Cols, c.Grid.Rows)
		}
		c = next
	}
	return c, path.Clone(), nil
}

// ClampSelection repairs the stored selection after the tree changed shape.
// The returned error is informational; the selection is usable either way.
func (d *Document) ClampSelection() error {
	_, p, err := d.WalkPath(d.Selection)
	d.Selection = p
	if int(d.Zoom) > len(p) {
		d.Zoom = uint8(len(p))
	}
	return err
}

// Selected is the cell at the end of the selection.
func (d *Document) Selected() *cell.Cell {
	c, _, _ := d.WalkPath(d.Selection)
	return c
}

// Select points the selection at path, clamped to the tree.
func (d *Document) Select(path Path) error {
	d.Selection = path.Clone()
	return d.ClampSelection()
}

// ViewRoot is the cell drawn as the top of the view.
func (d *Document) ViewRoot() *cell.Cell {
	n := min(int(d.Zoom), len(d.Selection))
	c, _, _ := d.WalkPath(d.Selection[:n])
	return c
}

func (d *Document) ZoomIn() {
	if int(d.Zoom) < len(d.Selection) {
		d.Zoom++
	}
}

func (d *Document) ZoomOut() {
	if d.Zoom > 0 {
		d.Zoom--
	}
}

func (d *Document) Background() draw.Color {
	return d.Root.CellColor
}

// AddImage stores data in the image list, reusing an identical image if
// present, and points c at it.
func (d *Document) AddImage(c *cell.Cell, data []byte, typ byte, scale float64) int {
	i := d.Images.Add(data, typ, scale, images.Hash(data))
	c.SetImage(i)
	return i
}

// Sweep recounts image references from the tree, drops unreferenced images,
// renumbers cell references to match and registers any tag a cell uses but
// the table lacks. It returns the old-to-new image index map.
func (d *Document) Sweep() []int {
	d.Images.ResetRefs()
	d.Root.Walk(func(c *cell.Cell, _ int) bool {
		if c.Image != cell.NoImage {
			if c.Image >= d.Images.Len() || c.Image < 0 {
				c.Image = cell.NoImage
				c.Invalidate()
			} else {
				d.Images.Ref(c.Image)
			}
		}
		if c.Tag != "" && !d.Tags.Has(c.Tag) {
			d.Tags.Set(c.Tag, draw.DefaultTagColor)
		}
		return true
	})
	remap := d.Images.Prune()
	d.Root.Walk(func(c *cell.Cell, _ int) bool {
		if c.Image != cell.NoImage {
			c.Image = remap[c.Image]
		}
		return true
	})
	return remap
}

// ImageSizer adapts the image list to layout at the given display scale.
func (d *Document) ImageSizer(displayScale float64) cell.ImageSizer {
	return imageSizer{list: d.Images, scale: displayScale}
}

type imageSizer struct {
	list  *images.List
	scale float64
}

func (s imageSizer) DisplaySize(i int) (int, int, bool) {
	return s.list.DisplaySize(i, s.scale)
}

// Layout sizes the view root within width and places it at origin.
func (d *Document) Layout(ctx *cell.Context, width int, origin image.Point) (w, h int) {
	root := d.ViewRoot()
	w, h = root.Layout(ctx, width, false)
	root.Place(origin)
	return w, h
}

// Stats reports the number of cells and label bytes in the document.
func (d *Document) Stats() (cells, textBytes int) {
	return d.Root.Count()
}

// ExportText writes the tree as an outline: one line per labelled cell,
// indented with a tab per nesting level below the root. Runs of whitespace
// inside a label collapse to one space.
func (d *Document) ExportText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var err error
	d.Root.Walk(func(c *cell.Cell, depth int) bool {
		if err != nil {
			return false
		}
		if !c.HasText() {
			return true
		}
		indent := max(depth-1, 0)
		line := strings.Join(strings.Fields(c.Text.Value), " ")
		_, err = fmt.Fprintf(bw, "%s%s\n", strings.Repeat("\t", indent), line)
		return true
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
