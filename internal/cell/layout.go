package cell

import (
	"image"

	"github.com/kobzarvs/treesheets/internal/draw"
)

// Options carries the layout configuration. It is passed explicitly to every
// layout call; changing any field invalidates cached sizes.
type Options struct {
	DefaultTextSize int
	MinTextDelta    int
	MaxTextDelta    int
	MaxColumnWidth  int
	CellMargin      int
	GridMargin      int
	LineWidth       int
}

// DefaultOptions is tuned for a pixel measurer.
func DefaultOptions() Options {
	return Options{
		DefaultTextSize: 12,
		MinTextDelta:    8,
		MaxTextDelta:    32,
		MaxColumnWidth:  480,
		CellMargin:      2,
		GridMargin:      1,
		LineWidth:       1,
	}
}

// FontSize is the point size for text at depth with relative size rel,
// clamped to the configured band around the default.
func (o Options) FontSize(rel, depth int) int {
	s := o.DefaultTextSize + rel - depth
	if lo := o.DefaultTextSize - o.MinTextDelta; s < lo {
		s = lo
	}
	if hi := o.DefaultTextSize + o.MaxTextDelta; s > hi {
		s = hi
	}
	if s < 1 {
		s = 1
	}
	return s
}

// gap is the space between neighbouring slots and around the outer ones.
func (o Options) gap() int {
	return o.LineWidth + o.GridMargin
}

// ImageSizer reports the display size of an image reference.
type ImageSizer interface {
	DisplaySize(i int) (w, h int, ok bool)
}

// Context bundles what layout needs besides the tree itself.
type Context struct {
	Measure draw.Measurer
	Opts    Options
	Images  ImageSizer
}

type layoutKey struct {
	maxWidth int
	forceFit bool
	depth    int
	opts     Options
}

// Layout computes the size of c and its unfolded descendants within
// maxWidth. forceFit lays the subtree out in tiny mode: one unit per rune and
// line with no font measurement. Results are cached until c or a descendant
// changes, so repeated calls with the same arguments are free and identical.
func (c *Cell) Layout(ctx *Context, maxWidth int, forceFit bool) (w, h int) {
	return c.layout(ctx, 0, maxWidth, forceFit)
}

func (c *Cell) layout(ctx *Context, depth, maxWidth int, forceFit bool) (int, int) {
	key := layoutKey{maxWidth: maxWidth, forceFit: forceFit, depth: depth, opts: ctx.Opts}
	if c.valid && c.key == key {
		return c.w, c.h
	}
	o := ctx.Opts
	c.pad = o.CellMargin + c.BorderWidth
	inner := maxWidth - 2*c.pad
	if inner < 1 {
		inner = 1
	}
	c.tiny = forceFit
	c.imgW, c.imgH = 0, 0
	lineH := 1
	if forceFit {
		c.fontSize = 0
		c.wrapped = c.Text.Tiny(inner)
	} else {
		c.fontSize = o.FontSize(c.Text.RelSize, depth)
		ctx.Measure.SetFont(c.fontSize, c.Text.Style)
		lineH = ctx.Measure.CharHeight()
		if c.Image != NoImage && ctx.Images != nil {
			if iw, ih, ok := ctx.Images.DisplaySize(c.Image); ok {
				c.imgW, c.imgH = iw, ih
			}
		}
		budget := inner
		if c.imgW > 0 {
			budget -= c.imgW + o.CellMargin
		}
		if budget < 1 {
			budget = 1
		}
		c.wrapped = c.Text.Wrap(ctx.Measure, budget)
	}

	gridVisible := c.Grid != nil && !c.Grid.Folded
	tw, th := c.wrapped.Width, c.wrapped.Height
	switch {
	case c.imgW > 0:
		if c.HasText() {
			tw += c.imgW + o.CellMargin
		} else {
			tw = c.imgW
		}
		th = max(th, c.imgH)
	case !c.HasText() && gridVisible:
		tw, th = 0, 0
	case !c.HasText():
		tw, th = lineH, lineH
	}
	c.tw, c.th = tw, th

	gw, gh := 0, 0
	if gridVisible {
		gw, gh = c.Grid.layout(ctx, depth+1, forceFit)
	}
	var cw, ch int
	switch c.Placement {
	case TextBeside:
		cw, ch = tw+gw, max(th, gh)
	default:
		cw, ch = max(tw, gw), th+gh
	}
	c.w, c.h = cw+2*c.pad, ch+2*c.pad
	c.key, c.valid = key, true
	return c.w, c.h
}

func (g *Grid) layout(ctx *Context, depth int, forceFit bool) (int, int) {
	o := ctx.Opts
	if len(g.colPx) != g.Cols {
		g.colPx = make([]int, g.Cols)
	}
	if len(g.RowHeights) != g.Rows {
		g.RowHeights = make([]int, g.Rows)
	}
	for x := range g.colPx {
		g.colPx[x] = 0
	}
	for y := range g.RowHeights {
		g.RowHeights[y] = 0
	}
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			budget := o.MaxColumnWidth
			if g.ColWidths[x] != AutoWidth {
				budget = g.ColWidths[x]
			}
			w, h := g.cells[y*g.Cols+x].layout(ctx, depth, budget, forceFit)
			g.colPx[x] = max(g.colPx[x], w)
			g.RowHeights[y] = max(g.RowHeights[y], h)
		}
	}
	for x, fixed := range g.ColWidths {
		g.colPx[x] = max(g.colPx[x], fixed)
	}
	g.gap = o.gap()
	g.w = 2*g.Spacing + (g.Cols+1)*g.gap
	for _, w := range g.colPx {
		g.w += w
	}
	g.h = 2*g.Spacing + (g.Rows+1)*g.gap
	for _, h := range g.RowHeights {
		g.h += h
	}
	return g.w, g.h
}

// Size returns the grid size from the last layout.
func (g *Grid) Size() (w, h int) { return g.w, g.h }

// ColumnWidths returns the laid out width of every column.
func (g *Grid) ColumnWidths() []int { return g.colPx }

// Place assigns screen offsets to c and its visible descendants. It must
// follow a Layout call.
func (c *Cell) Place(origin image.Point) {
	c.offset = origin
	inner := origin.Add(image.Pt(c.pad, c.pad))
	gridOrigin := inner
	c.textOrigin = inner
	gridVisible := c.Grid != nil && !c.Grid.Folded
	switch c.Placement {
	case TextBeside:
		gridOrigin = inner.Add(image.Pt(c.tw, 0))
	case TextBelow:
		if gridVisible {
			c.textOrigin = inner.Add(image.Pt(0, c.Grid.h))
		}
	default:
		gridOrigin = inner.Add(image.Pt(0, c.th))
	}
	c.imgOrigin = c.textOrigin
	if c.imgW > 0 && c.HasText() {
		c.imgOrigin = c.textOrigin.Add(image.Pt(c.tw-c.imgW, 0))
	}
	if gridVisible {
		c.Grid.place(gridOrigin)
	}
}

func (g *Grid) place(origin image.Point) {
	g.offset = origin
	y := origin.Y + g.Spacing + g.gap
	for row := 0; row < g.Rows; row++ {
		x := origin.X + g.Spacing + g.gap
		for col := 0; col < g.Cols; col++ {
			g.cells[row*g.Cols+col].Place(image.Pt(x, y))
			x += g.colPx[col] + g.gap
		}
		y += g.RowHeights[row] + g.gap
	}
}

// Rect is the placed rectangle of the grid.
func (g *Grid) Rect() image.Rectangle {
	return image.Rectangle{Min: g.offset, Max: g.offset.Add(image.Pt(g.w, g.h))}
}

// SlotRect is the laid out area of slot x, y: the full column width and row
// height, which may be larger than the cell's own size.
func (g *Grid) SlotRect(x, y int) image.Rectangle {
	if !g.InRange(x, y) || len(g.colPx) != g.Cols {
		return image.Rectangle{}
	}
	at := g.cells[y*g.Cols+x].offset
	return image.Rectangle{Min: at, Max: at.Add(image.Pt(g.colPx[x], g.RowHeights[y]))}
}
