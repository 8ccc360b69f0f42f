package cell

import (
	"image"
	"testing"

	"github.com/kobzarvs/treesheets/internal/draw"
)

type countingMeasurer struct {
	draw.FixedMeasurer
	extents int
	fonts   []int
}

func (m *countingMeasurer) TextExtent(s string) (int, int) {
	m.extents++
	return m.FixedMeasurer.TextExtent(s)
}

func (m *countingMeasurer) SetFont(size int, style draw.Style) {
	m.fonts = append(m.fonts, size)
}

func newTestContext() (*Context, *countingMeasurer) {
	m := &countingMeasurer{FixedMeasurer: draw.FixedMeasurer{Width: 10, Height: 10}}
	return &Context{Measure: m, Opts: DefaultOptions()}, m
}

func mustGrid(t *testing.T, c *Cell, cols, rows int) *Grid {
	t.Helper()
	g, err := c.AddGrid(cols, rows)
	if err != nil {
		t.Fatalf("AddGrid(%d,%d): %v", cols, rows, err)
	}
	return g
}

func TestLayoutLeaf(t *testing.T) {
	ctx, _ := newTestContext()
	c := NewText("Hello")
	w, h := c.Layout(ctx, 400, false)
	if w != 54 || h != 14 {
		t.Fatalf("Layout = %dx%d, want 54x14", w, h)
	}
}

func TestLayoutLeafWrapsWithinMargins(t *testing.T) {
	ctx, _ := newTestContext()
	c := NewText("Hello World")
	c.SetBorder(1, draw.DefaultBorderColor)
	// 86 - 2*(2+1) = 80 leaves room for "Hello" but not "Hello World"
	w, h := c.Layout(ctx, 86, false)
	if got := len(c.Wrapped().Lines); got != 2 {
		t.Fatalf("lines = %d, want 2", got)
	}
	if w != 56 || h != 26 {
		t.Fatalf("Layout = %dx%d, want 56x26", w, h)
	}
}

func TestLayoutEmptyLeafIsSquare(t *testing.T) {
	ctx, _ := newTestContext()
	w, h := New().Layout(ctx, 400, false)
	if w != 14 || h != 14 {
		t.Fatalf("Layout = %dx%d, want 14x14", w, h)
	}
}

func TestLayoutGrid(t *testing.T) {
	ctx, _ := newTestContext()
	root := New()
	g := mustGrid(t, root, 2, 1)
	g.At(0, 0).SetText("ab")
	g.At(1, 0).SetText("abc")
	w, h := root.Layout(ctx, 1000, false)
	if w != 74 || h != 28 {
		t.Fatalf("Layout = %dx%d, want 74x28", w, h)
	}
	gw, gh := g.Size()
	if gw != 70 || gh != 24 {
		t.Fatalf("grid = %dx%d, want 70x24", gw, gh)
	}
	root.Place(image.Pt(0, 0))
	if got := g.At(0, 0).Rect().Min; got != image.Pt(7, 7) {
		t.Fatalf("cell(0,0) at %v, want (7,7)", got)
	}
	if got := g.At(1, 0).Rect().Min; got != image.Pt(33, 7) {
		t.Fatalf("cell(1,0) at %v, want (33,7)", got)
	}
	if got := g.SlotRect(0, 0); got.Dx() != 24 || got.Dy() != 14 {
		t.Fatalf("slot(0,0) = %v, want 24x14", got)
	}
	if got := root.GridRect(); got != g.Rect() || got.Dx() != 70 || got.Dy() != 24 {
		t.Fatalf("GridRect = %v, want %v (70x24)", got, g.Rect())
	}
	if root.At(1, 0) != g.At(1, 0) || root.At(2, 0) != nil {
		t.Fatalf("At does not follow the grid")
	}
}

func TestLayoutGridWidthCoversExplicitColumns(t *testing.T) {
	ctx, _ := newTestContext()
	root := New()
	g := mustGrid(t, root, 3, 2)
	g.At(0, 0).SetText("a much longer piece of text that wraps")
	if err := g.SetColWidth(0, 60); err != nil {
		t.Fatal(err)
	}
	if err := g.SetColWidth(2, 200); err != nil {
		t.Fatal(err)
	}
	root.Layout(ctx, 1000, false)
	gw, _ := g.Size()
	if gw < 260 {
		t.Fatalf("grid width %d < sum of explicit widths 260", gw)
	}
	if cw := g.ColumnWidths()[2]; cw != 200 {
		t.Fatalf("column 2 width = %d, want 200", cw)
	}
}

func TestLayoutIdempotentAndMemoized(t *testing.T) {
	ctx, m := newTestContext()
	root := New()
	g := mustGrid(t, root, 2, 2)
	for i, c := range g.Cells() {
		c.SetText(string(rune('a'+i)) + " word")
	}
	w1, h1 := root.Layout(ctx, 500, false)
	calls := m.extents
	w2, h2 := root.Layout(ctx, 500, false)
	if w1 != w2 || h1 != h2 {
		t.Fatalf("Layout not idempotent: %dx%d then %dx%d", w1, h1, w2, h2)
	}
	if m.extents != calls {
		t.Fatalf("cached layout measured text again (%d -> %d calls)", calls, m.extents)
	}

	g.At(1, 1).SetText("changed text")
	w3, _ := root.Layout(ctx, 500, false)
	if m.extents == calls {
		t.Fatalf("mutation did not invalidate the cache")
	}
	if w3 <= w1 {
		t.Fatalf("width after longer text = %d, want > %d", w3, w1)
	}
}

func TestLayoutOptionsChangeInvalidates(t *testing.T) {
	ctx, m := newTestContext()
	c := NewText("abc")
	c.Layout(ctx, 100, false)
	calls := m.extents
	ctx.Opts.DefaultTextSize = 20
	c.Layout(ctx, 100, false)
	if m.extents == calls {
		t.Fatalf("font size change did not recompute layout")
	}
}

func TestLayoutFoldedSkipsGrid(t *testing.T) {
	ctx, m := newTestContext()
	root := NewText("label")
	g := mustGrid(t, root, 3, 3)
	for _, c := range g.Cells() {
		c.SetText("child")
	}
	root.SetFolded(true)
	w, h := root.Layout(ctx, 1000, false)
	if w != 54 || h != 14 {
		t.Fatalf("folded Layout = %dx%d, want label only 54x14", w, h)
	}
	if len(m.fonts) != 1 {
		t.Fatalf("folded children were laid out (%d SetFont calls)", len(m.fonts))
	}
	if root.Grid == nil || len(root.Grid.Cells()) != 9 {
		t.Fatalf("folding dropped the grid")
	}
	root.SetFolded(false)
	if w2, _ := root.Layout(ctx, 1000, false); w2 <= w {
		t.Fatalf("unfolded width %d, want > %d", w2, w)
	}
}

func TestLayoutPlacement(t *testing.T) {
	ctx, _ := newTestContext()
	build := func(p Placement) *Cell {
		c := NewText("lbl")
		g := mustGrid(t, c, 1, 1)
		g.At(0, 0).SetText("x")
		c.SetPlacement(p)
		return c
	}
	above := build(TextAbove)
	aw, ah := above.Layout(ctx, 1000, false)
	beside := build(TextBeside)
	bw, bh := beside.Layout(ctx, 1000, false)
	if bw <= aw || bh >= ah {
		t.Fatalf("beside %dx%d should be wider and shorter than above %dx%d", bw, bh, aw, ah)
	}
	below := build(TextBelow)
	below.Layout(ctx, 1000, false)
	below.Place(image.Pt(0, 0))
	if below.TextRect().Min.Y <= below.Grid.Rect().Min.Y {
		t.Fatalf("text below grid placed at %v, grid at %v", below.TextRect(), below.Grid.Rect())
	}
}

func TestLayoutFontSizeByDepth(t *testing.T) {
	ctx, m := newTestContext()
	root := NewText("r")
	g := mustGrid(t, root, 1, 1)
	g.At(0, 0).SetText("child")
	g.At(0, 0).SetRelSize(-100, ctx.Opts)
	root.Layout(ctx, 1000, false)
	if root.FontSize() != 12 {
		t.Fatalf("root font = %d, want 12", root.FontSize())
	}
	if got := g.At(0, 0).FontSize(); got != 4 {
		t.Fatalf("child font = %d, want clamp to 4", got)
	}
	if len(m.fonts) != 2 {
		t.Fatalf("SetFont calls = %v", m.fonts)
	}
}

func TestLayoutForceFitUsesNoMeasurer(t *testing.T) {
	ctx := &Context{Opts: DefaultOptions()}
	root := NewText("tiny")
	g := mustGrid(t, root, 2, 1)
	g.At(0, 0).SetText("ab")
	w, h := root.Layout(ctx, 1000, true)
	if w <= 0 || h <= 0 {
		t.Fatalf("tiny Layout = %dx%d", w, h)
	}
	if !g.At(0, 0).Tiny() {
		t.Fatalf("child not tiny")
	}
}

type fakeImages map[int]image.Point

func (f fakeImages) DisplaySize(i int) (int, int, bool) {
	p, ok := f[i]
	return p.X, p.Y, ok
}

func TestLayoutImageBesideText(t *testing.T) {
	ctx, _ := newTestContext()
	ctx.Images = fakeImages{0: image.Pt(30, 40)}
	c := NewText("ab")
	c.SetImage(0)
	w, h := c.Layout(ctx, 1000, false)
	// text 20 + margin 2 + image 30, height max(10, 40), plus 2*2 padding
	if w != 56 || h != 44 {
		t.Fatalf("Layout = %dx%d, want 56x44", w, h)
	}
	c.Place(image.Pt(0, 0))
	if r := c.ImageRect(); r.Min.X != 24 || r.Dx() != 30 {
		t.Fatalf("ImageRect = %v", r)
	}
}
