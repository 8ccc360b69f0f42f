// Package viewer paints a laid out document on a terminal screen and moves
// the selection through it.
package viewer

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/treesheets/internal/cell"
	"github.com/kobzarvs/treesheets/internal/config"
	"github.com/kobzarvs/treesheets/internal/document"
	"github.com/kobzarvs/treesheets/internal/draw"
	"github.com/kobzarvs/treesheets/internal/images"
)

const (
	imageLabel   = "[image]"
	corruptLabel = "[corrupt image]"
)

// Viewer renders one document. It is not safe for concurrent use.
type Viewer struct {
	doc     *document.Document
	opts    cell.Options
	margin  int
	keymap  map[string]string
	styles  styles
	measure draw.CellMeasurer

	title   string
	message string

	// freeScroll keeps the scroll position after explicit scrolling instead
	// of following the selection.
	freeScroll bool
	width      int
	viewHeight int
}

func New(doc *document.Document, cfg config.Config) *Viewer {
	return &Viewer{
		doc:    doc,
		opts:   cfg.Layout.Options(),
		margin: cfg.Layout.MarginExtra,
		keymap: cfg.Keymap.View,
		styles: newStyles(cfg.Theme),
	}
}

func (v *Viewer) Document() *document.Document { return v.doc }

// SetDocument swaps the displayed document, e.g. after a reload.
func (v *Viewer) SetDocument(doc *document.Document) {
	v.doc = doc
	v.freeScroll = false
}

// SetTitle sets the name shown in the status line.
func (v *Viewer) SetTitle(title string) { v.title = title }

// SetMessage shows msg in the status line until the next key.
func (v *Viewer) SetMessage(msg string) { v.message = msg }

// termImages sizes images as their one-line placeholder.
type termImages struct {
	list *images.List
}

func (t termImages) label(i int) (string, bool) {
	if _, _, err := t.list.Decode(i); err != nil {
		if errors.Is(err, images.ErrNoImage) {
			return "", false
		}
		return corruptLabel, true
	}
	return imageLabel, true
}

func (t termImages) DisplaySize(i int) (int, int, bool) {
	l, ok := t.label(i)
	if !ok {
		return 0, 0, false
	}
	return runewidth.StringWidth(l), 1, true
}

func (v *Viewer) context() *cell.Context {
	return &cell.Context{Measure: &v.measure, Opts: v.opts, Images: termImages{list: v.doc.Images}}
}

func (v *Viewer) origin() image.Point {
	return image.Pt(v.margin-v.doc.ScrollX, v.margin-v.doc.ScrollY)
}

func (v *Viewer) Render(s tcell.Screen) {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}
	viewHeight := h - 1
	if viewHeight < 0 {
		viewHeight = 0
	}
	v.width, v.viewHeight = w, viewHeight

	s.SetStyle(v.styles.main)
	s.Clear()

	_ = v.doc.ClampSelection()
	ctx := v.context()
	cw, ch := v.doc.Layout(ctx, max(w-2*v.margin, 1), v.origin())
	if !v.freeScroll {
		v.scrollToSelection(w, viewHeight)
	}
	v.clampScroll(cw+2*v.margin, ch+2*v.margin, w, viewHeight)
	root := v.doc.ViewRoot()
	root.Place(v.origin())

	sel := v.doc.Selected()
	root.Walk(func(c *cell.Cell, _ int) bool {
		v.paintCell(s, c, c == sel)
		return c.Grid != nil && !c.Grid.Folded
	})

	v.renderStatusline(s, w, h-1)
	s.Show()
}

func (v *Viewer) scrollToSelection(w, h int) {
	d := v.doc
	r := d.Selected().Rect()
	top, bottom := r.Min.Y+d.ScrollY, r.Max.Y+d.ScrollY
	if bottom-d.ScrollY > h {
		d.ScrollY = bottom - h
	}
	if top-d.ScrollY < 0 {
		d.ScrollY = top
	}
	left, right := r.Min.X+d.ScrollX, r.Max.X+d.ScrollX
	if right-d.ScrollX > w {
		d.ScrollX = right - w
	}
	if left-d.ScrollX < 0 {
		d.ScrollX = left
	}
}

func (v *Viewer) clampScroll(contentW, contentH, w, h int) {
	d := v.doc
	d.ScrollX = min(d.ScrollX, max(contentW-w, 0))
	d.ScrollY = min(d.ScrollY, max(contentH-h, 0))
	d.ScrollX = max(d.ScrollX, 0)
	d.ScrollY = max(d.ScrollY, 0)
}

// put draws inside the document area only.
func (v *Viewer) put(s tcell.Screen, x, y int, r rune, st tcell.Style) {
	if x < 0 || y < 0 || x >= v.width || y >= v.viewHeight {
		return
	}
	s.SetContent(x, y, r, nil, st)
}

func (v *Viewer) putString(s tcell.Screen, x, y int, str string, st tcell.Style) {
	for _, r := range str {
		v.put(s, x, y, r, st)
		x += max(runewidth.RuneWidth(r), 1)
	}
}

func (v *Viewer) fill(s tcell.Screen, r image.Rectangle, st tcell.Style) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			v.put(s, x, y, ' ', st)
		}
	}
}

func (v *Viewer) paintCell(s tcell.Screen, c *cell.Cell, selected bool) {
	base := v.styles.cell(c)
	if selected {
		base = v.styles.selection
	}
	v.fill(s, c.Rect(), base)

	if c.BorderWidth > 0 {
		ls := lineSet{}
		ls.box(c.Rect())
		border := v.styles.cellBorder(c)
		if selected {
			border = v.styles.selection
		}
		ls.draw(func(x, y int, r rune) { v.put(s, x, y, r, border) })
	}

	if c.HasText() {
		wr := c.Wrapped()
		tr := c.TextRect()
		st := withTextStyle(base, c.Text.Style)
		for i := range wr.Lines {
			v.putString(s, tr.Min.X, tr.Min.Y+i, c.Text.Line(wr, i), st)
		}
	}

	if c.HasImage() {
		if label, ok := (termImages{list: v.doc.Images}).label(c.Image); ok {
			ir := c.ImageRect()
			st := v.styles.image.Background(bgOf(base))
			v.putString(s, ir.Min.X, ir.Min.Y, label, st)
		}
	}

	if c.Grid != nil && !c.Grid.Folded && v.opts.LineWidth > 0 {
		v.paintGridLines(s, c.Grid, selected)
	}
}

func bgOf(st tcell.Style) tcell.Color {
	_, bg, _ := st.Decompose()
	return bg
}

// paintGridLines rules the first column and row of every gap between slots.
func (v *Viewer) paintGridLines(s tcell.Screen, g *cell.Grid, selected bool) {
	gap := v.opts.LineWidth + v.opts.GridMargin
	if len(g.ColumnWidths()) != g.Cols {
		return
	}
	first := g.SlotRect(0, 0)
	xs := []int{first.Min.X - gap}
	for x := 0; x < g.Cols; x++ {
		xs = append(xs, g.SlotRect(x, 0).Max.X)
	}
	ys := []int{first.Min.Y - gap}
	for y := 0; y < g.Rows; y++ {
		ys = append(ys, g.SlotRect(0, y).Max.Y)
	}
	ls := lineSet{}
	for _, y := range ys {
		ls.hline(xs[0], xs[len(xs)-1], y)
	}
	for _, x := range xs {
		ls.vline(x, ys[0], ys[len(ys)-1])
	}
	st := v.styles.border
	if v.styles.cellColors {
		st = v.styles.cellBorder(g.Owner())
	}
	if selected {
		st = v.styles.selection
	}
	ls.draw(func(x, y int, r rune) { v.put(s, x, y, r, st) })
}

func (v *Viewer) renderStatusline(s tcell.Screen, w, y int) {
	if y < 0 {
		return
	}
	left := " " + v.title
	if v.message != "" {
		left = " " + v.message
	}
	cells, _ := v.doc.Stats()
	right := fmt.Sprintf("%s  %d cells  zoom %d ", pathString(v.doc.Selection), cells, v.doc.Zoom)
	if tag := v.doc.Selected().Tag; tag != "" {
		right = "#" + tag + "  " + right
	}
	clearLine(s, y, w, v.styles.status)
	for x, r := range composeStatusLine(left, right, w) {
		s.SetContent(x, y, r, nil, v.styles.status)
	}
}

func pathString(p document.Path) string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, st := range p {
		fmt.Fprintf(&b, "/%d,%d", st.X, st.Y)
	}
	return b.String()
}

func clearLine(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	line := make([]rune, 0, width)
	line = append(line, leftRunes...)
	for i := len(leftRunes) + len(rightRunes); i < width; i++ {
		line = append(line, ' ')
	}
	return append(line, rightRunes...)
}
