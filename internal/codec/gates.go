package codec

import (
	"errors"
	"fmt"
	"time"

	"github.com/kobzarvs/treesheets/internal/cell"
	"github.com/kobzarvs/treesheets/internal/draw"
	"github.com/kobzarvs/treesheets/internal/text"
)

// gate is one field of a record that exists only in some format versions:
// from since up to, but excluding, until (0 means it is still written).
// Records are decoded by walking their gate table in stream order, so a new
// format version is a table edit. Absent fields take def, or keep the value
// the record was initialised with when def is nil.
type gate[T any] struct {
	name  string
	since uint8
	until uint8
	read  func(r *reader, v *T) error
	write func(w *writer, v *T)
	def   func(v *T) error
}

func (g gate[T]) present(version uint8) bool {
	return version >= g.since && (g.until == 0 || version < g.until)
}

func readGates[T any](r *reader, version uint8, gates []gate[T], v *T) error {
	for _, g := range gates {
		if !g.present(version) {
			if g.def != nil {
				if err := g.def(v); err != nil {
					return err
				}
			}
			continue
		}
		if err := g.read(r, v); err != nil {
			var le *LoadError
			if errors.As(err, &le) {
				return err
			}
			return fmt.Errorf("%s: %w", g.name, err)
		}
	}
	return nil
}

func writeGates[T any](w *writer, gates []gate[T], v *T) {
	for _, g := range gates {
		if g.present(CurrentVersion) && g.write != nil {
			g.write(w, v)
		}
	}
}

type headerRecord struct {
	selWidth  uint8
	selHeight uint8
	zoom      uint8
}

var headerGates = []gate[headerRecord]{
	{
		name:  "selection size",
		since: 21,
		read: func(r *reader, v *headerRecord) (err error) {
			if v.selWidth, err = r.u8(); err != nil {
				return err
			}
			v.selHeight, err = r.u8()
			return err
		},
		write: func(w *writer, v *headerRecord) {
			w.u8(v.selWidth)
			w.u8(v.selHeight)
		},
		def: func(v *headerRecord) error {
			v.selWidth, v.selHeight = 1, 1
			return nil
		},
	},
	{
		name:  "zoom",
		since: 23,
		read: func(r *reader, v *headerRecord) (err error) {
			v.zoom, err = r.u8()
			return err
		},
		write: func(w *writer, v *headerRecord) { w.u8(v.zoom) },
	},
}

type imageRecord struct {
	scale float64
	data  []byte
}

var imageGates = []gate[imageRecord]{
	{
		name:  "legacy name",
		until: 9,
		read: func(r *reader, _ *imageRecord) error {
			_, err := r.str()
			return err
		},
	},
	{
		name:  "scale",
		since: 19,
		read: func(r *reader, v *imageRecord) (err error) {
			v.scale, err = r.f64()
			return err
		},
		write: func(w *writer, v *imageRecord) { w.f64(v.scale) },
		def: func(v *imageRecord) error {
			v.scale = 1
			return nil
		},
	},
	{
		name:  "payload",
		since: 22,
		read: func(r *reader, v *imageRecord) error {
			n, err := r.u64()
			if err != nil {
				return err
			}
			if n > maxImageBytes {
				return failf(ErrCorruptBlockHeader, "image of %d bytes", n)
			}
			v.data, err = r.blob(n)
			return err
		},
		write: func(w *writer, v *imageRecord) {
			w.u64(uint64(len(v.data)))
			w.write(v.data)
		},
		def: func(*imageRecord) error {
			return failf(ErrUnsupportedLegacy, "images stored before format version 22")
		},
	},
}

// cellGates decode the attributes of a cell. Missing fields keep the
// defaults of cell.New.
var cellGates = []gate[cell.Cell]{
	{
		name: "type",
		read: func(r *reader, c *cell.Cell) error {
			v, err := r.u8()
			if err != nil {
				return err
			}
			if cell.Type(v) > cell.TypeViewV {
				return failf(ErrCorruptTree, "cell type %d", v)
			}
			c.Type = cell.Type(v)
			return nil
		},
		write: func(w *writer, c *cell.Cell) { w.u8(uint8(c.Type)) },
	},
	{
		name: "cell color",
		read: func(r *reader, c *cell.Cell) error {
			v, err := r.u32()
			c.CellColor = draw.Color(v)
			return err
		},
		write: func(w *writer, c *cell.Cell) { w.u32(uint32(c.CellColor)) },
	},
	{
		name:  "text color",
		since: 8,
		read: func(r *reader, c *cell.Cell) error {
			v, err := r.u32()
			c.TextColor = draw.Color(v)
			return err
		},
		write: func(w *writer, c *cell.Cell) { w.u32(uint32(c.TextColor)) },
	},
	{
		name:  "draw style",
		since: 15,
		read: func(r *reader, c *cell.Cell) error {
			v, err := r.u8()
			if err != nil {
				return err
			}
			if cell.DrawStyle(v) > cell.DrawLines {
				return failf(ErrCorruptTree, "draw style %d", v)
			}
			c.DrawStyle = cell.DrawStyle(v)
			return nil
		},
		write: func(w *writer, c *cell.Cell) { w.u8(uint8(c.DrawStyle)) },
	},
	{
		name:  "border",
		since: 24,
		read: func(r *reader, c *cell.Cell) error {
			color, err := r.u32()
			if err != nil {
				return err
			}
			width, err := r.u8()
			if err != nil {
				return err
			}
			if width > cell.MaxBorderWidth {
				return failf(ErrCorruptTree, "border width %d", width)
			}
			c.BorderColor, c.BorderWidth = draw.Color(color), int(width)
			return nil
		},
		write: func(w *writer, c *cell.Cell) {
			w.u32(uint32(c.BorderColor))
			w.u8(uint8(c.BorderWidth))
		},
	},
	{
		name:  "placement",
		since: 24,
		read: func(r *reader, c *cell.Cell) error {
			v, err := r.u8()
			if err != nil {
				return err
			}
			if cell.Placement(v) > cell.TextBelow {
				return failf(ErrCorruptTree, "text placement %d", v)
			}
			c.Placement = cell.Placement(v)
			return nil
		},
		write: func(w *writer, c *cell.Cell) { w.u8(uint8(c.Placement)) },
	},
	{
		name:  "tag",
		since: 24,
		read: func(r *reader, c *cell.Cell) (err error) {
			c.Tag, err = r.str()
			return err
		},
		write: func(w *writer, c *cell.Cell) { w.str(c.Tag) },
	},
	{
		name:  "image",
		since: 24,
		read: func(r *reader, c *cell.Cell) error {
			v, err := r.i32()
			if err != nil {
				return err
			}
			if v < cell.NoImage {
				return failf(ErrCorruptTree, "image reference %d", v)
			}
			c.Image = int(v)
			return nil
		},
		write: func(w *writer, c *cell.Cell) { w.i32(int32(c.Image)) },
	},
}

var textGates = []gate[text.Text]{
	{
		name: "value",
		read: func(r *reader, t *text.Text) (err error) {
			t.Value, err = r.str()
			return err
		},
		write: func(w *writer, t *text.Text) { w.str(t.Value) },
	},
	{
		name: "relative size",
		read: func(r *reader, t *text.Text) error {
			v, err := r.i32()
			t.RelSize = int(v)
			return err
		},
		write: func(w *writer, t *text.Text) { w.i32(int32(t.RelSize)) },
	},
	{
		name:  "style",
		since: 12,
		read: func(r *reader, t *text.Text) error {
			v, err := r.u32()
			if err != nil {
				return err
			}
			if v > 0xFF {
				return failf(ErrCorruptTree, "text style %#x", v)
			}
			t.Style = draw.Style(v)
			return nil
		},
		write: func(w *writer, t *text.Text) { w.u32(uint32(t.Style)) },
	},
	{
		name:  "last edit",
		since: 20,
		read: func(r *reader, t *text.Text) error {
			ms, err := r.i64()
			if err != nil {
				return err
			}
			if ms != 0 {
				t.LastEdit = time.UnixMilli(ms)
			}
			return nil
		},
		write: func(w *writer, t *text.Text) {
			if t.LastEdit.IsZero() {
				w.i64(0)
				return
			}
			w.i64(t.LastEdit.UnixMilli())
		},
	},
}

type gridRecord struct {
	cols      int
	rows      int
	spacing   int
	folded    bool
	colWidths []int
}

var gridGates = []gate[gridRecord]{
	{
		name: "size",
		read: func(r *reader, g *gridRecord) error {
			cols, err := r.u32()
			if err != nil {
				return err
			}
			rows, err := r.u32()
			if err != nil {
				return err
			}
			if cols < 1 || rows < 1 || cols > maxGridDim || rows > maxGridDim || cols*rows > maxGridCells {
				return failf(ErrCorruptTree, "grid of %dx%d", cols, rows)
			}
			g.cols, g.rows = int(cols), int(rows)
			return nil
		},
		write: func(w *writer, g *gridRecord) {
			w.u32(uint32(g.cols))
			w.u32(uint32(g.rows))
		},
	},
	{
		name:  "spacing",
		since: 10,
		read: func(r *reader, g *gridRecord) error {
			v, err := r.u32()
			if err != nil {
				return err
			}
			if v > maxSpacing {
				return failf(ErrCorruptTree, "grid spacing %d", v)
			}
			g.spacing = int(v)
			return nil
		},
		write: func(w *writer, g *gridRecord) { w.u32(uint32(g.spacing)) },
		def: func(g *gridRecord) error {
			g.spacing = cell.DefaultSpacing
			return nil
		},
	},
	{
		name:  "folded",
		since: 17,
		read: func(r *reader, g *gridRecord) error {
			v, err := r.u8()
			g.folded = v != 0
			return err
		},
		write: func(w *writer, g *gridRecord) {
			var v uint8
			if g.folded {
				v = 1
			}
			w.u8(v)
		},
	},
	{
		name:  "column widths",
		since: 16,
		read: func(r *reader, g *gridRecord) error {
			g.colWidths = make([]int, g.cols)
			for i := range g.colWidths {
				v, err := r.u32()
				if err != nil {
					return err
				}
				if v > maxColumnWidth {
					return failf(ErrCorruptTree, "column width %d", v)
				}
				g.colWidths[i] = int(v)
			}
			return nil
		},
		write: func(w *writer, g *gridRecord) {
			for _, cw := range g.colWidths {
				w.u32(uint32(cw))
			}
		},
		def: func(g *gridRecord) error {
			g.colWidths = make([]int, g.cols)
			return nil
		},
	},
}

type tagRecord struct {
	name  string
	color draw.Color
}

var tagColorGates = []gate[tagRecord]{
	{
		name:  "tag color",
		since: 24,
		read: func(r *reader, t *tagRecord) error {
			v, err := r.u32()
			t.color = draw.Color(v)
			return err
		},
		write: func(w *writer, t *tagRecord) { w.u32(uint32(t.color)) },
		def: func(t *tagRecord) error {
			t.color = draw.DefaultTagColor
			return nil
		},
	},
}
