// Package draw holds the drawing vocabulary shared by the layout engine and
// renderers: colors, text style bits and the font measurement capability.
package draw

import "fmt"

// Color is a 0xRRGGBB value.
type Color uint32

const (
	DefaultCellColor   Color = 0xFFFFFF
	DefaultTextColor   Color = 0x000000
	DefaultBorderColor Color = 0xA0A0A0
	DefaultTagColor    Color = 0xFF0000
)

func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

func (c Color) String() string {
	return fmt.Sprintf("#%06X", uint32(c)&0xFFFFFF)
}

// Style is a bitmask of text attributes.
type Style uint8

const (
	Bold Style = 1 << iota
	Italic
	Fixed
	Underline
	Strikethrough
)

// FontBits reports the bits that select a different face. Underline and
// strikethrough are painted by the renderer and never change metrics.
func (s Style) FontBits() Style {
	return s & (Bold | Italic | Fixed)
}

func (s Style) Has(bit Style) bool {
	return s&bit != 0
}

// Measurer is the font measurement capability consumed by layout.
// SetFont selects the face used by subsequent calls.
type Measurer interface {
	CharHeight() int
	TextExtent(s string) (w, h int)
	SetFont(size int, style Style)
}

// FixedMeasurer measures every rune as Width x Height. It stands in for a
// real font where exact glyph metrics do not matter.
type FixedMeasurer struct {
	Width  int
	Height int
}

var _ Measurer = (*FixedMeasurer)(nil)

func (m *FixedMeasurer) CharHeight() int { return m.Height }

func (m *FixedMeasurer) TextExtent(s string) (int, int) {
	n := 0
	for range s {
		n++
	}
	return n * m.Width, m.Height
}

func (m *FixedMeasurer) SetFont(int, Style) {}
