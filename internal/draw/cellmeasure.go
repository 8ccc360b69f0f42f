package draw

import "github.com/mattn/go-runewidth"

// CellMeasurer measures text in terminal cells. Every line is one cell high
// and font changes only affect what a renderer chooses to paint.
type CellMeasurer struct {
	size  int
	style Style
}

var _ Measurer = (*CellMeasurer)(nil)

func (m *CellMeasurer) CharHeight() int { return 1 }

func (m *CellMeasurer) TextExtent(s string) (int, int) {
	return runewidth.StringWidth(s), 1
}

func (m *CellMeasurer) SetFont(size int, style Style) {
	m.size = size
	m.style = style
}

// Font returns the face most recently selected with SetFont.
func (m *CellMeasurer) Font() (int, Style) {
	return m.size, m.style
}
