package draw

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type fontKey struct {
	size  int
	style Style
}

// FaceMeasurer measures text in pixels using the Go font family.
// Faces are built on first use and cached per size and style.
type FaceMeasurer struct {
	dpi        float64
	regular    *opentype.Font
	bold       *opentype.Font
	italic     *opentype.Font
	boldItalic *opentype.Font
	mono       *opentype.Font
	cache      map[fontKey]font.Face
	face       font.Face
}

var _ Measurer = (*FaceMeasurer)(nil)

// NewFaceMeasurer parses the embedded Go fonts. The initial face is the
// regular style at 12pt.
func NewFaceMeasurer(dpi float64) (*FaceMeasurer, error) {
	if dpi <= 0 {
		dpi = 72
	}
	m := &FaceMeasurer{dpi: dpi, cache: map[fontKey]font.Face{}}
	var err error
	if m.regular, err = opentype.Parse(goregular.TTF); err != nil {
		return nil, err
	}
	if m.bold, err = opentype.Parse(gobold.TTF); err != nil {
		return nil, err
	}
	if m.italic, err = opentype.Parse(goitalic.TTF); err != nil {
		return nil, err
	}
	if m.boldItalic, err = opentype.Parse(gobolditalic.TTF); err != nil {
		return nil, err
	}
	if m.mono, err = opentype.Parse(gomono.TTF); err != nil {
		return nil, err
	}
	m.SetFont(12, 0)
	return m, nil
}

func (m *FaceMeasurer) SetFont(size int, style Style) {
	if size < 1 {
		size = 1
	}
	key := fontKey{size: size, style: style.FontBits()}
	if f, ok := m.cache[key]; ok {
		m.face = f
		return
	}
	var base *opentype.Font
	switch {
	case key.style.Has(Fixed):
		base = m.mono
	case key.style.Has(Bold) && key.style.Has(Italic):
		base = m.boldItalic
	case key.style.Has(Bold):
		base = m.bold
	case key.style.Has(Italic):
		base = m.italic
	default:
		base = m.regular
	}
	var face font.Face = basicfont.Face7x13
	if base != nil {
		opts := &opentype.FaceOptions{Size: float64(size), DPI: m.dpi, Hinting: font.HintingFull}
		if f, err := opentype.NewFace(base, opts); err == nil {
			face = f
		}
	}
	m.cache[key] = face
	m.face = face
}

func (m *FaceMeasurer) CharHeight() int {
	return m.face.Metrics().Height.Ceil()
}

func (m *FaceMeasurer) TextExtent(s string) (int, int) {
	h := m.CharHeight()
	if s == "" {
		return 0, h
	}
	// 26.6 fixed point, rounded to the nearest pixel.
	px := (int(font.MeasureString(m.face, s)) + 32) >> 6
	if px < 0 {
		px = 0
	}
	return px, h
}
