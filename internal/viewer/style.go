package viewer

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/treesheets/internal/cell"
	"github.com/kobzarvs/treesheets/internal/config"
	"github.com/kobzarvs/treesheets/internal/draw"
)

type styles struct {
	main       tcell.Style
	border     tcell.Style
	selection  tcell.Style
	status     tcell.Style
	image      tcell.Style
	cellColors bool
}

func newStyles(t config.Theme) styles {
	fg := parseColor(t.Foreground, tcell.ColorDefault)
	bg := parseColor(t.Background, tcell.ColorDefault)
	main := tcell.StyleDefault.Foreground(fg).Background(bg)
	st := styles{
		main:   main,
		border: main.Foreground(parseColor(t.Border, fg)),
		selection: tcell.StyleDefault.
			Foreground(parseColor(t.SelectionForeground, bg)).
			Background(parseColor(t.SelectionBackground, fg)),
		status: tcell.StyleDefault.
			Foreground(parseColor(t.StatuslineForeground, fg)).
			Background(parseColor(t.StatuslineBackground, bg)),
		image: main.Foreground(parseColor(t.Image, fg)),
	}
	if t.UseCellColors != nil {
		st.cellColors = *t.UseCellColors
	}
	return st
}

// cell is the fill style of c, before text attributes.
func (st styles) cell(c *cell.Cell) tcell.Style {
	if !st.cellColors {
		return st.main
	}
	return tcell.StyleDefault.Foreground(rgb(c.TextColor)).Background(rgb(c.CellColor))
}

func (st styles) cellBorder(c *cell.Cell) tcell.Style {
	if !st.cellColors {
		return st.border
	}
	return st.cell(c).Foreground(rgb(c.BorderColor))
}

func withTextStyle(base tcell.Style, s draw.Style) tcell.Style {
	return base.
		Bold(s.Has(draw.Bold)).
		Italic(s.Has(draw.Italic)).
		Underline(s.Has(draw.Underline)).
		StrikeThrough(s.Has(draw.Strikethrough))
}

func rgb(c draw.Color) tcell.Color {
	r, g, b := c.RGB()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err != nil {
			return fallback
		}
		return rgb(draw.Color(v))
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
