package viewer

import "image"

// lineSet collects the screen points of one connected drawing of rules so
// that junctions can be picked from their neighbours.
type lineSet map[image.Point]struct{}

const (
	linkUp = 1 << iota
	linkDown
	linkLeft
	linkRight
)

var boxRunes = [16]rune{
	0:                                        '─',
	linkUp:                                   '│',
	linkDown:                                 '│',
	linkUp | linkDown:                        '│',
	linkLeft:                                 '─',
	linkRight:                                '─',
	linkLeft | linkRight:                     '─',
	linkUp | linkRight:                       '└',
	linkUp | linkLeft:                        '┘',
	linkDown | linkRight:                     '┌',
	linkDown | linkLeft:                      '┐',
	linkUp | linkDown | linkRight:            '├',
	linkUp | linkDown | linkLeft:             '┤',
	linkLeft | linkRight | linkDown:          '┬',
	linkLeft | linkRight | linkUp:            '┴',
	linkUp | linkDown | linkLeft | linkRight: '┼',
}

func (ls lineSet) hline(x0, x1, y int) {
	for x := x0; x <= x1; x++ {
		ls[image.Pt(x, y)] = struct{}{}
	}
}

func (ls lineSet) vline(x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		ls[image.Pt(x, y)] = struct{}{}
	}
}

// box traces the outermost ring of r.
func (ls lineSet) box(r image.Rectangle) {
	if r.Empty() {
		return
	}
	ls.hline(r.Min.X, r.Max.X-1, r.Min.Y)
	ls.hline(r.Min.X, r.Max.X-1, r.Max.Y-1)
	ls.vline(r.Min.X, r.Min.Y, r.Max.Y-1)
	ls.vline(r.Max.X-1, r.Min.Y, r.Max.Y-1)
}

func (ls lineSet) has(x, y int) bool {
	_, ok := ls[image.Pt(x, y)]
	return ok
}

func (ls lineSet) runeAt(p image.Point) rune {
	mask := 0
	if ls.has(p.X, p.Y-1) {
		mask |= linkUp
	}
	if ls.has(p.X, p.Y+1) {
		mask |= linkDown
	}
	if ls.has(p.X-1, p.Y) {
		mask |= linkLeft
	}
	if ls.has(p.X+1, p.Y) {
		mask |= linkRight
	}
	return boxRunes[mask]
}

func (ls lineSet) draw(put func(x, y int, r rune)) {
	for p := range ls {
		put(p.X, p.Y, ls.runeAt(p))
	}
}
