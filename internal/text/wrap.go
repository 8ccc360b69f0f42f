package text

import (
	"strings"
	"unicode/utf8"

	"github.com/kobzarvs/treesheets/internal/draw"
)

// Span is a byte range of the source string that forms one display line.
type Span struct {
	Start int
	Len   int
}

func (s Span) End() int { return s.Start + s.Len }

// Wrapped is the result of a wrap computation.
type Wrapped struct {
	Lines  []Span
	Width  int
	Height int
}

// Line returns the text of line i.
func (t *Text) Line(w Wrapped, i int) string {
	return t.LineText(w.Lines[i])
}

func (t *Text) LineText(sp Span) string {
	return t.Value[sp.Start:sp.End()]
}

// Wrap breaks Value into lines no wider than maxWidth as reported by m.
// The current font of m is used as is.
func (t *Text) Wrap(m draw.Measurer, maxWidth int) Wrapped {
	return Wrap(t.Value, m, maxWidth)
}

// Wrap is greedy: words are added to a line until the next one would push it
// past maxWidth. Newlines always break. Spaces and tabs are break
// opportunities and the whitespace at a break belongs to neither line. A word
// that alone exceeds maxWidth gets its own line and overflows.
func Wrap(s string, m draw.Measurer, maxWidth int) Wrapped {
	ww := wrapper{src: s, m: m, max: maxWidth}
	start := 0
	for {
		nl := strings.IndexByte(s[start:], '\n')
		if nl < 0 {
			ww.paragraph(start, len(s))
			break
		}
		ww.paragraph(start, start+nl)
		start += nl + 1
	}
	ww.out.Height = len(ww.out.Lines) * m.CharHeight()
	return ww.out
}

type wrapper struct {
	src string
	m   draw.Measurer
	max int
	out Wrapped
}

func isBreak(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}

func (w *wrapper) width(from, to int) int {
	s := w.src[from:to]
	if strings.IndexByte(s, '\t') >= 0 {
		s = strings.ReplaceAll(s, "\t", " ")
	}
	px, _ := w.m.TextExtent(s)
	return px
}

func (w *wrapper) emit(from, to int) {
	w.out.Lines = append(w.out.Lines, Span{Start: from, Len: to - from})
	if px := w.width(from, to); px > w.out.Width {
		w.out.Width = px
	}
}

func (w *wrapper) paragraph(from, to int) {
	lineStart, lineEnd := from, from
	hasWord := false
	pos := from
	for pos < to {
		for pos < to && isBreak(w.src[pos]) {
			pos++
		}
		if pos >= to {
			break
		}
		wordStart := pos
		for pos < to && !isBreak(w.src[pos]) {
			pos++
		}
		if !hasWord {
			lineEnd = pos
			hasWord = true
			continue
		}
		if w.width(lineStart, pos) > w.max {
			w.emit(lineStart, lineEnd)
			lineStart = wordStart
		}
		lineEnd = pos
	}
	if !hasWord {
		w.emit(from, to)
		return
	}
	w.emit(lineStart, lineEnd)
}

// Tiny is the measurer-free extent used when a subtree is forced to fit: one
// unit per rune and one unit per source line, capped at maxWidth.
func (t *Text) Tiny(maxWidth int) Wrapped {
	var out Wrapped
	start := 0
	s := t.Value
	for {
		nl := strings.IndexByte(s[start:], '\n')
		end := len(s)
		if nl >= 0 {
			end = start + nl
		}
		out.Lines = append(out.Lines, Span{Start: start, Len: end - start})
		if n := utf8.RuneCountInString(s[start:end]); n > out.Width {
			out.Width = n
		}
		if nl < 0 {
			break
		}
		start = end + 1
	}
	if maxWidth > 0 && out.Width > maxWidth {
		out.Width = maxWidth
	}
	out.Height = len(out.Lines)
	return out
}
