// Package text implements the string content of a cell and its word wrap.
package text

import (
	"time"
	"unicode/utf8"

	"github.com/kobzarvs/treesheets/internal/draw"
)

// Text is the authoritative content of a cell label. Wrapped lines are
// always derived from Value and never stored here.
type Text struct {
	Value    string
	Style    draw.Style
	RelSize  int
	LastEdit time.Time
}

func New(s string) Text {
	return Text{Value: s}
}

func (t *Text) IsEmpty() bool {
	return t.Value == ""
}

func (t *Text) SetValue(s string) {
	t.Value = s
	t.touch()
}

func (t *Text) SetStyle(s draw.Style) {
	t.Style = s
	t.touch()
}

// SetRelSize stores rel clamped to [-minDelta, maxDelta].
func (t *Text) SetRelSize(rel, minDelta, maxDelta int) {
	t.RelSize = ClampRelSize(rel, minDelta, maxDelta)
	t.touch()
}

func (t *Text) touch() {
	t.LastEdit = time.Now().Truncate(time.Millisecond)
}

// ClampRelSize bounds a relative size to [-minDelta, maxDelta].
func ClampRelSize(rel, minDelta, maxDelta int) int {
	if rel < -minDelta {
		return -minDelta
	}
	if rel > maxDelta {
		return maxDelta
	}
	return rel
}

// RuneCount is used for tiny layouts and diagnostics.
func (t *Text) RuneCount() int {
	return utf8.RuneCountInString(t.Value)
}
