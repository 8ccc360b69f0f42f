package viewer

import (
	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/treesheets/internal/document"
)

// HandleKey runs the action bound to ev. Save and quit are returned for the
// caller to carry out; every other action is applied to the document view.
func (v *Viewer) HandleKey(ev *tcell.EventKey) Action {
	v.message = ""
	a := Action(v.keymap[keyString(ev)])
	if a == ActionNone {
		return ActionNone
	}
	v.Do(a)
	return a
}

func (v *Viewer) Do(a Action) {
	d := v.doc
	switch a {
	case ActionMoveLeft:
		v.move(-1, 0)
	case ActionMoveRight:
		v.move(1, 0)
	case ActionMoveUp:
		v.move(0, -1)
	case ActionMoveDown:
		v.move(0, 1)
	case ActionEnterGrid:
		v.enterGrid()
	case ActionLeaveGrid:
		v.leaveGrid()
	case ActionToggleFold:
		c := d.Selected()
		if c.Grid == nil {
			v.message = "no grid to fold"
			return
		}
		c.SetFolded(!c.Folded())
		v.freeScroll = false
	case ActionZoomIn:
		d.ZoomIn()
		d.ScrollX, d.ScrollY = 0, 0
		v.freeScroll = false
	case ActionZoomOut:
		d.ZoomOut()
		d.ScrollX, d.ScrollY = 0, 0
		v.freeScroll = false
	case ActionScrollUp:
		v.scrollBy(-1)
	case ActionScrollDown:
		v.scrollBy(1)
	case ActionPageUp:
		v.scrollBy(-max(v.viewHeight-1, 1))
	case ActionPageDown:
		v.scrollBy(max(v.viewHeight-1, 1))
	case ActionScrollHome:
		d.ScrollX, d.ScrollY = 0, 0
		v.freeScroll = true
	}
}

func (v *Viewer) scrollBy(n int) {
	v.doc.ScrollY = max(v.doc.ScrollY+n, 0)
	v.freeScroll = true
}

// move steps the selection within the grid holding the selected cell. At the
// view root there is no such grid, so it enters the root's grid instead.
func (v *Viewer) move(dx, dy int) {
	d := v.doc
	v.freeScroll = false
	n := len(d.Selection)
	if n == 0 || n <= int(d.Zoom) {
		v.enterGrid()
		return
	}
	parent, _, _ := d.WalkPath(d.Selection[:n-1])
	g := parent.Grid
	last := d.Selection[n-1]
	sel := d.Selection.Clone()
	sel[n-1] = document.Step{
		X: min(max(last.X+dx, 0), g.Cols-1),
		Y: min(max(last.Y+dy, 0), g.Rows-1),
	}
	_ = d.Select(sel)
}

func (v *Viewer) enterGrid() {
	d := v.doc
	v.freeScroll = false
	c := d.Selected()
	if c.Grid == nil {
		v.message = "no grid"
		return
	}
	if c.Folded() {
		c.SetFolded(false)
	}
	_ = d.Select(append(d.Selection.Clone(), document.Step{}))
}

func (v *Viewer) leaveGrid() {
	d := v.doc
	v.freeScroll = false
	n := len(d.Selection)
	if n == 0 {
		return
	}
	if int(d.Zoom) >= n {
		d.ZoomOut()
	}
	_ = d.Select(d.Selection[:n-1])
}
