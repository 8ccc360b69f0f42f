package viewer

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Action names a viewer command bound in the keymap.
type Action string

const (
	ActionNone       Action = ""
	ActionMoveLeft   Action = "move_left"
	ActionMoveRight  Action = "move_right"
	ActionMoveUp     Action = "move_up"
	ActionMoveDown   Action = "move_down"
	ActionEnterGrid  Action = "enter_grid"
	ActionLeaveGrid  Action = "leave_grid"
	ActionToggleFold Action = "toggle_fold"
	ActionZoomIn     Action = "zoom_in"
	ActionZoomOut    Action = "zoom_out"
	ActionScrollUp   Action = "scroll_up"
	ActionScrollDown Action = "scroll_down"
	ActionPageUp     Action = "page_up"
	ActionPageDown   Action = "page_down"
	ActionScrollHome Action = "scroll_home"
	ActionSave       Action = "save"
	ActionQuit       Action = "quit"
)

func keyString(ev *tcell.EventKey) string {
	if ev.Modifiers()&tcell.ModAlt != 0 {
		switch ev.Key() {
		case tcell.KeyUp:
			return "alt+up"
		case tcell.KeyDown:
			return "alt+down"
		case tcell.KeyLeft:
			return "alt+left"
		case tcell.KeyRight:
			return "alt+right"
		case tcell.KeyRune:
			return "alt+" + strings.ToLower(string(ev.Rune()))
		}
	}
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			return "ctrl+" + strings.ToLower(string(r))
		}
		if r == ' ' {
			return "space"
		}
		return string(r)
	}
	// Named keys first: Tab, Enter and Backspace share codes with ctrl+i,
	// ctrl+m and ctrl+h.
	switch ev.Key() {
	case tcell.KeyTab:
		if ev.Modifiers()&tcell.ModShift != 0 {
			return "shift+tab"
		}
		return "tab"
	case tcell.KeyBacktab:
		return "shift+tab"
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "backspace"
	case tcell.KeyEscape:
		return "esc"
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	case tcell.KeyPgUp:
		return "pgup"
	case tcell.KeyPgDn:
		return "pgdn"
	case tcell.KeyHome:
		return "home"
	case tcell.KeyEnd:
		return "end"
	case tcell.KeyDelete:
		return "del"
	}
	return ctrlKeyName(ev.Key())
}

func ctrlKeyName(key tcell.Key) string {
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return "ctrl+" + string(rune('a'+int(key-tcell.KeyCtrlA)))
	}
	return ""
}
