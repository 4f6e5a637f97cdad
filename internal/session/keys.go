package session

// KeyAction is the result of a keyboard shortcut dispatch. Most actions are
// performed by the session itself; ActionFocusSearch is a signal for the
// surrounding shell, which owns the search box.
type KeyAction string

const (
	ActionNone           KeyAction = ""
	ActionClearSelection KeyAction = "clear-selection"
	ActionFitView        KeyAction = "fit-view"
	ActionZoomIn         KeyAction = "zoom-in"
	ActionZoomOut        KeyAction = "zoom-out"
	ActionFocusSearch    KeyAction = "focus-search"
)

// HandleKey dispatches a keyboard shortcut. Shortcuts are ignored entirely
// while a text input has focus.
func (s *Session) HandleKey(key string, textInputFocused bool) KeyAction {
	if textInputFocused {
		return ActionNone
	}
	switch key {
	case "Escape":
		s.ClearSelection()
		return ActionClearSelection
	case "f":
		s.FitToView()
		return ActionFitView
	case "+", "=":
		s.StepZoom(1)
		return ActionZoomIn
	case "-":
		s.StepZoom(-1)
		return ActionZoomOut
	case "/":
		return ActionFocusSearch
	}
	return ActionNone
}
