package core

import "github.com/spaghettifunk/epifaneia/engine/math"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_OTHER
	BUTTON_MAX_BUTTONS
)

func (b Button) String() string {
	switch b {
	case BUTTON_LEFT:
		return "left"
	case BUTTON_RIGHT:
		return "right"
	case BUTTON_MIDDLE:
		return "middle"
	default:
		return "other"
	}
}

// InteractionState is the mouse state the SDF pass reads. It is only
// mutated from the event loop.
type InteractionState struct {
	// Current cursor position.
	Cursor math.Vec2
	// Cursor position when the left button was last pressed.
	PressPosition math.Vec2
	// Left button currently held.
	Pressed bool
}

// MouseDelta is the drag vector while the left button is held, zero otherwise.
func (s *InteractionState) MouseDelta() math.Vec2 {
	if !s.Pressed {
		return math.NewVec2Zero()
	}
	return s.Cursor.Sub(s.PressPosition)
}

func (s *InteractionState) ProcessMouseMove(x, y float64) {
	s.Cursor = math.NewVec2(float32(x), float32(y))
}

// ProcessButton records a press or release. Only the left button is tracked.
func (s *InteractionState) ProcessButton(button Button, pressed bool) {
	if button != BUTTON_LEFT {
		return
	}
	if pressed {
		s.PressPosition = s.Cursor
	}
	s.Pressed = pressed
}

// HandleEvent applies cursor and button events and reports whether the
// event was one of them.
func (s *InteractionState) HandleEvent(ev Event) bool {
	switch e := ev.(type) {
	case CursorMovedEvent:
		s.ProcessMouseMove(e.X, e.Y)
		return true
	case MouseInputEvent:
		s.ProcessButton(e.Button, e.Pressed)
		return true
	default:
		return false
	}
}
