package core

import "fmt"

// System event codes, one per Event variant.
type SystemEventCode int

const (
	// Window framebuffer resized.
	EVENT_CODE_RESIZED SystemEventCode = iota + 1
	// Cursor moved inside the window.
	EVENT_CODE_CURSOR_MOVED
	// Mouse button pressed or released.
	EVENT_CODE_MOUSE_INPUT
	// Window close requested by the user or the OS.
	EVENT_CODE_CLOSE_REQUESTED
	// A new frame should be drawn.
	EVENT_CODE_REDRAW_REQUESTED
	// Anything the viewer does not react to.
	EVENT_CODE_OTHER
)

func (c SystemEventCode) String() string {
	switch c {
	case EVENT_CODE_RESIZED:
		return "Resized"
	case EVENT_CODE_CURSOR_MOVED:
		return "CursorMoved"
	case EVENT_CODE_MOUSE_INPUT:
		return "MouseInput"
	case EVENT_CODE_CLOSE_REQUESTED:
		return "CloseRequested"
	case EVENT_CODE_REDRAW_REQUESTED:
		return "RedrawRequested"
	case EVENT_CODE_OTHER:
		return "Other"
	default:
		return fmt.Sprintf("SystemEventCode(%d)", int(c))
	}
}

// Event is a window-system event. The set of implementations is closed:
// ResizedEvent, CursorMovedEvent, MouseInputEvent, CloseRequestedEvent,
// RedrawRequestedEvent and OtherEvent.
type Event interface {
	Code() SystemEventCode
	sealed()
}

type ResizedEvent struct {
	Width  uint32
	Height uint32
}

// CursorMovedEvent carries the cursor position in framebuffer pixels.
type CursorMovedEvent struct {
	X float64
	Y float64
}

type MouseInputEvent struct {
	Button  Button
	Pressed bool
}

type CloseRequestedEvent struct{}

type RedrawRequestedEvent struct{}

type OtherEvent struct {
	// Name is only used for logging.
	Name string
}

func (ResizedEvent) Code() SystemEventCode         { return EVENT_CODE_RESIZED }
func (CursorMovedEvent) Code() SystemEventCode     { return EVENT_CODE_CURSOR_MOVED }
func (MouseInputEvent) Code() SystemEventCode      { return EVENT_CODE_MOUSE_INPUT }
func (CloseRequestedEvent) Code() SystemEventCode  { return EVENT_CODE_CLOSE_REQUESTED }
func (RedrawRequestedEvent) Code() SystemEventCode { return EVENT_CODE_REDRAW_REQUESTED }
func (OtherEvent) Code() SystemEventCode           { return EVENT_CODE_OTHER }

func (ResizedEvent) sealed()         {}
func (CursorMovedEvent) sealed()     {}
func (MouseInputEvent) sealed()      {}
func (CloseRequestedEvent) sealed()  {}
func (RedrawRequestedEvent) sealed() {}
func (OtherEvent) sealed()           {}

// FnOnEvent receives events synchronously on the thread that owns the window.
type FnOnEvent func(ev Event)
