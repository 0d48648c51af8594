package session

import "github.com/spaghettifunk/epifaneia/engine/core"

// Outcome tells the event loop whether to keep running.
type Outcome int

const (
	Continue Outcome = iota
	Quit
)

// HandleEvent applies one window event synchronously. Mutations are visible
// to the very next redraw.
func (c *Controller) HandleEvent(ev core.Event) (Outcome, error) {
	switch e := ev.(type) {
	case core.ResizedEvent:
		if err := c.backend.Resized(e.Width, e.Height); err != nil {
			return Continue, err
		}
	case core.CursorMovedEvent, core.MouseInputEvent:
		c.state.Interaction.HandleEvent(ev)
	case core.CloseRequestedEvent:
		core.LogInfo("close requested")
		return Quit, nil
	case core.RedrawRequestedEvent:
		if err := c.Redraw(); err != nil {
			return Quit, err
		}
	case core.OtherEvent:
		// ignored
	}
	return Continue, nil
}
