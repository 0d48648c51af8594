package session

import (
	"errors"
	"time"

	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/math"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
)

// FrameBackend is the part of the renderer the controller talks to directly.
type FrameBackend interface {
	AcquireFrame() (*metadata.Frame, error)
	Present(frame *metadata.Frame) error
	Resized(width, height uint32) error
	DestroyTexture(texture *metadata.Texture)
}

// OffscreenRenderer draws the SDF into a new square texture.
type OffscreenRenderer interface {
	Render(resolution uint32, elapsed float32, mouse math.Vec2, geometry *metadata.RenderBuffer) (*metadata.Texture, error)
}

// Compositor draws a texture over the whole frame.
type Compositor interface {
	Composite(frame *metadata.Frame, texture *metadata.Texture, sampler *metadata.Sampler) error
}

var errNoOffscreen = errors.New("no offscreen texture to composite")

// Controller owns the refinement loop of one session.
type Controller struct {
	state    *SessionState
	backend  FrameBackend
	sdf      OffscreenRenderer
	window   Compositor
	geometry *metadata.RenderBuffer
	metrics  *core.Metrics
	redraws  uint64
}

// NewController wires the passes to a session state. A nil metrics gets a
// fresh collector.
func NewController(state *SessionState, backend FrameBackend, sdf OffscreenRenderer, window Compositor, geometry *metadata.RenderBuffer, metrics *core.Metrics) *Controller {
	if metrics == nil {
		metrics = core.NewMetrics()
	}
	return &Controller{
		state:    state,
		backend:  backend,
		sdf:      sdf,
		window:   window,
		geometry: geometry,
		metrics:  metrics,
	}
}

func (c *Controller) State() *SessionState {
	return c.state
}

func (c *Controller) Metrics() *core.Metrics {
	return c.metrics
}

// Redraw runs one frame: acquire, SDF pass while below the maximum
// resolution, window pass, present. An unavailable frame skips the redraw
// without touching any state.
//
// Resolution is never reset to the minimum on input, so once converged the
// SDF pass does not run again for the rest of the session.
func (c *Controller) Redraw() error {
	start := time.Now()

	frame, err := c.backend.AcquireFrame()
	if errors.Is(err, core.ErrFrameUnavailable) {
		c.metrics.FrameSkipped()
		core.LogDebug("frame unavailable, skipping redraw")
		return nil
	}
	if err != nil {
		return err
	}
	c.redraws++

	ref := &c.state.Refinement
	ref.Resolution = math.Clamp(ref.Resolution, ref.MinResolution, ref.MaxResolution)
	if ref.Resolution < ref.MaxResolution {
		if err := c.renderOffscreen(ref.Resolution); err != nil {
			return err
		}
		if ref.Resolution > ref.MaxResolution/2 {
			ref.Resolution = ref.MaxResolution
		} else {
			ref.Resolution *= 2
		}
		if ref.Resolution >= ref.MaxResolution {
			c.metrics.ConvergedAtRedraws = c.redraws
			core.LogInfo("refinement converged after %d redraws (last render %dx%d)", c.redraws, c.state.Offscreen.Resolution, c.state.Offscreen.Resolution)
		}
	}

	if c.state.Offscreen == nil {
		return errNoOffscreen
	}
	if err := c.window.Composite(frame, c.state.Offscreen.Texture, nil); err != nil {
		return err
	}
	if err := c.backend.Present(frame); err != nil {
		return err
	}

	c.metrics.FrameCompleted(time.Since(start))
	return nil
}

func (c *Controller) renderOffscreen(resolution uint32) error {
	c.state.Clock.Update()
	texture, err := c.sdf.Render(resolution, c.state.Clock.Seconds(), c.state.Interaction.MouseDelta(), c.geometry)
	if err != nil {
		return err
	}

	if old := c.state.Offscreen; old != nil && old.Texture != nil {
		c.backend.DestroyTexture(old.Texture)
	}
	c.state.Offscreen = &OffscreenResult{Texture: texture, Resolution: resolution}
	c.metrics.SDFRendered(resolution)
	core.LogDebug("sdf pass at %dx%d", resolution, resolution)
	return nil
}

// Close releases the cached texture. The controller must not be used after.
func (c *Controller) Close() {
	if c.state.Offscreen != nil && c.state.Offscreen.Texture != nil {
		c.backend.DestroyTexture(c.state.Offscreen.Texture)
	}
	c.state.Offscreen = nil
}
