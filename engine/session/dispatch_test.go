package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/math"
	"github.com/spaghettifunk/epifaneia/engine/renderer/geometry"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
	"github.com/spaghettifunk/epifaneia/engine/renderer/passes"
	"github.com/spaghettifunk/epifaneia/engine/renderer/rendertest"
	"github.com/spaghettifunk/epifaneia/engine/renderer/shaders"
)

func TestCloseRequestedQuits(t *testing.T) {
	f := newFixture()
	out, err := f.ctrl.HandleEvent(core.CloseRequestedEvent{})
	require.NoError(t, err)
	assert.Equal(t, Quit, out)
}

func TestIgnoredEventsChangeNothing(t *testing.T) {
	f := newFixture()
	before := *f.state

	for _, ev := range []core.Event{
		core.OtherEvent{Name: "focus"},
		core.MouseInputEvent{Button: core.BUTTON_RIGHT, Pressed: true},
		core.MouseInputEvent{Button: core.BUTTON_MIDDLE, Pressed: true},
	} {
		out, err := f.ctrl.HandleEvent(ev)
		require.NoError(t, err)
		assert.Equal(t, Continue, out)
	}
	assert.Equal(t, before.Interaction, f.state.Interaction)
	assert.Equal(t, before.Refinement, f.state.Refinement)
	assert.Empty(t, f.log)
}

func TestResizeIsForwardedOnly(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.ctrl.Redraw())
	res := f.state.Refinement.Resolution

	out, err := f.ctrl.HandleEvent(core.ResizedEvent{Width: 1280, Height: 720})
	require.NoError(t, err)
	assert.Equal(t, Continue, out)
	assert.Equal(t, [][2]uint32{{1280, 720}}, f.backend.resized)
	assert.Equal(t, res, f.state.Refinement.Resolution)
}

func TestDragThroughEvents(t *testing.T) {
	f := newFixture()
	for _, ev := range []core.Event{
		core.CursorMovedEvent{X: 10, Y: 20},
		core.MouseInputEvent{Button: core.BUTTON_LEFT, Pressed: true},
		core.CursorMovedEvent{X: 13, Y: 25},
		core.RedrawRequestedEvent{},
	} {
		_, err := f.ctrl.HandleEvent(ev)
		require.NoError(t, err)
	}
	require.Len(t, f.sdf.calls, 1)
	assert.Equal(t, math.NewVec2(3, 5), f.sdf.calls[0].mouse)
}

func TestRedrawErrorQuits(t *testing.T) {
	f := newFixture()
	f.backend.acquireErrs = []error{assert.AnError}
	out, err := f.ctrl.HandleEvent(core.RedrawRequestedEvent{})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, Quit, out)
}

// Runs the real passes against the recording backend.
func TestSessionWithPasses(t *testing.T) {
	backend := rendertest.NewBackend()
	sdf, err := passes.NewSDFPass(backend, shaders.SampleWGSL)
	require.NoError(t, err)
	window, err := passes.NewWindowPass(backend)
	require.NoError(t, err)
	geo, err := backend.CreateBuffer(metadata.RENDERBUFFER_TYPE_UNIFORM, geometry.Placeholder())
	require.NoError(t, err)

	state := NewSessionState(DefaultMinResolution, DefaultMaxResolution)
	ctrl := NewController(state, backend, sdf, window, geo, nil)

	backend.AcquireErrors = []error{nil, core.ErrFrameUnavailable}
	for i := 0; i < 8; i++ {
		out, err := ctrl.HandleEvent(core.RedrawRequestedEvent{})
		require.NoError(t, err)
		require.Equal(t, Continue, out)
	}

	assert.Len(t, backend.SubmittedTo("sdf"), 5)
	assert.Len(t, backend.SubmittedTo("window"), 7)
	assert.Len(t, backend.Presented, 7)
	// only the cached texture is still alive
	assert.Len(t, backend.LiveTextures, 1)
	assert.True(t, backend.LiveTextures[state.Offscreen.Texture])

	ctrl.Close()
	sdf.Destroy()
	window.Destroy()
	backend.DestroyBuffer(geo)
	assert.Empty(t, backend.LiveTextures)
	assert.Empty(t, backend.LiveBuffers)
}
