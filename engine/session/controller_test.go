package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/math"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
)

type fakeBackend struct {
	acquireErrs []error
	acquired    int
	presented   int
	destroyed   map[uint32]int
	resized     [][2]uint32
	log         *[]string
}

func (b *fakeBackend) AcquireFrame() (*metadata.Frame, error) {
	*b.log = append(*b.log, "acquire")
	if len(b.acquireErrs) > 0 {
		err := b.acquireErrs[0]
		b.acquireErrs = b.acquireErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	b.acquired++
	return &metadata.Frame{FrameNumber: uint64(b.acquired)}, nil
}

func (b *fakeBackend) Present(frame *metadata.Frame) error {
	*b.log = append(*b.log, "present")
	b.presented++
	return nil
}

func (b *fakeBackend) Resized(width, height uint32) error {
	b.resized = append(b.resized, [2]uint32{width, height})
	return nil
}

func (b *fakeBackend) DestroyTexture(texture *metadata.Texture) {
	b.destroyed[texture.ID]++
}

type sdfCall struct {
	resolution uint32
	mouse      math.Vec2
	geometry   *metadata.RenderBuffer
}

type fakeSDF struct {
	calls  []sdfCall
	nextID uint32
	err    error
	log    *[]string
}

func (s *fakeSDF) Render(resolution uint32, elapsed float32, mouse math.Vec2, geometry *metadata.RenderBuffer) (*metadata.Texture, error) {
	*s.log = append(*s.log, "sdf")
	if s.err != nil {
		return nil, s.err
	}
	s.calls = append(s.calls, sdfCall{resolution, mouse, geometry})
	s.nextID++
	return &metadata.Texture{ID: s.nextID, Width: resolution, Height: resolution}, nil
}

type fakeCompositor struct {
	textures []*metadata.Texture
	log      *[]string
}

func (w *fakeCompositor) Composite(frame *metadata.Frame, texture *metadata.Texture, sampler *metadata.Sampler) error {
	*w.log = append(*w.log, "window")
	w.textures = append(w.textures, texture)
	return nil
}

type fixture struct {
	ctrl     *Controller
	state    *SessionState
	backend  *fakeBackend
	sdf      *fakeSDF
	window   *fakeCompositor
	geometry *metadata.RenderBuffer
	log      []string
}

func newFixture() *fixture {
	f := &fixture{}
	f.state = NewSessionState(DefaultMinResolution, DefaultMaxResolution)
	f.backend = &fakeBackend{destroyed: map[uint32]int{}, log: &f.log}
	f.sdf = &fakeSDF{log: &f.log}
	f.window = &fakeCompositor{log: &f.log}
	f.geometry = &metadata.RenderBuffer{Label: "geometry"}
	f.ctrl = NewController(f.state, f.backend, f.sdf, f.window, f.geometry, nil)
	return f
}

func TestResolutionSequence(t *testing.T) {
	f := newFixture()
	var seen []uint32
	for i := 0; i < 10; i++ {
		require.NoError(t, f.ctrl.Redraw())
		seen = append(seen, f.state.Refinement.Resolution)
	}
	assert.Equal(t, []uint32{64, 128, 256, 512, 1024, 1024, 1024, 1024, 1024, 1024}, seen)

	var rendered []uint32
	for _, c := range f.sdf.calls {
		rendered = append(rendered, c.resolution)
	}
	// The maximum itself is never rendered.
	assert.Equal(t, []uint32{32, 64, 128, 256, 512}, rendered)
}

func TestRenderSkipAtConvergence(t *testing.T) {
	f := newFixture()
	for i := 0; i < 5; i++ {
		require.NoError(t, f.ctrl.Redraw())
	}
	assert.Equal(t, PhaseConverged, f.state.Refinement.Phase())
	renders := len(f.sdf.calls)
	composites := len(f.window.textures)

	for i := 0; i < 7; i++ {
		require.NoError(t, f.ctrl.Redraw())
	}
	assert.Equal(t, renders, len(f.sdf.calls))
	assert.Equal(t, composites+7, len(f.window.textures))
	for _, tex := range f.window.textures[composites:] {
		assert.Same(t, f.state.Offscreen.Texture, tex)
	}
	assert.Equal(t, uint64(5), f.ctrl.Metrics().ConvergedAtRedraws)
}

func TestRedrawOrdering(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.ctrl.Redraw())
	require.NoError(t, f.ctrl.Redraw())
	assert.Equal(t, []string{
		"acquire", "sdf", "window", "present",
		"acquire", "sdf", "window", "present",
	}, f.log)
}

func TestFrameUnavailableLeavesStateUnchanged(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.ctrl.Redraw())
	f.state.Interaction.ProcessMouseMove(10, 20)
	f.state.Interaction.ProcessButton(core.BUTTON_LEFT, true)

	refinement := f.state.Refinement
	interaction := f.state.Interaction
	offscreen := f.state.Offscreen
	composites := len(f.window.textures)

	f.backend.acquireErrs = []error{core.ErrFrameUnavailable}
	require.NoError(t, f.ctrl.Redraw())

	assert.Equal(t, refinement, f.state.Refinement)
	assert.Equal(t, interaction, f.state.Interaction)
	assert.Same(t, offscreen, f.state.Offscreen)
	assert.Equal(t, composites, len(f.window.textures))
	assert.Len(t, f.sdf.calls, 1)
	assert.Equal(t, uint64(1), f.ctrl.Metrics().FramesSkipped)

	// next redraw retries
	require.NoError(t, f.ctrl.Redraw())
	assert.Equal(t, uint32(128), f.state.Refinement.Resolution)
}

func TestAcquireFailureIsFatalOtherwise(t *testing.T) {
	f := newFixture()
	f.backend.acquireErrs = []error{assert.AnError}
	assert.ErrorIs(t, f.ctrl.Redraw(), assert.AnError)
}

func TestTextureReplacementReleasesPrevious(t *testing.T) {
	f := newFixture()
	for i := 0; i < 8; i++ {
		require.NoError(t, f.ctrl.Redraw())
	}
	// textures 1..4 replaced once each, 5 is still cached
	assert.Equal(t, map[uint32]int{1: 1, 2: 1, 3: 1, 4: 1}, f.backend.destroyed)
	assert.Equal(t, uint32(5), f.state.Offscreen.Texture.ID)
	assert.Equal(t, uint32(512), f.state.Offscreen.Resolution)

	f.ctrl.Close()
	assert.Equal(t, 1, f.backend.destroyed[5])
	assert.Nil(t, f.state.Offscreen)
}

func TestMouseDeltaReachesSDFPass(t *testing.T) {
	f := newFixture()
	f.state.Interaction.ProcessMouseMove(10, 20)
	f.state.Interaction.ProcessButton(core.BUTTON_LEFT, true)
	f.state.Interaction.ProcessMouseMove(13, 25)
	require.NoError(t, f.ctrl.Redraw())

	f.state.Interaction.ProcessButton(core.BUTTON_LEFT, false)
	require.NoError(t, f.ctrl.Redraw())

	require.Len(t, f.sdf.calls, 2)
	assert.Equal(t, math.NewVec2(3, 5), f.sdf.calls[0].mouse)
	assert.Equal(t, math.NewVec2Zero(), f.sdf.calls[1].mouse)
	assert.Same(t, f.geometry, f.sdf.calls[0].geometry)
}

func TestSDFFailureAbortsRedraw(t *testing.T) {
	f := newFixture()
	f.sdf.err = &core.ShaderCompilationError{Label: "sdf", Reason: "bad"}
	err := f.ctrl.Redraw()
	assert.ErrorIs(t, err, core.ErrShaderCompilation)
	assert.Equal(t, DefaultMinResolution, f.state.Refinement.Resolution)
	assert.Empty(t, f.window.textures)
}

func TestResolutionClampedToMaximum(t *testing.T) {
	f := newFixture()
	f.state.Refinement = NewRefinementState(100, 1024)
	for i := 0; i < 6; i++ {
		require.NoError(t, f.ctrl.Redraw())
	}
	var rendered []uint32
	for _, c := range f.sdf.calls {
		rendered = append(rendered, c.resolution)
	}
	assert.Equal(t, []uint32{100, 200, 400, 800}, rendered)
	assert.Equal(t, uint32(1024), f.state.Refinement.Resolution)
}

func TestDoublingSaturatesNearUint32Limit(t *testing.T) {
	f := newFixture()
	f.state.Refinement = NewRefinementState(3_000_000_000, 4_000_000_000)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.ctrl.Redraw())
		assert.LessOrEqual(t, f.state.Refinement.Resolution, uint32(4_000_000_000))
	}
	require.Len(t, f.sdf.calls, 1)
	assert.Equal(t, uint32(3_000_000_000), f.sdf.calls[0].resolution)
	assert.Equal(t, uint32(4_000_000_000), f.state.Refinement.Resolution)
	assert.Equal(t, PhaseConverged, f.state.Refinement.Phase())
}

func TestPhase(t *testing.T) {
	r := NewRefinementState(32, 1024)
	assert.Equal(t, PhasePriming, r.Phase())
	r.Resolution = 256
	assert.Equal(t, PhaseRefining, r.Phase())
	r.Resolution = 1024
	assert.Equal(t, PhaseConverged, r.Phase())
	assert.Equal(t, "converged", r.Phase().String())
}
