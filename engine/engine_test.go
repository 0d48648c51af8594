package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/epifaneia/engine/assets"
	"github.com/spaghettifunk/epifaneia/engine/config"
	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/renderer/rendertest"
	"github.com/spaghettifunk/epifaneia/engine/renderer/shaders"
)

// fakeWindow delivers one batch of events per PumpMessages.
type fakeWindow struct {
	batches       [][]core.Event
	width, height uint32
	onEvent       core.FnOnEvent
	started       bool
	shutdown      bool
	waits         int
}

func (w *fakeWindow) Startup(applicationName string, x, y, width, height uint32) error {
	w.started = true
	return nil
}

func (w *fakeWindow) Shutdown() error {
	w.shutdown = true
	return nil
}

func (w *fakeWindow) PumpMessages() {
	if len(w.batches) == 0 {
		return
	}
	batch := w.batches[0]
	w.batches = w.batches[1:]
	for _, ev := range batch {
		w.onEvent(ev)
	}
}

func (w *fakeWindow) WaitMessages(timeout time.Duration) {
	w.waits++
	// Restore the size after the first wait to leave the minimized state.
	w.width, w.height = 800, 600
}

func (w *fakeWindow) FramebufferSize() (uint32, uint32) {
	return w.width, w.height
}

func (w *fakeWindow) SetEventHandler(onEvent core.FnOnEvent) {
	w.onEvent = onEvent
}

type fakeLoader struct {
	doc *assets.Document
	err error
}

func (l fakeLoader) Load(path string) (*assets.Document, error) {
	return l.doc, l.err
}

// changeAfter reports a change on the n-th call, or err once it is set.
type changeAfter struct {
	n     int
	calls int
	err   error
}

func (c *changeAfter) Changed() bool {
	c.calls++
	return c.calls == c.n
}

func (c *changeAfter) Failed() error {
	err := c.err
	c.err = nil
	return err
}

func testConfig() *ApplicationConfig {
	return NewApplicationConfig(config.Default(), "doc.json")
}

func sampleDocument() *assets.Document {
	return &assets.Document{Path: "doc.json", Text: shaders.SampleWGSL, Data: []interface{}{}}
}

func newTestEngine(loader assets.Loader, changes ChangeNotifier, batches ...[]core.Event) (*Engine, *fakeWindow, *rendertest.Backend) {
	window := &fakeWindow{batches: batches, width: 800, height: 600}
	backend := rendertest.NewBackend()
	return newEngine(testConfig(), loader, changes, window, backend), window, backend
}

func TestSessionRunsUntilClosed(t *testing.T) {
	e, window, backend := newTestEngine(fakeLoader{doc: sampleDocument()}, nil,
		[]core.Event{core.CursorMovedEvent{X: 10, Y: 20}, core.MouseInputEvent{Button: core.BUTTON_LEFT, Pressed: true}},
		[]core.Event{core.CursorMovedEvent{X: 13, Y: 25}},
		[]core.Event{core.CloseRequestedEvent{}},
	)

	require.NoError(t, e.Initialize())
	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.True(t, window.started)

	reason, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EndReasonClosed, reason)

	sdf := backend.SubmittedTo("sdf")
	require.Len(t, sdf, 2)
	assert.Equal(t, uint32(32), sdf[0].Target.Width)
	assert.Equal(t, uint32(64), sdf[1].Target.Width)
	assert.Len(t, backend.Presented, 2)

	require.NoError(t, e.Shutdown())
	assert.Equal(t, EngineStageStopped, e.Stage())
	assert.True(t, window.shutdown)
	assert.Empty(t, backend.LiveTextures)
	assert.Empty(t, backend.LiveBuffers)
	assert.Contains(t, backend.Calls, "Shutdown")

	assert.ErrorIs(t, e.Shutdown(), core.ErrSessionClosed)
}

func TestSessionEndsOnDocumentChange(t *testing.T) {
	e, _, backend := newTestEngine(fakeLoader{doc: sampleDocument()}, &changeAfter{n: 3})
	require.NoError(t, e.Initialize())

	reason, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EndReasonDocumentChanged, reason)
	assert.Len(t, backend.Presented, 2)
	require.NoError(t, e.Shutdown())
}

func TestWatcherFailureReloadsTheDocument(t *testing.T) {
	changes := &changeAfter{err: errors.New("queue overflow")}
	e, _, backend := newTestEngine(fakeLoader{doc: sampleDocument()}, changes)
	require.NoError(t, e.Initialize())

	reason, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EndReasonDocumentChanged, reason)
	assert.Empty(t, backend.Presented)
	require.NoError(t, e.Shutdown())
}

func TestSessionInterrupted(t *testing.T) {
	e, _, backend := newTestEngine(fakeLoader{doc: sampleDocument()}, nil)
	require.NoError(t, e.Initialize())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reason, err := e.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, EndReasonInterrupted, reason)
	assert.Empty(t, backend.Presented)
	require.NoError(t, e.Shutdown())
}

func TestMinimizedWindowWaitsInsteadOfDrawing(t *testing.T) {
	e, window, backend := newTestEngine(fakeLoader{doc: sampleDocument()}, nil,
		nil,
		[]core.Event{core.CloseRequestedEvent{}},
	)
	require.NoError(t, e.Initialize())
	window.width, window.height = 0, 0

	_, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, window.waits)
	assert.Empty(t, backend.Presented)
	require.NoError(t, e.Shutdown())
}

func TestMissingDocumentNeverOpensWindow(t *testing.T) {
	e, window, backend := newTestEngine(fakeLoader{err: core.ErrMissingDocument}, nil)

	assert.ErrorIs(t, e.Initialize(), core.ErrMissingDocument)
	assert.False(t, window.started)

	require.NoError(t, e.Shutdown())
	assert.False(t, window.shutdown)
	assert.NotContains(t, backend.Calls, "Shutdown")
}

func TestInvalidShaderFailsInitialize(t *testing.T) {
	doc := sampleDocument()
	doc.Text = ""
	e, window, backend := newTestEngine(fakeLoader{doc: doc}, nil)

	err := e.Initialize()
	assert.ErrorIs(t, err, core.ErrShaderCompilation)

	require.NoError(t, e.Shutdown())
	assert.True(t, window.shutdown)
	assert.Empty(t, backend.LiveBuffers)
}

func TestRedrawFailureStopsTheSession(t *testing.T) {
	e, _, backend := newTestEngine(fakeLoader{doc: sampleDocument()}, nil)
	require.NoError(t, e.Initialize())

	boom := errors.New("device lost")
	backend.SubmitErr = boom
	_, err := e.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	require.NoError(t, e.Shutdown())
}

func TestRunRequiresInitialize(t *testing.T) {
	e, _, _ := newTestEngine(fakeLoader{doc: sampleDocument()}, nil)
	_, err := e.Run(context.Background())
	assert.Error(t, err)
}

func TestNewBackendRejectsUnsupportedRenderers(t *testing.T) {
	cfg := testConfig()
	for _, name := range []string{"metal", "opengl", "bogus"} {
		cfg.Backend = name
		_, err := newBackend(cfg, nil)
		assert.Error(t, err, name)
	}
}

func TestFrameBudget(t *testing.T) {
	assert.Zero(t, frameBudget(0))
	assert.Equal(t, 20*time.Millisecond, frameBudget(50))
}

func TestApplicationConfigFromFile(t *testing.T) {
	cfg := config.Default()
	cfg.Window.MaxFPS = 30
	app := NewApplicationConfig(cfg, "scene.json")
	assert.Equal(t, "scene.json", app.DocumentPath)
	assert.Equal(t, cfg.Window.Width, app.StartWidth)
	assert.Equal(t, uint32(30), app.MaxFPS)
	assert.Equal(t, uint32(32), app.MinResolution)
	assert.Equal(t, uint32(1024), app.MaxResolution)
	assert.Equal(t, "vulkan", app.Backend)
}
