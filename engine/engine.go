package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/epifaneia/engine/assets"
	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/platform"
	"github.com/spaghettifunk/epifaneia/engine/renderer"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
	"github.com/spaghettifunk/epifaneia/engine/renderer/passes"
	"github.com/spaghettifunk/epifaneia/engine/renderer/vulkan"
	"github.com/spaghettifunk/epifaneia/engine/session"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything, it cannot be restarted
	EngineStageStopped
)

// EndReason tells the caller why Run returned.
type EndReason int

const (
	EndReasonClosed EndReason = iota
	EndReasonDocumentChanged
	EndReasonInterrupted
)

func (r EndReason) String() string {
	switch r {
	case EndReasonClosed:
		return "window closed"
	case EndReasonDocumentChanged:
		return "document changed"
	case EndReasonInterrupted:
		return "interrupted"
	}
	return fmt.Sprintf("EndReason(%d)", int(r))
}

// Window is the platform surface the engine drives.
type Window interface {
	Startup(applicationName string, x, y, width, height uint32) error
	Shutdown() error
	PumpMessages()
	WaitMessages(timeout time.Duration)
	FramebufferSize() (uint32, uint32)
	SetEventHandler(onEvent core.FnOnEvent)
}

// ChangeNotifier reports, without blocking, a pending document change. A
// non-nil Failed means changes may have been lost.
type ChangeNotifier interface {
	Changed() bool
	Failed() error
}

const minimizedPollInterval = 100 * time.Millisecond

// Engine runs one viewer session: one document, one window, one backend.
type Engine struct {
	currentStage Stage
	config       *ApplicationConfig
	sessionID    core.SessionID
	loader       assets.Loader
	changes      ChangeNotifier

	window  Window
	backend renderer.RendererBackend

	document   *assets.Document
	geometry   *metadata.RenderBuffer
	sdfPass    *passes.SDFPass
	windowPass *passes.WindowPass
	controller *session.Controller

	isRunning bool
	endReason EndReason
	// First fatal error raised from an event callback.
	runErr error
}

// New builds an engine on a GLFW window and the configured backend. changes
// may be nil when the document is not watched.
func New(cfg *ApplicationConfig, loader assets.Loader, changes ChangeNotifier) (*Engine, error) {
	p := platform.New(nil)
	backend, err := newBackend(cfg, p)
	if err != nil {
		return nil, err
	}
	return newEngine(cfg, loader, changes, p, backend), nil
}

func newEngine(cfg *ApplicationConfig, loader assets.Loader, changes ChangeNotifier, window Window, backend renderer.RendererBackend) *Engine {
	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		sessionID:    core.NewSessionID(),
		loader:       loader,
		changes:      changes,
		window:       window,
		backend:      backend,
	}
}

func newBackend(cfg *ApplicationConfig, p *platform.Platform) (renderer.RendererBackend, error) {
	t, err := renderer.ParseRendererType(cfg.Backend)
	if err != nil {
		return nil, err
	}
	switch t {
	case renderer.Vulkan:
		return vulkan.New(p, cfg.Validation), nil
	default:
		return nil, fmt.Errorf("%s renderer backend is not supported", t)
	}
}

func (e *Engine) SessionID() core.SessionID {
	return e.sessionID
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Initialize loads the document before opening the window, so a missing or
// malformed document never flashes a window.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing
	core.LogInfo("session %s starting for %s", e.sessionID.Short(), e.config.DocumentPath)

	doc, err := e.loader.Load(e.config.DocumentPath)
	if err != nil {
		return err
	}
	e.document = doc

	e.window.SetEventHandler(e.onEvent)
	if err := e.window.Startup(e.config.Name,
		e.config.StartPosX,
		e.config.StartPosY,
		e.config.StartWidth,
		e.config.StartHeight); err != nil {
		return err
	}

	width, height := e.window.FramebufferSize()
	if width == 0 || height == 0 {
		width, height = e.config.StartWidth, e.config.StartHeight
	}
	if err := e.backend.Initialize(e.config.Name, width, height); err != nil {
		return err
	}

	if err := e.buildSession(); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// buildSession creates the GPU resources that live for the whole session.
func (e *Engine) buildSession() error {
	geometry, err := e.backend.CreateBuffer(metadata.RENDERBUFFER_TYPE_UNIFORM, e.document.Geometry())
	if err != nil {
		return err
	}
	geometry.Label = "geometry"
	e.geometry = geometry

	sdfPass, err := passes.NewSDFPass(e.backend, e.document.Text)
	if err != nil {
		return err
	}
	e.sdfPass = sdfPass

	windowPass, err := passes.NewWindowPass(e.backend)
	if err != nil {
		return err
	}
	e.windowPass = windowPass

	state := session.NewSessionState(e.config.MinResolution, e.config.MaxResolution)
	e.controller = session.NewController(state, e.backend, e.sdfPass, e.windowPass, e.geometry, core.NewMetrics())
	return nil
}

// onEvent is called synchronously from PumpMessages and from Run.
func (e *Engine) onEvent(ev core.Event) {
	if e.controller == nil || !e.isRunning {
		return
	}
	outcome, err := e.controller.HandleEvent(ev)
	if err != nil {
		core.LogError("%s: %s", ev.Code(), err)
		if e.runErr == nil {
			e.runErr = err
		}
		e.isRunning = false
		return
	}
	if outcome == session.Quit {
		e.endReason = EndReasonClosed
		e.isRunning = false
	}
}

// Run drives the event loop until the window closes, the document changes,
// ctx is cancelled, or a redraw fails.
func (e *Engine) Run(ctx context.Context) (EndReason, error) {
	if e.currentStage != EngineStageInitialized {
		return EndReasonClosed, fmt.Errorf("engine is not initialized")
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	budget := frameBudget(e.config.MaxFPS)

	for e.isRunning {
		if ctx.Err() != nil {
			e.endReason = EndReasonInterrupted
			break
		}
		if e.changes != nil {
			if e.changes.Changed() {
				core.LogInfo("document %s changed, reloading", e.config.DocumentPath)
				e.endReason = EndReasonDocumentChanged
				break
			}
			if err := e.changes.Failed(); err != nil {
				core.LogWarn("document watcher failed (%s), reloading %s", err, e.config.DocumentPath)
				e.endReason = EndReasonDocumentChanged
				break
			}
		}

		e.window.PumpMessages()
		if !e.isRunning {
			break
		}

		if w, h := e.window.FramebufferSize(); w == 0 || h == 0 {
			// Minimized, nothing can be presented.
			e.window.WaitMessages(minimizedPollInterval)
			continue
		}

		frameStart := time.Now()
		e.onEvent(core.RedrawRequestedEvent{})

		if budget > 0 {
			if remaining := budget - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
	e.isRunning = false
	return e.endReason, e.runErr
}

func frameBudget(maxFPS uint32) time.Duration {
	if maxFPS == 0 {
		return 0
	}
	return time.Second / time.Duration(maxFPS)
}

// Shutdown releases everything Initialize created, in reverse order. It is
// safe after a failed Initialize.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageStopped {
		return core.ErrSessionClosed
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	if e.controller != nil {
		m := e.controller.Metrics()
		core.LogInfo("session %s ended: %d frames drawn, %d skipped, %d sdf renders (last %dpx), %.1f fps, %s avg frame",
			e.sessionID.Short(), m.FramesDrawn, m.FramesSkipped, m.SDFRenders, m.LastSDFResolution, m.FPS(), m.FrameTime())
		e.controller.Close()
		e.controller = nil
	}
	if e.windowPass != nil {
		e.windowPass.Destroy()
		e.windowPass = nil
	}
	if e.sdfPass != nil {
		e.sdfPass.Destroy()
		e.sdfPass = nil
	}
	if e.geometry != nil {
		e.backend.DestroyBuffer(e.geometry)
		e.geometry = nil
	}

	var errs []error
	if e.document != nil {
		// Initialize got past the document, so the window and backend exist.
		if err := e.backend.Shutdown(); err != nil && !errors.Is(err, core.ErrSessionClosed) {
			errs = append(errs, err)
		}
		if err := e.window.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}

	e.currentStage = EngineStageStopped
	return errors.Join(errs...)
}
