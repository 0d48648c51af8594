package engine

import (
	"github.com/spaghettifunk/epifaneia/engine/config"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name string
	// Path of the JSON document holding the shader and the geometry.
	DocumentPath string
	// Upper bound on redraws per second, 0 for unlimited.
	MaxFPS uint32

	MinResolution uint32
	MaxResolution uint32

	Backend    string
	Validation bool
}

// NewApplicationConfig flattens the file configuration for one document.
func NewApplicationConfig(cfg *config.Config, documentPath string) *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:     cfg.Window.PosX,
		StartPosY:     cfg.Window.PosY,
		StartWidth:    cfg.Window.Width,
		StartHeight:   cfg.Window.Height,
		Name:          cfg.Window.Title,
		DocumentPath:  documentPath,
		MaxFPS:        cfg.Window.MaxFPS,
		MinResolution: cfg.Refinement.MinResolution,
		MaxResolution: cfg.Refinement.MaxResolution,
		Backend:       cfg.Renderer.Backend,
		Validation:    cfg.Renderer.Validation,
	}
}
