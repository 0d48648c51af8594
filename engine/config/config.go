// Package config loads the optional epifaneia.toml file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/math"
)

const DefaultFile = "epifaneia.toml"

type Window struct {
	Title  string `toml:"title"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	PosX   uint32 `toml:"pos_x"`
	PosY   uint32 `toml:"pos_y"`
	// 0 disables the frame limiter.
	MaxFPS uint32 `toml:"max_fps"`
}

// MaxTextureResolution bounds max_resolution. The largest offscreen texture
// rendered is below it.
const MaxTextureResolution = 16384

type Refinement struct {
	MinResolution uint32 `toml:"min_resolution"`
	MaxResolution uint32 `toml:"max_resolution"`
}

type Log struct {
	Level string `toml:"level"`
}

type Session struct {
	// Restart the viewer when the document changes on disk.
	WatchDocument bool `toml:"watch_document"`
	// Open a new window after the user closes the current one.
	ReopenOnClose bool `toml:"reopen_on_close"`
}

type Renderer struct {
	Backend    string `toml:"backend"`
	Validation bool   `toml:"validation"`
}

type Config struct {
	Window     Window     `toml:"window"`
	Refinement Refinement `toml:"refinement"`
	Log        Log        `toml:"log"`
	Session    Session    `toml:"session"`
	Renderer   Renderer   `toml:"renderer"`
}

func Default() *Config {
	return &Config{
		Window: Window{
			Title:  "Epifaneia",
			Width:  800,
			Height: 800,
			PosX:   100,
			PosY:   100,
		},
		Refinement: Refinement{
			MinResolution: 32,
			MaxResolution: 1024,
		},
		Log: Log{Level: "info"},
		Session: Session{
			WatchDocument: true,
			ReopenOnClose: true,
		},
		Renderer: Renderer{Backend: "vulkan"},
	}
}

// Load reads path on top of the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogDebug("no config file at %s, using defaults", path)
		cfg := Default()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Refinement.MinResolution == 0 {
		return errors.New("refinement.min_resolution must be positive")
	}
	if c.Refinement.MaxResolution > MaxTextureResolution {
		return fmt.Errorf("refinement.max_resolution (%d) must not exceed %d",
			c.Refinement.MaxResolution, MaxTextureResolution)
	}
	if c.Refinement.MinResolution >= c.Refinement.MaxResolution {
		return fmt.Errorf("refinement.min_resolution (%d) must be lower than refinement.max_resolution (%d)",
			c.Refinement.MinResolution, c.Refinement.MaxResolution)
	}
	if _, err := core.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Renderer.Backend {
	case "vulkan":
	default:
		return fmt.Errorf("renderer.backend %q is not supported", c.Renderer.Backend)
	}

	for _, r := range []uint32{c.Refinement.MinResolution, c.Refinement.MaxResolution} {
		if !math.IsPowerOfTwo(r) {
			core.LogWarn("resolution %d is not a power of two, the last refinement step will be clamped", r)
		}
	}
	return nil
}

// Marshal renders the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
