// Package session owns the per-window state of the viewer and the
// progressive refinement controller that drives both render passes.
package session

import (
	"fmt"

	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
)

const (
	DefaultMinResolution uint32 = 32
	DefaultMaxResolution uint32 = 1024
)

type Phase int

const (
	// First redraw, nothing rendered yet.
	PhasePriming Phase = iota
	// Resolution doubles every redraw.
	PhaseRefining
	// Resolution reached the maximum, the cached texture is reused.
	PhaseConverged
)

func (p Phase) String() string {
	switch p {
	case PhasePriming:
		return "priming"
	case PhaseRefining:
		return "refining"
	case PhaseConverged:
		return "converged"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// RefinementState schedules the resolution of the SDF pass.
type RefinementState struct {
	Resolution    uint32
	MinResolution uint32
	MaxResolution uint32
}

func NewRefinementState(minResolution, maxResolution uint32) RefinementState {
	return RefinementState{
		Resolution:    minResolution,
		MinResolution: minResolution,
		MaxResolution: maxResolution,
	}
}

func (r RefinementState) Phase() Phase {
	switch {
	case r.Resolution >= r.MaxResolution:
		return PhaseConverged
	case r.Resolution <= r.MinResolution:
		return PhasePriming
	default:
		return PhaseRefining
	}
}

// OffscreenResult is the last SDF texture and the resolution it was drawn at.
type OffscreenResult struct {
	Texture    *metadata.Texture
	Resolution uint32
}

// SessionState is owned by the event loop. Nothing else mutates it.
type SessionState struct {
	Interaction core.InteractionState
	Refinement  RefinementState
	Offscreen   *OffscreenResult
	Clock       *core.Clock
}

// NewSessionState starts the session clock.
func NewSessionState(minResolution, maxResolution uint32) *SessionState {
	clock := core.NewClock()
	clock.Start()
	return &SessionState{
		Refinement: NewRefinementState(minResolution, maxResolution),
		Clock:      clock,
	}
}
