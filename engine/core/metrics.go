package core

import (
	"time"

	"github.com/spaghettifunk/epifaneia/engine/containers"
)

const AVG_COUNT = 30

// Metrics collects per-session frame statistics.
type Metrics struct {
	frameTimes         *containers.RingQueue[time.Duration]
	accumulated        time.Duration
	framesThisSecond   int
	fps                float64
	FramesDrawn        uint64
	FramesSkipped      uint64
	SDFRenders         uint64
	LastSDFResolution  uint32
	ConvergedAtRedraws uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		frameTimes: containers.NewRingQueue[time.Duration](AVG_COUNT),
	}
}

// FrameCompleted records the duration of one composited frame.
func (m *Metrics) FrameCompleted(frameTime time.Duration) {
	m.FramesDrawn++
	m.frameTimes.Push(frameTime)

	// Calculate frames per second.
	m.accumulated += frameTime
	m.framesThisSecond++
	if m.accumulated >= time.Second {
		m.fps = float64(m.framesThisSecond) / m.accumulated.Seconds()
		m.accumulated = 0
		m.framesThisSecond = 0
	}
}

func (m *Metrics) FrameSkipped() {
	m.FramesSkipped++
}

func (m *Metrics) SDFRendered(resolution uint32) {
	m.SDFRenders++
	m.LastSDFResolution = resolution
}

// FrameTime is the average over the last AVG_COUNT frames.
func (m *Metrics) FrameTime() time.Duration {
	if m.frameTimes.IsEmpty() {
		return 0
	}
	var total time.Duration
	m.frameTimes.Each(func(d time.Duration) { total += d })
	return total / time.Duration(m.frameTimes.Len())
}

func (m *Metrics) FPS() float64 {
	return m.fps
}
