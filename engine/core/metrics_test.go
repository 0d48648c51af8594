package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsFrameTimeWindow(t *testing.T) {
	m := NewMetrics()
	assert.Zero(t, m.FrameTime())

	for i := 0; i < AVG_COUNT; i++ {
		m.FrameCompleted(10 * time.Millisecond)
	}
	assert.Equal(t, 10*time.Millisecond, m.FrameTime())

	// The window only keeps the newest AVG_COUNT samples.
	for i := 0; i < AVG_COUNT; i++ {
		m.FrameCompleted(20 * time.Millisecond)
	}
	assert.Equal(t, 20*time.Millisecond, m.FrameTime())
	assert.EqualValues(t, 2*AVG_COUNT, m.FramesDrawn)
}

func TestMetricsFPS(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 50; i++ {
		m.FrameCompleted(20 * time.Millisecond)
	}
	assert.InDelta(t, 50.0, m.FPS(), 0.001)
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.FrameSkipped()
	m.SDFRendered(64)
	m.SDFRendered(128)
	assert.EqualValues(t, 1, m.FramesSkipped)
	assert.EqualValues(t, 2, m.SDFRenders)
	assert.EqualValues(t, 128, m.LastSDFResolution)
}
