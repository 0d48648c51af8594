package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockElapsed(t *testing.T) {
	now := time.Unix(100, 0)
	c := newClockAt(func() time.Time { return now })

	c.Update()
	assert.Zero(t, c.Elapsed(), "not started")

	c.Start()
	now = now.Add(1500 * time.Millisecond)
	c.Update()
	assert.Equal(t, 1500*time.Millisecond, c.Elapsed())
	assert.InDelta(t, 1.5, c.Seconds(), 1e-6)

	c.Stop()
	now = now.Add(time.Hour)
	c.Update()
	assert.Equal(t, 1500*time.Millisecond, c.Elapsed())
}
