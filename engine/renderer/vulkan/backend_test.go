package vulkan

import (
	"testing"

	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/stretchr/testify/assert"
)

func TestUniqueNamesKeepsFirstOccurrence(t *testing.T) {
	names := uniqueNames([]string{"VK_KHR_surface", "VK_KHR_xcb_surface", "VK_KHR_surface"})
	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}, names)
	assert.Empty(t, uniqueNames(nil))
}

func TestCallsAfterShutdownReportClosedSession(t *testing.T) {
	vr := New(nil, false)
	vr.shutdown = true

	_, err := vr.AcquireFrame()
	assert.ErrorIs(t, err, core.ErrSessionClosed)
	assert.ErrorIs(t, vr.Shutdown(), core.ErrSessionClosed)
	assert.ErrorIs(t, vr.Resized(10, 10), core.ErrSessionClosed)
}
