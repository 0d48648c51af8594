package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/epifaneia/engine/core"
)

func TestTranslateButton(t *testing.T) {
	assert.Equal(t, core.BUTTON_LEFT, translateButton(glfw.MouseButtonLeft))
	assert.Equal(t, core.BUTTON_RIGHT, translateButton(glfw.MouseButtonRight))
	assert.Equal(t, core.BUTTON_MIDDLE, translateButton(glfw.MouseButtonMiddle))
	assert.Equal(t, core.BUTTON_OTHER, translateButton(glfw.MouseButton4))
}

func TestEmitWithoutHandler(t *testing.T) {
	p := New(nil)
	assert.NotPanics(t, func() { p.emit(core.CloseRequestedEvent{}) })

	var got []core.Event
	p.SetEventHandler(func(ev core.Event) { got = append(got, ev) })
	p.emit(core.ResizedEvent{Width: 4, Height: 2})
	assert.Equal(t, []core.Event{core.ResizedEvent{Width: 4, Height: 2}}, got)
}

func TestWindowlessQueries(t *testing.T) {
	p := New(nil)
	w, h := p.FramebufferSize()
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.Nil(t, p.GetRequiredExtensionNames())
	_, err := p.CreateWindowSurface(nil)
	assert.Error(t, err)
}
