package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/epifaneia/engine/math"
)

func TestMouseDeltaWhilePressed(t *testing.T) {
	s := &InteractionState{}
	s.ProcessMouseMove(10, 20)
	s.ProcessButton(BUTTON_LEFT, true)
	s.ProcessMouseMove(13, 25)

	assert.Equal(t, math.NewVec2(3, 5), s.MouseDelta())
}

func TestMouseDeltaReleased(t *testing.T) {
	s := &InteractionState{}
	s.ProcessMouseMove(10, 20)
	s.ProcessButton(BUTTON_LEFT, true)
	s.ProcessMouseMove(40, 90)
	s.ProcessButton(BUTTON_LEFT, false)

	assert.Equal(t, math.NewVec2Zero(), s.MouseDelta())

	s.ProcessMouseMove(1, 1)
	assert.Equal(t, math.NewVec2Zero(), s.MouseDelta())
}

func TestMouseDeltaRecomputedFromCursor(t *testing.T) {
	s := &InteractionState{}
	s.ProcessButton(BUTTON_LEFT, true)
	s.ProcessMouseMove(5, 5)
	assert.Equal(t, math.NewVec2(5, 5), s.MouseDelta())
	s.ProcessMouseMove(-2, 7)
	assert.Equal(t, math.NewVec2(-2, 7), s.MouseDelta())
}

func TestNonLeftButtonsIgnored(t *testing.T) {
	s := &InteractionState{}
	s.ProcessMouseMove(3, 4)
	for _, b := range []Button{BUTTON_RIGHT, BUTTON_MIDDLE, BUTTON_OTHER} {
		assert.True(t, s.HandleEvent(MouseInputEvent{Button: b, Pressed: true}))
	}
	assert.False(t, s.Pressed)
	assert.Equal(t, math.NewVec2Zero(), s.PressPosition)
}

func TestHandleEventVariants(t *testing.T) {
	s := &InteractionState{}
	assert.True(t, s.HandleEvent(CursorMovedEvent{X: 1.5, Y: 2.5}))
	assert.Equal(t, math.NewVec2(1.5, 2.5), s.Cursor)

	before := *s
	for _, ev := range []Event{ResizedEvent{Width: 1, Height: 1}, CloseRequestedEvent{}, RedrawRequestedEvent{}, OtherEvent{Name: "focus"}} {
		assert.False(t, s.HandleEvent(ev), ev.Code().String())
	}
	assert.Equal(t, before, *s)
}
