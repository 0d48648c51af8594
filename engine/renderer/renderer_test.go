package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRendererType(t *testing.T) {
	for in, want := range map[string]RendererType{
		"vulkan": Vulkan,
		"Vulkan": Vulkan,
		"":       Vulkan,
		"metal":  Metal,
		"opengl": OpenGL,
	} {
		got, err := ParseRendererType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseRendererType("software")
	assert.Error(t, err)
}
