package renderer

import (
	"fmt"
	"strings"
)

type RendererType uint8

const (
	Vulkan RendererType = iota
	DirectX
	Metal
	OpenGL
)

func (t RendererType) String() string {
	switch t {
	case Vulkan:
		return "vulkan"
	case DirectX:
		return "directx"
	case Metal:
		return "metal"
	case OpenGL:
		return "opengl"
	}
	return "unknown"
}

func ParseRendererType(name string) (RendererType, error) {
	switch strings.ToLower(name) {
	case "vulkan", "":
		return Vulkan, nil
	case "directx":
		return DirectX, nil
	case "metal":
		return Metal, nil
	case "opengl":
		return OpenGL, nil
	}
	return 0, fmt.Errorf("unknown renderer backend %q", name)
}
