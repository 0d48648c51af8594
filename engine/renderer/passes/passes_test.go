package passes

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/math"
	"github.com/spaghettifunk/epifaneia/engine/renderer/geometry"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
	"github.com/spaghettifunk/epifaneia/engine/renderer/rendertest"
	"github.com/spaghettifunk/epifaneia/engine/renderer/shaders"
)

func f32(b []byte, i int) float32 {
	return stdmath.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestQuadLayouts(t *testing.T) {
	sdf := sdfQuadBytes()
	require.Len(t, sdf, 4*12)
	assert.Equal(t, []float32{-1, 1, 0}, []float32{f32(sdf, 0), f32(sdf, 1), f32(sdf, 2)})
	assert.Equal(t, []float32{1, -1, 0}, []float32{f32(sdf, 9), f32(sdf, 10), f32(sdf, 11)})

	win := windowQuadBytes()
	require.Len(t, win, 4*20)
	// second vertex: bottom-left maps to uv (0,1)
	assert.Equal(t, []float32{-1, -1, 0, 0, 1}, []float32{f32(win, 5), f32(win, 6), f32(win, 7), f32(win, 8), f32(win, 9)})
	// third vertex: top-right maps to uv (1,0)
	assert.Equal(t, []float32{1, 1, 0, 1, 0}, []float32{f32(win, 10), f32(win, 11), f32(win, 12), f32(win, 13), f32(win, 14)})
}

func TestSDFPipelineConfig(t *testing.T) {
	backend := rendertest.NewBackend()
	pass, err := NewSDFPass(backend, shaders.SampleWGSL)
	require.NoError(t, err)
	defer pass.Destroy()

	require.Len(t, backend.Pipelines, 1)
	cfg := backend.Pipelines[0]
	assert.Equal(t, "vs_main", cfg.VertexEntryPoint)
	assert.Equal(t, "fs_main", cfg.FragmentEntryPoint)
	assert.Equal(t, uint32(12), cfg.Vertex.Stride)
	assert.Equal(t, metadata.PrimitiveTopologyTriangleStrip, cfg.Topology)
	assert.Equal(t, metadata.FaceCullModeBack, cfg.CullMode)
	assert.Equal(t, metadata.FrontFaceCounterClockwise, cfg.FrontFace)
	assert.Equal(t, metadata.TextureFormatBGRA8UnormSrgb, cfg.TargetFormat)
	require.Len(t, cfg.Bindings, 4)
	for i, b := range cfg.Bindings {
		assert.Equal(t, uint32(i), b.Slot)
		assert.Equal(t, metadata.BindingTypeUniformBuffer, b.Type)
	}
}

func TestNewSDFPassRejectsMissingEntryPoints(t *testing.T) {
	backend := rendertest.NewBackend()
	_, err := NewSDFPass(backend, "@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }")
	assert.ErrorIs(t, err, core.ErrShaderCompilation)
	assert.Empty(t, backend.Pipelines)
}

func TestSDFRender(t *testing.T) {
	backend := rendertest.NewBackend()
	pass, err := NewSDFPass(backend, shaders.SampleWGSL)
	require.NoError(t, err)

	geo, err := backend.CreateBuffer(metadata.RENDERBUFFER_TYPE_UNIFORM, geometry.Placeholder())
	require.NoError(t, err)

	tex, err := pass.Render(64, 1.5, math.NewVec2(3, 5), geo)
	require.NoError(t, err)
	assert.Equal(t, uint32(64), tex.Width)
	assert.Equal(t, uint32(64), tex.Height)
	assert.Equal(t, metadata.TextureFormatBGRA8UnormSrgb, tex.Format)
	assert.True(t, backend.LiveTextures[tex])

	cmds := backend.SubmittedTo("sdf")
	require.Len(t, cmds, 1)
	cmd := cmds[0]
	assert.Same(t, tex, cmd.Target)
	assert.Nil(t, cmd.Frame)
	assert.Equal(t, metadata.ClearColor{R: 1, A: 1}, cmd.ClearColor)
	assert.Equal(t, uint32(4), cmd.VertexCount)
	require.Len(t, cmd.Bindings, 4)
	assert.Same(t, geo, cmd.Bindings[0].Buffer)

	res := backend.BufferData[cmd.Bindings[1].Buffer]
	assert.Equal(t, []float32{64, 64}, []float32{f32(res, 0), f32(res, 1)})
	assert.Equal(t, float32(1.5), f32(backend.BufferData[cmd.Bindings[2].Buffer], 0))
	mouse := backend.BufferData[cmd.Bindings[3].Buffer]
	assert.Equal(t, []float32{3, 5}, []float32{f32(mouse, 0), f32(mouse, 1)})

	// Per-render uniforms are released, the geometry buffer is not.
	for _, b := range cmd.Bindings[1:] {
		assert.False(t, backend.LiveBuffers[b.Buffer])
	}
	assert.True(t, backend.LiveBuffers[geo])
}

func TestSDFRenderSubmitFailureReleasesTexture(t *testing.T) {
	backend := rendertest.NewBackend()
	pass, err := NewSDFPass(backend, shaders.SampleWGSL)
	require.NoError(t, err)
	geo, _ := backend.CreateBuffer(metadata.RENDERBUFFER_TYPE_UNIFORM, geometry.Placeholder())

	backend.SubmitErr = assert.AnError
	_, err = pass.Render(32, 0, math.NewVec2Zero(), geo)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, backend.LiveTextures)
}

func TestSDFRenderZeroResolution(t *testing.T) {
	backend := rendertest.NewBackend()
	pass, err := NewSDFPass(backend, shaders.SampleWGSL)
	require.NoError(t, err)
	_, err = pass.Render(0, 0, math.NewVec2Zero(), nil)
	assert.Error(t, err)
}

func TestWindowComposite(t *testing.T) {
	backend := rendertest.NewBackend()
	pass, err := NewWindowPass(backend)
	require.NoError(t, err)

	require.Len(t, backend.Samplers, 1)
	assert.Equal(t, WindowSamplerConfig, backend.Samplers[0])
	cfg := backend.Pipelines[0]
	assert.Equal(t, metadata.RenderTargetSurface, cfg.Target)
	assert.Equal(t, uint32(20), cfg.Vertex.Stride)
	assert.Equal(t, uint32(12), cfg.Vertex.Attributes[1].Offset)

	tex, _ := backend.CreateTexture(32, 32, SDFTextureFormat)
	frame, err := backend.AcquireFrame()
	require.NoError(t, err)

	require.NoError(t, pass.Composite(frame, tex, nil))
	cmds := backend.SubmittedTo("window")
	require.Len(t, cmds, 1)
	assert.Same(t, frame, cmds[0].Frame)
	assert.Equal(t, metadata.ClearColor{G: 1, A: 1}, cmds[0].ClearColor)
	assert.Same(t, tex, cmds[0].Bindings[0].Texture)
	assert.Same(t, pass.Sampler, cmds[0].Bindings[1].Sampler)
}

func TestWindowCompositeNeedsTextureAndFrame(t *testing.T) {
	backend := rendertest.NewBackend()
	pass, err := NewWindowPass(backend)
	require.NoError(t, err)
	frame, _ := backend.AcquireFrame()
	tex, _ := backend.CreateTexture(32, 32, SDFTextureFormat)

	assert.Error(t, pass.Composite(frame, nil, nil))
	assert.Error(t, pass.Composite(nil, tex, nil))
	assert.Empty(t, backend.Submitted)
}

func TestDestroyReleasesEverything(t *testing.T) {
	backend := rendertest.NewBackend()
	sdf, err := NewSDFPass(backend, shaders.SampleWGSL)
	require.NoError(t, err)
	win, err := NewWindowPass(backend)
	require.NoError(t, err)

	sdf.Destroy()
	win.Destroy()
	win.Destroy()
	assert.Empty(t, backend.LiveBuffers)
	assert.Contains(t, backend.Calls, "DestroyPipeline(sdf)")
	assert.Contains(t, backend.Calls, "DestroyPipeline(window)")
	assert.Contains(t, backend.Calls, "DestroySampler")
}
