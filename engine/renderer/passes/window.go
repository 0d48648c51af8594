package passes

import (
	"errors"

	"github.com/spaghettifunk/epifaneia/engine/renderer"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
	"github.com/spaghettifunk/epifaneia/engine/renderer/shaders"
)

const (
	SlotTexture uint32 = 0
	SlotSampler uint32 = 1
)

var windowClearColor = metadata.ClearColor{R: 0, G: 1, B: 0, A: 1}

// WindowSamplerConfig magnifies linearly and never repeats.
var WindowSamplerConfig = metadata.SamplerConfig{
	FilterMinify:  metadata.TextureFilterModeNearest,
	FilterMagnify: metadata.TextureFilterModeLinear,
	FilterMip:     metadata.TextureFilterModeNearest,
	RepeatU:       metadata.TextureRepeatClampToEdge,
	RepeatV:       metadata.TextureRepeatClampToEdge,
	RepeatW:       metadata.TextureRepeatClampToEdge,
}

func windowPipelineConfig() *metadata.PipelineConfig {
	return &metadata.PipelineConfig{
		Label:              "window",
		Source:             shaders.WindowWGSL,
		VertexEntryPoint:   shaders.VertexEntryPoint,
		FragmentEntryPoint: shaders.FragmentEntryPoint,
		Vertex: metadata.VertexLayout{
			Stride: 20,
			Attributes: []metadata.VertexAttribute{
				{Location: 0, Type: metadata.ShaderAttribTypeFloat32_3, Offset: 0},
				{Location: 1, Type: metadata.ShaderAttribTypeFloat32_2, Offset: 12},
			},
		},
		Bindings: []metadata.BindingLayout{
			{Slot: SlotTexture, Type: metadata.BindingTypeTexture, Stages: metadata.ShaderStageFragment},
			{Slot: SlotSampler, Type: metadata.BindingTypeSampler, Stages: metadata.ShaderStageFragment},
		},
		Topology:  metadata.PrimitiveTopologyTriangleStrip,
		CullMode:  metadata.FaceCullModeBack,
		FrontFace: metadata.FrontFaceCounterClockwise,
		Target:    metadata.RenderTargetSurface,
	}
}

// WindowPass composites the cached SDF texture onto an acquired frame.
type WindowPass struct {
	backend  renderer.RendererBackend
	pipeline *metadata.Pipeline
	vertices *metadata.RenderBuffer
	Sampler  *metadata.Sampler
}

func NewWindowPass(backend renderer.RendererBackend) (*WindowPass, error) {
	pipeline, err := backend.CreatePipeline(windowPipelineConfig())
	if err != nil {
		return nil, err
	}
	vertices, err := backend.CreateBuffer(metadata.RENDERBUFFER_TYPE_VERTEX, windowQuadBytes())
	if err != nil {
		backend.DestroyPipeline(pipeline)
		return nil, err
	}
	vertices.Label = "window_vertices"

	sampler, err := backend.CreateSampler(WindowSamplerConfig)
	if err != nil {
		backend.DestroyBuffer(vertices)
		backend.DestroyPipeline(pipeline)
		return nil, err
	}

	return &WindowPass{
		backend:  backend,
		pipeline: pipeline,
		vertices: vertices,
		Sampler:  sampler,
	}, nil
}

// Composite records the window draw into frame. A nil sampler falls back to
// the pass's own sampler.
func (p *WindowPass) Composite(frame *metadata.Frame, texture *metadata.Texture, sampler *metadata.Sampler) error {
	if frame == nil {
		return errors.New("window pass: no frame to draw into")
	}
	if texture == nil {
		return errors.New("window pass: no offscreen texture to composite")
	}
	if sampler == nil {
		sampler = p.Sampler
	}

	return p.backend.Submit(&metadata.DrawCommand{
		Label:        "window",
		Pipeline:     p.pipeline,
		Frame:        frame,
		ClearColor:   windowClearColor,
		VertexBuffer: p.vertices,
		VertexCount:  QuadVertexCount,
		Bindings: []metadata.Binding{
			{Slot: SlotTexture, Texture: texture},
			{Slot: SlotSampler, Sampler: sampler},
		},
	})
}

func (p *WindowPass) Destroy() {
	if p.Sampler != nil {
		p.backend.DestroySampler(p.Sampler)
		p.Sampler = nil
	}
	if p.vertices != nil {
		p.backend.DestroyBuffer(p.vertices)
		p.vertices = nil
	}
	if p.pipeline != nil {
		p.backend.DestroyPipeline(p.pipeline)
		p.pipeline = nil
	}
}
