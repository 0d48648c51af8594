// Package passes holds the two pipelines of the viewer: the SDF pass that
// renders the user shader into a square offscreen texture, and the window
// pass that stretches that texture over the surface.
package passes

import (
	"fmt"

	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/math"
	"github.com/spaghettifunk/epifaneia/engine/renderer"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
	"github.com/spaghettifunk/epifaneia/engine/renderer/shaders"
)

// Uniform slots of the SDF shader, all in group 0.
const (
	SlotGeometry   uint32 = 0
	SlotResolution uint32 = 1
	SlotTime       uint32 = 2
	SlotMouse      uint32 = 3
)

const SDFTextureFormat = metadata.TextureFormatBGRA8UnormSrgb

var sdfClearColor = metadata.ClearColor{R: 1, G: 0, B: 0, A: 1}

func sdfPipelineConfig(source string) *metadata.PipelineConfig {
	uniform := func(slot uint32) metadata.BindingLayout {
		return metadata.BindingLayout{
			Slot:   slot,
			Type:   metadata.BindingTypeUniformBuffer,
			Stages: metadata.ShaderStageVertex | metadata.ShaderStageFragment,
		}
	}
	return &metadata.PipelineConfig{
		Label:              "sdf",
		Source:             source,
		VertexEntryPoint:   shaders.VertexEntryPoint,
		FragmentEntryPoint: shaders.FragmentEntryPoint,
		Vertex: metadata.VertexLayout{
			Stride: 12,
			Attributes: []metadata.VertexAttribute{
				{Location: 0, Type: metadata.ShaderAttribTypeFloat32_3, Offset: 0},
			},
		},
		Bindings: []metadata.BindingLayout{
			uniform(SlotGeometry),
			uniform(SlotResolution),
			uniform(SlotTime),
			uniform(SlotMouse),
		},
		Topology:     metadata.PrimitiveTopologyTriangleStrip,
		CullMode:     metadata.FaceCullModeBack,
		FrontFace:    metadata.FrontFaceCounterClockwise,
		Target:       metadata.RenderTargetOffscreen,
		TargetFormat: SDFTextureFormat,
	}
}

// SDFPass renders the document shader into a fresh square texture.
type SDFPass struct {
	backend  renderer.RendererBackend
	pipeline *metadata.Pipeline
	vertices *metadata.RenderBuffer
}

func NewSDFPass(backend renderer.RendererBackend, source string) (*SDFPass, error) {
	cfg := sdfPipelineConfig(source)
	if err := shaders.Validate(cfg.Label, cfg.Source, cfg.VertexEntryPoint, cfg.FragmentEntryPoint); err != nil {
		return nil, err
	}

	pipeline, err := backend.CreatePipeline(cfg)
	if err != nil {
		return nil, err
	}
	vertices, err := backend.CreateBuffer(metadata.RENDERBUFFER_TYPE_VERTEX, sdfQuadBytes())
	if err != nil {
		backend.DestroyPipeline(pipeline)
		return nil, err
	}
	vertices.Label = "sdf_vertices"

	return &SDFPass{
		backend:  backend,
		pipeline: pipeline,
		vertices: vertices,
	}, nil
}

// Render draws one resolution x resolution texture. The uniform buffers live
// only for this call; the caller owns the returned texture.
func (p *SDFPass) Render(resolution uint32, elapsed float32, mouse math.Vec2, geometry *metadata.RenderBuffer) (*metadata.Texture, error) {
	if resolution == 0 {
		return nil, fmt.Errorf("sdf pass: resolution must be positive")
	}

	texture, err := p.backend.CreateTexture(resolution, resolution, SDFTextureFormat)
	if err != nil {
		return nil, err
	}
	texture.Name = fmt.Sprintf("sdf_%d", resolution)

	res := float32(resolution)
	uniforms := []struct {
		slot  uint32
		label string
		data  []byte
	}{
		{SlotResolution, "resolution", math.NewVec2(res, res).Bytes()},
		{SlotTime, "time", math.Float32Bytes(elapsed)},
		{SlotMouse, "mouse", mouse.Bytes()},
	}

	bindings := []metadata.Binding{{Slot: SlotGeometry, Buffer: geometry}}
	buffers := make([]*metadata.RenderBuffer, 0, len(uniforms))
	defer func() {
		for _, b := range buffers {
			p.backend.DestroyBuffer(b)
		}
	}()

	for _, u := range uniforms {
		buf, err := p.backend.CreateBuffer(metadata.RENDERBUFFER_TYPE_UNIFORM, u.data)
		if err != nil {
			p.backend.DestroyTexture(texture)
			return nil, err
		}
		buf.Label = u.label
		buffers = append(buffers, buf)
		bindings = append(bindings, metadata.Binding{Slot: u.slot, Buffer: buf})
	}

	cmd := &metadata.DrawCommand{
		Label:        "sdf",
		Pipeline:     p.pipeline,
		Target:       texture,
		ClearColor:   sdfClearColor,
		VertexBuffer: p.vertices,
		VertexCount:  QuadVertexCount,
		Bindings:     bindings,
	}
	if err := p.backend.Submit(cmd); err != nil {
		p.backend.DestroyTexture(texture)
		return nil, err
	}

	core.LogDebug("sdf pass rendered %dx%d at t=%.3fs", resolution, resolution, elapsed)
	return texture, nil
}

func (p *SDFPass) Destroy() {
	if p.vertices != nil {
		p.backend.DestroyBuffer(p.vertices)
		p.vertices = nil
	}
	if p.pipeline != nil {
		p.backend.DestroyPipeline(p.pipeline)
		p.pipeline = nil
	}
}
