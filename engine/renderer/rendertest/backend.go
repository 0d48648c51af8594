// Package rendertest provides a recording renderer backend for tests of code
// that draws through renderer.RendererBackend without a GPU.
package rendertest

import (
	"fmt"

	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/renderer"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
)

var _ renderer.RendererBackend = (*Backend)(nil)

// Backend records every call and tracks which resources are alive.
type Backend struct {
	Width, Height uint32

	Calls      []string
	Pipelines  []*metadata.PipelineConfig
	Submitted  []metadata.DrawCommand
	Presented  []*metadata.Frame
	Samplers   []metadata.SamplerConfig
	BufferData map[*metadata.RenderBuffer][]byte

	LiveTextures map[*metadata.Texture]bool
	LiveBuffers  map[*metadata.RenderBuffer]bool

	// Error injection. AcquireErrors is consumed one entry per AcquireFrame.
	PipelineErr   error
	SubmitErr     error
	AcquireErrors []error

	nextID      uint32
	frameNumber uint64
	shutdown    bool
}

func NewBackend() *Backend {
	return &Backend{
		Width:        800,
		Height:       600,
		BufferData:   map[*metadata.RenderBuffer][]byte{},
		LiveTextures: map[*metadata.Texture]bool{},
		LiveBuffers:  map[*metadata.RenderBuffer]bool{},
	}
}

func (b *Backend) record(format string, args ...interface{}) {
	b.Calls = append(b.Calls, fmt.Sprintf(format, args...))
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	b.record("Initialize(%s)", appName)
	b.Width, b.Height = appWidth, appHeight
	return nil
}

func (b *Backend) Shutdown() error {
	b.record("Shutdown")
	if b.shutdown {
		return core.ErrSessionClosed
	}
	b.shutdown = true
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	b.record("Resized(%d,%d)", width, height)
	b.Width, b.Height = width, height
	return nil
}

func (b *Backend) CreatePipeline(config *metadata.PipelineConfig) (*metadata.Pipeline, error) {
	b.record("CreatePipeline(%s)", config.Label)
	if b.PipelineErr != nil {
		return nil, b.PipelineErr
	}
	b.Pipelines = append(b.Pipelines, config)
	return &metadata.Pipeline{Config: config}, nil
}

func (b *Backend) DestroyPipeline(pipeline *metadata.Pipeline) {
	b.record("DestroyPipeline(%s)", pipeline.Config.Label)
}

func (b *Backend) CreateBuffer(usage metadata.RenderBufferType, data []byte) (*metadata.RenderBuffer, error) {
	buf := &metadata.RenderBuffer{RenderBufferType: usage, TotalSize: uint64(len(data))}
	b.record("CreateBuffer(%s,%d)", usage, len(data))
	b.BufferData[buf] = append([]byte(nil), data...)
	b.LiveBuffers[buf] = true
	return buf, nil
}

func (b *Backend) DestroyBuffer(buffer *metadata.RenderBuffer) {
	b.record("DestroyBuffer(%s)", buffer.Label)
	delete(b.LiveBuffers, buffer)
}

func (b *Backend) CreateTexture(width, height uint32, format metadata.TextureFormat) (*metadata.Texture, error) {
	b.nextID++
	tex := &metadata.Texture{ID: b.nextID, Width: width, Height: height, Format: format}
	b.record("CreateTexture(%d,%d)", width, height)
	b.LiveTextures[tex] = true
	return tex, nil
}

func (b *Backend) DestroyTexture(texture *metadata.Texture) {
	b.record("DestroyTexture(%d)", texture.ID)
	delete(b.LiveTextures, texture)
}

func (b *Backend) CreateSampler(config metadata.SamplerConfig) (*metadata.Sampler, error) {
	b.record("CreateSampler")
	b.Samplers = append(b.Samplers, config)
	return &metadata.Sampler{Config: config}, nil
}

func (b *Backend) DestroySampler(sampler *metadata.Sampler) {
	b.record("DestroySampler")
}

func (b *Backend) AcquireFrame() (*metadata.Frame, error) {
	b.record("AcquireFrame")
	if len(b.AcquireErrors) > 0 {
		err := b.AcquireErrors[0]
		b.AcquireErrors = b.AcquireErrors[1:]
		if err != nil {
			return nil, err
		}
	}
	b.frameNumber++
	return &metadata.Frame{FrameNumber: b.frameNumber, Width: b.Width, Height: b.Height}, nil
}

// Submit rejects commands that reference destroyed resources.
func (b *Backend) Submit(cmd *metadata.DrawCommand) error {
	b.record("Submit(%s)", cmd.Label)
	if b.SubmitErr != nil {
		return b.SubmitErr
	}
	if cmd.Target != nil && !b.LiveTextures[cmd.Target] {
		return fmt.Errorf("submit %s: target texture %d is not alive", cmd.Label, cmd.Target.ID)
	}
	if !b.LiveBuffers[cmd.VertexBuffer] {
		return fmt.Errorf("submit %s: vertex buffer is not alive", cmd.Label)
	}
	for _, binding := range cmd.Bindings {
		if binding.Buffer != nil && !b.LiveBuffers[binding.Buffer] {
			return fmt.Errorf("submit %s: buffer at slot %d is not alive", cmd.Label, binding.Slot)
		}
		if binding.Texture != nil && !b.LiveTextures[binding.Texture] {
			return fmt.Errorf("submit %s: texture at slot %d is not alive", cmd.Label, binding.Slot)
		}
	}
	b.Submitted = append(b.Submitted, *cmd)
	return nil
}

func (b *Backend) Present(frame *metadata.Frame) error {
	b.record("Present(%d)", frame.FrameNumber)
	b.Presented = append(b.Presented, frame)
	return nil
}

// SubmittedTo returns the commands drawn with the given label.
func (b *Backend) SubmittedTo(label string) []metadata.DrawCommand {
	var out []metadata.DrawCommand
	for _, cmd := range b.Submitted {
		if cmd.Label == label {
			out = append(out, cmd)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps resource liveness.
func (b *Backend) Reset() {
	b.Calls = nil
	b.Submitted = nil
	b.Presented = nil
}
