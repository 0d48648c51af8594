package renderer

import "github.com/spaghettifunk/epifaneia/engine/renderer/metadata"

// RendererBackend is the capability set the passes and the session controller
// draw through. Every method is called from the event-loop thread.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	CreatePipeline(config *metadata.PipelineConfig) (*metadata.Pipeline, error)
	DestroyPipeline(pipeline *metadata.Pipeline)
	CreateBuffer(usage metadata.RenderBufferType, data []byte) (*metadata.RenderBuffer, error)
	DestroyBuffer(buffer *metadata.RenderBuffer)
	CreateTexture(width, height uint32, format metadata.TextureFormat) (*metadata.Texture, error)
	// DestroyTexture may defer the release until in-flight frames no longer
	// reference the texture.
	DestroyTexture(texture *metadata.Texture)
	CreateSampler(config metadata.SamplerConfig) (*metadata.Sampler, error)
	DestroySampler(sampler *metadata.Sampler)
	// AcquireFrame returns core.ErrFrameUnavailable when no surface image can
	// be drawn this redraw.
	AcquireFrame() (*metadata.Frame, error)
	Submit(cmd *metadata.DrawCommand) error
	Present(frame *metadata.Frame) error
}
