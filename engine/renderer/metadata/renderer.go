package metadata

type RenderBufferType int

const (
	/** @brief Buffer is use is unknown. Default, but usually invalid. */
	RENDERBUFFER_TYPE_UNKNOWN RenderBufferType = iota
	/** @brief Buffer is used for vertex data. */
	RENDERBUFFER_TYPE_VERTEX
	/** @brief Buffer is used for uniform data. */
	RENDERBUFFER_TYPE_UNIFORM
)

func (t RenderBufferType) String() string {
	switch t {
	case RENDERBUFFER_TYPE_VERTEX:
		return "vertex"
	case RENDERBUFFER_TYPE_UNIFORM:
		return "uniform"
	default:
		return "unknown"
	}
}

type RenderBuffer struct {
	/** @brief The type of buffer, which typically determines its use. */
	RenderBufferType RenderBufferType
	/** @brief The total size of the buffer in bytes. */
	TotalSize uint64
	Label     string
	/** @brief Contains internal data for the renderer-API-specific buffer. */
	InternalData interface{}
}

/**
 * @brief A presentable surface image acquired for one redraw.
 */
type Frame struct {
	/** @brief Monotonic counter of acquired frames. */
	FrameNumber uint64
	/** @brief Index of the swapchain image backing this frame. */
	ImageIndex uint32
	Width      uint32
	Height     uint32
	/** @brief Backend-specific data (command buffer, slot). */
	InternalData interface{}
}

/**
 * @brief A resource bound to a pipeline slot for one draw.
 */
type Binding struct {
	Slot    uint32
	Buffer  *RenderBuffer
	Texture *Texture
	Sampler *Sampler
}

/**
 * @brief One draw of a full pipeline into either an offscreen texture or a frame.
 * Exactly one of Target and Frame is set.
 */
type DrawCommand struct {
	Label        string
	Pipeline     *Pipeline
	Target       *Texture
	Frame        *Frame
	ClearColor   ClearColor
	VertexBuffer *RenderBuffer
	VertexCount  uint32
	Bindings     []Binding
}
