package metadata

/** @brief Pixel formats a texture can be created with. */
type TextureFormat int

const (
	/** @brief Whatever the presentable surface negotiated. Only valid for frames. */
	TextureFormatSurface TextureFormat = iota
	/** @brief 8 bits per channel, BGRA order, sRGB encoded. */
	TextureFormatBGRA8UnormSrgb
)

func (f TextureFormat) String() string {
	switch f {
	case TextureFormatBGRA8UnormSrgb:
		return "Bgra8UnormSrgb"
	default:
		return "Surface"
	}
}

/**
 * @brief Represents a texture.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID uint32
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The pixel format. */
	Format TextureFormat
	/** @brief The texture Name. */
	Name string
	/** @brief Backend-specific data (image, memory, view, framebuffer). */
	InternalData interface{}
}

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

type TextureRepeat int

const (
	TextureRepeatRepeat         TextureRepeat = 0x1
	TextureRepeatMirroredRepeat TextureRepeat = 0x2
	TextureRepeatClampToEdge    TextureRepeat = 0x3
	TextureRepeatClampToBorder  TextureRepeat = 0x4
)

/**
 * @brief Filtering and addressing used when a texture is sampled.
 */
type SamplerConfig struct {
	/** @brief Texture filtering mode for minification. */
	FilterMinify TextureFilter
	/** @brief Texture filtering mode for magnification. */
	FilterMagnify TextureFilter
	/** @brief Filtering between mip levels. */
	FilterMip TextureFilter
	/** @brief The repeat mode on the U axis (or X, or S) */
	RepeatU TextureRepeat
	/** @brief The repeat mode on the V axis (or Y, or T) */
	RepeatV TextureRepeat
	/** @brief The repeat mode on the W axis (or Z, or U) */
	RepeatW TextureRepeat
}

type Sampler struct {
	Config SamplerConfig
	/** @brief A pointer to internal, render API-specific data. Typically the internal sampler. */
	InternalData interface{}
}
