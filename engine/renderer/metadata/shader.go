package metadata

type ShaderStage int

const (
	ShaderStageVertex   ShaderStage = 0x00000001
	ShaderStageFragment ShaderStage = 0x00000004
)

/** @brief Available attribute types. */
type ShaderAttributeType uint

const (
	ShaderAttribTypeFloat32   ShaderAttributeType = 0
	ShaderAttribTypeFloat32_2 ShaderAttributeType = 1
	ShaderAttribTypeFloat32_3 ShaderAttributeType = 2
	ShaderAttribTypeFloat32_4 ShaderAttributeType = 3
)

// Size in bytes of one attribute of this type.
func (t ShaderAttributeType) Size() uint32 {
	switch t {
	case ShaderAttribTypeFloat32_2:
		return 8
	case ShaderAttribTypeFloat32_3:
		return 12
	case ShaderAttribTypeFloat32_4:
		return 16
	default:
		return 4
	}
}

type VertexAttribute struct {
	Location uint32
	Type     ShaderAttributeType
	Offset   uint32
}

type VertexLayout struct {
	Stride     uint32
	Attributes []VertexAttribute
}

type BindingType int

const (
	BindingTypeUniformBuffer BindingType = iota
	BindingTypeTexture
	BindingTypeSampler
)

type BindingLayout struct {
	Slot   uint32
	Type   BindingType
	Stages ShaderStage
}

/** @brief Where a pipeline draws to. */
type RenderTargetKind int

const (
	RenderTargetOffscreen RenderTargetKind = iota
	RenderTargetSurface
)

/**
 * @brief Everything needed to build a drawing pipeline from WGSL source.
 */
type PipelineConfig struct {
	Label string
	/** @brief WGSL source containing both entry points. */
	Source             string
	VertexEntryPoint   string
	FragmentEntryPoint string
	Vertex             VertexLayout
	/** @brief Bind layout of group 0. */
	Bindings  []BindingLayout
	Topology  PrimitiveTopology
	CullMode  FaceCullMode
	FrontFace FrontFace
	Target    RenderTargetKind
	/** @brief Colour target format. Ignored for surface targets. */
	TargetFormat TextureFormat
}

type Pipeline struct {
	Config *PipelineConfig
	/** @brief Backend-specific data. */
	InternalData interface{}
}
