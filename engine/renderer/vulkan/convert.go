package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
)

func vulkanTopology(t metadata.PrimitiveTopology) vk.PrimitiveTopology {
	if t == metadata.PrimitiveTopologyTriangleStrip {
		return vk.PrimitiveTopologyTriangleStrip
	}
	return vk.PrimitiveTopologyTriangleList
}

func vulkanCullMode(mode metadata.FaceCullMode) vk.CullModeFlags {
	switch mode {
	case metadata.FaceCullModeNone:
		return vk.CullModeFlags(vk.CullModeNone)
	case metadata.FaceCullModeFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	case metadata.FaceCullModeFrontAndBack:
		return vk.CullModeFlags(vk.CullModeFrontAndBack)
	default:
		return vk.CullModeFlags(vk.CullModeBackBit)
	}
}

func vulkanFrontFace(face metadata.FrontFace) vk.FrontFace {
	if face == metadata.FrontFaceClockwise {
		return vk.FrontFaceClockwise
	}
	return vk.FrontFaceCounterClockwise
}

func vulkanAttributeFormat(t metadata.ShaderAttributeType) vk.Format {
	switch t {
	case metadata.ShaderAttribTypeFloat32_2:
		return vk.FormatR32g32Sfloat
	case metadata.ShaderAttribTypeFloat32_3:
		return vk.FormatR32g32b32Sfloat
	case metadata.ShaderAttribTypeFloat32_4:
		return vk.FormatR32g32b32a32Sfloat
	default:
		return vk.FormatR32Sfloat
	}
}

func vulkanShaderStages(stages metadata.ShaderStage) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlags
	if stages&metadata.ShaderStageVertex != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	}
	if stages&metadata.ShaderStageFragment != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	}
	return flags
}

func vulkanDescriptorType(t metadata.BindingType) vk.DescriptorType {
	switch t {
	case metadata.BindingTypeTexture:
		return vk.DescriptorTypeSampledImage
	case metadata.BindingTypeSampler:
		return vk.DescriptorTypeSampler
	default:
		return vk.DescriptorTypeUniformBuffer
	}
}

func vulkanFilter(f metadata.TextureFilter) vk.Filter {
	if f == metadata.TextureFilterModeLinear {
		return vk.FilterLinear
	}
	return vk.FilterNearest
}

func vulkanMipmapMode(f metadata.TextureFilter) vk.SamplerMipmapMode {
	if f == metadata.TextureFilterModeLinear {
		return vk.SamplerMipmapModeLinear
	}
	return vk.SamplerMipmapModeNearest
}

func vulkanAddressMode(r metadata.TextureRepeat) vk.SamplerAddressMode {
	switch r {
	case metadata.TextureRepeatMirroredRepeat:
		return vk.SamplerAddressModeMirroredRepeat
	case metadata.TextureRepeatClampToEdge:
		return vk.SamplerAddressModeClampToEdge
	case metadata.TextureRepeatClampToBorder:
		return vk.SamplerAddressModeClampToBorder
	default:
		return vk.SamplerAddressModeRepeat
	}
}

// vulkanTextureFormat resolves a texture format, surface meaning whatever the
// swapchain negotiated.
func vulkanTextureFormat(f metadata.TextureFormat, surface vk.Format) vk.Format {
	if f == metadata.TextureFormatBGRA8UnormSrgb {
		return vk.FormatB8g8r8a8Srgb
	}
	return surface
}
