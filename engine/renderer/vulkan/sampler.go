package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
)

type VulkanSampler struct {
	Handle vk.Sampler
}

func samplerCreateInfo(config metadata.SamplerConfig) vk.SamplerCreateInfo {
	return vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vulkanFilter(config.FilterMagnify),
		MinFilter:               vulkanFilter(config.FilterMinify),
		MipmapMode:              vulkanMipmapMode(config.FilterMip),
		AddressModeU:            vulkanAddressMode(config.RepeatU),
		AddressModeV:            vulkanAddressMode(config.RepeatV),
		AddressModeW:            vulkanAddressMode(config.RepeatW),
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1.0,
		BorderColor:             vk.BorderColorFloatOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MinLod:                  0,
		MaxLod:                  0,
	}
}

func SamplerCreate(context *VulkanContext, config metadata.SamplerConfig) (*VulkanSampler, error) {
	info := samplerCreateInfo(config)
	sampler := &VulkanSampler{}
	if res := vk.CreateSampler(context.Device.LogicalDevice, &info, context.Allocator, &sampler.Handle); res != vk.Success {
		return nil, fmt.Errorf("failed to create sampler: %s", VulkanResultString(res, true))
	}
	return sampler, nil
}

func (s *VulkanSampler) Destroy(context *VulkanContext) {
	if s.Handle != nil {
		vk.DestroySampler(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = nil
	}
}

func internalSampler(s *metadata.Sampler) (*VulkanSampler, error) {
	if s == nil {
		return nil, errDeadResource
	}
	vs, ok := s.InternalData.(*VulkanSampler)
	if !ok || vs == nil || vs.Handle == nil {
		return nil, errDeadResource
	}
	return vs, nil
}
