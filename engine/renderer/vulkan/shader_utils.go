package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
	"github.com/spaghettifunk/epifaneia/engine/renderer/shaders"
)

/**
 * @brief A compiled WGSL source. Both stages live in the same module and are
 * told apart by entry point name.
 */
type VulkanShaderModule struct {
	Handle vk.ShaderModule
	Stages []vk.PipelineShaderStageCreateInfo
}

// NewShaderModule compiles the pipeline source through naga and wraps the
// SPIR-V in a shader module.
func NewShaderModule(context *VulkanContext, config *metadata.PipelineConfig) (*VulkanShaderModule, error) {
	code, err := shaders.Compile(config)
	if err != nil {
		return nil, err
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}

	module := &VulkanShaderModule{}
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &module.Handle); res != vk.Success {
		return nil, &core.ShaderCompilationError{
			Label:  config.Label,
			Reason: "driver rejected SPIR-V",
			Err:    fmt.Errorf("%s", VulkanResultString(res, true)),
		}
	}

	module.Stages = []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: module.Handle,
			PName:  VulkanSafeString(config.VertexEntryPoint),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: module.Handle,
			PName:  VulkanSafeString(config.FragmentEntryPoint),
		},
	}
	core.LogDebug("Shader module '%s' created from %d SPIR-V words.", config.Label, len(code))
	return module, nil
}

// Destroy can run as soon as the pipeline is built.
func (m *VulkanShaderModule) Destroy(context *VulkanContext) {
	if m.Handle != nil {
		vk.DestroyShaderModule(context.Device.LogicalDevice, m.Handle, context.Allocator)
		m.Handle = nil
	}
	m.Stages = nil
}
