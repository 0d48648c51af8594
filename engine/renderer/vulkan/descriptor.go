package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
)

/**
 * @brief A descriptor pool whose sets live for one frame or one offscreen
 * submission and are released together by Reset.
 */
type VulkanDescriptorPool struct {
	Handle vk.DescriptorPool
	// Sets handed out since the last reset.
	Allocated uint32
	MaxSets   uint32
}

func NewDescriptorPool(context *VulkanContext, maxSets uint32) (*VulkanDescriptorPool, error) {
	poolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: maxSets * VULKAN_SHADER_MAX_BINDINGS},
		{Type: vk.DescriptorTypeSampledImage, DescriptorCount: maxSets},
		{Type: vk.DescriptorTypeSampler, DescriptorCount: maxSets},
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}

	pool := &VulkanDescriptorPool{MaxSets: maxSets}
	err := lockPool.SafeCall(DescriptorManagement, func() error {
		if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &pool.Handle); res != vk.Success {
			return fmt.Errorf("failed to create descriptor pool: %s", VulkanResultString(res, true))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func (p *VulkanDescriptorPool) Destroy(context *VulkanContext) {
	if p.Handle != nil {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, p.Handle, context.Allocator)
		p.Handle = nil
	}
}

// Reset returns every set to the pool. The GPU must be done with them.
func (p *VulkanDescriptorPool) Reset(context *VulkanContext) error {
	if p.Allocated == 0 {
		return nil
	}
	return lockPool.SafeCall(DescriptorManagement, func() error {
		if res := vk.ResetDescriptorPool(context.Device.LogicalDevice, p.Handle, 0); res != vk.Success {
			return fmt.Errorf("failed to reset descriptor pool: %s", VulkanResultString(res, false))
		}
		p.Allocated = 0
		return nil
	})
}

func (p *VulkanDescriptorPool) Allocate(context *VulkanContext, layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	if p.Allocated >= p.MaxSets {
		return nil, fmt.Errorf("descriptor pool exhausted after %d sets", p.Allocated)
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.Handle,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}
	var set vk.DescriptorSet
	err := lockPool.SafeCall(DescriptorManagement, func() error {
		if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocInfo, &set); res != vk.Success {
			return fmt.Errorf("failed to allocate descriptor set: %s", VulkanResultString(res, false))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.Allocated++
	return set, nil
}

// descriptorWrites builds one write per binding, checking each resource
// against the slot type declared by the pipeline.
func descriptorWrites(set vk.DescriptorSet, pipeline *VulkanPipeline, bindings []metadata.Binding) ([]vk.WriteDescriptorSet, error) {
	writes := make([]vk.WriteDescriptorSet, 0, len(bindings))
	for _, b := range bindings {
		declared, ok := pipeline.bindingType(b.Slot)
		if !ok {
			return nil, fmt.Errorf("slot %d is not declared by the pipeline", b.Slot)
		}
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      b.Slot,
			DescriptorCount: 1,
			DescriptorType:  vulkanDescriptorType(declared),
		}
		switch declared {
		case metadata.BindingTypeUniformBuffer:
			buffer, err := internalBuffer(b.Buffer)
			if err != nil {
				return nil, fmt.Errorf("slot %d: %w", b.Slot, err)
			}
			write.PBufferInfo = []vk.DescriptorBufferInfo{{
				Buffer: buffer.Handle,
				Offset: 0,
				Range:  vk.DeviceSize(buffer.Size),
			}}
		case metadata.BindingTypeTexture:
			texture, err := internalTexture(b.Texture)
			if err != nil {
				return nil, fmt.Errorf("slot %d: %w", b.Slot, err)
			}
			write.PImageInfo = []vk.DescriptorImageInfo{{
				ImageView:   texture.Image.View,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}}
		case metadata.BindingTypeSampler:
			sampler, err := internalSampler(b.Sampler)
			if err != nil {
				return nil, fmt.Errorf("slot %d: %w", b.Slot, err)
			}
			write.PImageInfo = []vk.DescriptorImageInfo{{
				Sampler: sampler.Handle,
			}}
		}
		writes = append(writes, write)
	}
	return writes, nil
}
