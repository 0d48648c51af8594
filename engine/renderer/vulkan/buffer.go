package vulkan

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
)

var errDeadResource = errors.New("resource is nil or already destroyed")

/**
 * @brief A host visible buffer, written once at creation.
 */
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   uint64
	Usage  vk.BufferUsageFlagBits
}

func vulkanBufferUsage(t metadata.RenderBufferType) (vk.BufferUsageFlagBits, error) {
	switch t {
	case metadata.RENDERBUFFER_TYPE_VERTEX:
		return vk.BufferUsageVertexBufferBit, nil
	case metadata.RENDERBUFFER_TYPE_UNIFORM:
		return vk.BufferUsageUniformBufferBit, nil
	default:
		return 0, fmt.Errorf("unsupported buffer type %s", t)
	}
}

func BufferCreate(context *VulkanContext, usage vk.BufferUsageFlagBits, data []byte) (*VulkanBuffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot create an empty buffer")
	}
	buffer := &VulkanBuffer{
		Size:  uint64(len(data)),
		Usage: usage,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(len(data)),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &buffer.Handle); res != vk.Success {
		return nil, fmt.Errorf("failed to create buffer: %s", VulkanResultString(res, true))
	}

	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memory, err := context.allocateMemory(memoryRequirements, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	buffer.Memory = memory

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, 0); res != vk.Success {
		buffer.Destroy(context)
		return nil, fmt.Errorf("failed to bind buffer memory: %s", VulkanResultString(res, false))
	}

	if err := buffer.upload(context, data); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}

func (b *VulkanBuffer) upload(context *VulkanContext, data []byte) error {
	var mapped unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, b.Memory, 0, vk.DeviceSize(len(data)), 0, &mapped); res != vk.Success {
		return fmt.Errorf("failed to map buffer memory: %s", VulkanResultString(res, false))
	}
	n := vk.Memcopy(mapped, data)
	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	if n != len(data) {
		return fmt.Errorf("copied %d of %d bytes into buffer", n, len(data))
	}
	return nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	if b.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
		b.Handle = nil
	}
	if b.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, b.Memory, context.Allocator)
		b.Memory = nil
	}
}

func internalBuffer(rb *metadata.RenderBuffer) (*VulkanBuffer, error) {
	if rb == nil {
		return nil, errDeadResource
	}
	b, ok := rb.InternalData.(*VulkanBuffer)
	if !ok || b == nil || b.Handle == nil {
		return nil, fmt.Errorf("buffer %q: %w", rb.Label, errDeadResource)
	}
	return b, nil
}
