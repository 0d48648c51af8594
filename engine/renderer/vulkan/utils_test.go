package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestVulkanResultString(t *testing.T) {
	assert.Equal(t, "VK_ERROR_OUT_OF_DATE_KHR", VulkanResultString(vk.ErrorOutOfDate, false))
	assert.Contains(t, VulkanResultString(vk.ErrorDeviceLost, true), "has been lost")
	assert.Equal(t, "VkResult(-424242)", VulkanResultString(vk.Result(-424242), false))
}

func TestVulkanResultIsSuccess(t *testing.T) {
	assert.True(t, VulkanResultIsSuccess(vk.Success))
	assert.True(t, VulkanResultIsSuccess(vk.Suboptimal))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorOutOfDate))
}

func TestVulkanSafeStrings(t *testing.T) {
	in := []string{"VK_KHR_surface", "already\x00", ""}
	out := VulkanSafeStrings(in)
	assert.Equal(t, []string{"VK_KHR_surface\x00", "already\x00", "\x00"}, out)
	// the input is left untouched
	assert.Equal(t, "VK_KHR_surface", in[0])
}

func TestVulkanFixedString(t *testing.T) {
	var name [16]byte
	copy(name[:], "VK_KHR_swapchain")
	assert.Equal(t, "VK_KHR_swapchain", VulkanFixedString(name[:]))

	var layer [32]byte
	copy(layer[:], "VK_LAYER")
	assert.Equal(t, "VK_LAYER", VulkanFixedString(layer[:]))
}

func TestMissingNames(t *testing.T) {
	available := map[string]struct{}{
		"VK_KHR_swapchain": {},
		"VK_KHR_surface":   {},
	}
	assert.Empty(t, missingNames([]string{"VK_KHR_swapchain"}, available))
	assert.Equal(t,
		[]string{"VK_LAYER_KHRONOS_validation", "VK_EXT_debug_report"},
		missingNames([]string{"VK_KHR_surface", "VK_LAYER_KHRONOS_validation", "VK_EXT_debug_report"}, available))
}
