package vulkan

// Frames recorded ahead of the GPU.
const MAX_FRAMES_IN_FLIGHT uint32 = 2

/**
 * @brief Max bindings in the single descriptor set of a pipeline.
 */
const VULKAN_SHADER_MAX_BINDINGS uint32 = 8

/**
 * @brief Descriptor sets each per-frame pool can hand out before it is reset.
 */
const VULKAN_MAX_DESCRIPTOR_SETS uint32 = 16

/**
 * @brief Textures waiting for in-flight frames before they can be released.
 */
const VULKAN_MAX_PENDING_RELEASES int = 16
