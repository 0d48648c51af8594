package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
)

/**
 * @brief An offscreen colour target that can later be sampled.
 */
type VulkanTexture struct {
	Image       *VulkanImage
	Framebuffer *VulkanFramebuffer
	Format      vk.Format
}

// pendingRelease is a texture waiting for the frames that may still read it.
type pendingRelease struct {
	texture *VulkanTexture
	// Released once this many frames have been presented.
	releaseAfter uint64
}

func TextureCreate(context *VulkanContext, renderpass *VulkanRenderpass, width, height uint32) (*VulkanTexture, error) {
	usage := vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit) | vk.ImageUsageFlags(vk.ImageUsageSampledBit)
	image, err := ImageCreate(context, width, height, renderpass.Format, usage)
	if err != nil {
		return nil, err
	}
	fb, err := FramebufferCreate(context, renderpass, width, height, []vk.ImageView{image.View})
	if err != nil {
		image.ImageDestroy(context)
		return nil, err
	}
	return &VulkanTexture{
		Image:       image,
		Framebuffer: fb,
		Format:      renderpass.Format,
	}, nil
}

func (t *VulkanTexture) Destroy(context *VulkanContext) {
	if t.Framebuffer != nil {
		t.Framebuffer.Destroy(context)
		t.Framebuffer = nil
	}
	if t.Image != nil {
		t.Image.ImageDestroy(context)
		t.Image = nil
	}
}

func internalTexture(t *metadata.Texture) (*VulkanTexture, error) {
	if t == nil {
		return nil, errDeadResource
	}
	vt, ok := t.InternalData.(*VulkanTexture)
	if !ok || vt == nil || vt.Image == nil {
		return nil, fmt.Errorf("texture %q: %w", t.Name, errDeadResource)
	}
	return vt, nil
}

// releasePending destroys queued textures whose frames have completed. With
// force every queued texture goes, the caller must have idled the device.
func (vr *VulkanRenderer) releasePending(force bool) {
	for !vr.pendingReleases.IsEmpty() {
		next, _ := vr.pendingReleases.Peek()
		if !force && vr.FrameNumber < next.releaseAfter {
			return
		}
		_, _ = vr.pendingReleases.Dequeue()
		next.texture.Destroy(vr.context)
		core.LogDebug("Released offscreen texture at frame %d.", vr.FrameNumber)
	}
}
