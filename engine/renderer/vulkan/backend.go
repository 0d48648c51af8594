package vulkan

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/epifaneia/engine/containers"
	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/renderer"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
const instanceCreateEnumeratePortability vk.InstanceCreateFlags = 0x00000001

var errSurfaceMinimized = errors.New("surface has a zero sized extent")

// WindowSurface is the part of the platform layer the backend needs.
type WindowSurface interface {
	GetRequiredExtensionNames() []string
	CreateWindowSurface(instance interface{}) (uintptr, error)
}

var _ renderer.RendererBackend = (*VulkanRenderer)(nil)

type VulkanRenderer struct {
	platform                WindowSurface
	FrameNumber             uint64
	context                 *VulkanContext
	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	pendingReleases *containers.RingQueue[pendingRelease]
	nextTextureID   uint32
	frameInProgress bool
	initialized     bool
	shutdown        bool

	validation bool
}

func New(p WindowSurface, validation bool) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		context: &VulkanContext{
			Allocator: nil,
		},
		pendingReleases: containers.NewRingQueue[pendingRelease](VULKAN_MAX_PENDING_RELEASES),
		validation:      validation,
	}
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	if vr.shutdown {
		return core.ErrSessionClosed
	}
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("%w: GetInstanceProcAddress is nil", core.ErrNoAdapter)
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return fmt.Errorf("%w: failed to initialize vk: %s", core.ErrNoAdapter, err)
	}

	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	if err := vr.createInstance(appName); err != nil {
		return err
	}

	if vr.validation {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			core.LogWarn("vk.CreateDebugReportCallback failed with %s", err)
		} else {
			vr.context.debugMessenger = dbg
			core.LogDebug("Vulkan debugger created.")
		}
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.CreateWindowSurface(vr.context.Instance)
	if err != nil {
		return fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc
	vr.context.FramebufferWidth = sc.Extent.Width
	vr.context.FramebufferHeight = sc.Extent.Height

	if vr.context.SurfaceRenderpass, err = RenderpassCreate(vr.context, sc.ImageFormat.Format, vk.ImageLayoutPresentSrc); err != nil {
		return err
	}
	offscreenFormat := vulkanTextureFormat(metadata.TextureFormatBGRA8UnormSrgb, sc.ImageFormat.Format)
	if vr.context.OffscreenRenderpass, err = RenderpassCreate(vr.context, offscreenFormat, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		return err
	}

	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}
	if err := vr.createFrameResources(); err != nil {
		return err
	}

	vr.initialized = true
	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance(appName string) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Epifaneia"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := uniqueNames(append([]string{"VK_KHR_surface"}, vr.platform.GetRequiredExtensionNames()...))
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= instanceCreateEnumeratePortability
	}

	var layers []string
	if vr.validation {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		available, err := instanceLayerNames()
		if err != nil {
			return err
		}
		if missing := missingNames([]string{validationLayerName}, available); len(missing) > 0 {
			core.LogWarn("Validation layer %s is missing, continuing without it.", validationLayerName)
			requiredExtensions = requiredExtensions[:len(requiredExtensions)-1]
			vr.validation = false
		} else {
			layers = []string{validationLayerName}
			core.LogInfo("Validation layers enabled.")
		}
	}

	for _, ext := range requiredExtensions {
		core.LogDebug("Required extension: %s", ext)
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		err := fmt.Errorf("%w: failed in creating the Vulkan Instance with error `%s`", core.ErrNoAdapter, VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Vulkan Instance created.")
	return nil
}

func instanceLayerNames() (map[string]struct{}, error) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return nil, fmt.Errorf("failed to enumerate instance layers: %s", VulkanResultString(res, false))
	}
	layers := make([]vk.LayerProperties, count)
	if count > 0 {
		if res := vk.EnumerateInstanceLayerProperties(&count, layers); res != vk.Success {
			return nil, fmt.Errorf("failed to enumerate instance layers: %s", VulkanResultString(res, false))
		}
	}
	names := make(map[string]struct{}, count)
	for i := range layers {
		layers[i].Deref()
		names[VulkanFixedString(layers[i].LayerName[:])] = struct{}{}
	}
	return names, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// createFrameResources builds everything there is one of per frame in flight.
func (vr *VulkanRenderer) createFrameResources() error {
	ctx := vr.context
	ctx.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, MAX_FRAMES_IN_FLIGHT)
	ctx.InFlightFences = make([]*VulkanFence, MAX_FRAMES_IN_FLIGHT)
	ctx.DescriptorPools = make([]*VulkanDescriptorPool, MAX_FRAMES_IN_FLIGHT)

	for i := uint32(0); i < MAX_FRAMES_IN_FLIGHT; i++ {
		cb, err := NewVulkanCommandBuffer(ctx, ctx.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		ctx.GraphicsCommandBuffers[i] = cb

		// Signaled, so the first wait on each slot does not block forever.
		f, err := NewFence(ctx, true)
		if err != nil {
			return err
		}
		ctx.InFlightFences[i] = f

		pool, err := NewDescriptorPool(ctx, VULKAN_MAX_DESCRIPTOR_SETS)
		if err != nil {
			return err
		}
		ctx.DescriptorPools[i] = pool
	}

	pool, err := NewDescriptorPool(ctx, VULKAN_MAX_DESCRIPTOR_SETS)
	if err != nil {
		return err
	}
	ctx.OffscreenDescriptorPool = pool

	if err := vr.createSemaphores(); err != nil {
		return err
	}
	ctx.ImagesInFlight = make([]*VulkanFence, ctx.Swapchain.ImageCount)
	core.LogDebug("Vulkan frame resources created.")
	return nil
}

func (vr *VulkanRenderer) createSemaphores() error {
	ctx := vr.context
	ctx.ImageAvailableSemaphores = make([]vk.Semaphore, MAX_FRAMES_IN_FLIGHT)
	ctx.QueueCompleteSemaphores = make([]vk.Semaphore, MAX_FRAMES_IN_FLIGHT)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	for i := range ctx.ImageAvailableSemaphores {
		if res := vk.CreateSemaphore(ctx.Device.LogicalDevice, &semaphoreCreateInfo, ctx.Allocator, &ctx.ImageAvailableSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create semaphore on image available: %s", VulkanResultString(res, false))
		}
		if res := vk.CreateSemaphore(ctx.Device.LogicalDevice, &semaphoreCreateInfo, ctx.Allocator, &ctx.QueueCompleteSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create semaphore on queue complete: %s", VulkanResultString(res, false))
		}
	}
	return nil
}

func (vr *VulkanRenderer) destroySemaphores() {
	ctx := vr.context
	for _, list := range [][]vk.Semaphore{ctx.ImageAvailableSemaphores, ctx.QueueCompleteSemaphores} {
		for i := range list {
			if list[i] != vk.NullSemaphore {
				vk.DestroySemaphore(ctx.Device.LogicalDevice, list[i], ctx.Allocator)
				list[i] = vk.NullSemaphore
			}
		}
	}
	ctx.ImageAvailableSemaphores = nil
	ctx.QueueCompleteSemaphores = nil
}

func (vr *VulkanRenderer) Shutdown() error {
	if vr.shutdown {
		return core.ErrSessionClosed
	}
	vr.shutdown = true
	ctx := vr.context

	if ctx.Device != nil && ctx.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(ctx.Device.LogicalDevice)

		// Destroy in the opposite order of creation.
		vr.releasePending(true)

		vr.destroySemaphores()
		for i := range ctx.InFlightFences {
			if ctx.InFlightFences[i] != nil {
				ctx.InFlightFences[i].FenceDestroy(ctx)
			}
		}
		ctx.InFlightFences = nil
		ctx.ImagesInFlight = nil

		for i := range ctx.DescriptorPools {
			if ctx.DescriptorPools[i] != nil {
				ctx.DescriptorPools[i].Destroy(ctx)
			}
		}
		ctx.DescriptorPools = nil
		if ctx.OffscreenDescriptorPool != nil {
			ctx.OffscreenDescriptorPool.Destroy(ctx)
			ctx.OffscreenDescriptorPool = nil
		}

		for i := range ctx.GraphicsCommandBuffers {
			if ctx.GraphicsCommandBuffers[i] != nil {
				ctx.GraphicsCommandBuffers[i].Free(ctx, ctx.Device.GraphicsCommandPool)
			}
		}
		ctx.GraphicsCommandBuffers = nil

		if ctx.Swapchain != nil {
			ctx.Swapchain.SwapchainDestroy(ctx)
			ctx.Swapchain = nil
		}
		if ctx.OffscreenRenderpass != nil {
			ctx.OffscreenRenderpass.RenderpassDestroy(ctx)
		}
		if ctx.SurfaceRenderpass != nil {
			ctx.SurfaceRenderpass.RenderpassDestroy(ctx)
		}

		core.LogDebug("Destroying Vulkan device...")
		DeviceDestroy(ctx)
	}

	if ctx.Instance != nil {
		if ctx.Surface != vk.NullSurface {
			core.LogDebug("Destroying Vulkan surface...")
			vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
			ctx.Surface = vk.NullSurface
		}
		if ctx.debugMessenger != vk.NullDebugReportCallback {
			core.LogDebug("Destroying Vulkan debugger...")
			vk.DestroyDebugReportCallback(ctx.Instance, ctx.debugMessenger, ctx.Allocator)
			ctx.debugMessenger = vk.NullDebugReportCallback
		}
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(ctx.Instance, ctx.Allocator)
		ctx.Instance = nil
	}
	return nil
}

func (vr *VulkanRenderer) Resized(width, height uint32) error {
	if vr.shutdown {
		return core.ErrSessionClosed
	}
	// Update the "framebuffer size generation", a counter which indicates when the
	// framebuffer size has been updated.
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++

	core.LogInfo("Vulkan renderer backend->resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
	return nil
}

func (vr *VulkanRenderer) AcquireFrame() (*metadata.Frame, error) {
	if vr.shutdown || !vr.initialized {
		return nil, core.ErrSessionClosed
	}
	if vr.frameInProgress {
		return nil, fmt.Errorf("frame %d was acquired but never presented", vr.FrameNumber)
	}
	ctx := vr.context

	// Check if the framebuffer has been resized. If so, a new swapchain must be created.
	if ctx.FramebufferSizeGeneration != ctx.FramebufferSizeLastGeneration {
		if err := vr.recreateSwapchain(); err != nil {
			if errors.Is(err, errSurfaceMinimized) {
				return nil, core.ErrFrameUnavailable
			}
			return nil, err
		}
		core.LogInfo("Resized, booting.")
		return nil, core.ErrFrameUnavailable
	}

	// Wait for the execution of the current frame to complete. The fence being free will allow this one to move on.
	ok, err := ctx.InFlightFences[ctx.CurrentFrame].FenceWait(ctx, math.MaxUint64)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.ErrFrameUnavailable
	}

	// Everything up to this frame's previous use of the slot is done.
	vr.releasePending(false)
	if err := ctx.DescriptorPools[ctx.CurrentFrame].Reset(ctx); err != nil {
		return nil, err
	}

	imageIndex, result := ctx.Swapchain.SwapchainAcquireNextImageIndex(ctx, math.MaxUint64, ctx.ImageAvailableSemaphores[ctx.CurrentFrame], vk.NullFence)
	switch result {
	case vk.Success:
	case vk.ErrorOutOfDate, vk.Suboptimal:
		// A suboptimal acquire already signaled the semaphore, recreation
		// replaces it along with the swapchain.
		ctx.FramebufferSizeGeneration++
		if err := vr.recreateSwapchain(); err != nil && !errors.Is(err, errSurfaceMinimized) {
			return nil, err
		}
		return nil, core.ErrFrameUnavailable
	default:
		err := fmt.Errorf("failed to acquire swapchain image: %s", VulkanResultString(result, true))
		core.LogError(err.Error())
		return nil, err
	}
	ctx.ImageIndex = imageIndex

	// Begin recording commands.
	cb := ctx.GraphicsCommandBuffers[ctx.CurrentFrame]
	if err := cb.Reset(); err != nil {
		return nil, err
	}
	if err := cb.Begin(false, false, false); err != nil {
		return nil, err
	}
	vr.frameInProgress = true

	return &metadata.Frame{
		FrameNumber:  vr.FrameNumber,
		ImageIndex:   imageIndex,
		Width:        ctx.Swapchain.Extent.Width,
		Height:       ctx.Swapchain.Extent.Height,
		InternalData: cb,
	}, nil
}

func (vr *VulkanRenderer) Submit(cmd *metadata.DrawCommand) error {
	if vr.shutdown || !vr.initialized {
		return core.ErrSessionClosed
	}
	if cmd == nil || cmd.Pipeline == nil {
		return fmt.Errorf("draw command without a pipeline")
	}
	pipeline, ok := cmd.Pipeline.InternalData.(*VulkanPipeline)
	if !ok || pipeline == nil || pipeline.Handle == nil {
		return fmt.Errorf("draw %q: pipeline: %w", cmd.Label, errDeadResource)
	}
	vbuf, err := internalBuffer(cmd.VertexBuffer)
	if err != nil {
		return fmt.Errorf("draw %q: vertex buffer: %w", cmd.Label, err)
	}

	switch {
	case cmd.Target != nil && cmd.Frame != nil:
		return fmt.Errorf("draw %q targets both a texture and a frame", cmd.Label)
	case cmd.Target != nil:
		return vr.submitOffscreen(cmd, pipeline, vbuf)
	case cmd.Frame != nil:
		return vr.submitFrame(cmd, pipeline, vbuf)
	default:
		return fmt.Errorf("draw %q has no target", cmd.Label)
	}
}

// submitOffscreen records the draw into a single use command buffer and waits
// for it, so the texture is complete when this returns.
func (vr *VulkanRenderer) submitOffscreen(cmd *metadata.DrawCommand, pipeline *VulkanPipeline, vbuf *VulkanBuffer) error {
	ctx := vr.context
	texture, err := internalTexture(cmd.Target)
	if err != nil {
		return fmt.Errorf("draw %q: target: %w", cmd.Label, err)
	}
	if pipeline.Renderpass != ctx.OffscreenRenderpass {
		return fmt.Errorf("draw %q: pipeline does not render to textures", cmd.Label)
	}

	pool := ctx.OffscreenDescriptorPool
	defer func() {
		if err := pool.Reset(ctx); err != nil {
			core.LogWarn(err.Error())
		}
	}()
	set, err := vr.writeDescriptorSet(pool, pipeline, cmd)
	if err != nil {
		return err
	}

	cb, err := AllocateAndBeginSingleUse(ctx, ctx.Device.GraphicsCommandPool)
	if err != nil {
		return err
	}
	recordDraw(cb, ctx.OffscreenRenderpass, texture.Framebuffer.Handle, cmd.Target.Width, cmd.Target.Height, cmd, pipeline, set, vbuf)
	return cb.EndSingleUse(ctx, ctx.Device.GraphicsCommandPool, ctx.Device.GraphicsQueue)
}

// submitFrame records into the frame's command buffer, which Present submits.
func (vr *VulkanRenderer) submitFrame(cmd *metadata.DrawCommand, pipeline *VulkanPipeline, vbuf *VulkanBuffer) error {
	ctx := vr.context
	if !vr.frameInProgress || cmd.Frame.FrameNumber != vr.FrameNumber {
		return fmt.Errorf("draw %q: frame %d is not the frame in progress", cmd.Label, cmd.Frame.FrameNumber)
	}
	cb, ok := cmd.Frame.InternalData.(*VulkanCommandBuffer)
	if !ok {
		return fmt.Errorf("draw %q: frame carries no command buffer", cmd.Label)
	}
	if pipeline.Renderpass != ctx.SurfaceRenderpass {
		return fmt.Errorf("draw %q: pipeline does not render to the surface", cmd.Label)
	}

	set, err := vr.writeDescriptorSet(ctx.DescriptorPools[ctx.CurrentFrame], pipeline, cmd)
	if err != nil {
		return err
	}
	fb := ctx.Swapchain.Framebuffers[cmd.Frame.ImageIndex]
	recordDraw(cb, ctx.SurfaceRenderpass, fb.Handle, cmd.Frame.Width, cmd.Frame.Height, cmd, pipeline, set, vbuf)
	return nil
}

func (vr *VulkanRenderer) writeDescriptorSet(pool *VulkanDescriptorPool, pipeline *VulkanPipeline, cmd *metadata.DrawCommand) (vk.DescriptorSet, error) {
	set, err := pool.Allocate(vr.context, pipeline.DescriptorSetLayout)
	if err != nil {
		return nil, err
	}
	writes, err := descriptorWrites(set, pipeline, cmd.Bindings)
	if err != nil {
		return nil, fmt.Errorf("draw %q: %w", cmd.Label, err)
	}
	if len(writes) > 0 {
		vk.UpdateDescriptorSets(vr.context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
	}
	return set, nil
}

func recordDraw(cb *VulkanCommandBuffer, renderpass *VulkanRenderpass, framebuffer vk.Framebuffer, width, height uint32, cmd *metadata.DrawCommand, pipeline *VulkanPipeline, set vk.DescriptorSet, vbuf *VulkanBuffer) {
	renderpass.RenderpassBegin(cb, framebuffer, width, height, cmd.ClearColor)

	// Negative height puts +Y up in clip space.
	viewport := vk.Viewport{
		X:        0.0,
		Y:        float32(height),
		Width:    float32(width),
		Height:   -float32(height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: width, Height: height},
	}
	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{scissor})

	pipeline.Bind(cb, vk.PipelineBindPointGraphics)
	vk.CmdBindDescriptorSets(cb.Handle, vk.PipelineBindPointGraphics, pipeline.PipelineLayout, 0, 1, []vk.DescriptorSet{set}, 0, nil)
	vk.CmdBindVertexBuffers(cb.Handle, 0, 1, []vk.Buffer{vbuf.Handle}, []vk.DeviceSize{0})
	vk.CmdDraw(cb.Handle, cmd.VertexCount, 1, 0, 0)

	renderpass.RenderpassEnd(cb)
}

func (vr *VulkanRenderer) Present(frame *metadata.Frame) error {
	if vr.shutdown || !vr.initialized {
		return core.ErrSessionClosed
	}
	if frame == nil || !vr.frameInProgress || frame.FrameNumber != vr.FrameNumber {
		return fmt.Errorf("present of a frame that is not in progress")
	}
	ctx := vr.context
	cb := ctx.GraphicsCommandBuffers[ctx.CurrentFrame]
	vr.frameInProgress = false

	if err := cb.End(); err != nil {
		return err
	}

	// Make sure the previous frame is not using this image (i.e. its fence is being waited on)
	if f := ctx.ImagesInFlight[frame.ImageIndex]; f != nil {
		if _, err := f.FenceWait(ctx, math.MaxUint64); err != nil {
			return err
		}
	}
	// Mark the image fence as in-use by this frame.
	ctx.ImagesInFlight[frame.ImageIndex] = ctx.InFlightFences[ctx.CurrentFrame]

	// Reset the fence for use on the next frame
	if err := ctx.InFlightFences[ctx.CurrentFrame].FenceReset(ctx); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb.Handle},
		// Signaled when the queue is complete.
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{ctx.QueueCompleteSemaphores[ctx.CurrentFrame]},
		// The operation cannot begin until the image is available.
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{ctx.ImageAvailableSemaphores[ctx.CurrentFrame]},
		// Colour attachment writes wait on the semaphore, one frame is presented at a time.
		PWaitDstStageMask: []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}

	if err := lockPool.SafeQueueCall(uint32(ctx.Device.GraphicsQueueIndex), func() error {
		if result := vk.QueueSubmit(ctx.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, ctx.InFlightFences[ctx.CurrentFrame].Handle); result != vk.Success {
			return fmt.Errorf("vkQueueSubmit failed with result: %s", VulkanResultString(result, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return err
	}
	cb.UpdateSubmitted()

	// Give the image back to the swapchain.
	result := ctx.Swapchain.SwapchainPresent(ctx, ctx.Device.PresentQueue, ctx.QueueCompleteSemaphores[ctx.CurrentFrame], frame.ImageIndex)

	ctx.CurrentFrame = (ctx.CurrentFrame + 1) % MAX_FRAMES_IN_FLIGHT
	vr.FrameNumber++

	switch result {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		// Swapchain is out of date or suboptimal, recreate it on the next acquire.
		ctx.FramebufferSizeGeneration++
		return nil
	default:
		err := fmt.Errorf("failed to present swapchain image: %s", VulkanResultString(result, true))
		core.LogError(err.Error())
		return err
	}
}

func (vr *VulkanRenderer) CreatePipeline(config *metadata.PipelineConfig) (*metadata.Pipeline, error) {
	if vr.shutdown || !vr.initialized {
		return nil, core.ErrSessionClosed
	}
	renderpass := vr.context.SurfaceRenderpass
	if config.Target == metadata.RenderTargetOffscreen {
		renderpass = vr.context.OffscreenRenderpass
		if format := vulkanTextureFormat(config.TargetFormat, vr.context.Swapchain.ImageFormat.Format); format != renderpass.Format {
			return nil, fmt.Errorf("pipeline %q: unsupported offscreen format %s", config.Label, config.TargetFormat)
		}
	}

	module, err := NewShaderModule(vr.context, config)
	if err != nil {
		return nil, err
	}
	defer module.Destroy(vr.context)

	pipeline, err := NewGraphicsPipeline(vr.context, vulkanPipelineConfig(config, renderpass, module.Stages))
	if err != nil {
		return nil, &core.ShaderCompilationError{Label: config.Label, Reason: "pipeline creation failed", Err: err}
	}
	core.LogDebug("Pipeline '%s' created.", config.Label)
	return &metadata.Pipeline{Config: config, InternalData: pipeline}, nil
}

func (vr *VulkanRenderer) DestroyPipeline(pipeline *metadata.Pipeline) {
	if pipeline == nil || vr.shutdown {
		return
	}
	p, ok := pipeline.InternalData.(*VulkanPipeline)
	if !ok || p == nil {
		return
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	if err := p.Destroy(vr.context); err != nil {
		core.LogWarn("failed to destroy pipeline: %s", err)
	}
	pipeline.InternalData = nil
}

func (vr *VulkanRenderer) CreateBuffer(usage metadata.RenderBufferType, data []byte) (*metadata.RenderBuffer, error) {
	if vr.shutdown || !vr.initialized {
		return nil, core.ErrSessionClosed
	}
	vkUsage, err := vulkanBufferUsage(usage)
	if err != nil {
		return nil, err
	}
	buffer, err := BufferCreate(vr.context, vkUsage, data)
	if err != nil {
		return nil, err
	}
	return &metadata.RenderBuffer{
		RenderBufferType: usage,
		TotalSize:        uint64(len(data)),
		InternalData:     buffer,
	}, nil
}

// DestroyBuffer idles the device first, buffers are only released between
// submissions or at teardown.
func (vr *VulkanRenderer) DestroyBuffer(buffer *metadata.RenderBuffer) {
	if buffer == nil || vr.shutdown {
		return
	}
	b, ok := buffer.InternalData.(*VulkanBuffer)
	if !ok || b == nil {
		return
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	b.Destroy(vr.context)
	buffer.InternalData = nil
}

func (vr *VulkanRenderer) CreateTexture(width, height uint32, format metadata.TextureFormat) (*metadata.Texture, error) {
	if vr.shutdown || !vr.initialized {
		return nil, core.ErrSessionClosed
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("texture size %dx%d is empty", width, height)
	}
	if format != metadata.TextureFormatBGRA8UnormSrgb {
		return nil, fmt.Errorf("unsupported texture format %s", format)
	}
	texture, err := TextureCreate(vr.context, vr.context.OffscreenRenderpass, width, height)
	if err != nil {
		return nil, err
	}
	vr.nextTextureID++
	return &metadata.Texture{
		ID:           vr.nextTextureID,
		Width:        width,
		Height:       height,
		Format:       format,
		Name:         fmt.Sprintf("offscreen-%dx%d", width, height),
		InternalData: texture,
	}, nil
}

// DestroyTexture queues the texture until every frame that might sample it
// has completed.
func (vr *VulkanRenderer) DestroyTexture(texture *metadata.Texture) {
	if texture == nil || vr.shutdown {
		return
	}
	t, err := internalTexture(texture)
	if err != nil {
		return
	}
	texture.InternalData = nil

	release := pendingRelease{texture: t, releaseAfter: vr.FrameNumber + uint64(MAX_FRAMES_IN_FLIGHT)}
	if err := vr.pendingReleases.Enqueue(release); err != nil {
		core.LogDebug("Release queue full, idling the device.")
		vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
		vr.releasePending(true)
		t.Destroy(vr.context)
	}
}

func (vr *VulkanRenderer) CreateSampler(config metadata.SamplerConfig) (*metadata.Sampler, error) {
	if vr.shutdown || !vr.initialized {
		return nil, core.ErrSessionClosed
	}
	s, err := SamplerCreate(vr.context, config)
	if err != nil {
		return nil, err
	}
	return &metadata.Sampler{Config: config, InternalData: s}, nil
}

func (vr *VulkanRenderer) DestroySampler(sampler *metadata.Sampler) {
	if sampler == nil || vr.shutdown {
		return
	}
	s, ok := sampler.InternalData.(*VulkanSampler)
	if !ok || s == nil {
		return
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	s.Destroy(vr.context)
	sampler.InternalData = nil
}

func (vr *VulkanRenderer) regenerateFramebuffers() error {
	ctx := vr.context
	sc := ctx.Swapchain
	sc.Framebuffers = make([]*VulkanFramebuffer, sc.ImageCount)
	for i := range sc.Views {
		fb, err := FramebufferCreate(ctx, ctx.SurfaceRenderpass, sc.Extent.Width, sc.Extent.Height, []vk.ImageView{sc.Views[i]})
		if err != nil {
			core.LogError("failed to execute framebuffer create function")
			return err
		}
		sc.Framebuffers[i] = fb
	}
	return nil
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	ctx := vr.context
	// If already being recreated, do not try again.
	if ctx.RecreatingSwapchain {
		core.LogDebug("recreate_swapchain called when already recreating. Booting.")
		return nil
	}

	width, height := vr.cachedFramebufferWidth, vr.cachedFramebufferHeight
	if width == 0 && height == 0 {
		width, height = ctx.FramebufferWidth, ctx.FramebufferHeight
	}
	// Detect if the window is too small to be drawn to
	support, err := DeviceQuerySwapchainSupport(ctx.Device.PhysicalDevice, ctx.Surface)
	if err != nil {
		return err
	}
	if extent := chooseExtent(support.Capabilities, width, height); width == 0 || height == 0 || extent.Width == 0 || extent.Height == 0 {
		core.LogDebug("recreate_swapchain called when window is < 1 in a dimension. Booting.")
		return errSurfaceMinimized
	}

	ctx.RecreatingSwapchain = true
	defer func() { ctx.RecreatingSwapchain = false }()

	// Wait for any operations to complete.
	vk.DeviceWaitIdle(ctx.Device.LogicalDevice)

	sc, err := ctx.Swapchain.SwapchainRecreate(ctx, width, height)
	if err != nil {
		ctx.Swapchain = nil
		return err
	}
	ctx.Swapchain = sc

	// Sync the framebuffer size with the cached sizes.
	ctx.FramebufferWidth = sc.Extent.Width
	ctx.FramebufferHeight = sc.Extent.Height
	vr.cachedFramebufferWidth = 0
	vr.cachedFramebufferHeight = 0

	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}

	// Semaphores may have been left signaled by an abandoned acquire.
	vr.destroySemaphores()
	if err := vr.createSemaphores(); err != nil {
		return err
	}
	ctx.ImagesInFlight = make([]*VulkanFence, sc.ImageCount)

	// Update framebuffer size generation.
	ctx.FramebufferSizeLastGeneration = ctx.FramebufferSizeGeneration
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
