// Package renderer is the Vulkan implementation of lifecycle.Backend. It owns every Vulkan object below the
// window: the logical device, command pools, synchronization, the tile vertex buffer, the canvas uniform buffers
// and whatever swapchains, render passes, framebuffers and pipelines the lifecycle asks for.
package renderer

import (
	"log"

	vk "github.com/goki/vulkan"

	com "hexil/common"
	"hexil/lifecycle"
	"hexil/model"
)

const MAX_FRAMES_IN_FLIGHT = 3

type Options struct {
	VertexShader   string
	FragmentShader string
	Validation     bool
	// Atlas defaults to model.NewMeshAtlas(). The frame loop has to draw from the same atlas.
	Atlas *model.MeshAtlas
}

// swapchainEntry is one swapchain generation plus the per image synchronization that lives as long as it does.
type swapchainEntry struct {
	sc             *com.SwapChain
	renderFinished []vk.Semaphore
	imagesInFlight []vk.Fence
}

// framebufferSet is the framebuffers of one (render pass, swapchain) pairing and the draw command buffer recorded
// for each of them.
type framebufferSet struct {
	frameBuffers   []vk.Framebuffer
	commandBuffers []vk.CommandBuffer
	extent         vk.Extent2D
	recorded       bool
}

type Core struct {
	// OS/Window level
	win       *com.Window
	device    *com.Device
	selection lifecycle.DeviceSelection
	opts      Options

	// Drawing infrastructure level
	graphicsPool   vk.CommandPool
	transferPool   vk.CommandPool
	descriptors    *DescriptorProvisioner
	pipelineLayout vk.PipelineLayout
	vertShader     vk.ShaderModule
	fragShader     vk.ShaderModule
	preTransform   vk.SurfaceTransformFlagBits

	// Data level
	vertexBuffer *com.Buffer
	canvas       *canvasBuffers

	// Target level, keyed by the ids the lifecycle hands out
	swapchains   map[lifecycle.Epoch]*swapchainEntry
	renderPasses map[lifecycle.RenderPassID]vk.RenderPass
	framebuffers map[lifecycle.FramebufferKey]*framebufferSet
	pipelines    map[lifecycle.RenderPassID]vk.Pipeline
	// active is the framebuffer set last recorded for each swapchain, it is what SubmitDraw submits.
	active map[lifecycle.Epoch]lifecycle.FramebufferKey

	// Frame level
	frames frameSync
}

// NewCore picks the physical device for the window's surface and creates everything that lives as long as the
// device does. The returned selection is what the frame loop needs to configure swapchains.
func NewCore(win *com.Window, opts Options) (*Core, lifecycle.DeviceSelection, error) {
	if opts.Atlas == nil {
		opts.Atlas = model.NewMeshAtlas()
	}
	c := &Core{
		win:          win,
		opts:         opts,
		swapchains:   map[lifecycle.Epoch]*swapchainEntry{},
		renderPasses: map[lifecycle.RenderPassID]vk.RenderPass{},
		framebuffers: map[lifecycle.FramebufferKey]*framebufferSet{},
		pipelines:    map[lifecycle.RenderPassID]vk.Pipeline{},
		active:       map[lifecycle.Epoch]lifecycle.FramebufferKey{},
	}

	if err := c.initialize(); err != nil {
		c.Destroy()
		return nil, lifecycle.DeviceSelection{}, err
	}
	return c, c.selection, nil
}

func (c *Core) initialize() error {
	var err error
	if err = c.createDevice(); err != nil {
		return err
	}
	if err = c.createCommandPools(); err != nil {
		return err
	}
	if err = c.frames.create(c.device); err != nil {
		return err
	}
	if err = c.loadShaders(); err != nil {
		return err
	}
	if c.canvas, err = newCanvasBuffers(c.device, c.transferPool); err != nil {
		return err
	}
	if err = c.loadAtlas(c.opts.Atlas); err != nil {
		return err
	}
	if c.descriptors, err = NewDescriptorProvisioner(c.device.D, c.canvas.settings.Handle, c.canvas.indices.Handle); err != nil {
		return err
	}
	return c.createPipelineLayout()
}

func (c *Core) createCommandPools() error {
	var err error
	flags := vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit)
	c.graphicsPool, err = com.VKSCreateCommandPool(c.device.D, flags, c.device.Plan.Graphics)
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindCommandBuffer, "CreateCommandPool", err)
	}
	c.transferPool, err = com.VKSCreateCommandPool(c.device.D, flags, c.device.Plan.Transfer)
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindCommandBuffer, "CreateCommandPool", err)
	}
	return nil
}

// SurfaceCapabilities reads the surface state fresh every time, the window may have changed in between.
func (c *Core) SurfaceCapabilities() (lifecycle.SurfaceCapabilities, error) {
	s, err := com.ReadSurfaceSupport(c.device.PhysicalDevice, c.win.Surf)
	if err != nil {
		return lifecycle.SurfaceCapabilities{}, lifecycle.Wrap(lifecycle.KindSurface, "GetPhysicalDeviceSurfaceCapabilities", err)
	}
	c.preTransform = s.Capabilities.CurrentTransform
	return toSurfaceCapabilities(s), nil
}

func (c *Core) WaitIdle() error {
	if err := c.device.WaitIdle(); err != nil {
		return lifecycle.Wrap(lifecycle.KindExecution, "DeviceWaitIdle", err)
	}
	return nil
}

// Destroy releases everything the core created, including leftovers the lifecycle did not release. The window is
// not destroyed, it belongs to the caller.
func (c *Core) Destroy() {
	if c.device == nil {
		return
	}
	// We need to wait for the last asynchronous call to finish before tear down
	if err := c.device.WaitIdle(); err != nil {
		log.Printf("WARN DeviceWaitIdle before destroy failed: %v", err)
	}

	for key := range c.framebuffers {
		log.Printf("WARN Leftover framebuffers %v in render core", key)
		c.DestroyFramebuffers(key)
	}
	for id := range c.pipelines {
		c.DestroyPipeline(id)
	}
	for id := range c.renderPasses {
		c.DestroyRenderPass(id)
	}
	for epoch := range c.swapchains {
		c.DestroySwapchain(epoch)
	}

	if c.descriptors != nil {
		c.descriptors.Destroy()
	}
	if c.pipelineLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(c.device.D, c.pipelineLayout, nil)
	}
	if c.vertShader != vk.NullShaderModule {
		DeleteShaderMod(c.device.D, c.vertShader)
	}
	if c.fragShader != vk.NullShaderModule {
		DeleteShaderMod(c.device.D, c.fragShader)
	}
	c.vertexBuffer.Destroy(c.device)
	if c.canvas != nil {
		c.canvas.destroy(c.device, c.transferPool)
	}
	c.frames.destroy(c.device)
	if c.graphicsPool != vk.NullCommandPool {
		vk.DestroyCommandPool(c.device.D, c.graphicsPool, nil)
	}
	if c.transferPool != vk.NullCommandPool {
		vk.DestroyCommandPool(c.device.D, c.transferPool, nil)
	}
	c.device.Destroy()
	c.device = nil
	log.Printf("Destroyed render core")
}

func toSurfaceCapabilities(s com.SurfaceSupport) lifecycle.SurfaceCapabilities {
	caps := lifecycle.SurfaceCapabilities{
		CurrentExtent: lifecycle.Extent{Width: s.Capabilities.CurrentExtent.Width, Height: s.Capabilities.CurrentExtent.Height},
		MinExtent:     lifecycle.Extent{Width: s.Capabilities.MinImageExtent.Width, Height: s.Capabilities.MinImageExtent.Height},
		MaxExtent:     lifecycle.Extent{Width: s.Capabilities.MaxImageExtent.Width, Height: s.Capabilities.MaxImageExtent.Height},
		MinImageCount: s.Capabilities.MinImageCount,
		MaxImageCount: s.Capabilities.MaxImageCount,
		Formats:       toSurfaceFormats(s.Formats),
		PresentModes:  toPresentModes(s.PresentModes),
	}
	return caps
}

func toSurfaceFormats(formats []vk.SurfaceFormat) []lifecycle.SurfaceFormat {
	out := make([]lifecycle.SurfaceFormat, len(formats))
	for i, f := range formats {
		out[i] = lifecycle.SurfaceFormat{
			Format:     lifecycle.Format(f.Format),
			ColorSpace: lifecycle.ColorSpace(f.ColorSpace),
		}
	}
	return out
}

func toPresentModes(modes []vk.PresentMode) []lifecycle.PresentMode {
	out := make([]lifecycle.PresentMode, len(modes))
	for i, m := range modes {
		out[i] = lifecycle.PresentMode(m)
	}
	return out
}
