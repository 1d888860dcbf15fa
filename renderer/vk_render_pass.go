package renderer

import (
	"log"

	vk "github.com/goki/vulkan"

	com "hexil/common"
	"hexil/lifecycle"
)

// renderPassDesc collects what goes into a render pass before it is created.
type renderPassDesc struct {
	attachments  []vk.AttachmentDescription
	subpasses    []vk.SubpassDescription
	dependencies []vk.SubpassDependency
}

func (d renderPassDesc) create(device vk.Device) (vk.RenderPass, error) {
	if len(d.subpasses) == 0 {
		return vk.NullRenderPass, lifecycle.Errorf(lifecycle.KindNoSubpassesSpecified, "CreateRenderPass",
			"render pass with %d attachments has no subpasses", len(d.attachments))
	}
	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		PNext:           nil,
		Flags:           0,
		AttachmentCount: uint32(len(d.attachments)),
		PAttachments:    d.attachments,
		SubpassCount:    uint32(len(d.subpasses)),
		PSubpasses:      d.subpasses,
		DependencyCount: uint32(len(d.dependencies)),
		PDependencies:   d.dependencies,
	}
	rp, err := com.VkCreateRenderPass(device, &renderPassInfo, nil)
	if err != nil {
		return vk.NullRenderPass, lifecycle.Wrap(lifecycle.KindExecution, "CreateRenderPass", err)
	}
	return rp, nil
}

// tileRenderPass is a single color attachment cleared on load and handed to presentation at the end.
func tileRenderPass(format vk.Format) renderPassDesc {
	colorAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	colorAttachmentRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		Flags:                0,
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.AttachmentReference{colorAttachmentRef},
	}
	// The image is only available once the acquire semaphore is waited on at color output
	dependency := vk.SubpassDependency{
		SrcSubpass:      vk.SubpassExternal,
		DstSubpass:      0,
		SrcStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask:   0,
		DstAccessMask:   vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
		DependencyFlags: 0,
	}
	return renderPassDesc{
		attachments:  []vk.AttachmentDescription{colorAttachment},
		subpasses:    []vk.SubpassDescription{subpass},
		dependencies: []vk.SubpassDependency{dependency},
	}
}

func (c *Core) CreateRenderPass(id lifecycle.RenderPassID, format lifecycle.Format) error {
	rp, err := tileRenderPass(vk.Format(format)).create(c.device.D)
	if err != nil {
		return err
	}
	c.renderPasses[id] = rp
	log.Printf("Successfully created render pass %d for format %d", id, format)
	return nil
}

func (c *Core) DestroyRenderPass(id lifecycle.RenderPassID) {
	if rp, ok := c.renderPasses[id]; ok {
		vk.DestroyRenderPass(c.device.D, rp, nil)
		delete(c.renderPasses, id)
	}
}

// CreateFramebuffers creates the framebuffers of key together with one primary command buffer per framebuffer.
// Nothing is recorded until RecordDraws.
func (c *Core) CreateFramebuffers(key lifecycle.FramebufferKey) error {
	entry, ok := c.swapchains[key.Swapchain]
	if !ok {
		return lifecycle.Errorf(lifecycle.KindSwapchain, "CreateFramebuffers", "unknown swapchain %d", key.Swapchain)
	}
	rp, ok := c.renderPasses[key.RenderPass]
	if !ok {
		return lifecycle.Errorf(lifecycle.KindExecution, "CreateFramebuffers", "unknown render pass %d", key.RenderPass)
	}
	fbs, err := entry.sc.CreateFrameBuffers(c.device, rp)
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindSwapchain, "CreateFramebuffers", err)
	}
	cmds, err := com.VKSAllocateCommandBuffersPrimary(c.device.D, c.graphicsPool, uint32(len(fbs)))
	if err != nil {
		com.DestroyFrameBuffers(c.device, fbs)
		return lifecycle.Wrap(lifecycle.KindCommandBuffer, "AllocateCommandBuffers", err)
	}
	c.framebuffers[key] = &framebufferSet{
		frameBuffers:   fbs,
		commandBuffers: cmds,
		extent:         entry.sc.Extent,
	}
	log.Printf("Successfully created %d frame buffers for %d/%d", len(fbs), key.RenderPass, key.Swapchain)
	return nil
}

func (c *Core) DestroyFramebuffers(key lifecycle.FramebufferKey) {
	set, ok := c.framebuffers[key]
	if !ok {
		return
	}
	vk.FreeCommandBuffers(c.device.D, c.graphicsPool, uint32(len(set.commandBuffers)), set.commandBuffers)
	com.DestroyFrameBuffers(c.device, set.frameBuffers)
	delete(c.framebuffers, key)
	if c.active[key.Swapchain] == key {
		delete(c.active, key.Swapchain)
	}
}
