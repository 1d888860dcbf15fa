package renderer

import (
	"log"
	"math"

	vk "github.com/goki/vulkan"

	com "hexil/common"
	"hexil/lifecycle"
)

// CreateSwapchain creates the swapchain of req.Epoch, handing the parent over as the old swapchain. The parent is
// retired whether or not creation succeeds.
func (c *Core) CreateSwapchain(req lifecycle.SwapchainRequest) (uint32, error) {
	var parent *swapchainEntry
	old := vk.NullSwapchain
	if req.Parent != 0 {
		parent = c.swapchains[req.Parent]
		if parent != nil {
			old = parent.sc.Handle
		}
	}

	sc, err := com.NewSwapChain(c.device, com.SwapChainConfig{
		Surface: c.win.Surf,
		Format: vk.SurfaceFormat{
			Format:     vk.Format(req.Format.Format),
			ColorSpace: vk.ColorSpace(req.Format.ColorSpace),
		},
		PresentMode:   vk.PresentMode(req.PresentMode),
		Extent:        vk.Extent2D{Width: req.Extent.Width, Height: req.Extent.Height},
		MinImageCount: req.MinImageCount,
		PreTransform:  c.preTransform,
		Old:           old,
	})
	if parent != nil {
		c.DestroySwapchain(req.Parent)
	}
	if err != nil {
		return 0, lifecycle.Wrap(lifecycle.KindSwapchain, "CreateSwapchain", err)
	}

	entry := &swapchainEntry{
		sc:             sc,
		renderFinished: make([]vk.Semaphore, 0, len(sc.Images)),
		imagesInFlight: make([]vk.Fence, len(sc.Images)),
	}
	c.swapchains[req.Epoch] = entry
	for range sc.Images {
		sem, err := com.VKSCreateSemaphore(c.device.D)
		if err != nil {
			c.DestroySwapchain(req.Epoch)
			return 0, lifecycle.Wrap(lifecycle.KindSwapchain, "CreateSemaphore", err)
		}
		entry.renderFinished = append(entry.renderFinished, sem)
	}
	log.Printf("Swapchain %d: %d images, %v, present mode %v", req.Epoch, len(sc.Images), req.Extent, req.PresentMode)
	return uint32(len(sc.Images)), nil
}

func (c *Core) DestroySwapchain(epoch lifecycle.Epoch) {
	entry, ok := c.swapchains[epoch]
	if !ok {
		return
	}
	for _, s := range entry.renderFinished {
		vk.DestroySemaphore(c.device.D, s, nil)
	}
	entry.sc.Destroy(c.device)
	delete(c.swapchains, epoch)
	delete(c.active, epoch)
}

// AcquireImage waits for the current frame slot to be free and acquires the next image with its semaphore. A
// suboptimal acquire still hands out a usable image, only out of date is reported.
func (c *Core) AcquireImage(epoch lifecycle.Epoch) (uint32, error) {
	entry, ok := c.swapchains[epoch]
	if !ok {
		return 0, lifecycle.Errorf(lifecycle.KindSwapchain, "AcquireNextImage", "unknown swapchain %d", epoch)
	}
	frame := c.frames.current
	if err := waitFence(c.device, c.frames.inFlight[frame], "WaitForFences"); err != nil {
		return 0, err
	}

	var imgIdx uint32
	result := vk.AcquireNextImage(c.device.D, entry.sc.Handle, math.MaxUint64, c.frames.imageAvailable[frame], vk.NullFence, &imgIdx)
	switch result {
	case vk.Success, vk.Suboptimal:
	case vk.ErrorOutOfDate:
		return 0, lifecycle.WrapResult(lifecycle.KindOutOfDate, "AcquireNextImage", int32(result), vk.Error(result))
	default:
		return 0, lifecycle.WrapResult(lifecycle.KindSwapchain, "AcquireNextImage", int32(result), vk.Error(result))
	}
	c.frames.acquired = frame
	return imgIdx, nil
}

// SubmitDraw submits the recorded draw of the acquired image. It waits on the image's acquire semaphore before
// color output and, if asked to, on the canvas transfer before the vertex stage reads the canvas buffers.
func (c *Core) SubmitDraw(spec lifecycle.SubmitSpec) error {
	entry, ok := c.swapchains[spec.Swapchain]
	if !ok {
		return lifecycle.Errorf(lifecycle.KindExecution, "QueueSubmit", "unknown swapchain %d", spec.Swapchain)
	}
	key, ok := c.active[spec.Swapchain]
	if !ok {
		return lifecycle.Errorf(lifecycle.KindCommandBuffer, "QueueSubmit", "nothing recorded for swapchain %d", spec.Swapchain)
	}
	set := c.framebuffers[key]
	if set == nil || !set.recorded || int(spec.Image) >= len(set.commandBuffers) {
		return lifecycle.Errorf(lifecycle.KindCommandBuffer, "QueueSubmit", "no draw recorded for image %d of %v", spec.Image, key)
	}

	frame := c.frames.acquired
	// An earlier frame may still be rendering into this image
	if prev := entry.imagesInFlight[spec.Image]; prev != vk.NullFence {
		if err := waitFence(c.device, prev, "WaitForFences"); err != nil {
			return err
		}
	}
	entry.imagesInFlight[spec.Image] = c.frames.inFlight[frame]

	waits := []vk.Semaphore{c.frames.imageAvailable[frame]}
	stages := []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}
	if spec.WaitTransfer {
		waits = append(waits, c.canvas.done)
		stages = append(stages, vk.PipelineStageFlags(vk.PipelineStageVertexInputBit|vk.PipelineStageVertexShaderBit))
	}
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		PNext:                nil,
		WaitSemaphoreCount:   uint32(len(waits)),
		PWaitSemaphores:      waits,
		PWaitDstStageMask:    stages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{set.commandBuffers[spec.Image]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{entry.renderFinished[spec.Image]},
	}

	// Reset the fence only if we are actually going to execute work that will put the fence into the signalled state
	vk.ResetFences(c.device.D, 1, []vk.Fence{c.frames.inFlight[frame]})
	result := vk.QueueSubmit(c.device.GraphicsQ, 1, []vk.SubmitInfo{submitInfo}, c.frames.inFlight[frame])
	if result != vk.Success {
		return lifecycle.WrapResult(lifecycle.KindExecution, "QueueSubmit", int32(result), vk.Error(result))
	}
	return nil
}

// Present queues the image for presentation. Out of date and suboptimal are both reported as KindOutOfDate so the
// swapchain gets rebuilt.
func (c *Core) Present(epoch lifecycle.Epoch, image uint32) error {
	entry, ok := c.swapchains[epoch]
	if !ok {
		return lifecycle.Errorf(lifecycle.KindSwapchain, "QueuePresent", "unknown swapchain %d", epoch)
	}
	// the frame slot is used up whatever the outcome
	defer c.frames.advance()

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{entry.renderFinished[image]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{entry.sc.Handle},
		PImageIndices:      []uint32{image},
		PResults:           nil,
	}
	result := vk.QueuePresent(c.device.GraphicsQ, &presentInfo)
	switch result {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return lifecycle.WrapResult(lifecycle.KindOutOfDate, "QueuePresent", int32(result), nil)
	default:
		return lifecycle.WrapResult(lifecycle.KindSwapchain, "QueuePresent", int32(result), vk.Error(result))
	}
}
