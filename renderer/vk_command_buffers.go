package renderer

import (
	vk "github.com/goki/vulkan"

	"hexil/lifecycle"
)

var clearColor = []float32{0.1, 0.1, 0.1, 1}

// RecordDraws re-records every command buffer of spec.Framebuffers. Frames still in flight may be executing them,
// so those are waited on first.
func (c *Core) RecordDraws(spec lifecycle.DrawSpec) error {
	set, ok := c.framebuffers[spec.Framebuffers]
	if !ok {
		return lifecycle.Errorf(lifecycle.KindCommandBuffer, "RecordDraws", "unknown framebuffers %v", spec.Framebuffers)
	}
	pipeline, ok := c.pipelines[spec.Framebuffers.RenderPass]
	if !ok {
		return lifecycle.Errorf(lifecycle.KindCommandBuffer, "RecordDraws", "no pipeline for render pass %d", spec.Framebuffers.RenderPass)
	}
	renderPass := c.renderPasses[spec.Framebuffers.RenderPass]
	if err := c.frames.waitAll(c.device); err != nil {
		return err
	}

	extent := vk.Extent2D{Width: spec.Extent.Width, Height: spec.Extent.Height}
	set.recorded = false
	for i := range set.commandBuffers {
		err := c.recordDrawCommands(set.commandBuffers[i], renderPass, set.frameBuffers[i], pipeline, extent, spec)
		if err != nil {
			return err
		}
	}
	set.recorded = true
	c.active[spec.Framebuffers.Swapchain] = spec.Framebuffers
	return nil
}

func (c *Core) recordDrawCommands(buffer vk.CommandBuffer, renderPass vk.RenderPass, fb vk.Framebuffer, pipeline vk.Pipeline, extent vk.Extent2D, spec lifecycle.DrawSpec) error {
	// Begin recording, the pool resets the buffer implicitly
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            0,
		PInheritanceInfo: nil,
	}
	if res := vk.BeginCommandBuffer(buffer, &beginInfo); res != vk.Success {
		return lifecycle.WrapResult(lifecycle.KindCommandBuffer, "BeginCommandBuffer", int32(res), vk.Error(res))
	}

	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		PNext:       nil,
		RenderPass:  renderPass,
		Framebuffer: fb,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{vk.NewClearValue(clearColor)},
	}
	vk.CmdBeginRenderPass(buffer, &renderPassInfo, vk.SubpassContentsInline)
	vk.CmdBindPipeline(buffer, vk.PipelineBindPointGraphics, pipeline)

	vk.CmdSetViewport(buffer, 0, 1, []vk.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1.0,
	}})
	vk.CmdSetScissor(buffer, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}})

	vk.CmdBindVertexBuffers(buffer, 0, 1, []vk.Buffer{c.vertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindDescriptorSets(buffer, vk.PipelineBindPointGraphics, c.pipelineLayout, 0, 1,
		[]vk.DescriptorSet{c.descriptors.set}, 0, nil)
	if spec.InstanceCount > 0 {
		vk.CmdDraw(buffer, spec.VertexCount, spec.InstanceCount, spec.FirstVertex, 0)
	}

	vk.CmdEndRenderPass(buffer)
	if res := vk.EndCommandBuffer(buffer); res != vk.Success {
		return lifecycle.WrapResult(lifecycle.KindCommandBuffer, "EndCommandBuffer", int32(res), vk.Error(res))
	}
	return nil
}
