package renderer

import (
	vk "github.com/goki/vulkan"

	com "hexil/common"
	"hexil/lifecycle"
	"hexil/model"
)

// canvasBuffers are the two canvas uniform buffers the tile shader reads, their host visible staging copies and the
// transfer command buffer that moves staging into device memory. The command buffer never changes, so it is
// recorded once.
type canvasBuffers struct {
	stagingSettings *com.Buffer
	stagingIndices  *com.Buffer
	settings        *com.Buffer
	indices         *com.Buffer

	transfer vk.CommandBuffer
	// done is signalled by every transfer submission and waited on by the next draw that reads the canvas.
	done vk.Semaphore
	// fence guards the staging buffers against being rewritten while a copy still reads them.
	fence vk.Fence
}

func newCanvasBuffers(dev *com.Device, pool vk.CommandPool) (*canvasBuffers, error) {
	cb := &canvasBuffers{}
	if err := cb.create(dev, pool); err != nil {
		cb.destroy(dev, pool)
		return nil, err
	}
	return cb, nil
}

func (cb *canvasBuffers) create(dev *com.Device, pool vk.CommandPool) error {
	hostVisCoh := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	src := vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit)
	dst := vk.BufferUsageFlags(vk.BufferUsageTransferDstBit | vk.BufferUsageUniformBufferBit)

	var err error
	// Staging is only ever touched by the transfer queue, device buffers by both
	transferOnly := []uint32{dev.Plan.Transfer}
	if cb.stagingSettings, err = com.CreateBuffer(dev, model.SettingsBufferSize, src, hostVisCoh, transferOnly); err != nil {
		return lifecycle.Wrap(lifecycle.KindBufferAllocation, "CreateBuffer", err)
	}
	if cb.stagingIndices, err = com.CreateBuffer(dev, model.IndicesBufferSize, src, hostVisCoh, transferOnly); err != nil {
		return lifecycle.Wrap(lifecycle.KindBufferAllocation, "CreateBuffer", err)
	}
	if cb.settings, err = com.CreateBuffer(dev, model.SettingsBufferSize, dst, deviceLocal, dev.Families()); err != nil {
		return lifecycle.Wrap(lifecycle.KindBufferAllocation, "CreateBuffer", err)
	}
	if cb.indices, err = com.CreateBuffer(dev, model.IndicesBufferSize, dst, deviceLocal, dev.Families()); err != nil {
		return lifecycle.Wrap(lifecycle.KindBufferAllocation, "CreateBuffer", err)
	}

	if cb.done, err = com.VKSCreateSemaphore(dev.D); err != nil {
		return lifecycle.Wrap(lifecycle.KindExecution, "CreateSemaphore", err)
	}
	if cb.fence, err = com.VKSCreateFence(dev.D, true); err != nil {
		return lifecycle.Wrap(lifecycle.KindExecution, "CreateFence", err)
	}
	return cb.recordTransfer(dev, pool)
}

func (cb *canvasBuffers) recordTransfer(dev *com.Device, pool vk.CommandPool) error {
	cmds, err := com.VKSAllocateCommandBuffersPrimary(dev.D, pool, 1)
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindCommandBuffer, "AllocateCommandBuffers", err)
	}
	cb.transfer = cmds[0]

	// Resubmitted after the fence, never while pending
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: 0,
	}
	if res := vk.BeginCommandBuffer(cb.transfer, &beginInfo); res != vk.Success {
		return lifecycle.WrapResult(lifecycle.KindCommandBuffer, "BeginCommandBuffer", int32(res), vk.Error(res))
	}
	vk.CmdCopyBuffer(cb.transfer, cb.stagingSettings.Handle, cb.settings.Handle, 1, []vk.BufferCopy{{Size: model.SettingsBufferSize}})
	vk.CmdCopyBuffer(cb.transfer, cb.stagingIndices.Handle, cb.indices.Handle, 1, []vk.BufferCopy{{Size: model.IndicesBufferSize}})
	if res := vk.EndCommandBuffer(cb.transfer); res != vk.Success {
		return lifecycle.WrapResult(lifecycle.KindCommandBuffer, "EndCommandBuffer", int32(res), vk.Error(res))
	}
	return nil
}

func (cb *canvasBuffers) destroy(dev *com.Device, pool vk.CommandPool) {
	if cb.transfer != nil {
		vk.FreeCommandBuffers(dev.D, pool, 1, []vk.CommandBuffer{cb.transfer})
		cb.transfer = nil
	}
	if cb.done != vk.NullSemaphore {
		vk.DestroySemaphore(dev.D, cb.done, nil)
	}
	if cb.fence != vk.NullFence {
		vk.DestroyFence(dev.D, cb.fence, nil)
	}
	cb.stagingSettings.Destroy(dev)
	cb.stagingIndices.Destroy(dev)
	cb.settings.Destroy(dev)
	cb.indices.Destroy(dev)
}

// SubmitTransfer stages the snapshot and submits the canvas copy on the transfer queue. Staging memory is only
// written once the previous copy finished, the device buffers only once no frame reads them anymore.
func (c *Core) SubmitTransfer(spec lifecycle.TransferSpec) error {
	cb := c.canvas
	if len(spec.Settings) > model.SettingsBufferSize || len(spec.Indices) > model.IndicesBufferSize {
		return lifecycle.Errorf(lifecycle.KindCanvasTooLarge, "SubmitTransfer",
			"snapshot of %d+%d bytes exceeds canvas buffers", len(spec.Settings), len(spec.Indices))
	}
	if err := waitFence(c.device, cb.fence, "WaitForFences"); err != nil {
		return err
	}
	if err := c.frames.waitAll(c.device); err != nil {
		return err
	}
	if err := cb.stagingSettings.Write(c.device, spec.Settings); err != nil {
		return lifecycle.Wrap(lifecycle.KindBufferAllocation, "MapMemory", err)
	}
	if err := cb.stagingIndices.Write(c.device, spec.Indices); err != nil {
		return lifecycle.Wrap(lifecycle.KindBufferAllocation, "MapMemory", err)
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		PNext:                nil,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.transfer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{cb.done},
	}
	// A signalled semaphore can not be signalled again before someone waits on it
	if spec.Chain {
		submitInfo.WaitSemaphoreCount = 1
		submitInfo.PWaitSemaphores = []vk.Semaphore{cb.done}
		submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageTransferBit)}
	}

	vk.ResetFences(c.device.D, 1, []vk.Fence{cb.fence})
	result := vk.QueueSubmit(c.device.TransferQ, 1, []vk.SubmitInfo{submitInfo}, cb.fence)
	if result != vk.Success {
		return lifecycle.WrapResult(lifecycle.KindExecution, "QueueSubmit", int32(result), vk.Error(result))
	}
	return nil
}
