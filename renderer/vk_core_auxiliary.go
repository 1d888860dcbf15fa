package renderer

import (
	vk "github.com/goki/vulkan"

	com "hexil/common"
	"hexil/lifecycle"
)

// These auxiliary functions are tied to a Core and its graphics pool. They differ from the VKS functions in
// vk_simplifications.go by reporting lifecycle errors and by picking the pool and queue themselves.

func (c *Core) beginSingleTimeCommands() (vk.CommandBuffer, error) {
	cmdBuffer, err := com.VKSBeginSingleTimeCommands(c.device.D, c.graphicsPool)
	if err != nil {
		return nil, lifecycle.Wrap(lifecycle.KindCommandBuffer, "BeginCommandBuffer", err)
	}
	return cmdBuffer, nil
}

func (c *Core) endSingleTimeCommands(cmdBuf vk.CommandBuffer) error {
	err := com.VKSEndSingleTimeCommands(c.device.D, c.graphicsPool, c.device.GraphicsQ, cmdBuf)
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindExecution, "QueueSubmit", err)
	}
	return nil
}

// copyBuffer records a single copy of s bytes from src to dst, submits it on the graphics queue and waits for it.
// Only meant for uploads during initialization.
func (c *Core) copyBuffer(src *com.Buffer, dst *com.Buffer, s vk.DeviceSize) error {
	cmdBuf, err := c.beginSingleTimeCommands()
	if err != nil {
		return err
	}
	copyRegions := []vk.BufferCopy{
		{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      s,
		},
	}
	vk.CmdCopyBuffer(cmdBuf, src.Handle, dst.Handle, 1, copyRegions)
	return c.endSingleTimeCommands(cmdBuf)
}
