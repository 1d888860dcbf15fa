package renderer

import (
	"log"

	vk "github.com/goki/vulkan"

	com "hexil/common"
	"hexil/lifecycle"
	"hexil/model"
)

// loadAtlas uploads every tile mesh into one device local vertex buffer. Which mesh gets drawn is decided by the
// vertex range recorded into the draw commands, so the buffer is never touched again.
func (c *Core) loadAtlas(atlas *model.MeshAtlas) error {
	data := atlas.Bytes()
	size := vk.DeviceSize(len(data))
	if size == 0 {
		return lifecycle.Errorf(lifecycle.KindBufferAllocation, "loadAtlas", "tile mesh atlas is empty")
	}

	stgBuf, err := com.CreateBuffer(
		c.device,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		nil,
	)
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindBufferAllocation, "CreateBuffer", err)
	}
	defer stgBuf.Destroy(c.device)
	if err = stgBuf.Write(c.device, data); err != nil {
		return lifecycle.Wrap(lifecycle.KindBufferAllocation, "MapMemory", err)
	}

	c.vertexBuffer, err = com.CreateBuffer(
		c.device,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit|vk.BufferUsageVertexBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		nil,
	)
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindBufferAllocation, "CreateBuffer", err)
	}
	if err = c.copyBuffer(stgBuf, c.vertexBuffer, size); err != nil {
		return err
	}
	log.Printf("Uploaded tile mesh atlas, %d vertices", size/model.VertexStride)
	return nil
}
