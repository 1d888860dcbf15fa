package common

import (
	"log"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// This Code section contains allocation helper functions. It aims to simplify the allocation of buffers on the
// selected device.

type Buffer struct {
	Handle    vk.Buffer
	DeviceMem vk.DeviceMemory
	Size      vk.DeviceSize
	Usage     vk.BufferUsageFlags
	props     vk.MemoryPropertyFlags
}

// CreateBuffer creates a buffer with its own memory allocation. When families holds more than one distinct queue
// family index the buffer is created with concurrent sharing so no ownership transfers are needed between them.
func CreateBuffer(dev *Device, size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags, families []uint32) (*Buffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		PNext:       nil,
		Flags:       0,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	if uniq := uniqueFamilies(families); len(uniq) > 1 {
		bufferInfo.SharingMode = vk.SharingModeConcurrent
		bufferInfo.QueueFamilyIndexCount = uint32(len(uniq))
		bufferInfo.PQueueFamilyIndices = uniq
	}

	buf, err := VkCreateBuffer(dev.D, &bufferInfo, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create buffer of %d bytes", size)
	}

	bufRequirements := ReadBufferMemoryRequirements(dev.D, buf)
	memType, err := findMemoryType(dev, bufRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(dev.D, buf, nil)
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  bufRequirements.Size,
		MemoryTypeIndex: memType,
	}
	deviceMem, err := VkAllocateMemory(dev.D, &allocInfo, nil)
	if err != nil {
		vk.DestroyBuffer(dev.D, buf, nil)
		return nil, errors.Wrapf(err, "failed to allocate buffer memory (%s)", ToStringMemoryRequirements(bufRequirements))
	}

	// Associate allocated memory with buffer Handle
	err = VkBindBufferMemory(dev.D, buf, deviceMem, 0)
	if err != nil {
		vk.DestroyBuffer(dev.D, buf, nil)
		vk.FreeMemory(dev.D, deviceMem, nil)
		return nil, errors.Wrap(err, "failed to bind device memory to buffer handle")
	}

	return &Buffer{
		Handle:    buf,
		DeviceMem: deviceMem,
		Size:      size,
		Usage:     usage,
		props:     props,
	}, nil
}

// Write maps the buffer memory, copies payload to offset 0 and unmaps it again. This requires the buffer to be
// vk.MemoryPropertyHostVisibleBit and vk.MemoryPropertyHostCoherentBit.
func (b *Buffer) Write(dev *Device, payload []byte) error {
	hostVisCoh := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	if b.props&hostVisCoh != hostVisCoh {
		return errors.New("buffer memory is not host visible and coherent")
	}
	if vk.DeviceSize(len(payload)) > b.Size {
		return errors.Errorf("payload of %d bytes does not fit buffer of %d bytes", len(payload), b.Size)
	}
	if len(payload) == 0 {
		return nil
	}
	pData, err := VkMapMemory(dev.D, b.DeviceMem, 0, b.Size, 0)
	if err != nil {
		return errors.Wrap(err, "failed to map device memory")
	}
	vk.Memcopy(pData, payload)
	vk.UnmapMemory(dev.D, b.DeviceMem)
	return nil
}

func (b *Buffer) Destroy(dev *Device) {
	if b == nil {
		return
	}
	vk.DestroyBuffer(dev.D, b.Handle, nil)
	vk.FreeMemory(dev.D, b.DeviceMem, nil)
}

func findMemoryType(dev *Device, typeFilter uint32, propFlags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < dev.MemoryProps.MemoryTypeCount; i++ {
		ofType := (typeFilter & (1 << i)) > 0
		hasProperties := dev.MemoryProps.MemoryTypes[i].PropertyFlags&propFlags == propFlags
		if ofType && hasProperties {
			log.Printf("Found memory type for buffer -> %d on heap %d", i, dev.MemoryProps.MemoryTypes[i].HeapIndex)
			return i, nil
		}
	}
	return 0, errors.Errorf("no memory type in %032b has properties %032b", typeFilter, propFlags)
}

func uniqueFamilies(families []uint32) []uint32 {
	var uniq []uint32
	for _, f := range families {
		if !inList(f, uniq) {
			uniq = append(uniq, f)
		}
	}
	return uniq
}

func inList(e uint32, l []uint32) bool {
	for i := range l {
		if l[i] == e {
			return true
		}
	}
	return false
}
