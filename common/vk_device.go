package common

import (
	"log"

	vk "github.com/goki/vulkan"

	"hexil/lifecycle"
)

var VALIDATION_LAYERS = []string{
	"VK_LAYER_KHRONOS_validation",
}

// Device holds the logical device together with the physical device facts the backend keeps needing and the two
// queues the renderer submits to. GraphicsQ also presents.
type Device struct {
	PhysicalDevice vk.PhysicalDevice
	Props          vk.PhysicalDeviceProperties
	MemoryProps    vk.PhysicalDeviceMemoryProperties
	Plan           lifecycle.QueuePlan

	D         vk.Device
	GraphicsQ vk.Queue
	TransferQ vk.Queue
}

// NewDevice creates the logical device on pd with the queues of plan and the given device extensions.
func NewDevice(pd vk.PhysicalDevice, plan lifecycle.QueuePlan, extensions []string, validation bool) (*Device, error) {
	dev := &Device{
		PhysicalDevice: pd,
		Props:          ReadPhysicalDeviceProperties(pd),
		MemoryProps:    ReadDeviceMemoryProperties(pd),
		Plan:           plan,
	}

	queueInfos := toQueueCreateInfos(plan.Requests())
	deviceCreateInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       0,
		PpEnabledLayerNames:     nil,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: TerminatedStrs(extensions),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}
	if validation {
		deviceCreateInfo.EnabledLayerCount = uint32(len(VALIDATION_LAYERS))
		deviceCreateInfo.PpEnabledLayerNames = TerminatedStrs(VALIDATION_LAYERS)
	}

	var err error
	dev.D, err = VkCreateDevice(pd, deviceCreateInfo, nil)
	if err != nil {
		return nil, lifecycle.Wrap(lifecycle.KindDevice, "CreateDevice", err)
	}
	log.Printf("Created logical device with extensions %v", extensions)

	dev.GraphicsQ = VkGetDeviceQueue(dev.D, plan.Graphics, 0)
	if plan.Shared {
		dev.TransferQ = VkGetDeviceQueue(dev.D, plan.Transfer, plan.TransferQueue)
	} else {
		dev.TransferQ = VkGetDeviceQueue(dev.D, plan.Transfer, 0)
	}
	return dev, nil
}

// Families lists the queue families the device's buffers are shared between.
func (dev *Device) Families() []uint32 {
	return []uint32{dev.Plan.Graphics, dev.Plan.Transfer}
}

func (dev *Device) WaitIdle() error {
	return vk.Error(vk.DeviceWaitIdle(dev.D))
}

// Destroy destroys the logical device. Everything created from it has to be gone already.
func (dev *Device) Destroy() {
	vk.DestroyDevice(dev.D, nil)
}
