package common

import (
	vk "github.com/goki/vulkan"

	"hexil/lifecycle"
)

// QueueFamilies converts the raw queue family properties of a device into what the queue selection works on.
// Graphics capable families always support transfer implicitly, the flag is set for them as well.
func QueueFamilies(props []vk.QueueFamilyProperties) []lifecycle.QueueFamily {
	families := make([]lifecycle.QueueFamily, len(props))
	for i, p := range props {
		graphics := isBitSet(p, vk.QueueGraphicsBit)
		families[i] = lifecycle.QueueFamily{
			Index:    uint32(i),
			Graphics: graphics,
			Transfer: graphics || isBitSet(p, vk.QueueTransferBit) || isBitSet(p, vk.QueueComputeBit),
			Count:    p.QueueCount,
		}
	}
	return families
}

func isBitSet(qFamily vk.QueueFamilyProperties, bit vk.QueueFlagBits) bool {
	return vk.QueueFlagBits(qFamily.QueueFlags)&bit > 0
}

func toQueueCreateInfos(requests []lifecycle.QueueRequest) []vk.DeviceQueueCreateInfo {
	infos := make([]vk.DeviceQueueCreateInfo, len(requests))
	for i, r := range requests {
		priorities := make([]float32, r.Count)
		for p := range priorities {
			priorities[p] = 1.0
		}
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			PNext:            nil,
			Flags:            0,
			QueueFamilyIndex: r.Family,
			QueueCount:       r.Count,
			PQueuePriorities: priorities,
		}
	}
	return infos
}
