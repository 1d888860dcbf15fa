package renderer

import (
	vk "github.com/goki/vulkan"

	com "hexil/common"
	"hexil/lifecycle"
)

// queueFamiliesFor converts the queue families of pd. The graphics queue also presents, so a graphics family that
// cannot present to surf is only offered for the transfer role. presentable reports whether any family can
// present at all.
func queueFamiliesFor(pd vk.PhysicalDevice, surf vk.Surface, props []vk.QueueFamilyProperties) (families []lifecycle.QueueFamily, presentable bool) {
	families = com.QueueFamilies(props)
	for i := range families {
		canPresent := com.ReadSurfaceQueueSupport(pd, families[i].Index, surf)
		if canPresent {
			presentable = true
		}
		if families[i].Graphics && !canPresent {
			families[i].Graphics = false
		}
	}
	return families, presentable
}
