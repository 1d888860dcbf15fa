package renderer

import (
	"log"

	vk "github.com/goki/vulkan"

	com "hexil/common"
	"hexil/lifecycle"
	"hexil/model"
)

// Provides validation functions to ensure the selected device can hold what the renderer puts on it.

// checkUniformBufferRange makes sure the canvas index block fits a single uniform buffer binding.
func checkUniformBufferRange(pd vk.PhysicalDevice) error {
	props := com.ReadPhysicalDeviceProperties(pd)
	maxRange := props.Limits.MaxUniformBufferRange
	if uint64(maxRange) < model.IndicesBufferSize {
		log.Printf("ERROR maxUniformBufferRange %d is below the %d bytes the canvas indices need", maxRange, model.IndicesBufferSize)
		return lifecycle.Errorf(lifecycle.KindBufferAllocation, "checkUniformBufferRange",
			"maxUniformBufferRange %d < %d", maxRange, model.IndicesBufferSize)
	}
	log.Printf("maxUniformBufferRange %d, canvas indices need %d", maxRange, model.IndicesBufferSize)
	return nil
}
