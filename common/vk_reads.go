package common

import (
	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// Read operations that require duplicated function calls, allocations and dereferencing. It is pulled out to
// provide a more go-lang feel and tidy the core code.

// ReadInstanceExtensionProperties wraps the raw vulkan call to retrieve all supported instance extensions as their
// spec defined type and dereferences all necessary pointer values.
func ReadInstanceExtensionProperties() ([]vk.ExtensionProperties, error) {
	extensionCount := uint32(0)
	err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &extensionCount, nil))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read number of InstanceExtensionProperties")
	}
	extensionProperties := make([]vk.ExtensionProperties, extensionCount)
	err = vk.Error(vk.EnumerateInstanceExtensionProperties("", &extensionCount, extensionProperties))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %d InstanceExtensionProperties", extensionCount)
	}
	for i := range extensionProperties {
		extensionProperties[i].Deref()
	}
	return extensionProperties, nil
}

// ReadInstanceLayerProperties wraps the raw vulkan call to retrieve all supported instance (validation) layer
// properties as their spec defined type and dereferences all necessary pointer values.
func ReadInstanceLayerProperties() ([]vk.LayerProperties, error) {
	layerCount := uint32(0)
	err := vk.Error(vk.EnumerateInstanceLayerProperties(&layerCount, nil))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read number of InstanceLayerProperties")
	}
	layers := make([]vk.LayerProperties, layerCount)
	err = vk.Error(vk.EnumerateInstanceLayerProperties(&layerCount, layers))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %d InstanceLayerProperties", layerCount)
	}
	for i := range layers {
		layers[i].Deref()
	}
	return layers, nil
}

// ReadPhysicalDevices returns every physical device of the instance, possibly none.
func ReadPhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var gpuCount uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(instance, &gpuCount, nil))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read number of PhysicalDevices")
	}
	if gpuCount == 0 {
		return nil, nil
	}
	physDevices := make([]vk.PhysicalDevice, gpuCount)
	err = vk.Error(vk.EnumeratePhysicalDevices(instance, &gpuCount, physDevices))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %d PhysicalDevices", gpuCount)
	}
	return physDevices, nil
}

func ReadPhysicalDeviceProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var pdProps vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &pdProps)
	pdProps.Deref()
	// Limits are needed for the uniform buffer range check
	pdProps.Limits.Deref()
	return pdProps
}

func ReadQueueFamilies(pd vk.PhysicalDevice) []vk.QueueFamilyProperties {
	qFamilyCount := uint32(0)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &qFamilyCount, nil)
	qFamilyProps := make([]vk.QueueFamilyProperties, qFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &qFamilyCount, qFamilyProps)
	for i := range qFamilyProps {
		qFamilyProps[i].Deref()
		qFamilyProps[i].MinImageTransferGranularity.Deref()
	}
	return qFamilyProps
}

func ReadDeviceExtensionProperties(pd vk.PhysicalDevice) ([]vk.ExtensionProperties, error) {
	extensionCount := uint32(0)
	err := vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &extensionCount, nil))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read number of DeviceExtensionProperties")
	}
	extensionProperties := make([]vk.ExtensionProperties, extensionCount)
	err = vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &extensionCount, extensionProperties))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %d DeviceExtensionProperties", extensionCount)
	}
	for i := range extensionProperties {
		extensionProperties[i].Deref()
	}
	return extensionProperties, nil
}

func ExtensionNames(exts []vk.ExtensionProperties) []string {
	names := make([]string, len(exts))
	for i, ext := range exts {
		names[i] = vk.ToString(ext.ExtensionName[:])
	}
	return names
}

// SurfaceSupport is everything the surface reports about itself for one physical device.
type SurfaceSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

func ReadSurfaceSupport(pd vk.PhysicalDevice, surface vk.Surface) (SurfaceSupport, error) {
	s := SurfaceSupport{}
	err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(pd, surface, &s.Capabilities))
	if err != nil {
		return s, errors.Wrap(err, "failed to read surface capabilities")
	}
	s.Capabilities.Deref()
	s.Capabilities.CurrentExtent.Deref()
	s.Capabilities.MinImageExtent.Deref()
	s.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	err = vk.Error(vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, nil))
	if err != nil {
		return s, errors.Wrap(err, "failed to read number of surface formats")
	}
	s.Formats = make([]vk.SurfaceFormat, formatCount)
	if formatCount > 0 {
		err = vk.Error(vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, s.Formats))
		if err != nil {
			return s, errors.Wrapf(err, "failed to read %d surface formats", formatCount)
		}
	}
	for i := range s.Formats {
		s.Formats[i].Deref()
	}

	var presentModeCount uint32
	err = vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &presentModeCount, nil))
	if err != nil {
		return s, errors.Wrap(err, "failed to read number of present modes")
	}
	s.PresentModes = make([]vk.PresentMode, presentModeCount)
	if presentModeCount > 0 {
		err = vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &presentModeCount, s.PresentModes))
		if err != nil {
			return s, errors.Wrapf(err, "failed to read %d present modes", presentModeCount)
		}
	}
	return s, nil
}

func ReadSurfaceQueueSupport(pd vk.PhysicalDevice, family uint32, surface vk.Surface) bool {
	var presentSupport vk.Bool32
	if vk.GetPhysicalDeviceSurfaceSupport(pd, family, surface, &presentSupport) != vk.Success {
		return false
	}
	return presentSupport == vk.True
}

func ReadSwapChainImages(device vk.Device, swapChain vk.Swapchain) ([]vk.Image, error) {
	var imgCount uint32
	err := vk.Error(vk.GetSwapchainImages(device, swapChain, &imgCount, nil))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read number of swapchain images")
	}
	imgs := make([]vk.Image, imgCount)
	err = vk.Error(vk.GetSwapchainImages(device, swapChain, &imgCount, imgs))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %d swapchain images", imgCount)
	}
	return imgs, nil
}

func ReadDeviceMemoryProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var pdMemProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &pdMemProps)
	pdMemProps.Deref()
	for i := range pdMemProps.MemoryTypes {
		pdMemProps.MemoryTypes[i].Deref()
	}
	for i := range pdMemProps.MemoryHeaps {
		pdMemProps.MemoryHeaps[i].Deref()
	}
	return pdMemProps
}

func ReadBufferMemoryRequirements(device vk.Device, b vk.Buffer) vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, b, &memRequirements)
	memRequirements.Deref()
	return memRequirements
}
