package renderer

import (
	"log"

	vk "github.com/goki/vulkan"

	com "hexil/common"
	"hexil/lifecycle"
)

// physicalCandidate pairs a physical device handle with what the selection knows about it.
type physicalCandidate struct {
	pd        vk.PhysicalDevice
	candidate lifecycle.DeviceCandidate
}

// createDevice enumerates the physical devices, lets the lifecycle rank them, picks the queue families and creates
// the logical device with the allow listed extensions the chosen device supports.
func (c *Core) createDevice() error {
	candidates, err := enumerateCandidates(c.win.Inst, c.win.Surf)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return lifecycle.Errorf(lifecycle.KindNoPhysicalDevices, "EnumeratePhysicalDevices", "no physical devices found")
	}
	infos := make([]lifecycle.DeviceCandidate, len(candidates))
	for i := range candidates {
		infos[i] = candidates[i].candidate
	}
	c.selection, err = lifecycle.SelectDevice(infos)
	if err != nil {
		return err
	}
	chosen := candidates[c.selection.Candidate.Index]

	if err := checkUniformBufferRange(chosen.pd); err != nil {
		return err
	}
	plan, err := lifecycle.SelectQueueFamilies(chosen.candidate.QueueFamilies)
	if err != nil {
		return err
	}
	log.Printf("Queue plan: graphics family %d, transfer family %d (shared: %t, queue %d)",
		plan.Graphics, plan.Transfer, plan.Shared, plan.TransferQueue)

	extensions := lifecycle.EnabledExtensions(chosen.candidate.Extensions)
	c.device, err = com.NewDevice(chosen.pd, plan, extensions, c.opts.Validation && c.win.Validation)
	if err != nil {
		return err
	}
	log.Printf("Device memory:\n%s", com.ToStringPhysicalDeviceMemProps(c.device.MemoryProps))
	return nil
}

func enumerateCandidates(inst vk.Instance, surf vk.Surface) ([]physicalCandidate, error) {
	pds, err := com.ReadPhysicalDevices(inst)
	if err != nil {
		return nil, lifecycle.Wrap(lifecycle.KindDevice, "EnumeratePhysicalDevices", err)
	}
	candidates := make([]physicalCandidate, 0, len(pds))
	for i, pd := range pds {
		cand, err := describeDevice(len(candidates), pd, surf)
		if err != nil {
			log.Printf("WARN Skipping physical device %d: %v", i, err)
			continue
		}
		candidates = append(candidates, physicalCandidate{pd: pd, candidate: cand})
	}
	return candidates, nil
}

// describeDevice gathers what the device selection ranks on. Index is the position in the returned candidate
// list, not in the raw enumeration, so the selection can index back into it.
func describeDevice(idx int, pd vk.PhysicalDevice, surf vk.Surface) (lifecycle.DeviceCandidate, error) {
	pdProps := com.ReadPhysicalDeviceProperties(pd)
	qFamilies := com.ReadQueueFamilies(pd)
	log.Printf("Physical device\n%s", com.ToStringPhysicalDeviceTable(pdProps, qFamilies))

	exts, err := com.ReadDeviceExtensionProperties(pd)
	if err != nil {
		return lifecycle.DeviceCandidate{}, err
	}
	families, presentable := queueFamiliesFor(pd, surf, qFamilies)
	cand := lifecycle.DeviceCandidate{
		Index:            idx,
		Name:             vk.ToString(pdProps.DeviceName[:]),
		Extensions:       com.ExtensionNames(exts),
		QueueFamilies:    families,
		SurfaceSupported: presentable,
	}
	if presentable {
		support, err := com.ReadSurfaceSupport(pd, surf)
		if err != nil {
			return lifecycle.DeviceCandidate{}, err
		}
		cand.SurfaceFormats = toSurfaceFormats(support.Formats)
		cand.PresentModes = toPresentModes(support.PresentModes)
	}
	return cand, nil
}
