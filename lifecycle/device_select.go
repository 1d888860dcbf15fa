package lifecycle

import (
	"log"
)

const (
	SwapchainExtension            = "VK_KHR_swapchain"
	SwapchainMaintenanceExtension = "VK_EXT_swapchain_maintenance1"
)

// DeviceExtensionAllowList holds every optional device extension the renderer is happy to enable. The enabled set
// is this list intersected with what the selected device supports. Extensions needing an instance level companion
// (e.g. VK_EXT_swapchain_maintenance1) are only ranked on, never enabled.
var DeviceExtensionAllowList = []string{
	SwapchainExtension,
	"VK_KHR_portability_subset",
	"VK_KHR_maintenance1",
	"VK_KHR_dedicated_allocation",
	"VK_KHR_get_memory_requirements2",
	"VK_KHR_incremental_present",
	"VK_KHR_shader_draw_parameters",
}

type QueueFamily struct {
	Index    uint32
	Graphics bool
	Transfer bool
	Count    uint32
}

// DeviceCandidate is everything the selection needs to know about one enumerated physical device.
type DeviceCandidate struct {
	Index            int
	Name             string
	PresentModes     []PresentMode
	SurfaceFormats   []SurfaceFormat
	Extensions       []string
	QueueFamilies    []QueueFamily
	SurfaceSupported bool
}

func (d DeviceCandidate) supports(ext string) bool {
	for _, e := range d.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (d DeviceCandidate) supportsPresentMode(mode PresentMode) bool {
	for _, m := range d.PresentModes {
		if m == mode {
			return true
		}
	}
	return false
}

// canPresent reports whether a swapchain can be created on this device for the target surface at all.
func (d DeviceCandidate) canPresent() bool {
	return d.SurfaceSupported &&
		len(d.SurfaceFormats) > 0 &&
		len(d.PresentModes) > 0 &&
		d.supports(SwapchainExtension)
}

func (d DeviceCandidate) rank() int {
	r := 0
	if d.supportsPresentMode(PresentModeMailbox) {
		r += 2
	}
	if d.supports(SwapchainMaintenanceExtension) {
		r += 1
	}
	return r
}

// DeviceSelection is the outcome of SelectDevice. The present mode capability travels with it so the swapchain
// manager never has to query it again.
type DeviceSelection struct {
	Candidate            DeviceCandidate
	MailboxSupported     bool
	SwapchainMaintenance bool
}

// SelectDevice picks the candidate able to present to the surface that ranks highest by (1) mailbox present mode
// support and (2) swapchain maintenance extension support. Ties go to the first enumerated candidate.
func SelectDevice(candidates []DeviceCandidate) (DeviceSelection, error) {
	best := -1
	for i, c := range candidates {
		log.Printf("Physical Device detected: %s", c.Name)
		if !c.canPresent() {
			log.Printf("Physical Device %s cannot present to the window surface, skipping", c.Name)
			continue
		}
		if best < 0 || c.rank() > candidates[best].rank() {
			best = i
		}
	}
	if best < 0 {
		return DeviceSelection{}, Errorf(KindNoPhysicalDevices, "SelectDevice",
			"none of the %d physical devices can present to the window surface", len(candidates))
	}
	sel := DeviceSelection{
		Candidate:            candidates[best],
		MailboxSupported:     candidates[best].supportsPresentMode(PresentModeMailbox),
		SwapchainMaintenance: candidates[best].supports(SwapchainMaintenanceExtension),
	}
	log.Printf("Selected Physical Device: %s (mailbox: %t, swapchain maintenance: %t)",
		sel.Candidate.Name, sel.MailboxSupported, sel.SwapchainMaintenance)
	return sel, nil
}

// QueuePlan says which queue families serve the graphics and the transfer role. When both roles share a family,
// TransferQueue is the index of the transfer queue inside that family (1 if the family has a second queue).
type QueuePlan struct {
	Graphics      uint32
	Transfer      uint32
	Shared        bool
	TransferQueue uint32
}

// QueueRequest is one queue family to request at device creation and how many queues to take from it.
type QueueRequest struct {
	Family uint32
	Count  uint32
}

func (p QueuePlan) Requests() []QueueRequest {
	if p.Graphics == p.Transfer {
		return []QueueRequest{{Family: p.Graphics, Count: p.TransferQueue + 1}}
	}
	return []QueueRequest{
		{Family: p.Graphics, Count: 1},
		{Family: p.Transfer, Count: 1},
	}
}

// SelectQueueFamilies picks a graphics and a transfer queue family, preferring two distinct families. A single
// family serving both roles is a degraded but valid configuration and is only warned about.
func SelectQueueFamilies(families []QueueFamily) (QueuePlan, error) {
	var both, graphicsOnly, transferOnly []QueueFamily
	for _, f := range families {
		if f.Count == 0 {
			continue
		}
		switch {
		case f.Graphics && f.Transfer:
			both = append(both, f)
		case f.Graphics:
			graphicsOnly = append(graphicsOnly, f)
		case f.Transfer:
			transferOnly = append(transferOnly, f)
		}
	}

	var g, t QueueFamily
	switch {
	case len(both) == 0 && len(graphicsOnly) == 0:
		log.Printf("ERROR No graphics queues!")
		return QueuePlan{}, Errorf(KindNoGraphicsQueues, "SelectQueueFamilies", "no queue family supports graphics")
	case len(both) == 0 && len(transferOnly) == 0:
		log.Printf("ERROR No transfer queues!")
		return QueuePlan{}, Errorf(KindNoTransferQueues, "SelectQueueFamilies", "no queue family supports transfer")
	case len(both) == 1 && len(graphicsOnly) == 0 && len(transferOnly) == 0:
		log.Printf("WARN Only one queue available, performance may be affected.")
		g, t = both[0], both[0]
	case len(graphicsOnly) == 0 && len(transferOnly) == 0:
		g, t = both[0], both[1]
	case len(graphicsOnly) == 0:
		g, t = both[0], transferOnly[0]
	case len(transferOnly) == 0:
		g, t = graphicsOnly[0], both[0]
	default:
		g, t = graphicsOnly[0], transferOnly[0]
	}

	plan := QueuePlan{Graphics: g.Index, Transfer: t.Index}
	if g.Index == t.Index {
		plan.Shared = true
		if g.Count >= 2 {
			plan.TransferQueue = 1
		}
	}
	return plan, nil
}

// EnabledExtensions intersects the allow list with the extensions the device supports, in allow list order.
func EnabledExtensions(supported []string) []string {
	set := make(map[string]struct{}, len(supported))
	for _, s := range supported {
		set[s] = struct{}{}
	}
	var enabled []string
	for _, e := range DeviceExtensionAllowList {
		if _, ok := set[e]; ok {
			enabled = append(enabled, e)
		}
	}
	return enabled
}
