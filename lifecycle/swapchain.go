package lifecycle

import (
	"fmt"
	"log"
)

type SwapchainState int

const (
	// SwapchainAbsent: there is no swapchain, either nothing was built yet or the window has no area.
	SwapchainAbsent SwapchainState = iota
	// SwapchainValid: the swapchain extent matches the window.
	SwapchainValid
	// SwapchainStale: the swapchain exists but no longer matches the window or the surface.
	SwapchainStale
)

func (s SwapchainState) String() string {
	switch s {
	case SwapchainAbsent:
		return "absent"
	case SwapchainValid:
		return "valid"
	case SwapchainStale:
		return "stale"
	default:
		return fmt.Sprintf("SwapchainState(%d)", int(s))
	}
}

// undefinedExtent is the surface's way of saying "the swapchain decides the extent".
const undefinedExtent = 0xFFFFFFFF

type SwapchainInfo struct {
	Epoch       Epoch
	Format      SurfaceFormat
	Extent      Extent
	PresentMode PresentMode
	ImageCount  uint32
}

// SwapchainManager is the Absent/Valid/Stale state machine. It decides when a swapchain has to be built, rebuilt
// or torn down and creates swapchains through the backend. Tearing down resources that depend on a swapchain is
// left to the caller, which is why destroying happens in two steps (NeedsTeardown, then Destroy).
type SwapchainManager struct {
	backend Backend
	mailbox bool

	state     SwapchainState
	current   SwapchainInfo
	window    Extent
	lastEpoch Epoch
}

func NewSwapchainManager(backend Backend, sel DeviceSelection) *SwapchainManager {
	return &SwapchainManager{
		backend: backend,
		mailbox: sel.MailboxSupported,
		state:   SwapchainAbsent,
	}
}

func (m *SwapchainManager) State() SwapchainState {
	return m.state
}

// Current returns the live swapchain. ok is false while the manager is Absent.
func (m *SwapchainManager) Current() (info SwapchainInfo, ok bool) {
	if m.state == SwapchainAbsent {
		return SwapchainInfo{}, false
	}
	return m.current, true
}

func (m *SwapchainManager) Window() Extent {
	return m.window
}

// Resize records the window's new physical size. A live swapchain whose extent differs becomes Stale.
func (m *SwapchainManager) Resize(window Extent) {
	m.window = window
	if m.state == SwapchainValid && window.Area() > 0 && window != m.current.Extent {
		m.state = SwapchainStale
	}
}

// MarkStale is called when the API reports the swapchain out of date.
func (m *SwapchainManager) MarkStale() {
	if m.state == SwapchainValid {
		m.state = SwapchainStale
	}
}

// NeedsBuild reports whether Build has to run before the next frame.
func (m *SwapchainManager) NeedsBuild() bool {
	return m.window.Area() > 0 && m.state != SwapchainValid
}

// NeedsTeardown reports whether a swapchain exists although the window has no area.
func (m *SwapchainManager) NeedsTeardown() bool {
	return m.window.Area() == 0 && m.state != SwapchainAbsent
}

// Build creates a swapchain if the manager is Absent or recreates it from the current one if it is Stale. The
// current swapchain is passed as parent and its format is kept as long as the surface still offers it. built is
// false when the surface reports a zero extent (e.g. while minimizing); the window is then treated as having no
// area.
func (m *SwapchainManager) Build() (info SwapchainInfo, built bool, err error) {
	caps, err := m.backend.SurfaceCapabilities()
	if err != nil {
		return SwapchainInfo{}, false, Wrap(KindSurface, "SurfaceCapabilities", err)
	}
	extent := ChooseExtent(caps, m.window)
	if extent.Area() == 0 {
		log.Printf("Surface reports a zero extent, postponing swapchain creation")
		m.window = Extent{}
		return SwapchainInfo{}, false, nil
	}
	if len(caps.Formats) == 0 {
		return SwapchainInfo{}, false, Errorf(KindSwapchain, "Build", "surface offers no formats")
	}

	var previous *SurfaceFormat
	var parent Epoch
	if m.state != SwapchainAbsent {
		previous = &m.current.Format
		parent = m.current.Epoch
	}
	req := SwapchainRequest{
		Epoch:         m.lastEpoch + 1,
		Parent:        parent,
		Extent:        extent,
		Format:        ChooseSurfaceFormat(caps.Formats, previous),
		PresentMode:   ChoosePresentMode(m.mailbox, caps.PresentModes),
		MinImageCount: ChooseImageCount(caps),
	}
	imageCount, err := m.backend.CreateSwapchain(req)
	if err != nil {
		if parent != 0 {
			// The API retires the parent even when creation fails.
			m.state = SwapchainAbsent
			m.current = SwapchainInfo{}
		}
		return SwapchainInfo{}, false, Wrap(KindSwapchain, "CreateSwapchain", err)
	}
	m.lastEpoch = req.Epoch
	m.current = SwapchainInfo{
		Epoch:       req.Epoch,
		Format:      req.Format,
		Extent:      extent,
		PresentMode: req.PresentMode,
		ImageCount:  imageCount,
	}
	m.state = SwapchainValid
	if m.window != extent {
		log.Printf("Swapchain extent %s differs from window %s, using the surface extent", extent, m.window)
		m.window = extent
	}
	log.Printf("Built swapchain epoch %d (parent %d): %s, %d images, format %d, present mode %s",
		req.Epoch, parent, extent, imageCount, req.Format.Format, req.PresentMode)
	return m.current, true, nil
}

// Destroy destroys the live swapchain and returns to Absent. Dependents must be gone already.
func (m *SwapchainManager) Destroy() {
	if m.state == SwapchainAbsent {
		return
	}
	m.backend.DestroySwapchain(m.current.Epoch)
	log.Printf("Destroyed swapchain epoch %d", m.current.Epoch)
	m.current = SwapchainInfo{}
	m.state = SwapchainAbsent
}

// ChooseSurfaceFormat keeps previous if the surface still offers it. Otherwise it prefers an 8 bit sRGB format
// in the sRGB non-linear color space, then any sRGB non-linear format, then whatever comes first.
func ChooseSurfaceFormat(available []SurfaceFormat, previous *SurfaceFormat) SurfaceFormat {
	if previous != nil {
		for _, f := range available {
			if f == *previous {
				return f
			}
		}
		log.Printf("Surface no longer offers format %d, selecting a new one", previous.Format)
	}
	for _, f := range available {
		if f.ColorSpace == ColorSpaceSrgbNonlinear && (f.Format == FormatB8g8r8a8Srgb || f.Format == FormatR8g8b8a8Srgb) {
			return f
		}
	}
	for _, f := range available {
		if f.ColorSpace == ColorSpaceSrgbNonlinear {
			return f
		}
	}
	log.Printf("Did not find an sRGB non-linear SurfaceFormat, selecting first one available. (%v)", available[0])
	return available[0]
}

// ChoosePresentMode uses mailbox when the device selection found it, FIFO otherwise. FIFO is always available.
func ChoosePresentMode(mailboxSupported bool, available []PresentMode) PresentMode {
	if mailboxSupported {
		for _, m := range available {
			if m == PresentModeMailbox {
				return m
			}
		}
	}
	return PresentModeFifo
}

func ChooseImageCount(caps SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// ChooseExtent returns the surface's current extent, or the window size clamped to the surface bounds when the
// surface leaves the decision to the swapchain.
func ChooseExtent(caps SurfaceCapabilities, window Extent) Extent {
	if caps.CurrentExtent.Width != undefinedExtent {
		return caps.CurrentExtent
	}
	return Extent{
		Width:  clamp(window.Width, caps.MinExtent.Width, caps.MaxExtent.Width),
		Height: clamp(window.Height, caps.MinExtent.Height, caps.MaxExtent.Height),
	}
}

func clamp(v, lo, hi uint32) uint32 {
	return max(lo, min(v, hi))
}
