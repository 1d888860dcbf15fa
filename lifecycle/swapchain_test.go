package lifecycle

import (
	"testing"

	"github.com/pkg/errors"
)

func TestSwapchainStates(t *testing.T) {
	b := newFakeBackend(800, 600)
	m := NewSwapchainManager(b, DeviceSelection{MailboxSupported: true})

	if m.State() != SwapchainAbsent || m.NeedsBuild() {
		t.Fatalf("A fresh manager without a window size should be absent and idle, is %s", m.State())
	}

	m.Resize(Extent{Width: 800, Height: 600})
	if !m.NeedsBuild() {
		t.Fatalf("Absent with a window area should need a build")
	}
	info, built, err := m.Build()
	if err != nil || !built {
		t.Fatalf("Build failed: built %t, %v", built, err)
	}
	if m.State() != SwapchainValid {
		t.Errorf("Expected valid after build, got %s", m.State())
	}
	if info.Epoch != 1 || info.ImageCount != 3 || info.PresentMode != PresentModeMailbox {
		t.Errorf("Unexpected swapchain info %+v", info)
	}
	if b.requests[0].MinImageCount != 3 {
		t.Errorf("Expected min image count 3, requested %d", b.requests[0].MinImageCount)
	}

	// same size again is not a change
	m.Resize(Extent{Width: 800, Height: 600})
	if m.State() != SwapchainValid {
		t.Errorf("Same extent should keep the swapchain valid, got %s", m.State())
	}

	m.Resize(Extent{Width: 1024, Height: 768})
	if m.State() != SwapchainStale || !m.NeedsBuild() {
		t.Errorf("Expected stale after resize, got %s", m.State())
	}

	b.resize(1024, 768)
	info, built, err = m.Build()
	if err != nil || !built {
		t.Fatalf("Rebuild failed: built %t, %v", built, err)
	}
	if info.Epoch != 2 {
		t.Errorf("Epochs should increase, got %d", info.Epoch)
	}
	if b.requests[1].Parent != 1 {
		t.Errorf("Rebuild should pass epoch 1 as parent, got %d", b.requests[1].Parent)
	}

	m.MarkStale()
	if m.State() != SwapchainStale {
		t.Errorf("MarkStale should make a valid swapchain stale, got %s", m.State())
	}

	m.Resize(Extent{})
	if !m.NeedsTeardown() || m.NeedsBuild() {
		t.Errorf("Zero area should need a teardown and no build")
	}
	m.Destroy()
	if m.State() != SwapchainAbsent {
		t.Errorf("Expected absent after destroy, got %s", m.State())
	}
	if len(b.swapchains) != 0 {
		t.Errorf("Swapchains left behind: %s", b.live())
	}
	if _, ok := m.Current(); ok {
		t.Errorf("Current should report nothing while absent")
	}
}

func TestSwapchainKeepsFormat(t *testing.T) {
	b := newFakeBackend(640, 480)
	unorm := SurfaceFormat{Format: 44, ColorSpace: ColorSpaceSrgbNonlinear}
	srgb := SurfaceFormat{Format: FormatB8g8r8a8Srgb, ColorSpace: ColorSpaceSrgbNonlinear}
	b.caps.Formats = []SurfaceFormat{srgb, unorm}

	m := NewSwapchainManager(b, DeviceSelection{})
	m.Resize(Extent{Width: 640, Height: 480})
	info, _, err := m.Build()
	if err != nil {
		t.Fatalf("Build failed: %s", err)
	}
	if info.Format != srgb {
		t.Errorf("Expected the sRGB format first, got %+v", info.Format)
	}
	if info.PresentMode != PresentModeFifo {
		t.Errorf("Without mailbox support the present mode must be FIFO, got %s", info.PresentMode)
	}

	// the surface reorders its formats, the swapchain keeps the one it had
	b.caps.Formats = []SurfaceFormat{unorm, srgb}
	m.MarkStale()
	info, _, err = m.Build()
	if err != nil {
		t.Fatalf("Rebuild failed: %s", err)
	}
	if info.Format != srgb {
		t.Errorf("Format should be preserved across rebuilds, got %+v", info.Format)
	}

	// the old format disappears
	b.caps.Formats = []SurfaceFormat{unorm}
	m.MarkStale()
	info, _, err = m.Build()
	if err != nil {
		t.Fatalf("Rebuild failed: %s", err)
	}
	if info.Format != unorm {
		t.Errorf("Expected fallback to the only format, got %+v", info.Format)
	}
}

func TestSwapchainZeroSurfaceExtent(t *testing.T) {
	b := newFakeBackend(0, 0)
	m := NewSwapchainManager(b, DeviceSelection{})
	m.Resize(Extent{Width: 300, Height: 200})

	_, built, err := m.Build()
	if err != nil {
		t.Fatalf("Build failed: %s", err)
	}
	if built {
		t.Errorf("Nothing should be built for a zero surface extent")
	}
	if m.NeedsBuild() {
		t.Errorf("The window should be treated as having no area")
	}
	if b.count("CreateSwapchain") != 0 {
		t.Errorf("CreateSwapchain should not have been called")
	}
}

func TestSwapchainFailedRebuildIsAbsent(t *testing.T) {
	b := newFakeBackend(320, 240)
	m := NewSwapchainManager(b, DeviceSelection{})
	m.Resize(Extent{Width: 320, Height: 240})
	if _, _, err := m.Build(); err != nil {
		t.Fatalf("Build failed: %s", err)
	}

	b.createErr = errors.New("device lost")
	m.MarkStale()
	_, _, err := m.Build()
	if !IsKind(err, KindSwapchain) {
		t.Errorf("Expected KindSwapchain, got %v", err)
	}
	if m.State() != SwapchainAbsent {
		t.Errorf("The retired parent must not be used again, state is %s", m.State())
	}
}

func TestChooseExtent(t *testing.T) {
	caps := SurfaceCapabilities{
		CurrentExtent: Extent{Width: undefinedExtent, Height: undefinedExtent},
		MinExtent:     Extent{Width: 100, Height: 100},
		MaxExtent:     Extent{Width: 1000, Height: 1000},
	}
	tests := []struct {
		window Extent
		want   Extent
	}{
		{Extent{500, 400}, Extent{500, 400}},
		{Extent{50, 4000}, Extent{100, 1000}},
	}
	for _, tt := range tests {
		if got := ChooseExtent(caps, tt.window); got != tt.want {
			t.Errorf("ChooseExtent(%s) = %s, want %s", tt.window, got, tt.want)
		}
	}

	caps.CurrentExtent = Extent{Width: 640, Height: 480}
	if got := ChooseExtent(caps, Extent{Width: 10, Height: 10}); got != caps.CurrentExtent {
		t.Errorf("A defined current extent must win, got %s", got)
	}
}

func TestChooseImageCount(t *testing.T) {
	if got := ChooseImageCount(SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0}); got != 3 {
		t.Errorf("Unbounded: got %d, want 3", got)
	}
	if got := ChooseImageCount(SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}); got != 2 {
		t.Errorf("Bounded: got %d, want 2", got)
	}
}

func TestChoosePresentMode(t *testing.T) {
	if got := ChoosePresentMode(true, []PresentMode{PresentModeFifo}); got != PresentModeFifo {
		t.Errorf("Mailbox missing from the surface should fall back to FIFO, got %s", got)
	}
	if got := ChoosePresentMode(false, []PresentMode{PresentModeMailbox, PresentModeFifo}); got != PresentModeFifo {
		t.Errorf("Mailbox not selected for the device should give FIFO, got %s", got)
	}
	if got := ChoosePresentMode(true, []PresentMode{PresentModeFifo, PresentModeMailbox}); got != PresentModeMailbox {
		t.Errorf("Expected mailbox, got %s", got)
	}
}
