package lifecycle

import "fmt"

// The enum values below mirror their Vulkan counterparts so a backend can convert with a plain type conversion.

type Format int32

const (
	FormatUndefined    Format = 0
	FormatR8g8b8a8Srgb Format = 43
	FormatB8g8r8a8Srgb Format = 50
)

type ColorSpace int32

const ColorSpaceSrgbNonlinear ColorSpace = 0

type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

func (p PresentMode) String() string {
	switch p {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFifo:
		return "fifo"
	case PresentModeFifoRelaxed:
		return "fifo-relaxed"
	default:
		return fmt.Sprintf("PresentMode(%d)", int32(p))
	}
}

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type Extent struct {
	Width  uint32
	Height uint32
}

func (e Extent) Area() uint64 {
	return uint64(e.Width) * uint64(e.Height)
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// SurfaceCapabilities is the part of the surface query the swapchain manager needs to size and configure a
// swapchain. MaxImageCount 0 means there is no upper bound.
type SurfaceCapabilities struct {
	CurrentExtent Extent
	MinExtent     Extent
	MaxExtent     Extent
	MinImageCount uint32
	MaxImageCount uint32
	Formats       []SurfaceFormat
	PresentModes  []PresentMode
}

// Epoch identifies one generation of the swapchain. Every created swapchain gets a new, strictly larger epoch and
// all dependent resources refer to the epoch instead of holding the swapchain itself. Epoch 0 is "no swapchain".
type Epoch uint64

// RenderPassID identifies a render pass created for one swapchain format.
type RenderPassID uint64

// FramebufferKey identifies the framebuffer set built for one (render pass, swapchain) pairing.
type FramebufferKey struct {
	RenderPass RenderPassID
	Swapchain  Epoch
}

type SwapchainRequest struct {
	Epoch         Epoch
	Parent        Epoch
	Extent        Extent
	Format        SurfaceFormat
	PresentMode   PresentMode
	MinImageCount uint32
}

// DrawSpec describes everything a primary draw command buffer records for one framebuffer set.
type DrawSpec struct {
	Framebuffers  FramebufferKey
	Extent        Extent
	FirstVertex   uint32
	VertexCount   uint32
	InstanceCount uint32
}

type SubmitSpec struct {
	Swapchain Epoch
	Image     uint32
	// WaitTransfer makes the draw wait on the canvas transfer semaphore before the vertex stage reads the
	// canvas buffers.
	WaitTransfer bool
}

// TransferSpec is a point in time copy of the canvas buffers. Chain is set when a previous transfer signalled the
// transfer semaphore and no draw consumed it yet.
type TransferSpec struct {
	Settings []byte
	Indices  []byte
	Chain    bool
}
