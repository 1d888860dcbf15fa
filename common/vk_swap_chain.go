package common

import (
	"log"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// SwapChainConfig is a fully decided swapchain configuration. Old is the swapchain being replaced, nil for the
// first one.
type SwapChainConfig struct {
	Surface       vk.Surface
	Format        vk.SurfaceFormat
	PresentMode   vk.PresentMode
	Extent        vk.Extent2D
	MinImageCount uint32
	PreTransform  vk.SurfaceTransformFlagBits
	Old           vk.Swapchain
}

// SwapChain is one generation of the swapchain: the handle, its images and one view per image.
type SwapChain struct {
	Handle vk.Swapchain

	Format      vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D

	Images   []vk.Image
	ImgViews []vk.ImageView
}

// NewSwapChain creates the swapchain described by cfg. Images are only ever used by the graphics queue, which also
// presents, so they stay exclusive.
func NewSwapChain(dev *Device, cfg SwapChainConfig) (*SwapChain, error) {
	sc := &SwapChain{
		Format:      cfg.Format,
		PresentMode: cfg.PresentMode,
		Extent:      cfg.Extent,
	}
	createInfo := &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Surface:               cfg.Surface,
		MinImageCount:         cfg.MinImageCount,
		ImageFormat:           cfg.Format.Format,
		ImageColorSpace:       cfg.Format.ColorSpace,
		ImageExtent:           cfg.Extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
		PreTransform:          cfg.PreTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           cfg.PresentMode,
		Clipped:               vk.True,
		OldSwapchain:          cfg.Old,
	}

	var err error
	sc.Handle, err = VkCreateSwapChain(dev.D, createInfo, nil)
	if err != nil {
		return nil, err
	}

	sc.Images, err = ReadSwapChainImages(dev.D, sc.Handle)
	if err != nil {
		sc.Destroy(dev)
		return nil, err
	}
	sc.ImgViews = make([]vk.ImageView, 0, len(sc.Images))
	for i := range sc.Images {
		view, err := createImageView(dev, sc.Images[i], sc.Format.Format)
		if err != nil {
			sc.Destroy(dev)
			return nil, errors.Wrapf(err, "failed to create image view [%d]", i)
		}
		sc.ImgViews = append(sc.ImgViews, view)
	}
	log.Printf("Successfully created swap chain with %d images (%dx%d)", len(sc.Images), sc.Extent.Width, sc.Extent.Height)
	return sc, nil
}

// CreateFrameBuffers creates one framebuffer per image view for renderPass. On failure the ones created so far
// are destroyed again.
func (sc *SwapChain) CreateFrameBuffers(dev *Device, renderPass vk.RenderPass) ([]vk.Framebuffer, error) {
	frameBuffers := make([]vk.Framebuffer, 0, len(sc.ImgViews))
	for i := range sc.ImgViews {
		framebufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			PNext:           nil,
			Flags:           0,
			RenderPass:      renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{sc.ImgViews[i]},
			Width:           sc.Extent.Width,
			Height:          sc.Extent.Height,
			Layers:          1,
		}
		fb, err := VkCreateFrameBuffer(dev.D, &framebufferInfo, nil)
		if err != nil {
			DestroyFrameBuffers(dev, frameBuffers)
			return nil, errors.Wrapf(err, "failed to create frame buffer [%d]", i)
		}
		frameBuffers = append(frameBuffers, fb)
	}
	return frameBuffers, nil
}

func DestroyFrameBuffers(dev *Device, frameBuffers []vk.Framebuffer) {
	for i := range frameBuffers {
		vk.DestroyFramebuffer(dev.D, frameBuffers[i], nil)
	}
}

// Destroy destroys the image views and the swapchain handle. Framebuffers are owned by whoever created them.
func (sc *SwapChain) Destroy(dev *Device) {
	for i := range sc.ImgViews {
		vk.DestroyImageView(dev.D, sc.ImgViews[i], nil)
	}
	sc.ImgViews = nil
	if sc.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(dev.D, sc.Handle, nil)
		sc.Handle = vk.NullSwapchain
	}
}

func createImageView(dev *Device, image vk.Image, format vk.Format) (vk.ImageView, error) {
	createInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		PNext:    nil,
		Flags:    0,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	return VkCreateImageView(dev.D, createInfo, nil)
}
