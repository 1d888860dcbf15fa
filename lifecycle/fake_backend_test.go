package lifecycle

import (
	"fmt"
	"strings"
)

// fakeBackend records every call and keeps just enough state to catch lifetime mistakes: using a swapchain,
// render pass or framebuffer set that doesn't exist, or destroying something that is still in use.
type fakeBackend struct {
	caps SurfaceCapabilities

	calls []string

	swapchains   map[Epoch]bool
	renderPasses map[RenderPassID]Format
	framebuffers map[FramebufferKey]bool
	pipelines    map[RenderPassID]bool

	requests  []SwapchainRequest
	records   []DrawSpec
	submits   []SubmitSpec
	transfers []TransferSpec
	presents  int

	acquireErr  []error
	presentErr  []error
	createErr   error
	nextImage   uint32
	imageCount  uint32
	lifetimeErr []string
}

func newFakeBackend(width, height uint32) *fakeBackend {
	return &fakeBackend{
		caps: SurfaceCapabilities{
			CurrentExtent: Extent{Width: width, Height: height},
			MinExtent:     Extent{Width: 1, Height: 1},
			MaxExtent:     Extent{Width: 4096, Height: 4096},
			MinImageCount: 2,
			MaxImageCount: 3,
			Formats: []SurfaceFormat{
				{Format: FormatB8g8r8a8Srgb, ColorSpace: ColorSpaceSrgbNonlinear},
			},
			PresentModes: []PresentMode{PresentModeFifo, PresentModeMailbox},
		},
		swapchains:   map[Epoch]bool{},
		renderPasses: map[RenderPassID]Format{},
		framebuffers: map[FramebufferKey]bool{},
		pipelines:    map[RenderPassID]bool{},
		imageCount:   3,
	}
}

func (b *fakeBackend) call(format string, args ...interface{}) {
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
}

func (b *fakeBackend) misuse(format string, args ...interface{}) {
	b.lifetimeErr = append(b.lifetimeErr, fmt.Sprintf(format, args...))
}

// resize makes the surface report a new current extent, the way a real surface follows its window.
func (b *fakeBackend) resize(width, height uint32) {
	b.caps.CurrentExtent = Extent{Width: width, Height: height}
}

// count counts the calls named call, or starting with call followed by arguments.
func (b *fakeBackend) count(call string) int {
	n := 0
	for _, c := range b.calls {
		if c == call || strings.HasPrefix(c, call+" ") {
			n++
		}
	}
	return n
}

func (b *fakeBackend) SurfaceCapabilities() (SurfaceCapabilities, error) {
	b.call("SurfaceCapabilities")
	return b.caps, nil
}

func (b *fakeBackend) CreateSwapchain(req SwapchainRequest) (uint32, error) {
	b.call("CreateSwapchain %d parent %d", req.Epoch, req.Parent)
	if req.Parent != 0 {
		if !b.swapchains[req.Parent] {
			b.misuse("parent swapchain %d does not exist", req.Parent)
		}
		// the parent is retired either way
		delete(b.swapchains, req.Parent)
	}
	if b.createErr != nil {
		return 0, b.createErr
	}
	b.requests = append(b.requests, req)
	b.swapchains[req.Epoch] = true
	return b.imageCount, nil
}

func (b *fakeBackend) DestroySwapchain(epoch Epoch) {
	b.call("DestroySwapchain %d", epoch)
	for key := range b.framebuffers {
		if key.Swapchain == epoch {
			b.misuse("swapchain %d destroyed while framebuffers %v exist", epoch, key)
		}
	}
	delete(b.swapchains, epoch)
}

func (b *fakeBackend) CreateRenderPass(id RenderPassID, format Format) error {
	b.call("CreateRenderPass %d", id)
	if _, ok := b.renderPasses[id]; ok {
		b.misuse("render pass %d created twice", id)
	}
	b.renderPasses[id] = format
	return nil
}

func (b *fakeBackend) DestroyRenderPass(id RenderPassID) {
	b.call("DestroyRenderPass %d", id)
	if b.pipelines[id] {
		b.misuse("render pass %d destroyed before its pipeline", id)
	}
	delete(b.renderPasses, id)
}

func (b *fakeBackend) CreateFramebuffers(key FramebufferKey) error {
	b.call("CreateFramebuffers %d/%d", key.RenderPass, key.Swapchain)
	if !b.swapchains[key.Swapchain] {
		b.misuse("framebuffers %v on missing swapchain", key)
	}
	if _, ok := b.renderPasses[key.RenderPass]; !ok {
		b.misuse("framebuffers %v on missing render pass", key)
	}
	b.framebuffers[key] = true
	return nil
}

func (b *fakeBackend) DestroyFramebuffers(key FramebufferKey) {
	b.call("DestroyFramebuffers %d/%d", key.RenderPass, key.Swapchain)
	if !b.framebuffers[key] {
		b.misuse("destroying unknown framebuffers %v", key)
	}
	delete(b.framebuffers, key)
}

func (b *fakeBackend) CreatePipeline(rp RenderPassID) error {
	b.call("CreatePipeline %d", rp)
	if _, ok := b.renderPasses[rp]; !ok {
		b.misuse("pipeline on missing render pass %d", rp)
	}
	b.pipelines[rp] = true
	return nil
}

func (b *fakeBackend) DestroyPipeline(rp RenderPassID) {
	b.call("DestroyPipeline %d", rp)
	delete(b.pipelines, rp)
}

func (b *fakeBackend) RecordDraws(spec DrawSpec) error {
	b.call("RecordDraws %d/%d", spec.Framebuffers.RenderPass, spec.Framebuffers.Swapchain)
	if !b.framebuffers[spec.Framebuffers] {
		b.misuse("recording into missing framebuffers %v", spec.Framebuffers)
	}
	b.records = append(b.records, spec)
	return nil
}

func (b *fakeBackend) AcquireImage(epoch Epoch) (uint32, error) {
	b.call("AcquireImage %d", epoch)
	if !b.swapchains[epoch] {
		b.misuse("acquiring from missing swapchain %d", epoch)
	}
	if len(b.acquireErr) > 0 {
		err := b.acquireErr[0]
		b.acquireErr = b.acquireErr[1:]
		if err != nil {
			return 0, err
		}
	}
	img := b.nextImage
	b.nextImage = (b.nextImage + 1) % b.imageCount
	return img, nil
}

func (b *fakeBackend) SubmitDraw(spec SubmitSpec) error {
	b.call("SubmitDraw %d", spec.Swapchain)
	b.submits = append(b.submits, spec)
	return nil
}

func (b *fakeBackend) Present(epoch Epoch, image uint32) error {
	b.call("Present %d", epoch)
	if len(b.presentErr) > 0 {
		err := b.presentErr[0]
		b.presentErr = b.presentErr[1:]
		if err != nil {
			return err
		}
	}
	b.presents++
	return nil
}

func (b *fakeBackend) SubmitTransfer(spec TransferSpec) error {
	b.call("SubmitTransfer")
	b.transfers = append(b.transfers, spec)
	return nil
}

func (b *fakeBackend) WaitIdle() error {
	b.call("WaitIdle")
	return nil
}

func (b *fakeBackend) Destroy() {
	b.call("Destroy")
}

// live reports how many resources of each kind still exist.
func (b *fakeBackend) live() string {
	return fmt.Sprintf("swapchains %d, render passes %d, framebuffers %d, pipelines %d",
		len(b.swapchains), len(b.renderPasses), len(b.framebuffers), len(b.pipelines))
}
