package lifecycle

import (
	"log"
)

// resourceArena tracks the generation of every resource that hangs off the swapchain. Nothing owns anything else:
// the render pass is keyed by format, framebuffers by (render pass, swapchain epoch), the pipeline by render pass
// and the draw recording by its full DrawSpec. sync rebuilds exactly the stale generations.
type resourceArena struct {
	backend Backend

	lastRenderPass   RenderPassID
	renderPass       RenderPassID
	renderPassFormat Format

	framebuffers    FramebufferKey
	hasFramebuffers bool

	pipeline RenderPassID

	recorded     DrawSpec
	hasRecording bool
}

func newResourceArena(backend Backend) *resourceArena {
	return &resourceArena{backend: backend}
}

// drawParams is what the canvas contributes to a draw recording.
type drawParams struct {
	FirstVertex   uint32
	VertexCount   uint32
	InstanceCount uint32
}

func (a *resourceArena) sync(info SwapchainInfo, p drawParams) error {
	if a.renderPass == 0 || a.renderPassFormat != info.Format.Format {
		if a.renderPass != 0 {
			log.Printf("Swapchain format changed (%d -> %d), rebuilding render pass", a.renderPassFormat, info.Format.Format)
		}
		a.releaseAll()
		id := a.lastRenderPass + 1
		if err := a.backend.CreateRenderPass(id, info.Format.Format); err != nil {
			return ensureKind(KindDevice, "CreateRenderPass", err)
		}
		a.lastRenderPass = id
		a.renderPass = id
		a.renderPassFormat = info.Format.Format
	}

	key := FramebufferKey{RenderPass: a.renderPass, Swapchain: info.Epoch}
	if !a.hasFramebuffers || a.framebuffers != key {
		a.releaseFramebuffers()
		if err := a.backend.CreateFramebuffers(key); err != nil {
			return ensureKind(KindDevice, "CreateFramebuffers", err)
		}
		a.framebuffers = key
		a.hasFramebuffers = true
	}

	if a.pipeline != a.renderPass {
		a.releasePipeline()
		if err := a.backend.CreatePipeline(a.renderPass); err != nil {
			return ensureKind(KindPipelineLayout, "CreatePipeline", err)
		}
		a.pipeline = a.renderPass
	}

	spec := DrawSpec{
		Framebuffers:  key,
		Extent:        info.Extent,
		FirstVertex:   p.FirstVertex,
		VertexCount:   p.VertexCount,
		InstanceCount: p.InstanceCount,
	}
	if !a.hasRecording || a.recorded != spec {
		if a.hasRecording {
			// the previous recording may still be executing
			if err := a.backend.WaitIdle(); err != nil {
				return ensureKind(KindExecution, "WaitIdle", err)
			}
		}
		if err := a.backend.RecordDraws(spec); err != nil {
			return ensureKind(KindCommandBuffer, "RecordDraws", err)
		}
		a.recorded = spec
		a.hasRecording = true
	}
	return nil
}

// releaseFramebuffers drops the framebuffers and with them the draw recording. It has to run before the swapchain
// they were built on is recreated or destroyed.
func (a *resourceArena) releaseFramebuffers() {
	a.hasRecording = false
	if !a.hasFramebuffers {
		return
	}
	a.backend.DestroyFramebuffers(a.framebuffers)
	a.framebuffers = FramebufferKey{}
	a.hasFramebuffers = false
}

func (a *resourceArena) releasePipeline() {
	a.hasRecording = false
	if a.pipeline == 0 {
		return
	}
	a.backend.DestroyPipeline(a.pipeline)
	a.pipeline = 0
}

func (a *resourceArena) releaseAll() {
	a.releaseFramebuffers()
	a.releasePipeline()
	if a.renderPass != 0 {
		a.backend.DestroyRenderPass(a.renderPass)
		a.renderPass = 0
		a.renderPassFormat = FormatUndefined
	}
}
