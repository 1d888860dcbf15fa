package lifecycle

// Backend is the graphics API as seen by the lifecycle. Every resource is addressed by an id handed out by the
// lifecycle (swapchain epoch, render pass id, framebuffer key), the backend keeps the API objects behind them.
//
// All methods are called from the render goroutine only.
type Backend interface {
	SurfaceCapabilities() (SurfaceCapabilities, error)

	// CreateSwapchain creates the swapchain for req.Epoch. When req.Parent is not zero the parent swapchain is
	// passed to the API as the old swapchain and retired once the new one exists. It returns the image count.
	CreateSwapchain(req SwapchainRequest) (uint32, error)
	DestroySwapchain(epoch Epoch)

	CreateRenderPass(id RenderPassID, format Format) error
	DestroyRenderPass(id RenderPassID)

	CreateFramebuffers(key FramebufferKey) error
	DestroyFramebuffers(key FramebufferKey)

	// CreatePipeline builds the tile pipeline for a render pass. Shader modules and the tile vertex buffer are
	// shared by every pipeline.
	CreatePipeline(rp RenderPassID) error
	DestroyPipeline(rp RenderPassID)

	// RecordDraws (re-)records one primary command buffer per framebuffer in spec.Framebuffers.
	RecordDraws(spec DrawSpec) error

	// AcquireImage returns the next image index of the swapchain. It reports KindOutOfDate when the swapchain no
	// longer matches the surface.
	AcquireImage(epoch Epoch) (uint32, error)
	SubmitDraw(spec SubmitSpec) error
	// Present reports KindOutOfDate for both out of date and suboptimal swapchains.
	Present(epoch Epoch, image uint32) error

	// SubmitTransfer writes the snapshot into the staging buffers and submits the transfer command buffer on the
	// transfer queue. The previous transfer is waited on before staging memory is touched.
	SubmitTransfer(spec TransferSpec) error

	WaitIdle() error
	Destroy()
}
