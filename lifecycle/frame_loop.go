package lifecycle

import (
	"context"
	"log"

	"hexil/model"
)

type Options struct {
	// OnFirstFrame runs once, right after the first swapchain and its dependents have been built. The window is
	// shown from here.
	OnFirstFrame func()
	// Atlas defaults to model.NewMeshAtlas(). It has to match the vertex buffer the backend uploaded.
	Atlas *model.MeshAtlas
}

// FrameLoop is the render goroutine's state. It is not safe for concurrent use, commands reach it through Run.
type FrameLoop struct {
	backend   Backend
	canvas    *CanvasBuffers
	swapchain *SwapchainManager
	res       *resourceArena
	atlas     *model.MeshAtlas

	settings        model.CanvasSettings
	transferPending bool

	stats   frameStats
	onReady func()
	ready   bool
}

func NewFrameLoop(backend Backend, sel DeviceSelection, canvas *CanvasBuffers, opts Options) *FrameLoop {
	atlas := opts.Atlas
	if atlas == nil {
		atlas = model.NewMeshAtlas()
	}
	return &FrameLoop{
		backend:   backend,
		canvas:    canvas,
		swapchain: NewSwapchainManager(backend, sel),
		res:       newResourceArena(backend),
		atlas:     atlas,
		onReady:   opts.OnFirstFrame,
	}
}

func (f *FrameLoop) Swapchain() *SwapchainManager {
	return f.swapchain
}

// Run uploads the canvas and then handles commands until Shutdown, a fatal error, ctx being done or the command
// channel closing. GPU resources created by the loop are released before Run returns; destroying the backend is
// left to the caller.
func (f *FrameLoop) Run(ctx context.Context, commands <-chan RenderCommand) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR Render goroutine panicked: %v", r)
			err = Errorf(KindExecution, "FrameLoop.Run", "panic: %v", r)
		}
		f.teardown()
	}()

	if err := f.uploadCanvas(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			log.Printf("Render context done: %v", ctx.Err())
			return nil
		case cmd, ok := <-commands:
			if !ok {
				log.Printf("ERROR Inter-thread communication failure!")
				return Errorf(KindChannel, "FrameLoop.Run", "command channel closed without Shutdown")
			}
			stop, err := f.Handle(cmd)
			if err != nil {
				log.Printf("ERROR %v failed: %+v", cmd, err)
				return err
			}
			if stop {
				return nil
			}
		}
	}
}

// Handle processes a single command. stop is true once the loop has to end.
func (f *FrameLoop) Handle(cmd RenderCommand) (stop bool, err error) {
	switch c := cmd.(type) {
	case Redraw:
		return false, f.redraw()
	case WindowResized:
		f.swapchain.Resize(c.Extent())
		return false, f.ensureSwapchain()
	case CanvasSettingsChanged, CanvasIndicesChanged:
		return false, f.uploadCanvas()
	case Shutdown:
		log.Printf("Shutdown requested")
		return true, nil
	default:
		log.Printf("WARN Ignoring unknown render command %v", cmd)
		return false, nil
	}
}

func (f *FrameLoop) drawParams() drawParams {
	r := f.atlas.Range(model.GridType(f.settings.Grid))
	return drawParams{
		FirstVertex:   r.First,
		VertexCount:   r.Count,
		InstanceCount: f.settings.Cells,
	}
}

// ensureSwapchain brings the swapchain in line with the window and rebuilds whatever depends on it.
func (f *FrameLoop) ensureSwapchain() error {
	if f.swapchain.NeedsTeardown() {
		if err := f.backend.WaitIdle(); err != nil {
			return ensureKind(KindExecution, "WaitIdle", err)
		}
		f.res.releaseFramebuffers()
		f.swapchain.Destroy()
		return nil
	}
	if !f.swapchain.NeedsBuild() {
		return nil
	}

	// the parent swapchain stays alive until the new one exists, its framebuffers don't
	if err := f.backend.WaitIdle(); err != nil {
		return ensureKind(KindExecution, "WaitIdle", err)
	}
	f.res.releaseFramebuffers()
	info, built, err := f.swapchain.Build()
	if err != nil {
		return err
	}
	if !built {
		// the surface has no area, a stale swapchain must not be drawn to anymore
		f.swapchain.Destroy()
		return nil
	}
	if err := f.res.sync(info, f.drawParams()); err != nil {
		return err
	}
	if !f.ready {
		f.ready = true
		if f.onReady != nil {
			f.onReady()
		}
	}
	return nil
}

func (f *FrameLoop) redraw() error {
	if err := f.ensureSwapchain(); err != nil {
		return err
	}
	info, ok := f.swapchain.Current()
	if !ok {
		return nil
	}
	if err := f.res.sync(info, f.drawParams()); err != nil {
		return err
	}

	start := f.stats.start()
	image, err := f.backend.AcquireImage(info.Epoch)
	if IsOutOfDate(err) {
		f.swapchain.MarkStale()
		f.stats.drop()
		return nil
	} else if err != nil {
		return ensureKind(KindSwapchain, "AcquireImage", err)
	}

	err = f.backend.SubmitDraw(SubmitSpec{
		Swapchain:    info.Epoch,
		Image:        image,
		WaitTransfer: f.transferPending,
	})
	if err != nil {
		return ensureKind(KindExecution, "SubmitDraw", err)
	}
	f.transferPending = false

	err = f.backend.Present(info.Epoch, image)
	if IsOutOfDate(err) {
		log.Printf("Attempted to swap on out of date swapchain. Retrying...")
		f.swapchain.MarkStale()
		f.stats.drop()
		return nil
	} else if err != nil {
		return ensureKind(KindSwapchain, "Present", err)
	}
	f.stats.done(start)
	return nil
}

// uploadCanvas pushes a snapshot of the canvas to the device and re-records the draws if the cell count or grid
// type changed.
func (f *FrameLoop) uploadCanvas() error {
	snap := f.canvas.Snapshot()
	info, hasSwapchain := f.swapchain.Current()
	if !hasSwapchain {
		log.Printf("WARN Uploading canvas without a swapchain")
	}

	err := f.backend.SubmitTransfer(TransferSpec{
		Settings: snap.SettingsBytes,
		Indices:  snap.IndexBytes,
		Chain:    f.transferPending,
	})
	if err != nil {
		return ensureKind(KindExecution, "SubmitTransfer", err)
	}
	f.transferPending = true

	if snap.Settings == f.settings {
		return nil
	}
	f.settings = snap.Settings
	log.Printf("Canvas is now %dx%d cells, %s grid", snap.Settings.Width, snap.Settings.Height,
		model.GridType(snap.Settings.Grid))
	if hasSwapchain && f.swapchain.State() == SwapchainValid {
		return f.res.sync(info, f.drawParams())
	}
	return nil
}

func (f *FrameLoop) teardown() {
	if err := f.backend.WaitIdle(); err != nil {
		log.Printf("WARN WaitIdle during teardown failed: %v", err)
	}
	f.res.releaseAll()
	f.swapchain.Destroy()
	f.stats.log()
}
