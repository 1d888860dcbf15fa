package lifecycle

import (
	"context"
	"strings"
	"testing"
	"time"

	"hexil/model"
)

func newTestLoop(t *testing.T, b *fakeBackend) (*FrameLoop, *CanvasBuffers) {
	canvas, err := model.NewCanvas(model.CanvasSize{Width: 20, Height: 15}, model.GridSquare)
	if err != nil {
		t.Fatalf("NewCanvas failed: %s", err)
	}
	buffers := NewCanvasBuffers(canvas)
	loop := NewFrameLoop(b, DeviceSelection{MailboxSupported: true}, buffers, Options{})
	if err := loop.uploadCanvas(); err != nil {
		t.Fatalf("Initial upload failed: %s", err)
	}
	return loop, buffers
}

func handle(t *testing.T, loop *FrameLoop, cmds ...RenderCommand) {
	t.Helper()
	for _, cmd := range cmds {
		if _, err := loop.Handle(cmd); err != nil {
			t.Fatalf("%v failed: %+v", cmd, err)
		}
	}
}

func checkLifetimes(t *testing.T, b *fakeBackend) {
	t.Helper()
	for _, e := range b.lifetimeErr {
		t.Errorf("Lifetime violation: %s", e)
	}
}

func TestResizeThenRedraw(t *testing.T) {
	b := newFakeBackend(800, 600)
	loop, _ := newTestLoop(t, b)

	handle(t, loop, WindowResized{Width: 800, Height: 600}, Redraw{})
	if b.presents != 1 {
		t.Fatalf("Expected one presented frame, got %d", b.presents)
	}
	rec := b.records[len(b.records)-1]
	if rec.Extent != (Extent{Width: 800, Height: 600}) {
		t.Errorf("Draws recorded for %s", rec.Extent)
	}
	if rec.VertexCount != model.SquareTile.VertexCount() || rec.InstanceCount != 300 {
		t.Errorf("Expected %d vertices x 300 instances, got %d x %d",
			model.SquareTile.VertexCount(), rec.VertexCount, rec.InstanceCount)
	}

	b.resize(1024, 768)
	handle(t, loop, WindowResized{Width: 1024, Height: 768}, Redraw{})
	info, ok := loop.Swapchain().Current()
	if !ok || info.Extent != (Extent{Width: 1024, Height: 768}) || info.Epoch != 2 {
		t.Errorf("Expected epoch 2 at 1024x768, got %+v", info)
	}
	rec = b.records[len(b.records)-1]
	if rec.Framebuffers.Swapchain != 2 || rec.Extent != info.Extent {
		t.Errorf("Draws not re-recorded for the new swapchain: %+v", rec)
	}
	if b.presents != 2 {
		t.Errorf("Expected two presented frames, got %d", b.presents)
	}
	checkLifetimes(t, b)
}

func TestRenderPassSurvivesSameFormat(t *testing.T) {
	b := newFakeBackend(800, 600)
	loop, _ := newTestLoop(t, b)

	handle(t, loop, WindowResized{Width: 800, Height: 600}, Redraw{})
	for _, size := range []Extent{{640, 480}, {1280, 720}, {300, 300}} {
		b.resize(size.Width, size.Height)
		handle(t, loop, WindowResized{Width: size.Width, Height: size.Height}, Redraw{})
	}
	if n := b.count("CreateRenderPass"); n != 1 {
		t.Errorf("Render pass created %d times for one format", n)
	}
	if n := b.count("CreatePipeline"); n != 1 {
		t.Errorf("Pipeline created %d times for one render pass", n)
	}
	if n := b.count("CreateFramebuffers"); n != 4 {
		t.Errorf("Expected framebuffers for each of the 4 swapchains, got %d", n)
	}
	checkLifetimes(t, b)
}

func TestFormatChangeRebuildsRenderPass(t *testing.T) {
	b := newFakeBackend(800, 600)
	loop, _ := newTestLoop(t, b)
	handle(t, loop, WindowResized{Width: 800, Height: 600}, Redraw{})

	b.caps.Formats = []SurfaceFormat{{Format: FormatR8g8b8a8Srgb, ColorSpace: ColorSpaceSrgbNonlinear}}
	loop.Swapchain().MarkStale()
	handle(t, loop, Redraw{})

	if n := b.count("CreateRenderPass"); n != 2 {
		t.Errorf("Expected a second render pass after the format change, got %d", n)
	}
	if n := b.count("DestroyPipeline 1"); n != 1 {
		t.Errorf("The pipeline of the old render pass should be destroyed once, got %d", n)
	}
	if _, ok := b.renderPasses[1]; ok {
		t.Errorf("Render pass 1 should be gone")
	}
	if b.renderPasses[2] != FormatR8g8b8a8Srgb {
		t.Errorf("Render pass 2 has the wrong format")
	}
	checkLifetimes(t, b)
}

func TestAcquireOutOfDateSkipsFrame(t *testing.T) {
	b := newFakeBackend(800, 600)
	loop, _ := newTestLoop(t, b)
	handle(t, loop, WindowResized{Width: 800, Height: 600})

	b.acquireErr = []error{Errorf(KindOutOfDate, "AcquireNextImage", "out of date")}
	handle(t, loop, Redraw{})
	if b.presents != 0 || len(b.submits) != 0 {
		t.Errorf("A frame with an out of date acquire must not be submitted")
	}
	if loop.Swapchain().State() != SwapchainStale {
		t.Errorf("Expected stale, got %s", loop.Swapchain().State())
	}

	handle(t, loop, Redraw{})
	info, _ := loop.Swapchain().Current()
	if info.Epoch != 2 || b.presents != 1 {
		t.Errorf("Next redraw should recreate and present, epoch %d presents %d", info.Epoch, b.presents)
	}
	checkLifetimes(t, b)
}

func TestPresentOutOfDateRetries(t *testing.T) {
	buf := captureLog(t)
	b := newFakeBackend(800, 600)
	loop, _ := newTestLoop(t, b)
	handle(t, loop, WindowResized{Width: 800, Height: 600})

	b.presentErr = []error{Errorf(KindOutOfDate, "QueuePresent", "suboptimal")}
	handle(t, loop, Redraw{})
	if !strings.Contains(buf.String(), "Attempted to swap on out of date swapchain. Retrying...") {
		t.Errorf("Missing retry log line")
	}
	if loop.Swapchain().State() != SwapchainStale {
		t.Errorf("Expected stale, got %s", loop.Swapchain().State())
	}
	handle(t, loop, Redraw{})
	if b.presents != 1 {
		t.Errorf("Expected the retry to present, got %d", b.presents)
	}
}

func TestPresentFailureIsFatal(t *testing.T) {
	b := newFakeBackend(800, 600)
	loop, _ := newTestLoop(t, b)
	handle(t, loop, WindowResized{Width: 800, Height: 600})

	b.presentErr = []error{Errorf(KindExecution, "QueuePresent", "device lost")}
	_, err := loop.Handle(Redraw{})
	if !IsKind(err, KindExecution) {
		t.Errorf("Expected a fatal execution error, got %v", err)
	}
}

func TestRedrawWithoutWindowArea(t *testing.T) {
	b := newFakeBackend(800, 600)
	loop, _ := newTestLoop(t, b)

	handle(t, loop, Redraw{})
	if b.count("AcquireImage") != 0 {
		t.Errorf("Nothing should be acquired without a swapchain")
	}

	handle(t, loop, WindowResized{Width: 800, Height: 600}, Redraw{})
	b.resize(0, 0)
	handle(t, loop, WindowResized{}, Redraw{})
	if loop.Swapchain().State() != SwapchainAbsent {
		t.Errorf("Minimized window should leave no swapchain, got %s", loop.Swapchain().State())
	}
	if len(b.swapchains) != 0 || len(b.framebuffers) != 0 {
		t.Errorf("Resources left while minimized: %s", b.live())
	}
	if b.presents != 1 {
		t.Errorf("Expected exactly one presented frame, got %d", b.presents)
	}

	b.resize(800, 600)
	handle(t, loop, WindowResized{Width: 800, Height: 600}, Redraw{})
	if b.presents != 2 {
		t.Errorf("Restoring should present again, got %d", b.presents)
	}
	checkLifetimes(t, b)
}

func TestStaleSwapchainOnZeroSurface(t *testing.T) {
	b := newFakeBackend(800, 600)
	loop, _ := newTestLoop(t, b)
	handle(t, loop, WindowResized{Width: 800, Height: 600})
	records := len(b.records)

	// minimized between the failed acquire and the rebuild
	b.acquireErr = []error{Errorf(KindOutOfDate, "AcquireNextImage", "out of date")}
	handle(t, loop, Redraw{})
	b.resize(0, 0)
	handle(t, loop, Redraw{})

	if loop.Swapchain().State() != SwapchainAbsent {
		t.Errorf("Expected absent, got %s", loop.Swapchain().State())
	}
	if n := b.count("AcquireImage"); n != 1 {
		t.Errorf("Nothing should be acquired on a zero area surface, got %d acquires", n)
	}
	if len(b.submits) != 0 || b.presents != 0 {
		t.Errorf("Nothing should be submitted or presented, got %d submits and %d presents", len(b.submits), b.presents)
	}
	if len(b.records) != records {
		t.Errorf("Draws re-recorded for a stale swapchain")
	}
	if len(b.swapchains) != 0 || len(b.framebuffers) != 0 {
		t.Errorf("Resources left on a zero area surface: %s", b.live())
	}

	b.resize(800, 600)
	handle(t, loop, WindowResized{Width: 800, Height: 600}, Redraw{})
	if b.presents != 1 {
		t.Errorf("Restoring should present again, got %d", b.presents)
	}
	checkLifetimes(t, b)
}

func TestTransferBeforeRedrawIsWaitedOn(t *testing.T) {
	b := newFakeBackend(800, 600)
	loop, buffers := newTestLoop(t, b)
	handle(t, loop, WindowResized{Width: 800, Height: 600}, Redraw{})

	// the initial upload is consumed by the first frame
	if !b.submits[0].WaitTransfer {
		t.Errorf("First draw should wait on the initial transfer")
	}

	err := buffers.Update(func(c *model.Canvas) error { return c.SetCell(1, 1, 7) })
	if err != nil {
		t.Fatalf("Update failed: %s", err)
	}
	handle(t, loop, CanvasIndicesChanged{}, CanvasIndicesChanged{}, Redraw{}, Redraw{})

	if n := len(b.transfers); n != 3 {
		t.Fatalf("Expected 3 transfers, got %d", n)
	}
	if b.transfers[1].Chain || !b.transfers[2].Chain {
		t.Errorf("Only the second of two back to back transfers should chain: %t %t",
			b.transfers[1].Chain, b.transfers[2].Chain)
	}
	if !b.submits[1].WaitTransfer || b.submits[2].WaitTransfer {
		t.Errorf("Only the first draw after a transfer should wait on it: %t %t",
			b.submits[1].WaitTransfer, b.submits[2].WaitTransfer)
	}
	idx := b.transfers[2].Indices
	if len(idx) != model.IndicesBufferSize || idx[(1*20+1)*4] != 7 {
		t.Errorf("Transfer did not carry the updated cell")
	}
}

func TestCanvasSettingsChangeRerecords(t *testing.T) {
	b := newFakeBackend(800, 600)
	loop, buffers := newTestLoop(t, b)
	handle(t, loop, WindowResized{Width: 800, Height: 600}, Redraw{})
	records := len(b.records)

	// indices only: nothing to re-record
	handle(t, loop, CanvasIndicesChanged{})
	if len(b.records) != records {
		t.Errorf("An index change should not re-record draws")
	}

	err := buffers.Update(func(c *model.Canvas) error {
		c.Grid = model.GridHexagonal
		return c.Resize(model.CanvasSize{Width: 10, Height: 10})
	})
	if err != nil {
		t.Fatalf("Update failed: %s", err)
	}
	handle(t, loop, CanvasSettingsChanged{})
	if len(b.records) != records+1 {
		t.Fatalf("A settings change should re-record draws once, got %d new", len(b.records)-records)
	}
	rec := b.records[len(b.records)-1]
	hex := model.NewMeshAtlas().Range(model.GridHexagonal)
	if rec.FirstVertex != hex.First || rec.VertexCount != hex.Count || rec.InstanceCount != 100 {
		t.Errorf("Expected hexagon range %+v x 100, got %+v", hex, rec)
	}
	if b.count("CreatePipeline") != 1 {
		t.Errorf("A grid change must not rebuild the pipeline")
	}
	checkLifetimes(t, b)
}

func TestCanvasUploadWithoutSwapchain(t *testing.T) {
	buf := captureLog(t)
	b := newFakeBackend(800, 600)
	loop, _ := newTestLoop(t, b)

	handle(t, loop, CanvasIndicesChanged{})
	if len(b.transfers) != 2 {
		t.Errorf("Uploads must happen without a swapchain, got %d", len(b.transfers))
	}
	if !strings.Contains(buf.String(), "WARN Uploading canvas without a swapchain") {
		t.Errorf("Missing warning")
	}
}

func TestRunShutdown(t *testing.T) {
	b := newFakeBackend(800, 600)
	canvas, _ := model.NewCanvas(model.CanvasSize{Width: 4, Height: 4}, model.GridSquare)
	ready := 0
	loop := NewFrameLoop(b, DeviceSelection{}, NewCanvasBuffers(canvas), Options{
		OnFirstFrame: func() { ready++ },
	})

	commands := make(chan RenderCommand, 8)
	commands <- WindowResized{Width: 800, Height: 600}
	commands <- Redraw{}
	commands <- Redraw{}
	commands <- Shutdown{}

	if err := loop.Run(context.Background(), commands); err != nil {
		t.Fatalf("Run returned %+v", err)
	}
	if ready != 1 {
		t.Errorf("OnFirstFrame should run exactly once, ran %d times", ready)
	}
	if b.presents != 2 {
		t.Errorf("Expected 2 frames, got %d", b.presents)
	}
	if len(b.swapchains)+len(b.renderPasses)+len(b.framebuffers)+len(b.pipelines) != 0 {
		t.Errorf("Resources left after shutdown: %s", b.live())
	}
	if b.count("Destroy") != 0 {
		t.Errorf("Destroying the backend is the caller's job")
	}
	checkLifetimes(t, b)
}

func TestRunClosedChannel(t *testing.T) {
	buf := captureLog(t)
	b := newFakeBackend(800, 600)
	loop, _ := newTestLoop(t, b)

	commands := make(chan RenderCommand)
	close(commands)
	err := loop.Run(context.Background(), commands)
	if !IsKind(err, KindChannel) {
		t.Errorf("Expected KindChannel, got %v", err)
	}
	if !strings.Contains(buf.String(), "Inter-thread communication failure!") {
		t.Errorf("Missing channel failure log line")
	}
}

func TestRunContextCancel(t *testing.T) {
	b := newFakeBackend(800, 600)
	loop, _ := newTestLoop(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	commands := make(chan RenderCommand)
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx, commands) }()

	commands <- WindowResized{Width: 800, Height: 600}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Cancellation should behave like Shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if len(b.swapchains) != 0 {
		t.Errorf("Swapchain left after cancel: %s", b.live())
	}
}
