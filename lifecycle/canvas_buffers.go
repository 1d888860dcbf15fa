package lifecycle

import (
	"sync"

	"github.com/pkg/errors"

	"hexil/model"
)

// CanvasBuffers guards the host side canvas shared between the editing side and the render goroutine. The editor
// mutates it through Update and then sends CanvasSettingsChanged or CanvasIndicesChanged, the render goroutine
// only ever reads Snapshots.
type CanvasBuffers struct {
	mu     sync.Mutex
	canvas *model.Canvas
}

// CanvasSnapshot is a point in time copy of the canvas in the layout of the two uniform blocks.
type CanvasSnapshot struct {
	Settings      model.CanvasSettings
	SettingsBytes []byte
	IndexBytes    []byte
}

func NewCanvasBuffers(canvas *model.Canvas) *CanvasBuffers {
	return &CanvasBuffers{canvas: canvas}
}

// Update runs fn with exclusive access to the canvas. When fn fails the canvas is left as it was before the call.
func (b *CanvasBuffers) Update(fn func(c *model.Canvas) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	work := b.canvas.Clone()
	if err := fn(work); err != nil {
		if errors.Is(err, model.ErrCanvasTooLarge) {
			return Wrap(KindCanvasTooLarge, "CanvasBuffers.Update", err)
		}
		return err
	}
	if len(work.Indices) > model.MaxCells {
		return Errorf(KindCanvasTooLarge, "CanvasBuffers.Update", "canvas holds %d cells, at most %d are supported",
			len(work.Indices), model.MaxCells)
	}
	b.canvas = work
	return nil
}

// Canvas returns a copy of the current canvas.
func (b *CanvasBuffers) Canvas() *model.Canvas {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canvas.Clone()
}

func (b *CanvasBuffers) Snapshot() CanvasSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	settings := b.canvas.Settings()
	return CanvasSnapshot{
		Settings:      settings,
		SettingsBytes: settings.Bytes(),
		IndexBytes:    b.canvas.IndexBytes(),
	}
}
