// Package lifecycle drives the renderer: it owns the swapchain state machine, keeps track of which dependent GPU
// resources belong to which swapchain generation and runs the frame loop that consumes render commands coming from
// the window thread. All GPU work goes through a Backend so the whole lifecycle can run without a GPU.
package lifecycle

import "fmt"

// RenderCommand is one message from the window thread to the render goroutine.
type RenderCommand interface {
	fmt.Stringer
	renderCommand()
}

type Redraw struct{}

// WindowResized carries the new window size in physical pixels.
type WindowResized struct {
	Width  uint32
	Height uint32
}

type Shutdown struct{}

type CanvasSettingsChanged struct{}

type CanvasIndicesChanged struct{}

func (Redraw) renderCommand()                {}
func (WindowResized) renderCommand()         {}
func (Shutdown) renderCommand()              {}
func (CanvasSettingsChanged) renderCommand() {}
func (CanvasIndicesChanged) renderCommand()  {}

func (Redraw) String() string                { return "Redraw" }
func (Shutdown) String() string              { return "Shutdown" }
func (CanvasSettingsChanged) String() string { return "CanvasSettingsChanged" }
func (CanvasIndicesChanged) String() string  { return "CanvasIndicesChanged" }

func (w WindowResized) String() string {
	return fmt.Sprintf("WindowResized(%dx%d)", w.Width, w.Height)
}

func (w WindowResized) Extent() Extent {
	return Extent{Width: w.Width, Height: w.Height}
}
