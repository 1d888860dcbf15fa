package window

import (
	"log"

	"hexil/lifecycle"
	"hexil/model"
)

// Editor applies editing actions to the shared canvas and reports which render command announces the change.
type Editor struct {
	canvas *lifecycle.CanvasBuffers
}

func NewEditor(canvas *lifecycle.CanvasBuffers) *Editor {
	return &Editor{canvas: canvas}
}

// ToggleGrid switches between square and hexagonal tiles.
func (e *Editor) ToggleGrid() (lifecycle.RenderCommand, error) {
	err := e.canvas.Update(func(c *model.Canvas) error {
		if c.Grid == model.GridSquare {
			c.Grid = model.GridHexagonal
		} else {
			c.Grid = model.GridSquare
		}
		log.Printf("Grid type -> %s", c.Grid)
		return nil
	})
	return lifecycle.CanvasSettingsChanged{}, err
}

// ResizeBy grows or shrinks the canvas by dw columns and dh rows. Sizes below one cell are clamped.
func (e *Editor) ResizeBy(dw, dh int) (lifecycle.RenderCommand, error) {
	err := e.canvas.Update(func(c *model.Canvas) error {
		size := model.CanvasSize{
			Width:  clampCells(int(c.Size.Width) + dw),
			Height: clampCells(int(c.Size.Height) + dh),
		}
		if size == c.Size {
			return nil
		}
		log.Printf("Canvas size %s -> %s", c.Size, size)
		return c.Resize(size)
	})
	return lifecycle.CanvasSettingsChanged{}, err
}

func (e *Editor) Clear() (lifecycle.RenderCommand, error) {
	err := e.canvas.Update(func(c *model.Canvas) error {
		for i := range c.Indices {
			c.Indices[i] = 0
		}
		return nil
	})
	return lifecycle.CanvasIndicesChanged{}, err
}

// FillPattern paints a diagonal stripe pattern over palette indices 0 to paletteSize-1.
func (e *Editor) FillPattern(paletteSize uint32) (lifecycle.RenderCommand, error) {
	if paletteSize == 0 {
		paletteSize = 1
	}
	err := e.canvas.Update(func(c *model.Canvas) error {
		for y := uint32(0); y < c.Size.Height; y++ {
			for x := uint32(0); x < c.Size.Width; x++ {
				if err := c.SetCell(x, y, (x+y)%paletteSize); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return lifecycle.CanvasIndicesChanged{}, err
}

func clampCells(n int) uint32 {
	if n < 1 {
		return 1
	}
	return uint32(n)
}
