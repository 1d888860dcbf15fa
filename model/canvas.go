package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// MaxCells bounds the number of cells a canvas may hold. The tile shader reads the palette indices from a single
// uniform block of uvec4s, this is the amount of uint32 that fit into the 64 KiB block.
const MaxCells = 16384

// ErrCanvasTooLarge is returned whenever a canvas would need more than MaxCells cells.
var ErrCanvasTooLarge = errors.New("canvas exceeds the maximum cell count")

type GridType uint32

const (
	GridSquare GridType = iota
	GridHexagonal
)

func (g GridType) String() string {
	switch g {
	case GridSquare:
		return "square"
	case GridHexagonal:
		return "hexagonal"
	default:
		return fmt.Sprintf("GridType(%d)", uint32(g))
	}
}

// ParseGridType accepts the names produced by GridType.String as well as the short forms "sq" and "hex".
func ParseGridType(s string) (GridType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "square", "sq":
		return GridSquare, nil
	case "hexagonal", "hexagon", "hex":
		return GridHexagonal, nil
	}
	return GridSquare, errors.Errorf("unknown grid type %q", s)
}

type CanvasSize struct {
	Width  uint32
	Height uint32
}

func (s CanvasSize) Area() uint64 {
	return uint64(s.Width) * uint64(s.Height)
}

func (s CanvasSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

func checkSize(size CanvasSize) error {
	if size.Area() == 0 {
		return errors.Errorf("canvas size %s has no cells", size)
	}
	if size.Area() > MaxCells {
		return errors.Wrapf(ErrCanvasTooLarge, "canvas size %s holds %d cells, at most %d are supported", size, size.Area(), MaxCells)
	}
	return nil
}

// Canvas is the host side picture: one palette index per cell, stored row by row.
type Canvas struct {
	Size    CanvasSize
	Grid    GridType
	Indices []uint32
}

func NewCanvas(size CanvasSize, grid GridType) (*Canvas, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	return &Canvas{
		Size:    size,
		Grid:    grid,
		Indices: make([]uint32, size.Area()),
	}, nil
}

func (c *Canvas) offset(x, y uint32) (int, error) {
	if x >= c.Size.Width || y >= c.Size.Height {
		return 0, errors.Errorf("cell (%d,%d) is outside of the %s canvas", x, y, c.Size)
	}
	return int(y)*int(c.Size.Width) + int(x), nil
}

func (c *Canvas) Cell(x, y uint32) (uint32, error) {
	i, err := c.offset(x, y)
	if err != nil {
		return 0, err
	}
	return c.Indices[i], nil
}

func (c *Canvas) SetCell(x, y, paletteIdx uint32) error {
	i, err := c.offset(x, y)
	if err != nil {
		return err
	}
	c.Indices[i] = paletteIdx
	return nil
}

// Resize changes the canvas dimensions keeping every cell that exists in both the old and the new size. New cells
// start out with palette index 0.
func (c *Canvas) Resize(size CanvasSize) error {
	if err := checkSize(size); err != nil {
		return err
	}
	resized := make([]uint32, size.Area())
	for y := uint32(0); y < min(size.Height, c.Size.Height); y++ {
		for x := uint32(0); x < min(size.Width, c.Size.Width); x++ {
			resized[y*size.Width+x] = c.Indices[y*c.Size.Width+x]
		}
	}
	c.Size = size
	c.Indices = resized
	return nil
}

func (c *Canvas) Clone() *Canvas {
	indices := make([]uint32, len(c.Indices))
	copy(indices, c.Indices)
	return &Canvas{
		Size:    c.Size,
		Grid:    c.Grid,
		Indices: indices,
	}
}
