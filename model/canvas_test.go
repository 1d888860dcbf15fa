package model

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
)

func TestNewCanvas(t *testing.T) {
	c, err := NewCanvas(CanvasSize{Width: 20, Height: 15}, GridSquare)
	if err != nil {
		t.Fatalf("Error creating 20x15 canvas: %s", err)
	}
	if len(c.Indices) != 300 {
		t.Errorf("20x15 canvas should hold %d cells but holds %d", 300, len(c.Indices))
	}

	if _, err = NewCanvas(CanvasSize{Width: 0, Height: 15}, GridSquare); err == nil {
		t.Errorf("Should not be able to create a canvas without cells")
	}
	_, err = NewCanvas(CanvasSize{Width: 1000, Height: 1000}, GridHexagonal)
	if errors.Cause(err) != ErrCanvasTooLarge {
		t.Errorf("Expected ErrCanvasTooLarge for a 1000x1000 canvas, got: %v", err)
	}
}

func TestCanvasCells(t *testing.T) {
	c, _ := NewCanvas(CanvasSize{Width: 4, Height: 3}, GridSquare)
	if err := c.SetCell(3, 2, 7); err != nil {
		t.Fatalf("Error setting cell (3,2): %s", err)
	}
	if c.Indices[11] != 7 {
		t.Errorf("Cell (3,2) should be stored at offset 11, indices: %v", c.Indices)
	}
	v, err := c.Cell(3, 2)
	if err != nil || v != 7 {
		t.Errorf("Cell (3,2) should read back 7, got %d (%v)", v, err)
	}
	if err = c.SetCell(4, 0, 1); err == nil {
		t.Errorf("Setting a cell outside of the canvas should fail")
	}
	if _, err = c.Cell(0, 3); err == nil {
		t.Errorf("Reading a cell outside of the canvas should fail")
	}
}

func TestCanvasResizeKeepsOverlap(t *testing.T) {
	c, _ := NewCanvas(CanvasSize{Width: 3, Height: 3}, GridSquare)
	_ = c.SetCell(1, 1, 5)
	_ = c.SetCell(2, 2, 9)

	if err := c.Resize(CanvasSize{Width: 2, Height: 4}); err != nil {
		t.Fatalf("Error resizing canvas: %s", err)
	}
	if v, _ := c.Cell(1, 1); v != 5 {
		t.Errorf("Cell (1,1) should survive the resize, got %d", v)
	}
	if len(c.Indices) != 8 {
		t.Errorf("2x4 canvas should hold 8 cells, holds %d", len(c.Indices))
	}
	if v, _ := c.Cell(1, 3); v != 0 {
		t.Errorf("New cells should start at palette index 0, got %d", v)
	}
}

func TestCanvasClone(t *testing.T) {
	c, _ := NewCanvas(CanvasSize{Width: 2, Height: 2}, GridHexagonal)
	clone := c.Clone()
	_ = c.SetCell(0, 0, 3)
	if v, _ := clone.Cell(0, 0); v != 0 {
		t.Errorf("Clone must not share index storage with its origin")
	}
	if clone.Grid != GridHexagonal {
		t.Errorf("Clone should keep the grid type")
	}
}

func TestSettingsBytes(t *testing.T) {
	c, _ := NewCanvas(CanvasSize{Width: 20, Height: 15}, GridHexagonal)
	b := c.Settings().Bytes()
	if len(b) != SettingsBufferSize {
		t.Fatalf("Settings block should be %d Byte, is %d", SettingsBufferSize, len(b))
	}
	want := []uint32{20, 15, uint32(GridHexagonal), 300}
	for i, w := range want {
		if got := binary.LittleEndian.Uint32(b[i*4:]); got != w {
			t.Errorf("Settings word %d should be %d but was %d", i, w, got)
		}
	}
}

func TestIndexBytes(t *testing.T) {
	c, _ := NewCanvas(CanvasSize{Width: 3, Height: 2}, GridSquare)
	_ = c.SetCell(1, 1, 42)
	b := c.IndexBytes()
	if len(b) != IndicesBufferSize {
		t.Fatalf("Index block should always be %d Byte, is %d", IndicesBufferSize, len(b))
	}
	if got := binary.LittleEndian.Uint32(b[4*4:]); got != 42 {
		t.Errorf("Cell 4 should hold palette index 42, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(b[6*4:]); got != 0 {
		t.Errorf("Padding after the last cell should be zero, got %d", got)
	}
}

func TestParseGridType(t *testing.T) {
	cases := map[string]GridType{
		"square":    GridSquare,
		"SQ":        GridSquare,
		"hex":       GridHexagonal,
		"hexagonal": GridHexagonal,
	}
	for in, want := range cases {
		got, err := ParseGridType(in)
		if err != nil || got != want {
			t.Errorf("ParseGridType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseGridType("triangle"); err == nil {
		t.Errorf("ParseGridType should reject unknown grid types")
	}
}
