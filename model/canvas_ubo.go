package model

import (
	"bytes"
	"encoding/binary"
	"log"
)

// Sizes of the two uniform blocks the tile vertex shader reads. They are fixed so the device side buffers and the
// transfer command copying into them never need to be rebuilt when the canvas changes.
const (
	SettingsBufferSize = 16
	IndicesBufferSize  = MaxCells * 4
)

// CanvasSettings mirrors the std140 'CanvasSettings' block at binding 0:
//
//	uvec2 size; uint grid; uint cells;
type CanvasSettings struct {
	Width  uint32
	Height uint32
	Grid   uint32
	Cells  uint32
}

func (c *Canvas) Settings() CanvasSettings {
	return CanvasSettings{
		Width:  c.Size.Width,
		Height: c.Size.Height,
		Grid:   uint32(c.Grid),
		Cells:  uint32(c.Size.Area()),
	}
}

// Bytes returns the little endian block layout ready for vk.Memcopy.
func (s CanvasSettings) Bytes() []byte {
	buf := new(bytes.Buffer)
	err := binary.Write(buf, binary.LittleEndian, s)
	if err != nil {
		log.Printf("binary.Write of canvas settings failed: %v", err)
	}
	return buf.Bytes()
}

// IndexBytes packs the palette indices into the 'CanvasIndices' block at binding 1 (uvec4 indices[MaxCells/4]).
// Index i lives in component i%4 of vector i/4, which is the same as a tightly packed uint32 array. The result is
// always IndicesBufferSize long, unused cells are zero.
func (c *Canvas) IndexBytes() []byte {
	out := make([]byte, IndicesBufferSize)
	for i, idx := range c.Indices {
		binary.LittleEndian.PutUint32(out[i*4:], idx)
	}
	return out
}
