package model

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestTileMeshesAreClosedFans(t *testing.T) {
	for _, m := range []TileMesh{SquareTile, HexagonTile} {
		if m.Vertices[0].X() != 0 || m.Vertices[0].Y() != 0 {
			t.Errorf("%s: first vertex must be the shared center, got %v", m.Name, m.Vertices[0])
		}
		first, last := m.Vertices[1], m.Vertices[len(m.Vertices)-1]
		if first != last {
			t.Errorf("%s: fan is not closed, first corner %v last corner %v", m.Name, first, last)
		}
	}
	if SquareTile.VertexCount() != 6 {
		t.Errorf("Square tile should have 6 vertices, has %d", SquareTile.VertexCount())
	}
	if HexagonTile.VertexCount() != 8 {
		t.Errorf("Hexagon tile should have 8 vertices, has %d", HexagonTile.VertexCount())
	}
}

func TestTileFor(t *testing.T) {
	if TileFor(GridHexagonal).Name != "hexagon" {
		t.Errorf("Hexagonal grid should use the hexagon tile")
	}
	if TileFor(GridSquare).Name != "square" {
		t.Errorf("Square grid should use the square tile")
	}
}

func TestMeshAtlas(t *testing.T) {
	a := NewMeshAtlas()
	sq := a.Range(GridSquare)
	hex := a.Range(GridHexagonal)
	if sq.First != 0 || sq.Count != 6 {
		t.Errorf("Square range should be [0,6), got %+v", sq)
	}
	if hex.First != 6 || hex.Count != 8 {
		t.Errorf("Hexagon range should be [6,14), got %+v", hex)
	}
	data := a.Bytes()
	if len(data) != 14*VertexStride {
		t.Fatalf("Atlas should hold %d Byte, holds %d", 14*VertexStride, len(data))
	}
	// second vertex of the hexagon: (-0.5, -1)
	off := int(hex.First+1) * VertexStride
	x := math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:]))
	if x != -0.5 || y != -1 {
		t.Errorf("Unexpected hexagon corner in atlas: (%v, %v)", x, y)
	}
}
