package model

import (
	"bytes"
	"encoding/binary"
	"log"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is the size of one tile vertex in the vertex buffer (a single vec2 position).
const VertexStride = 8

// TileMesh is the outline of a single cell drawn as a triangle fan. The first vertex is the shared center and the
// last vertex repeats the first corner to close the fan.
type TileMesh struct {
	Name     string
	Vertices []mgl32.Vec2
}

var SquareTile = TileMesh{
	Name: "square",
	Vertices: []mgl32.Vec2{
		{0, 0},
		{-1, -1},
		{1, -1},
		{1, 1},
		{-1, 1},
		{-1, -1},
	},
}

var HexagonTile = TileMesh{
	Name: "hexagon",
	Vertices: []mgl32.Vec2{
		{0, 0},
		{-0.5, -1},
		{0.5, -1},
		{1, 0},
		{0.5, 1},
		{-0.5, 1},
		{-1, 0},
		{-0.5, -1},
	},
}

func TileFor(g GridType) TileMesh {
	if g == GridHexagonal {
		return HexagonTile
	}
	return SquareTile
}

func (m TileMesh) VertexCount() uint32 {
	return uint32(len(m.Vertices))
}

func (m TileMesh) Bytes() []byte {
	buf := new(bytes.Buffer)
	err := binary.Write(buf, binary.LittleEndian, m.Vertices)
	if err != nil {
		log.Printf("binary.Write of tile mesh %q failed: %v", m.Name, err)
	}
	return buf.Bytes()
}

// MeshRange addresses one tile mesh inside a MeshAtlas, in vertices.
type MeshRange struct {
	First uint32
	Count uint32
}

// MeshAtlas packs every tile mesh into one vertex buffer so a grid type change only needs the draw commands to be
// re-recorded with a different range.
type MeshAtlas struct {
	data   []byte
	ranges map[GridType]MeshRange
}

func NewMeshAtlas() *MeshAtlas {
	a := &MeshAtlas{ranges: map[GridType]MeshRange{}}
	for _, g := range []GridType{GridSquare, GridHexagonal} {
		m := TileFor(g)
		a.ranges[g] = MeshRange{
			First: uint32(len(a.data) / VertexStride),
			Count: m.VertexCount(),
		}
		a.data = append(a.data, m.Bytes()...)
	}
	return a
}

func (a *MeshAtlas) Bytes() []byte {
	return a.data
}

func (a *MeshAtlas) Range(g GridType) MeshRange {
	if r, ok := a.ranges[g]; ok {
		return r
	}
	return a.ranges[GridSquare]
}
