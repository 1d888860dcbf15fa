// Package shaders holds the GLSL sources of the tile pipeline. The compiled SPIR-V is what the renderer loads at
// runtime (config defaults shaders/tile.vert.spv and shaders/tile.frag.spv).
package shaders

//go:generate glslc tile.vert -o tile.vert.spv
//go:generate glslc tile.frag -o tile.frag.spv
