package renderer

import (
	"testing"

	vk "github.com/goki/vulkan"

	"hexil/model"
)

func TestCanvasLayoutBindings(t *testing.T) {
	bindings := canvasLayoutBindings()
	if len(bindings) != 2 {
		t.Fatalf("Expected 2 bindings, got %d", len(bindings))
	}
	for i, b := range bindings {
		if b.Binding != uint32(i) {
			t.Errorf("Binding %d has number %d", i, b.Binding)
		}
		if b.DescriptorType != vk.DescriptorTypeUniformBuffer || b.DescriptorCount != 1 {
			t.Errorf("Binding %d is not a single uniform buffer: %+v", i, b)
		}
		if b.StageFlags != vk.ShaderStageFlags(vk.ShaderStageVertexBit) {
			t.Errorf("Binding %d should only be visible to the vertex stage", i)
		}
	}
}

func TestUboWriteCoversWholeBuffer(t *testing.T) {
	w := uboWrite(vk.DescriptorSet(vk.NullHandle), 1, vk.NullBuffer, model.IndicesBufferSize)
	if w.DstBinding != 1 || w.DescriptorType != vk.DescriptorTypeUniformBuffer {
		t.Errorf("Unexpected write %+v", w)
	}
	if len(w.PBufferInfo) != 1 || w.PBufferInfo[0].Offset != 0 || w.PBufferInfo[0].Range != model.IndicesBufferSize {
		t.Errorf("Write should cover the whole indices buffer, got %+v", w.PBufferInfo)
	}
}
