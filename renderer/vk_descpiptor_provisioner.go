package renderer

import (
	vk "github.com/goki/vulkan"

	com "hexil/common"
	"hexil/lifecycle"
	"hexil/model"
)

// DescriptorProvisioner owns the single descriptor set of the tile pipeline. Binding 0 is the canvas settings,
// binding 1 the cell indices. Both buffers live as long as the device, so the set is written once.
type DescriptorProvisioner struct {
	device vk.Device

	layout vk.DescriptorSetLayout
	pool   vk.DescriptorPool
	set    vk.DescriptorSet
}

func NewDescriptorProvisioner(device vk.Device, settings vk.Buffer, indices vk.Buffer) (*DescriptorProvisioner, error) {
	dp := &DescriptorProvisioner{device: device}
	if err := dp.createDescriptorSetLayout(); err != nil {
		dp.Destroy()
		return nil, err
	}
	if err := dp.createDescriptorPool(); err != nil {
		dp.Destroy()
		return nil, err
	}
	if err := dp.createDescriptorSet(settings, indices); err != nil {
		dp.Destroy()
		return nil, err
	}
	return dp, nil
}

// canvasLayoutBindings describes binding 0 (settings) and binding 1 (indices). Neither binding is
// update-after-bind: the buffers have a fixed size and only their contents change, so the set is written once.
func canvasLayoutBindings() []vk.DescriptorSetLayoutBinding {
	settingsBinding := vk.DescriptorSetLayoutBinding{
		Binding:            0, // <- layout(binding = 0) uniform CanvasSettings
		DescriptorType:     vk.DescriptorTypeUniformBuffer,
		DescriptorCount:    1,
		StageFlags:         vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		PImmutableSamplers: nil,
	}
	indicesBinding := vk.DescriptorSetLayoutBinding{
		Binding:            1, // <- layout(binding = 1) uniform CanvasIndices
		DescriptorType:     vk.DescriptorTypeUniformBuffer,
		DescriptorCount:    1,
		StageFlags:         vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		PImmutableSamplers: nil,
	}
	return []vk.DescriptorSetLayoutBinding{settingsBinding, indicesBinding}
}

func (dp *DescriptorProvisioner) createDescriptorSetLayout() error {
	bindings := canvasLayoutBindings()
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		PNext:        nil,
		Flags:        0,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	dsl, err := com.VkCreateDescriptorSetLayout(dp.device, &layoutInfo, nil)
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindPipelineLayout, "CreateDescriptorSetLayout", err)
	}
	dp.layout = dsl
	return nil
}

func (dp *DescriptorProvisioner) createDescriptorPool() error {
	uboPoolSize := vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 2,
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PNext:         nil,
		Flags:         0,
		MaxSets:       1,
		PoolSizeCount: 1,
		PPoolSizes:    []vk.DescriptorPoolSize{uboPoolSize},
	}
	pool, err := com.VkCreateDescriptorPool(dp.device, &poolInfo, nil)
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindPipelineLayout, "CreateDescriptorPool", err)
	}
	dp.pool = pool
	return nil
}

func (dp *DescriptorProvisioner) createDescriptorSet(settings vk.Buffer, indices vk.Buffer) error {
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		PNext:              nil,
		DescriptorPool:     dp.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{dp.layout},
	}
	var set vk.DescriptorSet
	if err := vk.Error(vk.AllocateDescriptorSets(dp.device, &allocInfo, &set)); err != nil {
		return lifecycle.Wrap(lifecycle.KindPipelineLayout, "AllocateDescriptorSets", err)
	}
	dp.set = set

	writes := []vk.WriteDescriptorSet{
		uboWrite(set, 0, settings, model.SettingsBufferSize),
		uboWrite(set, 1, indices, model.IndicesBufferSize),
	}
	vk.UpdateDescriptorSets(dp.device, uint32(len(writes)), writes, 0, nil)
	return nil
}

func uboWrite(set vk.DescriptorSet, binding uint32, buf vk.Buffer, size vk.DeviceSize) vk.WriteDescriptorSet {
	return vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		PNext:           nil,
		DstSet:          set,
		DstBinding:      binding,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PImageInfo:      nil,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: buf,
			Offset: 0,
			Range:  size,
		}},
		PTexelBufferView: nil,
	}
}

// Destroy releases the pool (and with it the set) and the layout.
func (dp *DescriptorProvisioner) Destroy() {
	if dp.pool != vk.DescriptorPool(vk.NullHandle) {
		vk.DestroyDescriptorPool(dp.device, dp.pool, nil)
		dp.pool = vk.DescriptorPool(vk.NullHandle)
	}
	if dp.layout != vk.DescriptorSetLayout(vk.NullHandle) {
		vk.DestroyDescriptorSetLayout(dp.device, dp.layout, nil)
		dp.layout = vk.DescriptorSetLayout(vk.NullHandle)
	}
}
