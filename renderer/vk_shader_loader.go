package renderer

import (
	"encoding/binary"
	"log"
	"os"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"

	com "hexil/common"
	"hexil/lifecycle"
)

const shaderEntryPoint = "main"

const (
	spirvMagic         = 0x07230203
	spirvHeaderWords   = 5
	spirvOpEntryPoint  = 15
	spirvEntryNameWord = 3
)

// loadShaders creates both shader modules once, every pipeline shares them.
func (c *Core) loadShaders() error {
	var err error
	c.vertShader, err = loadShaderModule(c.device.D, c.opts.VertexShader)
	if err != nil {
		return err
	}
	log.Printf("Created vertex shader module from %s", c.opts.VertexShader)
	c.fragShader, err = loadShaderModule(c.device.D, c.opts.FragmentShader)
	if err != nil {
		return err
	}
	log.Printf("Created fragment shader module from %s", c.opts.FragmentShader)
	return nil
}

func (c *Core) shaderStages() []vk.PipelineShaderStageCreateInfo {
	return []vk.PipelineShaderStageCreateInfo{
		shaderStage(vk.ShaderStageVertexBit, c.vertShader),
		shaderStage(vk.ShaderStageFragmentBit, c.fragShader),
	}
}

func shaderStage(stage vk.ShaderStageFlagBits, mod vk.ShaderModule) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:               vk.StructureTypePipelineShaderStageCreateInfo,
		PNext:               nil,
		Flags:               0,
		Stage:               stage,
		Module:              mod,
		PName:               com.TerminatedStr(shaderEntryPoint), // entrypoint -> function name in the shader
		PSpecializationInfo: nil,
	}
}

// DeleteShaderMod discards a shader module.
func DeleteShaderMod(d vk.Device, mod vk.ShaderModule) {
	vk.DestroyShaderModule(d, mod, nil)
}

func loadShaderModule(d vk.Device, shaderFile string) (vk.ShaderModule, error) {
	shaderCodeB, err := os.ReadFile(shaderFile)
	if err != nil {
		return vk.NullShaderModule, lifecycle.Wrap(lifecycle.KindPipelineLayout, "ReadShader",
			errors.Wrapf(err, "failed to read shader file '%s'", shaderFile))
	}
	log.Printf("Read shader file (%s) of size: %dByte", shaderFile, len(shaderCodeB))

	names, err := entryPoints(shaderCodeB)
	if err != nil {
		return vk.NullShaderModule, lifecycle.Wrap(lifecycle.KindShaderEntryPointNotFound, shaderFile, err)
	}
	if !com.Contains(names, shaderEntryPoint) {
		return vk.NullShaderModule, lifecycle.Errorf(lifecycle.KindShaderEntryPointNotFound, shaderFile,
			"no entry point %q, module declares %v", shaderEntryPoint, names)
	}

	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		PNext:    nil,
		Flags:    0,
		CodeSize: uint(len(shaderCodeB)),
		PCode:    com.AsUint32Arr(shaderCodeB),
	}
	module, err := com.VkCreateShaderModule(d, createInfo, nil)
	if err != nil {
		return vk.NullShaderModule, lifecycle.Wrap(lifecycle.KindPipelineLayout, "CreateShaderModule", err)
	}
	return module, nil
}

// entryPoints lists the names of every OpEntryPoint in a SPIR-V module. The byte order is taken from the magic
// number.
func entryPoints(code []byte) ([]string, error) {
	if len(code)%4 != 0 || len(code) < spirvHeaderWords*4 {
		return nil, errors.Errorf("%d bytes is not a SPIR-V module", len(code))
	}
	var order binary.ByteOrder = binary.LittleEndian
	if order.Uint32(code) != spirvMagic {
		order = binary.BigEndian
		if order.Uint32(code) != spirvMagic {
			return nil, errors.Errorf("bad SPIR-V magic %#08x", binary.LittleEndian.Uint32(code))
		}
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = order.Uint32(code[i*4:])
	}

	var names []string
	for i := spirvHeaderWords; i < len(words); {
		count := int(words[i] >> 16)
		opcode := words[i] & 0xffff
		if count == 0 || i+count > len(words) {
			return nil, errors.Errorf("malformed instruction at word %d", i)
		}
		if opcode == spirvOpEntryPoint && count > spirvEntryNameWord {
			names = append(names, literalString(words[i+spirvEntryNameWord:i+count]))
		}
		i += count
	}
	return names, nil
}

// literalString decodes a nul terminated SPIR-V literal, four bytes per word, lowest byte first.
func literalString(words []uint32) string {
	b := make([]byte, 0, len(words)*4)
	for _, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			ch := byte(w >> shift)
			if ch == 0 {
				return string(b)
			}
			b = append(b, ch)
		}
	}
	return string(b)
}
