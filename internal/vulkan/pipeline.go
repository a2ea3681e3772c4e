package vulkan

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/push-constants/internal/engine"
	"github.com/vkngwrapper/push-constants/shaders"
)

// PipelineConfigInfo is the fixed-function state of a graphics pipeline.
// Viewport and scissor are dynamic, so a pipeline does not depend on the
// swap chain extent.
type PipelineConfigInfo struct {
	ViewportState      *core1_0.PipelineViewportStateCreateInfo
	InputAssemblyState *core1_0.PipelineInputAssemblyStateCreateInfo
	RasterizationState *core1_0.PipelineRasterizationStateCreateInfo
	MultisampleState   *core1_0.PipelineMultisampleStateCreateInfo
	ColorBlendState    *core1_0.PipelineColorBlendStateCreateInfo
	DepthStencilState  *core1_0.PipelineDepthStencilStateCreateInfo
	DynamicState       *core1_0.PipelineDynamicStateCreateInfo

	PipelineLayout core1_0.PipelineLayout
	RenderPass     core1_0.RenderPass
	Subpass        int
}

func DefaultPipelineConfigInfo() PipelineConfigInfo {
	return PipelineConfigInfo{
		// Counts only, the values come from the command buffer.
		ViewportState: &core1_0.PipelineViewportStateCreateInfo{
			Viewports: []core1_0.Viewport{{}},
			Scissors:  []core1_0.Rect2D{{}},
		},
		InputAssemblyState: &core1_0.PipelineInputAssemblyStateCreateInfo{
			Topology:               core1_0.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: false,
		},
		RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{
			DepthClampEnable:        false,
			RasterizerDiscardEnable: false,

			PolygonMode: core1_0.PolygonModeFill,
			FrontFace:   core1_0.FrontFaceClockwise,

			DepthBiasEnable: false,

			LineWidth: 1.0,
		},
		MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{
			SampleShadingEnable:  false,
			RasterizationSamples: core1_0.Samples1,
			MinSampleShading:     1.0,
		},
		ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
			LogicOpEnabled: false,
			LogicOp:        core1_0.LogicOpCopy,

			BlendConstants: [4]float32{0, 0, 0, 0},
			Attachments: []core1_0.PipelineColorBlendAttachmentState{
				{
					BlendEnabled:   false,
					ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
				},
			},
		},
		DepthStencilState: &core1_0.PipelineDepthStencilStateCreateInfo{
			DepthTestEnable:  true,
			DepthWriteEnable: true,
			DepthCompareOp:   core1_0.CompareOpLess,
		},
		DynamicState: &core1_0.PipelineDynamicStateCreateInfo{
			DynamicStates: []core1_0.DynamicState{
				core1_0.DynamicStateViewport,
				core1_0.DynamicStateScissor,
			},
		},
		Subpass: 0,
	}
}

type Pipeline struct {
	pipeline core1_0.Pipeline
}

// NewPipeline builds a graphics pipeline from two SPIR-V files. An empty path
// selects the matching binary built into the shaders package. The config must
// carry a layout and a render pass.
func NewPipeline(device core1_0.Device, vertPath, fragPath string, config PipelineConfigInfo) (*Pipeline, error) {
	if config.PipelineLayout == nil {
		return nil, errors.AssertionFailedf("cannot create graphics pipeline: no pipeline layout provided in config")
	}
	if config.RenderPass == nil {
		return nil, errors.AssertionFailedf("cannot create graphics pipeline: no render pass provided in config")
	}

	vertShader, err := createShaderModule(device, vertPath, shaders.VertexFile)
	if err != nil {
		return nil, err
	}
	defer vertShader.Destroy(nil)

	fragShader, err := createShaderModule(device, fragPath, shaders.FragmentFile)
	if err != nil {
		return nil, err
	}
	defer fragShader.Destroy(nil)

	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{
		VertexBindingDescriptions:   VertexBindingDescriptions(),
		VertexAttributeDescriptions: VertexAttributeDescriptions(),
	}

	pipelines, _, err := device.CreateGraphicsPipelines(nil, nil, []core1_0.GraphicsPipelineCreateInfo{
		{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				{
					Stage:  core1_0.StageVertex,
					Module: vertShader,
					Name:   "main",
				},
				{
					Stage:  core1_0.StageFragment,
					Module: fragShader,
					Name:   "main",
				},
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: config.InputAssemblyState,
			ViewportState:      config.ViewportState,
			RasterizationState: config.RasterizationState,
			MultisampleState:   config.MultisampleState,
			DepthStencilState:  config.DepthStencilState,
			ColorBlendState:    config.ColorBlendState,
			DynamicState:       config.DynamicState,
			Layout:             config.PipelineLayout,
			RenderPass:         config.RenderPass,
			Subpass:            config.Subpass,
			BasePipelineIndex:  -1,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create graphics pipeline")
	}

	return &Pipeline{pipeline: pipelines[0]}, nil
}

func (p *Pipeline) Bind(buffer engine.CommandBuffer) {
	buffer.BindPipeline(p.pipeline)
}

func (p *Pipeline) Destroy() {
	if p.pipeline != nil {
		p.pipeline.Destroy(nil)
		p.pipeline = nil
	}
}

func createShaderModule(device core1_0.Device, path, builtin string) (core1_0.ShaderModule, error) {
	byteCode, err := readShader(path, builtin)
	if err != nil {
		return nil, err
	}

	shader, _, err := device.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: byteCode,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create shader module from %s", shaderName(path, builtin))
	}

	return shader, nil
}

// readShader loads SPIR-V from path, or the embedded builtin when path is
// empty.
func readShader(path, builtin string) ([]uint32, error) {
	var code []byte
	var err error
	if path == "" {
		code, err = shaders.FS.ReadFile(builtin)
	} else {
		code, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file %s", shaderName(path, builtin))
	}

	byteCode, err := bytesToBytecode(code)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read shader %s", shaderName(path, builtin))
	}
	return byteCode, nil
}

func shaderName(path, builtin string) string {
	if path == "" {
		return "embedded " + builtin
	}
	return path
}

// SPIR-V is a stream of little endian 32 bit words.
func bytesToBytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, errors.Newf("spir-v size %d is not a positive multiple of 4", len(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode, nil
}
