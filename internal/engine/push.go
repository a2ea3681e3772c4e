package engine

import (
	"bytes"
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
)

// PushConstantData mirrors the shaders' push_constant block. The vec3 color
// has to start on a 16 byte boundary.
type PushConstantData struct {
	Offset mgl32.Vec2
	_      [2]float32
	Color  mgl32.Vec3
	_      float32
}

var pushConstantStages = core1_0.StageVertex | core1_0.StageFragment

const copiesPerFrame = 4

func pushConstantSize() int {
	return binary.Size(PushConstantData{})
}

// Bytes encodes the block in the layout the shaders read.
func (p PushConstantData) Bytes() ([]byte, error) {
	buf := &bytes.Buffer{}
	err := binary.Write(buf, common.ByteOrder, p)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// copyPushConstants is the fixed pattern drawn every frame: copies stacked
// downwards in steps of 0.25 with increasing blue.
func copyPushConstants(j int) PushConstantData {
	return PushConstantData{
		Offset: mgl32.Vec2{0, -0.4 + float32(j)*0.25},
		Color:  mgl32.Vec3{0, 0, 0.2 + 0.2*float32(j)},
	}
}

func pipelineLayoutInfo() core1_0.PipelineLayoutCreateInfo {
	return core1_0.PipelineLayoutCreateInfo{
		PushConstantRanges: []core1_0.PushConstantRange{
			{
				StageFlags: pushConstantStages,
				Offset:     0,
				Size:       pushConstantSize(),
			},
		},
	}
}
