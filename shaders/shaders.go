// Package shaders holds the GLSL sources of the renderer's pipeline and the
// SPIR-V built from them. Run go generate here to rebuild the binaries.
package shaders

import "embed"

//go:generate glslc simple_shader.vert -o simple_shader.vert.spv
//go:generate glslc simple_shader.frag -o simple_shader.frag.spv

const (
	VertexFile   = "simple_shader.vert.spv"
	FragmentFile = "simple_shader.frag.spv"
)

//go:embed *.spv
var FS embed.FS
