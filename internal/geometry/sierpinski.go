package geometry

import "github.com/go-gl/mathgl/mgl32"

// Sierpinski appends a Sierpinski triangle of the given depth to out. The
// triangle fits in a width x height box whose bottom-left corner is (px, py);
// y grows downwards, as in Vulkan clip space.
//
// Every level triples the vertex count, so depth d appends 3^(d+1) vertices.
func Sierpinski(depth int, width, height, px, py float32, out *[]Vertex) {
	if depth <= 0 {
		*out = append(*out,
			Vertex{Position: mgl32.Vec2{px, py}},
			Vertex{Position: mgl32.Vec2{px + width/2, py - height}},
			Vertex{Position: mgl32.Vec2{px + width, py}},
		)
		return
	}

	halfWidth, halfHeight := width/2, height/2
	Sierpinski(depth-1, halfWidth, halfHeight, px, py, out)
	Sierpinski(depth-1, halfWidth, halfHeight, px+width/4, py-halfHeight, out)
	Sierpinski(depth-1, halfWidth, halfHeight, px+halfWidth, py, out)
}

// SierpinskiModel builds a unit-sized Sierpinski mesh centered on the origin.
func SierpinskiModel(depth int) []Vertex {
	vertices := make([]Vertex, 0, VertexCount(depth))
	Sierpinski(depth, 1, 1, -0.5, 0.5, &vertices)
	return vertices
}

// VertexCount is the number of vertices Sierpinski emits for depth.
func VertexCount(depth int) int {
	count := 3
	for i := 0; i < depth; i++ {
		count *= 3
	}
	return count
}
