// Package geometry holds the vertex format and the meshes the renderer can draw.
package geometry

import "github.com/go-gl/mathgl/mgl32"

type Vertex struct {
	Position mgl32.Vec2
	Color    mgl32.Vec3
}

// Triangle is the default mesh: one triangle with a red, green and blue corner.
func Triangle() []Vertex {
	return []Vertex{
		{Position: mgl32.Vec2{0, -0.5}, Color: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec2{0.5, 0.5}, Color: mgl32.Vec3{0, 1, 0}},
		{Position: mgl32.Vec2{-0.5, 0.5}, Color: mgl32.Vec3{0, 0, 1}},
	}
}
