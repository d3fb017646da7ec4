// Package geometry generates vertex data for drawing node bounds.
package geometry

import "github.com/Faultbox/ifcview/pkg/math"

// EdgeVertexCount is the number of vertices BoxEdges returns (12 edges x 2).
const EdgeVertexCount = 24

// FaceVertexCount is the number of vertices BoxFaces returns (6 faces x 2 triangles x 3).
const FaceVertexCount = 36

// SelectionPadding expands selection outlines so they do not z-fight with faces.
const SelectionPadding = 0.01

// edges indexes Box3.Corners pairs.
var edges = [12][2]int{
	// Bottom face
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	// Top face
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	// Vertical edges
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// faces lists corner indices of each quad in counter-clockwise order seen
// from outside, with the outward normal.
var faces = [6]struct {
	corners [4]int
	normal  math.Vec3
}{
	{[4]int{0, 3, 7, 4}, math.Vec3{X: -1}},
	{[4]int{1, 5, 6, 2}, math.Vec3{X: 1}},
	{[4]int{0, 1, 2, 3}, math.Vec3{Y: -1}},
	{[4]int{4, 7, 6, 5}, math.Vec3{Y: 1}},
	{[4]int{0, 4, 5, 1}, math.Vec3{Z: -1}},
	{[4]int{3, 2, 6, 7}, math.Vec3{Z: 1}},
}

// Edge is one box edge in world space.
type Edge struct {
	A, B math.Vec3
}

// Edges returns the 12 edges of box.
func Edges(box math.Box3) [12]Edge {
	c := box.Corners()
	var out [12]Edge
	for i, e := range edges {
		out[i] = Edge{A: c[e[0]], B: c[e[1]]}
	}
	return out
}

// BoxEdges returns line vertices for a wireframe box, [x, y, z] per vertex.
func BoxEdges(box math.Box3) []float32 {
	out := make([]float32, 0, EdgeVertexCount*3)
	for _, e := range Edges(box) {
		out = append(out, e.A.X, e.A.Y, e.A.Z, e.B.X, e.B.Y, e.B.Z)
	}
	return out
}

// Face is one box side with its outward normal.
type Face struct {
	Corners [4]math.Vec3
	Normal  math.Vec3
}

// Faces returns the 6 sides of box.
func Faces(box math.Box3) [6]Face {
	c := box.Corners()
	var out [6]Face
	for i, f := range faces {
		out[i] = Face{
			Corners: [4]math.Vec3{c[f.corners[0]], c[f.corners[1]], c[f.corners[2]], c[f.corners[3]]},
			Normal:  f.normal,
		}
	}
	return out
}

// BoxFaces returns triangle vertices for a solid box, [x, y, z, nx, ny, nz]
// per vertex.
func BoxFaces(box math.Box3) []float32 {
	out := make([]float32, 0, FaceVertexCount*6)
	for _, f := range Faces(box) {
		for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
			p := f.Corners[i]
			out = append(out, p.X, p.Y, p.Z, f.Normal.X, f.Normal.Y, f.Normal.Z)
		}
	}
	return out
}

// Pad grows box by padding on every side. Empty boxes stay empty.
func Pad(box math.Box3, padding float32) math.Box3 {
	if box.IsEmpty() {
		return box
	}
	p := math.Vec3{X: padding, Y: padding, Z: padding}
	return math.Box3{Min: box.Min.Sub(p), Max: box.Max.Add(p)}
}
