// Package painter flattens the scene into depth-sorted screen-space
// polygons and lines for 2D canvas drawing.
package painter

import (
	"image/color"
	"sort"

	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/pkg/math"
)

// minW rejects points at or behind the camera plane.
const minW = 1e-4

// Polygon is a filled quad in pixel coordinates.
type Polygon struct {
	Points [4]math.Vec2
	Depth  float32 // distance from the camera to the face center
	Fill   color.RGBA
}

// Line is a stroked segment in pixel coordinates.
type Line struct {
	A, B  math.Vec2
	Color color.RGBA
}

// Frame is everything needed to draw one image.
type Frame struct {
	Width, Height int
	Background    color.RGBA
	Polygons      []Polygon // far to near
	Lines         []Line
}

// Painter builds frames, reusing its buffers between calls.
type Painter struct {
	ShowBounds bool

	frame Frame
}

// Paint projects s through cam onto a width x height surface. The returned
// frame is only valid until the next call.
func (p *Painter) Paint(s *scene.Scene, cam *camera.PerspectiveCamera, width, height int) *Frame {
	f := &p.frame
	f.Width, f.Height = width, height
	f.Background = s.Background
	f.Polygons = f.Polygons[:0]
	f.Lines = f.Lines[:0]

	viewProj := cam.ViewProjection()
	toScreen := func(v math.Vec3) (math.Vec2, bool) {
		clip := viewProj.MulVec4(math.Vec4{v.X, v.Y, v.Z, 1})
		if clip[3] <= minW {
			return math.Vec2{}, false
		}
		return math.Vec2{
			X: (clip[0]/clip[3] + 1) / 2 * float32(width),
			Y: (1 - clip[1]/clip[3]) / 2 * float32(height),
		}, true
	}

	s.Walk(func(n *scene.Node) bool {
		if !n.Visible {
			return false
		}
		box := n.WorldBounds()
		if box.IsEmpty() {
			return true
		}

		base := n.DisplayColor()
		for _, face := range geometry.Faces(box) {
			center := face.Corners[0].Add(face.Corners[2]).Scale(0.5)
			if face.Normal.Dot(center.Sub(cam.Position)) >= 0 {
				continue // back face
			}
			var poly Polygon
			visible := true
			for i, c := range face.Corners {
				pt, ok := toScreen(c)
				if !ok {
					visible = false
					break
				}
				poly.Points[i] = pt
			}
			if !visible {
				continue
			}
			poly.Depth = center.Distance(cam.Position)
			poly.Fill = s.Lights.Shade(base, face.Normal)
			f.Polygons = append(f.Polygons, poly)
		}

		if p.ShowBounds || n.Selected || n.Highlighted {
			stroke := outlineColor(n)
			for _, e := range geometry.Edges(geometry.Pad(box, geometry.SelectionPadding)) {
				a, okA := toScreen(e.A)
				b, okB := toScreen(e.B)
				if okA && okB {
					f.Lines = append(f.Lines, Line{A: a, B: b, Color: stroke})
				}
			}
		}
		return true
	})

	sort.SliceStable(f.Polygons, func(i, j int) bool {
		return f.Polygons[i].Depth > f.Polygons[j].Depth
	})
	return f
}

func outlineColor(n *scene.Node) color.RGBA {
	switch {
	case n.Selected:
		return scene.SelectedColor
	case n.Highlighted:
		return scene.HighlightColor
	}
	return color.RGBA{A: 0xff}
}

// CSS formats c for a canvas fillStyle or strokeStyle.
func CSS(c color.RGBA) string {
	const hex = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+i*2] = hex[v>>4]
		b[2+i*2] = hex[v&0x0f]
	}
	return string(b)
}
