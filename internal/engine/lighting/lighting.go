// Package lighting provides the light rig used to shade model geometry.
package lighting

import (
	"image/color"

	"github.com/Faultbox/ifcview/pkg/math"
)

// Directional is a light infinitely far away shining from Position toward the origin.
type Directional struct {
	Color     color.RGBA
	Intensity float32
	Position  math.Vec3
}

// Direction returns the normalized vector pointing toward the light.
func (d Directional) Direction() math.Vec3 {
	return d.Position.Normalize()
}

// Ambient lights every surface uniformly.
type Ambient struct {
	Color     color.RGBA
	Intensity float32
}

// Rig is the set of lights in a scene.
type Rig struct {
	Directionals []Directional
	Ambient      Ambient
}

// DefaultRig returns two opposing directional lights and a warm ambient fill.
func DefaultRig() Rig {
	return Rig{
		Directionals: []Directional{
			{Color: Hex(0xffeeff), Intensity: 0.8, Position: math.Vec3{X: 1, Y: 1, Z: 1}},
			{Color: Hex(0xffffff), Intensity: 0.8, Position: math.Vec3{X: -1, Y: 0.5, Z: -1}},
		},
		Ambient: Ambient{Color: Hex(0xffffee), Intensity: 0.25},
	}
}

// Hex converts a 0xRRGGBB value to an opaque color.
func Hex(rgb uint32) color.RGBA {
	return color.RGBA{
		R: uint8(rgb >> 16),
		G: uint8(rgb >> 8),
		B: uint8(rgb),
		A: 0xff,
	}
}

// Shade applies Lambert lighting to base for a surface with the given normal.
func (r Rig) Shade(base color.RGBA, normal math.Vec3) color.RGBA {
	n := normal.Normalize()
	light := rgb(r.Ambient.Color).Scale(r.Ambient.Intensity)
	for _, d := range r.Directionals {
		lambert := n.Dot(d.Direction())
		if lambert <= 0 {
			continue
		}
		light = light.Add(rgb(d.Color).Scale(d.Intensity * lambert))
	}
	b := rgb(base)
	return color.RGBA{
		R: channel(b.X * light.X),
		G: channel(b.Y * light.Y),
		B: channel(b.Z * light.Z),
		A: base.A,
	}
}

// Uniforms flattens the rig for shader upload: ambient rgb followed by
// direction and rgb*intensity for the first two directional lights.
func (r Rig) Uniforms() (ambient [3]float32, dirs [2][3]float32, colors [2][3]float32) {
	ambient = rgb(r.Ambient.Color).Scale(r.Ambient.Intensity).Array()
	for i := 0; i < len(r.Directionals) && i < 2; i++ {
		d := r.Directionals[i]
		dirs[i] = d.Direction().Array()
		colors[i] = rgb(d.Color).Scale(d.Intensity).Array()
	}
	return ambient, dirs, colors
}

func rgb(c color.RGBA) math.Vec3 {
	return math.Vec3{X: float32(c.R) / 255, Y: float32(c.G) / 255, Z: float32(c.B) / 255}
}

func channel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(v*255 + 0.5)
}
