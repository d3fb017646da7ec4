// Package camera provides the perspective camera, orbit controls and
// frame fitting used by the viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/ifcview/pkg/math"
)

// PerspectiveCamera is a Y-up perspective camera. Other collaborators keep
// pointers to it, so it is always mutated in place.
type PerspectiveCamera struct {
	Position math.Vec3
	Up       math.Vec3

	FOV    float32 // vertical field of view in degrees
	Aspect float32
	Near   float32
	Far    float32

	target     math.Vec3
	projection math.Mat4
}

// NewPerspective creates a camera at the origin looking down -Z.
func NewPerspective(fov, aspect, near, far float32) *PerspectiveCamera {
	c := &PerspectiveCamera{
		Up:     math.Vec3{Y: 1},
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		target: math.Vec3{Z: -1},
	}
	c.UpdateProjection()
	return c
}

// LookAt points the camera at p.
func (c *PerspectiveCamera) LookAt(p math.Vec3) {
	c.target = p
}

// Target returns the point the camera looks at.
func (c *PerspectiveCamera) Target() math.Vec3 {
	return c.target
}

// Direction returns the normalized viewing direction.
func (c *PerspectiveCamera) Direction() math.Vec3 {
	return c.target.Sub(c.Position).Normalize()
}

// SetAspect updates the aspect ratio from a surface size and recomputes the projection.
func (c *PerspectiveCamera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
	c.UpdateProjection()
}

// UpdateProjection recomputes the projection matrix after FOV, aspect or
// clip plane changes.
func (c *PerspectiveCamera) UpdateProjection() {
	c.projection = math.Perspective(DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// ProjectionMatrix returns the projection computed by the last UpdateProjection.
func (c *PerspectiveCamera) ProjectionMatrix() math.Mat4 {
	return c.projection
}

// ViewMatrix returns the world-to-view transform.
func (c *PerspectiveCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.target, c.Up)
}

// ViewProjection returns projection * view.
func (c *PerspectiveCamera) ViewProjection() math.Mat4 {
	return c.projection.Mul(c.ViewMatrix())
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}
