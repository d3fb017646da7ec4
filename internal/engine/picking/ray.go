// Package picking turns pointer input into rays and resolves them against
// scene bounds.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/ifcview/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// NDCToRay converts normalized device coordinates to a world-space ray.
// invViewProj is the inverse of the view-projection matrix.
func NDCToRay(ndc math.Vec2, invViewProj math.Mat4) Ray {
	nearWorld := unproject(invViewProj, math.Vec4{ndc.X, ndc.Y, -1, 1})
	farWorld := unproject(invViewProj, math.Vec4{ndc.X, ndc.Y, 1, 1})

	return Ray{
		Origin:    nearWorld,
		Direction: farWorld.Sub(nearWorld).Normalize(),
	}
}

func unproject(inv math.Mat4, clip math.Vec4) math.Vec3 {
	w := inv.MulVec4(clip)
	if w[3] != 0 {
		w[0] /= w[3]
		w[1] /= w[3]
		w[2] /= w[3]
	}
	return math.Vec3{X: w[0], Y: w[1], Z: w[2]}
}

// IntersectBox tests ray intersection with an axis-aligned box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectBox(box math.Box3) (t float32, hit bool) {
	if box.IsEmpty() {
		return 0, false
	}

	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		origin := r.Origin.Component(axis)
		dir := r.Direction.Component(axis)
		lo, hi := box.Min.Component(axis), box.Max.Component(axis)

		if dir == 0 {
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}

		t1 := (lo - origin) / dir
		t2 := (hi - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
