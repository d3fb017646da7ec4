package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/ifcview/pkg/math"
)

// polarEpsilon keeps the camera off the poles where the view is undefined.
const polarEpsilon = 1e-6

// OrbitControls rotates, zooms and pans a camera around a target point.
// Input handlers only accumulate deltas; Update applies them, so the
// render loop must call Update once per frame.
type OrbitControls struct {
	Camera *PerspectiveCamera
	Target math.Vec3

	EnableDamping bool
	DampingFactor float32

	RotateSpeed float32
	ZoomSpeed   float32
	PanSpeed    float32

	// Distance limits; MaxDistance <= 0 means unlimited.
	MinDistance float32
	MaxDistance float32

	// Polar angle limits in radians, measured from +Y.
	MinPolarAngle float32
	MaxPolarAngle float32

	deltaTheta float32
	deltaPhi   float32
	scale      float32
	panOffset  math.Vec3
}

// NewOrbitControls creates controls for cam orbiting the origin.
func NewOrbitControls(cam *PerspectiveCamera) *OrbitControls {
	return &OrbitControls{
		Camera:        cam,
		DampingFactor: 0.05,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		PanSpeed:      1,
		MaxPolarAngle: math32.Pi,
		scale:         1,
	}
}

// HandleDrag rotates around the target by a pointer drag in pixels.
func (o *OrbitControls) HandleDrag(deltaX, deltaY float32, viewportHeight int) {
	if viewportHeight <= 0 {
		return
	}
	h := float32(viewportHeight)
	o.deltaTheta -= 2 * math32.Pi * deltaX / h * o.RotateSpeed
	o.deltaPhi -= 2 * math32.Pi * deltaY / h * o.RotateSpeed
}

// HandleZoom dollies toward the target for positive delta and away for negative.
func (o *OrbitControls) HandleZoom(delta float32) {
	if delta == 0 {
		return
	}
	step := math32.Pow(0.95, o.ZoomSpeed*math32.Abs(delta))
	if delta > 0 {
		o.scale *= step
	} else {
		o.scale /= step
	}
}

// HandlePan moves the target parallel to the view plane by a drag in pixels.
func (o *OrbitControls) HandlePan(deltaX, deltaY float32, viewportHeight int) {
	if viewportHeight <= 0 {
		return
	}
	offset := o.Camera.Position.Sub(o.Target)
	// Half the visible height at the target distance spans half the viewport.
	visible := offset.Length() * math32.Tan(DegToRad(o.Camera.FOV)/2)
	perPixel := 2 * visible / float32(viewportHeight) * o.PanSpeed

	forward := o.Camera.Direction()
	right := forward.Cross(o.Camera.Up).Normalize()
	up := right.Cross(forward).Normalize()

	o.panOffset = o.panOffset.
		Add(right.Scale(-deltaX * perPixel)).
		Add(up.Scale(deltaY * perPixel))
}

// Update applies accumulated input to the camera and points it at the
// target. It reports whether the camera moved.
func (o *OrbitControls) Update() bool {
	cam := o.Camera
	before := cam.Position

	offset := cam.Position.Sub(o.Target)
	radius := offset.Length()
	theta := math32.Atan2(offset.X, offset.Z)
	phi := float32(0)
	if radius > 0 {
		phi = math32.Acos(clamp(offset.Y/radius, -1, 1))
	}

	factor := float32(1)
	if o.EnableDamping {
		factor = o.DampingFactor
	}

	theta += o.deltaTheta * factor
	phi += o.deltaPhi * factor
	phi = clamp(phi, math32.Max(o.MinPolarAngle, polarEpsilon), math32.Min(o.MaxPolarAngle, math32.Pi-polarEpsilon))

	radius *= o.scale
	radius = math32.Max(radius, o.MinDistance)
	if o.MaxDistance > 0 {
		radius = math32.Min(radius, o.MaxDistance)
	}

	o.Target = o.Target.Add(o.panOffset.Scale(factor))

	sinPhi := math32.Sin(phi)
	offset = math.Vec3{
		X: radius * sinPhi * math32.Sin(theta),
		Y: radius * math32.Cos(phi),
		Z: radius * sinPhi * math32.Cos(theta),
	}
	cam.Position = o.Target.Add(offset)
	cam.LookAt(o.Target)

	if o.EnableDamping {
		o.deltaTheta *= 1 - o.DampingFactor
		o.deltaPhi *= 1 - o.DampingFactor
		o.panOffset = o.panOffset.Scale(1 - o.DampingFactor)
	} else {
		o.deltaTheta, o.deltaPhi = 0, 0
		o.panOffset = math.Vec3{}
	}
	o.scale = 1

	return cam.Position.Distance(before) > 1e-4
}

// Reset drops any pending input.
func (o *OrbitControls) Reset() {
	o.deltaTheta, o.deltaPhi = 0, 0
	o.panOffset = math.Vec3{}
	o.scale = 1
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
