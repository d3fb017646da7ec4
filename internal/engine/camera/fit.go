package camera

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/Faultbox/ifcview/pkg/math"
)

var (
	// ErrDegenerateDirection means the camera sits directly above or below
	// the target so no horizontal viewing direction exists.
	ErrDegenerateDirection = errors.New("camera: degenerate horizontal direction")
	// ErrEmptyBounds means there is nothing to frame.
	ErrEmptyBounds = errors.New("camera: empty bounds")
)

// FallbackDirection is used when the camera has no horizontal offset from
// the volume center.
var FallbackDirection = math.Vec3{Z: 1}

const minHorizontalLength = 1e-6

// FitResult describes where FitToFrame placed the camera.
type FitResult struct {
	Center       math.Vec3
	Distance     float32
	Position     math.Vec3
	UsedFallback bool
}

// FitDistance returns the distance at which a sphere with the given
// diameter fills a vertical field of view of fovDeg degrees.
func FitDistance(diameter, fovDeg float32) float32 {
	return diameter / 2 / math32.Tan(DegToRad(fovDeg)/2)
}

// HorizontalDirection returns the normalized direction from center to from
// projected onto the XZ plane.
func HorizontalDirection(from, center math.Vec3) (math.Vec3, error) {
	d := from.Sub(center).Mul(math.Vec3{X: 1, Z: 1})
	if d.Length() < minHorizontalLength {
		return math.Vec3{}, ErrDegenerateDirection
	}
	return d.Normalize(), nil
}

// FitToFrame moves cam so box's bounding sphere fills the vertical field of
// view, keeping the current horizontal viewing direction. The camera and
// orbit target are pointed at the box center. controls may be nil.
func FitToFrame(cam *PerspectiveCamera, controls *OrbitControls, box math.Box3) (FitResult, error) {
	if box.IsEmpty() {
		return FitResult{}, ErrEmptyBounds
	}

	res := FitResult{
		Center:   box.Center(),
		Distance: FitDistance(box.Diagonal(), cam.FOV),
	}

	dir, err := HorizontalDirection(cam.Position, res.Center)
	if errors.Is(err, ErrDegenerateDirection) {
		dir = FallbackDirection
		res.UsedFallback = true
	}

	res.Position = dir.Scale(res.Distance).Add(res.Center)

	cam.Position = res.Position
	cam.UpdateProjection()
	cam.LookAt(res.Center)

	if controls != nil {
		controls.Target = res.Center
		controls.Update()
	}
	return res, nil
}
