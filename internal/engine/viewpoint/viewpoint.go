// Package viewpoint applies BCF viewpoints to the viewer camera.
//
// BCF viewpoints are stored in the IFC convention (Z up, left-handed
// relative to the renderer), so every point and direction is passed through
// the IFC to renderer basis transform before it touches the camera.
package viewpoint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/pkg/math"
)

// TargetDistance is how far along the viewing direction the orbit target is placed.
const TargetDistance = 5

const minDirectionLength = 1e-6

// Point is a BCF coordinate triple.
type Point struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
	Z float32 `json:"z" yaml:"z"`
}

// Vec3 converts the point to a vector.
func (p Point) Vec3() math.Vec3 {
	return math.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

// PerspectiveCamera is the BCF perspective camera record.
type PerspectiveCamera struct {
	ViewPoint   Point   `json:"camera_view_point" yaml:"camera_view_point"`
	Direction   Point   `json:"camera_direction" yaml:"camera_direction"`
	UpVector    *Point  `json:"camera_up_vector,omitempty" yaml:"camera_up_vector,omitempty"`
	FieldOfView float32 `json:"field_of_view" yaml:"field_of_view"`
}

// Viewpoint is a BCF visualization info record. Only the perspective
// camera is interpreted.
type Viewpoint struct {
	GUID              string             `json:"guid,omitempty" yaml:"guid,omitempty"`
	PerspectiveCamera *PerspectiveCamera `json:"perspective_camera,omitempty" yaml:"perspective_camera,omitempty"`
}

var ifcToRenderer = math.IFCToRenderer()

// Apply moves cam and controls to the viewpoint. A viewpoint without a
// perspective camera leaves both untouched and Apply returns false.
// A zero camera direction is treated the same way. The target lies
// TargetDistance direction vectors ahead, so a non-unit direction scales
// it. The up vector is not applied; the renderer camera stays Y-up.
func Apply(vp Viewpoint, cam *camera.PerspectiveCamera, controls *camera.OrbitControls) bool {
	pc := vp.PerspectiveCamera
	if pc == nil {
		return false
	}

	direction := ifcToRenderer.TransformDirection(pc.Direction.Vec3())
	if direction.Length() < minDirectionLength {
		return false
	}
	position := ifcToRenderer.TransformPoint(pc.ViewPoint.Vec3())
	target := position.Add(direction.Scale(TargetDistance))

	cam.Position = position
	cam.LookAt(target)
	cam.FOV = pc.FieldOfView
	cam.UpdateProjection()

	if controls != nil {
		controls.Target = target
		controls.Update()
	}
	return true
}

// Decode reads a JSON viewpoint.
func Decode(r io.Reader) (Viewpoint, error) {
	var vp Viewpoint
	if err := json.NewDecoder(r).Decode(&vp); err != nil {
		return Viewpoint{}, fmt.Errorf("decoding viewpoint: %w", err)
	}
	return vp, nil
}

// LoadFile reads a viewpoint from a .json, .yaml or .yml file.
func LoadFile(path string) (Viewpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Viewpoint{}, err
	}

	var vp Viewpoint
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &vp)
	default:
		err = json.Unmarshal(data, &vp)
	}
	if err != nil {
		return Viewpoint{}, fmt.Errorf("parsing viewpoint %s: %w", path, err)
	}
	return vp, nil
}
