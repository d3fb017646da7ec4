package viewpoint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/pkg/math"
)

func newRig() (*camera.PerspectiveCamera, *camera.OrbitControls) {
	cam := camera.NewPerspective(45, 4.0/3.0, 0.1, 1000)
	cam.Position = math.Vec3{X: 8, Y: 8, Z: 8}
	cam.LookAt(math.Vec3{})
	return cam, camera.NewOrbitControls(cam)
}

func TestApplyWithoutPerspectiveIsNoop(t *testing.T) {
	cam, controls := newRig()
	camBefore := *cam
	targetBefore := controls.Target

	applied := Apply(Viewpoint{GUID: "empty"}, cam, controls)

	assert.False(t, applied)
	assert.Equal(t, camBefore, *cam)
	assert.Equal(t, targetBefore, controls.Target)
}

func TestApplyConvertsToRendererSpace(t *testing.T) {
	cam, controls := newRig()

	vp := Viewpoint{PerspectiveCamera: &PerspectiveCamera{
		ViewPoint:   Point{X: 1, Y: 2, Z: 3},
		Direction:   Point{X: 0, Y: 1, Z: 0},
		FieldOfView: 60,
	}}
	require.True(t, Apply(vp, cam, controls))

	// IFC (x, y, z) is renderer (x, z, -y).
	wantPos := math.Vec3{X: 1, Y: 3, Z: -2}
	wantTarget := math.Vec3{X: 1, Y: 3, Z: -2 - TargetDistance}

	assert.True(t, cam.Position.ApproxEqual(wantPos, 1e-4), "position %v", cam.Position)
	assert.True(t, controls.Target.ApproxEqual(wantTarget, 1e-4), "target %v", controls.Target)
	assert.Equal(t, float32(60), cam.FOV)
}

func TestApplySetsFieldOfViewVerbatim(t *testing.T) {
	cam, controls := newRig()
	vp := Viewpoint{PerspectiveCamera: &PerspectiveCamera{
		ViewPoint:   Point{X: 10, Y: -4, Z: 1.5},
		Direction:   Point{X: -1, Y: 0, Z: 0},
		FieldOfView: 37.5,
	}}
	Apply(vp, cam, controls)
	assert.Equal(t, float32(37.5), cam.FOV)
	assert.NotEqual(t, math.Vec3{X: 8, Y: 8, Z: 8}, cam.Position)
}

func TestApplyScalesTargetByDirectionLength(t *testing.T) {
	cam, controls := newRig()
	vp := Viewpoint{PerspectiveCamera: &PerspectiveCamera{
		ViewPoint:   Point{},
		Direction:   Point{X: 2, Y: 0, Z: 0},
		FieldOfView: 45,
	}}
	require.True(t, Apply(vp, cam, controls))

	want := math.Vec3{X: 2 * TargetDistance}
	assert.True(t, controls.Target.ApproxEqual(want, 1e-4), "target %v", controls.Target)
}

func TestApplyZeroDirectionIsNoop(t *testing.T) {
	cam, controls := newRig()
	camBefore := *cam
	targetBefore := controls.Target

	vp := Viewpoint{PerspectiveCamera: &PerspectiveCamera{
		ViewPoint:   Point{X: 1, Y: 2, Z: 3},
		FieldOfView: 60,
	}}

	assert.False(t, Apply(vp, cam, controls))
	assert.Equal(t, camBefore, *cam)
	assert.Equal(t, targetBefore, controls.Target)
}

const sampleJSON = `{
  "guid": "b24a82e9-f67b-43b8-bda0-4946abf39624",
  "perspective_camera": {
    "camera_view_point": {"x": 12.2, "y": -8.4, "z": 1.7},
    "camera_direction": {"x": -0.7, "y": 0.7, "z": 0},
    "camera_up_vector": {"x": 0, "y": 0, "z": 1},
    "field_of_view": 60
  }
}`

func TestDecode(t *testing.T) {
	vp, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	require.NotNil(t, vp.PerspectiveCamera)
	assert.Equal(t, "b24a82e9-f67b-43b8-bda0-4946abf39624", vp.GUID)
	assert.Equal(t, float32(12.2), vp.PerspectiveCamera.ViewPoint.X)
	assert.Equal(t, float32(60), vp.PerspectiveCamera.FieldOfView)
	require.NotNil(t, vp.PerspectiveCamera.UpVector)
	assert.Equal(t, float32(1), vp.PerspectiveCamera.UpVector.Z)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "vp.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(sampleJSON), 0644))
	vp, err := LoadFile(jsonPath)
	require.NoError(t, err)
	assert.NotNil(t, vp.PerspectiveCamera)

	yamlPath := filepath.Join(dir, "vp.yaml")
	yamlContent := `
perspective_camera:
  camera_view_point: {x: 1, y: 2, z: 3}
  camera_direction: {x: 0, y: 0, z: -1}
  field_of_view: 50
`
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlContent), 0644))
	vp, err = LoadFile(yamlPath)
	require.NoError(t, err)
	require.NotNil(t, vp.PerspectiveCamera)
	assert.Equal(t, float32(50), vp.PerspectiveCamera.FieldOfView)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
