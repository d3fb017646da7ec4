package painter

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/pkg/math"
)

func cubeScene() (*scene.Scene, *scene.Node) {
	s := scene.New()
	cube := scene.NewNode("cube")
	cube.Bounds = math.NewBox3(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})
	s.Add(cube)
	return s, cube
}

func cameraAt(pos math.Vec3) *camera.PerspectiveCamera {
	cam := camera.NewPerspective(45, 1, 0.1, 100)
	cam.Position = pos
	cam.LookAt(math.Vec3{})
	return cam
}

func TestPaintFrontFaceOnly(t *testing.T) {
	s, _ := cubeScene()
	var p Painter

	f := p.Paint(s, cameraAt(math.Vec3{Z: 10}), 200, 200)
	require.Len(t, f.Polygons, 1)
	assert.Empty(t, f.Lines)
	assert.Equal(t, s.Background, f.Background)

	poly := f.Polygons[0]
	assert.InDelta(t, 9, poly.Depth, 1e-4)
	assert.Equal(t, s.Lights.Shade(scene.DefaultColor, math.Vec3{Z: 1}), poly.Fill)

	// The face is centered on the surface.
	var cx, cy float32
	for _, pt := range poly.Points {
		cx += pt.X / 4
		cy += pt.Y / 4
	}
	assert.InDelta(t, 100, cx, 1e-2)
	assert.InDelta(t, 100, cy, 1e-2)
}

func TestPaintSortsFarToNear(t *testing.T) {
	s, _ := cubeScene()
	var p Painter

	f := p.Paint(s, cameraAt(math.Vec3{X: 5, Y: 4, Z: 3}), 320, 240)
	require.Len(t, f.Polygons, 3)
	for i := 1; i < len(f.Polygons); i++ {
		assert.GreaterOrEqual(t, f.Polygons[i-1].Depth, f.Polygons[i].Depth)
	}
}

func TestPaintOutlines(t *testing.T) {
	s, cube := cubeScene()
	var p Painter
	cam := cameraAt(math.Vec3{Z: 10})

	cube.Selected = true
	f := p.Paint(s, cam, 100, 100)
	require.Len(t, f.Lines, 12)
	assert.Equal(t, scene.SelectedColor, f.Lines[0].Color)
	assert.Equal(t, s.Lights.Shade(scene.SelectedColor, math.Vec3{Z: 1}), f.Polygons[0].Fill)
}

func TestPaintSkipsHiddenAndBehind(t *testing.T) {
	s, cube := cubeScene()
	var p Painter

	cube.Visible = false
	assert.Empty(t, p.Paint(s, cameraAt(math.Vec3{Z: 10}), 100, 100).Polygons)

	cube.Visible = true
	cam := camera.NewPerspective(45, 1, 0.1, 100)
	cam.Position = math.Vec3{Z: 10}
	cam.LookAt(math.Vec3{Z: 20})
	assert.Empty(t, p.Paint(s, cam, 100, 100).Polygons)
}

func TestCSS(t *testing.T) {
	assert.Equal(t, "#a9a9a9", CSS(color.RGBA{R: 0xa9, G: 0xa9, B: 0xa9, A: 0xff}))
	assert.Equal(t, "#0f1e2d", CSS(color.RGBA{R: 0x0f, G: 0x1e, B: 0x2d}))
}
