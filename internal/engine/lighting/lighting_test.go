package lighting

import (
	"image/color"
	"testing"

	"github.com/Faultbox/ifcview/pkg/math"
)

func TestHex(t *testing.T) {
	got := Hex(0xffeeff)
	want := color.RGBA{R: 0xff, G: 0xee, B: 0xff, A: 0xff}
	if got != want {
		t.Errorf("Hex(0xffeeff) = %v, want %v", got, want)
	}
}

func TestDefaultRig(t *testing.T) {
	rig := DefaultRig()
	if len(rig.Directionals) != 2 {
		t.Fatalf("expected 2 directional lights, got %d", len(rig.Directionals))
	}
	if rig.Ambient.Intensity != 0.25 {
		t.Errorf("expected ambient intensity 0.25, got %v", rig.Ambient.Intensity)
	}
	if rig.Directionals[1].Position != (math.Vec3{X: -1, Y: 0.5, Z: -1}) {
		t.Errorf("unexpected second light position %v", rig.Directionals[1].Position)
	}
}

func TestShadeFacingAwayIsAmbientOnly(t *testing.T) {
	rig := Rig{
		Directionals: []Directional{{Color: Hex(0xffffff), Intensity: 1, Position: math.Vec3{Y: 1}}},
		Ambient:      Ambient{Color: Hex(0xffffff), Intensity: 0.2},
	}
	white := Hex(0xffffff)

	down := rig.Shade(white, math.Vec3{Y: -1})
	if down.R != 51 {
		t.Errorf("downward face R = %d, want ambient-only 51", down.R)
	}

	up := rig.Shade(white, math.Vec3{Y: 1})
	if up.R != 0xff {
		t.Errorf("upward face R = %d, want saturated 255", up.R)
	}
}
