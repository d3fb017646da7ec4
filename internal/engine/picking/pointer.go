package picking

import "github.com/Faultbox/ifcview/pkg/math"

// Rect is the render surface's bounding rectangle in client coordinates.
type Rect struct {
	Left, Top     float32
	Width, Height float32
}

// PointerTracker keeps the latest pointer position in normalized device
// coordinates. Each move overwrites the previous value.
type PointerTracker struct {
	ndc math.Vec2
}

// Move records a pointer event at client coordinates over rect.
// Zero-sized rects are ignored.
func (p *PointerTracker) Move(clientX, clientY float32, rect Rect) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return
	}
	p.ndc = ToNDC(clientX, clientY, rect)
}

// NDC returns the latest position; x and y are in [-1, 1] with +y up.
func (p *PointerTracker) NDC() math.Vec2 {
	return p.ndc
}

// ToNDC converts client coordinates over rect to normalized device coordinates.
func ToNDC(clientX, clientY float32, rect Rect) math.Vec2 {
	return math.Vec2{
		X: (clientX-rect.Left)/rect.Width*2 - 1,
		Y: -(clientY-rect.Top)/rect.Height*2 + 1,
	}
}
