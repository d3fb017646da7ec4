package viewsync

import (
	"github.com/Faultbox/ifcview/internal/engine/viewpoint"
)

// Applier moves a camera to a viewpoint.
type Applier interface {
	ApplyViewpoint(vp viewpoint.Viewpoint) bool
}

// Component applies received viewpoints once per frame, so the camera is
// only touched from the render loop. Viewpoints that arrive between two
// frames collapse to the newest.
type Component struct {
	source  <-chan viewpoint.Viewpoint
	target  Applier
	applied int
}

// NewComponent creates a component draining source into target.
func NewComponent(source <-chan viewpoint.Viewpoint, target Applier) *Component {
	return &Component{source: source, target: target}
}

// Update implements loop.Component.
func (c *Component) Update(float64) {
	var (
		latest viewpoint.Viewpoint
		got    bool
	)
drain:
	for c.source != nil {
		select {
		case vp, ok := <-c.source:
			if !ok {
				c.source = nil
				break drain
			}
			latest, got = vp, true
		default:
			break drain
		}
	}
	if got && c.target.ApplyViewpoint(latest) {
		c.applied++
	}
}

// Applied returns how many viewpoints were applied.
func (c *Component) Applied() int {
	return c.applied
}
