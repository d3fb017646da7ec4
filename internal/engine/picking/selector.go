package picking

import (
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/logger"
)

// Event is a raw pointer event forwarded by a host.
type Event struct {
	ClientX, ClientY float32
	Button           int
}

// Selector resolves pointer events to scene nodes.
type Selector interface {
	Preselect(ev Event)
	Select(ev Event, indirect, recursive bool)
}

// BoxSelector picks nodes by intersecting the pointer ray with node
// bounds. It reads the pointer position from a PointerTracker, which the
// host keeps current through move events.
type BoxSelector struct {
	Scene   *scene.Scene
	Camera  *camera.PerspectiveCamera
	Pointer *PointerTracker

	// OnSelect, if set, receives the selection after every Select.
	OnSelect func(selected []*scene.Node)

	selected []*scene.Node
	log      *zap.Logger
}

// NewBoxSelector creates a selector over s as seen from cam.
func NewBoxSelector(s *scene.Scene, cam *camera.PerspectiveCamera, pointer *PointerTracker) *BoxSelector {
	return &BoxSelector{
		Scene:   s,
		Camera:  cam,
		Pointer: pointer,
		log:     logger.Named("picking"),
	}
}

// Pick returns the nearest visible node with geometry under the pointer.
func (b *BoxSelector) Pick() (*scene.Node, float32) {
	ray := NDCToRay(b.Pointer.NDC(), b.Camera.ViewProjection().Inverse())

	var (
		best     *scene.Node
		bestDist float32
	)
	b.Scene.Walk(func(n *scene.Node) bool {
		if !n.Visible {
			return false
		}
		if t, hit := ray.IntersectBox(n.WorldBounds()); hit && (best == nil || t < bestDist) {
			best, bestDist = n, t
		}
		return true
	})
	return best, bestDist
}

// Preselect highlights the element under the pointer.
func (b *BoxSelector) Preselect(Event) {
	b.Scene.ClearHighlight()
	if n, _ := b.Pick(); n != nil {
		n.ElementAncestor().Highlighted = true
	}
}

// Select replaces the selection with the node under the pointer. indirect
// resolves the hit to its nearest IFC element ancestor; recursive also
// selects every descendant. A miss clears the selection.
func (b *BoxSelector) Select(_ Event, indirect, recursive bool) {
	for _, n := range b.selected {
		n.Selected = false
	}
	b.selected = b.selected[:0]

	hit, dist := b.Pick()
	if hit != nil {
		target := hit
		if indirect {
			target = hit.ElementAncestor()
		}
		if recursive {
			target.Walk(func(n *scene.Node) bool {
				b.mark(n)
				return true
			})
		} else {
			b.mark(target)
		}
		b.log.Debug("selected",
			zap.String("node", target.Name),
			zap.Uint32("express_id", target.ExpressID),
			zap.Float32("distance", dist),
			zap.Int("count", len(b.selected)),
		)
	}

	if b.OnSelect != nil {
		b.OnSelect(b.selected)
	}
}

// Selection returns the currently selected nodes.
func (b *BoxSelector) Selection() []*scene.Node {
	return b.selected
}

func (b *BoxSelector) mark(n *scene.Node) {
	n.Selected = true
	b.selected = append(b.selected, n)
}
