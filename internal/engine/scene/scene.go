package scene

import (
	"image/color"

	"github.com/Faultbox/ifcview/internal/engine/lighting"
	"github.com/Faultbox/ifcview/pkg/math"
)

// DefaultBackground is the neutral grey behind models.
var DefaultBackground = lighting.Hex(0xa9a9a9)

// Scene is the root of everything the viewer renders.
type Scene struct {
	Background color.RGBA
	Lights     lighting.Rig

	children []*Node
}

// New creates a scene with the default background and light rig.
func New() *Scene {
	return &Scene{
		Background: DefaultBackground,
		Lights:     lighting.DefaultRig(),
	}
}

// Add appends a top-level node. Adding a node that is already top-level
// is a no-op.
func (s *Scene) Add(n *Node) {
	if n.parent != nil {
		n.parent.Remove(n)
	}
	for _, c := range s.children {
		if c == n {
			return
		}
	}
	s.children = append(s.children, n)
}

// Remove detaches a top-level node. It reports whether n was found.
func (s *Scene) Remove(n *Node) bool {
	for i, c := range s.children {
		if c == n {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return true
		}
	}
	return false
}

// Children returns the top-level nodes in insertion order.
func (s *Scene) Children() []*Node {
	return s.children
}

// Last returns the most recently added top-level node, or nil.
func (s *Scene) Last() *Node {
	if len(s.children) == 0 {
		return nil
	}
	return s.children[len(s.children)-1]
}

// Walk visits every node in the scene depth-first.
func (s *Scene) Walk(fn func(*Node) bool) {
	for _, c := range s.children {
		c.Walk(fn)
	}
}

// Bounds returns the union of every node's world bounds.
func (s *Scene) Bounds() math.Box3 {
	box := math.EmptyBox3()
	for _, c := range s.children {
		box = box.Union(c.SubtreeBounds())
	}
	return box
}

// ClearSelection resets the selected and highlighted flags on every node.
func (s *Scene) ClearSelection() {
	s.Walk(func(n *Node) bool {
		n.Selected = false
		n.Highlighted = false
		return true
	})
}

// ClearHighlight resets the highlighted flag on every node.
func (s *Scene) ClearHighlight() {
	s.Walk(func(n *Node) bool {
		n.Highlighted = false
		return true
	})
}
