// Package scene holds the model scene graph the viewer renders and picks against.
package scene

import (
	"image/color"

	"github.com/Faultbox/ifcview/pkg/math"
)

var (
	// DefaultColor is used for nodes that carry no material color.
	DefaultColor = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
	// SelectedColor replaces the color of selected nodes.
	SelectedColor = color.RGBA{R: 0x40, G: 0x80, B: 0xff, A: 0xff}
	// HighlightColor is blended into preselected nodes.
	HighlightColor = color.RGBA{R: 0xff, G: 0xb0, B: 0x40, A: 0xff}
)

// Node is one element of the scene graph. Geometry is represented by its
// local bounding box; tessellated meshes stay inside the external engine.
type Node struct {
	Name      string
	ExpressID uint32 // IFC express ID, 0 for non-element nodes
	IsIFC     bool   // true for nodes that map to an IFC element

	Position math.Vec3 // translation relative to the parent
	Bounds   math.Box3 // local geometry bounds, empty if the node has none
	Color    color.RGBA
	Visible  bool

	Selected    bool
	Highlighted bool

	parent   *Node
	children []*Node
}

// NewNode creates a visible node without geometry.
func NewNode(name string) *Node {
	return &Node{
		Name:    name,
		Bounds:  math.EmptyBox3(),
		Color:   DefaultColor,
		Visible: true,
	}
}

// Add appends child, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child. It reports whether child was found.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Children returns the direct children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// WorldPosition returns the accumulated translation from the root.
func (n *Node) WorldPosition() math.Vec3 {
	pos := n.Position
	for p := n.parent; p != nil; p = p.parent {
		pos = pos.Add(p.Position)
	}
	return pos
}

// WorldBounds returns this node's own geometry bounds in world space.
func (n *Node) WorldBounds() math.Box3 {
	return n.Bounds.Translate(n.WorldPosition())
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// SubtreeBounds returns the union of the world bounds of n and every descendant.
func (n *Node) SubtreeBounds() math.Box3 {
	box := math.EmptyBox3()
	n.Walk(func(c *Node) bool {
		box = box.Union(c.WorldBounds())
		return true
	})
	return box
}

// DisplayColor returns the color to draw n with, taking selection state
// into account.
func (n *Node) DisplayColor() color.RGBA {
	switch {
	case n.Selected:
		return SelectedColor
	case n.Highlighted:
		return color.RGBA{
			R: uint8((uint16(n.Color.R) + uint16(HighlightColor.R)) / 2),
			G: uint8((uint16(n.Color.G) + uint16(HighlightColor.G)) / 2),
			B: uint8((uint16(n.Color.B) + uint16(HighlightColor.B)) / 2),
			A: n.Color.A,
		}
	}
	return n.Color
}

// ElementAncestor returns the nearest node, starting at n, that is an IFC
// element. It returns n when no ancestor qualifies.
func (n *Node) ElementAncestor() *Node {
	for c := n; c != nil; c = c.parent {
		if c.IsIFC {
			return c
		}
	}
	return n
}
