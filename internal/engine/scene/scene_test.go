package scene

import (
	"testing"

	"github.com/Faultbox/ifcview/pkg/math"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float32) math.Box3 {
	return math.NewBox3(math.Vec3{X: minX, Y: minY, Z: minZ}, math.Vec3{X: maxX, Y: maxY, Z: maxZ})
}

func TestSubtreeBoundsAppliesTranslation(t *testing.T) {
	root := NewNode("site")
	root.Position = math.Vec3{X: 10}

	wall := NewNode("wall")
	wall.Bounds = box(0, 0, 0, 1, 3, 0.2)
	wall.Position = math.Vec3{Z: 5}
	root.Add(wall)

	slab := NewNode("slab")
	slab.Bounds = box(-1, -0.2, -1, 1, 0, 1)
	root.Add(slab)

	got := root.SubtreeBounds()
	want := box(9, -0.2, -1, 11, 3, 5.2)
	if !got.Min.ApproxEqual(want.Min, 1e-5) || !got.Max.ApproxEqual(want.Max, 1e-5) {
		t.Errorf("SubtreeBounds = %+v, want %+v", got, want)
	}
}

func TestAddReparents(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	child := NewNode("child")

	a.Add(child)
	b.Add(child)

	if len(a.Children()) != 0 {
		t.Errorf("child still attached to previous parent")
	}
	if child.Parent() != b {
		t.Errorf("child parent = %v, want b", child.Parent())
	}
}

func TestSceneAddTwiceKeepsOneEntry(t *testing.T) {
	s := New()
	n := NewNode("model")

	s.Add(n)
	s.Add(n)

	if got := len(s.Children()); got != 1 {
		t.Fatalf("len(Children()) = %d, want 1", got)
	}
	if !s.Remove(n) || len(s.Children()) != 0 {
		t.Errorf("node not removed cleanly")
	}
}

func TestSceneAddDetachesFromNode(t *testing.T) {
	s := New()
	parent := NewNode("parent")
	child := NewNode("child")
	parent.Add(child)

	s.Add(child)

	if len(parent.Children()) != 0 {
		t.Errorf("child still attached to previous parent")
	}
	if s.Last() != child {
		t.Errorf("Last() = %v, want child", s.Last())
	}
}

func TestSceneLast(t *testing.T) {
	s := New()
	if s.Last() != nil {
		t.Fatal("empty scene should have no last child")
	}
	first := NewNode("first")
	second := NewNode("second")
	s.Add(first)
	s.Add(second)

	if s.Last() != second {
		t.Errorf("Last() = %v, want second", s.Last().Name)
	}
	if !s.Remove(second) || s.Last() != first {
		t.Errorf("Remove did not restore first as last child")
	}
	if s.Remove(second) {
		t.Error("removing a missing node should report false")
	}
}

func TestElementAncestor(t *testing.T) {
	storey := NewNode("storey")
	storey.IsIFC = true
	storey.ExpressID = 42

	mesh := NewNode("mesh")
	storey.Add(mesh)

	if got := mesh.ElementAncestor(); got != storey {
		t.Errorf("ElementAncestor = %v, want storey", got.Name)
	}
	loose := NewNode("loose")
	if got := loose.ElementAncestor(); got != loose {
		t.Errorf("ElementAncestor without IFC ancestor should return self")
	}
}

func TestClearSelection(t *testing.T) {
	s := New()
	n := NewNode("n")
	n.Selected = true
	n.Highlighted = true
	s.Add(n)

	s.ClearHighlight()
	if n.Highlighted || !n.Selected {
		t.Errorf("ClearHighlight touched selection: %+v", n)
	}
	s.ClearSelection()
	if n.Selected {
		t.Error("ClearSelection left node selected")
	}
}

func TestDisplayColor(t *testing.T) {
	n := NewNode("n")
	if got := n.DisplayColor(); got != DefaultColor {
		t.Errorf("DisplayColor = %v, want %v", got, DefaultColor)
	}

	n.Highlighted = true
	got := n.DisplayColor()
	if got == DefaultColor || got == HighlightColor {
		t.Errorf("highlight should blend, got %v", got)
	}

	n.Selected = true
	if got := n.DisplayColor(); got != SelectedColor {
		t.Errorf("selected DisplayColor = %v, want %v", got, SelectedColor)
	}
}
