package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/pkg/math"
)

// Manifest is a pre-extracted model: an element tree with bounds, as an
// external IFC engine would produce it.
type Manifest struct {
	Name     string    `yaml:"name"`
	Elements []Element `yaml:"elements"`
}

// Element is one manifest node. Min and Max are local bounds; omit both
// for grouping nodes without geometry.
type Element struct {
	Name      string      `yaml:"name"`
	ExpressID uint32      `yaml:"express_id"`
	Type      string      `yaml:"type"`
	Color     string      `yaml:"color"`
	Position  [3]float32  `yaml:"position"`
	Min       *[3]float32 `yaml:"min"`
	Max       *[3]float32 `yaml:"max"`
	Children  []Element   `yaml:"children"`
}

// ParseManifest decodes a YAML manifest.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Build converts the manifest into a scene graph.
func (m *Manifest) Build() (*scene.Node, error) {
	root := scene.NewNode(m.Name)
	for i := range m.Elements {
		child, err := m.Elements[i].build()
		if err != nil {
			return nil, err
		}
		root.Add(child)
	}
	return root, nil
}

func (e *Element) build() (*scene.Node, error) {
	name := e.Name
	if name == "" {
		name = e.Type
	}
	n := scene.NewNode(name)
	n.ExpressID = e.ExpressID
	n.IsIFC = e.ExpressID != 0
	n.Position = math.Vec3{X: e.Position[0], Y: e.Position[1], Z: e.Position[2]}

	switch {
	case e.Min != nil && e.Max != nil:
		n.Bounds = math.NewBox3(
			math.Vec3{X: e.Min[0], Y: e.Min[1], Z: e.Min[2]},
			math.Vec3{X: e.Max[0], Y: e.Max[1], Z: e.Max[2]},
		)
	case e.Min != nil || e.Max != nil:
		return nil, fmt.Errorf("element %q: min and max must be given together", name)
	}

	if e.Color != "" {
		c, err := colorful.Hex(e.Color)
		if err != nil {
			return nil, fmt.Errorf("element %q color %q: %w", name, e.Color, err)
		}
		n.Color.R, n.Color.G, n.Color.B = c.RGB255()
	}

	for i := range e.Children {
		child, err := e.Children[i].build()
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

// ManifestEngine loads YAML manifests from files or URLs.
type ManifestEngine struct {
	Client   *http.Client
	wasmPath string
}

// NewManifestEngine creates an engine using http.DefaultClient for URLs.
func NewManifestEngine() *ManifestEngine {
	return &ManifestEngine{}
}

// SetWasmPath records the path. Manifests need no engine module.
func (e *ManifestEngine) SetWasmPath(path string) {
	e.wasmPath = path
}

// WasmPath returns the recorded path.
func (e *ManifestEngine) WasmPath() string {
	return e.wasmPath
}

// Load reads and builds the manifest at src.
func (e *ManifestEngine) Load(ctx context.Context, src Source) (*scene.Node, error) {
	rc, err := src.Open(ctx, e.Client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	m, err := ParseManifest(rc)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = src.Name()
	}
	return m.Build()
}
