package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/pkg/math"
)

const testManifest = `
name: Duplex
elements:
  - name: Level 1
    type: IfcBuildingStorey
    express_id: 10
    children:
      - name: Wall-01
        type: IfcWall
        express_id: 101
        color: "#c8b496"
        position: [2, 0, 0]
        min: [-1, -1, -1]
        max: [1, 1, 1]
`

func TestParseSource(t *testing.T) {
	tests := []struct {
		in    string
		isURL bool
		name  string
	}{
		{"models/duplex.yaml", false, "duplex.yaml"},
		{"https://example.com/m/duplex.ifc?token=1", true, "duplex.ifc"},
		{"HTTP://example.com/a.ifc", true, "a.ifc"},
	}
	for _, tt := range tests {
		src := ParseSource(tt.in)
		assert.Equal(t, tt.isURL, src.IsURL(), tt.in)
		assert.Equal(t, tt.name, src.Name(), tt.in)
		assert.Equal(t, tt.in, src.String())
	}
}

func TestManifestBuild(t *testing.T) {
	m, err := ParseManifest(strings.NewReader(testManifest))
	require.NoError(t, err)

	root, err := m.Build()
	require.NoError(t, err)
	assert.Equal(t, "Duplex", root.Name)
	require.Len(t, root.Children(), 1)

	storey := root.Children()[0]
	assert.True(t, storey.IsIFC)
	assert.True(t, storey.Bounds.IsEmpty())

	wall := storey.Children()[0]
	assert.Equal(t, uint32(101), wall.ExpressID)
	assert.Equal(t, uint8(0xc8), wall.Color.R)
	assert.True(t, wall.WorldBounds().Min.ApproxEqual(math.Vec3{X: 1, Y: -1, Z: -1}, 1e-6))
}

func TestManifestRejectsHalfBounds(t *testing.T) {
	m, err := ParseManifest(strings.NewReader("name: x\nelements:\n  - name: a\n    min: [0, 0, 0]\n"))
	require.NoError(t, err)
	_, err = m.Build()
	assert.Error(t, err)
}

func TestManifestEngineFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duplex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("elements: []\n"), 0644))

	root, err := NewManifestEngine().Load(context.Background(), FileSource(path))
	require.NoError(t, err)
	assert.Equal(t, "duplex.yaml", root.Name)
}

func TestManifestEngineFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/duplex.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(testManifest))
	}))
	defer srv.Close()

	e := NewManifestEngine()
	e.Client = srv.Client()

	root, err := e.Load(context.Background(), URLSource(srv.URL+"/duplex.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Duplex", root.Name)

	_, err = e.Load(context.Background(), URLSource(srv.URL+"/missing.yaml"))
	assert.Error(t, err)
}

// blockingEngine waits for release or cancellation.
type blockingEngine struct {
	started  chan Source
	release  chan struct{}
	wasmPath string
}

func newBlockingEngine() *blockingEngine {
	return &blockingEngine{started: make(chan Source, 4), release: make(chan struct{})}
}

func (e *blockingEngine) Load(ctx context.Context, src Source) (*scene.Node, error) {
	e.started <- src
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.release:
		return scene.NewNode(src.Name()), nil
	}
}

func (e *blockingEngine) SetWasmPath(path string) { e.wasmPath = path }

func TestManagerCancelAndReplace(t *testing.T) {
	engine := newBlockingEngine()
	m := NewManager(engine)

	firstErr := make(chan error, 1)
	go func() {
		_, err := m.Load(context.Background(), FileSource("first.ifc"))
		firstErr <- err
	}()
	<-engine.started

	secondDone := make(chan *scene.Node, 1)
	go func() {
		root, err := m.Load(context.Background(), FileSource("second.ifc"))
		assert.NoError(t, err)
		secondDone <- root
	}()

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("first load was not cancelled")
	}

	<-engine.started
	close(engine.release)

	root := <-secondDone
	assert.Equal(t, "second.ifc", root.Name)
	require.Len(t, m.Roots(), 1)
	assert.Same(t, root, m.Roots()[0])
	assert.False(t, m.Loading())
}

type failingEngine struct{ err error }

func (e failingEngine) Load(context.Context, Source) (*scene.Node, error) { return nil, e.err }
func (e failingEngine) SetWasmPath(string)                                {}

func TestManagerPropagatesEngineErrors(t *testing.T) {
	want := errors.New("unsupported schema")
	m := NewManager(failingEngine{err: want})

	_, err := m.Load(context.Background(), FileSource("x.ifc"))
	assert.Same(t, want, err)
	assert.Empty(t, m.Roots())
}

func TestManagerSetWasmPath(t *testing.T) {
	engine := newBlockingEngine()
	m := NewManager(engine)
	m.SetWasmPath("/static/wasm/")
	assert.Equal(t, "/static/wasm/", m.WasmPath())
	assert.Equal(t, "/static/wasm/", engine.wasmPath)
}

func TestManagerForget(t *testing.T) {
	engine := newBlockingEngine()
	close(engine.release)
	m := NewManager(engine)

	root, err := m.Load(context.Background(), FileSource("a.ifc"))
	require.NoError(t, err)
	<-engine.started

	assert.True(t, m.Forget(root))
	assert.False(t, m.Forget(root))
	assert.Empty(t, m.Roots())
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("elements: []\n"), 0644))

	m := NewManager(NewManifestEngine())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- m.Watch(ctx, path, 20*time.Millisecond, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Writes before the watcher is registered are lost, so keep writing.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-changed:
			cancel()
			assert.NoError(t, <-done)
			return
		case <-ticker.C:
			require.NoError(t, os.WriteFile(path, []byte("name: edited\n"), 0644))
		case <-deadline:
			t.Fatal("no change reported")
		}
	}
}
