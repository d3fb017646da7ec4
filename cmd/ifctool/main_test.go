package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ifcview/internal/viewsync"
	"github.com/Faultbox/ifcview/pkg/math"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseVec3(t *testing.T) {
	v, err := parseVec3("1, -2.5,3")
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{X: 1, Y: -2.5, Z: 3}, v)

	_, err = parseVec3("1,2")
	assert.Error(t, err)
	_, err = parseVec3("1,x,3")
	assert.Error(t, err)
}

func TestBasisCommand(t *testing.T) {
	out, err := execute(t, "basis", "+X+Z-Y", "+X+Y+Z", "1,2,3")
	require.NoError(t, err)
	assert.Equal(t, "(1, 3, -2)\n", out)

	_, err = execute(t, "basis", "+X+X+Z", "+X+Y+Z", "1,2,3")
	assert.Error(t, err)
}

func TestFitCommand(t *testing.T) {
	out, err := execute(t, "fit", "--min", "-1,-1,-1", "--max", "1,1,1", "--from", "8,8,8")
	require.NoError(t, err)
	assert.Contains(t, out, "center:   (0, 0, 0)")
	assert.NotContains(t, out, "note:")

	out, err = execute(t, "fit", "--from", "0,10,0")
	require.NoError(t, err)
	assert.Contains(t, out, "note:")
}

func TestFitCommandEmptyBox(t *testing.T) {
	_, err := execute(t, "fit", "--min", "1,1,1", "--max", "-1,-1,-1")
	assert.Error(t, err)
}

func TestViewpointCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vp.json")
	data := `{"perspective_camera":{"camera_view_point":{"x":1,"y":2,"z":3},` +
		`"camera_direction":{"x":0,"y":1,"z":0},"field_of_view":60}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	out, err := execute(t, "viewpoint", path)
	require.NoError(t, err)
	assert.Contains(t, out, "position: (1, 3, -2)")
	assert.Contains(t, out, "fov:      60")

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"guid":"x"}`), 0o644))
	out, err = execute(t, "viewpoint", empty)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to apply")
}

func TestPushCommand(t *testing.T) {
	srv := httptest.NewServer(viewsync.NewHub())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/review"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	watcher, err := viewsync.Dial(ctx, url, "watcher")
	require.NoError(t, err)
	go watcher.Run(ctx)
	defer watcher.Close()

	path := filepath.Join(t.TempDir(), "vp.yaml")
	data := "guid: pushed\nperspective_camera:\n" +
		"  camera_view_point: {x: 1, y: 2, z: 3}\n" +
		"  camera_direction: {x: 0, y: 1, z: 0}\n" +
		"  field_of_view: 50\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err = execute(t, "push", url, path)
	require.NoError(t, err)

	select {
	case vp := <-watcher.Viewpoints():
		assert.Equal(t, "pushed", vp.GUID)
	case <-ctx.Done():
		t.Fatal("viewpoint was not relayed")
	}
}

func TestPushRequiresCamera(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"guid":"x"}`), 0o644))

	_, err := execute(t, "push", "ws://127.0.0.1:1/room", path)
	assert.Error(t, err)
}

func TestRunHubStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runHub(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("hub did not stop")
	}
}
