//go:build !js

// Package renderer draws the scene with OpenGL: lit boxes for node bounds
// and line outlines for selection and debug bounds.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/internal/engine/geometry"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/engine/screenshot"
	"github.com/Faultbox/ifcview/internal/engine/shader"
	"github.com/Faultbox/ifcview/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ShowBounds bool // outline every node, not only selected ones
}

type batch struct {
	first int32
	count int32
	color [3]float32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	solid *shader.Program
	lines *shader.Program

	solidVAO, solidVBO uint32
	lineVAO, lineVBO   uint32

	// Per-frame scratch buffers.
	faceData    []float32
	lineData    []float32
	faceBatches []batch
	lineBatches []batch

	// Last frame drawn, replayed offscreen by Capture.
	lastScene  *scene.Scene
	lastCamera *camera.PerspectiveCamera
	capture    *target

	log *zap.Logger
}

// New creates a renderer. The OpenGL context must already exist.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)

	var err error
	if r.solid, err = shader.NewProgram(shader.SolidVertex, shader.SolidFragment); err != nil {
		return nil, fmt.Errorf("solid program: %w", err)
	}
	if r.lines, err = shader.NewProgram(shader.LineVertex, shader.LineFragment); err != nil {
		r.solid.Delete()
		return nil, fmt.Errorf("line program: %w", err)
	}

	r.solidVAO, r.solidVBO = newVertexArray([]int32{3, 3})
	r.lineVAO, r.lineVBO = newVertexArray([]int32{3})

	r.SetSize(cfg.Width, cfg.Height)
	return r, nil
}

// newVertexArray creates a VAO/VBO pair with tightly packed float attributes
// of the given sizes.
func newVertexArray(sizes []int32) (vao, vbo uint32) {
	var stride int32
	for _, s := range sizes {
		stride += s * 4
	}

	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	var offset uintptr
	for i, s := range sizes {
		gl.VertexAttribPointerWithOffset(uint32(i), s, gl.FLOAT, false, stride, offset)
		gl.EnableVertexAttribArray(uint32(i))
		offset += uintptr(s * 4)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return vao, vbo
}

// SetShowBounds toggles outlines on every node.
func (r *Renderer) SetShowBounds(show bool) {
	r.config.ShowBounds = show
}

// ShowBounds reports whether every node is outlined.
func (r *Renderer) ShowBounds() bool {
	return r.config.ShowBounds
}

// SetSize handles window resize.
func (r *Renderer) SetSize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Render draws s from cam.
func (r *Renderer) Render(s *scene.Scene, cam *camera.PerspectiveCamera) {
	r.lastScene, r.lastCamera = s, cam
	r.draw(s, cam)
}

func (r *Renderer) draw(s *scene.Scene, cam *camera.PerspectiveCamera) {
	bg := s.Background
	gl.ClearColor(float32(bg.R)/255, float32(bg.G)/255, float32(bg.B)/255, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.collect(s)
	viewProj := cam.ViewProjection()

	if len(r.faceBatches) > 0 {
		r.solid.Use()
		r.solid.SetMat4("uViewProj", viewProj.Ptr())
		ambient, dirs, colors := s.Lights.Uniforms()
		r.solid.SetVec3("uAmbient", ambient)
		r.solid.SetVec3Array("uLightDirs", dirs[:])
		r.solid.SetVec3Array("uLightColors", colors[:])
		drawBatches(r.solid, r.solidVAO, r.solidVBO, r.faceData, r.faceBatches, gl.TRIANGLES)
	}

	if len(r.lineBatches) > 0 {
		r.lines.Use()
		r.lines.SetMat4("uViewProj", viewProj.Ptr())
		drawBatches(r.lines, r.lineVAO, r.lineVBO, r.lineData, r.lineBatches, gl.LINES)
	}

	gl.BindVertexArray(0)
}

// collect gathers vertex data for every visible node with geometry.
func (r *Renderer) collect(s *scene.Scene) {
	r.faceData = r.faceData[:0]
	r.lineData = r.lineData[:0]
	r.faceBatches = r.faceBatches[:0]
	r.lineBatches = r.lineBatches[:0]

	s.Walk(func(n *scene.Node) bool {
		if !n.Visible {
			return false
		}
		box := n.WorldBounds()
		if box.IsEmpty() {
			return true
		}

		r.faceBatches = append(r.faceBatches, batch{
			first: int32(len(r.faceData) / 6),
			count: geometry.FaceVertexCount,
			color: rgb(n.DisplayColor()),
		})
		r.faceData = append(r.faceData, geometry.BoxFaces(box)...)

		if r.config.ShowBounds || n.Selected || n.Highlighted {
			r.lineBatches = append(r.lineBatches, batch{
				first: int32(len(r.lineData) / 3),
				count: geometry.EdgeVertexCount,
				color: rgb(outlineColor(n)),
			})
			r.lineData = append(r.lineData, geometry.BoxEdges(geometry.Pad(box, geometry.SelectionPadding))...)
		}
		return true
	})
}

func drawBatches(p *shader.Program, vao, vbo uint32, data []float32, batches []batch, mode uint32) {
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STREAM_DRAW)
	for _, b := range batches {
		p.SetVec3("uColor", b.color)
		gl.DrawArrays(mode, b.first, b.count)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func outlineColor(n *scene.Node) color.RGBA {
	switch {
	case n.Selected:
		return scene.SelectedColor
	case n.Highlighted:
		return scene.HighlightColor
	}
	return color.RGBA{A: 0xff}
}

func rgb(c color.RGBA) [3]float32 {
	return [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

// Capture redraws the last rendered frame into an offscreen target of the
// current size and reads it back.
func (r *Renderer) Capture() (image.Image, error) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid framebuffer size %dx%d", w, h)
	}
	if r.lastScene == nil || r.lastCamera == nil {
		return nil, fmt.Errorf("nothing rendered yet")
	}

	if r.capture == nil {
		t, err := newTarget(int32(w), int32(h))
		if err != nil {
			return nil, err
		}
		r.capture = t
	}
	r.capture.resize(int32(w), int32(h))

	restore := r.capture.bind()
	r.draw(r.lastScene, r.lastCamera)
	pixels := r.capture.readPixels()
	restore()

	return screenshot.FromBottomUp(pixels, w, h)
}

// Close releases GL resources.
func (r *Renderer) Close() error {
	r.log.Info("closing renderer")
	if r.capture != nil {
		r.capture.destroy()
		r.capture = nil
	}
	for _, vao := range []*uint32{&r.solidVAO, &r.lineVAO} {
		if *vao != 0 {
			gl.DeleteVertexArrays(1, vao)
			*vao = 0
		}
	}
	for _, vbo := range []*uint32{&r.solidVBO, &r.lineVBO} {
		if *vbo != 0 {
			gl.DeleteBuffers(1, vbo)
			*vbo = 0
		}
	}
	if r.solid != nil {
		r.solid.Delete()
	}
	if r.lines != nil {
		r.lines.Delete()
	}
	return nil
}
