package loop

import (
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/logger"
)

// Component is anything that needs a per-frame update.
type Component interface {
	Update(delta float64)
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(delta float64)

// Update calls f(delta).
func (f ComponentFunc) Update(delta float64) { f(delta) }

// Controls is updated once per frame before rendering.
type Controls interface {
	Update() bool
}

// Renderer draws a scene from a camera.
type Renderer interface {
	Render(s *scene.Scene, cam *camera.PerspectiveCamera)
}

// Loop is the self-rescheduling render loop. All methods must be called
// from the host's single callback thread.
type Loop struct {
	scheduler Scheduler
	clock     *Clock
	controls  Controls
	renderer  Renderer
	scene     *scene.Scene
	camera    *camera.PerspectiveCamera

	components []Component

	running bool
	inTick  bool
	frames  uint64
	log     *zap.Logger
}

// New creates a stopped loop. The clock starts now.
func New(sched Scheduler, controls Controls, r Renderer, s *scene.Scene, cam *camera.PerspectiveCamera) *Loop {
	return &Loop{
		scheduler: sched,
		clock:     NewClock(),
		controls:  controls,
		renderer:  r,
		scene:     s,
		camera:    cam,
		log:       logger.Named("loop"),
	}
}

// SetClock replaces the clock, mainly for tests.
func (l *Loop) SetClock(c *Clock) {
	l.clock = c
}

// AddComponent registers c for per-frame updates in registration order.
func (l *Loop) AddComponent(c Component) {
	l.components = append(l.components, c)
}

// Components returns the registered components.
func (l *Loop) Components() []Component {
	return l.components
}

// Start schedules the first tick. Calling Start on a running loop does nothing.
func (l *Loop) Start() {
	if l.running {
		return
	}
	l.running = true
	l.scheduler.RequestFrame(l.Tick)
	l.log.Debug("render loop started")
}

// Stop prevents further ticks from being scheduled.
func (l *Loop) Stop() {
	if !l.running {
		return
	}
	l.running = false
	l.log.Debug("render loop stopped", zap.Uint64("frames", l.frames))
}

// Running reports whether the loop reschedules itself.
func (l *Loop) Running() bool {
	return l.running
}

// Frames returns the number of completed ticks.
func (l *Loop) Frames() uint64 {
	return l.frames
}

// Tick runs one frame: the next frame is requested first, then controls
// are updated, the scene is rendered and components see the elapsed time.
func (l *Loop) Tick() {
	if !l.running {
		return
	}
	if l.inTick {
		l.log.Warn("re-entrant tick ignored")
		return
	}
	l.inTick = true
	defer func() { l.inTick = false }()

	delta := l.clock.Delta()
	l.scheduler.RequestFrame(l.Tick)

	l.controls.Update()
	l.renderer.Render(l.scene, l.camera)

	for _, c := range l.components {
		c.Update(delta)
	}
	l.frames++
}

// RenderNow updates controls and renders synchronously without advancing
// the clock or updating components.
func (l *Loop) RenderNow() {
	l.controls.Update()
	l.renderer.Render(l.scene, l.camera)
}
