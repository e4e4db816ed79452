// Package viewer renders the swarm with raylib and feeds operator input
// back to the driver as console commands.
package viewer

import (
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/agents"
	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/comm"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/inspector"
	"github.com/pthm-cable/swarm/sim"
	"github.com/pthm-cable/swarm/telemetry"
	"github.com/pthm-cable/swarm/ui"
)

const controlsLegend = "[Arrows] Pan  [+/-] Zoom  [Home] Reset  [H] Controls  [Click] Inspect"

// Viewer draws one driver. Create it before the driver so it can be passed
// as the driver's indicator sink, then Attach the driver.
type Viewer struct {
	cfg    *config.Config
	driver *sim.Driver

	camera    *camera.Camera
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	console   *ui.ConsolePanel
	bindings  *ui.BindingRegistry
	inspector *inspector.Inspector
	flashes   *flashes

	statsMu   sync.Mutex
	lastStats telemetry.WindowStats

	screenWidth, screenHeight float32
}

// New creates a viewer sized from the screen config.
func New(cfg *config.Config) *Viewer {
	w, h := cfg.Derived.ScreenW32, cfg.Derived.ScreenH32
	return &Viewer{
		cfg:          cfg,
		camera:       camera.New(w, h, float32(cfg.World.GroundLength)),
		hud:          ui.NewHUD(),
		controls:     ui.NewControlsPanel(10, 100, 220),
		console:      ui.NewConsolePanel(10, int32(h)-80, 420),
		bindings:     ui.NewBindingRegistry(),
		inspector:    inspector.NewInspector(int32(w), int32(h)),
		flashes:      newFlashes(float32(cfg.Comm.IndicatorDuration)),
		screenWidth:  w,
		screenHeight: h,
	}
}

// Sink returns the indicator sink to hand to the driver.
func (v *Viewer) Sink() comm.Sink { return v.flashes }

// OnStats records the latest telemetry window for the HUD.
func (v *Viewer) OnStats(s telemetry.WindowStats) {
	v.statsMu.Lock()
	v.lastStats = s
	v.statsMu.Unlock()
}

// Attach sets the driver to render and control.
func (v *Viewer) Attach(d *sim.Driver) { v.driver = d }

// Update handles input and advances the driver by one tick.
func (v *Viewer) Update() {
	v.handleInput()
	v.driver.Step()
	if !v.driver.Paused() {
		v.flashes.fade(v.cfg.Derived.DT32)
	}
}

func (v *Viewer) handleInput() {
	v.handleResize()

	// Key bindings stay quiet while the operator is typing.
	if !v.console.Editing() {
		for _, cmd := range v.bindings.Pressed() {
			v.driver.QueueConsoleCommand(cmd)
		}
		if rl.IsKeyPressed(rl.KeySpace) {
			v.driver.QueueConsoleCommand(sim.CmdPause)
		}
		if rl.IsKeyPressed(rl.KeyH) {
			v.controls.Toggle()
		}
		v.handleCameraInput()
	}

	mouse := rl.GetMousePosition()
	v.inspector.HandleInput(mouse.X, mouse.Y, v.targets(), v.camera.Project)
}

func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h
	v.camera.Resize(w, h)
	v.inspector.Resize(int32(w), int32(h))
	v.console.SetPosition(10, int32(h)-80)
}

func (v *Viewer) handleCameraInput() {
	const panSpeed = 8

	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}

func (v *Viewer) targets() []inspector.Target {
	actors := v.driver.Actors()
	out := make([]inspector.Target, len(actors))
	for i, a := range actors {
		out[i] = a
	}
	return out
}

// bindingEnabled reports the live state of view toggles. Command
// bindings have no state and read as off.
func (v *Viewer) bindingEnabled(id ui.BindingID) bool {
	switch id {
	case ui.BindShowConsole:
		return v.driver.Bus().ShowInConsole()
	case ui.BindShowIndicators:
		return v.driver.Bus().ShowIndicators()
	case ui.BindPause:
		return v.driver.Paused()
	case ui.BindConstruction:
		return v.driver.Satellite().InState(agents.StateConstruction)
	case ui.BindForage:
		return v.driver.Satellite().InState(agents.StateForaging)
	}
	return false
}

// selectedSnapshot returns the snapshot of the inspected actor, or nil.
func (v *Viewer) selectedSnapshot() any {
	id, ok := v.inspector.Selected()
	if !ok {
		return nil
	}
	if id == comm.Satellite {
		s := v.driver.Satellite().Snapshot()
		return &s
	}
	for _, r := range v.driver.Robots() {
		if r.ID() == id {
			s := r.Snapshot()
			return &s
		}
	}
	return nil
}
