package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/comm"
	"github.com/pthm-cable/swarm/ui"
)

var (
	colorGround    = rl.Color{R: 34, G: 52, B: 40, A: 255}
	colorBarrier   = rl.Color{R: 160, G: 160, B: 170, A: 255}
	colorRobot     = rl.Color{R: 90, G: 170, B: 230, A: 255}
	colorBuilder   = rl.Color{R: 240, G: 180, B: 60, A: 255}
	colorSatellite = rl.Color{R: 230, G: 230, B: 240, A: 255}
	colorDirect    = rl.Color{R: 120, G: 255, B: 140, A: 255}
	colorBroadcast = rl.Color{R: 255, G: 120, B: 200, A: 255}
	colorSelected  = rl.Yellow
)

// Draw renders one frame.
func (v *Viewer) Draw() {
	v.driver.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	v.drawGround()
	v.drawIndicators()
	v.drawRobots()
	v.drawSatellite()

	v.statsMu.Lock()
	dropRate := v.lastStats.DropRate
	v.statsMu.Unlock()

	v.hud.Draw(ui.HUDData{
		Title:      "Swarm",
		Robots:     len(v.driver.Robots()),
		Tick:       v.driver.Tick(),
		FPS:        rl.GetFPS(),
		Paused:     v.driver.Paused(),
		Active:     v.driver.Satellite().Snapshot().Active,
		Indicators: len(v.driver.Indicators()),
		DropRate:   dropRate,
	})
	v.controls.Draw(v.bindings, v.bindingEnabled)
	v.inspector.Draw(v.selectedSnapshot())

	if line, ok := v.console.Draw(); ok {
		v.driver.QueueConsoleCommand(line)
	}
	v.hud.DrawControls(int32(v.screenHeight), controlsLegend)

	rl.EndDrawing()
}

// drawGround draws the square ground and its barriers.
func (v *Viewer) drawGround() {
	half := v.cfg.Derived.HalfGround32
	x0, z0 := v.camera.WorldToScreen(-half, -half)
	x1, z1 := v.camera.WorldToScreen(half, half)
	rect := rl.Rectangle{X: x0, Y: z0, Width: x1 - x0, Height: z1 - z0}

	rl.DrawRectangleRec(rect, colorGround)
	thick := float32(v.cfg.World.BarrierWidth) * v.camera.Zoom
	if thick < 1 {
		thick = 1
	}
	rl.DrawRectangleLinesEx(rect, thick, colorBarrier)
}

func (v *Viewer) drawRobots() {
	selected, hasSel := v.inspector.Selected()
	radius := float32(v.cfg.Robots.BodyRadius) * v.camera.Zoom
	if radius < 3 {
		radius = 3
	}

	for _, r := range v.driver.Robots() {
		p := r.Position()
		if !v.camera.IsVisible(p.X, p.Z, float32(v.cfg.Robots.BodyRadius)) {
			continue
		}
		sx, sy := v.camera.Project(p.X, p.Y, p.Z)

		color := colorRobot
		if r.Snapshot().Constructing {
			color = colorBuilder
		}
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, color)
		v.drawFlash(r.ID(), sx, sy, radius)

		if hasSel && selected == r.ID() {
			rl.DrawCircleLines(int32(sx), int32(sy), radius+4, colorSelected)
		}
	}
}

func (v *Viewer) drawSatellite() {
	p := v.driver.Satellite().Position()
	sx, sy := v.camera.Project(p.X, p.Y, p.Z)
	gx, gy := v.camera.WorldToScreen(p.X, p.Z)

	// Tether to the ground point it hovers over.
	rl.DrawLineEx(rl.Vector2{X: gx, Y: gy}, rl.Vector2{X: sx, Y: sy}, 1, rl.Fade(colorSatellite, 0.3))
	rl.DrawRectangleV(rl.Vector2{X: sx - 6, Y: sy - 6}, rl.Vector2{X: 12, Y: 12}, colorSatellite)
	v.drawFlash(comm.Satellite, sx, sy, 8)

	if id, ok := v.inspector.Selected(); ok && id == comm.Satellite {
		rl.DrawRectangleLines(int32(sx)-10, int32(sy)-10, 20, 20, colorSelected)
	}
}

// drawFlash pulses a receiving body and rings a broadcasting one.
func (v *Viewer) drawFlash(id comm.ActorID, sx, sy, radius float32) {
	if a := v.flashes.received(id); a > 0 {
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius*0.6, rl.Fade(colorDirect, a))
	}
	if a := v.flashes.broadcasting(id); a > 0 {
		ring := radius + (1-a)*radius*4
		rl.DrawCircleLines(int32(sx), int32(sy), ring, rl.Fade(colorBroadcast, a))
	}
}

// drawIndicators draws a fading line for every live direct message.
func (v *Viewer) drawIndicators() {
	duration := float32(v.cfg.Comm.IndicatorDuration)
	if duration <= 0 {
		return
	}
	for _, ind := range v.driver.Indicators() {
		if ind.Recipient == comm.Broadcast {
			continue
		}
		from := v.driver.GetPosition(ind.Sender)
		to := v.driver.GetPosition(ind.Recipient)
		fx, fy := v.camera.Project(from.X, from.Y, from.Z)
		tx, ty := v.camera.Project(to.X, to.Y, to.Z)
		rl.DrawLineEx(rl.Vector2{X: fx, Y: fy}, rl.Vector2{X: tx, Y: ty}, 2, rl.Fade(colorDirect, ind.Remaining/duration))
	}
}
