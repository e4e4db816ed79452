package ui

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Robots     int
	Tick       int32
	FPS        int32
	Paused     bool
	Active     []string // active satellite states
	Indicators int
	DropRate   float64
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Robots: %d | Tick: %d | FPS: %d", data.Robots, data.Tick, data.FPS),
		10, 35, 16, rl.LightGray,
	)

	active := "none"
	if len(data.Active) > 0 {
		active = strings.Join(data.Active, ", ")
	}
	rl.DrawText(
		fmt.Sprintf("Satellite: %s | Indicators: %d | Drop rate: %.2f", active, data.Indicators, data.DropRate),
		10, 55, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 75, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
