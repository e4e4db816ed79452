// Package inspector selects actors on screen and shows their snapshots.
package inspector

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/comm"
)

// Panel dimensions
const (
	PanelWidth   = 300
	PanelPadding = 10
	HeaderHeight = 30
	PickRadius   = 14
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
)

// Inspector tracks the selected actor and draws its panel.
type Inspector struct {
	selected     comm.ActorID
	hasSelected  bool
	panelX       int32
	panelY       int32
	screenWidth  int32
	screenHeight int32
}

// NewInspector creates a new inspector instance.
func NewInspector(screenWidth, screenHeight int32) *Inspector {
	ins := &Inspector{}
	ins.Resize(screenWidth, screenHeight)
	return ins
}

// Resize re-anchors the panel to the right edge.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.screenWidth = screenWidth
	ins.screenHeight = screenHeight
	ins.panelX = screenWidth - PanelWidth - 10
	ins.panelY = 10
}

// Selected returns the selected actor.
func (ins *Inspector) Selected() (comm.ActorID, bool) {
	return ins.selected, ins.hasSelected
}

// Select selects an actor.
func (ins *Inspector) Select(id comm.ActorID) {
	ins.selected = id
	ins.hasSelected = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// HandleInput processes click selection.
func (ins *Inspector) HandleInput(mouseX, mouseY float32, targets []Target, project Projector) {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	if ins.hasSelected {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if int32(mouseX) >= closeX && int32(mouseX) <= closeX+20 &&
			int32(mouseY) >= closeY && int32(mouseY) <= closeY+20 {
			ins.Deselect()
			return
		}
		if int32(mouseX) >= ins.panelX && int32(mouseX) <= ins.panelX+PanelWidth &&
			int32(mouseY) >= ins.panelY {
			return
		}
	}

	if id, ok := Pick(mouseX, mouseY, PickRadius, targets, project); ok {
		ins.Select(id)
	}
}

// Draw renders the panel for the selected actor's snapshot.
func (ins *Inspector) Draw(snapshot any) {
	if !ins.hasSelected {
		return
	}
	fields := ExtractFields(snapshot)

	height := int32(HeaderHeight + PanelPadding*2 + 18*len(fields))
	x, y := ins.panelX, ins.panelY

	rl.DrawRectangle(x, y, PanelWidth, height, ColorPanelBg)
	rl.DrawRectangle(x, y, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawRectangleLines(x, y, PanelWidth, height, ColorPanelBorder)
	rl.DrawText(ins.selected.String(), x+PanelPadding, y+8, 16, ColorHeaderText)
	rl.DrawText("x", x+PanelWidth-20, y+6, 18, ColorCloseBtn)

	y += HeaderHeight + PanelPadding
	for _, f := range fields {
		y += DrawField(x+PanelPadding, y, f)
	}
}
