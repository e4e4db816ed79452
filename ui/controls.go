package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsPanel lists the key bindings and which view toggles are on.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition moves the panel.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Draw renders the panel. enabled reports the current state of a binding.
func (c *ControlsPanel) Draw(bindings *BindingRegistry, enabled func(BindingID) bool) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := bindings.Categories()
	items := 0
	for _, cat := range categories {
		items += len(bindings.ByCategory(cat)) + 1
	}
	panelHeight := int32(items)*lineHeight + padding*3 + lineHeight

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Controls", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, cat := range categories {
		y = r.DrawSectionHeader(c.x+padding, y, categoryLabel(cat))
		for _, b := range bindings.ByCategory(cat) {
			y = r.DrawToggle(c.x+padding, y, b.Name, b.KeyLabel, enabled(b.ID), c.width-padding*2)
		}
		y += 4
	}
	return y
}

func categoryLabel(cat string) string {
	switch cat {
	case "view":
		return "View"
	case "swarm":
		return "Swarm"
	default:
		return cat
	}
}
