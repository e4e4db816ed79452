package ui

import (
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const consoleMaxChars = 128

// ConsolePanel is a one-line operator command box.
type ConsolePanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	text     string
	editing  bool
}

// NewConsolePanel creates a console anchored at x, y.
func NewConsolePanel(x, y, width int32) *ConsolePanel {
	return &ConsolePanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition moves the console.
func (c *ConsolePanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Editing reports whether the text box has keyboard focus.
// Key bindings are suspended while it does.
func (c *ConsolePanel) Editing() bool {
	return c.editing
}

// Draw renders the console and returns a submitted line, if any.
func (c *ConsolePanel) Draw() (string, bool) {
	r := c.renderer
	pad := r.Theme.Padding
	boxW := float32(c.width - 90)

	r.DrawPanel(c.x, c.y, c.width, 44)

	submitted := false
	box := rl.Rectangle{X: float32(c.x + pad), Y: float32(c.y + 7), Width: boxW, Height: 30}
	if gui.TextBox(box, &c.text, consoleMaxChars, c.editing) {
		// Enter while editing submits; a click toggles focus.
		if c.editing && rl.IsKeyPressed(rl.KeyEnter) {
			submitted = true
		}
		c.editing = !c.editing
	}

	btn := rl.Rectangle{X: box.X + boxW + 5, Y: box.Y, Width: 65, Height: 30}
	if gui.Button(btn, "Send") {
		submitted = true
	}

	if !submitted {
		return "", false
	}
	line := strings.TrimSpace(c.text)
	c.text = ""
	if line == "" {
		return "", false
	}
	return line, true
}
