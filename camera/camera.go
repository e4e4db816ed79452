// Package camera provides an orthographic top-down camera over the fenced ground.
package camera

import "math"

// FrameFraction is the orthographic half-height of the default view as a
// fraction of the ground length.
const FrameFraction = 0.42

// HeightTilt shifts bodies up the screen by this fraction of their altitude,
// so the satellite is drawn above its ground point.
const HeightTilt = 0.5

// Camera controls the viewport into the ground plane (x, z).
type Camera struct {
	// Position is the camera center in world coordinates
	X, Z float32

	// Zoom in screen pixels per world unit
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// GroundLength is the side of the square ground centred on the origin.
	GroundLength float32

	// Zoom constraints
	MinZoom, MaxZoom float32
	fitZoom          float32
}

// New creates a camera centered on the ground, framed orthographically.
func New(viewportW, viewportH, groundLength float32) *Camera {
	c := &Camera{
		ViewportW:    viewportW,
		ViewportH:    viewportH,
		GroundLength: groundLength,
	}
	c.refit()
	c.Reset()
	return c
}

// OrthographicSize returns the world half-height framed by the default view.
func (c *Camera) OrthographicSize() float32 {
	return c.GroundLength * FrameFraction
}

func (c *Camera) refit() {
	c.fitZoom = c.ViewportH / (2 * c.OrthographicSize())
	c.MinZoom = c.fitZoom / 4
	c.MaxZoom = c.fitZoom * 8
}

// WorldToScreen converts a ground point to screen coordinates.
func (c *Camera) WorldToScreen(wx, wz float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wz-c.Z)*c.Zoom
	return sx, sy
}

// Project converts a 3D body position to screen coordinates, lifting it by its altitude.
func (c *Camera) Project(wx, wy, wz float32) (sx, sy float32) {
	sx, sy = c.WorldToScreen(wx, wz)
	return sx, sy - wy*HeightTilt*c.Zoom
}

// ScreenToWorld converts screen coordinates to a ground point.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wz float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wz = c.Z + (sy-c.ViewportH/2)/c.Zoom
	return wx, wz
}

// IsVisible returns true if a circle at (wx, wz) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wz, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wz-c.Z) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	ratio := c.Zoom / c.fitZoom
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.refit()
	c.SetZoom(c.fitZoom * ratio)
}

// Pan moves the camera by the given delta in screen pixels.
// The center never leaves the ground.
func (c *Camera) Pan(dx, dy float32) {
	half := c.GroundLength / 2
	c.X = clamp(c.X+dx/c.Zoom, -half, half)
	c.Z = clamp(c.Z+dy/c.Zoom, -half, half)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default framing.
func (c *Camera) Reset() {
	c.X = 0
	c.Z = 0
	c.Zoom = c.fitZoom
}

// VisibleWorldBounds returns the ground-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minZ, maxX, maxZ float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Z - halfH, c.X + halfW, c.Z + halfH
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	return float32(math.Abs(float64(x)))
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
