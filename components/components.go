// Package components defines the ECS components of actor bodies.
package components

import "math"

// Kind distinguishes body types.
type Kind uint8

const (
	KindRobot Kind = iota
	KindSatellite
)

// Identity ties a body to its actor ID.
type Identity struct {
	ID   uint32 `inspect:"label"`
	Kind Kind   `inspect:"skip"`
}

// Position is a world-space position. Y is up; robots move on the X/Z ground plane.
type Position struct {
	X, Y, Z float32 `inspect:"label,fmt:%.2f"`
}

// Zero is the sentinel returned for absent bodies.
var Zero = Position{}

// Ground returns the projection of p on the ground plane.
func (p Position) Ground() (x, z float32) {
	return p.X, p.Z
}

// DistanceXZ returns the ground-plane distance between p and (x, z).
func (p Position) DistanceXZ(x, z float32) float32 {
	dx := x - p.X
	dz := z - p.Z
	return float32(math.Sqrt(float64(dx*dx + dz*dz)))
}

// Motion is a robot's heading and current ground speed.
type Motion struct {
	Heading float32 `inspect:"label,fmt:%.2f"` // radians, 0 = +X
	Speed   float32 `inspect:"bar,max:5"`
}

// Body holds physical properties of a body.
type Body struct {
	Radius     float32 `inspect:"label,fmt:%.2f"`
	RadarRange float32 `inspect:"label,fmt:%.1f"`
}

// Steering is an optional seek target on the ground plane.
type Steering struct {
	TargetX, TargetZ float32 `inspect:"label,fmt:%.1f"`
	Active           bool    `inspect:"bool"`
}
