package inspector

import (
	"github.com/pthm-cable/swarm/comm"
	"github.com/pthm-cable/swarm/components"
)

// Target is anything the inspector can select.
type Target interface {
	ID() comm.ActorID
	Position() components.Position
}

// Projector maps a world point to screen coordinates.
type Projector func(x, y, z float32) (sx, sy float32)

// Pick returns the target whose projected position is nearest to (mx, my)
// and within radius pixels of it.
func Pick(mx, my, radius float32, targets []Target, project Projector) (comm.ActorID, bool) {
	var best comm.ActorID
	bestDist := radius * radius
	found := false
	for _, t := range targets {
		p := t.Position()
		sx, sy := project(p.X, p.Y, p.Z)
		dx, dy := mx-sx, my-sy
		if d := dx*dx + dy*dy; d <= bestDist {
			best, bestDist, found = t.ID(), d, true
		}
	}
	return best, found
}
