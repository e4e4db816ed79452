// Package agents implements the satellite coordinator and the mobile robots.
//
// Every actor owns an inbox and a state controller. Messages are only ever
// handled inside the actor's own Update call.
package agents

import (
	"log/slog"

	"github.com/pthm-cable/swarm/comm"
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/fsm"
	"github.com/pthm-cable/swarm/world"
)

// Actor is the capability set shared by the satellite and the robots.
type Actor interface {
	comm.Receiver
	ID() comm.ActorID
	Update(dt float32)
	Position() components.Position
	InboxLen() int
}

// Sender is the part of the bus actors send through.
type Sender interface {
	DirectSend(sender, recipient comm.ActorID, text string)
	BroadcastSend(sender comm.ActorID, text string)
}

// Locator answers body position queries.
type Locator interface {
	Position(id comm.ActorID) components.Position
}

// Mover drives a robot body.
type Mover interface {
	Locator
	SetTarget(id comm.ActorID, x, z float32)
	ClearTarget(id comm.ActorID)
	Advance(id comm.ActorID, dt float32) world.MoveResult
}

// Deps are the collaborators every actor needs.
type Deps struct {
	Bus      Sender
	Logger   *slog.Logger
	Observer fsm.Observer
}

func (d Deps) controllerOptions(logger *slog.Logger) []fsm.Option {
	opts := []fsm.Option{fsm.WithLogger(logger)}
	if d.Observer != nil {
		opts = append(opts, fsm.WithObserver(d.Observer))
	}
	return opts
}
