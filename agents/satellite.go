package agents

import (
	"log/slog"

	"github.com/pthm-cable/swarm/comm"
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/fsm"
	"github.com/pthm-cable/swarm/logging"
)

// Satellite state names and the shared task slot.
const (
	StateBuild        = "build"
	StateConstruction = "construction"
	StateForaging     = "foraging"

	SlotTask = "task"
)

// Satellite is the single stationary coordinator.
type Satellite struct {
	bus     Sender
	locator Locator
	log     *slog.Logger

	inbox  comm.Inbox
	states *fsm.Controller
}

// NewSatellite creates the coordinator with no active states.
// Register it on the bus under comm.Satellite.
func NewSatellite(deps Deps, locator Locator) *Satellite {
	logger := logging.Tagged(deps.Logger, logging.TagSatellite)
	s := &Satellite{
		bus:     deps.Bus,
		locator: locator,
		log:     logger,
	}
	s.states = fsm.NewController(
		[]fsm.Rule{
			{Prefix: StateBuild, State: StateBuild},
			{Prefix: StateConstruction, State: StateConstruction},
		},
		StateForaging,
		append(deps.controllerOptions(logger), fsm.WithSlot(SlotTask, StateBuild, StateConstruction))...,
	)
	return s
}

// ID returns comm.Satellite.
func (s *Satellite) ID() comm.ActorID { return comm.Satellite }

// QueueMessage appends msg to the inbox. It is handled on the next Update.
func (s *Satellite) QueueMessage(msg comm.Message) {
	s.inbox.Push(msg)
}

// InboxLen returns the number of undelivered messages.
func (s *Satellite) InboxLen() int { return s.inbox.Len() }

// Update drains the inbox and dispatches every message.
func (s *Satellite) Update(float32) {
	s.inbox.Drain(func(msg comm.Message) {
		s.states.Dispatch(msg)
	})
}

// Position returns the satellite body position.
func (s *Satellite) Position() components.Position {
	if s.locator == nil {
		return components.Zero
	}
	return s.locator.Position(comm.Satellite)
}

// StartBuild starts the build state with "<blueprint> [count]" arguments.
// Rejected and logged while build or construction is active.
func (s *Satellite) StartBuild(args string) {
	s.states.Start(StateBuild, func() fsm.State { return newBuildState(s, args) })
}

// StartConstruction starts the construction state.
// Rejected and logged while build or construction is active.
func (s *Satellite) StartConstruction() {
	s.states.Start(StateConstruction, func() fsm.State { return newConstructionState(s) })
}

// StartForaging starts the foraging state. It never conflicts with the task slot.
func (s *Satellite) StartForaging() {
	s.states.Start(StateForaging, func() fsm.State { return newForagingState(s) })
}

// InState reports whether the named state is active.
func (s *Satellite) InState(name string) bool {
	_, ok := s.states.Active(name)
	return ok
}

// DirectMessage sends text from the satellite to one actor.
func (s *Satellite) DirectMessage(to comm.ActorID, text string) {
	s.bus.DirectSend(comm.Satellite, to, text)
}

// BroadcastMessage sends text from the satellite to every other actor.
func (s *Satellite) BroadcastMessage(text string) {
	s.bus.BroadcastSend(comm.Satellite, text)
}

// SatelliteSnapshot is a copy of the satellite's observable state.
type SatelliteSnapshot struct {
	Active []string `inspect:"skip"`

	BuildPhase    BuildPhase `inspect:"label"`
	Blueprint     string     `inspect:"label"`
	BuildCount    int        `inspect:"label"`
	Confirmations int        `inspect:"label"`

	ConstructionPhase ConstructionPhase `inspect:"label"`
	ConstructionArgs  []string          `inspect:"skip"`
	Progress          int               `inspect:"label"`

	ForagingMode ForagingMode `inspect:"label"`
	Sightings    []Sighting   `inspect:"skip"`
	Observed     int          `inspect:"label"`
}

// Snapshot returns the current observable state. Phases of inactive states are empty.
func (s *Satellite) Snapshot() SatelliteSnapshot {
	snap := SatelliteSnapshot{Active: s.states.ActiveNames()}
	if st, ok := s.states.Active(StateBuild); ok {
		b := st.(*BuildState)
		snap.BuildPhase = b.phase
		snap.Blueprint = b.blueprint
		snap.BuildCount = b.count
		snap.Confirmations = len(b.confirmed)
	}
	if st, ok := s.states.Active(StateConstruction); ok {
		c := st.(*ConstructionState)
		snap.ConstructionPhase = c.phase
		snap.ConstructionArgs = append([]string(nil), c.received...)
		snap.Progress = c.TotalProgress()
	}
	if st, ok := s.states.Active(StateForaging); ok {
		f := st.(*ForagingState)
		snap.ForagingMode = f.mode
		snap.Sightings = append([]Sighting(nil), f.sightings...)
		snap.Observed = f.observed
	}
	return snap
}
