package agents

import (
	"log/slog"
	"strconv"

	"github.com/pthm-cable/swarm/comm"
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/fsm"
	"github.com/pthm-cable/swarm/logging"
)

// Robot state names.
const (
	StateListen = "listen"
)

// Robot is a mobile agent with a dense ID.
type Robot struct {
	id          comm.ActorID
	bus         Sender
	mover       Mover
	log         *slog.Logger
	reportEvery int

	inbox  comm.Inbox
	states *fsm.Controller

	constructing bool
	onSite       int // ticks spent at the site since construction started
	reports      int
	collisions   int
}

// NewRobot creates a robot with its construction and listen states running.
// reportEvery is the number of ticks on site between progress reports.
func NewRobot(id comm.ActorID, deps Deps, mover Mover, reportEvery int) *Robot {
	logger := logging.Tagged(deps.Logger, logging.TagRobot).With("robot", int(id))
	if reportEvery < 1 {
		reportEvery = 1
	}
	r := &Robot{
		id:          id,
		bus:         deps.Bus,
		mover:       mover,
		log:         logger,
		reportEvery: reportEvery,
	}
	r.states = fsm.NewController(
		[]fsm.Rule{{Prefix: StateConstruction, State: StateConstruction}},
		StateListen,
		deps.controllerOptions(logger)...,
	)
	r.states.Start(StateConstruction, func() fsm.State { return &robotConstructionState{robot: r} })
	r.states.Start(StateListen, func() fsm.State { return &listenState{robot: r, received: make(map[string]int)} })
	return r
}

// ID returns the robot's actor ID.
func (r *Robot) ID() comm.ActorID { return r.id }

// QueueMessage appends msg to the inbox. It is handled on the next Update.
func (r *Robot) QueueMessage(msg comm.Message) {
	r.inbox.Push(msg)
}

// InboxLen returns the number of undelivered messages.
func (r *Robot) InboxLen() int { return r.inbox.Len() }

// Position returns the robot body position.
func (r *Robot) Position() components.Position {
	return r.mover.Position(r.id)
}

// Update handles queued messages, then moves the body.
func (r *Robot) Update(dt float32) {
	r.inbox.Drain(func(msg comm.Message) {
		r.states.Dispatch(msg)
	})

	res := r.mover.Advance(r.id, dt)
	if res.HitBarrier {
		r.NotifyCollision()
	}
	if !r.constructing || !res.Arrived {
		return
	}

	r.onSite++
	if r.onSite%r.reportEvery == 0 {
		r.reports++
		r.bus.DirectSend(r.id, comm.Satellite,
			comm.Compose(StateConstruction, "progress", strconv.Itoa(r.reports)))
	}
}

// NotifyCollision records a contact with a barrier or another body.
func (r *Robot) NotifyCollision() {
	r.collisions++
	r.log.Debug("collision", "total", r.collisions)
}

// SendDirect sends text from this robot to one actor.
func (r *Robot) SendDirect(to comm.ActorID, text string) {
	r.bus.DirectSend(r.id, to, text)
}

// SendBroadcast sends text from this robot to every other actor.
func (r *Robot) SendBroadcast(text string) {
	r.bus.BroadcastSend(r.id, text)
}

func (r *Robot) beginConstruction() {
	if r.constructing {
		return
	}
	x, z := r.mover.Position(comm.Satellite).Ground()
	r.mover.SetTarget(r.id, x, z)
	r.constructing = true
	r.onSite = 0
	r.reports = 0
	r.log.Info("heading to construction site", "x", x, "z", z)
}

func (r *Robot) endConstruction() {
	if !r.constructing {
		return
	}
	r.mover.ClearTarget(r.id)
	r.constructing = false
	r.log.Info("construction stopped, wandering")
}

// RobotSnapshot is a copy of a robot's observable state.
type RobotSnapshot struct {
	ID           comm.ActorID   `inspect:"label"`
	Constructing bool           `inspect:"bool"`
	OnSiteTicks  int            `inspect:"label"`
	Reports      int            `inspect:"label"`
	Collisions   int            `inspect:"label"`
	Received     map[string]int `inspect:"label"`
	Confirmed    int            `inspect:"label"`
	Heading      float32        `inspect:"label,fmt:%.2f"`
	Speed        float32        `inspect:"bar,max:5"`
}

// motionReporter is implemented by movers that track heading and speed.
type motionReporter interface {
	Motion(id comm.ActorID) (components.Motion, bool)
}

// Snapshot returns the current observable state.
func (r *Robot) Snapshot() RobotSnapshot {
	snap := RobotSnapshot{
		ID:           r.id,
		Constructing: r.constructing,
		OnSiteTicks:  r.onSite,
		Reports:      r.reports,
		Collisions:   r.collisions,
		Received:     make(map[string]int),
	}
	if st, ok := r.states.Active(StateListen); ok {
		l := st.(*listenState)
		for k, v := range l.received {
			snap.Received[k] = v
		}
		snap.Confirmed = l.confirmed
	}
	if mr, ok := r.mover.(motionReporter); ok {
		if m, ok := mr.Motion(r.id); ok {
			snap.Heading, snap.Speed = m.Heading, m.Speed
		}
	}
	return snap
}

// robotConstructionState follows the satellite's construction orders.
type robotConstructionState struct {
	robot *Robot
}

func (s *robotConstructionState) Name() string { return StateConstruction }

func (s *robotConstructionState) HandleMessage(msg comm.Message) {
	fields := msg.Fields()
	if len(fields) == 0 {
		s.robot.states.Malformed(StateConstruction, msg, "missing construction command")
		return
	}
	switch fields[0] {
	case "start":
		s.robot.beginConstruction()
	case "stop":
		s.robot.endConstruction()
	default:
		s.robot.states.Malformed(StateConstruction, msg, "unknown construction command")
	}
}

// listenState receives everything the routing table does not claim.
type listenState struct {
	robot     *Robot
	received  map[string]int // by topic
	confirmed int
}

func (s *listenState) Name() string { return StateListen }

func (s *listenState) HandleMessage(msg comm.Message) {
	s.received[msg.Topic()]++

	fields := msg.Fields()
	if msg.Topic() == StateBuild && len(fields) > 0 && fields[0] == "request" {
		s.confirmed++
		s.robot.SendDirect(msg.Sender(), comm.Compose(StateBuild, "confirm"))
		return
	}
	s.robot.log.Debug("message received", "topic", msg.Topic(), "sender", msg.Sender().String())
}
