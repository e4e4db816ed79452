package agents

import (
	"strconv"
	"strings"

	"github.com/pthm-cable/swarm/comm"
)

// BuildPhase is the progress of a build request.
type BuildPhase string

const (
	BuildAwaitingConfirmation BuildPhase = "awaiting_confirmation"
	BuildConfirmed            BuildPhase = "confirmed"
	BuildComplete             BuildPhase = "complete"
)

// DefaultBlueprint is used when StartBuild is given no blueprint.
const DefaultBlueprint = "default"

// BuildState asks the swarm to confirm a blueprint and waits for enough robots.
type BuildState struct {
	sat       *Satellite
	blueprint string
	count     int
	phase     BuildPhase
	confirmed map[comm.ActorID]struct{}
}

func newBuildState(s *Satellite, args string) *BuildState {
	b := &BuildState{
		sat:       s,
		blueprint: DefaultBlueprint,
		count:     1,
		phase:     BuildAwaitingConfirmation,
		confirmed: make(map[comm.ActorID]struct{}),
	}

	fields := strings.Fields(args)
	if len(fields) > 0 {
		b.blueprint = fields[0]
	}
	if len(fields) > 1 {
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			s.log.Warn("bad build count, using 1", "args", args)
		} else {
			b.count = n
		}
	}

	s.BroadcastMessage(comm.Compose(StateBuild, "request", b.blueprint))
	return b
}

func (b *BuildState) Name() string { return StateBuild }

func (b *BuildState) HandleMessage(msg comm.Message) {
	fields := msg.Fields()
	if len(fields) == 0 {
		b.sat.states.Malformed(StateBuild, msg, "missing build command")
		return
	}

	switch fields[0] {
	case "confirm":
		if b.phase != BuildAwaitingConfirmation {
			b.sat.log.Debug("late build confirmation ignored", "sender", msg.Sender().String(), "phase", string(b.phase))
			return
		}
		b.confirmed[msg.Sender()] = struct{}{}
		if len(b.confirmed) >= b.count {
			b.phase = BuildConfirmed
			b.sat.log.Info("build confirmed", "blueprint", b.blueprint, "robots", len(b.confirmed))
		}
	case "done":
		if b.phase != BuildConfirmed {
			b.sat.log.Warn("build done before confirmation ignored", "phase", string(b.phase))
			return
		}
		b.phase = BuildComplete
		b.sat.log.Info("build complete", "blueprint", b.blueprint)
	case "cancel":
		// States live for the whole run.
		b.sat.log.Error("build cannot be cancelled", "phase", string(b.phase))
	default:
		b.sat.states.Malformed(StateBuild, msg, "unknown build command")
	}
}

// ConstructionPhase is the satellite's view of the construction site.
type ConstructionPhase string

const (
	ConstructionIdle    ConstructionPhase = "idle"
	ConstructionRunning ConstructionPhase = "running"
	ConstructionHalted  ConstructionPhase = "halted"
)

// ConstructionState tracks construction progress reported by robots.
type ConstructionState struct {
	sat      *Satellite
	phase    ConstructionPhase
	received []string
	progress map[comm.ActorID]int
}

func newConstructionState(s *Satellite) *ConstructionState {
	return &ConstructionState{
		sat:      s,
		phase:    ConstructionIdle,
		progress: make(map[comm.ActorID]int),
	}
}

func (c *ConstructionState) Name() string { return StateConstruction }

func (c *ConstructionState) HandleMessage(msg comm.Message) {
	c.received = append(c.received, msg.Args())

	fields := msg.Fields()
	if len(fields) == 0 {
		c.sat.states.Malformed(StateConstruction, msg, "missing construction command")
		return
	}

	switch fields[0] {
	case "start":
		c.phase = ConstructionRunning
	case "stop":
		c.phase = ConstructionHalted
	case "progress":
		if len(fields) != 2 {
			c.sat.states.Malformed(StateConstruction, msg, "progress takes one value")
			return
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 {
			c.sat.states.Malformed(StateConstruction, msg, "progress is not a count")
			return
		}
		c.progress[msg.Sender()] = n
	default:
		c.sat.states.Malformed(StateConstruction, msg, "unknown construction command")
	}
}

// TotalProgress sums the latest report of every robot.
func (c *ConstructionState) TotalProgress() int {
	total := 0
	for _, n := range c.progress {
		total += n
	}
	return total
}

// ForagingMode is the swarm-wide foraging order.
type ForagingMode string

const (
	ForagingIdle   ForagingMode = "idle"
	ForagingPatrol ForagingMode = "patrol"
	ForagingReturn ForagingMode = "return"
)

// Sighting is a resource location reported by a robot.
type Sighting struct {
	From comm.ActorID
	X, Z float32
}

// ForagingState collects resource sightings. It is also the fallback for
// traffic no other rule claims.
type ForagingState struct {
	sat       *Satellite
	mode      ForagingMode
	sightings []Sighting
	observed  int
}

func newForagingState(s *Satellite) *ForagingState {
	return &ForagingState{sat: s, mode: ForagingIdle}
}

func (f *ForagingState) Name() string { return StateForaging }

func (f *ForagingState) HandleMessage(msg comm.Message) {
	if msg.Topic() != StateForaging {
		f.observed++
		f.sat.log.Debug("observed traffic", "topic", msg.Topic(), "sender", msg.Sender().String())
		return
	}

	fields := msg.Fields()
	if len(fields) == 0 {
		f.sat.states.Malformed(StateForaging, msg, "missing foraging command")
		return
	}

	switch mode := ForagingMode(fields[0]); mode {
	case ForagingIdle, ForagingPatrol, ForagingReturn:
		f.mode = mode
	default:
		if fields[0] != "found" {
			f.sat.states.Malformed(StateForaging, msg, "unknown foraging command")
			return
		}
		if len(fields) != 3 {
			f.sat.states.Malformed(StateForaging, msg, "found takes x and z")
			return
		}
		x, errX := strconv.ParseFloat(fields[1], 32)
		z, errZ := strconv.ParseFloat(fields[2], 32)
		if errX != nil || errZ != nil {
			f.sat.states.Malformed(StateForaging, msg, "found coordinates are not numbers")
			return
		}
		f.sightings = append(f.sightings, Sighting{From: msg.Sender(), X: float32(x), Z: float32(z)})
	}
}
