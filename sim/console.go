package sim

import (
	"strings"

	"github.com/pthm-cable/swarm/agents"
	"github.com/pthm-cable/swarm/comm"
)

// Console commands. Matching is case-insensitive on the first word.
const (
	CmdConstruction   = "construction"
	CmdStop           = "stop"
	CmdForage         = "forage"
	CmdBuild          = "build"
	CmdTestMessage    = "test_message"
	CmdTestQueue      = "test_queue"
	CmdPause          = "pause"
	CmdShowConsole    = "show_console"
	CmdShowIndicators = "show_indicators"
	CmdSnapshot       = "snapshot"
)

// Test traffic payloads.
const (
	TestDirectText    = "TEST DIRECT MESSAGE"
	TestBroadcastText = "TEST BROADCAST"
)

// drainConsole runs every command queued since the last tick, in order.
func (d *Driver) drainConsole() {
	d.consoleMu.Lock()
	pending := d.console
	d.console = nil
	d.consoleMu.Unlock()

	for _, line := range pending {
		d.execute(line)
	}
}

func (d *Driver) execute(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd := strings.ToLower(fields[0])
	args := strings.Join(fields[1:], " ")
	d.log.Debug("console command", "command", cmd, "args", args)

	switch cmd {
	case CmdConstruction:
		d.satellite.StartConstruction()
		if d.satellite.InState(agents.StateConstruction) {
			d.orderConstruction("start")
		}
	case CmdStop:
		d.orderConstruction("stop")
	case CmdForage:
		d.satellite.StartForaging()
	case CmdBuild:
		d.satellite.StartBuild(args)
	case CmdTestMessage:
		d.sendTestMessage()
	case CmdTestQueue:
		d.satellite.BroadcastMessage(CmdTestQueue)
	case CmdPause:
		d.SetPaused(!d.paused)
	case CmdShowConsole:
		d.bus.ToggleShowInConsole()
	case CmdShowIndicators:
		d.bus.ToggleShowIndicators()
	case CmdSnapshot:
		d.saveSnapshot(nil)
	default:
		d.log.Error("unknown console command, dropped", "command", line)
	}
}

// orderConstruction broadcasts a construction command to the robots. The
// satellite never hears its own broadcast, so it also sends itself a copy
// while its construction state is active.
func (d *Driver) orderConstruction(command string) {
	text := comm.Compose(agents.StateConstruction, command)
	d.satellite.BroadcastMessage(text)
	if d.satellite.InState(agents.StateConstruction) {
		d.satellite.DirectMessage(comm.Satellite, text)
	}
}

// sendTestMessage has a random robot message another random robot. The
// receiver is drawn uniformly from the other robots plus one broadcast slot.
func (d *Driver) sendTestMessage() {
	if len(d.robots) == 0 {
		d.log.Warn("no robots for test message")
		return
	}
	sender := d.robots[d.rng.Intn(len(d.robots))]

	others := make([]comm.ActorID, 0, len(d.robots)-1)
	for _, r := range d.robots {
		if r.ID() != sender.ID() {
			others = append(others, r.ID())
		}
	}

	pick := d.rng.Intn(len(others) + 1)
	if pick == len(others) {
		sender.SendBroadcast(TestBroadcastText)
		return
	}
	sender.SendDirect(others[pick], TestDirectText)
}
