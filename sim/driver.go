// Package sim drives the swarm one tick at a time.
//
// Every tick runs in a fixed order: console commands, bus timers, the
// satellite, then every robot by ascending ID. A message sent during a tick is
// handled in the same tick when its recipient updates later in that order, and
// in the next tick otherwise.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/pthm-cable/swarm/agents"
	"github.com/pthm-cable/swarm/comm"
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/logging"
	"github.com/pthm-cable/swarm/telemetry"
	"github.com/pthm-cable/swarm/world"
)

// Driver owns the bus, the world and every actor.
type Driver struct {
	cfg *config.Config
	rng *rand.Rand
	log *slog.Logger

	bus       *comm.Bus
	world     *world.World
	satellite *agents.Satellite
	robots    []*agents.Robot // ascending ID

	consoleMu sync.Mutex
	console   []string

	tick   int32
	paused bool
	closed bool

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	logStats      bool
	snapshotDir   string
	seed          int64
}

// NewDriver builds the bus, the world, the satellite and the robots.
// A world that cannot be built is fatal for the run and returned as an error.
func NewDriver(cfg *config.Config, opts Options) (*Driver, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	d := &Driver{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(opts.Seed)),
		log:           logging.Tagged(logger, logging.TagMain),
		collector:     telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
		seed:          opts.Seed,
	}

	busOpts := []comm.Option{
		comm.WithLogger(logger),
		comm.WithObserver(d.collector),
		comm.WithIndicatorDuration(float32(cfg.Comm.IndicatorDuration)),
		comm.WithShowInConsole(cfg.Comm.ShowInConsole),
		comm.WithShowIndicators(cfg.Comm.ShowIndicators),
	}
	if opts.Sink != nil {
		busOpts = append(busOpts, comm.WithSink(opts.Sink))
	}
	d.bus = comm.NewBus(busOpts...)

	w, err := world.New(cfg, d.rng, logger)
	if err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}
	d.world = w

	deps := agents.Deps{Bus: d.bus, Logger: logger, Observer: d.collector}

	d.satellite = agents.NewSatellite(deps, w)
	if err := d.bus.Register(comm.Satellite, d.satellite); err != nil {
		return nil, err
	}
	for _, id := range w.RobotIDs() {
		r := agents.NewRobot(id, deps, w, cfg.Robots.ReportEvery)
		if err := d.bus.Register(id, r); err != nil {
			return nil, err
		}
		d.robots = append(d.robots, r)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	d.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		d.log.Error("failed to write config", "error", err)
	}

	for _, line := range cfg.Console.StartupCommands {
		d.QueueConsoleCommand(line)
	}

	d.log.Info("swarm ready",
		"robots", len(d.robots),
		"requested", cfg.Robots.Count,
		"seed", opts.Seed,
	)
	return d, nil
}

// QueueConsoleCommand queues an operator command for the next tick.
// Safe to call from any goroutine.
func (d *Driver) QueueConsoleCommand(text string) {
	d.consoleMu.Lock()
	d.console = append(d.console, text)
	d.consoleMu.Unlock()
}

// Step runs one tick. A paused driver only processes console commands.
func (d *Driver) Step() {
	d.perfCollector.StartTick()
	d.perfCollector.StartPhase(telemetry.PhaseConsole)
	d.drainConsole()
	if d.paused {
		d.perfCollector.SkipTick()
		return
	}

	dt := d.cfg.Derived.DT32

	d.perfCollector.StartPhase(telemetry.PhaseBus)
	d.bus.Tick(dt)

	d.perfCollector.StartPhase(telemetry.PhaseCoordinator)
	d.satellite.Update(dt)

	d.perfCollector.StartPhase(telemetry.PhaseAgents)
	for _, r := range d.robots {
		r.Update(dt)
	}

	d.tick++

	d.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	d.flushTelemetry()

	d.perfCollector.EndTick()
}

// RecordFrame records frame timing for graphics mode.
func (d *Driver) RecordFrame() {
	d.perfCollector.RecordFrame()
}

// GetPosition returns the body position of id, or the zero position if it has none.
func (d *Driver) GetPosition(id comm.ActorID) components.Position {
	return d.world.Position(id)
}

// Tick returns the number of completed ticks.
func (d *Driver) Tick() int32 { return d.tick }

// Paused reports whether ticks are suspended.
func (d *Driver) Paused() bool { return d.paused }

// SetPaused suspends or resumes ticks.
func (d *Driver) SetPaused(paused bool) {
	if d.paused == paused {
		return
	}
	d.paused = paused
	d.log.Info("simulation paused", "paused", paused, "tick", d.tick)
}

// Satellite returns the coordinator.
func (d *Driver) Satellite() *agents.Satellite { return d.satellite }

// Robots returns the robots in ascending ID order.
func (d *Driver) Robots() []*agents.Robot {
	return append([]*agents.Robot(nil), d.robots...)
}

// Actors returns the satellite followed by the robots, in update order.
func (d *Driver) Actors() []agents.Actor {
	actors := make([]agents.Actor, 0, len(d.robots)+1)
	actors = append(actors, d.satellite)
	for _, r := range d.robots {
		actors = append(actors, r)
	}
	return actors
}

// Bus returns the message bus.
func (d *Driver) Bus() *comm.Bus { return d.bus }

// Indicators returns the live message indicators.
func (d *Driver) Indicators() []comm.Indicator { return d.bus.Indicators() }

// Config returns the driver configuration.
func (d *Driver) Config() *config.Config { return d.cfg }

// Close writes the end-of-run summary and flushes telemetry output.
// Calls after the first are no-ops.
func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.outputManager.WriteActors(d.actorRecords()); err != nil {
		d.log.Error("failed to write actors", "error", err)
	}
	return d.outputManager.Close()
}
