package sim

import (
	"log/slog"

	"github.com/pthm-cable/swarm/comm"
	"github.com/pthm-cable/swarm/telemetry"
)

// Options configures a Driver.
type Options struct {
	Seed           int64   // RNG seed for spawn headings, wandering and test traffic
	LogStats       bool    // Log window stats and perf via slog
	StatsWindowSec float64 // Stats window size in seconds (0 = use config)
	SnapshotDir    string  // Directory for snapshot files (empty = disabled)
	OutputDir      string  // Directory for CSV output (empty = disabled)

	Logger *slog.Logger // Defaults to slog.Default()
	Sink   comm.Sink    // Receives message indicators; nil in headless runs

	// StatsCallback is called with every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}
