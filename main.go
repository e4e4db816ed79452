package main

import (
	"bufio"
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/logging"
	"github.com/pthm-cable/swarm/sim"
	"github.com/pthm-cable/swarm/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stdinConsole := flag.Bool("stdin-console", false, "Read console commands from stdin, one per line")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	logger := logging.New(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := sim.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		Logger:         logger,
	}

	if *headless {
		// Headless mode - no raylib needed
		d, err := sim.NewDriver(cfg, opts)
		if err != nil {
			slog.Error("failed to build swarm", "error", err)
			os.Exit(1)
		}
		defer closeDriver(d)

		if *stdinConsole {
			go readConsole(d)
		}

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"max_ticks", *maxTicks,
		)

		for {
			d.Step()
			if *maxTicks > 0 && int(d.Tick()) >= *maxTicks {
				slog.Info("max ticks reached", "tick", d.Tick())
				return
			}
		}
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Swarm")
	defer rl.CloseWindow()
	rl.SetWindowState(rl.FlagWindowResizable)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v := viewer.New(cfg)
	opts.Sink = v.Sink()
	opts.StatsCallback = v.OnStats

	d, err := sim.NewDriver(cfg, opts)
	if err != nil {
		slog.Error("failed to build swarm", "error", err)
		os.Exit(1)
	}
	defer closeDriver(d)
	v.Attach(d)

	if *stdinConsole {
		go readConsole(d)
	}

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if *maxTicks > 0 && int(d.Tick()) >= *maxTicks {
			break
		}
	}
}

// readConsole forwards stdin lines to the driver until EOF.
func readConsole(d *sim.Driver) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		d.QueueConsoleCommand(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		slog.Error("console input failed", "error", err)
	}
}

func closeDriver(d *sim.Driver) {
	if err := d.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
