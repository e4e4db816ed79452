package telemetry

import (
	"testing"
	"time"
)

// stepClock is a manual clock for deterministic phase timings.
type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time          { return c.t }
func (c *stepClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPerfCollectorPhases(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0)}
	pc := NewPerfCollector(10)
	pc.now = clock.Now

	tickTimes := []time.Duration{100, 200, 300, 400, 500}
	for _, agents := range tickTimes {
		pc.StartTick()
		pc.StartPhase(PhaseBus)
		clock.Advance(50 * time.Microsecond)
		pc.StartPhase(PhaseAgents)
		clock.Advance(agents * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.Samples != 5 {
		t.Errorf("samples = %d, want 5", stats.Samples)
	}
	if stats.AvgTickDuration != 350*time.Microsecond {
		t.Errorf("avg tick = %v, want 350µs", stats.AvgTickDuration)
	}
	if stats.MinTickDuration != 150*time.Microsecond || stats.MaxTickDuration != 550*time.Microsecond {
		t.Errorf("min/max = %v/%v", stats.MinTickDuration, stats.MaxTickDuration)
	}
	// Sorted ticks 150..550 step 100: p90 interpolates to 510µs.
	if d := stats.P90TickDuration - 510*time.Microsecond; d < -time.Nanosecond || d > time.Nanosecond {
		t.Errorf("p90 = %v, want 510µs", stats.P90TickDuration)
	}
	if stats.PhaseAvg[PhaseBus] != 50*time.Microsecond || stats.PhaseAvg[PhaseAgents] != 300*time.Microsecond {
		t.Errorf("phase averages = %v", stats.PhaseAvg)
	}
	if stats.PhaseAvg[PhaseCoordinator] != 0 {
		t.Error("untimed phase should be zero")
	}
	if stats.Slowest != PhaseAgents {
		t.Errorf("slowest = %v, want agents", stats.Slowest)
	}
	if got := stats.PhasePct[PhaseAgents]; got < 85.7 || got > 85.8 {
		t.Errorf("agents pct = %.2f, want 85.71", got)
	}
	if stats.TicksPerSecond < 2857 || stats.TicksPerSecond > 2858 {
		t.Errorf("ticks/sec = %v", stats.TicksPerSecond)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)
	for i := 0; i < 12; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseBus)
		pc.EndTick()
	}
	if got := pc.Stats().Samples; got != 5 {
		t.Errorf("samples = %d, want window size 5", got)
	}
}

func TestPerfCollectorSkipTick(t *testing.T) {
	pc := NewPerfCollector(5)

	pc.StartTick()
	pc.StartPhase(PhaseConsole)
	pc.SkipTick()

	pc.StartTick()
	pc.StartPhase(PhaseConsole)
	pc.EndTick()

	stats := pc.Stats()
	if stats.Samples != 1 || stats.Skipped != 1 {
		t.Errorf("samples=%d skipped=%d, want 1 and 1", stats.Samples, stats.Skipped)
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.Samples != 0 || stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
}

func TestPerfCollectorFrameTiming(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0)}
	pc := NewPerfCollector(10)
	pc.now = clock.Now

	pc.RecordFrame()
	if pc.Stats().FPS != 0 {
		t.Error("single frame should not report fps")
	}
	clock.Advance(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration != 16*time.Millisecond {
		t.Errorf("frame duration = %v, want 16ms", stats.FrameDuration)
	}
	if stats.FPS != 62.5 {
		t.Errorf("fps = %v, want 62.5", stats.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	for i, want := range []string{"console", "bus", "coordinator", "agents", "telemetry"} {
		if got := Phases[i].String(); got != want {
			t.Errorf("Phases[%d] = %q, want %q", i, got, want)
		}
	}
	if Phase(-1).String() != "unknown" || numPhases.String() != "unknown" {
		t.Error("out-of-range phase should be unknown")
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var stats PerfStats
	stats.AvgTickDuration = 1500 * time.Microsecond
	stats.Skipped = 3
	stats.PhasePct[PhaseConsole] = 5
	stats.PhasePct[PhaseCoordinator] = 15
	stats.PhasePct[PhaseAgents] = 80

	row := stats.ToCSV(600)
	if row.WindowEnd != 600 || row.AvgTickUS != 1500 || row.Skipped != 3 {
		t.Errorf("row = %+v", row)
	}
	if row.ConsolePct != 5 || row.CoordinatorPct != 15 || row.AgentsPct != 80 || row.BusPct != 0 {
		t.Errorf("phase columns = %+v", row)
	}
}
