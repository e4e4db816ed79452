package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated message statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Actors int `csv:"actors"`

	// Bus traffic during window
	DirectSends       int `csv:"direct_sends"`
	Broadcasts        int `csv:"broadcasts"`
	Deliveries        int `csv:"deliveries"` // inbox pushes, broadcast fan-out included
	UnknownRecipients int `csv:"unknown_recipients"`

	// Dispatch outcomes during window
	Dispatched int     `csv:"dispatched"`
	Dropped    int     `csv:"dropped"`
	Rejections int     `csv:"rejections"`
	Malformed  int     `csv:"malformed"`
	DropRate   float64 `csv:"drop_rate"`

	BuildDispatched        int `csv:"build_dispatched"`
	ConstructionDispatched int `csv:"construction_dispatched"`
	ForagingDispatched     int `csv:"foraging_dispatched"`
	ListenDispatched       int `csv:"listen_dispatched"`

	// Inbox backlog (sampled at window end)
	InboxMean float64 `csv:"inbox_mean"`
	InboxStd  float64 `csv:"inbox_std"`
	InboxP50  float64 `csv:"inbox_p50"`
	InboxP90  float64 `csv:"inbox_p90"`
	InboxMax  float64 `csv:"inbox_max"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// DepthStats summarises inbox depths.
type DepthStats struct {
	Mean, Std, P50, P90, Max float64
}

// ComputeInboxStats calculates mean, sample standard deviation, percentiles and max.
func ComputeInboxStats(values []float64) DepthStats {
	n := len(values)
	if n == 0 {
		return DepthStats{}
	}

	var ds DepthStats
	if n == 1 {
		ds.Mean = values[0]
	} else {
		ds.Mean, ds.Std = stat.MeanStdDev(values, nil)
	}
	ds.Max = floats.Max(values)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	ds.P50 = Percentile(sorted, 0.50)
	ds.P90 = Percentile(sorted, 0.90)

	return ds
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("actors", s.Actors),
		slog.Int("direct_sends", s.DirectSends),
		slog.Int("broadcasts", s.Broadcasts),
		slog.Int("deliveries", s.Deliveries),
		slog.Int("unknown_recipients", s.UnknownRecipients),
		slog.Int("dispatched", s.Dispatched),
		slog.Int("dropped", s.Dropped),
		slog.Int("rejections", s.Rejections),
		slog.Int("malformed", s.Malformed),
		slog.Float64("drop_rate", s.DropRate),
		slog.Float64("inbox_mean", s.InboxMean),
		slog.Float64("inbox_p90", s.InboxP90),
		slog.Float64("inbox_max", s.InboxMax),
	)
}

// LogStats logs the window stats.
func (s WindowStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("stats", "window", s)
}
