package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkTrafficBurst  BookmarkType = "traffic_burst"
	BookmarkDropSpike     BookmarkType = "drop_spike"
	BookmarkInboxBacklog  BookmarkType = "inbox_backlog"
	BookmarkSwarmQuiet    BookmarkType = "swarm_quiet"
	BookmarkStableTraffic BookmarkType = "stable_traffic"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark.
func (b Bookmark) LogBookmark(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the message traffic.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	dropSpiking        bool // suppresses repeats until the drop rate settles
	stableWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable traffic detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkTrafficBurst,
		bd.checkDropSpike,
		bd.checkInboxBacklog,
		bd.checkSwarmQuiet,
		bd.checkStableTraffic,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) avgDeliveries() float64 {
	history := bd.getHistory()
	if len(history) == 0 {
		return 0
	}
	var total int
	for _, h := range history {
		total += h.Deliveries
	}
	return float64(total) / float64(len(history))
}

// checkTrafficBurst fires when deliveries exceed 3x the rolling average.
func (bd *BookmarkDetector) checkTrafficBurst(stats WindowStats) *Bookmark {
	if len(bd.getHistory()) < 3 {
		return nil
	}
	avg := bd.avgDeliveries()
	if avg == 0 || stats.Deliveries < 20 || float64(stats.Deliveries) <= avg*3 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkTrafficBurst,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d deliveries is %.1fx average (%.1f)", stats.Deliveries, float64(stats.Deliveries)/avg, avg),
	}
}

// checkDropSpike fires once when more than half of the handled messages were dropped.
func (bd *BookmarkDetector) checkDropSpike(stats WindowStats) *Bookmark {
	spiking := stats.Dropped >= 10 && stats.DropRate > 0.5
	if !spiking {
		bd.dropSpiking = false
		return nil
	}
	if bd.dropSpiking {
		return nil
	}
	bd.dropSpiking = true
	return &Bookmark{
		Type:        BookmarkDropSpike,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d of %d messages had no active state (%.0f%%)", stats.Dropped, stats.Dropped+stats.Dispatched, stats.DropRate*100),
	}
}

// checkInboxBacklog fires when an inbox is left holding messages at window end.
// Inboxes are drained every tick, so any backlog means an actor stopped updating.
func (bd *BookmarkDetector) checkInboxBacklog(stats WindowStats) *Bookmark {
	if stats.InboxMax < 10 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkInboxBacklog,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Inbox holding %.0f messages (mean %.1f)", stats.InboxMax, stats.InboxMean),
	}
}

// checkSwarmQuiet fires on the first silent window after traffic.
func (bd *BookmarkDetector) checkSwarmQuiet(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) == 0 || stats.Deliveries > 0 {
		return nil
	}
	last := bd.history[(bd.historyIdx+bd.historySize-1)%bd.historySize]
	if last.Deliveries == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSwarmQuiet,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("No messages after %d deliveries in the previous window", last.Deliveries),
	}
}

// checkStableTraffic fires once after five windows of steady, non-zero traffic.
func (bd *BookmarkDetector) checkStableTraffic(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if stats.Deliveries == 0 || len(history) < 4 {
		bd.stableWindowsCount = 0
		return nil
	}

	recent := make([]float64, 0, 4)
	for i := 1; i <= 4; i++ {
		h := bd.history[(bd.historyIdx+bd.historySize-i)%bd.historySize]
		recent = append(recent, float64(h.Deliveries))
	}
	recent = append(recent, float64(stats.Deliveries))

	// Low variance: coefficient of variation < 20%
	ds := ComputeInboxStats(recent)
	if ds.Mean > 0 && ds.Std/ds.Mean < 0.2 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableTraffic,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Steady traffic around %.0f deliveries per window", ds.Mean),
		}
	}
	return nil
}
