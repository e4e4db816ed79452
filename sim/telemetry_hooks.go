package sim

import (
	"github.com/pthm-cable/swarm/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (d *Driver) flushTelemetry() {
	if !d.collector.ShouldFlush(d.tick) {
		return
	}

	stats := d.collector.Flush(d.tick, d.inboxDepths())
	perfStats := d.perfCollector.Stats()

	if d.statsCallback != nil {
		d.statsCallback(stats)
	}

	if d.logStats {
		stats.LogStats(d.log)
		perfStats.LogStats(d.log)
	}

	if err := d.outputManager.WriteTelemetry(stats); err != nil {
		d.log.Error("failed to write telemetry", "error", err)
	}
	if err := d.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		d.log.Error("failed to write perf", "error", err)
	}

	for _, bm := range d.bookmarks.Check(stats) {
		if d.logStats {
			bm.LogBookmark(d.log)
		}
		if err := d.outputManager.WriteBookmark(bm); err != nil {
			d.log.Error("failed to write bookmark", "error", err)
		}
		d.saveSnapshot(&bm)
	}
}

// inboxDepths samples the undelivered message count of every actor.
func (d *Driver) inboxDepths() []float64 {
	depths := make([]float64, 0, len(d.robots)+1)
	for _, a := range d.Actors() {
		depths = append(depths, float64(a.InboxLen()))
	}
	return depths
}

// Snapshot captures the observable swarm state.
func (d *Driver) Snapshot() telemetry.Snapshot {
	sat := d.satellite.Snapshot()
	snap := telemetry.Snapshot{
		Version:      telemetry.SnapshotVersion,
		RNGSeed:      d.seed,
		GroundLength: d.cfg.World.GroundLength,
		Tick:         d.tick,
		Paused:       d.paused,
		Satellite: telemetry.SatelliteState{
			Active:            sat.Active,
			BuildPhase:        string(sat.BuildPhase),
			Blueprint:         sat.Blueprint,
			Confirmations:     sat.Confirmations,
			ConstructionPhase: string(sat.ConstructionPhase),
			Progress:          sat.Progress,
			ForagingMode:      string(sat.ForagingMode),
			Sightings:         len(sat.Sightings),
			Observed:          sat.Observed,
			InboxLen:          d.satellite.InboxLen(),
		},
		Robots: make([]telemetry.RobotState, 0, len(d.robots)),
	}
	for _, r := range d.robots {
		rs := r.Snapshot()
		pos := r.Position()
		snap.Robots = append(snap.Robots, telemetry.RobotState{
			ID:           uint32(rs.ID),
			X:            pos.X,
			Y:            pos.Y,
			Z:            pos.Z,
			Constructing: rs.Constructing,
			Reports:      rs.Reports,
			Collisions:   rs.Collisions,
			Received:     rs.Received,
			InboxLen:     r.InboxLen(),
		})
	}
	return snap
}

// saveSnapshot writes a snapshot when a snapshot directory is configured.
func (d *Driver) saveSnapshot(bm *telemetry.Bookmark) {
	if d.snapshotDir == "" {
		if bm == nil {
			d.log.Warn("snapshot requested but no snapshot directory configured")
		}
		return
	}
	snap := d.Snapshot()
	snap.Bookmark = bm
	path, err := telemetry.SaveSnapshot(&snap, d.snapshotDir)
	if err != nil {
		d.log.Error("failed to save snapshot", "error", err)
		return
	}
	d.log.Info("snapshot saved", "path", path, "tick", d.tick)
}

// actorRecords summarises every actor for actors.csv.
func (d *Driver) actorRecords() []telemetry.ActorRecord {
	sat := d.satellite.Snapshot()
	records := []telemetry.ActorRecord{{
		ID:       "satellite",
		Received: sat.Observed + len(sat.ConstructionArgs),
		Reports:  sat.Progress,
	}}
	for _, r := range d.robots {
		rs := r.Snapshot()
		received := 0
		for _, n := range rs.Received {
			received += n
		}
		pos := r.Position()
		records = append(records, telemetry.ActorRecord{
			ID:           rs.ID.String(),
			Received:     received,
			Reports:      rs.Reports,
			Collisions:   rs.Collisions,
			Confirmed:    rs.Confirmed,
			Constructing: rs.Constructing,
			X:            pos.X,
			Z:            pos.Z,
		})
	}
	return records
}
