package comm

// Indicator is a transient visual marker for one delivered message.
type Indicator struct {
	Sender    ActorID
	Recipient ActorID // Broadcast for broadcast fan-out
	Topic     string
	Remaining float32 // seconds left before it expires
}

// Sink receives indicators as messages are sent. Rendering failures are
// reported through the error return and never affect delivery.
type Sink interface {
	ShowIndicator(Indicator) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Indicator) error

// ShowIndicator implements Sink.
func (f SinkFunc) ShowIndicator(ind Indicator) error { return f(ind) }

// indicatorSet holds live indicators and ages them on Tick.
type indicatorSet struct {
	duration float32
	live     []Indicator
}

func (s *indicatorSet) add(ind Indicator) Indicator {
	ind.Remaining = s.duration
	s.live = append(s.live, ind)
	return ind
}

// advance ages every indicator by dt and drops the expired ones in place.
func (s *indicatorSet) advance(dt float32) {
	kept := s.live[:0]
	for _, ind := range s.live {
		ind.Remaining -= dt
		if ind.Remaining > 0 {
			kept = append(kept, ind)
		}
	}
	clear(s.live[len(kept):])
	s.live = kept
}

func (s *indicatorSet) snapshot() []Indicator {
	out := make([]Indicator, len(s.live))
	copy(out, s.live)
	return out
}
