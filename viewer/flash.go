package viewer

import (
	"sync"

	"github.com/pthm-cable/swarm/comm"
)

// flashes tracks how recently each actor received a message, so the
// receiving body can pulse. It is the viewer's comm.Sink.
type flashes struct {
	mu       sync.Mutex
	duration float32
	level    map[comm.ActorID]float32 // 1 on receipt, fading to 0
	bcast    map[comm.ActorID]float32 // broadcast rings by sender
}

func newFlashes(duration float32) *flashes {
	if duration <= 0 {
		duration = 0.5
	}
	return &flashes{
		duration: duration,
		level:    make(map[comm.ActorID]float32),
		bcast:    make(map[comm.ActorID]float32),
	}
}

// ShowIndicator implements comm.Sink.
func (f *flashes) ShowIndicator(ind comm.Indicator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ind.Recipient == comm.Broadcast {
		f.bcast[ind.Sender] = 1
		return nil
	}
	f.level[ind.Recipient] = 1
	return nil
}

// fade ages every flash by dt seconds and forgets the ones that reach zero.
func (f *flashes) fade(dt float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	step := dt / f.duration
	for _, m := range []map[comm.ActorID]float32{f.level, f.bcast} {
		for id, v := range m {
			if v -= step; v <= 0 {
				delete(m, id)
			} else {
				m[id] = v
			}
		}
	}
}

// received returns the flash level of id in [0, 1].
func (f *flashes) received(id comm.ActorID) float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level[id]
}

// broadcasting returns the broadcast ring level of sender in [0, 1].
func (f *flashes) broadcasting(sender comm.ActorID) float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bcast[sender]
}
