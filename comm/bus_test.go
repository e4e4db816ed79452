package comm

import (
	"errors"
	"testing"

	"github.com/pthm-cable/swarm/logging"
)

// testActor is a Receiver backed by an Inbox.
type testActor struct {
	inbox Inbox
}

func (a *testActor) QueueMessage(msg Message) { a.inbox.Push(msg) }

func (a *testActor) drain() []Message {
	var got []Message
	a.inbox.Drain(func(m Message) { got = append(got, m) })
	return got
}

type countingObserver struct {
	direct, broadcast, fanout, unknown int
}

func (o *countingObserver) RecordSend(broadcast bool, fanout int) {
	if broadcast {
		o.broadcast++
	} else {
		o.direct++
	}
	o.fanout += fanout
}

func (o *countingObserver) RecordUnknownRecipient() { o.unknown++ }

// newTestBus registers the satellite plus n robots.
func newTestBus(t *testing.T, n int, opts ...Option) (*Bus, map[ActorID]*testActor) {
	t.Helper()
	bus := NewBus(append([]Option{WithLogger(logging.Discard())}, opts...)...)
	actors := make(map[ActorID]*testActor)

	sat := &testActor{}
	if err := bus.Register(Satellite, sat); err != nil {
		t.Fatal(err)
	}
	actors[Satellite] = sat
	for i := 0; i < n; i++ {
		a := &testActor{}
		if err := bus.Register(ActorID(i), a); err != nil {
			t.Fatal(err)
		}
		actors[ActorID(i)] = a
	}
	return bus, actors
}

func TestDirectSendReachesOnlyRecipient(t *testing.T) {
	bus, actors := newTestBus(t, 4)
	ids := bus.Actors()

	for _, from := range ids {
		for _, to := range ids {
			if from == to {
				continue
			}
			bus.DirectSend(from, to, "ping")

			for id, a := range actors {
				got := a.drain()
				want := 0
				if id == to {
					want = 1
				}
				if len(got) != want {
					t.Fatalf("%s -> %s: inbox %s has %d messages, want %d", from, to, id, len(got), want)
				}
				if want == 1 {
					m := got[0]
					if m.Sender() != from || m.Recipient() != to || m.Text() != "ping" {
						t.Errorf("unexpected message %v", m)
					}
				}
			}
		}
	}
}

func TestDirectSendUnknownRecipientIsLoggedAndDropped(t *testing.T) {
	rec := logging.NewRecorder()
	obs := &countingObserver{}
	bus, actors := newTestBus(t, 2, WithLogger(rec.Logger()), WithObserver(obs))

	bus.DirectSend(0, 99, "lost")

	for id, a := range actors {
		if n := a.inbox.Len(); n != 0 {
			t.Errorf("inbox %s has %d messages, want 0", id, n)
		}
	}
	if rec.Count("unknown recipient, message dropped") != 1 {
		t.Errorf("expected one unknown-recipient log entry, got %v", rec.Entries())
	}
	if obs.unknown != 1 || obs.direct != 0 {
		t.Errorf("observer = %+v", obs)
	}
}

func TestBroadcastSendSkipsSender(t *testing.T) {
	obs := &countingObserver{}
	bus, actors := newTestBus(t, 4, WithObserver(obs))

	// Satellite plus robots 0..3: broadcasting from robot 2 reaches 4 others.
	sender := ActorID(2)
	bus.BroadcastSend(sender, "test_queue")

	for id, a := range actors {
		got := a.drain()
		if id == sender {
			if len(got) != 0 {
				t.Errorf("sender inbox got %d messages", len(got))
			}
			continue
		}
		if len(got) != 1 {
			t.Fatalf("inbox %s got %d messages, want 1", id, len(got))
		}
		if got[0].Text() != "test_queue" || got[0].Sender() != sender || !got[0].IsBroadcast() {
			t.Errorf("inbox %s got %v", id, got[0])
		}
	}
	if obs.broadcast != 1 || obs.fanout != 4 {
		t.Errorf("observer = %+v", obs)
	}
}

func TestBroadcastFromUnregisteredSenderReachesEveryone(t *testing.T) {
	bus, actors := newTestBus(t, 3)
	bus.BroadcastSend(ActorID(500), "hello")
	for id, a := range actors {
		if a.inbox.Len() != 1 {
			t.Errorf("inbox %s len = %d, want 1", id, a.inbox.Len())
		}
	}
}

func TestSendOrderIsDrainOrder(t *testing.T) {
	bus, actors := newTestBus(t, 2)
	texts := []string{"a", "b", "c", "d", "e"}
	for i, txt := range texts {
		if i%2 == 0 {
			bus.DirectSend(Satellite, 1, txt)
		} else {
			bus.BroadcastSend(0, txt)
		}
	}

	got := actors[1].drain()
	if len(got) != len(texts) {
		t.Fatalf("got %d messages, want %d", len(got), len(texts))
	}
	for i, m := range got {
		if m.Text() != texts[i] {
			t.Errorf("message %d = %q, want %q", i, m.Text(), texts[i])
		}
	}
}

func TestRegisterRejectsDuplicatesAndReserved(t *testing.T) {
	bus := NewBus(WithLogger(logging.Discard()))
	if err := bus.Register(0, &testActor{}); err != nil {
		t.Fatal(err)
	}
	if err := bus.Register(0, &testActor{}); err == nil {
		t.Error("expected duplicate registration error")
	}
	if err := bus.Register(Broadcast, &testActor{}); err == nil {
		t.Error("expected error registering the broadcast marker")
	}
	if err := bus.Register(1, nil); err == nil {
		t.Error("expected error for nil receiver")
	}
	if got := bus.Actors(); len(got) != 1 || got[0] != 0 {
		t.Errorf("Actors() = %v", got)
	}
}

func TestTickDoesNotDeliver(t *testing.T) {
	bus, actors := newTestBus(t, 1)
	bus.DirectSend(Satellite, 0, "x")
	bus.Tick(1)
	if actors[0].inbox.Len() != 1 {
		t.Errorf("Tick changed inbox length to %d", actors[0].inbox.Len())
	}
}

func TestIndicatorsExpireOnTick(t *testing.T) {
	var shown []Indicator
	sink := SinkFunc(func(ind Indicator) error {
		shown = append(shown, ind)
		return nil
	})
	bus, _ := newTestBus(t, 2, WithShowIndicators(true), WithIndicatorDuration(0.5), WithSink(sink))

	bus.DirectSend(0, 1, "construction\tstart")
	bus.BroadcastSend(Satellite, "test_queue")

	live := bus.Indicators()
	if len(live) != 2 || len(shown) != 2 {
		t.Fatalf("live=%d shown=%d, want 2 each", len(live), len(shown))
	}
	if live[0].Topic != "construction" || live[0].Remaining != 0.5 {
		t.Errorf("first indicator = %+v", live[0])
	}
	if live[1].Recipient != Broadcast {
		t.Errorf("second indicator recipient = %s, want broadcast", live[1].Recipient)
	}

	bus.Tick(0.3)
	if n := len(bus.Indicators()); n != 2 {
		t.Errorf("after 0.3s live = %d, want 2", n)
	}
	bus.Tick(0.3)
	if n := len(bus.Indicators()); n != 0 {
		t.Errorf("after 0.6s live = %d, want 0", n)
	}
}

func TestSinkErrorDoesNotAffectDelivery(t *testing.T) {
	sink := SinkFunc(func(Indicator) error { return errors.New("no window") })
	bus, actors := newTestBus(t, 1, WithShowIndicators(true), WithSink(sink))

	bus.DirectSend(Satellite, 0, "hi")
	if actors[0].inbox.Len() != 1 {
		t.Error("message not delivered when sink fails")
	}
}

func TestToggles(t *testing.T) {
	rec := logging.NewRecorder()
	bus, _ := newTestBus(t, 1, WithLogger(rec.Logger()), WithShowIndicators(true))

	bus.DirectSend(Satellite, 0, "one")
	if rec.Count("message") != 0 {
		t.Error("console echo should start disabled")
	}
	if !bus.ToggleShowInConsole() {
		t.Fatal("ToggleShowInConsole should enable echo")
	}
	bus.DirectSend(Satellite, 0, "two")
	if rec.Count("message") != 1 {
		t.Errorf("echo count = %d, want 1", rec.Count("message"))
	}

	if !bus.ShowInConsole() || !bus.ShowIndicators() {
		t.Fatal("both toggles should read as enabled")
	}
	if bus.ToggleShowIndicators() {
		t.Fatal("ToggleShowIndicators should disable indicators")
	}
	if bus.ShowIndicators() {
		t.Error("ShowIndicators still reports enabled")
	}
	if n := len(bus.Indicators()); n != 0 {
		t.Errorf("indicators not cleared: %d", n)
	}
	bus.DirectSend(Satellite, 0, "three")
	if n := len(bus.Indicators()); n != 0 {
		t.Errorf("indicator created while disabled: %d", n)
	}
}
