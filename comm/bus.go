package comm

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pthm-cable/swarm/logging"
)

// Receiver accepts delivered messages. Implementations enqueue and return;
// handling happens later in the owner's update step.
type Receiver interface {
	QueueMessage(Message)
}

// Observer is notified of bus traffic. Used by telemetry.
type Observer interface {
	RecordSend(broadcast bool, fanout int)
	RecordUnknownRecipient()
}

// Bus routes messages between registered actors.
// A Bus is created once per simulation run and passed to every actor.
type Bus struct {
	mu        sync.RWMutex
	receivers map[ActorID]Receiver
	order     []ActorID // registration order, used for broadcast fan-out

	logger   *slog.Logger
	observer Observer
	sink     Sink

	showInConsole  atomic.Bool
	showIndicators atomic.Bool

	indMu      sync.Mutex
	indicators indicatorSet
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the bus logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logging.Tagged(l, logging.TagComm)
	}
}

// WithObserver attaches a traffic observer.
func WithObserver(o Observer) Option {
	return func(b *Bus) {
		b.observer = o
	}
}

// WithSink attaches a visual indicator sink.
func WithSink(s Sink) Option {
	return func(b *Bus) {
		b.sink = s
	}
}

// WithIndicatorDuration sets how long indicators stay live, in seconds.
func WithIndicatorDuration(sec float32) Option {
	return func(b *Bus) {
		b.indicators.duration = sec
	}
}

// WithShowInConsole enables logging of every sent message.
func WithShowInConsole(on bool) Option {
	return func(b *Bus) {
		b.showInConsole.Store(on)
	}
}

// WithShowIndicators enables visual indicators.
func WithShowIndicators(on bool) Option {
	return func(b *Bus) {
		b.showIndicators.Store(on)
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		receivers:  make(map[ActorID]Receiver),
		logger:     logging.Tagged(nil, logging.TagComm),
		indicators: indicatorSet{duration: 0.5},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register adds an actor under id. IDs are never reassigned, so registering
// the same id twice is an error. Broadcast cannot be registered.
func (b *Bus) Register(id ActorID, r Receiver) error {
	if id == Broadcast {
		return fmt.Errorf("register: %s is reserved", id)
	}
	if r == nil {
		return fmt.Errorf("register %s: nil receiver", id)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.receivers[id]; exists {
		return fmt.Errorf("register: actor %s already exists", id)
	}
	b.receivers[id] = r
	b.order = append(b.order, id)
	return nil
}

// Actors returns registered IDs in registration order.
func (b *Bus) Actors() []ActorID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]ActorID, len(b.order))
	copy(out, b.order)
	return out
}

// DirectSend delivers text from sender to recipient only.
// An unknown recipient is logged and the message is dropped.
func (b *Bus) DirectSend(sender, recipient ActorID, text string) {
	b.mu.RLock()
	r, ok := b.receivers[recipient]
	b.mu.RUnlock()

	if !ok {
		b.logger.Warn("unknown recipient, message dropped",
			"sender", sender.String(), "recipient", recipient.String(), "text", text)
		if b.observer != nil {
			b.observer.RecordUnknownRecipient()
		}
		return
	}

	msg := NewMessage(sender, recipient, text)
	r.QueueMessage(msg)

	if b.observer != nil {
		b.observer.RecordSend(false, 1)
	}
	b.announce(msg)
}

// BroadcastSend delivers one copy of text to every registered actor except sender.
// Each delivery is independent of the others.
func (b *Bus) BroadcastSend(sender ActorID, text string) {
	b.mu.RLock()
	targets := make([]Receiver, 0, len(b.order))
	for _, id := range b.order {
		if id != sender {
			targets = append(targets, b.receivers[id])
		}
	}
	b.mu.RUnlock()

	msg := NewMessage(sender, Broadcast, text)
	for _, r := range targets {
		r.QueueMessage(msg)
	}

	if b.observer != nil {
		b.observer.RecordSend(true, len(targets))
	}
	b.announce(msg)
}

// announce handles the console echo and indicator side effects of a send.
func (b *Bus) announce(msg Message) {
	if b.showInConsole.Load() {
		b.logger.Info("message", "sender", msg.Sender().String(),
			"recipient", msg.Recipient().String(), "text", msg.Text())
	}
	if !b.showIndicators.Load() {
		return
	}

	b.indMu.Lock()
	ind := b.indicators.add(Indicator{
		Sender:    msg.Sender(),
		Recipient: msg.Recipient(),
		Topic:     msg.Topic(),
	})
	b.indMu.Unlock()

	if b.sink != nil {
		if err := b.sink.ShowIndicator(ind); err != nil {
			b.logger.Debug("indicator not shown", "error", err)
		}
	}
}

// Tick advances bus timers by dt seconds. It does not deliver or drain anything.
func (b *Bus) Tick(dt float32) {
	b.indMu.Lock()
	b.indicators.advance(dt)
	b.indMu.Unlock()
}

// Indicators returns the live indicators.
func (b *Bus) Indicators() []Indicator {
	b.indMu.Lock()
	defer b.indMu.Unlock()
	return b.indicators.snapshot()
}

// ToggleShowInConsole flips message echo and returns the new setting.
func (b *Bus) ToggleShowInConsole() bool {
	on := !b.showInConsole.Load()
	b.showInConsole.Store(on)
	b.logger.Info("show messages in console", "enabled", on)
	return on
}

// ToggleShowIndicators flips visual indicators and returns the new setting.
// Turning them off clears the live set.
func (b *Bus) ToggleShowIndicators() bool {
	on := !b.showIndicators.Load()
	b.showIndicators.Store(on)
	if !on {
		b.indMu.Lock()
		b.indicators.live = nil
		b.indMu.Unlock()
	}
	b.logger.Info("show message indicators", "enabled", on)
	return on
}

// ShowInConsole reports whether delivered messages are echoed to the log.
func (b *Bus) ShowInConsole() bool { return b.showInConsole.Load() }

// ShowIndicators reports whether visual indicators are emitted.
func (b *Bus) ShowIndicators() bool { return b.showIndicators.Load() }
