// Package fsm hosts the named behavioural states of one actor and routes
// incoming messages to them.
//
// States are grouped into slots. A slot holds at most one active state, so two
// states sharing a slot are mutually exclusive. States are never torn down once
// started.
package fsm

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/pthm-cable/swarm/comm"
)

// State is one named behavioural mode of an actor.
type State interface {
	Name() string
	HandleMessage(msg comm.Message)
}

// Rule routes topics starting with Prefix to State.
type Rule struct {
	Prefix string
	State  string
}

// Observer is notified of dispatch outcomes. Used by telemetry.
type Observer interface {
	RecordDispatch(state string)
	RecordDrop(topic string)
	RecordRejection(state string)
	RecordMalformed(state string)
}

// Controller owns the active states and routing table of one actor.
// It is not safe for concurrent use; the owning actor drives it from its update step.
type Controller struct {
	rules    []Rule
	fallback string

	slotOf map[string]string // state name -> slot
	bySlot map[string]State  // slot -> active state

	logger   *slog.Logger
	observer Observer
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver attaches a dispatch observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

// WithSlot puts states into a shared mutual-exclusion slot.
func WithSlot(slot string, states ...string) Option {
	return func(c *Controller) {
		for _, s := range states {
			c.slotOf[s] = slot
		}
	}
}

// NewController creates a controller with an ordered routing table.
// Rules are evaluated top to bottom and the first prefix match wins;
// topics matching no rule go to fallback.
func NewController(rules []Rule, fallback string, opts ...Option) *Controller {
	c := &Controller{
		rules:    append([]Rule(nil), rules...),
		fallback: fallback,
		slotOf:   make(map[string]string),
		bySlot:   make(map[string]State),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Slot returns the slot a state name belongs to.
// States not assigned with WithSlot occupy a slot named after themselves.
func (c *Controller) Slot(name string) string {
	if slot, ok := c.slotOf[name]; ok {
		return slot
	}
	return name
}

// Start activates the state called name, constructing it with build.
// It is rejected, and build is not called, when the state's slot is already
// occupied (by the same state or a mutually exclusive one). Rejections are
// logged; the return value reports whether the state was started.
func (c *Controller) Start(name string, build func() State) bool {
	slot := c.Slot(name)
	if occupant, busy := c.bySlot[slot]; busy {
		c.logger.Error("state already active in slot, start rejected",
			"state", name, "slot", slot, "active", occupant.Name())
		if c.observer != nil {
			c.observer.RecordRejection(name)
		}
		return false
	}

	c.bySlot[slot] = build()
	c.logger.Info("state started", "state", name, "slot", slot)
	return true
}

// Active returns the active state called name.
func (c *Controller) Active(name string) (State, bool) {
	st, ok := c.bySlot[c.Slot(name)]
	if !ok || st.Name() != name {
		return nil, false
	}
	return st, true
}

// ActiveNames returns the names of all active states, sorted.
func (c *Controller) ActiveNames() []string {
	names := make([]string, 0, len(c.bySlot))
	for _, st := range c.bySlot {
		names = append(names, st.Name())
	}
	sort.Strings(names)
	return names
}

// SlotOccupant returns the name of the state active in slot, or "".
func (c *Controller) SlotOccupant(slot string) string {
	if st, ok := c.bySlot[slot]; ok {
		return st.Name()
	}
	return ""
}

// Route returns the target state name for a topic.
func (c *Controller) Route(topic string) string {
	for _, r := range c.rules {
		if strings.HasPrefix(topic, r.Prefix) {
			return r.State
		}
	}
	return c.fallback
}

// Dispatch routes msg to its target state. When that state is not active the
// message is dropped and false is returned; nothing is re-queued.
func (c *Controller) Dispatch(msg comm.Message) bool {
	target := c.Route(msg.Topic())
	st, ok := c.Active(target)
	if !ok {
		c.logger.Info("no active state for message, dropped",
			"state", target, "topic", msg.Topic(), "sender", msg.Sender().String())
		if c.observer != nil {
			c.observer.RecordDrop(msg.Topic())
		}
		return false
	}

	st.HandleMessage(msg)
	if c.observer != nil {
		c.observer.RecordDispatch(target)
	}
	return true
}

// Malformed logs a message a state could not interpret. The message is dropped.
func (c *Controller) Malformed(state string, msg comm.Message, reason string) {
	c.logger.Warn("malformed message arguments, dropped",
		"state", state, "text", msg.Text(), "sender", msg.Sender().String(), "reason", reason)
	if c.observer != nil {
		c.observer.RecordMalformed(state)
	}
}
