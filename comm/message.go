// Package comm implements actor addressing, per-actor inboxes and the message bus.
//
// Sends are synchronous: a message lands in the recipient inbox before the send
// call returns. Consumption is deferred to the recipient's own update step, so an
// actor never observes another actor's message in the middle of a tick.
package comm

import (
	"fmt"
	"math"
	"strings"
)

// ActorID identifies an actor for the lifetime of a run.
// Mobile agents are numbered densely from 0; Satellite is reserved.
type ActorID uint32

const (
	// Satellite is the reserved identity of the coordinator.
	Satellite ActorID = math.MaxUint32
	// Broadcast marks the recipient of a broadcast copy.
	Broadcast ActorID = math.MaxUint32 - 1
)

// String renders the ID the way log lines refer to actors.
func (id ActorID) String() string {
	switch id {
	case Satellite:
		return "satellite"
	case Broadcast:
		return "broadcast"
	default:
		return fmt.Sprintf("robot-%d", uint32(id))
	}
}

// IsRobot reports whether id denotes a mobile agent.
func (id ActorID) IsRobot() bool {
	return id != Satellite && id != Broadcast
}

// ArgSep separates the topic token from its arguments and arguments from each other.
const ArgSep = "\t"

// Message is an immutable bus message. Fields are unexported so a delivered
// message cannot be altered by any recipient.
type Message struct {
	sender    ActorID
	recipient ActorID
	text      string
}

// NewMessage constructs a message.
func NewMessage(sender, recipient ActorID, text string) Message {
	return Message{sender: sender, recipient: recipient, text: text}
}

// Sender returns the sending actor.
func (m Message) Sender() ActorID { return m.sender }

// Recipient returns the addressed actor, or Broadcast for broadcast copies.
func (m Message) Recipient() ActorID { return m.recipient }

// Text returns the full payload.
func (m Message) Text() string { return m.text }

// IsBroadcast reports whether this is a broadcast copy.
func (m Message) IsBroadcast() bool { return m.recipient == Broadcast }

// Topic returns the payload up to the first tab.
func (m Message) Topic() string {
	topic, _, _ := strings.Cut(m.text, ArgSep)
	return topic
}

// Args returns the payload after the first tab, or "" when there is none.
func (m Message) Args() string {
	_, args, _ := strings.Cut(m.text, ArgSep)
	return args
}

// Fields returns the tab-separated arguments. Empty when there are no arguments.
func (m Message) Fields() []string {
	args := m.Args()
	if args == "" {
		return nil
	}
	return strings.Split(args, ArgSep)
}

// String implements fmt.Stringer.
func (m Message) String() string {
	return fmt.Sprintf("%s -> %s: %q", m.sender, m.recipient, m.text)
}

// Compose joins a topic and its arguments into a payload.
func Compose(topic string, args ...string) string {
	if len(args) == 0 {
		return topic
	}
	return topic + ArgSep + strings.Join(args, ArgSep)
}
