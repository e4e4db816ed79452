package ui

import (
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// BindingID uniquely identifies a key binding.
type BindingID string

// Standard bindings.
const (
	BindShowConsole    BindingID = "show_console"
	BindShowIndicators BindingID = "show_indicators"
	BindPause          BindingID = "pause"
	BindConstruction   BindingID = "construction"
	BindForage         BindingID = "forage"
	BindTestMessage    BindingID = "test_message"
	BindSnapshot       BindingID = "snapshot"
)

// Binding maps a key to a console command.
type Binding struct {
	ID       BindingID
	Name     string // Display name
	Key      int32  // Keyboard key (0 = none)
	KeyLabel string // Key label for display
	Command  string // Console line queued when the key is pressed
	Category string // "view" or "swarm"
}

// BindingRegistry holds bindings in display order.
type BindingRegistry struct {
	byID  map[BindingID]Binding
	order []BindingID
}

// NewBindingRegistry creates a registry with the default bindings.
func NewBindingRegistry() *BindingRegistry {
	r := &BindingRegistry{byID: make(map[BindingID]Binding)}
	r.registerDefaults()
	return r
}

func (r *BindingRegistry) registerDefaults() {
	r.Register(Binding{ID: BindShowConsole, Name: "Console Log", Key: rl.KeyC, KeyLabel: "C", Command: "show_console", Category: "view"})
	r.Register(Binding{ID: BindShowIndicators, Name: "Indicators", Key: rl.KeyI, KeyLabel: "I", Command: "show_indicators", Category: "view"})
	r.Register(Binding{ID: BindPause, Name: "Pause", Key: rl.KeyP, KeyLabel: "P", Command: "pause", Category: "view"})
	r.Register(Binding{ID: BindConstruction, Name: "Construction", Key: rl.KeyF1, KeyLabel: "F1", Command: "construction", Category: "swarm"})
	r.Register(Binding{ID: BindForage, Name: "Forage", Key: rl.KeyF2, KeyLabel: "F2", Command: "forage", Category: "swarm"})
	r.Register(Binding{ID: BindTestMessage, Name: "Test Message", Key: rl.KeyF3, KeyLabel: "F3", Command: "test_message", Category: "swarm"})
	r.Register(Binding{ID: BindSnapshot, Name: "Snapshot", Key: rl.KeyF5, KeyLabel: "F5", Command: "snapshot", Category: "swarm"})
}

// Register adds or replaces a binding.
func (r *BindingRegistry) Register(b Binding) {
	if _, exists := r.byID[b.ID]; !exists {
		r.order = append(r.order, b.ID)
	}
	r.byID[b.ID] = b
}

// Get returns a binding by ID.
func (r *BindingRegistry) Get(id BindingID) (Binding, bool) {
	b, ok := r.byID[id]
	return b, ok
}

// All returns every binding in registration order.
func (r *BindingRegistry) All() []Binding {
	out := make([]Binding, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Categories returns the binding categories, sorted.
func (r *BindingRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, id := range r.order {
		c := r.byID[id].Category
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	sort.Strings(cats)
	return cats
}

// ByCategory returns bindings in a category, in registration order.
func (r *BindingRegistry) ByCategory(category string) []Binding {
	var out []Binding
	for _, id := range r.order {
		if b := r.byID[id]; b.Category == category {
			out = append(out, b)
		}
	}
	return out
}

// Pressed returns the commands of every binding whose key was pressed this frame.
func (r *BindingRegistry) Pressed() []string {
	var cmds []string
	for _, id := range r.order {
		b := r.byID[id]
		if b.Key != 0 && rl.IsKeyPressed(b.Key) {
			cmds = append(cmds, b.Command)
		}
	}
	return cmds
}
