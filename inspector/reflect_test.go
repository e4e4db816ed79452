package inspector

import (
	"testing"

	"github.com/pthm-cable/swarm/comm"
	"github.com/pthm-cable/swarm/components"
)

type sample struct {
	Phase    string         `inspect:"label"`
	Progress int            `inspect:"bar,max:20"`
	Running  bool           // auto
	Seen     []string       `inspect:"skip"`
	Counts   map[string]int `inspect:"label"`
	hidden   int
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag    string
		widget Widget
		opts   map[string]string
	}{
		{"", WidgetAuto, map[string]string{}},
		{"label", WidgetLabel, map[string]string{}},
		{"bar,max:20", WidgetBar, map[string]string{"max": "20"}},
		{"label, fmt:%.1f", WidgetLabel, map[string]string{"fmt": "%.1f"}},
		{"skip", WidgetSkip, map[string]string{}},
		{"sparkline", WidgetAuto, map[string]string{}},
	}
	for _, tt := range tests {
		w, opts := ParseTag(tt.tag)
		if w != tt.widget {
			t.Errorf("ParseTag(%q) widget = %d, want %d", tt.tag, w, tt.widget)
		}
		if len(opts) != len(tt.opts) {
			t.Errorf("ParseTag(%q) opts = %v, want %v", tt.tag, opts, tt.opts)
		}
		for k, v := range tt.opts {
			if opts[k] != v {
				t.Errorf("ParseTag(%q) opt %s = %q, want %q", tt.tag, k, opts[k], v)
			}
		}
	}
}

func TestExtractFields(t *testing.T) {
	s := sample{Phase: "running", Progress: 5, Running: true, Counts: map[string]int{"b": 2, "a": 1}, hidden: 3}

	fields := ExtractFields(&s)
	if len(fields) != 4 {
		t.Fatalf("fields = %+v, want 4", fields)
	}
	want := []struct {
		name   string
		widget Widget
	}{
		{"Phase", WidgetLabel},
		{"Progress", WidgetBar},
		{"Running", WidgetBool},
		{"Counts", WidgetLabel},
	}
	for i, w := range want {
		if fields[i].Name != w.name || fields[i].Widget != w.widget {
			t.Errorf("field %d = %s/%d, want %s/%d", i, fields[i].Name, fields[i].Widget, w.name, w.widget)
		}
	}
	if GetMax(fields[1].Options) != 20 {
		t.Errorf("max = %v", GetMax(fields[1].Options))
	}
	if got := FormatValue(fields[3].Value, ""); got != "a=1 b=2" {
		t.Errorf("map formatted as %q", got)
	}

	if ExtractFields(42) != nil {
		t.Error("non-struct should yield no fields")
	}
	if ExtractFields((*sample)(nil)) != nil {
		t.Error("nil pointer should yield no fields")
	}
}

type point struct {
	id  comm.ActorID
	pos components.Position
}

func (p point) ID() comm.ActorID              { return p.id }
func (p point) Position() components.Position { return p.pos }

func TestPick(t *testing.T) {
	targets := []Target{
		point{0, components.Position{X: 0, Z: 0}},
		point{1, components.Position{X: 10, Z: 0}},
		point{comm.Satellite, components.Position{X: 10, Y: 15, Z: 0}},
	}
	// Screen = world x,z scaled by 10; height lifts the point upward.
	project := func(x, y, z float32) (float32, float32) { return x * 10, z*10 - y*10 }

	tests := []struct {
		name   string
		mx, my float32
		want   comm.ActorID
		ok     bool
	}{
		{"on robot 0", 2, 1, 0, true},
		{"nearest wins", 96, 0, 1, true},
		{"satellite above", 100, -148, comm.Satellite, true},
		{"miss", 50, 50, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Pick(tt.mx, tt.my, PickRadius, targets, project)
			if ok != tt.ok || (ok && id != tt.want) {
				t.Errorf("Pick = %v, %v; want %v, %v", id, ok, tt.want, tt.ok)
			}
		})
	}
}
