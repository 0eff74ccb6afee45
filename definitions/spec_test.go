package definitions

import (
	"strings"
	"testing"

	"github.com/hazelite/animstate/statemachine"
)

func TestLoadEmbeddedDefinitions(t *testing.T) {
	names := List()
	if len(names) == 0 {
		t.Fatalf("expected embedded definitions")
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			spec, err := LoadSpec(name)
			if err != nil {
				t.Fatalf("LoadSpec: %v", err)
			}
			def, err := spec.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if err := def.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestBuildResolvesKinds(t *testing.T) {
	spec, err := LoadSpec("locomotion.yaml")
	if err != nil {
		t.Fatalf("LoadSpec: %v", err)
	}
	def, err := spec.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	loco := def.StateIndex("locomotion")
	if loco < 0 {
		t.Fatalf("locomotion state missing")
	}
	if def.States[loco].Kind != statemachine.KindLinearBlend {
		t.Fatalf("locomotion kind = %v, want linear blend", def.States[loco].Kind)
	}
	entries := def.States[loco].Linear.Entries
	for i := 1; i < len(entries); i++ {
		if entries[i].Threshold < entries[i-1].Threshold {
			t.Fatalf("blend entries not sorted: %v", entries)
		}
	}
	if !def.States[loco].Loop {
		t.Fatalf("locomotion should loop")
	}

	jump := def.StateIndex("jump")
	if jump < 0 || def.States[jump].Kind != statemachine.KindSingle {
		t.Fatalf("jump should be a single-clip state")
	}
	if len(def.Transitions) != 3 {
		t.Fatalf("expected 3 transitions, got %d", len(def.Transitions))
	}
}

func TestBuildDirectional(t *testing.T) {
	spec, err := LoadSpec("strafe.yaml")
	if err != nil {
		t.Fatalf("LoadSpec: %v", err)
	}
	def, err := spec.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	idx := def.StateIndex("strafe")
	if idx < 0 || def.States[idx].Kind != statemachine.KindDirectionalBlend {
		t.Fatalf("strafe should be a directional blend state")
	}
	if got := len(def.States[idx].Directional.Entries); got != 5 {
		t.Fatalf("expected 5 directional entries, got %d", got)
	}
}

func TestBuildRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name    string
		spec    DefinitionSpec
		wantSub string
	}{
		{
			name: "unknown_clip",
			spec: DefinitionSpec{
				Name:   "bad",
				Clips:  []ClipSpec{{Name: "idle", Duration: 1}},
				States: []StateSpec{{Name: "a", Kind: "single", Clip: "missing"}},
			},
			wantSub: "unknown clip",
		},
		{
			name: "duplicate_clip",
			spec: DefinitionSpec{
				Name:  "bad",
				Clips: []ClipSpec{{Name: "idle", Duration: 1}, {Name: "idle", Duration: 2}},
			},
			wantSub: "duplicate clip",
		},
		{
			name: "zero_duration",
			spec: DefinitionSpec{
				Name:  "bad",
				Clips: []ClipSpec{{Name: "idle", Duration: 0}},
			},
			wantSub: "non-positive duration",
		},
		{
			name: "unknown_kind",
			spec: DefinitionSpec{
				Name:   "bad",
				Clips:  []ClipSpec{{Name: "idle", Duration: 1}},
				States: []StateSpec{{Name: "a", Kind: "polar_blend", Clip: "idle"}},
			},
			wantSub: "unknown kind",
		},
		{
			name: "empty_blend",
			spec: DefinitionSpec{
				Name:   "bad",
				Clips:  []ClipSpec{{Name: "idle", Duration: 1}},
				States: []StateSpec{{Name: "a", Kind: "linear_blend"}},
			},
			wantSub: "empty blend",
		},
		{
			name: "transition_unknown_state",
			spec: DefinitionSpec{
				Name:        "bad",
				Clips:       []ClipSpec{{Name: "idle", Duration: 1}},
				States:      []StateSpec{{Name: "a", Kind: "single", Clip: "idle"}},
				Transitions: []TransitionSpec{{From: "a", To: "b"}},
			},
			wantSub: "unknown state",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.spec.Build()
			if err == nil {
				t.Fatalf("expected error containing %q", c.wantSub)
			}
			if !strings.Contains(err.Error(), c.wantSub) {
				t.Fatalf("error %q does not contain %q", err, c.wantSub)
			}
		})
	}
}

func TestLoadScript(t *testing.T) {
	data, err := LoadScript("sweep.tengo")
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	if !strings.Contains(string(data), "linear") {
		t.Fatalf("sweep script should drive the linear parameter")
	}
}
