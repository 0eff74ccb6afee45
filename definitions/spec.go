// Package definitions loads baked state-machine definition files. Baking
// itself happens elsewhere; this package only reads the compiled shape and
// resolves it into the immutable statemachine.Definition the preview runs.
package definitions

import (
	"fmt"
	"sort"

	"github.com/hazelite/animstate/statemachine"
	"gopkg.in/yaml.v3"
)

type ClipSpec struct {
	Name     string  `yaml:"name"`
	Duration float32 `yaml:"duration"`
}

type BlendEntrySpec struct {
	Clip      string  `yaml:"clip"`
	Threshold float32 `yaml:"threshold"`
}

type DirectionalEntrySpec struct {
	Clip string  `yaml:"clip"`
	X    float32 `yaml:"x"`
	Y    float32 `yaml:"y"`
}

type StateSpec struct {
	Name        string                 `yaml:"name"`
	Kind        string                 `yaml:"kind"`
	Loop        bool                   `yaml:"loop"`
	Speed       float32                `yaml:"speed"`
	Clip        string                 `yaml:"clip,omitempty"`
	Blend       []BlendEntrySpec       `yaml:"blend,omitempty"`
	Directional []DirectionalEntrySpec `yaml:"directional,omitempty"`
}

type TransitionSpec struct {
	From     string  `yaml:"from"`
	To       string  `yaml:"to"`
	ExitTime float32 `yaml:"exit_time"`
	Duration float32 `yaml:"duration"`
}

type DefinitionSpec struct {
	Name        string           `yaml:"name"`
	Script      string           `yaml:"script,omitempty"`
	Clips       []ClipSpec       `yaml:"clips"`
	States      []StateSpec      `yaml:"states"`
	Transitions []TransitionSpec `yaml:"transitions"`
}

// LoadSpec reads and unmarshals a baked definition file by name, preferring
// a disk copy over the embedded one.
func LoadSpec(filename string) (*DefinitionSpec, error) {
	data, err := Load(filename)
	if err != nil {
		return nil, fmt.Errorf("definitions: load %s: %w", filename, err)
	}
	var spec DefinitionSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("definitions: unmarshal %s: %w", filename, err)
	}
	return &spec, nil
}

// Build resolves clip names into indices and produces the immutable
// definition the preview consumes. Blend entries are sorted by threshold so
// downstream weight math can assume order.
func (s *DefinitionSpec) Build() (*statemachine.Definition, error) {
	if s == nil {
		return nil, fmt.Errorf("definitions: nil spec")
	}
	clipIndex := make(map[string]int, len(s.Clips))
	def := &statemachine.Definition{Name: s.Name}
	for i, c := range s.Clips {
		if c.Name == "" {
			return nil, fmt.Errorf("definitions: %s: clip %d has no name", s.Name, i)
		}
		if _, dup := clipIndex[c.Name]; dup {
			return nil, fmt.Errorf("definitions: %s: duplicate clip %q", s.Name, c.Name)
		}
		if c.Duration <= 0 {
			return nil, fmt.Errorf("definitions: %s: clip %q has non-positive duration", s.Name, c.Name)
		}
		clipIndex[c.Name] = i
		def.Clips = append(def.Clips, statemachine.Clip{Name: c.Name, Duration: c.Duration})
	}

	resolve := func(state, clip string) (int, error) {
		idx, ok := clipIndex[clip]
		if !ok {
			return 0, fmt.Errorf("definitions: %s: state %q references unknown clip %q", s.Name, state, clip)
		}
		return idx, nil
	}

	for _, st := range s.States {
		out := statemachine.State{
			Name:  st.Name,
			Loop:  st.Loop,
			Speed: st.Speed,
		}
		if out.Speed == 0 {
			out.Speed = 1
		}
		switch st.Kind {
		case "single", "":
			idx, err := resolve(st.Name, st.Clip)
			if err != nil {
				return nil, err
			}
			out.Kind = statemachine.KindSingle
			out.Single = &statemachine.SingleClip{Clip: idx}
		case "linear_blend":
			if len(st.Blend) == 0 {
				return nil, fmt.Errorf("definitions: %s: state %q has an empty blend list", s.Name, st.Name)
			}
			tree := &statemachine.LinearBlendTree{}
			for _, entry := range st.Blend {
				idx, err := resolve(st.Name, entry.Clip)
				if err != nil {
					return nil, err
				}
				tree.Entries = append(tree.Entries, statemachine.LinearEntry{Clip: idx, Threshold: entry.Threshold})
			}
			sort.SliceStable(tree.Entries, func(i, j int) bool {
				return tree.Entries[i].Threshold < tree.Entries[j].Threshold
			})
			out.Kind = statemachine.KindLinearBlend
			out.Linear = tree
		case "directional_blend":
			if len(st.Directional) == 0 {
				return nil, fmt.Errorf("definitions: %s: state %q has an empty directional list", s.Name, st.Name)
			}
			tree := &statemachine.DirectionalBlendTree{}
			for _, entry := range st.Directional {
				idx, err := resolve(st.Name, entry.Clip)
				if err != nil {
					return nil, err
				}
				tree.Entries = append(tree.Entries, statemachine.DirectionalEntry{Clip: idx, X: entry.X, Y: entry.Y})
			}
			out.Kind = statemachine.KindDirectionalBlend
			out.Directional = tree
		default:
			return nil, fmt.Errorf("definitions: %s: state %q has unknown kind %q", s.Name, st.Name, st.Kind)
		}
		def.States = append(def.States, out)
	}

	for _, tr := range s.Transitions {
		from := def.StateIndex(tr.From)
		to := def.StateIndex(tr.To)
		if from < 0 {
			return nil, fmt.Errorf("definitions: %s: transition from unknown state %q", s.Name, tr.From)
		}
		if to < 0 {
			return nil, fmt.Errorf("definitions: %s: transition to unknown state %q", s.Name, tr.To)
		}
		def.Transitions = append(def.Transitions, statemachine.Transition{
			From:     from,
			To:       to,
			ExitTime: tr.ExitTime,
			Duration: tr.Duration,
		})
	}

	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("definitions: %s: %w", s.Name, err)
	}
	return def, nil
}
