package statemachine

import (
	"fmt"
	"sync/atomic"
)

// Kind tags a state's playback shape.
type Kind uint8

const (
	KindSingle Kind = iota
	KindLinearBlend
	KindDirectionalBlend
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindLinearBlend:
		return "linear_blend"
	case KindDirectionalBlend:
		return "directional_blend"
	default:
		return "unknown"
	}
}

// Clip is global clip metadata shared by every state that samples it.
type Clip struct {
	Name     string
	Duration float32 // seconds
}

// SingleClip is the payload of a KindSingle state.
type SingleClip struct {
	Clip int
}

// LinearEntry pairs a clip with its 1-D blend threshold.
type LinearEntry struct {
	Clip      int
	Threshold float32
}

// LinearBlendTree holds entries sorted ascending by threshold.
type LinearBlendTree struct {
	Entries []LinearEntry
}

// DirectionalEntry pairs a clip with its authored 2-D blend position.
type DirectionalEntry struct {
	Clip int
	X, Y float32
}

// DirectionalBlendTree holds the authored position cloud for a 2-D blend.
type DirectionalBlendTree struct {
	Entries []DirectionalEntry
}

// State is a closed variant: exactly one of Single, Linear, Directional is
// populated, selected by Kind.
type State struct {
	Name  string
	Kind  Kind
	Loop  bool
	Speed float32

	Single      *SingleClip
	Linear      *LinearBlendTree
	Directional *DirectionalBlendTree
}

// ClipCount returns how many samplers the state needs.
func (s *State) ClipCount() int {
	switch s.Kind {
	case KindSingle:
		if s.Single == nil {
			return 0
		}
		return 1
	case KindLinearBlend:
		if s.Linear == nil {
			return 0
		}
		return len(s.Linear.Entries)
	case KindDirectionalBlend:
		if s.Directional == nil {
			return 0
		}
		return len(s.Directional.Entries)
	default:
		return 0
	}
}

// ClipIndices returns the definition clip index for each sampler slot, in
// sampler order.
func (s *State) ClipIndices() []int {
	switch s.Kind {
	case KindSingle:
		if s.Single == nil {
			return nil
		}
		return []int{s.Single.Clip}
	case KindLinearBlend:
		if s.Linear == nil {
			return nil
		}
		out := make([]int, len(s.Linear.Entries))
		for i, e := range s.Linear.Entries {
			out[i] = e.Clip
		}
		return out
	case KindDirectionalBlend:
		if s.Directional == nil {
			return nil
		}
		out := make([]int, len(s.Directional.Entries))
		for i, e := range s.Directional.Entries {
			out[i] = e.Clip
		}
		return out
	default:
		return nil
	}
}

// Transition describes an authored transition between two states.
type Transition struct {
	From     int
	To       int
	ExitTime float32 // seconds; may exceed the from state's duration ("after N loops")
	Duration float32 // seconds
}

// Definition is the immutable compiled state machine consumed by the preview.
// It is never mutated after construction; ownership is tracked with explicit
// Acquire/Release calls by whichever session loaded it.
type Definition struct {
	Name        string
	Clips       []Clip
	States      []State
	Transitions []Transition

	refs atomic.Int32
}

// Acquire adds a reference and returns d for chaining.
func (d *Definition) Acquire() *Definition {
	if d == nil {
		return nil
	}
	d.refs.Add(1)
	return d
}

// Release drops a reference and reports whether it was the last one, at which
// point no backend needs the definition any more.
func (d *Definition) Release() bool {
	if d == nil {
		return false
	}
	return d.refs.Add(-1) <= 0
}

// Validate checks internal consistency: clip indices in range, linear
// thresholds sorted, every state payload matching its kind.
func (d *Definition) Validate() error {
	if d == nil {
		return fmt.Errorf("statemachine: nil definition")
	}
	for i := range d.States {
		s := &d.States[i]
		if s.ClipCount() == 0 {
			return fmt.Errorf("statemachine: state %q has no clips", s.Name)
		}
		for _, clip := range s.ClipIndices() {
			if clip < 0 || clip >= len(d.Clips) {
				return fmt.Errorf("statemachine: state %q references clip %d out of range", s.Name, clip)
			}
		}
		if s.Kind == KindLinearBlend {
			entries := s.Linear.Entries
			for j := 1; j < len(entries); j++ {
				if entries[j].Threshold < entries[j-1].Threshold {
					return fmt.Errorf("statemachine: state %q thresholds not sorted", s.Name)
				}
			}
		}
	}
	for _, t := range d.Transitions {
		if t.From < 0 || t.From >= len(d.States) {
			return fmt.Errorf("statemachine: transition from state %d out of range", t.From)
		}
		if t.To < 0 || t.To >= len(d.States) {
			return fmt.Errorf("statemachine: transition to state %d out of range", t.To)
		}
	}
	return nil
}

// StateIndex returns the index of the named state, or -1.
func (d *Definition) StateIndex(name string) int {
	if d == nil {
		return -1
	}
	for i := range d.States {
		if d.States[i].Name == name {
			return i
		}
	}
	return -1
}

// ClipDuration returns the duration of clip index, or 0 when out of range.
func (d *Definition) ClipDuration(clip int) float32 {
	if d == nil || clip < 0 || clip >= len(d.Clips) {
		return 0
	}
	return d.Clips[clip].Duration
}
