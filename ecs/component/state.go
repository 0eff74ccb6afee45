package component

import "fmt"

// StateRuntime is the live playback record of one active animation state.
// StartSampler..StartSampler+ClipCount-1 is its sampler range.
type StateRuntime struct {
	ID           uint8
	StateIndex   int
	Time         float32
	Weight       float32
	Speed        float32
	Loop         bool
	StartSampler uint8
	ClipCount    uint8
}

// StateBuffer holds the state runtimes of one subject, addressed by id via
// the same id→slot scheme as SamplerBuffer.
type StateBuffer struct {
	states   []StateRuntime
	slotByID map[uint8]int
	nextID   int
}

func NewStateBuffer() *StateBuffer {
	return &StateBuffer{slotByID: make(map[uint8]int)}
}

// Alloc appends a state runtime and returns its assigned id.
func (b *StateBuffer) Alloc(rt StateRuntime) (uint8, error) {
	if b.nextID >= 256 {
		return 0, fmt.Errorf("state: id space exhausted")
	}
	id := uint8(b.nextID)
	rt.ID = id
	b.slotByID[id] = len(b.states)
	b.states = append(b.states, rt)
	b.nextID++
	return id, nil
}

// ByID returns the state runtime with the given id, or nil. The pointer
// stays valid until the next Alloc or Reset.
func (b *StateBuffer) ByID(id uint8) *StateRuntime {
	if b == nil {
		return nil
	}
	slot, ok := b.slotByID[id]
	if !ok {
		return nil
	}
	return &b.states[slot]
}

// All returns every state runtime as a mutable slice view.
func (b *StateBuffer) All() []StateRuntime {
	if b == nil {
		return nil
	}
	return b.states
}

func (b *StateBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.states)
}

// Reset drops every runtime and restarts id allocation.
func (b *StateBuffer) Reset() {
	if b == nil {
		return
	}
	b.states = b.states[:0]
	b.slotByID = make(map[uint8]int)
	b.nextID = 0
}

// ActiveTransition exists only while a transition preview is in progress.
type ActiveTransition struct {
	FromState uint8
	ToState   uint8
	Duration  float32
	Elapsed   float32
	Valid     bool
}

// Progress returns completion in [0,1], or 0 for a degenerate duration.
func (t *ActiveTransition) Progress() float32 {
	if t == nil || !t.Valid || t.Duration <= 0 {
		return 0
	}
	p := t.Elapsed / t.Duration
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
