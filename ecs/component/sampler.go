package component

import "fmt"

// ClipSampler is one per-clip playback record. A contiguous run of samplers
// belongs to one state runtime; id is the addressing key, not the slot index.
type ClipSampler struct {
	ID           uint8
	Clip         uint16
	Time         float32
	PreviousTime float32
	Weight       float32
	Duration     float32
}

// SamplerBuffer is the flat pool of samplers for one preview subject.
// Ids are handed out monotonically and never reused; the pool only shrinks
// via Reset when the whole subject is rebuilt. A later AllocRange may grow
// the backing array, so take pointers and Range views only after all
// allocations for a build are done.
type SamplerBuffer struct {
	samplers []ClipSampler
	slotByID map[uint8]int
	nextID   int
}

func NewSamplerBuffer() *SamplerBuffer {
	return &SamplerBuffer{slotByID: make(map[uint8]int)}
}

// AllocRange appends n samplers with sequential ids and returns the first id.
// Exhausting the 8-bit id space is a construction failure.
func (b *SamplerBuffer) AllocRange(n int) (uint8, error) {
	if n <= 0 {
		return 0, fmt.Errorf("sampler: allocation of %d samplers", n)
	}
	if b.nextID+n > 256 {
		return 0, fmt.Errorf("sampler: id space exhausted (%d allocated, %d requested)", b.nextID, n)
	}
	start := uint8(b.nextID)
	for i := 0; i < n; i++ {
		id := uint8(b.nextID)
		b.slotByID[id] = len(b.samplers)
		b.samplers = append(b.samplers, ClipSampler{ID: id})
		b.nextID++
	}
	return start, nil
}

// ByID returns the sampler with the given id, or nil. The pointer stays
// valid until the next AllocRange or Reset.
func (b *SamplerBuffer) ByID(id uint8) *ClipSampler {
	if b == nil {
		return nil
	}
	slot, ok := b.slotByID[id]
	if !ok {
		return nil
	}
	return &b.samplers[slot]
}

// Range returns the samplers with ids start..start+count-1 as a mutable
// slice view, or nil when any id in the run is missing.
func (b *SamplerBuffer) Range(start, count uint8) []ClipSampler {
	if b == nil || count == 0 {
		return nil
	}
	first, ok := b.slotByID[start]
	if !ok {
		return nil
	}
	end := first + int(count)
	if end > len(b.samplers) {
		return nil
	}
	// Ids are sequential within one build, so the run is contiguous.
	return b.samplers[first:end]
}

// All returns every sampler as a mutable slice view.
func (b *SamplerBuffer) All() []ClipSampler {
	if b == nil {
		return nil
	}
	return b.samplers
}

func (b *SamplerBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.samplers)
}

// Reset drops every sampler and restarts id allocation. Only valid when the
// subject is torn down or rebuilt.
func (b *SamplerBuffer) Reset() {
	if b == nil {
		return
	}
	b.samplers = b.samplers[:0]
	b.slotByID = make(map[uint8]int)
	b.nextID = 0
}
