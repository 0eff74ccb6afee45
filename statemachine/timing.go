package statemachine

import (
	"math"

	"github.com/hazelite/animstate/common"
)

const (
	// MinTransitionDuration is the smallest transition the timeline allows;
	// clamping to it keeps every progress division well defined.
	MinTransitionDuration = 0.01

	// BarAlignEpsilon is the slack, in seconds, used to decide that the from
	// and to bars end together, in which case an extra to-side ghost cycle is
	// drawn so the loop end has context.
	BarAlignEpsilon = 1e-3

	// MaxVisualCycles bounds how many ghost repeats of either state the
	// timeline will lay out.
	MaxVisualCycles = 4
)

// TransitionTiming is the fully clamped overlap layout for one transition.
// All fields are derived; recompute rather than mutate.
type TransitionTiming struct {
	ExitTime           float32
	TransitionDuration float32
	FromVisualCycles   int
	ToVisualCycles     int

	// Section durations, in timeline order.
	GhostFrom float32
	FromBar   float32
	ToBar     float32
	GhostTo   float32
}

// ComputeTransitionTiming derives the timeline overlap for a transition given
// both state durations and the authored exit time / duration request. Pure
// and total: degenerate durations are clamped, the result always satisfies
// 0 <= ExitTime <= fromDuration and
// MinTransitionDuration <= TransitionDuration <= toDuration.
func ComputeTransitionTiming(fromDuration, toDuration, requestedExitTime, requestedDuration float32) TransitionTiming {
	if fromDuration < MinTransitionDuration {
		fromDuration = MinTransitionDuration
	}
	if toDuration < MinTransitionDuration {
		toDuration = MinTransitionDuration
	}

	minExitTime := fromDuration - toDuration
	if minExitTime < 0 {
		minExitTime = 0
	}
	exitTime := common.Clamp(requestedExitTime, minExitTime, fromDuration)
	transitionDuration := common.Clamp(requestedDuration, MinTransitionDuration, toDuration)

	fromCycles := 1
	switch {
	case requestedExitTime > fromDuration:
		fromCycles = int(math.Ceil(float64(requestedExitTime) / float64(fromDuration)))
	case exitTime < BarAlignEpsilon && minExitTime < BarAlignEpsilon:
		// An immediate exit leaves no from bar at all; show one full loop of
		// context behind it.
		fromCycles = 2
	}
	fromCycles = clampCycles(fromCycles)

	toCycles := 1
	switch {
	case requestedDuration > toDuration:
		toCycles = int(math.Ceil(float64(requestedDuration) / float64(toDuration)))
	case exitTime+toDuration <= fromDuration+BarAlignEpsilon:
		// Bars end together; an extra to cycle keeps the loop end readable.
		toCycles = 2
	}
	toCycles = clampCycles(toCycles)

	toBar := toDuration - transitionDuration
	if toBar < 0 {
		toBar = 0
	}

	return TransitionTiming{
		ExitTime:           exitTime,
		TransitionDuration: transitionDuration,
		FromVisualCycles:   fromCycles,
		ToVisualCycles:     toCycles,
		GhostFrom:          float32(fromCycles-1) * fromDuration,
		FromBar:            exitTime,
		ToBar:              toBar,
		GhostTo:            float32(toCycles-1) * toDuration,
	}
}

func clampCycles(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxVisualCycles {
		return MaxVisualCycles
	}
	return n
}

// SectionKind identifies one of the five timeline sections.
type SectionKind uint8

const (
	SectionGhostFrom SectionKind = iota
	SectionFromBar
	SectionTransition
	SectionToBar
	SectionGhostTo
)

func (k SectionKind) String() string {
	switch k {
	case SectionGhostFrom:
		return "ghost_from"
	case SectionFromBar:
		return "from"
	case SectionTransition:
		return "transition"
	case SectionToBar:
		return "to"
	case SectionGhostTo:
		return "ghost_to"
	default:
		return "unknown"
	}
}

// Section is one displayed bar: a duration plus, for blend-tree states, the
// blend position the bar was laid out with. Purely a projection for display
// and scrub mapping.
type Section struct {
	Kind          SectionKind
	Duration      float32
	BlendPosition float32
}

// Sections projects the timing into the five-section layout, in order.
// Zero-duration sections are kept so indices stay stable for the view.
func Sections(t TransitionTiming) [5]Section {
	return [5]Section{
		{Kind: SectionGhostFrom, Duration: t.GhostFrom},
		{Kind: SectionFromBar, Duration: t.FromBar},
		{Kind: SectionTransition, Duration: t.TransitionDuration},
		{Kind: SectionToBar, Duration: t.ToBar},
		{Kind: SectionGhostTo, Duration: t.GhostTo},
	}
}

// TotalDuration sums the five section durations.
func TotalDuration(sections [5]Section) float32 {
	var total float32
	for _, s := range sections {
		total += s.Duration
	}
	return total
}
