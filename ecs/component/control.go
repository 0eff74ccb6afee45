package component

import "github.com/hazelite/animstate/statemachine"

// TimeControl gates who owns sampler time. While Manual is set the timeline
// controller is authoritative and the simulation systems leave times alone.
type TimeControl struct {
	Manual  bool
	Elapsed float32 // controller-tracked seconds within the active state
}

// BlendInput is the live blend parameter set for one subject.
type BlendInput struct {
	Params statemachine.BlendParams
}

// DefinitionRef points a subject at its compiled definition. The definition
// itself is immutable and shared; the ref is dropped when the subject dies.
type DefinitionRef struct {
	Def *statemachine.Definition
}

// ParamScript attaches a parameter-automation script to a subject. Source is
// tengo; the script system compiles it lazily and caches per entity.
type ParamScript struct {
	Name   string
	Source []byte
}

// Component handles shared by the preview systems.
var (
	SamplerBufferComponent = New[*SamplerBuffer]()
	StateBufferComponent   = New[*StateBuffer]()
	TransitionComponent    = New[*ActiveTransition]()
	TimeControlComponent   = New[*TimeControl]()
	BlendInputComponent    = New[*BlendInput]()
	DefinitionComponent    = New[*DefinitionRef]()
	ParamScriptComponent   = New[*ParamScript]()
)
