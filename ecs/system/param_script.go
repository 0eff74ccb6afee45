package system

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/hazelite/animstate/ecs"
	"github.com/hazelite/animstate/ecs/component"
)

// ParamScriptSystem runs a subject's parameter-automation script once per
// tick while the simulation owns time. The script sees the world clock as
// `t` and drives the blend parameters through top-level `linear`, `x`, `y`
// variables; any it leaves undefined keep their previous value.
type ParamScriptSystem struct {
	runtimes map[ecs.Entity]*paramScriptRuntime
}

type paramScriptRuntime struct {
	name     string
	compiled *tengo.Compiled
	broken   bool
}

func NewParamScriptSystem() *ParamScriptSystem {
	return &ParamScriptSystem{runtimes: make(map[ecs.Entity]*paramScriptRuntime)}
}

func (s *ParamScriptSystem) Update(w *ecs.World) {
	ecs.ForEach2(w, component.ParamScriptComponent, component.BlendInputComponent,
		func(e ecs.Entity, script *component.ParamScript, input *component.BlendInput) {
			if tc, ok := ecs.Get(w, e, component.TimeControlComponent); ok && tc.Manual {
				return
			}

			rt, err := s.runtimeFor(e, script)
			if err != nil {
				fmt.Printf("script: entity=%s compile %s: %v\n", e, script.Name, err)
				return
			}
			if rt == nil {
				return
			}

			if err := rt.compiled.Set("t", w.Elapsed()); err != nil {
				fmt.Printf("script: entity=%s set t: %v\n", e, err)
				return
			}
			if err := rt.compiled.Run(); err != nil {
				fmt.Printf("script: entity=%s run %s: %v\n", e, script.Name, err)
				rt.broken = true
				return
			}

			if v := rt.compiled.Get("linear"); !v.IsUndefined() {
				input.Params.Linear = float32(v.Float())
			}
			if v := rt.compiled.Get("x"); !v.IsUndefined() {
				input.Params.X = float32(v.Float())
			}
			if v := rt.compiled.Get("y"); !v.IsUndefined() {
				input.Params.Y = float32(v.Float())
			}
		})
}

// runtimeFor compiles the entity's script once and caches it. A script that
// failed to run is parked until the source changes.
func (s *ParamScriptSystem) runtimeFor(e ecs.Entity, script *component.ParamScript) (*paramScriptRuntime, error) {
	if len(script.Source) == 0 {
		return nil, nil
	}
	if rt, ok := s.runtimes[e]; ok && rt.name == script.Name {
		if rt.broken {
			return nil, nil
		}
		return rt, nil
	}

	sc := tengo.NewScript(script.Source)
	sc.SetImports(stdlib.GetModuleMap("math"))
	if err := sc.Add("t", 0.0); err != nil {
		return nil, err
	}
	compiled, err := sc.Compile()
	if err != nil {
		return nil, err
	}
	rt := &paramScriptRuntime{name: script.Name, compiled: compiled}
	s.runtimes[e] = rt
	return rt, nil
}

// Forget drops the cached runtime for an entity, e.g. after a rebuild.
func (s *ParamScriptSystem) Forget(e ecs.Entity) {
	delete(s.runtimes, e)
}
