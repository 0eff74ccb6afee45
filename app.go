package main

import (
	"fmt"
	"image/color"
	"log"
	"strconv"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/hazelite/animstate/definitions"
	"github.com/hazelite/animstate/ecs"
	"github.com/hazelite/animstate/ecs/component"
	"github.com/hazelite/animstate/preview"
	"github.com/hazelite/animstate/statemachine"
)

// App is the preview application: one host world, one timeline controller,
// and the UI that drives them.
type App struct {
	cfg      Config
	host     *preview.Host
	timeline *preview.Timeline
	ui       *ebitenui.UI
	controls *PreviewControls
	view     *TimelineView
	watcher  *definitions.Watcher

	spec   *definitions.DefinitionSpec
	params statemachine.BlendParams

	selStateName  string
	selTransition int
	reqExit       float32
	reqDur        float32

	snap      preview.Snapshot
	lastEvent string
	width     int
	height    int
}

func NewApp(cfg Config) (*App, error) {
	a := &App{cfg: cfg, selTransition: -1, width: cfg.WindowWidth, height: cfg.WindowHeight}
	a.host = preview.NewHost()
	a.host.CreateWorld()
	a.timeline = preview.NewTimeline(a.host)
	a.view = NewTimelineView(a.onScrub)

	if err := a.loadDefinition(cfg.Definition); err != nil {
		return nil, err
	}

	watcher, err := definitions.NewWatcher(cfg.WatchDir)
	if err != nil {
		log.Printf("preview: definition watching disabled: %v", err)
	} else {
		a.watcher = watcher
	}
	return a, nil
}

// Shutdown releases the watcher and the simulation world.
func (a *App) Shutdown() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	a.host.DestroyWorld()
}

// loadDefinition parses, builds, and installs a definition, then rebuilds the
// UI around its states and transitions. The running preview is deactivated
// since its indices may no longer be valid.
func (a *App) loadDefinition(name string) error {
	spec, err := definitions.LoadSpec(name)
	if err != nil {
		return err
	}
	def, err := spec.Build()
	if err != nil {
		return err
	}
	if err := a.host.LoadDefinition(def); err != nil {
		return err
	}
	a.spec = spec
	a.timeline.Deactivate()
	a.host.DestroySubject()
	a.selTransition = -1
	a.rebuildUI(def)
	log.Printf("preview: loaded definition %q (%d states, %d transitions)", def.Name, len(def.States), len(def.Transitions))
	return nil
}

func (a *App) rebuildUI(def *statemachine.Definition) {
	stateNames := make([]string, len(def.States))
	for i, st := range def.States {
		stateNames[i] = st.Name
	}
	transitionLabels := make([]string, len(def.Transitions))
	for i, tr := range def.Transitions {
		transitionLabels[i] = fmt.Sprintf("%s > %s", def.States[tr.From].Name, def.States[tr.To].Name)
	}
	a.ui, a.controls = BuildPreviewUI(
		stateNames,
		transitionLabels,
		a.onStateSelected,
		a.onTransitionSelected,
		a.timeline.Play,
		a.timeline.Pause,
		func(frames int) { a.timeline.Step(frames, a.cfg.StepFPS) },
		a.timeline.Deactivate,
		a.onFieldChanged,
	)

	// Keep the previous selection across hot reloads when the state survives,
	// otherwise honor the configured startup state, otherwise the first.
	initial := def.StateIndex(a.selStateName)
	if initial < 0 {
		initial = def.StateIndex(a.cfg.InitialState)
	}
	if initial < 0 && len(def.States) > 0 {
		initial = 0
	}
	if initial >= 0 && initial < len(a.controls.stateButtons) {
		a.controls.stateGroup.SetActive(a.controls.stateButtons[initial])
	}
}

func (a *App) paramScript() *component.ParamScript {
	if a.spec == nil || a.spec.Script == "" {
		return nil
	}
	src, err := definitions.LoadScript(a.spec.Script)
	if err != nil {
		log.Printf("preview: script %q unavailable: %v", a.spec.Script, err)
		return nil
	}
	return &component.ParamScript{Name: a.spec.Script, Source: src}
}

func (a *App) onStateSelected(index int) {
	a.selTransition = -1
	if def := a.host.Definition(); def != nil && index >= 0 && index < len(def.States) {
		a.selStateName = def.States[index].Name
	}
	if err := a.timeline.ActivateState(index, a.params, a.paramScript()); err != nil {
		log.Printf("preview: activate state %d: %v", index, err)
	}
}

func (a *App) onTransitionSelected(index int) {
	def := a.host.Definition()
	if def == nil || index < 0 || index >= len(def.Transitions) {
		return
	}
	tr := def.Transitions[index]
	a.selTransition = index
	a.reqExit = tr.ExitTime
	a.reqDur = tr.Duration
	a.activateSelectedTransition()
}

func (a *App) activateSelectedTransition() {
	def := a.host.Definition()
	if def == nil || a.selTransition < 0 {
		return
	}
	tr := def.Transitions[a.selTransition]
	if err := a.timeline.ActivateTransition(tr.From, tr.To, a.reqExit, a.reqDur, a.params); err != nil {
		log.Printf("preview: activate transition %d: %v", a.selTransition, err)
	}
}

// onFieldChanged applies edits from the authoring fields. Values that do not
// parse yet are ignored so partially typed numbers never disturb the preview.
func (a *App) onFieldChanged(field, value string) {
	f, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return
	}
	v := float32(f)
	switch field {
	case "exit_time":
		a.reqExit = v
		a.activateSelectedTransition()
	case "duration":
		a.reqDur = v
		a.activateSelectedTransition()
	case "linear":
		a.params.Linear = v
		a.timeline.SetBlendParams(a.params)
	case "x":
		a.params.X = v
		a.timeline.SetBlendParams(a.params)
	case "y":
		a.params.Y = v
		a.timeline.SetBlendParams(a.params)
	}
}

// onScrub maps a full-bar normalized position into the active mode's scrub
// space. In transition mode positions before the transition section clamp to
// progress 0 and positions after it clamp to 1.
func (a *App) onScrub(normalized float32) {
	switch a.timeline.Mode() {
	case preview.ModeStatePreview:
		a.timeline.ScrubState(normalized)
	case preview.ModeTransitionPreview:
		sections := statemachine.Sections(a.timeline.Timing())
		total := statemachine.TotalDuration(sections)
		if total <= 0 {
			return
		}
		t := normalized * total
		for _, s := range sections {
			if s.Kind == statemachine.SectionTransition {
				if s.Duration <= 0 {
					return
				}
				progress := t / s.Duration
				a.timeline.ScrubTransition(progress)
				return
			}
			t -= s.Duration
		}
	}
}

// reactivate rebuilds the current preview in place, picking up a changed
// automation script without discarding the loaded definition.
func (a *App) reactivate() {
	if a.selTransition >= 0 {
		a.activateSelectedTransition()
		return
	}
	def := a.host.Definition()
	if def == nil {
		return
	}
	if idx := def.StateIndex(a.selStateName); idx >= 0 {
		if err := a.timeline.ActivateState(idx, a.params, a.paramScript()); err != nil {
			log.Printf("preview: reactivate state %d: %v", idx, err)
		}
	}
}

func (a *App) pollWatcher() {
	if a.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-a.watcher.Events:
			if !ok {
				a.watcher = nil
				return
			}
			log.Printf("preview: %s %s changed, reloading", change.Kind, change.Path)
			if change.Kind == definitions.ChangeScript {
				a.reactivate()
				continue
			}
			if err := a.loadDefinition(a.cfg.Definition); err != nil {
				log.Printf("preview: reload failed: %v", err)
			}
		case err, ok := <-a.watcher.Errors:
			if !ok {
				a.watcher = nil
				return
			}
			log.Printf("preview: watch error: %v", err)
		default:
			return
		}
	}
}

func (a *App) Update() error {
	a.pollWatcher()

	if a.ui != nil {
		a.ui.Update()
	}
	a.view.Update()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if a.snap.Playing {
			a.timeline.Pause()
		} else {
			a.timeline.Play()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		a.timeline.Step(-1, a.cfg.StepFPS)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		a.timeline.Step(1, a.cfg.StepFPS)
	}

	if a.timeline.Snapshot().Playing {
		a.host.Update(1.0 / float64(ebiten.TPS()))
	}
	for _, evt := range a.host.DrainEvents() {
		switch data := evt.Data.(type) {
		case ecs.TimeChanged:
			a.lastEvent = fmt.Sprintf("time %.3f", data.NormalizedTime)
		case ecs.TransitionProgress:
			a.lastEvent = fmt.Sprintf("transition %.3f", data.Progress)
		case ecs.PlaybackChanged:
			a.lastEvent = fmt.Sprintf("playing=%v", data.Playing)
		}
	}
	a.snap = a.timeline.Snapshot()
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 34, 255})

	barX := 260
	barW := a.width - barX - 20
	a.view.SetBounds(barX, a.height-80, barW, 28)
	a.view.Draw(screen, a.timeline.Mode(), a.snap, a.timeline.Timing())

	if a.ui != nil {
		a.ui.Draw(screen)
	}

	def := a.host.Definition()
	name := "(none)"
	if def != nil {
		name = def.Name
	}
	status := fmt.Sprintf("Definition: %s    Mode: %s    FPS: %.1f", name, a.timeline.Mode(), ebiten.ActualFPS())
	ebitenutil.DebugPrintAt(screen, status, barX, 8)

	if a.snap.Initialized {
		info := fmt.Sprintf("t=%.3f  weights=%s  playing=%v", a.snap.NormalizedTime, formatWeights(a.snap.BlendWeights), a.snap.Playing)
		if a.snap.TransitionProgress >= 0 {
			info += fmt.Sprintf("  progress=%.3f", a.snap.TransitionProgress)
		}
		ebitenutil.DebugPrintAt(screen, info, barX, 26)
	} else if a.snap.Err != "" {
		ebitenutil.DebugPrintAt(screen, "Error: "+a.snap.Err, barX, 26)
	}
	if a.lastEvent != "" {
		ebitenutil.DebugPrintAt(screen, "Last event: "+a.lastEvent, barX, 44)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.width, a.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func formatWeights(ws []float32) string {
	s := "["
	for i, w := range ws {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%.2f", w)
	}
	return s + "]"
}
