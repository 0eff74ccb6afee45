package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/hazelite/animstate/preview"
	"github.com/hazelite/animstate/statemachine"
)

var sectionColors = map[statemachine.SectionKind]color.RGBA{
	statemachine.SectionGhostFrom:  {70, 70, 90, 255},
	statemachine.SectionFromBar:    {90, 130, 200, 255},
	statemachine.SectionTransition: {200, 160, 70, 255},
	statemachine.SectionToBar:      {90, 180, 120, 255},
	statemachine.SectionGhostTo:    {70, 90, 70, 255},
}

// TimelineView is the scrubbing bar at the bottom of the window. It draws
// either a single state bar or the five-section transition layout, and maps
// click/drag positions back into normalized scrub positions.
type TimelineView struct {
	X, Y, W, H int

	pixel    *ebiten.Image
	dragging bool
	onScrub  func(normalized float32)
}

func NewTimelineView(onScrub func(normalized float32)) *TimelineView {
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)
	return &TimelineView{pixel: pixel, onScrub: onScrub}
}

// SetBounds positions the bar in screen space.
func (v *TimelineView) SetBounds(x, y, w, h int) {
	v.X, v.Y, v.W, v.H = x, y, w, h
}

func (v *TimelineView) contains(mx, my int) bool {
	return mx >= v.X && mx < v.X+v.W && my >= v.Y && my < v.Y+v.H
}

// Update handles click/drag scrubbing. A drag that starts inside the bar
// keeps scrubbing even after the cursor leaves it; releasing ends the drag.
func (v *TimelineView) Update() {
	if v == nil || v.W <= 0 {
		return
	}
	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && v.contains(mx, my) {
		v.dragging = true
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		v.dragging = false
	}
	if !v.dragging || !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}

	normalized := float32(mx-v.X) / float32(v.W)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}
	if v.onScrub != nil {
		v.onScrub(normalized)
	}
}

func (v *TimelineView) fillRect(screen *ebiten.Image, x, y, w, h int, c color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w), float64(h))
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.Scale(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255)
	screen.DrawImage(v.pixel, op)
}

// Draw renders the bar for the current mode plus the playhead. In state mode
// the playhead sits at the normalized clip time; in transition mode it sits
// inside the transition section at the current progress.
func (v *TimelineView) Draw(screen *ebiten.Image, mode preview.Mode, snap preview.Snapshot, timing statemachine.TransitionTiming) {
	if v == nil || v.W <= 0 {
		return
	}
	v.fillRect(screen, v.X-2, v.Y-2, v.W+4, v.H+4, color.RGBA{25, 25, 25, 255})

	switch mode {
	case preview.ModeStatePreview:
		v.fillRect(screen, v.X, v.Y, v.W, v.H, sectionColors[statemachine.SectionFromBar])
		px := v.X + int(snap.NormalizedTime*float32(v.W))
		v.fillRect(screen, px-1, v.Y-4, 2, v.H+8, color.RGBA{255, 255, 255, 255})

	case preview.ModeTransitionPreview:
		sections := statemachine.Sections(timing)
		total := statemachine.TotalDuration(sections)
		if total <= 0 {
			return
		}
		x := v.X
		var transX, transW int
		for _, s := range sections {
			w := int(s.Duration / total * float32(v.W))
			if s.Kind == statemachine.SectionTransition {
				transX, transW = x, w
			}
			v.fillRect(screen, x, v.Y, w, v.H, sectionColors[s.Kind])
			ebitenutil.DebugPrintAt(screen, s.Kind.String(), x+2, v.Y+v.H+4)
			x += w
		}
		if snap.TransitionProgress >= 0 {
			px := transX + int(snap.TransitionProgress*float32(transW))
			v.fillRect(screen, px-1, v.Y-4, 2, v.H+8, color.RGBA{255, 255, 255, 255})
		}

	default:
		v.fillRect(screen, v.X, v.Y, v.W, v.H, color.RGBA{55, 55, 55, 255})
	}
}
