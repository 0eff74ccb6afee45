package statemachine

import (
	"math"
	"testing"
)

const weightEps = 1e-5

func TestLinearBlendWeights(t *testing.T) {
	cases := []struct {
		name       string
		thresholds []float32
		param      float32
		want       []float32
	}{
		{"empty", nil, 0.5, nil},
		{"single_clip", []float32{0.3}, 99, []float32{1}},
		{"midpoint_pair", []float32{0, 0.5, 1}, 0.25, []float32{0.5, 0.5, 0}},
		{"exact_threshold", []float32{0, 0.5, 1}, 0.5, []float32{0, 1, 0}},
		{"below_range", []float32{0, 1}, -5, []float32{1, 0}},
		{"above_range", []float32{0, 1}, 5, []float32{0, 1}},
		{"upper_pair", []float32{0, 0.5, 1}, 0.75, []float32{0, 0.5, 0.5}},
		{"degenerate_pair", []float32{0, 0, 1}, 0, []float32{1, 0, 0}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := LinearBlendWeights(c.thresholds, c.param)
			if len(got) != len(c.want) {
				t.Fatalf("expected %d weights, got %d", len(c.want), len(got))
			}
			for i := range c.want {
				if math.Abs(float64(got[i]-c.want[i])) > weightEps {
					t.Fatalf("weight[%d] = %v, want %v (all: %v)", i, got[i], c.want[i], got)
				}
			}
		})
	}
}

func TestLinearBlendWeightsSumToOne(t *testing.T) {
	thresholds := [][]float32{
		{0, 1},
		{0, 0.5, 1},
		{-1, 0, 2, 7},
		{0, 0.25, 0.25, 0.9},
	}
	params := []float32{-2, 0, 0.1, 0.25, 0.5, 0.77, 1, 3, 10}

	for _, th := range thresholds {
		for _, p := range params {
			w := LinearBlendWeights(th, p)
			var sum float32
			nonzero := 0
			for _, v := range w {
				sum += v
				if v > 0 {
					nonzero++
				}
			}
			if math.Abs(float64(sum-1)) > weightEps {
				t.Fatalf("thresholds %v param %v: weights %v sum to %v", th, p, w, sum)
			}
			if nonzero < 1 || nonzero > 2 {
				t.Fatalf("thresholds %v param %v: expected 1 or 2 nonzero weights, got %d (%v)", th, p, nonzero, w)
			}
		}
	}
}

func TestNearestDirectionalIndex(t *testing.T) {
	entries := []DirectionalEntry{
		{Clip: 0, X: 0, Y: 1},  // forward
		{Clip: 1, X: 0, Y: -1}, // back
		{Clip: 2, X: -1, Y: 0}, // left
		{Clip: 3, X: 1, Y: 0},  // right
		{Clip: 4, X: 0, Y: 0},  // idle
	}

	cases := []struct {
		name string
		x, y float32
		want int
	}{
		{"forward", 0.1, 0.9, 0},
		{"back", 0, -2, 1},
		{"left", -0.8, 0.1, 2},
		{"right", 0.9, -0.1, 3},
		{"center", 0.05, 0.05, 4},
		{"tie_breaks_to_first", 0, 0.5, 0}, // equidistant from forward and idle
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := NearestDirectionalIndex(entries, c.x, c.y)
			if got != c.want {
				t.Fatalf("nearest(%v, %v) = %d, want %d", c.x, c.y, got, c.want)
			}
		})
	}

	if got := NearestDirectionalIndex(nil, 0, 0); got != -1 {
		t.Fatalf("empty cloud should return -1, got %d", got)
	}
}

func TestNearestDirectionalTie(t *testing.T) {
	entries := []DirectionalEntry{
		{Clip: 0, X: -1, Y: 0},
		{Clip: 1, X: 1, Y: 0},
	}
	// Exactly equidistant; first-encountered index wins.
	if got := NearestDirectionalIndex(entries, 0, 0); got != 0 {
		t.Fatalf("tie should break to first index, got %d", got)
	}
}

func TestStateDuration(t *testing.T) {
	def := &Definition{
		Clips: []Clip{
			{Name: "idle", Duration: 1},
			{Name: "walk", Duration: 2},
			{Name: "run", Duration: 0.5},
		},
	}

	linear := &State{
		Name: "locomotion",
		Kind: KindLinearBlend,
		Linear: &LinearBlendTree{Entries: []LinearEntry{
			{Clip: 0, Threshold: 0},
			{Clip: 1, Threshold: 0.5},
			{Clip: 2, Threshold: 1},
		}},
	}
	// Halfway between idle and walk: 0.5*1 + 0.5*2 = 1.5.
	if got := StateDuration(def, linear, BlendParams{Linear: 0.25}); !approx(got, 1.5) {
		t.Fatalf("linear blend duration = %v, want 1.5", got)
	}

	single := &State{Name: "jump", Kind: KindSingle, Single: &SingleClip{Clip: 1}}
	if got := StateDuration(def, single, BlendParams{}); !approx(got, 2) {
		t.Fatalf("single duration = %v, want 2", got)
	}

	dir := &State{
		Name: "strafe",
		Kind: KindDirectionalBlend,
		Directional: &DirectionalBlendTree{Entries: []DirectionalEntry{
			{Clip: 0, X: 0, Y: 1},
			{Clip: 2, X: 1, Y: 0},
		}},
	}
	if got := StateDuration(def, dir, BlendParams{X: 0.9, Y: 0}); !approx(got, 0.5) {
		t.Fatalf("directional duration = %v, want 0.5", got)
	}
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}
