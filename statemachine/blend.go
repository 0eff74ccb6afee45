package statemachine

import "github.com/hazelite/animstate/common"

// BlendParams carries the live blend inputs for one preview subject.
type BlendParams struct {
	Linear float32
	X, Y   float32
}

// LinearBlendWeights computes per-clip weights for a 1-D threshold blend.
// The returned slice always sums to 1 (single winning clip at or beyond an
// extreme, otherwise one adjacent pair sharing the weight). It never fails:
// degenerate inputs fall back to a valid distribution.
func LinearBlendWeights(thresholds []float32, param float32) []float32 {
	if len(thresholds) == 0 {
		return nil
	}
	return LinearBlendWeightsInto(make([]float32, len(thresholds)), thresholds, param)
}

// LinearBlendWeightsInto is LinearBlendWeights writing into dst, which must
// be len(thresholds) long. Used on the hot path to avoid per-tick allocation.
func LinearBlendWeightsInto(dst, thresholds []float32, param float32) []float32 {
	n := len(thresholds)
	if n == 0 || len(dst) != n {
		return dst
	}
	for i := range dst {
		dst[i] = 0
	}
	if n == 1 {
		dst[0] = 1
		return dst
	}

	param = common.Clamp(param, thresholds[0], thresholds[n-1])
	if param <= thresholds[0] {
		dst[0] = 1
		return dst
	}
	if param >= thresholds[n-1] {
		dst[n-1] = 1
		return dst
	}
	for lo := 0; lo < n-1; lo++ {
		hi := lo + 1
		if param < thresholds[lo] || param > thresholds[hi] {
			continue
		}
		span := thresholds[hi] - thresholds[lo]
		t := float32(0)
		if span > 0 {
			t = (param - thresholds[lo]) / span
		}
		dst[lo] = 1 - t
		dst[hi] = t
		return dst
	}
	// Unreachable with sorted thresholds, but keep the result valid anyway.
	dst[0] = 1
	return dst
}

// NearestDirectionalIndex returns the entry whose authored position is the
// Euclidean nearest to (x, y). Ties break toward the first-encountered index.
// Returns -1 for an empty cloud.
func NearestDirectionalIndex(entries []DirectionalEntry, x, y float32) int {
	best := -1
	var bestDist float32
	for i, e := range entries {
		dx := e.X - x
		dy := e.Y - y
		d := dx*dx + dy*dy
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// DirectionalBlendWeightsInto writes the simulation weight distribution for a
// 2-D blend: the nearest clip carries the full weight. A polygonal
// distribution is left to consumers that need one; this keeps the duration
// lookup and the weight winner on the same metric.
func DirectionalBlendWeightsInto(dst []float32, entries []DirectionalEntry, x, y float32) []float32 {
	for i := range dst {
		dst[i] = 0
	}
	idx := NearestDirectionalIndex(entries, x, y)
	if idx >= 0 && idx < len(dst) {
		dst[idx] = 1
	}
	return dst
}

// StateWeightsInto computes the per-clip weights of state under params,
// writing into dst (len == state.ClipCount()).
func StateWeightsInto(dst []float32, state *State, params BlendParams) []float32 {
	switch state.Kind {
	case KindSingle:
		if len(dst) > 0 {
			dst[0] = 1
			for i := 1; i < len(dst); i++ {
				dst[i] = 0
			}
		}
		return dst
	case KindLinearBlend:
		thresholds := make([]float32, len(state.Linear.Entries))
		for i, e := range state.Linear.Entries {
			thresholds[i] = e.Threshold
		}
		return LinearBlendWeightsInto(dst, thresholds, params.Linear)
	case KindDirectionalBlend:
		return DirectionalBlendWeightsInto(dst, state.Directional.Entries, params.X, params.Y)
	default:
		return dst
	}
}

// StateDuration returns the effective playback duration of state under
// params. Linear blends report the weight-weighted sum of clip durations so
// timeline bars stretch as the parameter moves; directional blends report the
// nearest clip's duration. Zero-clip states report 0.
func StateDuration(def *Definition, state *State, params BlendParams) float32 {
	if def == nil || state == nil {
		return 0
	}
	switch state.Kind {
	case KindSingle:
		if state.Single == nil {
			return 0
		}
		return def.ClipDuration(state.Single.Clip)
	case KindLinearBlend:
		entries := state.Linear.Entries
		if len(entries) == 0 {
			return 0
		}
		weights := make([]float32, len(entries))
		thresholds := make([]float32, len(entries))
		for i, e := range entries {
			thresholds[i] = e.Threshold
		}
		LinearBlendWeightsInto(weights, thresholds, params.Linear)
		var dur float32
		for i, e := range entries {
			dur += weights[i] * def.ClipDuration(e.Clip)
		}
		return dur
	case KindDirectionalBlend:
		idx := NearestDirectionalIndex(state.Directional.Entries, params.X, params.Y)
		if idx < 0 {
			return 0
		}
		return def.ClipDuration(state.Directional.Entries[idx].Clip)
	default:
		return 0
	}
}
