package visibility

import (
	"math"
	"sort"

	"backend-arquest/internal/shared/geo"
	"backend-arquest/internal/spawn"
)

// Result is a spawn that should be drawn on the overlay.
type Result struct {
	Object    spawn.Object `json:"object"`
	DistanceM float64      `json:"distance_m"`
	Bearing   float64      `json:"bearing"`
	ScreenX   float64      `json:"screen_x"`
}

// Params describes the player's current view.
type Params struct {
	Position     *geo.Point
	Heading      *float64
	RadiusM      float64
	ToleranceDeg float64
	FOVDegrees   float64
}

// ComputeVisible selects the spawns within RadiusM and within ToleranceDeg of
// the heading, in catalog order. Without both a position and a heading nothing
// is visible.
func ComputeVisible(p Params, catalog []spawn.Object) []Result {
	results := []Result{}
	if p.Position == nil || p.Heading == nil {
		return results
	}
	heading := *p.Heading

	for _, obj := range catalog {
		d := geo.Distance(*p.Position, obj.Location)
		if d > p.RadiusM {
			continue
		}
		bearing := geo.Bearing(*p.Position, obj.Location)
		if math.Abs(geo.NormalizeAngleDifference(bearing-heading)) > p.ToleranceDeg {
			continue
		}
		proj := ProjectToScreen(bearing, heading, p.FOVDegrees)
		if !proj.Visible {
			continue
		}
		results = append(results, Result{
			Object:    obj,
			DistanceM: d,
			Bearing:   bearing,
			ScreenX:   proj.X,
		})
	}
	return results
}

// Nearest returns at most n results ordered nearest first. n <= 0 keeps every
// result in its original order.
func Nearest(results []Result, n int) []Result {
	if n <= 0 {
		return results
	}
	out := make([]Result, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceM < out[j].DistanceM })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
