package visibility

import (
	"math"

	"backend-arquest/internal/shared/geo"
)

// DefaultFOV is the horizontal field of view of the camera overlay in degrees.
const DefaultFOV = 60.0

// Projection is the horizontal placement of a target on the overlay. X runs from
// 0 (left edge) to 1 (right edge) and is meaningful only when Visible is true.
type Projection struct {
	X       float64 `json:"x"`
	Visible bool    `json:"visible"`
}

// ProjectToScreen maps a target bearing onto the overlay for a device facing
// userHeading. The mapping is linear in angle; there is no perspective correction.
func ProjectToScreen(bearing, userHeading, fovDegrees float64) Projection {
	if fovDegrees <= 0 || math.IsNaN(fovDegrees) {
		fovDegrees = DefaultFOV
	}
	half := fovDegrees / 2
	diff := geo.NormalizeAngleDifference(bearing - userHeading)
	if math.Abs(diff) > half {
		return Projection{}
	}
	return Projection{X: 0.5 + (diff/half)*0.5, Visible: true}
}
