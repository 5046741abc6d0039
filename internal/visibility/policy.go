package visibility

// Angular tolerance tiers. The breakpoints are game balance and inclusive on the
// upper bound of each tier.
const (
	lowTierMaxXP  = 10000
	midTierMaxXP  = 50000
	lowTolerance  = 10.0
	midTolerance  = 15.0
	highTolerance = 20.0
)

// RadiusForXP returns the detection radius in meters: one meter per XP point.
func RadiusForXP(xp int64) float64 {
	if xp < 0 {
		return 0
	}
	return float64(xp)
}

// ToleranceForXP returns the angular tolerance in degrees for an XP total.
func ToleranceForXP(xp int64) float64 {
	switch {
	case xp <= lowTierMaxXP:
		return lowTolerance
	case xp <= midTierMaxXP:
		return midTolerance
	default:
		return highTolerance
	}
}
