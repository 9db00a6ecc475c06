package models

import "math"

// SafetyTier is the discrete water safety classification
type SafetyTier string

const (
	TierSafe     SafetyTier = "Safe"
	TierModerate SafetyTier = "Moderate"
	TierUnsafe   SafetyTier = "Unsafe"
)

// Classification thresholds
const (
	SafePhMin        = 6.5
	SafePhMax        = 8.5
	SafeTurbidityMax = 3.0 // exclusive
	SafeTDSMax       = 600.0

	ModerateTurbidityMax = 5.0 // inclusive
	ModerateTDSMax       = 900.0
)

// Classify maps a reading to a safety tier. Bands are checked in order and the
// first match wins.
//
// Safe uses a strict turbidity bound while Moderate uses an inclusive one, so a
// reading at exactly 3 NTU is Moderate. Keep the comparators as they are.
func Classify(ph, turbidity, tds float64) SafetyTier {
	switch {
	case ph >= SafePhMin && ph <= SafePhMax && turbidity < SafeTurbidityMax && tds <= SafeTDSMax:
		return TierSafe
	case turbidity <= ModerateTurbidityMax && tds <= ModerateTDSMax:
		return TierModerate
	default:
		return TierUnsafe
	}
}

// QualityIndex computes the water quality index (WQI) in [0, 100].
// Penalties for pH deviation from neutral, turbidity and TDS are summed.
func QualityIndex(ph, turbidity, tds float64) int {
	// explicit conversions keep the compiler from fusing multiply-adds
	phPenalty := float64(math.Abs(7-ph) * 10)
	turbidityPenalty := float64(turbidity * 8)
	raw := 100 - (phPenalty + turbidityPenalty + tds/50)
	score := math.Floor(raw)

	switch {
	case score < 0 || math.IsNaN(score):
		return 0
	case score > 100:
		return 100
	default:
		return int(score)
	}
}

// Recommendation returns the consumer guidance for the tier
func (t SafetyTier) Recommendation() string {
	switch t {
	case TierSafe:
		return "Safe for drinking and domestic use."
	case TierModerate:
		return "Boil water before drinking."
	default:
		return "Do NOT consume. Inform authorities."
	}
}

// IsUnsafe reports whether the tier triggers an alert
func (t SafetyTier) IsUnsafe() bool {
	return t == TierUnsafe
}
