// Package geo estimates access point distance and position from signal
// strength, and classifies signal quality.
package geo

// Signal level constants.
const (
	LevelExcellent = "excellent"
	LevelGood      = "good"
	LevelFair      = "fair"
	LevelWeak      = "weak"
	LevelVeryWeak  = "very_weak"
)

// RSSI thresholds for level classification (dBm, exclusive lower bounds).
const (
	excellentThreshold = -50
	goodThreshold      = -60
	fairThreshold      = -70
	weakThreshold      = -80
)

// Percentage clamp bounds (dBm).
const (
	percentFloor   = -100
	percentCeiling = -50
)

var levelQuality = map[string]string{
	LevelExcellent: "Excellent",
	LevelGood:      "Good",
	LevelFair:      "Fair",
	LevelWeak:      "Weak",
	LevelVeryWeak:  "Very Weak",
}

// ClassifySignal returns the signal level for an RSSI.
// Rules:
//   - excellent: rssi > -50
//   - good: -60 < rssi <= -50
//   - fair: -70 < rssi <= -60
//   - weak: -80 < rssi <= -70
//   - very_weak: rssi <= -80
func ClassifySignal(rssi int) string {
	switch {
	case rssi > excellentThreshold:
		return LevelExcellent
	case rssi > goodThreshold:
		return LevelGood
	case rssi > fairThreshold:
		return LevelFair
	case rssi > weakThreshold:
		return LevelWeak
	default:
		return LevelVeryWeak
	}
}

// SignalQuality is the display label for an RSSI.
func SignalQuality(rssi int) string {
	return levelQuality[ClassifySignal(rssi)]
}

// SignalPercentage maps RSSI to 0-100: 0 at or below -100 dBm, 100 at or above
// -50 dBm, linear in between.
func SignalPercentage(rssi int) int {
	switch {
	case rssi <= percentFloor:
		return 0
	case rssi >= percentCeiling:
		return 100
	default:
		return 2 * (rssi - percentFloor)
	}
}
