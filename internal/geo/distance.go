package geo

import "math"

// freeSpaceConstant is the free-space path loss constant for meters and MHz.
const freeSpaceConstant = 27.55

// UnavailableDistance is returned when the signal cannot be used for ranging.
const UnavailableDistance = -1.0

// EstimateDistance applies the log-distance path loss model:
//
//	d = 10 ^ ((27.55 - 20*log10(f) + |rssi|) / 20)
//
// with d in meters and f in MHz. An RSSI of exactly 0 means the reading is
// unusable and yields UnavailableDistance.
func EstimateDistance(rssi, frequencyMHz int) float64 {
	if rssi == 0 {
		return UnavailableDistance
	}
	exp := (freeSpaceConstant - 20*math.Log10(float64(frequencyMHz)) + math.Abs(float64(rssi))) / 20
	return math.Pow(10, exp)
}
