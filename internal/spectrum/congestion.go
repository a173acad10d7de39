package spectrum

import (
	"math"

	"github.com/sells-group/wifisurvey/internal/model"
)

// NonOverlappingChannels are the 2.4GHz channels considered for recommendation,
// in tie-break order.
var NonOverlappingChannels = []int{1, 6, 11}

// DefaultChannel is recommended when no channel data is available.
const DefaultChannel = 1

// Density returns networks per square kilometer over a circle of the given
// radius. Zero networks or a non-positive radius yield 0.
func Density(count int, radiusMeters float64) float64 {
	if count == 0 || radiusMeters <= 0 {
		return 0
	}
	radiusKM := radiusMeters / 1000
	return float64(count) / (math.Pi * radiusKM * radiusKM)
}

// ChannelUsage counts 2.4GHz observations per channel.
func ChannelUsage(obs []model.Observation) map[int]int {
	usage := make(map[int]int)
	for _, o := range obs {
		if BandFor(o.FrequencyMHz) != Band24GHz {
			continue
		}
		usage[ChannelFor(o.FrequencyMHz)]++
	}
	return usage
}

// LeastCongestedChannel recommends the non-overlapping 2.4GHz channel with the
// fewest observations. Ties go to the earlier channel in
// NonOverlappingChannels, so an empty cycle recommends channel 1.
func LeastCongestedChannel(obs []model.Observation) int {
	return leastUsed(ChannelUsage(obs))
}

func leastUsed(usage map[int]int) int {
	best := DefaultChannel
	bestCount := math.MaxInt
	for _, ch := range NonOverlappingChannels {
		if n := usage[ch]; n < bestCount {
			best, bestCount = ch, n
		}
	}
	return best
}
