package spectrum

import (
	"sort"

	"github.com/sells-group/wifisurvey/internal/model"
)

// Report holds the spectrum metrics of one scan cycle.
type Report struct {
	ObservationCount   int            `json:"observation_count"`
	ScanRadiusMeters   float64        `json:"scan_radius_meters"`
	DensityPerKm2      float64        `json:"density_per_km2"`
	RecommendedChannel int            `json:"recommended_channel"`
	BandCounts         map[string]int `json:"band_counts"`
	ChannelUsage       map[int]int    `json:"channel_usage"`
}

// Analyze computes the spectrum report for a cycle's observations.
func Analyze(obs []model.Observation, radiusMeters float64) Report {
	bands := make(map[string]int)
	for _, o := range obs {
		bands[BandFor(o.FrequencyMHz)]++
	}
	usage := ChannelUsage(obs)
	return Report{
		ObservationCount:   len(obs),
		ScanRadiusMeters:   radiusMeters,
		DensityPerKm2:      Density(len(obs), radiusMeters),
		RecommendedChannel: leastUsed(usage),
		BandCounts:         bands,
		ChannelUsage:       usage,
	}
}

// Bands returns the report's band labels sorted for display.
func (r Report) Bands() []string {
	out := make([]string, 0, len(r.BandCounts))
	for b := range r.BandCounts {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}
