package cluster

import (
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/wifisurvey/internal/geo"
	"github.com/sells-group/wifisurvey/internal/model"
)

// Weight is the spatial confidence of an observation: its signal percentage
// scaled to [0, 1]. Sentinel readings (RSSI 0 or no usable distance) weigh 0.
func Weight(o model.Observation) float64 {
	if o.RSSI == 0 || !o.HasDistance() {
		return 0
	}
	return float64(geo.SignalPercentage(o.RSSI)) / 100
}

// Centroid returns the signal-weighted mean position of the positioned
// members, with accuracy equal to the plain mean of their accuracies. It
// returns nil when no member is positioned or every weight is zero.
func Centroid(members []model.Observation) *model.GeoPosition {
	var lats, lons, weights, accuracies []float64
	total := 0.0
	for _, m := range members {
		if m.Position == nil {
			continue
		}
		w := Weight(m)
		lats = append(lats, m.Position.Latitude)
		lons = append(lons, m.Position.Longitude)
		weights = append(weights, w)
		accuracies = append(accuracies, m.Position.AccuracyMeters)
		total += w
	}
	if len(lats) == 0 || total == 0 {
		return nil
	}
	return &model.GeoPosition{
		Latitude:       stat.Mean(lats, weights),
		Longitude:      stat.Mean(lons, weights),
		AccuracyMeters: stat.Mean(accuracies, nil),
		Provenance:     model.ProvenanceClustered,
	}
}

// CoverageRadius is the largest great-circle distance from center to any
// positioned member. It is 0 without a center or with fewer than two
// positioned members.
func CoverageRadius(center *model.GeoPosition, members []model.Observation) float64 {
	if center == nil {
		return 0
	}
	positioned := 0
	radius := 0.0
	for _, m := range members {
		if m.Position == nil {
			continue
		}
		positioned++
		radius = max(radius, geo.DistanceMeters(*center, *m.Position))
	}
	if positioned < 2 {
		return 0
	}
	return radius
}
