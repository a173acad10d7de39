package pipeline

import (
	"time"

	"github.com/sells-group/wifisurvey/internal/geo"
	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/security"
	"github.com/sells-group/wifisurvey/internal/spectrum"
)

// Normalize converts a batch's raw sightings into annotated observations.
// Sightings without a usable distance get no position.
func Normalize(batch model.ObservationBatch, projector *geo.Projector, now time.Time) []model.Observation {
	observedAt := batch.CapturedAt
	if observedAt.IsZero() {
		observedAt = now
	}
	out := make([]model.Observation, 0, len(batch.Sightings))
	for _, s := range batch.Sightings {
		out = append(out, normalizeSighting(s, batch.ObserverPosition, projector, observedAt))
	}
	return out
}

func normalizeSighting(s model.RawSighting, observer model.GeoPosition, projector *geo.Projector, at time.Time) model.Observation {
	sec := security.Classify(s.Capabilities)
	o := model.Observation{
		SSID:           model.NormalizeSSID(s.SSID),
		BSSID:          s.BSSID,
		RSSI:           s.RSSI,
		FrequencyMHz:   s.FrequencyMHz,
		Capabilities:   s.Capabilities,
		ObservedAt:     at,
		Channel:        spectrum.ChannelFor(s.FrequencyMHz),
		Band:           spectrum.BandFor(s.FrequencyMHz),
		Security:       sec,
		Risk:           security.AssessRisk(sec),
		DistanceMeters: geo.EstimateDistance(s.RSSI, s.FrequencyMHz),
	}
	if projector != nil && o.HasDistance() {
		if pos, ok := projector.Project(observer, o.DistanceMeters, nil); ok {
			o.Position = &pos
		}
	}
	return o
}
