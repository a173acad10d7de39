package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/wifisurvey/internal/geo"
	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/pipeline"
	"github.com/sells-group/wifisurvey/internal/snapshot"
)

var captured = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// surveySnapshot has two high-risk clusters (Cafe is partly open, Ghost is
// WEP) and one WPA3 cluster, one access point on each of channels 1, 6
// and 11.
func surveySnapshot(t *testing.T, seq uint64) *snapshot.Snapshot {
	t.Helper()
	batch := model.ObservationBatch{
		ObserverPosition: model.GeoPosition{Latitude: 40, Longitude: -74, AccuracyMeters: 5, Provenance: model.ProvenanceMeasured},
		ScanRadiusMeters: 200,
		CapturedAt:       captured,
		Sightings: []model.RawSighting{
			{SSID: "Cafe", BSSID: "aa:01", RSSI: -50, FrequencyMHz: 2437, Capabilities: "[WPA2-PSK-CCMP][ESS]"},
			{SSID: "Cafe", BSSID: "aa:02", RSSI: -70, FrequencyMHz: 5180, Capabilities: "[ESS]"},
			{SSID: "Office", BSSID: "bb:01", RSSI: -60, FrequencyMHz: 2412, Capabilities: "[RSN-SAE-CCMP][WPA3-SAE-CCMP][ESS]"},
			{SSID: "Ghost", BSSID: "cc:01", RSSI: 0, FrequencyMHz: 2462, Capabilities: "[WEP]"},
		},
	}
	snap := pipeline.Build(seq, batch, geo.NewSeededProjector(3), captured)
	require.Len(t, snap.Clusters, 3)
	return snap
}

// secureSnapshot has a single WPA3 access point.
func secureSnapshot(t *testing.T, seq uint64) *snapshot.Snapshot {
	t.Helper()
	batch := model.ObservationBatch{
		ObserverPosition: model.GeoPosition{Latitude: 40, Longitude: -74, Provenance: model.ProvenanceMeasured},
		ScanRadiusMeters: 200,
		CapturedAt:       captured,
		Sightings: []model.RawSighting{
			{SSID: "Office", BSSID: "bb:01", RSSI: -60, FrequencyMHz: 2412, Capabilities: "[WPA3-SAE-CCMP]"},
		},
	}
	return pipeline.Build(seq, batch, nil, captured)
}
