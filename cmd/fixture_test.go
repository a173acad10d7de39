package main

import (
	"time"

	"github.com/sells-group/wifisurvey/internal/model"
)

var captured = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func cafeBatch() model.ObservationBatch {
	return model.ObservationBatch{
		ObserverPosition: model.GeoPosition{Latitude: 40, Longitude: -74, AccuracyMeters: 5, Provenance: model.ProvenanceMeasured},
		ScanRadiusMeters: 200,
		CapturedAt:       captured,
		Sightings: []model.RawSighting{
			{SSID: "Cafe", BSSID: "aa:01", RSSI: -50, FrequencyMHz: 2437, Capabilities: "[WPA2-PSK-CCMP][ESS]"},
			{SSID: "Cafe", BSSID: "aa:02", RSSI: -70, FrequencyMHz: 5180, Capabilities: "[ESS]"},
			{SSID: "Office", BSSID: "bb:01", RSSI: -60, FrequencyMHz: 2412, Capabilities: "[RSN-SAE-CCMP][WPA3-SAE-CCMP][ESS]"},
		},
	}
}
