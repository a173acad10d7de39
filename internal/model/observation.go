// Package model defines the observation, position, and security types shared
// by the survey analysis packages.
package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// HiddenSSID replaces a blank SSID before grouping. Every hidden network in a
// cycle therefore lands in the same cluster regardless of BSSID.
const HiddenSSID = "Hidden Network"

// RawSighting is one access point as reported by the scan source.
type RawSighting struct {
	SSID         string `json:"ssid" yaml:"ssid"`
	BSSID        string `json:"bssid" yaml:"bssid"`
	RSSI         int    `json:"rssi" yaml:"rssi"`
	FrequencyMHz int    `json:"frequency_mhz" yaml:"frequency_mhz"`
	Capabilities string `json:"capabilities" yaml:"capabilities"`
}

// ObservationBatch is one scan cycle delivered by the acquisition source.
type ObservationBatch struct {
	ObserverPosition GeoPosition   `json:"observer_position" yaml:"observer_position"`
	ScanRadiusMeters float64       `json:"scan_radius_meters" yaml:"scan_radius_meters"`
	CapturedAt       time.Time     `json:"captured_at,omitempty" yaml:"captured_at,omitempty"`
	Sightings        []RawSighting `json:"sightings" yaml:"sightings"`
}

// Validate rejects sightings that cannot be analyzed at all. RSSI is not range
// checked and a blank BSSID is accepted; both degrade downstream.
func (b ObservationBatch) Validate() error {
	for i, s := range b.Sightings {
		if s.FrequencyMHz <= 0 {
			return eris.Errorf("model: sighting %d (%s): frequency must be positive, got %d", i, s.BSSID, s.FrequencyMHz)
		}
	}
	if b.ScanRadiusMeters < 0 {
		return eris.Errorf("model: scan radius must not be negative, got %.1f", b.ScanRadiusMeters)
	}
	return nil
}

// Observation is a normalized, annotated sighting. Observations are created
// fresh each cycle and never mutated.
type Observation struct {
	SSID         string       `json:"ssid"`
	BSSID        string       `json:"bssid"`
	RSSI         int          `json:"rssi"`
	FrequencyMHz int          `json:"frequency_mhz"`
	Capabilities string       `json:"capabilities"`
	ObservedAt   time.Time    `json:"observed_at"`
	Position     *GeoPosition `json:"position,omitempty"`

	Channel        int          `json:"channel"`
	Band           string       `json:"band"`
	Security       SecurityType `json:"security"`
	Risk           NetworkRisk  `json:"risk"`
	DistanceMeters float64      `json:"distance_meters"`
}

// NormalizeSSID returns HiddenSSID for a blank SSID and the input otherwise.
func NormalizeSSID(ssid string) string {
	if strings.TrimSpace(ssid) == "" {
		return HiddenSSID
	}
	return ssid
}

// BlankBSSIDs returns the number of sightings without a BSSID.
func (b ObservationBatch) BlankBSSIDs() int {
	n := 0
	for _, s := range b.Sightings {
		if strings.TrimSpace(s.BSSID) == "" {
			n++
		}
	}
	return n
}

// HasDistance reports whether the distance estimate is usable.
func (o Observation) HasDistance() bool {
	return o.DistanceMeters >= 0
}
