package model

// Provenance records how a GeoPosition was obtained.
type Provenance string

// Position provenances.
const (
	ProvenanceMeasured  Provenance = "measured"
	ProvenanceEstimated Provenance = "estimated"
	ProvenanceClustered Provenance = "clustered"
)

// GeoPosition is a WGS84 coordinate with an accuracy radius in meters.
type GeoPosition struct {
	Latitude       float64    `json:"latitude" yaml:"latitude"`
	Longitude      float64    `json:"longitude" yaml:"longitude"`
	AccuracyMeters float64    `json:"accuracy_meters" yaml:"accuracy_meters"`
	Provenance     Provenance `json:"provenance" yaml:"provenance"`
}
