// Package snapshot holds the derived state of one scan cycle and the store
// that publishes the latest cycle to readers.
package snapshot

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/wifisurvey/internal/cluster"
	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/security"
	"github.com/sells-group/wifisurvey/internal/spectrum"
)

// Snapshot is the immutable result of one scan cycle. A published snapshot is
// never modified; the next cycle replaces it as a whole.
type Snapshot struct {
	CycleSeq         uint64              `json:"cycle_seq"`
	ID               uuid.UUID           `json:"id"`
	CreatedAt        time.Time           `json:"created_at"`
	CapturedAt       time.Time           `json:"captured_at"`
	ObserverPosition model.GeoPosition   `json:"observer_position"`
	Observations     []model.Observation `json:"observations"`
	Clusters         cluster.Set         `json:"clusters"`
	Spectrum         spectrum.Report     `json:"spectrum"`
	Security         security.Stats      `json:"security"`
}

// Cluster returns the cluster for ssid, or nil.
func (s *Snapshot) Cluster(ssid string) *cluster.Cluster {
	if s == nil {
		return nil
	}
	return s.Clusters[ssid]
}

// Observation returns the first observation whose BSSID matches bssid,
// ignoring case.
func (s *Snapshot) Observation(bssid string) (model.Observation, bool) {
	if s == nil || strings.TrimSpace(bssid) == "" {
		return model.Observation{}, false
	}
	for _, o := range s.Observations {
		if strings.EqualFold(o.BSSID, bssid) {
			return o, true
		}
	}
	return model.Observation{}, false
}

// Summary is the compact view of a snapshot used by sinks and alerts.
type Summary struct {
	CycleSeq           uint64         `json:"cycle_seq"`
	ID                 string         `json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	Observations       int            `json:"observations"`
	Clusters           int            `json:"clusters"`
	Placed             int            `json:"placed"`
	HighRiskClusters   int            `json:"high_risk_clusters"`
	Secure             int            `json:"secure"`
	Vulnerable         int            `json:"vulnerable"`
	DensityPerKm2      float64        `json:"density_per_km2"`
	RecommendedChannel int            `json:"recommended_channel"`
	BandCounts         map[string]int `json:"band_counts"`
}

// Summarize returns the compact view of s.
func (s *Snapshot) Summarize() Summary {
	high := 0
	for _, c := range s.Clusters {
		if c.OverallRisk == model.RiskHigh {
			high++
		}
	}
	return Summary{
		CycleSeq:           s.CycleSeq,
		ID:                 s.ID.String(),
		CreatedAt:          s.CreatedAt,
		Observations:       len(s.Observations),
		Clusters:           len(s.Clusters),
		Placed:             len(s.Clusters.Placed()),
		HighRiskClusters:   high,
		Secure:             s.Security.Secure(),
		Vulnerable:         s.Security.Vulnerable(),
		DensityPerKm2:      s.Spectrum.DensityPerKm2,
		RecommendedChannel: s.Spectrum.RecommendedChannel,
		BandCounts:         s.Spectrum.BandCounts,
	}
}
