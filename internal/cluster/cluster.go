// Package cluster groups a cycle's observations by SSID and derives per-group
// aggregates: strongest member, mean signal, security mix, weighted centroid,
// coverage radius, and overall risk.
package cluster

import (
	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/security"
	"github.com/sells-group/wifisurvey/internal/spectrum"
)

// Cluster is an immutable group of observations sharing an SSID. All
// aggregates are computed once at construction.
type Cluster struct {
	SSID                string               `json:"ssid"`
	Members             []model.Observation  `json:"members"`
	NetworkCount        int                  `json:"network_count"`
	BSSIDs              []string             `json:"bssids"`
	Strongest           model.Observation    `json:"strongest"`
	AverageRSSI         int                  `json:"average_rssi"`
	MinRSSI             int                  `json:"min_rssi"`
	MaxRSSI             int                  `json:"max_rssi"`
	SecurityTypes       []model.SecurityType `json:"security_types"`
	PrimarySecurityType model.SecurityType   `json:"primary_security_type"`
	IsOpen              bool                 `json:"is_open"`
	Frequencies         []int                `json:"frequencies"`
	Channels            []int                `json:"channels"`
	Bands               []string             `json:"bands"`
	Center              *model.GeoPosition   `json:"center,omitempty"`
	CoverageRadius      float64              `json:"coverage_radius_meters"`
	OverallRisk         model.NetworkRisk    `json:"overall_risk"`
}

// New builds a cluster from a non-empty member list. It returns nil for an
// empty list.
func New(ssid string, members []model.Observation) *Cluster {
	if len(members) == 0 {
		return nil
	}
	own := make([]model.Observation, len(members))
	copy(own, members)

	c := &Cluster{
		SSID:         ssid,
		Members:      own,
		NetworkCount: len(own),
	}

	strongest := own[0]
	minRSSI, maxRSSI := own[0].RSSI, own[0].RSSI
	sum := 0
	risks := make([]model.NetworkRisk, 0, len(own))
	seenBSSID := map[string]bool{}
	seenSec := map[model.SecurityType]bool{}
	seenFreq := map[int]bool{}
	seenChan := map[int]bool{}
	seenBand := map[string]bool{}

	for _, m := range own {
		if m.RSSI > strongest.RSSI {
			strongest = m
		}
		minRSSI = min(minRSSI, m.RSSI)
		maxRSSI = max(maxRSSI, m.RSSI)
		sum += m.RSSI
		risks = append(risks, security.AssessRisk(m.Security))

		if m.BSSID != "" && !seenBSSID[m.BSSID] {
			seenBSSID[m.BSSID] = true
			c.BSSIDs = append(c.BSSIDs, m.BSSID)
		}
		if !seenSec[m.Security] {
			seenSec[m.Security] = true
			c.SecurityTypes = append(c.SecurityTypes, m.Security)
		}
		if !seenFreq[m.FrequencyMHz] {
			seenFreq[m.FrequencyMHz] = true
			c.Frequencies = append(c.Frequencies, m.FrequencyMHz)
		}
		ch := spectrum.ChannelFor(m.FrequencyMHz)
		if !seenChan[ch] {
			seenChan[ch] = true
			c.Channels = append(c.Channels, ch)
		}
		band := spectrum.BandFor(m.FrequencyMHz)
		if !seenBand[band] {
			seenBand[band] = true
			c.Bands = append(c.Bands, band)
		}
	}

	c.Strongest = strongest
	c.MinRSSI, c.MaxRSSI = minRSSI, maxRSSI
	// Go integer division truncates toward zero.
	c.AverageRSSI = sum / len(own)
	c.PrimarySecurityType = model.Weakest(c.SecurityTypes)
	c.IsOpen = seenSec[model.SecurityOpen]
	c.OverallRisk = security.Escalate(risks)
	c.Center = Centroid(own)
	c.CoverageRadius = CoverageRadius(c.Center, own)

	return c
}

// Placed reports whether the cluster has a centroid and can go on a map.
func (c *Cluster) Placed() bool {
	return c.Center != nil
}
