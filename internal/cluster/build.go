package cluster

import (
	"sort"

	"github.com/sells-group/wifisurvey/internal/model"
)

// Set is the cluster map of one cycle, keyed by SSID.
type Set map[string]*Cluster

// Build groups observations by SSID, exact and case-sensitive, after replacing
// blank SSIDs with model.HiddenSSID. Member order follows input order.
func Build(obs []model.Observation) Set {
	groups := make(map[string][]model.Observation)
	for _, o := range obs {
		ssid := model.NormalizeSSID(o.SSID)
		o.SSID = ssid
		groups[ssid] = append(groups[ssid], o)
	}
	set := make(Set, len(groups))
	for ssid, members := range groups {
		set[ssid] = New(ssid, members)
	}
	return set
}

// SSIDs returns the set's keys in sorted order.
func (s Set) SSIDs() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sorted returns clusters ordered by descending risk severity, then SSID.
func (s Set) Sorted() []*Cluster {
	out := make([]*Cluster, 0, len(s))
	for _, k := range s.SSIDs() {
		out = append(out, s[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return riskSeverity(out[i].OverallRisk) > riskSeverity(out[j].OverallRisk)
	})
	return out
}

// Placed returns the clusters that have a centroid, sorted by SSID.
func (s Set) Placed() []*Cluster {
	var out []*Cluster
	for _, k := range s.SSIDs() {
		if s[k].Placed() {
			out = append(out, s[k])
		}
	}
	return out
}

func riskSeverity(r model.NetworkRisk) int {
	switch r {
	case model.RiskHigh:
		return 4
	case model.RiskMedium:
		return 3
	case model.RiskLow:
		return 2
	case model.RiskVeryLow:
		return 1
	default:
		return 0
	}
}
