package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// SecurityType is the security posture derived from a capability string.
type SecurityType int

// Security types. Declaration order carries no meaning; weakness ordering is
// defined by Rank.
const (
	SecurityOpen SecurityType = iota
	SecurityWEP
	SecurityWPA
	SecurityWPA2
	SecurityWPA3
	SecurityWPS
	SecurityUnknown
)

// securityRank is the "weakest representative" priority: lower is weaker.
var securityRank = map[SecurityType]int{
	SecurityOpen:    0,
	SecurityWEP:     1,
	SecurityWPA:     2,
	SecurityWPA2:    3,
	SecurityWPA3:    4,
	SecurityWPS:     5,
	SecurityUnknown: 6,
}

var securityNames = map[SecurityType]string{
	SecurityOpen:    "OPEN",
	SecurityWEP:     "WEP",
	SecurityWPA:     "WPA",
	SecurityWPA2:    "WPA2",
	SecurityWPA3:    "WPA3",
	SecurityWPS:     "WPS",
	SecurityUnknown: "UNKNOWN",
}

// Rank returns the weakness priority of t. Unrecognized values rank with Unknown.
func (t SecurityType) Rank() int {
	if r, ok := securityRank[t]; ok {
		return r
	}
	return securityRank[SecurityUnknown]
}

// WeakerThan reports whether t ranks strictly weaker than other.
func (t SecurityType) WeakerThan(other SecurityType) bool {
	return t.Rank() < other.Rank()
}

func (t SecurityType) String() string {
	if s, ok := securityNames[t]; ok {
		return s
	}
	return securityNames[SecurityUnknown]
}

// MarshalText implements encoding.TextMarshaler.
func (t SecurityType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SecurityType) UnmarshalText(b []byte) error {
	name := strings.ToUpper(strings.TrimSpace(string(b)))
	for k, v := range securityNames {
		if v == name {
			*t = k
			return nil
		}
	}
	return eris.Errorf("model: unknown security type %q", string(b))
}

// Weakest returns the type with the lowest rank, or SecurityUnknown for an
// empty input.
func Weakest(types []SecurityType) SecurityType {
	if len(types) == 0 {
		return SecurityUnknown
	}
	weakest := types[0]
	for _, t := range types[1:] {
		if t.WeakerThan(weakest) {
			weakest = t
		}
	}
	return weakest
}

// NetworkRisk is the qualitative risk of a network.
type NetworkRisk int

// Network risks.
const (
	RiskVeryLow NetworkRisk = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskUnknown
)

type riskDisplay struct {
	name        string
	description string
	color       string
}

var riskDisplays = map[NetworkRisk]riskDisplay{
	RiskVeryLow: {"VERY_LOW", "Very Secure", "#0066CC"},
	RiskLow:     {"LOW", "Secure", "#00AA00"},
	RiskMedium:  {"MEDIUM", "Moderate Risk", "#FFBB33"},
	RiskHigh:    {"HIGH", "High Risk", "#FF4444"},
	RiskUnknown: {"UNKNOWN", "Unknown", "#808080"},
}

func (r NetworkRisk) display() riskDisplay {
	if d, ok := riskDisplays[r]; ok {
		return d
	}
	return riskDisplays[RiskUnknown]
}

func (r NetworkRisk) String() string { return r.display().name }

// Description is the human-readable label shown to users.
func (r NetworkRisk) Description() string { return r.display().description }

// Color is the display colour as a hex RGB string.
func (r NetworkRisk) Color() string { return r.display().color }

// MarshalText implements encoding.TextMarshaler.
func (r NetworkRisk) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *NetworkRisk) UnmarshalText(b []byte) error {
	name := strings.ToUpper(strings.TrimSpace(string(b)))
	for k, d := range riskDisplays {
		if d.name == name {
			*r = k
			return nil
		}
	}
	return eris.Errorf("model: unknown network risk %q", string(b))
}

// SecurityInfo is the detailed breakdown of a capability string.
type SecurityInfo struct {
	SecurityType          SecurityType `json:"security_type"`
	HasWPS                bool         `json:"has_wps"`
	EncryptionMethods     []string     `json:"encryption_methods"`
	AuthenticationMethods []string     `json:"authentication_methods"`
}
