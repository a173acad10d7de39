// Package security derives security posture and risk from access point
// capability strings.
package security

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Capability tokens.
const (
	tokenWPA3 = "WPA3"
	tokenWPA2 = "WPA2"
	tokenWPA  = "WPA"
	tokenRSN  = "RSN"
	tokenSAE  = "SAE"
	tokenWEP  = "WEP"
	tokenWPS  = "WPS"
	tokenESS  = "ESS"
	tokenCCMP = "CCMP"
	tokenTKIP = "TKIP"
	tokenPSK  = "PSK"
	tokenEAP  = "EAP"
	tokenOWE  = "OWE"
)

// capabilities is an upper-cased capability string.
type capabilities string

func normalize(raw string) capabilities {
	// cases.Caser is stateful, so a fresh one is built per call.
	return capabilities(cases.Upper(language.Und).String(raw))
}

// has reports whether any of the tokens occurs as a substring.
func (c capabilities) has(tokens ...string) bool {
	for _, tok := range tokens {
		if strings.Contains(string(c), tok) {
			return true
		}
	}
	return false
}

// collect returns labels for every present token in declaration order.
func (c capabilities) collect(pairs [][2]string) []string {
	out := []string{}
	for _, p := range pairs {
		if c.has(p[0]) {
			out = append(out, p[1])
		}
	}
	return out
}
