package security

import "github.com/sells-group/wifisurvey/internal/model"

// Stats counts observations per security type.
type Stats struct {
	Open    int `json:"open"`
	WEP     int `json:"wep"`
	WPA     int `json:"wpa"`
	WPA2    int `json:"wpa2"`
	WPA3    int `json:"wpa3"`
	WPS     int `json:"wps"`
	Unknown int `json:"unknown"`
}

// Total is the number of counted observations.
func (s Stats) Total() int {
	return s.Open + s.WEP + s.WPA + s.WPA2 + s.WPA3 + s.WPS + s.Unknown
}

// Secure counts WPA-family networks.
func (s Stats) Secure() int {
	return s.WPA + s.WPA2 + s.WPA3
}

// Vulnerable counts Open, WEP, and WPS-only networks.
func (s Stats) Vulnerable() int {
	return s.Open + s.WEP + s.WPS
}

// Tally counts observations by their classified security type.
func Tally(obs []model.Observation) Stats {
	var s Stats
	for _, o := range obs {
		switch o.Security {
		case model.SecurityOpen:
			s.Open++
		case model.SecurityWEP:
			s.WEP++
		case model.SecurityWPA:
			s.WPA++
		case model.SecurityWPA2:
			s.WPA2++
		case model.SecurityWPA3:
			s.WPA3++
		case model.SecurityWPS:
			s.WPS++
		default:
			s.Unknown++
		}
	}
	return s
}
