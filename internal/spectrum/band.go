// Package spectrum classifies Wi-Fi frequencies into bands and channels and
// computes congestion and density metrics over a scan cycle.
package spectrum

// Band labels.
const (
	Band24GHz   = "2.4GHz"
	Band5GHz    = "5GHz"
	Band6GHz    = "6GHz"
	BandUnknown = "Unknown"
)

type bandRange struct {
	label    string
	min, max int
}

// bandRanges is evaluated in order; the first match wins. The 5GHz and 6GHz
// ranges overlap on 5950-6000 MHz, which therefore resolves to 5GHz.
var bandRanges = []bandRange{
	{Band24GHz, 2400, 2500},
	{Band5GHz, 5000, 6000},
	{Band6GHz, 5950, 7125},
}

// BandFor returns the band label for a frequency in MHz.
func BandFor(frequencyMHz int) string {
	for _, r := range bandRanges {
		if frequencyMHz >= r.min && frequencyMHz <= r.max {
			return r.label
		}
	}
	return BandUnknown
}

// ChannelFor returns the channel number for a frequency in MHz, or 0 when the
// frequency is outside every known channel plan.
func ChannelFor(frequencyMHz int) int {
	switch {
	case frequencyMHz == 2484:
		return 14
	case frequencyMHz >= 2412 && frequencyMHz <= 2484:
		return (frequencyMHz-2412)/5 + 1
	case frequencyMHz >= 5170 && frequencyMHz <= 5825:
		return (frequencyMHz - 5000) / 5
	case frequencyMHz >= 5955 && frequencyMHz <= 7125:
		return (frequencyMHz - 5950) / 5
	default:
		return 0
	}
}

// FrequencyFor returns the center frequency of a 2.4GHz or 5GHz channel, or 0
// for channels outside those plans. 6GHz channel numbers collide with 2.4GHz
// and 5GHz ones and are never resolved.
func FrequencyFor(channel int) int {
	switch {
	case channel == 14:
		return 2484
	case channel >= 1 && channel <= 13:
		return 2407 + 5*channel
	case channel >= 32 && channel <= 177:
		return 5000 + 5*channel
	default:
		return 0
	}
}
