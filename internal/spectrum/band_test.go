package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBandFor(t *testing.T) {
	tests := []struct {
		name     string
		freq     int
		expected string
	}{
		{"2.4GHz lower bound", 2400, Band24GHz},
		{"2.4GHz channel 6", 2437, Band24GHz},
		{"2.4GHz upper bound", 2500, Band24GHz},
		{"5GHz channel 36", 5180, Band5GHz},
		{"overlap resolves to 5GHz", 5970, Band5GHz},
		{"overlap upper edge", 6000, Band5GHz},
		{"6GHz just past overlap", 6001, Band6GHz},
		{"6GHz upper bound", 7125, Band6GHz},
		{"gap between bands", 3000, BandUnknown},
		{"above 6GHz", 7200, BandUnknown},
		{"zero", 0, BandUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BandFor(tt.freq))
		})
	}
}

func TestChannelFor(t *testing.T) {
	tests := []struct {
		freq     int
		expected int
	}{
		{2412, 1},
		{2437, 6},
		{2462, 11},
		{2472, 13},
		{2484, 14},
		{2414, 1},
		{5170, 34},
		{5180, 36},
		{5825, 165},
		{5955, 1},
		{6115, 33},
		{7125, 235},
		{2400, 0},
		{5900, 0},
		{9000, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ChannelFor(tt.freq), "freq %d", tt.freq)
	}
}

func TestFrequencyFor(t *testing.T) {
	tests := []struct {
		channel int
		want    int
	}{
		{1, 2412},
		{6, 2437},
		{13, 2472},
		{14, 2484},
		{36, 5180},
		{165, 5825},
		{0, 0},
		{15, 0},
		{200, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FrequencyFor(tt.channel), "channel %d", tt.channel)
	}
}

func TestFrequencyFor_RoundTrip(t *testing.T) {
	for _, ch := range []int{1, 6, 11, 14, 36, 40, 149, 165} {
		assert.Equal(t, ch, ChannelFor(FrequencyFor(ch)))
	}
}
