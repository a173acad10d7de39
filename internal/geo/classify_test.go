package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySignal(t *testing.T) {
	tests := []struct {
		name     string
		rssi     int
		expected string
	}{
		{"excellent: strong", -30, LevelExcellent},
		{"good: at excellent threshold", -50, LevelGood},
		{"good: mid", -55, LevelGood},
		{"fair: at good threshold", -60, LevelFair},
		{"weak: at fair threshold", -70, LevelWeak},
		{"very weak: at weak threshold", -80, LevelVeryWeak},
		{"very weak: floor", -100, LevelVeryWeak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySignal(tt.rssi))
		})
	}
}

func TestSignalQuality(t *testing.T) {
	assert.Equal(t, "Excellent", SignalQuality(-20))
	assert.Equal(t, "Very Weak", SignalQuality(-95))
}

func TestSignalPercentage(t *testing.T) {
	tests := []struct {
		rssi     int
		expected int
	}{
		{-100, 0},
		{-120, 0},
		{-50, 100},
		{-10, 100},
		{-75, 50},
		{-99, 2},
		{0, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SignalPercentage(tt.rssi), "rssi %d", tt.rssi)
	}
}
