package spectrum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/wifisurvey/internal/model"
)

func obsOnChannels(counts map[int]int) []model.Observation {
	var out []model.Observation
	for ch, n := range counts {
		for i := 0; i < n; i++ {
			out = append(out, model.Observation{FrequencyMHz: 2412 + (ch-1)*5})
		}
	}
	return out
}

func TestDensity(t *testing.T) {
	assert.Equal(t, 0.0, Density(0, 200))
	assert.Equal(t, 0.0, Density(5, 0))
	assert.InDelta(t, 1/math.Pi, Density(1, 1000), 1e-12)
	assert.InDelta(t, 10/(math.Pi*0.04), Density(10, 200), 1e-9)
}

func TestLeastCongestedChannel(t *testing.T) {
	tests := []struct {
		name     string
		obs      []model.Observation
		expected int
	}{
		{"no data defaults to 1", nil, 1},
		{"11 is empty", obsOnChannels(map[int]int{1: 3, 6: 1}), 11},
		{"tie prefers earlier", obsOnChannels(map[int]int{1: 2, 6: 1, 11: 1}), 6},
		{"all equal picks 1", obsOnChannels(map[int]int{1: 1, 6: 1, 11: 1}), 1},
		{"other channels ignored", obsOnChannels(map[int]int{3: 5, 1: 1, 6: 1, 11: 2}), 1},
		{
			name: "5GHz data only defaults to 1",
			obs: []model.Observation{
				{FrequencyMHz: 5180}, {FrequencyMHz: 5200},
			},
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LeastCongestedChannel(tt.obs))
		})
	}
}

func TestChannelUsage(t *testing.T) {
	obs := []model.Observation{
		{FrequencyMHz: 2412}, {FrequencyMHz: 2412}, {FrequencyMHz: 2437},
		{FrequencyMHz: 5180},
	}
	assert.Equal(t, map[int]int{1: 2, 6: 1}, ChannelUsage(obs))
}
