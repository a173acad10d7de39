package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/wifisurvey/internal/model"
)

func TestAssessRisk(t *testing.T) {
	expected := map[model.SecurityType]model.NetworkRisk{
		model.SecurityOpen:    model.RiskHigh,
		model.SecurityWEP:     model.RiskHigh,
		model.SecurityWPS:     model.RiskMedium,
		model.SecurityWPA:     model.RiskMedium,
		model.SecurityWPA2:    model.RiskLow,
		model.SecurityWPA3:    model.RiskVeryLow,
		model.SecurityUnknown: model.RiskUnknown,
	}
	for st, risk := range expected {
		assert.Equal(t, risk, AssessRisk(st), st.String())
	}
	assert.Equal(t, model.RiskUnknown, AssessRisk(model.SecurityType(-1)))
}

func TestEscalate(t *testing.T) {
	tests := []struct {
		name     string
		risks    []model.NetworkRisk
		expected model.NetworkRisk
	}{
		{"any high", []model.NetworkRisk{model.RiskLow, model.RiskHigh, model.RiskMedium}, model.RiskHigh},
		{"low and medium", []model.NetworkRisk{model.RiskLow, model.RiskMedium}, model.RiskMedium},
		{"all low", []model.NetworkRisk{model.RiskLow, model.RiskLow}, model.RiskLow},
		{"all very low", []model.NetworkRisk{model.RiskVeryLow}, model.RiskVeryLow},
		{"low and very low falls through", []model.NetworkRisk{model.RiskLow, model.RiskVeryLow}, model.RiskUnknown},
		{"low and unknown", []model.NetworkRisk{model.RiskLow, model.RiskUnknown}, model.RiskUnknown},
		{"empty", nil, model.RiskUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Escalate(tt.risks))
		})
	}
}

func TestTally(t *testing.T) {
	obs := []model.Observation{
		{Security: model.SecurityOpen},
		{Security: model.SecurityOpen},
		{Security: model.SecurityWEP},
		{Security: model.SecurityWPA2},
		{Security: model.SecurityWPA3},
		{Security: model.SecurityWPS},
		{Security: model.SecurityUnknown},
	}
	s := Tally(obs)
	assert.Equal(t, 2, s.Open)
	assert.Equal(t, 7, s.Total())
	assert.Equal(t, 2, s.Secure())
	assert.Equal(t, 4, s.Vulnerable())
	assert.Equal(t, Stats{}, Tally(nil))
}
