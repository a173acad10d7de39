package security

import "github.com/sells-group/wifisurvey/internal/model"

var riskTable = map[model.SecurityType]model.NetworkRisk{
	model.SecurityOpen:    model.RiskHigh,
	model.SecurityWEP:     model.RiskHigh,
	model.SecurityWPS:     model.RiskMedium,
	model.SecurityWPA:     model.RiskMedium,
	model.SecurityWPA2:    model.RiskLow,
	model.SecurityWPA3:    model.RiskVeryLow,
	model.SecurityUnknown: model.RiskUnknown,
}

// AssessRisk returns the qualitative risk of a security type.
func AssessRisk(t model.SecurityType) model.NetworkRisk {
	if r, ok := riskTable[t]; ok {
		return r
	}
	return model.RiskUnknown
}

// Escalate aggregates member risks into one group risk:
//   - any High: High
//   - else any Medium: Medium
//   - else all Low: Low
//   - else all VeryLow: VeryLow
//   - else Unknown
//
// A mix of only Low and VeryLow reports Unknown, as does an empty input.
func Escalate(risks []model.NetworkRisk) model.NetworkRisk {
	if len(risks) == 0 {
		return model.RiskUnknown
	}
	if anyRisk(risks, model.RiskHigh) {
		return model.RiskHigh
	}
	if anyRisk(risks, model.RiskMedium) {
		return model.RiskMedium
	}
	if allRisk(risks, model.RiskLow) {
		return model.RiskLow
	}
	if allRisk(risks, model.RiskVeryLow) {
		return model.RiskVeryLow
	}
	return model.RiskUnknown
}

func anyRisk(risks []model.NetworkRisk, want model.NetworkRisk) bool {
	for _, r := range risks {
		if r == want {
			return true
		}
	}
	return false
}

func allRisk(risks []model.NetworkRisk, want model.NetworkRisk) bool {
	for _, r := range risks {
		if r != want {
			return false
		}
	}
	return true
}
