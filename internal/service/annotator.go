package service

import (
	"github.com/disease-predictor/internal/domain"
)

// riskRule classifies one raw value against a fixed threshold
type riskRule struct {
	factor   string
	field    string
	atRisk   func(v float64) bool
	risky    string
	baseline string
}

var riskRules = map[domain.Domain][]riskRule{
	domain.DomainDiabetes: {
		{factor: "Glucose", field: domain.FieldGlucose, atRisk: func(v float64) bool { return v >= 140 }, risky: "High Risk", baseline: "Normal"},
		{factor: "BMI", field: domain.FieldBMI, atRisk: func(v float64) bool { return v >= 30 }, risky: "Overweight", baseline: "Healthy"},
		{factor: "Age", field: domain.FieldAge, atRisk: func(v float64) bool { return v >= 45 }, risky: "Senior Risk Group", baseline: "Low Risk"},
		{factor: "Pedigree Function", field: domain.FieldPedigree, atRisk: func(v float64) bool { return v >= 0.5 }, risky: "High Genetic Risk", baseline: "Low Genetic Risk"},
	},
	domain.DomainHeart: {
		{factor: "Age", field: domain.FieldHeartAge, atRisk: func(v float64) bool { return v > 50 }, risky: "High Risk", baseline: "Normal"},
		{factor: "Cholesterol", field: domain.FieldCholesterol, atRisk: func(v float64) bool { return v > 240 }, risky: "High", baseline: "Normal"},
		{factor: "Max HR", field: domain.FieldMaxHeartRate, atRisk: func(v float64) bool { return v < 100 }, risky: "Low Fitness", baseline: "Healthy"},
		{factor: "Oldpeak", field: domain.FieldOldpeak, atRisk: func(v float64) bool { return v > 2.0 }, risky: "Elevated", baseline: "Normal"},
	},
}

// Annotate derives the risk flags of a domain from raw input values.
// Domains without rules (Parkinson's) yield no flags; fields that are absent or
// not numeric are skipped.
func Annotate(d domain.Domain, input domain.PatientInput) []domain.RiskFlag {
	rules := riskRules[d]
	flags := make([]domain.RiskFlag, 0, len(rules))
	for _, rule := range rules {
		value, ok := input[rule.field]
		if !ok || value.Null || value.IsLabel {
			continue
		}
		classification := rule.baseline
		if rule.atRisk(value.Number) {
			classification = rule.risky
		}
		flags = append(flags, domain.RiskFlag{
			Factor:         rule.factor,
			Value:          value.Number,
			Classification: classification,
		})
	}
	return flags
}
