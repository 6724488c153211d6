// Package report composes prediction results into on-screen explanations and
// downloadable PDF documents.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/disease-predictor/internal/domain"
)

// recommendationSet holds the at-risk and not-at-risk advice of one domain
type recommendationSet struct {
	atRisk    []string
	notAtRisk []string
}

var recommendations = map[domain.Domain]recommendationSet{
	domain.DomainDiabetes: {
		atRisk: []string{
			"Please consult a doctor for further evaluation.",
			"Maintain a low-sugar diet, increase physical activity.",
			"Regularly monitor glucose and HbA1c levels.",
			"Aim for at least 30 minutes of moderate exercise daily.",
		},
		notAtRisk: []string{
			"Continue healthy lifestyle habits.",
			"Stay active to reduce risk of diabetes in the future.",
			"Monitor diet and keep regular checkups for early detection.",
		},
	},
	domain.DomainHeart: {
		atRisk: []string{
			"Visit a cardiologist for further testing and treatment.",
			"Consider lifestyle changes, medication, and exercise.",
			"Monitor cholesterol and blood pressure regularly.",
		},
		notAtRisk: []string{
			"Continue heart-healthy habits.",
			"Eat a balanced diet, exercise regularly.",
			"Periodic health screenings recommended.",
		},
	},
	domain.DomainParkinsons: {
		atRisk: []string{
			"Consult a neurologist.",
			"Consider speech therapy and motor control evaluations.",
		},
		notAtRisk: []string{
			"Continue regular monitoring.",
			"Consult a neurologist if tremor or speech changes appear.",
		},
	},
}

// keyFeature is one line of the on-screen explanation
type keyFeature struct {
	field  string
	label  string
	unit   string
	factor string // risk flag shown next to the value, if any
}

var keyFeatures = map[domain.Domain][]keyFeature{
	domain.DomainDiabetes: {
		{field: domain.FieldGlucose, label: "Glucose", factor: "Glucose"},
		{field: domain.FieldBMI, label: "BMI", factor: "BMI"},
		{field: domain.FieldAge, label: "Age", factor: "Age"},
		{field: domain.FieldPedigree, label: "Pedigree Function", factor: "Pedigree Function"},
	},
	domain.DomainHeart: {
		{field: domain.FieldChestPain, label: "Chest Pain Type"},
		{field: domain.FieldCholesterol, label: "Cholesterol", unit: "mg/dL", factor: "Cholesterol"},
		{field: domain.FieldMaxHeartRate, label: "Max Heart Rate", unit: "bpm", factor: "Max HR"},
		{field: domain.FieldExerciseAngina, label: "Exercise Angina"},
	},
}

var parkinsonsNotes = []string{
	"**Jitter/Shimmer**: Voice tremor levels",
	"**HNR (Harmonics to Noise Ratio)**: Noise in vocal signal",
	"**D2, Spread1**: Signal complexity measures related to neurological conditions",
}

// Recommendations returns the advice for a result. The choice depends only on
// the predicted label.
func Recommendations(result domain.PredictionResult) []string {
	set := recommendations[result.Domain]
	src := set.notAtRisk
	if result.Positive() {
		src = set.atRisk
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Compose assembles the report of one prediction
func Compose(result domain.PredictionResult, input domain.PatientInput, flags []domain.RiskFlag, now time.Time) *domain.Report {
	return &domain.Report{
		Result:          result,
		Input:           input,
		Flags:           flags,
		Recommendations: Recommendations(result),
		GeneratedAt:     now,
	}
}

// Message is the headline shown with a prediction
func Message(result domain.PredictionResult) string {
	likelihood := "unlikely"
	if result.Positive() {
		likelihood = "likely"
	}
	return fmt.Sprintf("The model predicts that this patient is %s to have **%s**.", likelihood, result.Domain.DisplayName())
}

// ResultLine is the short verdict printed in documents
func ResultLine(result domain.PredictionResult) string {
	if result.Positive() {
		return "Likely to have " + result.Domain.DisplayName()
	}
	return "Unlikely to have " + result.Domain.DisplayName()
}

// Explain renders the markdown explanation shown under the result
func Explain(r *domain.Report) string {
	var b strings.Builder
	b.WriteString("### Explanation:\n")

	if r.Result.Domain == domain.DomainParkinsons {
		b.WriteString("This prediction is based on voice measurements from clinical studies:\n")
		for _, note := range parkinsonsNotes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
	}

	flags := make(map[string]domain.RiskFlag, len(r.Flags))
	for _, f := range r.Flags {
		flags[f.Factor] = f
	}
	for _, kf := range keyFeatures[r.Result.Domain] {
		value, ok := r.Input[kf.field]
		if !ok {
			continue
		}
		line := fmt.Sprintf("- **%s**: %s", kf.label, value)
		if kf.unit != "" {
			line += " " + kf.unit
		}
		if flag, ok := flags[kf.factor]; ok && kf.factor != "" {
			line += fmt.Sprintf(" (%s)", flag.Classification)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n### Next Steps:\n")
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	return b.String()
}
