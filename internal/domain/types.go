package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Domain identifies one of the disease prediction contexts
type Domain string

const (
	DomainDiabetes   Domain = "diabetes"
	DomainHeart      Domain = "heart"
	DomainParkinsons Domain = "parkinsons"
)

// AllDomains lists the domains in menu order
var AllDomains = []Domain{DomainDiabetes, DomainHeart, DomainParkinsons}

// DisplayName returns the disease name shown in result messages
func (d Domain) DisplayName() string {
	switch d {
	case DomainDiabetes:
		return "Diabetes"
	case DomainHeart:
		return "Heart Disease"
	case DomainParkinsons:
		return "Parkinson's Disease"
	default:
		return string(d)
	}
}

// MenuLabel returns the navigation label offered by the front-end
func (d Domain) MenuLabel() string {
	switch d {
	case DomainDiabetes:
		return "Diabetes Prediction"
	case DomainHeart:
		return "Heart Disease Prediction"
	case DomainParkinsons:
		return "Parkinsons Disease Prediction"
	default:
		return string(d)
	}
}

// IsValid reports whether d is one of the known domains
func (d Domain) IsValid() bool {
	for _, known := range AllDomains {
		if d == known {
			return true
		}
	}
	return false
}

// FieldKind distinguishes numeric inputs from categorical selections
type FieldKind string

const (
	FieldNumeric     FieldKind = "numeric"
	FieldCategorical FieldKind = "categorical"
)

// Category is one selectable label and the integer code the model expects
type Category struct {
	Label string `json:"label"`
	Code  int    `json:"code"`
}

// FieldDef describes one model input
type FieldDef struct {
	Name       string     `json:"name"`
	Label      string     `json:"label"`
	Kind       FieldKind  `json:"kind"`
	Categories []Category `json:"categories,omitempty"`
	Min        *float64   `json:"min,omitempty"`
	Max        *float64   `json:"max,omitempty"`
	Integer    bool       `json:"integer,omitempty"`
	Unit       string     `json:"unit,omitempty"`
}

// FeatureSpec is the ordered field list a domain's model was trained on
type FeatureSpec struct {
	Domain Domain     `json:"domain"`
	Fields []FieldDef `json:"fields"`
}

// Field looks up a field definition by name
func (s FeatureSpec) Field(name string) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// FieldValue holds either a number or a selected category label. A JSON null
// decodes to a value with Null set, which counts as a missing field.
type FieldValue struct {
	Number  float64
	Label   string
	IsLabel bool
	Null    bool
}

// Num creates a numeric field value
func Num(v float64) FieldValue {
	return FieldValue{Number: v}
}

// Cat creates a categorical field value
func Cat(label string) FieldValue {
	return FieldValue{Label: label, IsLabel: true}
}

// String renders the value the way it is shown in report summaries
func (v FieldValue) String() string {
	if v.Null {
		return ""
	}
	if v.IsLabel {
		return v.Label
	}
	return strconv.FormatFloat(v.Number, 'f', -1, 64)
}

// MarshalJSON encodes labels as strings and numbers as numbers
func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.Null {
		return []byte("null"), nil
	}
	if v.IsLabel {
		return json.Marshal(v.Label)
	}
	return json.Marshal(v.Number)
}

// UnmarshalJSON accepts a JSON string (category label), number or null
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = FieldValue{Null: true}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		*v = Cat(label)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("field value must be a number or a string: %w", err)
	}
	*v = Num(n)
	return nil
}

// PatientInput maps field names to raw values for one submission
type PatientInput map[string]FieldValue

// FeatureVector is the ordered numeric model input
type FeatureVector []float64

// PredictionResult is the classifier's verdict for one submission
type PredictionResult struct {
	Domain       Domain `json:"domain"`
	Label        int    `json:"label"`
	ModelVersion string `json:"model_version,omitempty"`
}

// Positive reports whether the model predicts the disease
func (r PredictionResult) Positive() bool {
	return r.Label == 1
}

// RiskFlag is a threshold-based classification of one raw value
type RiskFlag struct {
	Factor         string  `json:"factor"`
	Value          float64 `json:"value"`
	Classification string  `json:"classification"`
}

// Report aggregates everything needed to render a result
type Report struct {
	Result          PredictionResult `json:"result"`
	Input           PatientInput     `json:"input"`
	Flags           []RiskFlag       `json:"risk_flags"`
	Recommendations []string         `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Document is a rendered, downloadable report
type Document struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}
