package service

import (
	"github.com/disease-predictor/internal/domain"
)

// BuildFeatureVector assembles the model input for a domain in training order.
// Categorical fields are encoded; numeric values pass through unclamped.
func BuildFeatureVector(d domain.Domain, input domain.PatientInput) (domain.FeatureVector, error) {
	spec, ok := domain.SpecFor(d)
	if !ok {
		return nil, domain.NewUnknownDomainError(string(d))
	}

	vector := make(domain.FeatureVector, 0, len(spec.Fields))
	for _, field := range spec.Fields {
		value, present := input[field.Name]
		if !present || value.Null {
			return nil, domain.NewIncompleteInputError(d, field.Name, "required field is missing")
		}

		switch field.Kind {
		case domain.FieldCategorical:
			if !value.IsLabel {
				return nil, domain.NewInvalidCategoryError(d, field.Name, value.String())
			}
			code, err := Encode(d, field.Name, value.Label)
			if err != nil {
				return nil, err
			}
			vector = append(vector, float64(code))
		default:
			if value.IsLabel {
				return nil, domain.NewIncompleteInputError(d, field.Name, "numeric value expected")
			}
			vector = append(vector, value.Number)
		}
	}

	return vector, nil
}
