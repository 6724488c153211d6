package service

import (
	"github.com/disease-predictor/internal/domain"
)

// Encode maps a categorical selection to the integer code the domain's model
// was trained against.
func Encode(d domain.Domain, field, label string) (int, error) {
	def, err := categoricalField(d, field)
	if err != nil {
		return 0, err
	}
	for _, c := range def.Categories {
		if c.Label == label {
			return c.Code, nil
		}
	}
	return 0, domain.NewInvalidCategoryError(d, field, label)
}

// Labels returns the labels offered for a categorical field, in table order
func Labels(d domain.Domain, field string) ([]string, error) {
	def, err := categoricalField(d, field)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(def.Categories))
	for i, c := range def.Categories {
		labels[i] = c.Label
	}
	return labels, nil
}

func categoricalField(d domain.Domain, field string) (domain.FieldDef, error) {
	spec, ok := domain.SpecFor(d)
	if !ok {
		return domain.FieldDef{}, domain.NewUnknownDomainError(string(d))
	}
	def, ok := spec.Field(field)
	if !ok || def.Kind != domain.FieldCategorical {
		return domain.FieldDef{}, &domain.PredictionError{
			Code:    domain.ErrCodeInvalidCategory,
			Domain:  d,
			Field:   field,
			Message: "field has no encoding table",
		}
	}
	return def, nil
}
