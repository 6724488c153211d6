package service

import (
	"fmt"
	"math"
	"strconv"

	"github.com/disease-predictor/internal/domain"
)

// ValidateBounds enforces the form constraints of a domain: numeric ranges,
// whole numbers where the form only offers integers, and finite values.
// Missing fields and categorical labels are left to BuildFeatureVector.
func ValidateBounds(d domain.Domain, input domain.PatientInput) error {
	spec, ok := domain.SpecFor(d)
	if !ok {
		return domain.NewUnknownDomainError(string(d))
	}

	for _, field := range spec.Fields {
		value, present := input[field.Name]
		if !present || value.Null || value.IsLabel || field.Kind != domain.FieldNumeric {
			continue
		}
		n := value.Number

		if math.IsNaN(n) || math.IsInf(n, 0) {
			return domain.NewValidationError(field.Name, "must be a finite number", n)
		}
		if field.Min != nil && n < *field.Min {
			return domain.NewValidationError(field.Name, fmt.Sprintf("must be at least %s", formatBound(*field.Min)), n)
		}
		if field.Max != nil && n > *field.Max {
			return domain.NewValidationError(field.Name, fmt.Sprintf("must be at most %s", formatBound(*field.Max)), n)
		}
		if field.Integer && n != math.Trunc(n) {
			return domain.NewValidationError(field.Name, "must be a whole number", n)
		}
	}

	return nil
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
