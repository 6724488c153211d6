package service

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disease-predictor/internal/domain"
)

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   float64
		wantErr bool
	}{
		{"in range", domain.FieldGlucose, 120, false},
		{"lower bound inclusive", domain.FieldAge, 1, false},
		{"upper bound inclusive", domain.FieldInsulin, 900, false},
		{"below minimum", domain.FieldAge, 0, true},
		{"above maximum", domain.FieldPregnancies, 21, true},
		{"fraction on integer field", domain.FieldGlucose, 120.5, true},
		{"fraction on decimal field", domain.FieldPedigree, 2.999, false},
		{"not a number", domain.FieldBMI, math.NaN(), true},
		{"infinite", domain.FieldBMI, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := diabetesNegativeInput()
			input[tt.field] = domain.Num(tt.value)

			err := ValidateBounds(domain.DomainDiabetes, input)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var validationErr *domain.ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestValidateBounds_HeartVessels(t *testing.T) {
	input := heartInput()
	input[domain.FieldVessels] = domain.Num(4)

	err := ValidateBounds(domain.DomainHeart, input)

	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, domain.FieldVessels, validationErr.Field)
	assert.Equal(t, "must be at most 3", validationErr.Message)
}

func TestValidateBounds_UnboundedFields(t *testing.T) {
	heart := heartInput()
	heart[domain.FieldCholesterol] = domain.Num(-40)
	assert.NoError(t, ValidateBounds(domain.DomainHeart, heart))

	parkinsons := parkinsonsInput()
	parkinsons["spread1"] = domain.Num(-7.5)
	assert.NoError(t, ValidateBounds(domain.DomainParkinsons, parkinsons))
}

func TestValidateBounds_LeavesStructuralErrorsToBuilder(t *testing.T) {
	input := diabetesNegativeInput()
	delete(input, domain.FieldAge)
	input[domain.FieldBMI] = domain.Cat("high")

	assert.NoError(t, ValidateBounds(domain.DomainDiabetes, input))
}
