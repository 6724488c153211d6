// Package model loads the pre-trained classifiers and exposes them through a
// read-only registry shared by every request.
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/disease-predictor/internal/domain"
)

// KindLinear is a linear decision function: label 1 iff w·x + b > 0.
// This matches predict() of linear SVC and logistic regression models.
const KindLinear = "linear"

// Artifact is the serialized form of a trained model
type Artifact struct {
	Domain       domain.Domain `json:"domain"`
	Kind         string        `json:"kind"`
	Version      string        `json:"version"`
	NFeatures    int           `json:"n_features"`
	Coefficients []float64     `json:"coefficients"`
	Intercept    float64       `json:"intercept"`
	Scaler       *Scaler       `json:"scaler,omitempty"`
}

// Scaler standardizes features before the decision function: (x-mean)/scale
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LinearModel is an immutable classifier built from an Artifact
type LinearModel struct {
	artifact Artifact
}

// LoadArtifact reads and validates a model artifact from disk
func LoadArtifact(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decoding model artifact %s: %w", path, err)
	}

	return NewLinearModel(artifact)
}

// NewLinearModel validates an artifact and wraps it as a classifier
func NewLinearModel(artifact Artifact) (*LinearModel, error) {
	if artifact.Kind != KindLinear {
		return nil, fmt.Errorf("unsupported model kind %q", artifact.Kind)
	}
	if artifact.NFeatures <= 0 {
		return nil, fmt.Errorf("model declares %d features", artifact.NFeatures)
	}
	if len(artifact.Coefficients) != artifact.NFeatures {
		return nil, fmt.Errorf("model has %d coefficients for %d features", len(artifact.Coefficients), artifact.NFeatures)
	}
	if s := artifact.Scaler; s != nil {
		if len(s.Mean) != artifact.NFeatures || len(s.Scale) != artifact.NFeatures {
			return nil, fmt.Errorf("scaler size does not match %d features", artifact.NFeatures)
		}
		for i, v := range s.Scale {
			if v == 0 {
				return nil, fmt.Errorf("scaler has zero scale at feature %d", i)
			}
		}
	}
	return &LinearModel{artifact: artifact}, nil
}

// Domain returns the domain the artifact was trained for
func (m *LinearModel) Domain() domain.Domain {
	return m.artifact.Domain
}

// Version returns the artifact version string
func (m *LinearModel) Version() string {
	return m.artifact.Version
}

// NFeatures returns the expected vector length
func (m *LinearModel) NFeatures() int {
	return m.artifact.NFeatures
}

// Decision returns the raw decision function value for one vector
func (m *LinearModel) Decision(vector []float64) (float64, error) {
	if len(vector) != m.artifact.NFeatures {
		return 0, fmt.Errorf("expected %d features, got %d", m.artifact.NFeatures, len(vector))
	}
	sum := m.artifact.Intercept
	for i, x := range vector {
		if s := m.artifact.Scaler; s != nil {
			x = (x - s.Mean[i]) / s.Scale[i]
		}
		sum += m.artifact.Coefficients[i] * x
	}
	return sum, nil
}

// Predict implements domain.Classifier
func (m *LinearModel) Predict(ctx context.Context, vectors [][]float64) ([]int, error) {
	labels := make([]int, len(vectors))
	for i, v := range vectors {
		decision, err := m.Decision(v)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if decision > 0 {
			labels[i] = 1
		}
	}
	return labels, nil
}
