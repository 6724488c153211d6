package domain

import (
	"context"
)

// Classifier is a binary classifier over fixed-length numeric feature vectors.
// Predict returns one label per row.
type Classifier interface {
	Predict(ctx context.Context, vectors [][]float64) ([]int, error)
}

// ModelAdapter runs a domain's classifier on one feature vector
type ModelAdapter interface {
	Predict(ctx context.Context, d Domain, vector FeatureVector) (PredictionResult, error)
}

// DocumentRenderer turns a composed report into a downloadable document
type DocumentRenderer interface {
	Render(report *Report) (*Document, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	Validate() error
	IsProduction() bool
}
