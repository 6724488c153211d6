package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disease-predictor/internal/domain"
)

func TestRemoteClassifier_Predict(t *testing.T) {
	logger, _ := test.NewNullLogger()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req inferenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Instances, 1)
		assert.Len(t, req.Instances[0], 13)

		_ = json.NewEncoder(w).Encode(inferenceResponse{Predictions: []int{1}, ModelVersion: "svc-2024"})
	}))
	defer server.Close()

	classifier := NewRemoteClassifier(domain.DomainHeart, domain.ModelSource{
		Endpoint: server.URL,
		Timeout:  time.Second,
	}, logger)

	labels, err := classifier.Predict(context.Background(), [][]float64{make([]float64, 13)})

	require.NoError(t, err)
	assert.Equal(t, []int{1}, labels)
}

func TestRemoteClassifier_CircuitOpensAfterFailures(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var hits int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	classifier := NewRemoteClassifier(domain.DomainDiabetes, domain.ModelSource{Endpoint: server.URL}, logger)
	vectors := [][]float64{make([]float64, 8)}

	for i := 0; i < 3; i++ {
		_, err := classifier.Predict(context.Background(), vectors)
		assert.Error(t, err)
	}

	_, err := classifier.Predict(context.Background(), vectors)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestRemoteClassifier_PredictionCountMismatch(t *testing.T) {
	logger, _ := test.NewNullLogger()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(inferenceResponse{Predictions: []int{}})
	}))
	defer server.Close()

	classifier := NewRemoteClassifier(domain.DomainDiabetes, domain.ModelSource{Endpoint: server.URL}, logger)

	_, err := classifier.Predict(context.Background(), [][]float64{make([]float64, 8)})
	assert.Error(t, err)
}

func TestRemoteClassifier_RateLimitHonorsContext(t *testing.T) {
	logger, _ := test.NewNullLogger()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(inferenceResponse{Predictions: []int{0}})
	}))
	defer server.Close()

	classifier := NewRemoteClassifier(domain.DomainDiabetes, domain.ModelSource{
		Endpoint:  server.URL,
		RateLimit: 1,
	}, logger)

	_, err := classifier.Predict(context.Background(), [][]float64{make([]float64, 8)})
	require.NoError(t, err)

	// The single token is spent; a second call cannot wait a full second.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = classifier.Predict(ctx, [][]float64{make([]float64, 8)})
	assert.Error(t, err)
}

func TestNewRegistry_RemoteSource(t *testing.T) {
	logger, _ := test.NewNullLogger()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(inferenceResponse{Predictions: []int{1}})
	}))
	defer server.Close()

	registry := NewRegistry(domain.ModelsConfig{
		Parkinsons: domain.ModelSource{Endpoint: server.URL},
	}, logger)

	result, err := registry.Predict(context.Background(), domain.DomainParkinsons, make(domain.FeatureVector, 22))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Label)
	assert.Equal(t, "remote", result.ModelVersion)
}
