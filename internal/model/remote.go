package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/disease-predictor/internal/domain"
)

// inferenceRequest is the body posted to a remote inference service
type inferenceRequest struct {
	Instances [][]float64 `json:"instances"`
}

// inferenceResponse is the body returned by a remote inference service
type inferenceResponse struct {
	Predictions  []int  `json:"predictions"`
	ModelVersion string `json:"model_version,omitempty"`
}

// RemoteClassifier calls an external inference service for one domain
type RemoteClassifier struct {
	domain     domain.Domain
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

// NewRemoteClassifier creates a rate-limited, circuit-broken inference client
func NewRemoteClassifier(d domain.Domain, source domain.ModelSource, logger *logrus.Logger) *RemoteClassifier {
	timeout := source.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if source.RateLimit > 0 {
		limit = rate.Limit(source.RateLimit)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        fmt.Sprintf("inference-%s", d),
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Inference circuit breaker changed state")
		},
	})

	return &RemoteClassifier{
		domain:     d,
		endpoint:   source.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    breaker,
		logger:     logger,
	}
}

// Predict implements domain.Classifier
func (c *RemoteClassifier) Predict(ctx context.Context, vectors [][]float64) ([]int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.call(ctx, vectors)
	})
	if err != nil {
		return nil, err
	}

	labels := result.([]int)
	if len(labels) != len(vectors) {
		return nil, fmt.Errorf("inference service returned %d predictions for %d rows", len(labels), len(vectors))
	}
	return labels, nil
}

func (c *RemoteClassifier) call(ctx context.Context, vectors [][]float64) ([]int, error) {
	body, err := json.Marshal(inferenceRequest{Instances: vectors})
	if err != nil {
		return nil, fmt.Errorf("encoding inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("inference service returned %d: %s", resp.StatusCode, string(msg))
	}

	var decoded inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding inference response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"domain":        c.domain,
		"rows":          len(vectors),
		"model_version": decoded.ModelVersion,
		"latency":       time.Since(start),
	}).Debug("Remote inference completed")

	return decoded.Predictions, nil
}
