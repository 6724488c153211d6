package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/disease-predictor/internal/domain"
)

// ModelStatus describes the load state of one domain's model
type ModelStatus struct {
	Domain    domain.Domain `json:"domain"`
	Available bool          `json:"available"`
	Source    string        `json:"source,omitempty"`
	Version   string        `json:"version,omitempty"`
	Error     string        `json:"error,omitempty"`
}

type entry struct {
	classifier domain.Classifier
	source     string
	version    string
	err        error
}

// Registry holds the classifier of every domain. It is built once at startup
// and never mutated afterwards, so concurrent reads need no locking.
type Registry struct {
	entries map[domain.Domain]entry
	logger  *logrus.Logger
}

// NewRegistry loads every configured model. A domain whose artifact fails to
// load is kept as unavailable; the other domains are unaffected.
func NewRegistry(cfg domain.ModelsConfig, logger *logrus.Logger) *Registry {
	r := &Registry{
		entries: make(map[domain.Domain]entry, len(domain.AllDomains)),
		logger:  logger,
	}

	for _, d := range domain.AllDomains {
		e := loadEntry(d, cfg.Source(d), logger)
		r.entries[d] = e

		fields := logrus.Fields{"domain": d, "source": e.source}
		if e.err != nil {
			logger.WithFields(fields).WithError(e.err).Error("Model unavailable")
			continue
		}
		fields["version"] = e.version
		logger.WithFields(fields).Info("Model loaded")
	}

	return r
}

// NewStaticRegistry wraps already constructed classifiers. Domains missing
// from the map are unavailable.
func NewStaticRegistry(classifiers map[domain.Domain]domain.Classifier, logger *logrus.Logger) *Registry {
	r := &Registry{
		entries: make(map[domain.Domain]entry, len(domain.AllDomains)),
		logger:  logger,
	}
	for _, d := range domain.AllDomains {
		c, ok := classifiers[d]
		if !ok {
			r.entries[d] = entry{err: errors.New("no classifier registered")}
			continue
		}
		r.entries[d] = entry{classifier: c, source: "static"}
	}
	return r
}

func loadEntry(d domain.Domain, source domain.ModelSource, logger *logrus.Logger) entry {
	switch {
	case source.Endpoint != "":
		return entry{
			classifier: NewRemoteClassifier(d, source, logger),
			source:     source.Endpoint,
			version:    "remote",
		}
	case source.Path != "":
		m, err := LoadArtifact(source.Path)
		if err != nil {
			return entry{source: source.Path, err: err}
		}
		spec, _ := domain.SpecFor(d)
		if m.Domain() != "" && m.Domain() != d {
			return entry{source: source.Path, err: fmt.Errorf("artifact was trained for %q", m.Domain())}
		}
		if m.NFeatures() != len(spec.Fields) {
			return entry{source: source.Path, err: fmt.Errorf("artifact expects %d features, domain has %d", m.NFeatures(), len(spec.Fields))}
		}
		return entry{classifier: m, source: source.Path, version: m.Version()}
	default:
		return entry{err: errors.New("no model source configured")}
	}
}

// Available reports whether a domain can serve predictions
func (r *Registry) Available(d domain.Domain) bool {
	e, ok := r.entries[d]
	return ok && e.err == nil
}

// Status returns the load state of every domain in menu order
func (r *Registry) Status() []ModelStatus {
	statuses := make([]ModelStatus, 0, len(domain.AllDomains))
	for _, d := range domain.AllDomains {
		e := r.entries[d]
		s := ModelStatus{Domain: d, Available: e.err == nil, Source: e.source, Version: e.version}
		if e.err != nil {
			s.Error = e.err.Error()
		}
		statuses = append(statuses, s)
	}
	return statuses
}

// Predict implements domain.ModelAdapter
func (r *Registry) Predict(ctx context.Context, d domain.Domain, vector domain.FeatureVector) (domain.PredictionResult, error) {
	e, ok := r.entries[d]
	if !ok {
		return domain.PredictionResult{}, domain.NewUnknownDomainError(string(d))
	}
	if e.err != nil {
		return domain.PredictionResult{}, domain.NewModelUnavailableError(d, e.err)
	}

	spec, _ := domain.SpecFor(d)
	if len(vector) != len(spec.Fields) {
		return domain.PredictionResult{}, domain.NewIncompleteInputError(d, "",
			fmt.Sprintf("feature vector has %d values, model expects %d", len(vector), len(spec.Fields)))
	}

	labels, err := e.classifier.Predict(ctx, [][]float64{vector})
	if err != nil {
		var predErr *domain.PredictionError
		if errors.As(err, &predErr) {
			return domain.PredictionResult{}, err
		}
		return domain.PredictionResult{}, domain.NewInferenceError(d, err)
	}
	if len(labels) != 1 {
		return domain.PredictionResult{}, domain.NewInferenceError(d, fmt.Errorf("expected 1 label, got %d", len(labels)))
	}
	if labels[0] != 0 && labels[0] != 1 {
		return domain.PredictionResult{}, domain.NewInferenceError(d, fmt.Errorf("label %d is not binary", labels[0]))
	}

	return domain.PredictionResult{
		Domain:       d,
		Label:        labels[0],
		ModelVersion: e.version,
	}, nil
}
