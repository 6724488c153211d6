package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/disease-predictor/internal/domain"
	"github.com/disease-predictor/internal/report"
)

// Outcome is everything one prediction produces for display
type Outcome struct {
	Result        domain.PredictionResult
	Vector        domain.FeatureVector
	Report        *domain.Report
	Message       string
	Explanation   string
	OfferDocument bool
}

// Pipeline runs the prediction-to-report flow of a single domain
type Pipeline struct {
	domain   domain.Domain
	spec     domain.FeatureSpec
	model    domain.ModelAdapter
	renderer domain.DocumentRenderer
	policy   string
	logger   *logrus.Logger
	now      func() time.Time
}

// Domain returns the domain served by the pipeline
func (p *Pipeline) Domain() domain.Domain {
	return p.domain
}

// Spec returns the form schema of the domain
func (p *Pipeline) Spec() domain.FeatureSpec {
	return p.spec
}

// Documented reports whether the domain has a document layout
func (p *Pipeline) Documented() bool {
	return p.renderer != nil
}

// Offers reports whether a document is offered for a result under the
// configured offer policy.
func (p *Pipeline) Offers(result domain.PredictionResult) bool {
	if p.renderer == nil {
		return false
	}
	if p.policy == domain.OfferAlways {
		return true
	}
	return !result.Positive()
}

// Run validates and encodes the input, queries the model, then annotates and
// composes the report.
func (p *Pipeline) Run(ctx context.Context, input domain.PatientInput) (*Outcome, error) {
	start := time.Now()

	// Step 1: enforce form bounds
	if err := ValidateBounds(p.domain, input); err != nil {
		return nil, err
	}

	// Step 2: encode categories and order features
	vector, err := BuildFeatureVector(p.domain, input)
	if err != nil {
		return nil, err
	}

	// Step 3: inference
	result, err := p.model.Predict(ctx, p.domain, vector)
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"domain": p.domain,
		}).WithError(err).Warn("Prediction failed")
		return nil, err
	}

	// Step 4: annotate and compose
	flags := Annotate(p.domain, input)
	rep := report.Compose(result, input, flags, p.now())

	outcome := &Outcome{
		Result:        result,
		Vector:        vector,
		Report:        rep,
		Message:       report.Message(result),
		Explanation:   report.Explain(rep),
		OfferDocument: p.Offers(result),
	}

	p.logger.WithFields(logrus.Fields{
		"domain":         p.domain,
		"label":          result.Label,
		"model_version":  result.ModelVersion,
		"offer_document": outcome.OfferDocument,
		"duration":       time.Since(start),
	}).Info("Prediction completed")

	return outcome, nil
}

// Document renders the downloadable report of an outcome
func (p *Pipeline) Document(rep *domain.Report) (*domain.Document, error) {
	if p.renderer == nil {
		return nil, report.ErrNotDocumented
	}
	return p.renderer.Render(rep)
}
