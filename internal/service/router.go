package service

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/disease-predictor/internal/domain"
	"github.com/disease-predictor/internal/report"
)

// Router dispatches a domain selection to its pipeline
type Router struct {
	pipelines map[domain.Domain]*Pipeline
}

// RouterOption customizes the pipelines built by NewRouter
type RouterOption func(*Pipeline)

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) RouterOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewRouter builds one pipeline per domain. Only domains with a document
// layout receive the renderer.
func NewRouter(model domain.ModelAdapter, renderer domain.DocumentRenderer, offerPolicy string, logger *logrus.Logger, opts ...RouterOption) *Router {
	if offerPolicy == "" {
		offerPolicy = domain.OfferNegativeOnly
	}

	r := &Router{pipelines: make(map[domain.Domain]*Pipeline, len(domain.AllDomains))}
	for _, d := range domain.AllDomains {
		spec, _ := domain.SpecFor(d)
		p := &Pipeline{
			domain: d,
			spec:   spec,
			model:  model,
			policy: offerPolicy,
			logger: logger,
			now:    time.Now,
		}
		if renderer != nil && report.Documented(d) {
			p.renderer = renderer
		}
		for _, opt := range opts {
			opt(p)
		}
		r.pipelines[d] = p
	}
	return r
}

// Route resolves a domain key or a menu label to its pipeline
func (r *Router) Route(selection string) (*Pipeline, error) {
	selection = strings.TrimSpace(selection)
	for _, d := range domain.AllDomains {
		if strings.EqualFold(selection, string(d)) || selection == d.MenuLabel() {
			return r.pipelines[d], nil
		}
	}
	return nil, domain.NewUnknownDomainError(selection)
}

// Pipelines returns the pipelines in menu order
func (r *Router) Pipelines() []*Pipeline {
	out := make([]*Pipeline, 0, len(domain.AllDomains))
	for _, d := range domain.AllDomains {
		out = append(out, r.pipelines[d])
	}
	return out
}
