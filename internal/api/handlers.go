package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/disease-predictor/internal/audit"
	"github.com/disease-predictor/internal/cache"
	"github.com/disease-predictor/internal/domain"
	"github.com/disease-predictor/internal/middleware"
	"github.com/disease-predictor/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type domainInfo struct {
	Domain     domain.Domain     `json:"domain"`
	Name       string            `json:"name"`
	MenuLabel  string            `json:"menu_label"`
	Available  bool              `json:"available"`
	Documented bool              `json:"documented"`
	Fields     []domain.FieldDef `json:"fields"`
}

type documentLink struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type predictionResponse struct {
	ID              string               `json:"id,omitempty"`
	Domain          domain.Domain        `json:"domain"`
	Label           int                  `json:"label"`
	Positive        bool                 `json:"positive"`
	ModelVersion    string               `json:"model_version,omitempty"`
	Message         string               `json:"message"`
	Explanation     string               `json:"explanation"`
	FeatureVector   domain.FeatureVector `json:"feature_vector"`
	RiskFlags       []domain.RiskFlag    `json:"risk_flags"`
	Recommendations []string             `json:"recommendations"`
	GeneratedAt     time.Time            `json:"generated_at"`
	Document        *documentLink        `json:"document,omitempty"`
}

type predictionList struct {
	Entries []*audit.Entry `json:"entries"`
	Total   int64          `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

func (s *Server) handleHealth(c *gin.Context) {
	statuses := s.registry.Status()

	status := "healthy"
	for _, st := range statuses {
		if !st.Available {
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"version":   Version,
		"models":    statuses,
	})
}

func (s *Server) describe(p *service.Pipeline) domainInfo {
	return domainInfo{
		Domain:     p.Domain(),
		Name:       p.Domain().DisplayName(),
		MenuLabel:  p.Domain().MenuLabel(),
		Available:  s.registry.Available(p.Domain()),
		Documented: p.Documented(),
		Fields:     p.Spec().Fields,
	}
}

func (s *Server) handleListDomains(c *gin.Context) {
	pipelines := s.predictions.Pipelines()
	domains := make([]domainInfo, 0, len(pipelines))
	for _, p := range pipelines {
		domains = append(domains, s.describe(p))
	}
	c.JSON(http.StatusOK, gin.H{"domains": domains})
}

func (s *Server) handleGetDomain(c *gin.Context) {
	pipeline, err := s.predictions.Route(c.Param("domain"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.describe(pipeline))
}

// handlePredict runs one submission through its domain pipeline. Document
// rendering and the audit trail are best effort: their failures are logged
// and never change the prediction answer.
func (s *Server) handlePredict(c *gin.Context) {
	pipeline, err := s.predictions.Route(c.Param("domain"))
	if err != nil {
		respondError(c, err)
		return
	}

	var input domain.PatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, domain.NewValidationError("body", "must be a JSON object of field values: "+err.Error(), nil))
		return
	}

	ctx := c.Request.Context()
	outcome, err := pipeline.Run(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := predictionResponse{
		Domain:          outcome.Result.Domain,
		Label:           outcome.Result.Label,
		Positive:        outcome.Result.Positive(),
		ModelVersion:    outcome.Result.ModelVersion,
		Message:         outcome.Message,
		Explanation:     outcome.Explanation,
		FeatureVector:   outcome.Vector,
		RiskFlags:       outcome.Report.Flags,
		Recommendations: outcome.Report.Recommendations,
		GeneratedAt:     outcome.Report.GeneratedAt,
	}
	if resp.RiskFlags == nil {
		resp.RiskFlags = []domain.RiskFlag{}
	}

	requestID := c.GetString(middleware.CorrelationIDKey)
	fields := logrus.Fields{"domain": pipeline.Domain(), "correlation_id": requestID}

	if outcome.OfferDocument {
		link, err := s.storeDocument(ctx, pipeline, outcome.Report)
		if err != nil {
			s.logger.WithFields(fields).WithError(err).Warn("Report document unavailable")
		} else {
			resp.Document = link
		}
	}

	entry := &audit.Entry{
		Domain:          outcome.Result.Domain,
		Label:           outcome.Result.Label,
		ModelVersion:    outcome.Result.ModelVersion,
		DocumentOffered: resp.Document != nil,
		RequestID:       requestID,
	}
	if resp.Document != nil {
		entry.DocumentID = resp.Document.ID
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.WithFields(fields).WithError(err).Warn("Failed to record prediction")
	} else {
		resp.ID = entry.ID
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) storeDocument(ctx context.Context, p *service.Pipeline, rep *domain.Report) (*documentLink, error) {
	doc, err := p.Document(rep)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	if err := s.documents.Put(ctx, id, doc); err != nil {
		return nil, err
	}
	return &documentLink{
		ID:       id,
		Filename: doc.Filename,
		URL:      "/api/v1/reports/" + id,
	}, nil
}

func (s *Server) handleGetReport(c *gin.Context) {
	id := c.Param("id")
	doc, err := s.documents.Get(c.Request.Context(), id)
	if errors.Is(err, cache.ErrNotFound) {
		respondNotFound(c, fmt.Sprintf("report %s not found or expired", id))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

func (s *Server) handleListPredictions(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultListLimit, 1, maxListLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	offset, err := queryInt(c, "offset", 0, 0, -1)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	entries, err := s.audit.List(ctx, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := s.audit.Count(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, predictionList{Entries: entries, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleGetPrediction(c *gin.Context) {
	id := c.Param("id")
	entry, err := s.audit.Get(c.Request.Context(), id)
	if errors.Is(err, audit.ErrNotFound) {
		respondNotFound(c, fmt.Sprintf("prediction %s not found", id))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// queryInt parses an optional integer query parameter. A negative upper
// bound means unbounded.
func queryInt(c *gin.Context, name string, def, lo, hi int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", raw)
	}
	if n < lo || (hi >= 0 && n > hi) {
		return 0, domain.NewValidationError(name, "out of range", n)
	}
	return n, nil
}
