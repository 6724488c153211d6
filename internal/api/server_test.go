package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disease-predictor/internal/audit"
	"github.com/disease-predictor/internal/cache"
	"github.com/disease-predictor/internal/domain"
	"github.com/disease-predictor/internal/middleware"
	"github.com/disease-predictor/internal/model"
	"github.com/disease-predictor/internal/report"
	"github.com/disease-predictor/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubConfigManager struct {
	cfg        *domain.Config
	production bool
}

func (m *stubConfigManager) GetConfig() *domain.Config             { return m.cfg }
func (m *stubConfigManager) GetServerConfig() *domain.ServerConfig { return &m.cfg.Server }
func (m *stubConfigManager) Validate() error                       { return nil }
func (m *stubConfigManager) IsProduction() bool                    { return m.production }

// fixedClassifier answers every row with the same label
type fixedClassifier struct {
	label int
	err   error
}

func (f fixedClassifier) Predict(ctx context.Context, vectors [][]float64) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	labels := make([]int, len(vectors))
	for i := range labels {
		labels[i] = f.label
	}
	return labels, nil
}

type testServer struct {
	server *Server
	audit  audit.Store
}

// failingRenderer never produces a document
type failingRenderer struct{}

func (failingRenderer) Render(*domain.Report) (*domain.Document, error) {
	return nil, errors.New("font missing")
}

// failingCache rejects every document
type failingCache struct {
	cache.DocumentCache
}

func (failingCache) Put(context.Context, string, *domain.Document) error {
	return errors.New("redis: connection refused")
}

func newTestServer(t *testing.T, classifiers map[domain.Domain]domain.Classifier) *testServer {
	t.Helper()
	return newTestServerWith(t, classifiers, report.NewPDFRenderer(), cache.NewMemoryCache(16, time.Minute))
}

func newTestServerWith(t *testing.T, classifiers map[domain.Domain]domain.Classifier, renderer domain.DocumentRenderer, documents cache.DocumentCache) *testServer {
	t.Helper()
	logger, _ := test.NewNullLogger()

	store, err := audit.NewSQLiteStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	registry := model.NewStaticRegistry(classifiers, logger)
	router := service.NewRouter(registry, renderer, domain.OfferNegativeOnly, logger)

	cfg := &domain.Config{
		Server: domain.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: 5 * time.Second,
		},
		Logging: domain.LoggingConfig{Level: "info"},
	}

	server := NewServer(&stubConfigManager{cfg: cfg}, Dependencies{
		Router:    router,
		Registry:  registry,
		Documents: documents,
		Audit:     store,
		Logger:    logger,
	})
	return &testServer{server: server, audit: store}
}

func (ts *testServer) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	return w
}

func diabetesBody(t *testing.T, glucose float64) []byte {
	t.Helper()
	body, err := json.Marshal(domain.PatientInput{
		domain.FieldPregnancies:   domain.Num(1),
		domain.FieldGlucose:       domain.Num(glucose),
		domain.FieldBloodPressure: domain.Num(66),
		domain.FieldSkinThickness: domain.Num(29),
		domain.FieldInsulin:       domain.Num(0),
		domain.FieldBMI:           domain.Num(26.6),
		domain.FieldPedigree:      domain.Num(0.351),
		domain.FieldAge:           domain.Num(31),
	})
	require.NoError(t, err)
	return body
}

func parkinsonsBody(t *testing.T) []byte {
	t.Helper()
	input := make(domain.PatientInput, len(domain.ParkinsonsFields))
	for i, name := range domain.ParkinsonsFields {
		input[name] = domain.Num(float64(i))
	}
	body, err := json.Marshal(input)
	require.NoError(t, err)
	return body
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth_ReportsMissingModels(t *testing.T) {
	ts := newTestServer(t, map[domain.Domain]domain.Classifier{
		domain.DomainDiabetes: fixedClassifier{},
		domain.DomainHeart:    fixedClassifier{},
	})

	w := ts.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string              `json:"status"`
		Models []model.ModelStatus `json:"models"`
	}
	decode(t, w, &body)
	assert.Equal(t, "degraded", body.Status)
	require.Len(t, body.Models, 3)
	assert.False(t, body.Models[2].Available)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestNewServer_ProductionSendsHSTS(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := &domain.Config{
		Environment: "production",
		Server:      domain.ServerConfig{RequestTimeout: 5 * time.Second},
		Logging:     domain.LoggingConfig{Level: "debug"},
	}
	registry := model.NewStaticRegistry(nil, logger)
	server := NewServer(&stubConfigManager{cfg: cfg, production: true}, Dependencies{
		Router:    service.NewRouter(registry, report.NewPDFRenderer(), domain.OfferNegativeOnly, logger),
		Registry:  registry,
		Documents: cache.NewMemoryCache(16, time.Minute),
		Logger:    logger,
	})

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, gin.TestMode, gin.Mode())
}

func TestListDomains(t *testing.T) {
	ts := newTestServer(t, map[domain.Domain]domain.Classifier{
		domain.DomainDiabetes: fixedClassifier{},
	})

	w := ts.do(t, http.MethodGet, "/api/v1/domains", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Domains []domainInfo `json:"domains"`
	}
	decode(t, w, &body)
	require.Len(t, body.Domains, 3)

	assert.Equal(t, domain.DomainDiabetes, body.Domains[0].Domain)
	assert.True(t, body.Domains[0].Available)
	assert.Len(t, body.Domains[0].Fields, 8)

	heart := body.Domains[1]
	assert.False(t, heart.Available)
	assert.True(t, heart.Documented)
	require.Len(t, heart.Fields, 13)
	assert.Equal(t, domain.FieldCategorical, heart.Fields[1].Kind)
	assert.Len(t, heart.Fields[1].Categories, 2)

	assert.False(t, body.Domains[2].Documented)
	assert.Len(t, body.Domains[2].Fields, 22)
}

func TestGetDomain_ByMenuLabel(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/v1/domains/Heart%20Disease%20Prediction", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var info domainInfo
	decode(t, w, &info)
	assert.Equal(t, domain.DomainHeart, info.Domain)
}

func TestPredict_NegativeOffersDownload(t *testing.T) {
	ts := newTestServer(t, map[domain.Domain]domain.Classifier{
		domain.DomainDiabetes: fixedClassifier{label: 0},
	})

	w := ts.do(t, http.MethodPost, "/api/v1/predict/diabetes", diabetesBody(t, 85))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp predictionResponse
	decode(t, w, &resp)
	assert.Equal(t, 0, resp.Label)
	assert.False(t, resp.Positive)
	assert.Equal(t, "The model predicts that this patient is unlikely to have **Diabetes**.", resp.Message)
	assert.Equal(t, domain.FeatureVector{1, 85, 66, 29, 0, 26.6, 0.351, 31}, resp.FeatureVector)
	assert.Len(t, resp.RiskFlags, 4)
	assert.Contains(t, resp.Explanation, "### Next Steps:")
	require.NotNil(t, resp.Document)
	assert.Equal(t, "diabetes_detailed_report.pdf", resp.Document.Filename)
	require.NotEmpty(t, resp.ID)

	pdf := ts.do(t, http.MethodGet, resp.Document.URL, nil)
	require.Equal(t, http.StatusOK, pdf.Code)
	assert.Equal(t, report.ContentTypePDF, pdf.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="diabetes_detailed_report.pdf"`, pdf.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(pdf.Body.Bytes(), []byte("%PDF")))

	entry, err := ts.audit.Get(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.True(t, entry.DocumentOffered)
	assert.Equal(t, resp.Document.ID, entry.DocumentID)
	assert.Equal(t, w.Header().Get(middleware.CorrelationIDHeader), entry.RequestID)
}

func TestPredict_PositiveWithholdsDownload(t *testing.T) {
	ts := newTestServer(t, map[domain.Domain]domain.Classifier{
		domain.DomainDiabetes: fixedClassifier{label: 1},
	})

	w := ts.do(t, http.MethodPost, "/api/v1/predict/diabetes", diabetesBody(t, 160))

	require.Equal(t, http.StatusOK, w.Code)
	var resp predictionResponse
	decode(t, w, &resp)
	assert.True(t, resp.Positive)
	assert.Nil(t, resp.Document)
	assert.Contains(t, resp.Recommendations, "Please consult a doctor for further evaluation.")
}

func TestPredict_ParkinsonsHasNoDocument(t *testing.T) {
	ts := newTestServer(t, map[domain.Domain]domain.Classifier{
		domain.DomainParkinsons: fixedClassifier{label: 0},
	})

	w := ts.do(t, http.MethodPost, "/api/v1/predict/parkinsons", parkinsonsBody(t))

	require.Equal(t, http.StatusOK, w.Code)
	var resp predictionResponse
	decode(t, w, &resp)
	assert.Nil(t, resp.Document)
	assert.NotNil(t, resp.RiskFlags)
	assert.Len(t, resp.Recommendations, 2)
}

func TestPredict_DocumentFailureKeepsPrediction(t *testing.T) {
	classifiers := map[domain.Domain]domain.Classifier{
		domain.DomainDiabetes: fixedClassifier{label: 0},
	}

	tests := []struct {
		name      string
		renderer  domain.DocumentRenderer
		documents cache.DocumentCache
	}{
		{"render failure", failingRenderer{}, cache.NewMemoryCache(16, time.Minute)},
		{"cache failure", report.NewPDFRenderer(), failingCache{cache.NewMemoryCache(16, time.Minute)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServerWith(t, classifiers, tt.renderer, tt.documents)

			w := ts.do(t, http.MethodPost, "/api/v1/predict/diabetes", diabetesBody(t, 85))

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var resp predictionResponse
			decode(t, w, &resp)
			assert.Equal(t, 0, resp.Label)
			assert.Contains(t, resp.Message, "unlikely to have **Diabetes**")
			assert.Contains(t, resp.Explanation, "### Next Steps:")
			assert.Nil(t, resp.Document)

			var raw map[string]json.RawMessage
			decode(t, w, &raw)
			assert.NotContains(t, raw, "document")

			entry, err := ts.audit.Get(context.Background(), resp.ID)
			require.NoError(t, err)
			assert.False(t, entry.DocumentOffered)
			assert.Empty(t, entry.DocumentID)
		})
	}
}

func TestPredict_Errors(t *testing.T) {
	ts := newTestServer(t, map[domain.Domain]domain.Classifier{
		domain.DomainDiabetes: fixedClassifier{err: errors.New("connection refused")},
		domain.DomainHeart:    fixedClassifier{},
	})

	heartBody := func(sex string) []byte {
		body, err := json.Marshal(map[string]interface{}{
			"age": 63, "sex": sex, "cp": "Asymptomatic", "trestbps": 145, "chol": 233,
			"fbs": "Yes", "restecg": "Normal", "thalach": 150, "exang": "No",
			"oldpeak": 2.3, "slope": "Upsloping", "ca": 0, "thal": "Reversible Defect",
		})
		require.NoError(t, err)
		return body
	}

	nullGlucose := []byte(`{"Pregnancies": 1, "Glucose": null, "BloodPressure": 66, "SkinThickness": 29,
		"Insulin": 0, "BMI": 26.6, "DiabetesPedigreeFunction": 0.351, "Age": 31}`)
	nullSex := bytes.Replace(heartBody("Male"), []byte(`"sex":"Male"`), []byte(`"sex":null`), 1)

	tests := []struct {
		name       string
		path       string
		body       []byte
		wantStatus int
		wantCode   string
	}{
		{"invalid category", "/api/v1/predict/heart", heartBody("Unknown"), http.StatusBadRequest, domain.ErrCodeInvalidCategory},
		{"incomplete input", "/api/v1/predict/heart", []byte(`{"age": 63}`), http.StatusBadRequest, domain.ErrCodeIncompleteInput},
		{"out of range", "/api/v1/predict/diabetes", diabetesBody(t, 500), http.StatusBadRequest, domain.ErrCodeValidation},
		{"null measurement", "/api/v1/predict/diabetes", nullGlucose, http.StatusBadRequest, domain.ErrCodeIncompleteInput},
		{"null category", "/api/v1/predict/heart", nullSex, http.StatusBadRequest, domain.ErrCodeIncompleteInput},
		{"malformed body", "/api/v1/predict/heart", []byte(`{"age": [`), http.StatusBadRequest, domain.ErrCodeValidation},
		{"unknown domain", "/api/v1/predict/kidney", []byte(`{}`), http.StatusNotFound, domain.ErrCodeUnknownDomain},
		{"model unavailable", "/api/v1/predict/parkinsons", parkinsonsBody(t), http.StatusServiceUnavailable, domain.ErrCodeModelUnavailable},
		{"inference failure", "/api/v1/predict/diabetes", diabetesBody(t, 85), http.StatusBadGateway, domain.ErrCodeInferenceFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			var resp domain.ErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, w.Header().Get(middleware.CorrelationIDHeader), resp.RequestID)
		})
	}

	count, err := ts.audit.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "failed predictions are not audited")
}

func TestGetReport_NotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/v1/reports/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp domain.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, domain.ErrCodeNotFound, resp.Code)
}

func TestListPredictions(t *testing.T) {
	ts := newTestServer(t, map[domain.Domain]domain.Classifier{
		domain.DomainDiabetes: fixedClassifier{label: 0},
	})
	for i := 0; i < 3; i++ {
		w := ts.do(t, http.MethodPost, "/api/v1/predict/diabetes", diabetesBody(t, 85))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := ts.do(t, http.MethodGet, "/api/v1/predictions?limit=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var list predictionList
	decode(t, w, &list)
	assert.Equal(t, int64(3), list.Total)
	assert.Len(t, list.Entries, 2)
	assert.Equal(t, 2, list.Limit)

	one := ts.do(t, http.MethodGet, "/api/v1/predictions/"+list.Entries[0].ID, nil)
	assert.Equal(t, http.StatusOK, one.Code)

	missing := ts.do(t, http.MethodGet, "/api/v1/predictions/missing", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	for _, query := range []string{"limit=0", "limit=abc", "limit=501", "offset=-1"} {
		bad := ts.do(t, http.MethodGet, "/api/v1/predictions?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, bad.Code, query)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/predict/diabetes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
