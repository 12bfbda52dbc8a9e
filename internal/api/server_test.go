package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainsait/drg-suite/internal/catalog"
	"github.com/brainsait/drg-suite/internal/domain"
	"github.com/brainsait/drg-suite/internal/engine"
	"github.com/brainsait/drg-suite/internal/feedback"
	"github.com/brainsait/drg-suite/internal/gateway"
	"github.com/brainsait/drg-suite/internal/nudge"
)

type stubConfig struct {
	cfg domain.Config
}

func (s *stubConfig) GetConfig() *domain.Config               { return &s.cfg }
func (s *stubConfig) GetServerConfig() *domain.ServerConfig   { return &s.cfg.Server }
func (s *stubConfig) GetGatewayConfig() *domain.GatewayConfig { return &s.cfg.Gateway }
func (s *stubConfig) Validate() error                         { return nil }

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestServer wires a full server over the builtin catalog, a temp sqlite
// feedback store and a stubbed payer gateway.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := testLogger()

	payer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			json.NewEncoder(w).Encode(map[string]any{"access_token": "test-token", "expires_in": 3600})
		case "/claims":
			json.NewEncoder(w).Encode(domain.ClaimAck{Status: "ACCEPTED", GatewayClaimID: "NPHIES-1"})
		default:
			json.NewEncoder(w).Encode(gateway.ClaimStatus{
				ClaimID: "NPHIES-1", Status: "IN_REVIEW", LastUpdated: time.Now().UTC(),
			})
		}
	}))
	t.Cleanup(payer.Close)

	gatewayClient := gateway.NewClient(domain.GatewayConfig{
		BaseURL:      payer.URL,
		ClientID:     "client",
		ClientSecret: "secret",
		Timeout:      2 * time.Second,
		RateLimit:    1000,
	}, nil, logger)

	automation := domain.AutomationConfig{
		AutonomousThreshold:     0.95,
		SemiAutonomousThreshold: 0.75,
		LowComplexityTag:        "low-complexity outpatient",
	}
	eng, err := engine.New(catalog.Builtin(), automation, gatewayClient, logger)
	require.NoError(t, err)

	store, err := feedback.NewSQLiteStore(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &stubConfig{cfg: domain.Config{
		Server:  domain.ServerConfig{Host: "127.0.0.1", Port: 0},
		Logging: domain.LoggingConfig{Level: "info"},
	}}

	return NewServer(cfg, eng, nudge.NewService(nudge.DefaultRules(), logger),
		nudge.NewSessionManager(logger), store, gatewayClient, logger)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, engine.Version, body["version"])
}

func TestServer_Code(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/code", CodeRequest{
		ClinicalNote: "Diagnosis of appendicitis confirmed by imaging.",
		Encounter: domain.EncounterMeta{
			ID:              "ENC-1",
			VisitComplexity: "inpatient",
			EncounterType:   domain.EncounterInpatient,
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.CodingResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, domain.PhaseSemiAutonomous, result.Phase)
	assert.Empty(t, result.FinalCodes)
	require.NotNil(t, result.Grouping)
	assert.Equal(t, "APR-225", result.Grouping.Code)
}

func TestServer_CodeAutonomous(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/code", CodeRequest{
		ClinicalNote: "Patient presents with classic signs of acute myocardial infarction.",
		Encounter: domain.EncounterMeta{
			ID:              "ENC-2",
			PatientID:       "P-2",
			ProviderCR:      "1010101010",
			VisitComplexity: "low-complexity outpatient",
			EncounterType:   domain.EncounterOutpatient,
		},
		Patient: domain.PatientMeta{NationalID: "1012345671"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.CodingResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, domain.PhaseAutonomous, result.Phase)
	assert.Equal(t, domain.StatusSent, result.Status)
	assert.NotEmpty(t, result.FinalCodes)
}

func TestServer_CodeRequiresNote(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/code", map[string]any{
		"encounter": domain.EncounterMeta{EncounterType: domain.EncounterOutpatient},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_AnalyzeDraft(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/analyze-draft", AnalyzeDraftRequest{
		ClinicalNote: "Admitted with pneumonia.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var analysis nudge.Analysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	require.Len(t, analysis.Nudges, 1)
	assert.Equal(t, "pneumonia_specificity", analysis.Nudges[0].ID)
}

func TestServer_FeedbackLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/feedback", feedback.Feedback{
		EncounterID:   "ENC-1",
		CoderID:       "CODER-1",
		SuggestedCode: "I21.9",
		FinalCode:     "I21.9",
		CoderAgreed:   true,
		Confidence:    0.99,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var saved feedback.Feedback
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	require.NotZero(t, saved.ID)

	w = doJSON(t, s, http.MethodGet, "/api/v1/feedback?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Feedback []feedback.Feedback `json:"feedback"`
		Total    int64               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Feedback, 1)

	w = doJSON(t, s, http.MethodDelete, "/api/v1/feedback/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestServer_FeedbackValidation(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/feedback", feedback.Feedback{
		EncounterID: "ENC-1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_GatewayMetrics(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/gateway/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var m gateway.Metrics
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
}

func TestServer_ClaimStatus(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/claims/NPHIES-1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status gateway.ClaimStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "IN_REVIEW", status.Status)
}
