package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suri/internal/delivery"
	"suri/internal/executor"
	"suri/internal/extract"
	"suri/internal/intent"
	"suri/internal/logging"
	"suri/internal/permission"
	"suri/internal/pipeline"
	"suri/internal/suggest"
	"suri/internal/temporal"
	"suri/internal/types"
)

func testServer(t *testing.T) (*Server, *delivery.MemoryCalendar) {
	t.Helper()
	clock := func() time.Time { return time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local) }
	reasoner := temporal.New(temporal.WithClock(clock))
	p := pipeline.New(
		extract.New(extract.WithClock(clock)),
		intent.NewClassifier(),
		reasoner,
		suggest.New(reasoner, suggest.WithClock(clock)),
	)
	calendar := &delivery.MemoryCalendar{}
	ex := executor.New(permission.AllowAll(), calendar, &delivery.MemoryNotifier{}, &delivery.MemoryLauncher{})
	return New(Config{Addr: ":0"}, p, ex, nil, logging.Nop()), calendar
}

func postJSON(t *testing.T, s *Server, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeRejectsEmptyText(t *testing.T) {
	s, _ := testServer(t)
	rec := postJSON(t, s, "/api/analyze", map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeReturnsSuggestions(t *testing.T) {
	s, _ := testServer(t)
	rec := postJSON(t, s, "/api/analyze", map[string]string{"text": "다음 달 15일 결혼식이야", "source": "chat"})
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis pipeline.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, types.IntentSocial, analysis.Intent.Intent)
	assert.NotEmpty(t, analysis.Suggestions)
}

func TestAnalyzeBatchPreservesOrder(t *testing.T) {
	s, _ := testServer(t)
	rec := postJSON(t, s, "/api/analyze/batch", map[string]any{
		"inputs": []map[string]string{
			{"text": "결혼식 초대합니다"},
			{"text": "계좌로 송금 부탁해"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []pipeline.Analysis `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, types.IntentSocial, resp.Results[0].Intent.Intent)
	assert.Equal(t, types.IntentPayment, resp.Results[1].Intent.Intent)
}

func TestExecuteEndpoint(t *testing.T) {
	s, calendar := testServer(t)
	action := types.Action{
		ID:       "action-http",
		Category: types.CategoryCalendar,
		Title:    "회의",
		Entities: []types.Entity{{ID: "entity-d", Type: types.EntityDate, Raw: "2026-09-15", Value: "2026-09-15", Confidence: 0.9}},
		Status:   types.StatusPending,
		Fields:   map[string]string{"title": "회의", "startTime": "2026-09-15T09:00:00", "endTime": "2026-09-15T10:00:00"},
	}

	rec := postJSON(t, s, "/api/execute", map[string]any{"actions": []types.Action{action}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results  []types.ActionResult `json:"results"`
		Progress int                  `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, 100, resp.Progress)
	assert.Len(t, calendar.Events, 1)
}

func TestActionStatusEndpoint(t *testing.T) {
	s, _ := testServer(t)
	action := types.Action{
		ID:       "action-status",
		Category: types.CategoryCalendar,
		Title:    "회의",
		Entities: []types.Entity{{ID: "entity-d", Type: types.EntityDate, Raw: "2026-09-15", Value: "2026-09-15", Confidence: 0.9}},
		Fields:   map[string]string{"title": "회의", "startTime": "x", "endTime": "y"},
	}
	postJSON(t, s, "/api/execute", map[string]any{"actions": []types.Action{action}})

	req := httptest.NewRequest(http.MethodGet, "/api/actions/action-status/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status types.ExecutionStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, types.StageCompleted, status.Stage)

	req = httptest.NewRequest(http.MethodGet, "/api/actions/nope/status", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
