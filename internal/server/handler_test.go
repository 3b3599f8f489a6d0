package server_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
	"github.com/kvirtue/gemini-computer-use/internal/config"
	"github.com/kvirtue/gemini-computer-use/internal/server"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// fakeRunner returns a canned result and remembers the task it was given.
type fakeRunner struct {
	result *schemas.RunResult
	err    error
	task   schemas.Task
}

func (f *fakeRunner) RunTask(ctx context.Context, task schemas.Task) (*schemas.RunResult, error) {
	f.task = task
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestServer(t *testing.T, runner *fakeRunner) http.Handler {
	logger := zaptest.NewLogger(t)
	cfg := config.ServerConfig{
		Addr:            ":0",
		AllowedOrigins:  []string{"*"},
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	}
	return server.New(cfg, server.NewHandler(runner, logger), logger).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func completedResult() *schemas.RunResult {
	return &schemas.RunResult{
		RunID:         "run-1",
		Status:        schemas.StatusCompleted,
		FinalURL:      "https://www.google.com/search?q=salesforce",
		FinalResponse: "I searched for salesforce.",
		ActionsTaken: []schemas.ActionLogEntry{
			{Action: "type_text_at", Args: map[string]any{"text": "salesforce"}},
		},
		FinalScreenshot: []byte("png"),
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, &fakeRunner{})

	rec, body := doJSON(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestRunTaskSuccess(t *testing.T) {
	runner := &fakeRunner{result: completedResult()}
	h := newTestServer(t, runner)

	rec, body := doJSON(t, h, http.MethodPost, "/", `{"task": "Go to Google and search for salesforce"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Go to Google and search for salesforce", runner.task.Instruction)
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, "https://www.google.com/search?q=salesforce", body["final_url"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png")), body["final_screenshot_b64"])
	assert.Len(t, body["actions_taken"], 1)
}

func TestRunTaskMissingTask(t *testing.T) {
	h := newTestServer(t, &fakeRunner{})

	rec, body := doJSON(t, h, http.MethodPost, "/", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No task provided", body["error"])
}

func TestRunTaskRunnerFailure(t *testing.T) {
	h := newTestServer(t, &fakeRunner{err: errors.New("browser did not start")})

	rec, body := doJSON(t, h, http.MethodPost, "/", `{"task": "anything"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body["error"], "browser did not start")
}

func TestDiagramValidation(t *testing.T) {
	h := newTestServer(t, &fakeRunner{})

	rec, body := doJSON(t, h, http.MethodPost, "/diagram", `{"opportunity_id": "006abc"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", body["error_type"])
	assert.Contains(t, body["error"], "company_name")
}

func TestDiagramSuccess(t *testing.T) {
	t.Setenv("LUCIDCHART_EMAIL", "agent@example.com")
	t.Setenv("LUCIDCHART_PASSWORD", "hunter2")

	result := completedResult()
	result.FinalResponse = "Lucidchart URL: https://lucid.app/documents/view/abc-123"
	runner := &fakeRunner{result: result}
	h := newTestServer(t, runner)

	rec, body := doJSON(t, h, http.MethodPost, "/diagram",
		`{"opportunity_id": "006abc", "company_name": "Acme", "products": ["Sales Cloud", "Tableau"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, "https://lucid.app/documents/view/abc-123", body["lucidchart_url"])
	assert.Equal(t, "Created diagram with 2 components for Acme", body["message"])
	assert.Contains(t, runner.task.Instruction, "agent@example.com")
}

func TestDiagramExecutionError(t *testing.T) {
	t.Setenv("LUCIDCHART_EMAIL", "agent@example.com")
	t.Setenv("LUCIDCHART_PASSWORD", "hunter2")

	result := completedResult()
	result.Status = schemas.StatusMaxTurnsExceeded
	h := newTestServer(t, &fakeRunner{result: result})

	rec, body := doJSON(t, h, http.MethodPost, "/diagram",
		`{"opportunity_id": "006abc", "company_name": "Acme", "products": ["Sales Cloud"]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "execution_error", body["error_type"])
}

func TestROISuccess(t *testing.T) {
	result := completedResult()
	result.FinalResponse = `{"roi_percentage": 412, "payback_months": 8, "annual_savings": 847000}`
	runner := &fakeRunner{result: result}
	h := newTestServer(t, runner)

	rec, body := doJSON(t, h, http.MethodPost, "/roi",
		`{"opportunity_id": "006abc", "company_name": "Acme Corp",
		  "total_initial_investment_cost": 500000, "average_annual_cash_flow": 200000,
		  "roi_sheet_url": "https://docs.google.com/spreadsheets/d/x"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, float64(412), body["roi_percentage"])
	assert.Equal(t, float64(8), body["payback_months"])
	assert.Equal(t, float64(847000), body["annual_savings"])
	assert.Equal(t, "ROI model shows 412% five-year return for Acme Corp", body["message"])
	assert.Contains(t, runner.task.Instruction, "docs.google.com")
}

func TestROIInvalidNumbers(t *testing.T) {
	h := newTestServer(t, &fakeRunner{})

	rec, body := doJSON(t, h, http.MethodPost, "/roi",
		`{"opportunity_id": "006abc", "company_name": "Acme Corp",
		  "total_initial_investment_cost": 500000, "average_annual_cash_flow": 0,
		  "roi_sheet_url": "https://docs.google.com/spreadsheets/d/x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", body["error_type"])
}

func TestROIUnextractableResponse(t *testing.T) {
	result := completedResult()
	result.FinalResponse = "I think it went well."
	h := newTestServer(t, &fakeRunner{result: result})

	rec, body := doJSON(t, h, http.MethodPost, "/roi",
		`{"opportunity_id": "006abc", "company_name": "Acme Corp",
		  "total_initial_investment_cost": 500000, "average_annual_cash_flow": 200000,
		  "roi_sheet_url": "https://docs.google.com/spreadsheets/d/x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "execution_error", body["error_type"])
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://acme.lightning.force.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://acme.lightning.force.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSSkipsHeadersWithoutOrigin(t *testing.T) {
	h := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	_, present := rec.Header()["Access-Control-Allow-Origin"]
	assert.False(t, present, "same-origin requests get no CORS headers")
}
