// internal/server/handler.go
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
	"github.com/kvirtue/gemini-computer-use/internal/agent"
	"github.com/kvirtue/gemini-computer-use/internal/apex"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TaskRunner executes one browser task end to end. Satisfied by agent.Runner;
// narrowed to an interface so handler tests can fake runs.
type TaskRunner interface {
	RunTask(ctx context.Context, task schemas.Task) (*schemas.RunResult, error)
}

// Handler serves the task and Apex endpoints.
type Handler struct {
	runner TaskRunner
	logger *zap.Logger
}

func NewHandler(runner TaskRunner, logger *zap.Logger) *Handler {
	return &Handler{
		runner: runner,
		logger: logger.Named("http"),
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// apexError mirrors the shape Apex callers branch on.
func apexError(w http.ResponseWriter, status int, errType, message string) {
	JSON(w, status, map[string]string{
		"status":     "error",
		"error":      message,
		"error_type": errType,
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "gemini-browser-agent",
	})
}

type taskRequest struct {
	Task     string            `json:"task"`
	StartURL string            `json:"start_url,omitempty"`
	Viewport *schemas.Viewport `json:"viewport,omitempty"`
}

// RunTask handles the plain natural-language task endpoint.
func (h *Handler) RunTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Task == "" {
		Error(w, http.StatusBadRequest, "No task provided")
		return
	}

	task := schemas.Task{Instruction: req.Task, StartURL: req.StartURL}
	if req.Viewport != nil {
		task.Viewport = *req.Viewport
	}

	result, err := h.runner.RunTask(r.Context(), task)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyInstruction) {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Task execution failed.", zap.Error(err))
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, taskResponse(result))
}

// taskResponse renders a RunResult for the wire, screenshot base64-encoded.
func taskResponse(result *schemas.RunResult) map[string]any {
	resp := map[string]any{
		"run_id":         result.RunID,
		"status":         result.Status,
		"final_url":      result.FinalURL,
		"final_response": result.FinalResponse,
		"actions_taken":  result.ActionsTaken,
	}
	if len(result.FinalScreenshot) > 0 {
		resp["final_screenshot_b64"] = base64.StdEncoding.EncodeToString(result.FinalScreenshot)
	}
	if result.Error != "" {
		resp["error"] = result.Error
	}
	return resp
}

// Diagram drives a Lucidchart architecture diagram run for an opportunity.
func (h *Handler) Diagram(w http.ResponseWriter, r *http.Request) {
	var req apex.DiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apexError(w, http.StatusBadRequest, "validation_error", "No JSON data provided")
		return
	}
	if err := req.Validate(); err != nil {
		apexError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	creds, err := apex.LookupLucidchartCredentials()
	if err != nil {
		apexError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	task := schemas.Task{Instruction: apex.BuildDiagramInstructions(&req, creds)}
	result, err := h.runner.RunTask(r.Context(), task)
	if err != nil {
		h.logger.Error("Diagram task failed.", zap.Error(err))
		apexError(w, http.StatusInternalServerError, "execution_error", err.Error())
		return
	}

	if result.Status != schemas.StatusCompleted {
		JSON(w, http.StatusInternalServerError, map[string]any{
			"status":        "error",
			"error":         executionErrorMessage(result),
			"error_type":    "execution_error",
			"actions_taken": result.ActionsTaken,
		})
		return
	}

	plural := ""
	if len(req.Products) != 1 {
		plural = "s"
	}
	JSON(w, http.StatusOK, map[string]any{
		"status":         "completed",
		"lucidchart_url": apex.ExtractDocumentURL(result.FinalResponse, result.FinalURL),
		"screenshot_b64": base64.StdEncoding.EncodeToString(result.FinalScreenshot),
		"message":        fmt.Sprintf("Created diagram with %d component%s for %s", len(req.Products), plural, req.CompanyName),
		"actions_taken":  result.ActionsTaken,
	})
}

// ROI drives a Google Sheets ROI calculator run and returns the extracted
// numbers.
func (h *Handler) ROI(w http.ResponseWriter, r *http.Request) {
	var req apex.ROIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apexError(w, http.StatusBadRequest, "validation_error", "No JSON data provided")
		return
	}
	if err := req.Validate(); err != nil {
		apexError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	task := schemas.Task{Instruction: apex.BuildROIInstructions(&req)}
	result, err := h.runner.RunTask(r.Context(), task)
	if err != nil {
		h.logger.Error("ROI task failed.", zap.Error(err))
		apexError(w, http.StatusInternalServerError, "execution_error", err.Error())
		return
	}

	if result.Status != schemas.StatusCompleted {
		JSON(w, http.StatusInternalServerError, map[string]any{
			"status":        "error",
			"error":         executionErrorMessage(result),
			"error_type":    "execution_error",
			"actions_taken": result.ActionsTaken,
		})
		return
	}

	metrics, err := apex.ExtractROIMetrics(result.FinalResponse)
	if err != nil {
		h.logger.Warn("Could not extract ROI values.",
			zap.String("run_id", result.RunID),
			zap.Error(err))
		JSON(w, http.StatusInternalServerError, map[string]any{
			"status":        "error",
			"error":         err.Error(),
			"error_type":    "execution_error",
			"actions_taken": result.ActionsTaken,
		})
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"status":         "completed",
		"sheet_url":      req.ROISheetURL,
		"roi_percentage": metrics.ROIPercentage,
		"payback_months": metrics.PaybackMonths,
		"annual_savings": metrics.AnnualSavings,
		"screenshot_b64": base64.StdEncoding.EncodeToString(result.FinalScreenshot),
		"message":        fmt.Sprintf("ROI model shows %d%% five-year return for %s", metrics.ROIPercentage, req.CompanyName),
		"actions_taken":  result.ActionsTaken,
	})
}

func executionErrorMessage(result *schemas.RunResult) string {
	if result.Error != "" {
		return result.Error
	}
	if result.FinalResponse != "" {
		return result.FinalResponse
	}
	return "Task did not complete successfully"
}
