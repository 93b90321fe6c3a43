package controllers

import (
	"log/slog"
	"net/http"
	"time"

	common "github.com/gameday/aggregation-api/pkg/domain/common"
	"github.com/gameday/aggregation-api/pkg/domain/materialised"
	"github.com/gameday/aggregation-api/pkg/infra/metrics"
)

// ControllerHelper provides utility methods for controllers
type ControllerHelper struct{}

// NewControllerHelper creates a new controller helper
func NewControllerHelper() *ControllerHelper {
	return &ControllerHelper{}
}

// HandleError processes errors and writes appropriate responses
func (h *ControllerHelper) HandleError(w http.ResponseWriter, r *http.Request, err error, logMessage string) bool {
	if err == nil {
		return false
	}

	slog.ErrorContext(r.Context(), logMessage, "err", err)
	apiErr := common.ErrorFromString(err)
	if writeErr := common.WriteErrorResponse(w, apiErr); writeErr != nil {
		slog.ErrorContext(r.Context(), "Failed to write error response", "error", writeErr)
	}
	return true
}

// WriteBuildResult writes a build route's outcome (§6's four POST
// /aggregate/... routes). A ReconcilerPartial error still carries a built
// document: per §7 it is reported as 200 with a warning field, not as a
// failure that discards the build. It also records the build counters and
// duration histogram promised by the ambient metrics stack.
func (h *ControllerHelper) WriteBuildResult(w http.ResponseWriter, r *http.Request, resourceType string, started time.Time, data *materialised.Document, err error) {
	if partial, ok := common.IsReconcilerPartialError(err); ok {
		metrics.RecordBuild(resourceType, "reconciled_partial", time.Since(started))
		metrics.RecordReconcilePartial()
		slog.WarnContext(r.Context(), "reconciliation partially applied", "applied", partial.Applied, "failed", partial.Failed)
		h.WriteSuccess(w, r, map[string]interface{}{
			"result":  data,
			"warning": partial.Error(),
		}, http.StatusOK)
		return
	}
	if err != nil {
		metrics.RecordBuild(resourceType, buildErrorState(err), time.Since(started))
		h.HandleError(w, r, err, "aggregate build failed")
		return
	}
	metrics.RecordBuild(resourceType, "reconciled", time.Since(started))
	h.WriteOK(w, r, data)
}

func buildErrorState(err error) string {
	switch {
	case common.IsInvalidInputError(err):
		return "invalid"
	case common.IsNotFoundError(err):
		return "missing"
	default:
		return "error"
	}
}

// WriteSuccess writes a successful response
func (h *ControllerHelper) WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}, statusCode int) {
	if err := common.WriteSuccessResponse(w, data, statusCode); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "err", err)
	}
}

// WriteOK writes a successful OK response
func (h *ControllerHelper) WriteOK(w http.ResponseWriter, r *http.Request, data interface{}) {
	h.WriteSuccess(w, r, data, http.StatusOK)
}

// WriteBadRequest writes a standardized 400 Bad Request response
func (h *ControllerHelper) WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	apiErr := common.NewAPIError(http.StatusBadRequest, "BAD_REQUEST", message)
	if err := common.WriteErrorResponse(w, apiErr); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write error response", "error", err)
	}
}
