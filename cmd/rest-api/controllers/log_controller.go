package controllers

import (
	"context"
	"log/slog"
	"net/http"
)

// LogLevel is the process-wide slog.LevelVar the default handler was built
// against (see main.go); POST /log/debug and /log/info (§6) mutate it so an
// operator can raise or lower verbosity without a restart.
var LogLevel = new(slog.LevelVar)

// LogController handles the two out-of-core log-level routes.
type LogController struct {
	helper *ControllerHelper
}

func NewLogController() *LogController {
	return &LogController{helper: NewControllerHelper()}
}

// SetDebug handles POST /log/debug.
func (lc *LogController) SetDebug(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		LogLevel.Set(slog.LevelDebug)
		lc.helper.WriteOK(w, r, map[string]string{"level": "debug"})
	}
}

// SetInfo handles POST /log/info.
func (lc *LogController) SetInfo(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		LogLevel.Set(slog.LevelInfo)
		lc.helper.WriteOK(w, r, map[string]string{"level": "info"})
	}
}
