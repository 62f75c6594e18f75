package webapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/borderops/ingestor/internal/ingest"
)

// writeJSON encodes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("webapi: failed encoding response", "error", err)
	}
}

// errorResponse is the JSON body returned on any non-2xx response.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// respondError logs the technical error with request correlation and
// returns its mapped user-facing message at status.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := ingest.MapError(err)

	s.log.Error("webapi: request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, status, errorResponse{Code: msg.Code, Message: msg.Message, Action: msg.Action})
}
