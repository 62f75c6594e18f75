package webapi

import "net/http"

// handleHealth reports liveness. Kept cheap and dependency-free so it can be
// used as a container readiness/liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
