package webapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/borderops/ingestor/internal/ingest"
	"github.com/borderops/ingestor/internal/proposal"
	"github.com/borderops/ingestor/internal/store"
	"github.com/borderops/ingestor/internal/templatestore"
)

// templateRequest is the JSON body for creating or updating a template.
type templateRequest struct {
	TemplateID     string                       `json:"template_id"`
	Name           string                       `json:"name"`
	Carrier        string                       `json:"carrier"`
	FileType       string                       `json:"file_type"`
	ColumnMappings templatestore.ColumnMappings `json:"column_mappings"`
	Version        string                       `json:"version"`
	ActiveFlag     bool                         `json:"active_flag"`
}

func toTemplateView(t templatestore.Template) templateView {
	return templateView{
		TemplateID:     t.TemplateID,
		Name:           t.Name,
		Carrier:        t.Carrier,
		FileType:       t.FileType,
		ColumnMappings: t.ColumnMappings,
		Version:        t.Version,
		ActiveFlag:     t.ActiveFlag,
	}
}

// handleListTemplates returns the active mapping templates; inactive
// templates are not listed.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	active, err := s.templates.ListActive(r.Context(), "")
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	out := make([]templateView, 0, len(active))
	for _, t := range active {
		out = append(out, toTemplateView(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUploadTemplate registers a new template. Reusing an existing
// template_id is a conflict, per spec §6: templates are versioned by
// replacing the active one via the edit endpoint, not by re-creating it here.
func (s *Server) handleUploadTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if req.TemplateID == "" || req.FileType == "" {
		s.respondError(w, r, errors.New("template_id and file_type are required"), http.StatusBadRequest)
		return
	}

	if _, err := s.templates.Get(r.Context(), req.TemplateID); err == nil {
		s.respondError(w, r, ingest.ErrTemplateConflict, http.StatusConflict)
		return
	}

	t, err := s.templates.Create(r.Context(), templatestore.CreateParams{
		TemplateID:     req.TemplateID,
		Name:           req.Name,
		Carrier:        req.Carrier,
		FileType:       req.FileType,
		ColumnMappings: req.ColumnMappings,
		Version:        req.Version,
		ActiveFlag:     req.ActiveFlag,
	})
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toTemplateView(t))
}

// handleFileMapping returns the machine-generated proposal for a file that
// didn't match an existing template, for human review.
func (s *Server) handleFileMapping(w http.ResponseWriter, r *http.Request) {
	id := store.ParseUUID(chi.URLParam(r, "id"))
	if !id.Valid {
		s.respondError(w, r, ingest.ErrNotFound, http.StatusNotFound)
		return
	}

	f, err := store.New(s.pool).GetFileByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.respondError(w, r, ingest.ErrNotFound, http.StatusNotFound)
			return
		}
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if !f.ProposalPath.Valid {
		s.respondError(w, r, errors.New("no proposal recorded for this file"), http.StatusNotFound)
		return
	}

	data, err := os.ReadFile(f.ProposalPath.String)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	var p proposal.Proposal
	if err := json.Unmarshal(data, &p); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// handleSaveFileMapping turns a reviewed proposal into a saved, active
// template and immediately reprocesses the file against it.
func (s *Server) handleSaveFileMapping(w http.ResponseWriter, r *http.Request) {
	id := store.ParseUUID(chi.URLParam(r, "id"))
	if !id.Valid {
		s.respondError(w, r, ingest.ErrNotFound, http.StatusNotFound)
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if req.TemplateID == "" || req.FileType == "" || len(req.ColumnMappings) == 0 {
		s.respondError(w, r, errors.New("template_id, file_type, and column_mappings are required"), http.StatusBadRequest)
		return
	}
	req.ActiveFlag = true

	if _, err := s.templates.Create(r.Context(), templatestore.CreateParams{
		TemplateID:     req.TemplateID,
		Name:           req.Name,
		Carrier:        req.Carrier,
		FileType:       req.FileType,
		ColumnMappings: req.ColumnMappings,
		Version:        req.Version,
		ActiveFlag:     true,
	}); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	outcome, err := s.pipeline.ProcessFile(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// handleGetTemplate returns one template by its stable template_id.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "id")

	t, err := s.templates.Get(r.Context(), templateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.respondError(w, r, ingest.ErrNotFound, http.StatusNotFound)
			return
		}
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toTemplateView(t))
}

// handleUpdateTemplate overwrites a template's mutable fields.
func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "id")

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	req.TemplateID = templateID

	t, err := s.templates.Update(r.Context(), templatestore.UpdateParams{
		TemplateID:     req.TemplateID,
		Name:           req.Name,
		Carrier:        req.Carrier,
		FileType:       req.FileType,
		ColumnMappings: req.ColumnMappings,
		Version:        req.Version,
		ActiveFlag:     req.ActiveFlag,
	})
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toTemplateView(t))
}

// handleDeleteTemplate removes a template.
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "id")

	if err := s.templates.Delete(r.Context(), templateID); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
