package webapi

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/borderops/ingestor/internal/ingest"
	"github.com/borderops/ingestor/internal/pipeline"
	"github.com/borderops/ingestor/internal/storage"
	"github.com/borderops/ingestor/internal/store"
)

// maxUploadSize bounds the total size of a multipart upload request.
const maxUploadSize = 100 << 20

// defaultListLimit and maxListLimit bound GET /files/api pagination.
const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// fileUploadResult is one uploaded file's save-and-process outcome.
type fileUploadResult struct {
	FileID      string            `json:"file_id"`
	Filename    string            `json:"filename"`
	IsDuplicate bool              `json:"is_duplicate"`
	Outcome     *pipeline.Outcome `json:"outcome,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// handleFileUpload accepts one or many multipart "file" fields, saves each
// content-addressed, and synchronously runs process_file on every
// non-duplicate save before responding with one result per file.
func (s *Server) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		s.respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}

	meta := storageMetadataFromForm(r)
	results := make([]fileUploadResult, 0, len(headers))

	for _, header := range headers {
		result, err := s.uploadOne(r, header, meta)
		if err != nil {
			s.log.Error("webapi: upload failed", "filename", header.Filename, "error", err)
			results = append(results, fileUploadResult{Filename: header.Filename, Error: err.Error()})
			continue
		}
		results = append(results, result)
	}

	writeJSON(w, http.StatusCreated, results)
}

func (s *Server) uploadOne(r *http.Request, header *multipart.FileHeader, meta storage.Metadata) (fileUploadResult, error) {
	file, err := header.Open()
	if err != nil {
		return fileUploadResult{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fileUploadResult{}, err
	}

	saved, err := s.storage.Save(r.Context(), data, header.Filename, meta)
	if err != nil {
		return fileUploadResult{}, &ingest.StorageError{Op: "save", Err: err}
	}

	result := fileUploadResult{
		FileID:      store.UUIDString(saved.FileID),
		Filename:    header.Filename,
		IsDuplicate: saved.IsDuplicate,
	}
	if saved.IsDuplicate {
		return result, nil
	}

	outcome, err := s.pipeline.ProcessFile(r.Context(), saved.FileID)
	if err != nil {
		return result, err
	}
	result.Outcome = &outcome
	return result, nil
}

// handleListFiles returns files, most recently created first, optionally
// filtered by status and paginated with limit/offset.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.respondError(w, r, errors.New("limit must be a positive integer"), http.StatusBadRequest)
			return
		}
		limit = n
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, r, errors.New("offset must be a non-negative integer"), http.StatusBadRequest)
			return
		}
		offset = n
	}

	files, err := store.New(s.pool).ListFilesFiltered(r.Context(), status, int32(limit), int32(offset))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	out := make([]fileView, 0, len(files))
	for _, f := range files {
		out = append(out, toFileView(f))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetFile returns one file's status and counters.
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, toFileView(f))
}

// handleGetFileErrors returns every validation error recorded against a file.
func (s *Server) handleGetFileErrors(w http.ResponseWriter, r *http.Request) {
	id := store.ParseUUID(chi.URLParam(r, "id"))
	if !id.Valid {
		s.respondError(w, r, ingest.ErrNotFound, http.StatusNotFound)
		return
	}

	errs, err := store.New(s.pool).ListValidationErrorsByFileID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	out := make([]validationErrorView, 0, len(errs))
	for _, e := range errs {
		out = append(out, toValidationErrorView(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleReprocessFile re-runs the pipeline for a file regardless of its
// current status, e.g. after a template edit or a validation rules change.
func (s *Server) handleReprocessFile(w http.ResponseWriter, r *http.Request) {
	id := store.ParseUUID(chi.URLParam(r, "id"))
	if !id.Valid {
		s.respondError(w, r, ingest.ErrNotFound, http.StatusNotFound)
		return
	}

	outcome, err := s.pipeline.ProcessFile(r.Context(), id)
	if err != nil {
		if errors.Is(err, ingest.ErrNotFound) {
			s.respondError(w, r, err, http.StatusNotFound)
			return
		}
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// handleDeleteFile removes a file's stored bytes and database row.
func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id := store.ParseUUID(chi.URLParam(r, "id"))
	if !id.Valid {
		s.respondError(w, r, ingest.ErrNotFound, http.StatusNotFound)
		return
	}

	if err := s.storage.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, &ingest.StorageError{Op: "delete", Err: err}, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func storageMetadataFromForm(r *http.Request) storage.Metadata {
	return storage.Metadata{Sender: r.FormValue("sender"), Subject: r.FormValue("subject")}
}
