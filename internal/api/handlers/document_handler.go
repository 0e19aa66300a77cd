package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/localrag/internal/core"
	"github.com/markdave123-py/localrag/internal/core/jobs"
	"github.com/markdave123-py/localrag/internal/models"
	"github.com/markdave123-py/localrag/internal/services"
)

const maxUploadMem = 32 << 20

type DocumentHandler struct {
	ingest *services.IngestService
	jobs   *jobs.Manager
}

func NewDocumentHandler(ingest *services.IngestService, jobMgr *jobs.Manager) *DocumentHandler {
	return &DocumentHandler{ingest: ingest, jobs: jobMgr}
}

// Upload ingests a plain-text file synchronously within the request.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMem); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	docID, chunks, err := h.ingest.IngestText(r.Context(), file, header.Filename)
	if err != nil {
		writeError(w, upstreamStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":         docID,
		"filename":       header.Filename,
		"chunks_created": chunks,
	})
}

// UploadPDF accepts the file, queues a background ingestion job and returns
// immediately with the job id.
func (h *DocumentHandler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMem); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	jobID, docID, err := h.ingest.EnqueuePDF(r.Context(), file, header.Filename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"job_id": jobID,
		"doc_id": docID,
		"status": models.JobQueued,
	})
}

// GetJob returns the full job record for status polling.
func (h *DocumentHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(chi.URLParam(r, "job_id"))
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ListDocuments returns the deduplicated documents known to the store.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.ingest.ListDocuments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []models.DocumentRef{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// GetPDF streams the raw stored PDF back to the client.
func (h *DocumentHandler) GetPDF(w http.ResponseWriter, r *http.Request) {
	rc, err := h.ingest.OpenPDF(r.Context(), chi.URLParam(r, "doc_id"))
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "PDF not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	_, _ = io.Copy(w, rc)
}

// upstreamStatus distinguishes failures of external collaborators from local
// ones so operators can tell them apart at a glance.
func upstreamStatus(err error) int {
	var ue *core.UpstreamError
	if errors.As(err, &ue) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
