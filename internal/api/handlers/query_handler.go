package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/markdave123-py/localrag/internal/services"
)

type QueryHandler struct {
	queries *services.QueryService
}

func NewQueryHandler(queries *services.QueryService) *QueryHandler {
	return &QueryHandler{queries: queries}
}

// Query answers a question in one response, with confidence and sources.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	docID := r.URL.Query().Get("doc_id")

	resp, err := h.queries.Query(r.Context(), q, docID)
	if err != nil {
		writeError(w, upstreamStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// QueryStream forwards answer fragments to the client as they are generated.
// The request context carries the client disconnect down into the model
// call, so generation stops instead of running on with nobody listening.
func (h *QueryHandler) QueryStream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	docID := r.URL.Query().Get("doc_id")

	stream, err := h.queries.QueryStream(r.Context(), q, docID)
	if err != nil {
		writeError(w, upstreamStatus(err), err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			// Headers are gone; all we can do is stop and log.
			log.Printf("QueryHandler: stream aborted: %v", err)
			return
		}
		if _, err := io.WriteString(w, frag); err != nil {
			return
		}
		flusher.Flush()
	}
}
