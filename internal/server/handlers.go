package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arcline/docrag/internal/rag"
	"github.com/arcline/docrag/internal/workflow"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var event ingestEvent
	if !decodeEvent(w, r, &event) {
		return
	}

	result, err := s.flows.Ingest(r.Context(), rag.IngestRequest{
		PDFPath:  event.PDFPath,
		SourceID: event.SourceID,
	})
	if err != nil {
		s.logger.Error("ingest flow failed", "path", event.PDFPath, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var event queryEvent
	if !decodeEvent(w, r, &event) {
		return
	}

	result, err := s.flows.Query(r.Context(), rag.QueryRequest{
		Question: event.Question,
		TopK:     event.TopK,
	})
	if err != nil {
		s.logger.Error("query flow failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	info, err := s.runs.RunInfo(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, workflow.ErrRunNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// decodeEvent parses and validates the request body, writing a 400 and
// returning false on any malformed or invalid payload.
func decodeEvent[T interface{ validate() error }](w http.ResponseWriter, r *http.Request, event T) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(event); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	if err := event.validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
