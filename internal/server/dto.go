package server

import "errors"

// ingestEvent is the body of POST /events/rag.ingest.
type ingestEvent struct {
	PDFPath  string `json:"pdf_path"`
	SourceID string `json:"source_id,omitempty"`
}

func (e *ingestEvent) validate() error {
	if e.PDFPath == "" {
		return errors.New("pdf_path is required")
	}
	return nil
}

// queryEvent is the body of POST /events/rag.query.
type queryEvent struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

func (e *queryEvent) validate() error {
	if e.Question == "" {
		return errors.New("question is required")
	}
	if e.TopK < 0 {
		return errors.New("top_k must not be negative")
	}
	return nil
}

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}
