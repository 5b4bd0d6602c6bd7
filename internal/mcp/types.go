// Package mcp exposes the document pipeline over the Model Context Protocol.
package mcp

// AskDocsInput defines the input parameters for the ask_docs tool.
type AskDocsInput struct {
	// Question is the natural-language question to answer from the index.
	Question string `json:"question" jsonschema:"required,description=The question to answer from the indexed documents"`
	// TopK is how many context chunks to retrieve.
	TopK int `json:"top_k,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Number of context chunks to retrieve"`
}

// AskDocsOutput contains the generated answer and its provenance.
type AskDocsOutput struct {
	// Answer is the model's answer, grounded in the retrieved contexts.
	Answer string `json:"answer"`
	// Sources lists the distinct source identifiers the answer drew from.
	Sources []string `json:"sources"`
	// NumContexts is how many chunks were retrieved for the answer.
	NumContexts int `json:"num_contexts"`
}

// IngestPDFInput defines the input parameters for the ingest_pdf tool.
type IngestPDFInput struct {
	// Path is the filesystem path of the PDF to ingest.
	Path string `json:"path" jsonschema:"required,description=Filesystem path of the PDF document to ingest"`
	// SourceID overrides the source identifier; defaults to the path.
	SourceID string `json:"source_id,omitempty" jsonschema:"description=Stable source identifier for the document (defaults to the path)"`
}

// IngestPDFOutput reports how many chunks were indexed.
type IngestPDFOutput struct {
	// Ingested is the number of chunks written to the vector store.
	Ingested int `json:"ingested"`
}
