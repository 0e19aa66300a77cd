package models

// Chunk kinds as stored in the vector store metadata.
const (
	KindContent = "content"
	KindSummary = "summary"
)

// Chunk is one indexed unit of document text. Its Key is derived
// deterministically from (doc_id, page, chunk_index) so re-ingesting the same
// document overwrites instead of duplicating.
type Chunk struct {
	Key        string    `json:"key"`
	DocID      string    `json:"doc_id"`
	Filename   string    `json:"filename"`
	Page       *int      `json:"page"` // nil for plain-text chunks
	ChunkIndex int       `json:"chunk_index"`
	Kind       string    `json:"kind"` // "content" or "summary"
	Text       string    `json:"text"`
	Embedding  []float32 `json:"-"`
}

// SearchResult pairs a chunk with its similarity distance (lower = closer).
// Transient; never persisted.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// DocumentRef identifies one ingested document in the deduplicated listing.
type DocumentRef struct {
	DocID    string `json:"doc_id"`
	Filename string `json:"filename"`
}

// Job statuses. A job moves queued -> processing -> done|error and never
// leaves a terminal state.
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobDone       = "done"
	JobError      = "error"
)

// JobProgress tracks how far a PDF ingestion has come. TotalPages stays nil
// until the worker has opened the file.
type JobProgress struct {
	Page          int  `json:"page"`
	TotalPages    *int `json:"total_pages"`
	ChunksIndexed int  `json:"chunks_indexed"`
}

// JobResult is present only once a job reaches "done".
type JobResult struct {
	DocID         string `json:"doc_id"`
	Filename      string `json:"filename"`
	ChunksCreated int    `json:"chunks_created"`
}

// Job represents one asynchronous ingestion, tracked in memory only.
type Job struct {
	JobID    string      `json:"job_id"`
	DocID    string      `json:"doc_id"`
	Filename string      `json:"filename"`
	Status   string      `json:"status"`
	Progress JobProgress `json:"progress"`
	Result   *JobResult  `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Source describes one context chunk that grounded an answer.
type Source struct {
	Filename string  `json:"filename"`
	DocID    string  `json:"doc_id"`
	Page     *int    `json:"page"`
	Score    float64 `json:"score"`
	Preview  string  `json:"preview"`
}

// QueryResponse is the payload of the non-streaming query endpoint.
type QueryResponse struct {
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Sources    []Source `json:"sources"`
}
