package model

// ProcessResult summarizes one ingestion run.
type ProcessResult struct {
	DocumentID       string `json:"document_id"`
	ChunksCreated    int    `json:"chunks_created"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// Source points back at a retrieved chunk; Content is truncated for display.
type Source struct {
	ChunkID    string `json:"chunk_id"`
	DocumentID string `json:"document_id"`
	Content    string `json:"content"`
}

type QueryResult struct {
	Answer  string   `json:"answer"`
	Context []string `json:"context"`
	Sources []Source `json:"sources"`
}

type Stats struct {
	TotalDocuments  int64            `json:"total_documents"`
	TotalChunks     int64            `json:"total_chunks"`
	ArabicDocuments int64            `json:"arabic_documents"`
	EmbeddedChunks  int64            `json:"embedded_chunks"`
	Strategies      map[string]int64 `json:"strategies"`
	Languages       map[string]int64 `json:"languages"`
}
