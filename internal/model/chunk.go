package model

const ChunkTypeSection = "section"

type Chunk struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	ChunkIndex    int       `json:"chunk_index"`
	Content       string    `json:"content"`
	ChunkType     string    `json:"chunk_type,omitempty"`
	Heading       string    `json:"heading,omitempty"`
	TokenCount    int       `json:"token_count"`
	CharCount     int       `json:"char_count"`
	HasArabic     bool      `json:"has_arabic"`
	HasDiacritics bool      `json:"has_diacritics"`
	Embedding     []float32 `json:"-"`
	Ctime         int64     `json:"ctime"`
}

// ChunkFilter narrows candidate chunks in both retrieval paths.
// Nil fields mean no restriction.
type ChunkFilter struct {
	ChunkType *string
	HasArabic *bool
}
