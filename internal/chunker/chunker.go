// Package chunker splits documents into retrievable chunks. Two strategies
// exist: fixed-size packing along paragraph boundaries, and structure-aware
// packing that follows markdown headings and tables. The selector picks
// between them per document.
//
// All sizes are rune counts, so Arabic text is measured in characters, not
// UTF-8 bytes.
package chunker

import (
	"fmt"

	"github.com/warraqio/warraq/internal/model"
	"github.com/warraqio/warraq/internal/textutil"
)

// newChunk fills the metadata every chunk carries. Feature flags are always
// computed fresh from the chunk content, never inherited from the document.
func newChunk(docID string, index int, content string) model.Chunk {
	return model.Chunk{
		DocumentID:    docID,
		ChunkIndex:    index,
		Content:       content,
		TokenCount:    textutil.EstimateTokens(content),
		CharCount:     textutil.RuneLen(content),
		HasArabic:     textutil.DetectArabic(content),
		HasDiacritics: textutil.DetectDiacritics(content),
	}
}

func validateSize(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, v)
	}
	return nil
}
