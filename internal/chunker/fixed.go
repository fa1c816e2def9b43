package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/warraqio/warraq/internal/model"
	"github.com/warraqio/warraq/internal/textutil"
)

var paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)

// FixedChunker packs paragraphs greedily into chunks of roughly chunkSize
// characters, carrying the last overlapWords words of each emitted chunk
// into the next one so context survives the cut. It never splits inside a
// paragraph: a paragraph longer than chunkSize is emitted whole.
type FixedChunker struct {
	chunkSize    int
	overlapWords int
}

func NewFixed(chunkSize, overlapWords int) (*FixedChunker, error) {
	if err := validateSize("chunk size", chunkSize); err != nil {
		return nil, err
	}
	if overlapWords < 0 {
		return nil, fmt.Errorf("overlap words must not be negative, got %d", overlapWords)
	}
	return &FixedChunker{chunkSize: chunkSize, overlapWords: overlapWords}, nil
}

func (c *FixedChunker) Chunk(doc *model.Document) []model.Chunk {
	paragraphs := splitParagraphs(doc.Content)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []model.Chunk
	var buf string
	for _, para := range paragraphs {
		// The +2 accounts for the blank-line separator that would join
		// the paragraph onto the buffer.
		if buf != "" && textutil.RuneLen(buf)+textutil.RuneLen(para)+2 > c.chunkSize {
			chunks = append(chunks, newChunk(doc.ID, len(chunks), buf))
			if c.overlapWords > 0 {
				buf = overlapTail(buf, c.overlapWords) + "\n\n" + para
			} else {
				buf = para
			}
			continue
		}
		if buf == "" {
			buf = para
		} else {
			buf = buf + "\n\n" + para
		}
	}
	if buf != "" {
		chunks = append(chunks, newChunk(doc.ID, len(chunks), buf))
	}
	return chunks
}

func splitParagraphs(content string) []string {
	parts := paragraphSplitRe.Split(content, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// overlapTail returns the last n words of text joined by single spaces.
func overlapTail(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
