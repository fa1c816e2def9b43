package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/warraqio/warraq/internal/model"
	"github.com/warraqio/warraq/internal/textutil"
)

const longDocumentRunes = 10000

var (
	headingRe = regexp.MustCompile(`(?m)^#{1,6}\s`)
	listRe    = regexp.MustCompile(`(?m)^\s*[-*+]\s`)
)

// Analysis holds the structural signals the selector computes once per
// document. AvgParagraphLen is informational only; the decision rests on
// the structure flags.
type Analysis struct {
	HasHeadings     bool
	HasTables       bool
	HasLists        bool
	IsLong          bool
	AvgParagraphLen float64
}

func (a Analysis) HasStructure() bool {
	return a.HasHeadings || a.HasTables || a.HasLists
}

func Analyze(content string) Analysis {
	a := Analysis{
		HasHeadings: headingRe.MatchString(content),
		HasTables:   strings.Contains(content, "|"),
		HasLists:    listRe.MatchString(content),
		IsLong:      textutil.RuneLen(content) > longDocumentRunes,
	}
	if paragraphs := splitParagraphs(content); len(paragraphs) > 0 {
		total := 0
		for _, p := range paragraphs {
			total += textutil.RuneLen(p)
		}
		a.AvgParagraphLen = float64(total) / float64(len(paragraphs))
	}
	return a
}

// Selector resolves the "auto" strategy and runs the matching chunker.
type Selector struct {
	fixed   *FixedChunker
	dynamic *DynamicChunker
}

func NewSelector(fixed *FixedChunker, dynamic *DynamicChunker) *Selector {
	return &Selector{fixed: fixed, dynamic: dynamic}
}

// Select chooses a concrete strategy from document content. Structured
// documents go to the dynamic chunker regardless of length; everything
// else is chunked fixed. The paragraph-length signal deliberately does not
// influence the outcome (see Analysis).
func Select(content string) string {
	if Analyze(content).HasStructure() {
		return model.StrategyDynamic
	}
	return model.StrategyFixed
}

// Chunk resolves strategy (empty and "auto" mean automatic selection),
// splits the document, and returns the resolved strategy together with the
// chunks. The document itself is not mutated; recording the resolved
// strategy is the caller's job.
func (s *Selector) Chunk(doc *model.Document, strategy string) (string, []model.Chunk, error) {
	switch strategy {
	case "", model.StrategyAuto:
		strategy = Select(doc.Content)
	case model.StrategyFixed, model.StrategyDynamic:
	default:
		return "", nil, fmt.Errorf("unknown chunking strategy: %s", strategy)
	}
	if strategy == model.StrategyDynamic {
		return strategy, s.dynamic.Chunk(doc), nil
	}
	return strategy, s.fixed.Chunk(doc), nil
}
