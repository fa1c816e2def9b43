package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/warraqio/warraq/internal/model"
	errs "github.com/warraqio/warraq/internal/pkg/errors"
	"github.com/warraqio/warraq/internal/pkg/logutil"
	"github.com/warraqio/warraq/internal/textutil"
)

const (
	maxQuestionRunes = 1000
	maxTopK          = 20
	fallbackRunes    = 800
	sourceRunes      = 200

	noInfoEN = "No relevant information found."
	noInfoAR = "لم يتم العثور على معلومات ذات صلة."
)

const promptTemplate = `You are a helpful assistant that answers questions based on the provided context.

Context:
%s

Question: %s

Please provide a comprehensive answer based on the context above. If the context doesn't contain enough information, say so.
`

const arabicPromptTemplate = `أنت مساعد مفيد يجيب على الأسئلة بناءً على السياق المقدم.

السياق:
%s

السؤال: %s

يرجى تقديم إجابة شاملة بناءً على السياق أعلاه. إذا لم يكن السياق يحتوي على معلومات كافية، قل ذلك.
`

// Retriever is the slice of the retrieval engine the rag service needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, documentID string, filter model.ChunkFilter) ([]model.Chunk, error)
}

// AnswerGenerator produces an answer for a prompt, optionally pinned to a
// caller-requested model. *ai.Manager satisfies this.
type AnswerGenerator interface {
	GenerateWithModel(ctx context.Context, modelName string, prompt string) (string, error)
}

// RagService answers questions from retrieved chunks. Arabic questions get
// the Arabic prompt and are restricted to Arabic chunks.
type RagService struct {
	retriever   Retriever
	generator   AnswerGenerator
	defaultTopK int
	maxCtxChars int
}

func NewRagService(retriever Retriever, generator AnswerGenerator, defaultTopK int, maxContextChars int) *RagService {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &RagService{
		retriever:   retriever,
		generator:   generator,
		defaultTopK: defaultTopK,
		maxCtxChars: maxContextChars,
	}
}

func (s *RagService) Query(ctx context.Context, question string, topK int, documentID string, modelName string) (*model.QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question cannot be empty", errs.ErrInvalid)
	}
	if utf8.RuneCountInString(question) > maxQuestionRunes {
		return nil, fmt.Errorf("%w: question too long (max %d characters)", errs.ErrInvalid, maxQuestionRunes)
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}
	if topK > maxTopK {
		return nil, fmt.Errorf("%w: top_k must be between 1 and %d", errs.ErrInvalid, maxTopK)
	}

	arabic := textutil.DetectArabic(question)
	var filter model.ChunkFilter
	if arabic {
		hasArabic := true
		filter.HasArabic = &hasArabic
	}

	chunks, err := s.retriever.Retrieve(ctx, question, topK, documentID, filter)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &model.QueryResult{Answer: noAnswer(arabic), Context: []string{}, Sources: []model.Source{}}, nil
	}

	contexts := make([]string, 0, len(chunks))
	sources := make([]model.Source, 0, len(chunks))
	for _, ch := range chunks {
		contexts = append(contexts, ch.Content)
		sources = append(sources, model.Source{
			ChunkID:    ch.ID,
			DocumentID: ch.DocumentID,
			Content:    truncateRunes(ch.Content, sourceRunes) + "...",
		})
	}

	answer := s.answer(ctx, question, contexts, modelName, arabic)
	return &model.QueryResult{Answer: answer, Context: contexts, Sources: sources}, nil
}

func (s *RagService) answer(ctx context.Context, question string, contexts []string, modelName string, arabic bool) string {
	if s.generator == nil {
		return extractiveFallback(contexts, arabic)
	}
	prompt := buildPrompt(question, contexts, arabic, s.maxCtxChars)
	out, err := s.generator.GenerateWithModel(ctx, modelName, prompt)
	if err != nil {
		logutil.GetLogger(ctx).Warn("answer generation failed, falling back to extractive answer", zap.Error(err))
		return extractiveFallback(contexts, arabic)
	}
	return out
}

func buildPrompt(question string, contexts []string, arabic bool, maxContextChars int) string {
	blockFormat := "Context %d:\n%s"
	if arabic {
		blockFormat = "السياق %d:\n%s"
	}
	blocks := make([]string, 0, len(contexts))
	for i, c := range contexts {
		blocks = append(blocks, fmt.Sprintf(blockFormat, i+1, c))
	}
	contextText := strings.Join(blocks, "\n\n")
	if maxContextChars > 0 {
		contextText = truncateRunes(contextText, maxContextChars)
	}
	if arabic {
		return fmt.Sprintf(arabicPromptTemplate, contextText, question)
	}
	return fmt.Sprintf(promptTemplate, contextText, question)
}

// extractiveFallback answers straight from the retrieved text when no
// generator is configured or generation failed.
func extractiveFallback(contexts []string, arabic bool) string {
	parts := make([]string, 0, len(contexts))
	for _, c := range contexts {
		if c != "" {
			parts = append(parts, c)
		}
	}
	joined := truncateRunes(strings.Join(parts, "\n\n"), fallbackRunes)
	if joined == "" {
		return noAnswer(arabic)
	}
	return joined
}

func noAnswer(arabic bool) string {
	if arabic {
		return noInfoAR
	}
	return noInfoEN
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
