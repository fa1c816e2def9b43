package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/warraqio/warraq/internal/ai"
	"github.com/warraqio/warraq/internal/chunker"
	"github.com/warraqio/warraq/internal/filestore"
	"github.com/warraqio/warraq/internal/model"
	"github.com/warraqio/warraq/internal/parser"
	errs "github.com/warraqio/warraq/internal/pkg/errors"
	"github.com/warraqio/warraq/internal/pkg/logutil"
	"github.com/warraqio/warraq/internal/repo"
	"github.com/warraqio/warraq/internal/textutil"
)

const embedTaskType = "RETRIEVAL_DOCUMENT"

// DocumentService runs the ingestion pipeline and owns document lifecycle.
type DocumentService struct {
	docs       *repo.DocumentRepo
	chunks     *repo.ChunkRepo
	selector   *chunker.Selector
	ai         *ai.Manager
	files      filestore.Store
	embedBatch int
}

func NewDocumentService(docs *repo.DocumentRepo, chunks *repo.ChunkRepo, selector *chunker.Selector, manager *ai.Manager, files filestore.Store, embedBatch int) *DocumentService {
	if embedBatch <= 0 {
		embedBatch = 32
	}
	return &DocumentService{
		docs:       docs,
		chunks:     chunks,
		selector:   selector,
		ai:         manager,
		files:      files,
		embedBatch: embedBatch,
	}
}

// DocumentListItem pairs a document with its chunk count for listings.
type DocumentListItem struct {
	model.Document
	ChunkCount int64 `json:"chunk_count"`
}

// ProcessFile parses the file at path, chunks it, persists everything and
// attempts to embed the new chunks. filename decides the format; path may be
// a temp file. Embedding and original-file storage failures are logged but
// never fail the ingest.
func (s *DocumentService) ProcessFile(ctx context.Context, path string, filename string, strategy string) (*model.ProcessResult, error) {
	start := time.Now()
	logger := logutil.GetLogger(ctx).With(zap.String("filename", filename))

	parsed, err := parser.Parse(ctx, path, filename)
	if err != nil {
		return nil, err
	}
	doc := buildDocument(parsed.Content, filename, parsed.FileType, parsed.Title)
	result, err := s.persist(ctx, doc, strategy)
	if err != nil {
		return nil, err
	}
	s.storeOriginal(ctx, path, doc)
	s.embedNewChunks(ctx)
	s.markProcessed(ctx, doc)

	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	logger.Info("document processed",
		zap.String("document_id", doc.ID),
		zap.String("strategy", doc.ChunkingStrategy),
		zap.Int("chunks", result.ChunksCreated),
		zap.Int64("elapsed_ms", result.ProcessingTimeMs),
	)
	return result, nil
}

// ProcessText ingests raw text as a txt document.
func (s *DocumentService) ProcessText(ctx context.Context, text string, filename string, strategy string) (*model.ProcessResult, error) {
	start := time.Now()
	if filename == "" {
		filename = "text.txt"
	}
	doc := buildDocument(text, filename, "txt", filename)
	result, err := s.persist(ctx, doc, strategy)
	if err != nil {
		return nil, err
	}
	s.embedNewChunks(ctx)
	s.markProcessed(ctx, doc)
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result, nil
}

func buildDocument(content, filename, fileType, title string) *model.Document {
	now := time.Now().Unix()
	hasArabic := textutil.DetectArabic(content)
	language := "en"
	if hasArabic {
		language = "ar"
	}
	return &model.Document{
		ID:            documentID(filename),
		Filename:      filename,
		FileType:      fileType,
		Title:         title,
		Content:       content,
		Language:      language,
		HasArabic:     hasArabic,
		HasDiacritics: textutil.DetectDiacritics(content),
		WordCount:     len(strings.Fields(content)),
		Ctime:         now,
		Ptime:         now,
	}
}

func (s *DocumentService) persist(ctx context.Context, doc *model.Document, strategy string) (*model.ProcessResult, error) {
	resolved, chunks, err := s.selector.Chunk(doc, strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalid, err)
	}
	doc.ChunkingStrategy = resolved

	now := time.Now().Unix()
	items := make([]*model.Chunk, 0, len(chunks))
	for i := range chunks {
		chunks[i].ID = newID()
		chunks[i].Ctime = now
		items = append(items, &chunks[i])
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.chunks.BatchCreate(ctx, items); err != nil {
		return nil, err
	}
	return &model.ProcessResult{DocumentID: doc.ID, ChunksCreated: len(items)}, nil
}

// storeOriginal keeps the uploaded bytes under <id>.<type> for later
// re-processing. The parsed content is already persisted, so failure here is
// logged and swallowed.
func (s *DocumentService) storeOriginal(ctx context.Context, path string, doc *model.Document) {
	if s.files == nil {
		return
	}
	logger := logutil.GetLogger(ctx).With(zap.String("document_id", doc.ID))
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("open original for storing failed", zap.Error(err))
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		logger.Warn("stat original failed", zap.Error(err))
		return
	}
	if err := s.files.Save(ctx, originalKey(doc), f, info.Size()); err != nil {
		logger.Warn("store original failed", zap.Error(err))
	}
}

func originalKey(doc *model.Document) string {
	return doc.ID + "." + doc.FileType
}

// markProcessed restamps ptime once chunking and the embedding attempt are
// done.
func (s *DocumentService) markProcessed(ctx context.Context, doc *model.Document) {
	now := time.Now().Unix()
	if err := s.docs.SetStrategy(ctx, doc.ID, doc.ChunkingStrategy, now); err != nil {
		logutil.GetLogger(ctx).Warn("mark processed failed", zap.String("document_id", doc.ID), zap.Error(err))
		return
	}
	doc.Ptime = now
}

// embedNewChunks drains the pending-embedding queue right after ingest so
// fresh chunks become searchable without waiting for the sync job.
func (s *DocumentService) embedNewChunks(ctx context.Context) {
	for {
		n, err := s.EmbedPending(ctx, s.embedBatch)
		if err != nil {
			logutil.GetLogger(ctx).Warn("embedding after ingest failed", zap.Error(err))
			return
		}
		if n < s.embedBatch {
			return
		}
	}
}

// EmbedPending embeds up to limit chunks that have no embedding yet and
// returns how many got one. Per-chunk failures are logged and skipped so one
// bad chunk cannot stall the queue.
func (s *DocumentService) EmbedPending(ctx context.Context, limit int) (int, error) {
	if s.ai == nil || !s.ai.HasEmbedder() {
		return 0, nil
	}
	if limit <= 0 {
		limit = s.embedBatch
	}
	chunks, err := s.chunks.ListPendingEmbedding(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	logger := logutil.GetLogger(ctx)
	embedded := 0
	for _, ch := range chunks {
		select {
		case <-ctx.Done():
			return embedded, ctx.Err()
		default:
		}
		vec, err := s.ai.Embed(ctx, ch.Content, embedTaskType)
		if err != nil {
			logger.Warn("embed chunk failed", zap.String("chunk_id", ch.ID), zap.Error(err))
			continue
		}
		if err := s.chunks.UpdateEmbedding(ctx, ch.ID, vec); err != nil {
			logger.Error("save embedding failed", zap.String("chunk_id", ch.ID), zap.Error(err))
			continue
		}
		embedded++
	}
	return embedded, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	return s.docs.GetByID(ctx, id)
}

func (s *DocumentService) GetChunks(ctx context.Context, id string) ([]model.Chunk, error) {
	if _, err := s.docs.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.chunks.ListByDocument(ctx, id)
}

func (s *DocumentService) List(ctx context.Context, limit int) ([]DocumentListItem, error) {
	docs, err := s.docs.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	counts, err := s.chunks.CountByDocument(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]DocumentListItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, DocumentListItem{Document: d, ChunkCount: counts[d.ID]})
	}
	return items, nil
}

// Delete removes the document, its chunks, and the stored original. The
// original is removed last and best-effort.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.chunks.DeleteByDocument(ctx, id); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	if s.files != nil {
		if err := s.files.Delete(ctx, originalKey(doc)); err != nil {
			logutil.GetLogger(ctx).Warn("remove original failed", zap.String("document_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *DocumentService) Stats(ctx context.Context) (*model.Stats, error) {
	totalDocs, err := s.docs.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalChunks, err := s.chunks.Count(ctx)
	if err != nil {
		return nil, err
	}
	arabicDocs, err := s.docs.CountArabic(ctx)
	if err != nil {
		return nil, err
	}
	embedded, err := s.chunks.CountEmbedded(ctx)
	if err != nil {
		return nil, err
	}
	strategies, err := s.docs.CountByStrategy(ctx)
	if err != nil {
		return nil, err
	}
	languages, err := s.docs.CountByLanguage(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Stats{
		TotalDocuments:  totalDocs,
		TotalChunks:     totalChunks,
		ArabicDocuments: arabicDocs,
		EmbeddedChunks:  embedded,
		Strategies:      strategies,
		Languages:       languages,
	}, nil
}
