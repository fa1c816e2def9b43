package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/warraqio/warraq/internal/model"
	"github.com/warraqio/warraq/internal/pkg/dbutil"
	appErr "github.com/warraqio/warraq/internal/pkg/errors"
)

// chunkFields excludes embedding; vectors are only read by similarity search.
var chunkFields = []string{
	"id", "document_id", "chunk_index", "content", "chunk_type", "heading",
	"token_count", "char_count", "has_arabic", "has_diacritics", "ctime",
}

const chunkColumns = `id, document_id, chunk_index, content, chunk_type, heading, token_count, char_count, has_arabic, has_diacritics, ctime`

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) BatchCreate(ctx context.Context, chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(chunks))
	for _, ch := range chunks {
		data = append(data, map[string]interface{}{
			"id":             ch.ID,
			"document_id":    ch.DocumentID,
			"chunk_index":    ch.ChunkIndex,
			"content":        ch.Content,
			"chunk_type":     ch.ChunkType,
			"heading":        ch.Heading,
			"token_count":    ch.TokenCount,
			"char_count":     ch.CharCount,
			"has_arabic":     ch.HasArabic,
			"has_diacritics": ch.HasDiacritics,
			"ctime":          ch.Ctime,
		})
	}
	sqlStr, args, err := builder.BuildInsert("chunks", data)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *ChunkRepo) ListByDocument(ctx context.Context, documentID string) ([]model.Chunk, error) {
	where := map[string]interface{}{
		"document_id": documentID,
		"_orderby":    "chunk_index asc",
	}
	sqlStr, args, err := builder.BuildSelect("chunks", where, chunkFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanChunks(rows)
}

// ListCandidates returns chunks for keyword scoring, scoped to documentID
// when non-empty, in a stable document/index order.
func (r *ChunkRepo) ListCandidates(ctx context.Context, documentID string, filter model.ChunkFilter) ([]model.Chunk, error) {
	where := map[string]interface{}{
		"_orderby": "document_id asc, chunk_index asc",
	}
	if documentID != "" {
		where["document_id"] = documentID
	}
	if filter.ChunkType != nil {
		where["chunk_type"] = *filter.ChunkType
	}
	if filter.HasArabic != nil {
		where["has_arabic"] = *filter.HasArabic
	}
	sqlStr, args, err := builder.BuildSelect("chunks", where, chunkFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanChunks(rows)
}

// NearestNeighbors returns up to limit embedded chunks ordered by cosine
// distance to vec, nearest first.
func (r *ChunkRepo) NearestNeighbors(ctx context.Context, vec []float32, limit int, documentID string, filter model.ChunkFilter) ([]model.Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE embedding IS NOT NULL`
	args := []interface{}{pgvector.NewVector(vec)}
	idx := 2
	if documentID != "" {
		query += fmt.Sprintf(" AND document_id = $%d", idx)
		args = append(args, documentID)
		idx++
	}
	if filter.ChunkType != nil {
		query += fmt.Sprintf(" AND chunk_type = $%d", idx)
		args = append(args, *filter.ChunkType)
		idx++
	}
	if filter.HasArabic != nil {
		query += fmt.Sprintf(" AND has_arabic = $%d", idx)
		args = append(args, *filter.HasArabic)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", idx)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanChunks(rows)
}

func (r *ChunkRepo) ListPendingEmbedding(ctx context.Context, limit int) ([]model.Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE embedding IS NULL ORDER BY ctime ASC, chunk_index ASC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanChunks(rows)
}

func (r *ChunkRepo) UpdateEmbedding(ctx context.Context, chunkID string, vec []float32) error {
	const query = `UPDATE chunks SET embedding = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, pgvector.NewVector(vec), chunkID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	sqlStr, args, err := builder.BuildDelete("chunks", map[string]interface{}{"document_id": documentID})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ChunkRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM chunks`
	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChunkRepo) CountEmbedded(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM chunks WHERE embedding IS NOT NULL`
	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChunkRepo) CountByDocument(ctx context.Context) (map[string]int64, error) {
	const query = `SELECT document_id, COUNT(*) FROM chunks GROUP BY document_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	counts := map[string]int64{}
	for rows.Next() {
		var docID string
		var count int64
		if err := rows.Scan(&docID, &count); err != nil {
			return nil, err
		}
		counts[docID] = count
	}
	return counts, rows.Err()
}

func scanChunks(rows *sql.Rows) ([]model.Chunk, error) {
	var chunks []model.Chunk
	for rows.Next() {
		var ch model.Chunk
		if err := rows.Scan(
			&ch.ID, &ch.DocumentID, &ch.ChunkIndex, &ch.Content, &ch.ChunkType,
			&ch.Heading, &ch.TokenCount, &ch.CharCount, &ch.HasArabic,
			&ch.HasDiacritics, &ch.Ctime,
		); err != nil {
			return nil, err
		}
		chunks = append(chunks, ch)
	}
	return chunks, rows.Err()
}
