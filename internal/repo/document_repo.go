package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/warraqio/warraq/internal/model"
	"github.com/warraqio/warraq/internal/pkg/dbutil"
	appErr "github.com/warraqio/warraq/internal/pkg/errors"
)

var documentFields = []string{
	"id", "filename", "file_type", "title", "content", "language",
	"chunking_strategy", "has_arabic", "has_diacritics", "word_count",
	"ctime", "ptime",
}

// documentListFields leaves content out so listings stay light.
var documentListFields = []string{
	"id", "filename", "file_type", "title", "language",
	"chunking_strategy", "has_arabic", "has_diacritics", "word_count",
	"ctime", "ptime",
}

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":                doc.ID,
		"filename":          doc.Filename,
		"file_type":         doc.FileType,
		"title":             doc.Title,
		"content":           doc.Content,
		"language":          doc.Language,
		"chunking_strategy": doc.ChunkingStrategy,
		"has_arabic":        doc.HasArabic,
		"has_diacritics":    doc.HasDiacritics,
		"word_count":        doc.WordCount,
		"ctime":             doc.Ctime,
		"ptime":             doc.Ptime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
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

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var doc model.Document
	if err := rows.Scan(
		&doc.ID, &doc.Filename, &doc.FileType, &doc.Title, &doc.Content,
		&doc.Language, &doc.ChunkingStrategy, &doc.HasArabic, &doc.HasDiacritics,
		&doc.WordCount, &doc.Ctime, &doc.Ptime,
	); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns documents newest first, without content. limit <= 0 means no
// limit.
func (r *DocumentRepo) List(ctx context.Context, limit int) ([]model.Document, error) {
	where := map[string]interface{}{
		"_orderby": "ctime desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{0, uint(limit)}
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentListFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(
			&doc.ID, &doc.Filename, &doc.FileType, &doc.Title,
			&doc.Language, &doc.ChunkingStrategy, &doc.HasArabic, &doc.HasDiacritics,
			&doc.WordCount, &doc.Ctime, &doc.Ptime,
		); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := builder.BuildDelete("documents", map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
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

func (r *DocumentRepo) SetStrategy(ctx context.Context, id string, strategy string, ptime int64) error {
	where := map[string]interface{}{"id": id}
	update := map[string]interface{}{
		"chunking_strategy": strategy,
		"ptime":             ptime,
	}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
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

func (r *DocumentRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM documents`
	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DocumentRepo) CountArabic(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM documents WHERE has_arabic = TRUE`
	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DocumentRepo) CountByStrategy(ctx context.Context) (map[string]int64, error) {
	const query = `SELECT chunking_strategy, COUNT(*) FROM documents GROUP BY chunking_strategy`
	return r.countGroups(ctx, query)
}

func (r *DocumentRepo) CountByLanguage(ctx context.Context) (map[string]int64, error) {
	const query = `SELECT language, COUNT(*) FROM documents GROUP BY language`
	return r.countGroups(ctx, query)
}

func (r *DocumentRepo) countGroups(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	groups := map[string]int64{}
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		groups[key] = count
	}
	return groups, rows.Err()
}
