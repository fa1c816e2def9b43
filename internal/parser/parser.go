// Package parser extracts text content from uploaded documents. PDF, DOCX
// and HTML go through tabula; markdown and plain text are read directly.
package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/docx"
	"github.com/tsawler/tabula/htmldoc"
	pdfreader "github.com/tsawler/tabula/reader"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	errs "github.com/warraqio/warraq/internal/pkg/errors"
	"github.com/warraqio/warraq/internal/pkg/logutil"
)

// ParsedFile is the extraction result for one document.
type ParsedFile struct {
	// Content is the extracted text. PDF content is rendered as markdown so
	// downstream chunking can see headings and tables.
	Content string
	// Title comes from document metadata or the first heading; falls back to
	// the filename without extension.
	Title string
	// FileType is the lowercase extension without the dot, e.g. "pdf".
	FileType string
}

// Parse extracts text from the file at path. The extension of filename, not
// path, decides the format so uploads parsed from temp files keep their
// original type.
func Parse(ctx context.Context, path string, filename string) (*ParsedFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	switch ext {
	case ".txt":
		content, err := readFile(path)
		if err != nil {
			return nil, err
		}
		return &ParsedFile{Content: content, Title: stem, FileType: "txt"}, nil
	case ".md":
		content, err := readFile(path)
		if err != nil {
			return nil, err
		}
		title := firstHeading(content)
		if title == "" {
			title = stem
		}
		return &ParsedFile{Content: content, Title: title, FileType: "md"}, nil
	case ".pdf":
		return parsePDF(ctx, path, filename, stem)
	case ".docx":
		return parseDOCX(path, stem)
	case ".html", ".htm":
		return parseHTML(path, stem)
	default:
		return nil, fmt.Errorf("%w: unsupported extension: %s", errs.ErrInvalidFile, ext)
	}
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func parsePDF(ctx context.Context, path string, filename string, stem string) (*ParsedFile, error) {
	logger := logutil.GetLogger(ctx)
	md, warnings, err := tabula.Open(path).JoinParagraphs().ToMarkdown()
	if err != nil {
		return nil, fmt.Errorf("extract pdf: %w", err)
	}
	for _, w := range warnings {
		logger.Warn("pdf extraction warning", zap.String("file", filename), zap.String("warning", w.Message))
	}
	title := pdfMetaTitle(path)
	if title == "" {
		title = firstHeading(md)
	}
	if title == "" {
		title = stem
	}
	return &ParsedFile{Content: strings.TrimSpace(md), Title: title, FileType: "pdf"}, nil
}

// pdfMetaTitle reads the Title entry of the PDF info dictionary. Any failure
// just means no metadata title.
func pdfMetaTitle(path string) string {
	r, err := pdfreader.Open(path)
	if err != nil {
		return ""
	}
	defer r.Close()
	info, err := r.GetInfo()
	if err != nil || info == nil {
		return ""
	}
	if s, ok := info.Get("Title").(core.String); ok {
		return strings.TrimSpace(string(s))
	}
	return ""
}

func parseDOCX(path string, stem string) (*ParsedFile, error) {
	r, err := docx.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer r.Close()
	content, err := r.Text()
	if err != nil {
		return nil, fmt.Errorf("extract docx: %w", err)
	}
	title := strings.TrimSpace(r.Metadata().Title)
	if title == "" {
		title = stem
	}
	return &ParsedFile{Content: strings.TrimSpace(content), Title: title, FileType: "docx"}, nil
}

func parseHTML(path string, stem string) (*ParsedFile, error) {
	r, err := htmldoc.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html: %w", err)
	}
	defer r.Close()
	content, err := r.Text()
	if err != nil {
		return nil, fmt.Errorf("extract html: %w", err)
	}
	title := strings.TrimSpace(r.Metadata().Title)
	if title == "" {
		title = stem
	}
	return &ParsedFile{Content: strings.TrimSpace(content), Title: title, FileType: "html"}, nil
}

// firstHeading returns the text of the first markdown heading, or "".
func firstHeading(content string) string {
	md := goldmark.New()
	rd := gmtext.NewReader([]byte(content))
	doc := md.Parser().Parse(rd)
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*ast.Heading); ok {
			return strings.TrimSpace(string(h.Text(rd.Source())))
		}
	}
	return ""
}
