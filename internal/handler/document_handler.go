package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/warraqio/warraq/internal/config"
	"github.com/warraqio/warraq/internal/model"
	"github.com/warraqio/warraq/internal/pkg/errcode"
	"github.com/warraqio/warraq/internal/pkg/response"
	"github.com/warraqio/warraq/internal/service"
)

const (
	maxFilenameRunes = 255
	minDocumentIDLen = 10
)

type DocumentHandler struct {
	documents *service.DocumentService
	cfg       config.UploadConfig
}

func NewDocumentHandler(documents *service.DocumentService, cfg config.UploadConfig) *DocumentHandler {
	return &DocumentHandler{documents: documents, cfg: cfg}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "file is required")
		return
	}
	filename := filepath.Base(file.Filename)
	if filename == "." || filename == string(filepath.Separator) || utf8.RuneCountInString(filename) > maxFilenameRunes {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid filename")
		return
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !h.extAllowed(ext) {
		response.Error(c, http.StatusUnsupportedMediaType, errcode.ErrInvalidFile,
			fmt.Sprintf("unsupported file type, allowed: %s", strings.Join(h.cfg.AllowedExts, ", ")))
		return
	}
	if file.Size > h.cfg.MaxFileSize {
		response.Error(c, http.StatusRequestEntityTooLarge, errcode.ErrFileTooLarge,
			fmt.Sprintf("file too large, max %d bytes", h.cfg.MaxFileSize))
		return
	}
	strategy := c.PostForm("chunking_strategy")
	if !model.ValidStrategy(strategy) {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid chunking strategy")
		return
	}

	// The parser needs a file on disk, so the upload goes through a temp file.
	tmp, err := os.CreateTemp("", "warraq-upload-*"+ext)
	if err != nil {
		handleError(c, err)
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		response.Error(c, http.StatusInternalServerError, errcode.ErrUploadFailed, "failed to save upload")
		return
	}

	result, err := h.documents.ProcessFile(c.Request.Context(), tmpPath, filename, strategy)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *DocumentHandler) extAllowed(ext string) bool {
	for _, allowed := range h.cfg.AllowedExts {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (h *DocumentHandler) List(c *gin.Context) {
	limit := 0
	if value := c.Query("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	docs, err := h.documents.List(c.Request.Context(), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Chunks(c *gin.Context) {
	chunks, err := h.documents.GetChunks(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chunks)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if len(id) < minDocumentIDLen {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid document id")
		return
	}
	if err := h.documents.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
