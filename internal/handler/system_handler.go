package handler

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/warraqio/warraq/internal/ai"
	"github.com/warraqio/warraq/internal/benchmark"
	"github.com/warraqio/warraq/internal/pkg/response"
	"github.com/warraqio/warraq/internal/service"
)

const apiVersion = "1.0.0"

type SystemHandler struct {
	documents *service.DocumentService
	ai        *ai.Manager
	db        *sql.DB
	bench     *benchmark.Suite
}

func NewSystemHandler(documents *service.DocumentService, manager *ai.Manager, db *sql.DB, bench *benchmark.Suite) *SystemHandler {
	return &SystemHandler{documents: documents, ai: manager, db: db, bench: bench}
}

func (h *SystemHandler) Health(c *gin.Context) {
	dbStatus := "disconnected"
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err == nil {
			dbStatus = "connected"
		}
	}
	status := "healthy"
	if dbStatus != "connected" {
		status = "degraded"
	}
	aiStatus := gin.H{"generator": false, "embedder": false}
	if h.ai != nil {
		aiStatus = gin.H{"generator": h.ai.HasGenerator(), "embedder": h.ai.HasEmbedder()}
	}
	response.Success(c, gin.H{
		"status":   status,
		"version":  apiVersion,
		"database": dbStatus,
		"ai":       aiStatus,
	})
}

func (h *SystemHandler) Stats(c *gin.Context) {
	stats, err := h.documents.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, stats)
}

func (h *SystemHandler) Benchmarks(c *gin.Context) {
	results := h.bench.Run(c.Request.Context())
	response.Success(c, gin.H{
		"results": results,
		"report":  benchmark.Report(results),
	})
}
