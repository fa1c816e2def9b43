package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/warraqio/warraq/internal/middleware"
)

type RouterDeps struct {
	Documents *DocumentHandler
	Query     *QueryHandler
	System    *SystemHandler
}

// RegisterRoutes wires the API under the given group. Each route carries its
// own rate limit keyed by client ip.
func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/documents", middleware.RateLimit(10, time.Minute), deps.Documents.Upload)
	api.GET("/documents", middleware.RateLimit(30, time.Minute), deps.Documents.List)
	api.GET("/documents/:id", middleware.RateLimit(30, time.Minute), deps.Documents.Get)
	api.GET("/documents/:id/chunks", middleware.RateLimit(30, time.Minute), deps.Documents.Chunks)
	api.DELETE("/documents/:id", middleware.RateLimit(20, time.Minute), deps.Documents.Delete)

	api.POST("/query", middleware.RateLimit(20, time.Minute), deps.Query.Query)

	api.GET("/stats", middleware.RateLimit(30, time.Minute), deps.System.Stats)
	api.GET("/health", middleware.RateLimit(100, time.Minute), deps.System.Health)
	api.GET("/benchmarks", middleware.RateLimit(5, time.Minute), deps.System.Benchmarks)
}
