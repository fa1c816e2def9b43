package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warraqio/warraq/internal/ai"
	"github.com/warraqio/warraq/internal/benchmark"
	"github.com/warraqio/warraq/internal/chunker"
	"github.com/warraqio/warraq/internal/config"
	"github.com/warraqio/warraq/internal/db"
	"github.com/warraqio/warraq/internal/embedcache"
	"github.com/warraqio/warraq/internal/filestore"
	"github.com/warraqio/warraq/internal/handler"
	"github.com/warraqio/warraq/internal/job"
	"github.com/warraqio/warraq/internal/middleware"
	"github.com/warraqio/warraq/internal/pkg/logutil"
	"github.com/warraqio/warraq/internal/repo"
	"github.com/warraqio/warraq/internal/retrieval"
	"github.com/warraqio/warraq/internal/schedule"
	"github.com/warraqio/warraq/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "warraq",
		Short: "warraq document QA server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run warraq server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := logutil.Init(cfg.LogConfig.Level, cfg.LogConfig.File)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger.Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer conn.Close()
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, logger, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, logger *zap.Logger, conn *sql.DB) error {
	logger.Info("starting server",
		zap.String("listen", cfg.Listen),
		zap.String("file_store", cfg.FileStore.Type),
	)

	docRepo := repo.NewDocumentRepo(conn)
	chunkRepo := repo.NewChunkRepo(conn)
	cacheRepo := repo.NewEmbeddingCacheRepo(conn)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	manager, err := buildAIManager(cfg, cacheRepo)
	if err != nil {
		return fmt.Errorf("init ai providers: %w", err)
	}
	if !manager.HasGenerator() {
		logger.Warn("no generation model configured, answers fall back to extracted context")
	}
	if !manager.HasEmbedder() {
		logger.Warn("no embedding model configured, retrieval is keyword only")
	}

	fixed, err := chunker.NewFixed(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("init fixed chunker: %w", err)
	}
	dynamic, err := chunker.NewDynamic(cfg.Chunking.MaxChunkSize, cfg.Chunking.MinChunkSize)
	if err != nil {
		return fmt.Errorf("init dynamic chunker: %w", err)
	}
	selector := chunker.NewSelector(fixed, dynamic)

	var embeddingSource retrieval.Embedder
	if manager.HasEmbedder() {
		embeddingSource = manager
	}
	retriever := retrieval.New(embeddingSource, chunkRepo, retrieval.Options{
		VectorWeight:  cfg.Retrieval.VectorWeight,
		KeywordWeight: cfg.Retrieval.KeywordWeight,
	})

	documentService := service.NewDocumentService(docRepo, chunkRepo, selector, manager, store, cfg.Embedding.BatchSize)
	ragService := service.NewRagService(retriever, manager, cfg.Retrieval.TopK, cfg.AI.MaxInputChars)

	deps := handler.RouterDeps{
		Documents: handler.NewDocumentHandler(documentService, cfg.Upload),
		Query:     handler.NewQueryHandler(ragService),
		System:    handler.NewSystemHandler(documentService, manager, conn, benchmark.NewSuite()),
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(logger),
		middleware.CORS(cfg.CORSOrigins),
		gzip.Gzip(gzip.DefaultCompression),
	)
	handler.RegisterRoutes(engine.Group("/api/v1"), deps)

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewEmbeddingSyncJob(documentService, cfg.Embedding.BatchSize), "* * * * *"); err != nil {
		return fmt.Errorf("schedule embedding sync: %w", err)
	}
	if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(cacheRepo, cfg.Embedding.DBTTLDays), "0 3 * * *"); err != nil {
		return fmt.Errorf("schedule cache cleanup: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: engine,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Listen))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("server stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildAIManager turns configured provider entries into the generator and
// embedder chains. A provider entry contributes a generator when Model is
// set, an embedder when EmbedModel is set, or both. Embedders are wrapped
// with the in-memory and persistent caches.
func buildAIManager(cfg *config.Config, cacheRepo *repo.EmbeddingCacheRepo) (*ai.Manager, error) {
	var generators []ai.GeneratorEntry
	var embedders []ai.EmbedderEntry
	providers := make(map[string]ai.IAIProvider)

	for _, pc := range cfg.AI.Providers {
		if pc.Model != "" {
			provider, err := ai.NewProvider(pc.Provider, pc.Data)
			if err != nil {
				return nil, fmt.Errorf("provider %s: %w", pc.Provider, err)
			}
			providers[pc.Provider] = provider
			generators = append(generators, ai.GeneratorEntry{
				Name:      pc.Provider,
				Generator: ai.NewGenerator(provider, pc.Model),
			})
		}
		if pc.EmbedModel != "" {
			embedProvider, err := ai.NewEmbedProvider(pc.Provider, pc.Data)
			if err != nil {
				return nil, fmt.Errorf("embed provider %s: %w", pc.Provider, err)
			}
			embedders = append(embedders, ai.EmbedderEntry{
				Name:     pc.Provider,
				Embedder: ai.NewEmbedder(embedProvider, pc.EmbedModel),
			})
		}
	}

	embedderChain := ai.NewGroupEmbedder(embedders)
	embedderChain = embedcache.WrapDBCacheToEmbedder(embedderChain, cacheRepo)
	embedderChain = embedcache.WrapLruCacheToEmbedder(embedderChain, cfg.Embedding.LRUSize,
		time.Duration(cfg.Embedding.LRUTTLSec)*time.Second)

	return ai.NewManager(
		ai.NewGroupGenerator(generators),
		embedderChain,
		providers,
		ai.ManagerConfig{Timeout: cfg.AI.Timeout, MaxInputChars: cfg.AI.MaxInputChars},
	), nil
}
