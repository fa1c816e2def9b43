package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Listen      string          `json:"listen"`
	CORSOrigins []string        `json:"cors_origins"`
	LogConfig   LogConfig       `json:"log_config"`
	Database    DatabaseConfig  `json:"database"`
	Chunking    ChunkingConfig  `json:"chunking"`
	Retrieval   RetrievalConfig `json:"retrieval"`
	Upload      UploadConfig    `json:"upload"`
	Embedding   EmbeddingConfig `json:"embedding"`
	AI          AIConfig        `json:"ai"`
	FileStore   FileStoreConfig `json:"file_store"`
}

type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// ChunkingConfig sizes are rune counts except ChunkOverlap, which is a word
// count.
type ChunkingConfig struct {
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
	MaxChunkSize int `json:"max_chunk_size"`
	MinChunkSize int `json:"min_chunk_size"`
}

type RetrievalConfig struct {
	VectorWeight  float64 `json:"vector_weight"`
	KeywordWeight float64 `json:"keyword_weight"`
	TopK          int     `json:"top_k"`
}

type UploadConfig struct {
	MaxFileSize int64    `json:"max_file_size"`
	AllowedExts []string `json:"allowed_exts"`
}

type EmbeddingConfig struct {
	Dim       int `json:"dim"`
	BatchSize int `json:"batch_size"`
	LRUSize   int `json:"lru_size"`
	LRUTTLSec int `json:"lru_ttl_sec"`
	DBTTLDays int `json:"db_ttl_days"`
}

type AIConfig struct {
	Providers     []AIProviderConfig `json:"providers"`
	Timeout       int                `json:"timeout"`
	MaxInputChars int                `json:"max_input_chars"`
}

// AIProviderConfig wires one provider entry. Model enables generation,
// EmbedModel enables embeddings; at least one must be set. Data is passed
// to the provider factory as-is.
type AIProviderConfig struct {
	Provider   string      `json:"provider"`
	Model      string      `json:"model"`
	EmbedModel string      `json:"embed_model"`
	Data       interface{} `json:"data"`
}

type FileStoreConfig struct {
	Type string   `json:"type"`
	Dir  string   `json:"dir"`
	S3   S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
	UseSSL    bool   `json:"use_ssl"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize fills defaults and checks bounds. Zero values take the default;
// out-of-range values are rejected.
func (c *Config) Normalize() error {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}

	ck := &c.Chunking
	if ck.ChunkSize == 0 {
		ck.ChunkSize = 512
	}
	if ck.ChunkSize < 100 || ck.ChunkSize > 2000 {
		return fmt.Errorf("chunking.chunk_size must be between 100 and 2000")
	}
	if ck.ChunkOverlap == 0 {
		ck.ChunkOverlap = 50
	}
	if ck.ChunkOverlap < 0 {
		return fmt.Errorf("chunking.chunk_overlap must not be negative")
	}
	if ck.MaxChunkSize == 0 {
		ck.MaxChunkSize = 1000
	}
	if ck.MaxChunkSize < 0 {
		return fmt.Errorf("chunking.max_chunk_size must be positive")
	}
	if ck.MinChunkSize == 0 {
		ck.MinChunkSize = 200
	}
	if ck.MinChunkSize < 0 {
		return fmt.Errorf("chunking.min_chunk_size must not be negative")
	}

	rt := &c.Retrieval
	if rt.VectorWeight == 0 && rt.KeywordWeight == 0 {
		rt.VectorWeight = 0.7
		rt.KeywordWeight = 0.3
	}
	if rt.VectorWeight < 0 || rt.KeywordWeight < 0 {
		return fmt.Errorf("retrieval weights must not be negative")
	}
	if rt.TopK == 0 {
		rt.TopK = 5
	}
	if rt.TopK < 1 || rt.TopK > 20 {
		return fmt.Errorf("retrieval.top_k must be between 1 and 20")
	}

	up := &c.Upload
	if up.MaxFileSize == 0 {
		up.MaxFileSize = 10 * 1024 * 1024
	}
	if up.MaxFileSize < 1024 || up.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("upload.max_file_size must be between 1KB and 100MB")
	}
	if len(up.AllowedExts) == 0 {
		up.AllowedExts = []string{".pdf", ".docx", ".txt", ".md", ".html"}
	}
	for i, ext := range up.AllowedExts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		up.AllowedExts[i] = ext
	}

	em := &c.Embedding
	if em.Dim == 0 {
		em.Dim = 1024
	}
	if em.Dim < 0 {
		return fmt.Errorf("embedding.dim must be positive")
	}
	if em.BatchSize == 0 {
		em.BatchSize = 32
	}
	if em.BatchSize < 0 {
		return fmt.Errorf("embedding.batch_size must be positive")
	}
	if em.LRUSize == 0 {
		em.LRUSize = 1024
	}
	if em.LRUTTLSec == 0 {
		em.LRUTTLSec = 600
	}
	if em.DBTTLDays == 0 {
		em.DBTTLDays = 30
	}

	if c.AI.Timeout == 0 {
		c.AI.Timeout = 60
	}
	for _, p := range c.AI.Providers {
		if strings.TrimSpace(p.Provider) == "" {
			return fmt.Errorf("ai.providers entries require a provider name")
		}
		if p.Model == "" && p.EmbedModel == "" {
			return fmt.Errorf("ai provider %q has neither model nor embed_model", p.Provider)
		}
	}

	fs := &c.FileStore
	if fs.Type == "" {
		fs.Type = "local"
	}
	switch fs.Type {
	case "local":
		if fs.Dir == "" {
			return fmt.Errorf("file_store.dir is required for local store")
		}
	case "s3":
		if fs.S3.Endpoint == "" || fs.S3.Bucket == "" || fs.S3.SecretID == "" || fs.S3.SecretKey == "" {
			return fmt.Errorf("file_store.s3 endpoint/bucket/secret_id/secret_key are required for s3 store")
		}
		if fs.S3.Region == "" {
			fs.S3.Region = "us-east-1"
		}
	default:
		return fmt.Errorf("file_store.type must be local or s3")
	}
	return nil
}
