package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"dsn": "postgres://u:p@localhost/warraq?sslmode=disable"},
		"file_store": {"type": "local", "dir": "/tmp/files"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Listen)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.Equal(t, 512, cfg.Chunking.ChunkSize)
	require.Equal(t, 50, cfg.Chunking.ChunkOverlap)
	require.Equal(t, 1000, cfg.Chunking.MaxChunkSize)
	require.Equal(t, 200, cfg.Chunking.MinChunkSize)
	require.InDelta(t, 0.7, cfg.Retrieval.VectorWeight, 1e-9)
	require.InDelta(t, 0.3, cfg.Retrieval.KeywordWeight, 1e-9)
	require.Equal(t, 5, cfg.Retrieval.TopK)
	require.EqualValues(t, 10*1024*1024, cfg.Upload.MaxFileSize)
	require.Contains(t, cfg.Upload.AllowedExts, ".pdf")
	require.Contains(t, cfg.Upload.AllowedExts, ".md")
	require.Equal(t, 1024, cfg.Embedding.Dim)
	require.Equal(t, 32, cfg.Embedding.BatchSize)
	require.Equal(t, 60, cfg.AI.Timeout)
}

func TestLoadRejectsChunkSizeOutOfRange(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"dsn": "postgres://localhost/x"},
		"file_store": {"dir": "/tmp/files"},
		"chunking": {"chunk_size": 50}
	}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRequiresDatabase(t *testing.T) {
	path := writeConfig(t, `{"file_store": {"dir": "/tmp/files"}}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRequiresLocalDir(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"dsn": "postgres://localhost/x"},
		"file_store": {"type": "local"}
	}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsIncompleteS3(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"dsn": "postgres://localhost/x"},
		"file_store": {"type": "s3", "s3": {"endpoint": "http://minio:9000"}}
	}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestNormalizeExtensions(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"dsn": "postgres://localhost/x"},
		"file_store": {"dir": "/tmp/files"},
		"upload": {"allowed_exts": ["TXT", ".PDF"]}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{".txt", ".pdf"}, cfg.Upload.AllowedExts)
}

func TestLoadRejectsProviderWithoutModels(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"dsn": "postgres://localhost/x"},
		"file_store": {"dir": "/tmp/files"},
		"ai": {"providers": [{"provider": "gemini"}]}
	}`)
	_, err := Load(path)
	require.Error(t, err)
}
