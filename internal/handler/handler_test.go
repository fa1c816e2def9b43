package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/warraqio/warraq/internal/benchmark"
	"github.com/warraqio/warraq/internal/config"
	"github.com/warraqio/warraq/internal/model"
	"github.com/warraqio/warraq/internal/pkg/errcode"
	appErr "github.com/warraqio/warraq/internal/pkg/errors"
	"github.com/warraqio/warraq/internal/service"
)

type frame struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type stubRetriever struct {
	chunks []model.Chunk
	err    error
}

func (s stubRetriever) Retrieve(ctx context.Context, query string, topK int, documentID string, filter model.ChunkFilter) ([]model.Chunk, error) {
	return s.chunks, s.err
}

func newTestRouter(t *testing.T, retriever service.Retriever) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	deps := RouterDeps{
		Documents: NewDocumentHandler(nil, config.UploadConfig{
			MaxFileSize: 1024,
			AllowedExts: []string{".pdf", ".txt", ".md"},
		}),
		Query:  NewQueryHandler(service.NewRagService(retriever, nil, 5, 0)),
		System: NewSystemHandler(nil, nil, nil, benchmark.NewSuite()),
	}
	RegisterRoutes(engine.Group("/api/v1"), deps)
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, frame) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	var f frame
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &f))
	return resp, f
}

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadRequiresFile(t *testing.T) {
	engine := newTestRouter(t, nil)
	body, contentType := multipartBody(t, "", nil, map[string]string{"chunking_strategy": "auto"})
	resp, f := doRequest(t, engine, http.MethodPost, "/api/v1/documents", body, contentType)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, errcode.ErrInvalid, f.Code)
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	engine := newTestRouter(t, nil)
	body, contentType := multipartBody(t, "evil.exe", []byte("x"), nil)
	resp, f := doRequest(t, engine, http.MethodPost, "/api/v1/documents", body, contentType)
	require.Equal(t, http.StatusUnsupportedMediaType, resp.Code)
	require.Equal(t, errcode.ErrInvalidFile, f.Code)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	engine := newTestRouter(t, nil)
	body, contentType := multipartBody(t, "big.txt", bytes.Repeat([]byte("a"), 2048), nil)
	resp, f := doRequest(t, engine, http.MethodPost, "/api/v1/documents", body, contentType)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	require.Equal(t, errcode.ErrFileTooLarge, f.Code)
}

func TestUploadRejectsLongFilename(t *testing.T) {
	engine := newTestRouter(t, nil)
	filename := strings.Repeat("a", 252) + ".txt"
	body, contentType := multipartBody(t, filename, []byte("hello"), nil)
	resp, f := doRequest(t, engine, http.MethodPost, "/api/v1/documents", body, contentType)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, errcode.ErrInvalid, f.Code)
	require.Equal(t, "invalid filename", f.Message)
}

func TestUploadRejectsBadStrategy(t *testing.T) {
	engine := newTestRouter(t, nil)
	body, contentType := multipartBody(t, "notes.txt", []byte("hello"), map[string]string{"chunking_strategy": "zigzag"})
	resp, f := doRequest(t, engine, http.MethodPost, "/api/v1/documents", body, contentType)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, errcode.ErrInvalid, f.Code)
	require.Equal(t, "invalid chunking strategy", f.Message)
}

func TestQueryRejectsBadJSON(t *testing.T) {
	engine := newTestRouter(t, nil)
	resp, f := doRequest(t, engine, http.MethodPost, "/api/v1/query", strings.NewReader("{"), "application/json")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, errcode.ErrInvalid, f.Code)
}

func TestQueryRejectsTopKOutOfRange(t *testing.T) {
	engine := newTestRouter(t, nil)
	for _, topK := range []int{0, -1, 21} {
		body := fmt.Sprintf(`{"question":"what is indexing","top_k":%d}`, topK)
		resp, f := doRequest(t, engine, http.MethodPost, "/api/v1/query", strings.NewReader(body), "application/json")
		require.Equal(t, http.StatusBadRequest, resp.Code, "top_k=%d", topK)
		require.Equal(t, errcode.ErrInvalid, f.Code)
		require.Equal(t, "top_k must be between 1 and 20", f.Message)
	}
}

func TestQueryRejectsEmptyQuestion(t *testing.T) {
	engine := newTestRouter(t, stubRetriever{})
	resp, f := doRequest(t, engine, http.MethodPost, "/api/v1/query", strings.NewReader(`{"question":"   "}`), "application/json")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, errcode.ErrInvalid, f.Code)
}

func TestQueryRejectsLongQuestion(t *testing.T) {
	engine := newTestRouter(t, stubRetriever{})
	question := strings.Repeat("a", 1001)
	body := fmt.Sprintf(`{"question":%q}`, question)
	resp, f := doRequest(t, engine, http.MethodPost, "/api/v1/query", strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, errcode.ErrInvalid, f.Code)
}

func TestQueryAnswersExtractively(t *testing.T) {
	engine := newTestRouter(t, stubRetriever{chunks: []model.Chunk{
		{ID: "c1", DocumentID: "doc_1234567890abcdef", Content: "Indexing builds lookup structures ahead of query time."},
	}})
	resp, f := doRequest(t, engine, http.MethodPost, "/api/v1/query", strings.NewReader(`{"question":"what is indexing"}`), "application/json")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 0, f.Code)

	var result model.QueryResult
	require.NoError(t, json.Unmarshal(f.Data, &result))
	require.Equal(t, "Indexing builds lookup structures ahead of query time.", result.Answer)
	require.Len(t, result.Sources, 1)
	require.Equal(t, "c1", result.Sources[0].ChunkID)
}

func TestDeleteRejectsShortID(t *testing.T) {
	engine := newTestRouter(t, nil)
	resp, f := doRequest(t, engine, http.MethodDelete, "/api/v1/documents/short", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, errcode.ErrInvalid, f.Code)
	require.Equal(t, "invalid document id", f.Message)
}

func TestHealthWithoutDatabase(t *testing.T) {
	engine := newTestRouter(t, nil)
	resp, f := doRequest(t, engine, http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)

	var data struct {
		Status   string `json:"status"`
		Version  string `json:"version"`
		Database string `json:"database"`
		AI       struct {
			Generator bool `json:"generator"`
			Embedder  bool `json:"embedder"`
		} `json:"ai"`
	}
	require.NoError(t, json.Unmarshal(f.Data, &data))
	require.Equal(t, "degraded", data.Status)
	require.Equal(t, "disconnected", data.Database)
	require.False(t, data.AI.Generator)
	require.False(t, data.AI.Embedder)
	require.NotEmpty(t, data.Version)
}

func TestBenchmarksEndpoint(t *testing.T) {
	engine := newTestRouter(t, nil)
	resp, f := doRequest(t, engine, http.MethodGet, "/api/v1/benchmarks", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)

	var data struct {
		Results []benchmark.Result `json:"results"`
		Report  string             `json:"report"`
	}
	require.NoError(t, json.Unmarshal(f.Data, &data))
	require.Len(t, data.Results, 6)
	require.Contains(t, data.Report, "# Benchmark Report")
}

func TestHandleErrorMapsSentinels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{fmt.Errorf("%w: no such document", appErr.ErrNotFound), http.StatusNotFound, errcode.ErrNotFound},
		{fmt.Errorf("%w: question cannot be empty", appErr.ErrInvalid), http.StatusBadRequest, errcode.ErrInvalid},
		{fmt.Errorf("%w: unsupported extension", appErr.ErrInvalidFile), http.StatusUnsupportedMediaType, errcode.ErrInvalidFile},
		{appErr.ErrFileTooLarge, http.StatusRequestEntityTooLarge, errcode.ErrFileTooLarge},
		{appErr.ErrConflict, http.StatusConflict, errcode.ErrConflict},
		{errors.New("plain failure"), http.StatusInternalServerError, errcode.ErrInternal},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(resp)
		c.Request = httptest.NewRequest(http.MethodGet, "/probe", nil)
		handleError(c, tc.err)
		require.Equal(t, tc.status, resp.Code, "err=%v", tc.err)
		var f frame
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &f))
		require.Equal(t, tc.code, f.Code, "err=%v", tc.err)
	}
}
