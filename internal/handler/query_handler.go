package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/warraqio/warraq/internal/pkg/errcode"
	"github.com/warraqio/warraq/internal/pkg/response"
	"github.com/warraqio/warraq/internal/service"
)

type QueryHandler struct {
	rag *service.RagService
}

func NewQueryHandler(rag *service.RagService) *QueryHandler {
	return &QueryHandler{rag: rag}
}

type queryRequest struct {
	Question   string `json:"question"`
	TopK       *int   `json:"top_k"`
	DocumentID string `json:"document_id"`
	Model      string `json:"model"`
}

func (h *QueryHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	// A missing top_k falls back to the service default, an explicit value
	// has to be in range.
	topK := 0
	if req.TopK != nil {
		if *req.TopK < 1 || *req.TopK > 20 {
			response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "top_k must be between 1 and 20")
			return
		}
		topK = *req.TopK
	}
	result, err := h.rag.Query(c.Request.Context(), req.Question, topK, req.DocumentID, req.Model)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
