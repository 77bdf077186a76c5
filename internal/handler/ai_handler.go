package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/polisure/certprep-backend/internal/ai"
	"github.com/polisure/certprep-backend/internal/middleware"
	"github.com/polisure/certprep-backend/internal/response"
	"github.com/polisure/certprep-backend/internal/service"
	"github.com/polisure/certprep-backend/internal/validator"
)

// AIHandler serves hint and explanation requests backed by the AI client.
type AIHandler struct {
	aiClient       *ai.Client
	bankService    *service.BankService
	historyService *service.HistoryService
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(aiClient *ai.Client, bankService *service.BankService, historyService *service.HistoryService) *AIHandler {
	return &AIHandler{
		aiClient:       aiClient,
		bankService:    bankService,
		historyService: historyService,
	}
}

type hintRequest struct {
	CertType   string `json:"cert_type" binding:"required,min=1,max=64"`
	QuestionID string `json:"question_id" binding:"required"`
}

type explainRequest struct {
	AttemptID  string `json:"attempt_id" binding:"required,uuid"`
	QuestionID string `json:"question_id" binding:"required"`
}

// Hint godoc
// POST /api/v1/ai/hint
// Returns a nudge for a question without revealing its answer.
func (h *AIHandler) Hint(c *gin.Context) {
	if !h.aiClient.Enabled() {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAIDisabled)
		return
	}

	var req hintRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pool, err := h.bankService.Pool(c.Request.Context(), req.CertType)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrBankNotFound)
		return
	}
	for _, q := range pool {
		if q.ID != req.QuestionID {
			continue
		}
		hint, err := h.aiClient.Hint(c.Request.Context(), q)
		if err != nil {
			response.Fail(c, http.StatusBadGateway, response.ErrAIUnavailable)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"hint": hint})
		return
	}

	response.Fail(c, http.StatusNotFound, response.ErrQuestionOffPaper)
}

// Explain godoc
// POST /api/v1/ai/explain
// Explains a wrong item from one of the caller's finalized attempts.
func (h *AIHandler) Explain(c *gin.Context) {
	if !h.aiClient.Enabled() {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAIDisabled)
		return
	}

	claims := middleware.GetClaims(c)
	var req explainRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attemptID, _ := uuid.Parse(req.AttemptID)
	result, err := h.historyService.Get(c.Request.Context(), claims.AgentID, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	for _, row := range result.WrongItems {
		if row.QuestionID != req.QuestionID {
			continue
		}
		explanation, err := h.aiClient.Explain(c.Request.Context(), row)
		if err != nil {
			response.Fail(c, http.StatusBadGateway, response.ErrAIUnavailable)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"explanation": explanation})
		return
	}

	response.Fail(c, http.StatusNotFound, response.ErrQuestionOffPaper)
}
