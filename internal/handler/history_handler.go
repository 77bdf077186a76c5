package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/polisure/certprep-backend/internal/middleware"
	"github.com/polisure/certprep-backend/internal/response"
	"github.com/polisure/certprep-backend/internal/service"
)

// HistoryHandler serves finalized attempt records.
type HistoryHandler struct {
	historyService *service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// List godoc
// GET /api/v1/history?page=1&per_page=20
func (h *HistoryHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	results, total, err := h.historyService.List(c.Request.Context(), claims.AgentID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, results, response.NewPagination(page, perPage, total))
}

// Get godoc
// GET /api/v1/history/:attempt_id
// Returns one record with its wrong items, scoped to the caller.
func (h *HistoryHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.historyService.Get(c.Request.Context(), claims.AgentID, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}
