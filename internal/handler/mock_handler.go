package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polisure/certprep-backend/internal/exam"
	"github.com/polisure/certprep-backend/internal/middleware"
	"github.com/polisure/certprep-backend/internal/model"
	"github.com/polisure/certprep-backend/internal/paper"
	"github.com/polisure/certprep-backend/internal/response"
	"github.com/polisure/certprep-backend/internal/service"
	"github.com/polisure/certprep-backend/internal/validator"
)

// MockHandler handles the timed multi-section mock-exam endpoints.
type MockHandler struct {
	mockService *service.MockService
}

// NewMockHandler creates a new MockHandler.
func NewMockHandler(mockService *service.MockService) *MockHandler {
	return &MockHandler{mockService: mockService}
}

type startMockRequest struct {
	CertType string `json:"cert_type" binding:"required,min=1,max=64"`
}

type autosaveRequest struct {
	QuestionID string   `json:"question_id" binding:"required"`
	Labels     []string `json:"labels" binding:"max=5"`
}

// Specs godoc
// GET /api/v1/mock/specs
// Lists the exam blueprints available in the catalog.
func (h *MockHandler) Specs(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"specs": h.mockService.Specs()})
}

// Start godoc
// POST /api/v1/mock/start
// Opens a new attempt. At most one non-finalized attempt per agent.
func (h *MockHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req startMockRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	status, err := h.mockService.Start(c.Request.Context(), claims.AgentID, req.CertType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownCertType):
			response.Fail(c, http.StatusNotFound, response.ErrUnknownCertType)
		case errors.Is(err, service.ErrAttemptActive):
			response.Fail(c, http.StatusConflict, response.ErrAttemptActive)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": status})
}

// StartSection godoc
// POST /api/v1/mock/section/start
// Samples the next section's paper and starts its clock.
func (h *MockHandler) StartSection(c *gin.Context) {
	claims := middleware.GetClaims(c)
	questions, status, err := h.mockService.StartSection(c.Request.Context(), claims.AgentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveAttempt):
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		case errors.Is(err, exam.ErrSectionActive):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		case errors.Is(err, service.ErrBankNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrBankNotFound)
		case errors.Is(err, paper.ErrEmptyPool):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrPoolTooSmall)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"attempt":   status,
		"questions": questions,
	})
}

// Answer godoc
// POST /api/v1/mock/answer
// REST autosave fallback for clients without the websocket feed.
// An empty label list clears the stored answer.
func (h *MockHandler) Answer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req autosaveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.mockService.Autosave(c.Request.Context(), claims.AgentID, req.QuestionID, model.NewLabelSet(req.Labels...))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveAttempt):
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		case errors.Is(err, exam.ErrNoActiveSection):
			response.Fail(c, http.StatusConflict, response.ErrSectionNotActive)
		case errors.Is(err, exam.ErrUnknownQuestion):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrQuestionOffPaper)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"saved": req.QuestionID})
}

// SubmitSection godoc
// POST /api/v1/mock/section/submit
// Grades the running section and freezes its result.
func (h *MockHandler) SubmitSection(c *gin.Context) {
	claims := middleware.GetClaims(c)
	result, status, err := h.mockService.SubmitSection(c.Request.Context(), claims.AgentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveAttempt):
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		case errors.Is(err, exam.ErrNoActiveSection):
			response.Fail(c, http.StatusConflict, response.ErrSectionNotActive)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"section": result,
		"attempt": status,
	})
}

// Status godoc
// GET /api/v1/mock/status
// Snapshot of the current attempt, including the section clock.
func (h *MockHandler) Status(c *gin.Context) {
	claims := middleware.GetClaims(c)
	status, err := h.mockService.Status(claims.AgentID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": status})
}

// Finalize godoc
// POST /api/v1/mock/finalize
// Applies the pass rule across all submitted sections and queues the
// record for persistence. Safe to call more than once.
func (h *MockHandler) Finalize(c *gin.Context) {
	claims := middleware.GetClaims(c)
	result, err := h.mockService.Finalize(c.Request.Context(), claims.AgentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveAttempt):
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		case errors.Is(err, exam.ErrSectionsRemain):
			response.Fail(c, http.StatusConflict, response.ErrSectionsRemain)
		case errors.Is(err, exam.ErrNoActiveSection):
			response.Fail(c, http.StatusConflict, response.ErrSectionNotActive)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Reset godoc
// POST /api/v1/mock/reset
// Abandons the current attempt without recording anything.
func (h *MockHandler) Reset(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.mockService.Reset(c.Request.Context(), claims.AgentID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}
