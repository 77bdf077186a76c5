package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polisure/certprep-backend/internal/middleware"
	"github.com/polisure/certprep-backend/internal/model"
	"github.com/polisure/certprep-backend/internal/response"
	"github.com/polisure/certprep-backend/internal/service"
	"github.com/polisure/certprep-backend/internal/validator"
)

// PracticeHandler handles the untimed step-through drill endpoints.
type PracticeHandler struct {
	practiceService *service.PracticeService
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService}
}

type startPracticeRequest struct {
	CertType string   `json:"cert_type" binding:"required,min=1,max=64"`
	Tags     []string `json:"tags"`
	Count    int      `json:"count" binding:"gte=0,lte=500"`
}

type answerRequest struct {
	Labels []string `json:"labels" binding:"required,min=1,max=5"`
}

// Start godoc
// POST /api/v1/practice/start
// Samples a drill paper from the tag-filtered pool.
func (h *PracticeHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req startPracticeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	paper, err := h.practiceService.Start(c.Request.Context(), claims.AgentID, req.CertType, req.Tags, req.Count)
	if err != nil {
		if errors.Is(err, service.ErrBankNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrBankNotFound)
			return
		}
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrEmptyPool)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"total":    len(paper),
		"question": paper.ForClient()[0],
	})
}

// Current godoc
// GET /api/v1/practice/current
// Returns the question under the cursor, plus feedback if already answered.
func (h *PracticeHandler) Current(c *gin.Context) {
	claims := middleware.GetClaims(c)
	q, row, err := h.practiceService.Current(claims.AgentID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}

	answered, correct, cursor, total, _ := h.practiceService.Progress(claims.AgentID)
	body := gin.H{
		"question": model.Paper{q}.ForClient()[0],
		"cursor":   cursor,
		"total":    total,
		"answered": answered,
		"correct":  correct,
	}
	if row != nil {
		body["feedback"] = row
	}
	response.Success(c, http.StatusOK, body)
}

// Answer godoc
// POST /api/v1/practice/answer
// Grades the current question immediately and returns the feedback row.
func (h *PracticeHandler) Answer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req answerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	row, err := h.practiceService.Submit(claims.AgentID, model.NewLabelSet(req.Labels...))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"feedback": row})
}

// Next godoc
// POST /api/v1/practice/next
func (h *PracticeHandler) Next(c *gin.Context) {
	h.move(c, h.practiceService.Next)
}

// Prev godoc
// POST /api/v1/practice/prev
func (h *PracticeHandler) Prev(c *gin.Context) {
	h.move(c, h.practiceService.Prev)
}

func (h *PracticeHandler) move(c *gin.Context, step func(int) error) {
	claims := middleware.GetClaims(c)
	if err := step(claims.AgentID); err != nil {
		if errors.Is(err, service.ErrNoPracticeSession) {
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
			return
		}
		response.Fail(c, http.StatusConflict, response.ErrQuestionOffPaper)
		return
	}
	h.Current(c)
}

// Gradable godoc
// GET /api/v1/practice/gradable?cert_type=life&tags=a,b
// Counts the questions available for a drill before starting one.
func (h *PracticeHandler) Gradable(c *gin.Context) {
	certType := c.Query("cert_type")
	if certType == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	var tags []string
	if raw := c.Query("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	count, err := h.practiceService.Gradable(c.Request.Context(), certType, tags)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrBankNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"gradable": count})
}

// Finish godoc
// POST /api/v1/practice/finish
// Ends the drill and returns the recap.
func (h *PracticeHandler) Finish(c *gin.Context) {
	claims := middleware.GetClaims(c)
	summary, err := h.practiceService.Finish(claims.AgentID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}
