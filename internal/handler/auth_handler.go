package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/polisure/certprep-backend/internal/middleware"
	"github.com/polisure/certprep-backend/internal/model"
	"github.com/polisure/certprep-backend/internal/repository"
	"github.com/polisure/certprep-backend/internal/response"
	"github.com/polisure/certprep-backend/internal/service"
	"github.com/polisure/certprep-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	agentRepo   *repository.AgentRepository
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, agentRepo *repository.AgentRepository) *AuthHandler {
	return &AuthHandler{authService: authService, agentRepo: agentRepo}
}

// Login godoc
// POST /api/v1/auth/login
// Validates employee ID + password, checks for an existing session (rejects
// if active), returns a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	agent, err := h.agentRepo.GetByEmpID(c.Request.Context(), req.EmpID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.authService.CheckPassword(agent.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateAgentToken(c.Request.Context(), agent.ID, agent.IsAdmin)
	if err != nil {
		if errors.Is(err, service.ErrSessionAlreadyActive) {
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"agent": gin.H{
			"id":         agent.ID,
			"emp_id":     agent.EmpID,
			"name":       agent.Name,
			"department": agent.Department,
			"is_admin":   agent.IsAdmin,
		},
	})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated agent.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	agent, err := h.agentRepo.GetByID(c.Request.Context(), claims.AgentID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"agent": gin.H{
			"id":         agent.ID,
			"emp_id":     agent.EmpID,
			"name":       agent.Name,
			"department": agent.Department,
			"is_admin":   agent.IsAdmin,
		},
	})
}

// Logout godoc
// POST /api/v1/auth/logout
// Logs out the currently authenticated agent.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.ResetAgentSession(c.Request.Context(), claims.AgentID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ResetSession godoc
// POST /api/v1/admin/agents/:id/reset-session
// Clears an agent's single-device session so they can sign in again.
func (h *AuthHandler) ResetSession(c *gin.Context) {
	agentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetAgentSession(c.Request.Context(), agentID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
