package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/polisure/certprep-backend/internal/response"
	"github.com/polisure/certprep-backend/internal/service"
	"github.com/polisure/certprep-backend/internal/validator"
)

// BankHandler handles question bank administration and browsing.
type BankHandler struct {
	bankService *service.BankService
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(bankService *service.BankService) *BankHandler {
	return &BankHandler{bankService: bankService}
}

type importRequest struct {
	CertType string `json:"cert_type" binding:"required,min=1,max=64"`
	Path     string `json:"path" binding:"required,min=1"`
}

// Import godoc
// POST /api/v1/admin/banks/import
// Normalizes one .xlsx workbook on the server filesystem and replaces any
// previous import of the same file.
func (h *BankHandler) Import(c *gin.Context) {
	var req importRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank, err := h.bankService.ImportFile(c.Request.Context(), req.CertType, req.Path)
	if err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrBankUnreadable)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"bank": bank})
}

// List godoc
// GET /api/v1/admin/banks
func (h *BankHandler) List(c *gin.Context) {
	banks, err := h.bankService.ListBanks(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"banks": banks})
}

// Tags godoc
// GET /api/v1/banks/:cert_type/tags
// Lists the distinct chapter tags of one certification's pool.
func (h *BankHandler) Tags(c *gin.Context) {
	tags, err := h.bankService.Tags(c.Request.Context(), c.Param("cert_type"))
	if err != nil {
		if errors.Is(err, service.ErrBankNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrBankNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tags": tags})
}

// Delete godoc
// DELETE /api/v1/admin/banks/:id
func (h *BankHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.bankService.DeleteBank(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
