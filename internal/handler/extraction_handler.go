package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sparx365/homework-backend/internal/middleware"
	"github.com/sparx365/homework-backend/internal/model"
	"github.com/sparx365/homework-backend/internal/response"
	"github.com/sparx365/homework-backend/internal/seneca"
	"github.com/sparx365/homework-backend/internal/service"
	"github.com/sparx365/homework-backend/internal/validator"
)

// ExtractionHandler handles extraction and history endpoints.
type ExtractionHandler struct {
	extractionService *service.ExtractionService
	authService       *service.AuthService
	usageService      *service.UsageService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService *service.ExtractionService, authService *service.AuthService, usageService *service.UsageService) *ExtractionHandler {
	return &ExtractionHandler{
		extractionService: extractionService,
		authService:       authService,
		usageService:      usageService,
	}
}

// Extract godoc
// POST /api/v1/extract
// Resolves a pasted assignment URL to normalized question/answer sections.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ExtractRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	result, err := h.extractionService.Extract(c.Request.Context(), user, req.URL)
	if err != nil {
		h.failExtraction(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// History godoc
// GET /api/v1/extractions
// Lists the user's past extractions, newest first.
func (h *ExtractionHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 20)

	extractions, total, err := h.extractionService.History(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if extractions == nil {
		extractions = []model.Extraction{}
	}

	totalPages := (total + perPage - 1) / perPage
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"extractions": extractions}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

// GetUsage godoc
// GET /api/v1/usage
// Returns the current week's quota position.
func (h *ExtractionHandler) GetUsage(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	snapshot, err := h.usageService.Snapshot(c.Request.Context(), user)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, snapshot)
}

// failExtraction maps extraction-flow errors onto API error codes.
func (h *ExtractionHandler) failExtraction(c *gin.Context, err error) {
	switch {
	case errors.Is(err, seneca.ErrInvalidAssignmentURL):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidSenecaURL)
	case errors.Is(err, service.ErrWeeklyLimitReached):
		response.Fail(c, http.StatusPaymentRequired, response.ErrWeeklyLimitReached)
	case errors.Is(err, seneca.ErrExtractionFailed):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrExtractionFailed)
	default:
		response.Fail(c, http.StatusBadGateway, response.ErrUpstreamFetch)
	}
}
