package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/surgitrack/surgitrack/internal/app/models"
	"github.com/surgitrack/surgitrack/internal/app/models/dto"
	"github.com/surgitrack/surgitrack/internal/app/services"
	"github.com/surgitrack/surgitrack/internal/middleware"
	"github.com/surgitrack/surgitrack/internal/pkg/helpers"
	"github.com/surgitrack/surgitrack/internal/pkg/validation"
)

// ClinicalSubController handles clinical activity submission endpoints
type ClinicalSubController struct {
	clinicalSubService services.ClinicalSubService
	logger             zerolog.Logger
}

// NewClinicalSubController creates a new ClinicalSubController
func NewClinicalSubController(clinicalSubService services.ClinicalSubService, logger zerolog.Logger) *ClinicalSubController {
	return &ClinicalSubController{
		clinicalSubService: clinicalSubService,
		logger:             logger,
	}
}

// Create handles clinical submission creation
// @Summary Log a clinical activity
// @Description Records a clinical activity as pending and notifies the assigned supervisor.
// @Tags clinical-subs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClinicalSubRequest true "Clinical activity details"
// @Success 201 {object} dto.APIResponse{data=dto.ClinicalSubResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Candidate or supervisor not found"
// @Router /clinical-subs [post]
func (c *ClinicalSubController) Create(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	var req dto.CreateClinicalSubRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid create clinical sub payload")
		middleware.HandleValidationError(ctx, err)
		return
	}

	sub, err := c.clinicalSubService.Create(ctx.Request.Context(), ac, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.SuccessResponseWithData(sub))
}

// GetByID handles single clinical submission retrieval
// @Summary Get a clinical submission
// @Tags clinical-subs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Clinical submission ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClinicalSubResponse}
// @Failure 404 {object} dto.ErrorResponse "Clinical submission not found"
// @Router /clinical-subs/{id} [get]
func (c *ClinicalSubController) GetByID(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	id, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	sub, err := c.clinicalSubService.GetByID(ctx.Request.Context(), ac, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(sub))
}

// List handles clinical submission listing
// @Summary List clinical submissions
// @Tags clinical-subs
// @Produce json
// @Security BearerAuth
// @Param subStatus query string false "Filter by status" Enums(pending, approved, rejected)
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ClinicalSubListResponse}
// @Router /clinical-subs [get]
func (c *ClinicalSubController) List(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	page, size := helpers.ParsePaginationParams(ctx)
	var status *models.SubStatus
	if raw := ctx.Query("subStatus"); raw != "" {
		parsed := models.SubStatus(raw)
		if !parsed.IsValid() {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid status filter").WithField("subStatus")))
			return
		}
		status = &parsed
	}

	list, err := c.clinicalSubService.List(ctx.Request.Context(), ac, status, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(list))
}

// Update handles partial clinical submission updates
// @Summary Update a clinical submission
// @Description Updates any combination of fields through one operation. A status change to approved or rejected is the review decision and notifies the candidate; a decided submission cannot be re-decided.
// @Tags clinical-subs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Clinical submission ID"
// @Param request body dto.UpdateClinicalSubRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.ClinicalSubResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid identifier or payload"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the assigned supervisor or an administrator"
// @Failure 404 {object} dto.ErrorResponse "Clinical submission not found"
// @Failure 409 {object} dto.ErrorResponse "Clinical submission already reviewed"
// @Router /clinical-subs/{id} [patch]
func (c *ClinicalSubController) Update(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	id, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateClinicalSubRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Int64("clinicalSubId", id).Msg("Invalid update clinical sub payload")
		middleware.HandleValidationError(ctx, err)
		return
	}

	sub, err := c.clinicalSubService.Update(ctx.Request.Context(), ac, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(sub))
}

// Delete handles clinical submission removal
// @Summary Delete a clinical submission
// @Description Removes a clinical submission outright. Restricted to administrators.
// @Tags clinical-subs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Clinical submission ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Administrator role required"
// @Failure 404 {object} dto.ErrorResponse "Clinical submission not found"
// @Router /clinical-subs/{id} [delete]
func (c *ClinicalSubController) Delete(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	id, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.clinicalSubService.Delete(ctx.Request.Context(), ac, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(dto.SuccessResponse{Message: "Clinical submission deleted"}))
}
