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

// SubmissionController handles operative submission endpoints
type SubmissionController struct {
	submissionService services.SubmissionService
	logger            zerolog.Logger
}

// NewSubmissionController creates a new SubmissionController
func NewSubmissionController(submissionService services.SubmissionService, logger zerolog.Logger) *SubmissionController {
	return &SubmissionController{
		submissionService: submissionService,
		logger:            logger,
	}
}

// Create handles submission creation
// @Summary Create a submission
// @Description Logs an operative case. Candidates create pending submissions awaiting supervisor review; supervisors create self-attested approved ones.
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSubmissionRequest true "Submission details"
// @Success 201 {object} dto.APIResponse{data=dto.SubmissionResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Caller may not submit for this candidate"
// @Failure 404 {object} dto.ErrorResponse "Candidate or supervisor not found"
// @Router /submissions [post]
func (c *SubmissionController) Create(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	var req dto.CreateSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid create submission payload")
		middleware.HandleValidationError(ctx, err)
		return
	}

	sub, err := c.submissionService.Create(ctx.Request.Context(), ac, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.SuccessResponseWithData(sub))
}

// GetByID handles single submission retrieval
// @Summary Get a submission
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Success 200 {object} dto.APIResponse{data=dto.SubmissionResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid identifier"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /submissions/{id} [get]
func (c *SubmissionController) GetByID(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	id, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	sub, err := c.submissionService.GetByID(ctx.Request.Context(), ac, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(sub))
}

// List handles submission listing
// @Summary List submissions
// @Description Lists submissions visible to the caller. Candidates see their own, supervisors see those assigned to them.
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param subStatus query string false "Filter by status" Enums(pending, approved, rejected)
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.SubmissionListResponse}
// @Router /submissions [get]
func (c *SubmissionController) List(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	filter := &dto.SubmissionFilterRequest{}
	filter.Page, filter.Size = helpers.ParsePaginationParams(ctx)
	if raw := ctx.Query("subStatus"); raw != "" {
		status := models.SubStatus(raw)
		if !status.IsValid() {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid status filter").WithField("subStatus")))
			return
		}
		filter.Status = &status
	}

	list, err := c.submissionService.List(ctx.Request.Context(), ac, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(list))
}

// Review handles the supervisor decision on a pending submission
// @Summary Review a submission
// @Description Approves or rejects a pending submission. Only the assigned supervisor may decide, and only once.
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Param request body dto.ReviewSubmissionRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=dto.SubmissionResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid identifier or decision"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the assigned supervisor"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Failure 409 {object} dto.ErrorResponse "Submission already reviewed"
// @Router /submissions/{id}/review [put]
func (c *SubmissionController) Review(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	id, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.ReviewSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Int64("submissionId", id).Msg("Invalid review payload")
		middleware.HandleValidationError(ctx, err)
		return
	}

	sub, err := c.submissionService.Review(ctx.Request.Context(), ac, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(sub))
}

// Delete handles submission removal
// @Summary Delete a submission
// @Description Removes a submission outright. Restricted to administrators.
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Administrator role required"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /submissions/{id} [delete]
func (c *SubmissionController) Delete(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	id, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.submissionService.Delete(ctx.Request.Context(), ac, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(dto.SuccessResponse{Message: "Submission deleted"}))
}
