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

// EventController handles academic event and attendance endpoints
type EventController struct {
	eventService services.EventService
	logger       zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService, logger zerolog.Logger) *EventController {
	return &EventController{
		eventService: eventService,
		logger:       logger,
	}
}

// Create handles event scheduling
// @Summary Schedule an event
// @Description Schedules an academic event as booked. Lectures and conferences take a supervisor presenter, journal clubs a candidate.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event details"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid payload or presenter role mismatch"
// @Failure 404 {object} dto.ErrorResponse "Presenter not found"
// @Router /events [post]
func (c *EventController) Create(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid create event payload")
		middleware.HandleValidationError(ctx, err)
		return
	}

	event, err := c.eventService.Create(ctx.Request.Context(), ac, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.SuccessResponseWithData(event))
}

// GetByID handles single event retrieval
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) GetByID(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	id, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	event, err := c.eventService.GetByID(ctx.Request.Context(), ac, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(event))
}

// List handles event listing
// @Summary List events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param type query string false "Filter by type" Enums(lecture, journal, conf)
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse}
// @Router /events [get]
func (c *EventController) List(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	page, size := helpers.ParsePaginationParams(ctx)
	var eventType *models.EventType
	if raw := ctx.Query("type"); raw != "" {
		parsed := models.EventType(raw)
		if !parsed.IsValid() {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid event type filter").WithField("type")))
			return
		}
		eventType = &parsed
	}

	list, err := c.eventService.List(ctx.Request.Context(), ac, eventType, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(list))
}

// Delete handles event removal
// @Summary Delete an event
// @Description Removes an event along with its attendance records. Restricted to administrators.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Administrator role required"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [delete]
func (c *EventController) Delete(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	id, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.eventService.Delete(ctx.Request.Context(), ac, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(dto.SuccessResponse{Message: "Event deleted"}))
}

// AddAttendance handles attendance recording
// @Summary Record attendance
// @Description Adds a candidate to an event's attendance and re-derives the event status.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.AddAttendanceRequest true "Candidate"
// @Success 201 {object} dto.APIResponse{data=dto.AttendanceResponse}
// @Failure 404 {object} dto.ErrorResponse "Event or candidate not found"
// @Failure 409 {object} dto.ErrorResponse "Candidate already in attendance"
// @Router /events/{id}/attendance [post]
func (c *EventController) AddAttendance(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	eventID, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.AddAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Int64("eventId", eventID).Msg("Invalid add attendance payload")
		middleware.HandleValidationError(ctx, err)
		return
	}

	att, err := c.eventService.AddAttendance(ctx.Request.Context(), ac, eventID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.SuccessResponseWithData(att))
}

// ListAttendance handles attendance listing for one event
// @Summary List attendance
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.AttendanceResponse}
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/attendance [get]
func (c *EventController) ListAttendance(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	eventID, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	records, err := c.eventService.ListAttendance(ctx.Request.Context(), ac, eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(records))
}

// RemoveAttendance handles attendance removal
// @Summary Remove attendance
// @Description Removes a candidate's attendance record and re-derives the event status.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param candDocId path int true "Candidate ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Event or attendance record not found"
// @Router /events/{id}/attendance/{candDocId} [delete]
func (c *EventController) RemoveAttendance(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	eventID, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	candDocID, err := validation.ParseID(ctx.Param("candDocId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.eventService.RemoveAttendance(ctx.Request.Context(), ac, eventID, candDocID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(dto.SuccessResponse{Message: "Attendance removed"}))
}

// FlagAttendance handles flagging a record
// @Summary Flag attendance
// @Description Flags a candidate's attendance record, dropping its points to the penalty value.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param candDocId path int true "Candidate ID"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceResponse}
// @Failure 404 {object} dto.ErrorResponse "Attendance record not found"
// @Router /events/{id}/attendance/{candDocId}/flag [put]
func (c *EventController) FlagAttendance(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	eventID, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	candDocID, err := validation.ParseID(ctx.Param("candDocId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	att, err := c.eventService.FlagAttendance(ctx.Request.Context(), ac, eventID, candDocID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(att))
}

// UnflagAttendance handles unflagging a record
// @Summary Unflag attendance
// @Description Clears the flag, restores the attendance points and promotes the event to held when an unflagged record exists.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param candDocId path int true "Candidate ID"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceResponse}
// @Failure 404 {object} dto.ErrorResponse "Attendance record not found"
// @Router /events/{id}/attendance/{candDocId}/unflag [put]
func (c *EventController) UnflagAttendance(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	eventID, err := validation.ParseID(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	candDocID, err := validation.ParseID(ctx.Param("candDocId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	att, err := c.eventService.UnflagAttendance(ctx.Request.Context(), ac, eventID, candDocID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(att))
}

// CandidatePoints handles the live points total for one candidate
// @Summary Get candidate points
// @Description Returns the candidate's net attendance points as a live sum. Totals can be negative.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param candDocId path int true "Candidate ID"
// @Success 200 {object} dto.APIResponse{data=dto.CandidatePointsResponse}
// @Failure 404 {object} dto.ErrorResponse "Candidate not found"
// @Router /candidates/{candDocId}/points [get]
func (c *EventController) CandidatePoints(ctx *gin.Context) {
	ac, _ := middleware.GetAuthContext(ctx)

	candDocID, err := validation.ParseID(ctx.Param("candDocId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	points, err := c.eventService.CandidateTotalPoints(ctx.Request.Context(), ac, candDocID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponseWithData(points))
}
