package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/surgitrack/surgitrack/internal/app/auth"
	"github.com/surgitrack/surgitrack/internal/app/models"
	"github.com/surgitrack/surgitrack/internal/app/models/dto"
	"github.com/surgitrack/surgitrack/internal/app/repositories"
	"github.com/surgitrack/surgitrack/internal/pkg/apperrors"
	"github.com/surgitrack/surgitrack/internal/pkg/helpers"
	"github.com/surgitrack/surgitrack/internal/pkg/validation"
	"github.com/surgitrack/surgitrack/internal/tenant"
)

// EventService defines the interface for academic events and attendance
// scoring.
type EventService interface {
	Create(ctx context.Context, ac auth.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	GetByID(ctx context.Context, ac auth.Context, id int64) (*dto.EventResponse, error)
	List(ctx context.Context, ac auth.Context, eventType *models.EventType, page, size int) (*dto.EventListResponse, error)
	Delete(ctx context.Context, ac auth.Context, id int64) error
	AddAttendance(ctx context.Context, ac auth.Context, eventID int64, req *dto.AddAttendanceRequest) (*dto.AttendanceResponse, error)
	RemoveAttendance(ctx context.Context, ac auth.Context, eventID, candDocID int64) error
	ListAttendance(ctx context.Context, ac auth.Context, eventID int64) ([]dto.AttendanceResponse, error)
	FlagAttendance(ctx context.Context, ac auth.Context, eventID, candDocID int64) (*dto.AttendanceResponse, error)
	UnflagAttendance(ctx context.Context, ac auth.Context, eventID, candDocID int64) (*dto.AttendanceResponse, error)
	CandidateTotalPoints(ctx context.Context, ac auth.Context, candDocID int64) (*dto.CandidatePointsResponse, error)
}

// eventServiceImpl implements EventService
type eventServiceImpl struct {
	stores StoreResolver
	logger zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(stores StoreResolver, logger zerolog.Logger) EventService {
	return &eventServiceImpl{
		stores: stores,
		logger: logger,
	}
}

// Create schedules a new event. The presenter reference is validated against
// the event type before anything touches the database.
func (s *eventServiceImpl) Create(ctx context.Context, ac auth.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	if ac.Role == models.RoleCandidate {
		return nil, apperrors.NewForbiddenError("candidates may not schedule events")
	}

	eventType := models.EventType(req.Type)
	if !eventType.IsValid() {
		return nil, apperrors.NewValidationError("type must be lecture, journal or conf")
	}

	presenter, ok := models.NewPresenterRef(eventType, models.PresenterRole(req.PresenterRole), req.PresenterID)
	if !ok {
		return nil, apperrors.ErrInvalidPresenter
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	switch presenter.Role {
	case models.PresenterSupervisor:
		supervisor, err := store.Supervisors.GetByID(ctx, presenter.ID)
		if err != nil {
			return nil, fmt.Errorf("error getting supervisor: %w", err)
		}
		if supervisor == nil {
			return nil, apperrors.ErrSupervisorNotFound
		}
	case models.PresenterCandidate:
		candidate, err := store.Candidates.GetByID(ctx, presenter.ID)
		if err != nil {
			return nil, fmt.Errorf("error getting candidate: %w", err)
		}
		if candidate == nil {
			return nil, apperrors.ErrCandidateNotFound
		}
	}

	event := &models.Event{
		Type:      eventType,
		EventTime: req.DateTime,
		Location:  req.Location,
		Presenter: presenter,
		Status:    models.EventBooked,
	}

	if err := store.Events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("error creating event: %w", err)
	}

	resp := dto.NewEventResponse(event)
	return &resp, nil
}

// GetByID retrieves one event.
func (s *eventServiceImpl) GetByID(ctx context.Context, ac auth.Context, id int64) (*dto.EventResponse, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	event, err := store.Events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}

	resp := dto.NewEventResponse(event)
	return &resp, nil
}

// List retrieves events, optionally filtered by type.
func (s *eventServiceImpl) List(ctx context.Context, ac auth.Context, eventType *models.EventType, page, size int) (*dto.EventListResponse, error) {
	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	events, total, err := store.Events.List(ctx, repositories.EventFilter{
		Type: eventType,
		Page: page,
		Size: size,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}

	responses := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, dto.NewEventResponse(&events[i]))
	}

	return &dto.EventListResponse{
		Events:         responses,
		PaginationInfo: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// Delete removes an event along with its attendance records (admin path).
func (s *eventServiceImpl) Delete(ctx context.Context, ac auth.Context, id int64) error {
	if err := validation.ValidateID(id); err != nil {
		return err
	}
	if !ac.IsAdmin() {
		return apperrors.NewForbiddenError("only administrators may delete events")
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return err
	}

	return store.Events.Delete(ctx, id)
}

// AddAttendance records a candidate at an event and re-derives the event
// status. A candidate already present yields a conflict.
func (s *eventServiceImpl) AddAttendance(ctx context.Context, ac auth.Context, eventID int64, req *dto.AddAttendanceRequest) (*dto.AttendanceResponse, error) {
	if err := validation.ValidateID(eventID); err != nil {
		return nil, err
	}
	if err := validation.ValidateID(req.CandDocID); err != nil {
		return nil, err
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	event, err := store.Events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}

	candidate, err := store.Candidates.GetByID(ctx, req.CandDocID)
	if err != nil {
		return nil, fmt.Errorf("error getting candidate: %w", err)
	}
	if candidate == nil {
		return nil, apperrors.ErrCandidateNotFound
	}

	if ac.Role == models.RoleCandidate && req.CandDocID != ac.ProfileID {
		return nil, apperrors.NewForbiddenError("candidates may only record their own attendance")
	}

	att := &models.EventAttendance{
		EventID:     eventID,
		CandDocID:   req.CandDocID,
		AddedBy:     ac.UserID,
		AddedByRole: ac.Role,
		Flagged:     false,
		Points:      models.PointsAttended,
	}

	if err := store.Attendance.Create(ctx, att); err != nil {
		return nil, err
	}

	if _, err := store.Events.RecomputeStatus(ctx, eventID, time.Now()); err != nil {
		return nil, fmt.Errorf("error recomputing event status: %w", err)
	}

	resp := dto.NewAttendanceResponse(att)
	return &resp, nil
}

// RemoveAttendance deletes a candidate's record and re-derives the event
// status. Removing the last record flips a past event back to canceled and a
// future one back to booked.
func (s *eventServiceImpl) RemoveAttendance(ctx context.Context, ac auth.Context, eventID, candDocID int64) error {
	if err := validation.ValidateID(eventID); err != nil {
		return err
	}
	if err := validation.ValidateID(candDocID); err != nil {
		return err
	}
	if ac.Role == models.RoleCandidate {
		return apperrors.NewForbiddenError("candidates may not remove attendance records")
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return err
	}

	event, err := store.Events.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("error getting event: %w", err)
	}
	if event == nil {
		return apperrors.ErrEventNotFound
	}

	removed, err := store.Attendance.Delete(ctx, eventID, candDocID)
	if err != nil {
		return fmt.Errorf("error removing attendance: %w", err)
	}
	if !removed {
		return apperrors.ErrAttendanceNotFound
	}

	if _, err := store.Events.RecomputeStatus(ctx, eventID, time.Now()); err != nil {
		return fmt.Errorf("error recomputing event status: %w", err)
	}
	return nil
}

// ListAttendance returns every attendance record of an event.
func (s *eventServiceImpl) ListAttendance(ctx context.Context, ac auth.Context, eventID int64) ([]dto.AttendanceResponse, error) {
	if err := validation.ValidateID(eventID); err != nil {
		return nil, err
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	event, err := store.Events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}

	records, err := store.Attendance.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("error listing attendance: %w", err)
	}

	responses := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		responses = append(responses, dto.NewAttendanceResponse(&records[i]))
	}
	return responses, nil
}

// FlagAttendance marks a record as flagged, dropping its points to the
// penalty value. The event status is untouched.
func (s *eventServiceImpl) FlagAttendance(ctx context.Context, ac auth.Context, eventID, candDocID int64) (*dto.AttendanceResponse, error) {
	if err := validation.ValidateID(eventID); err != nil {
		return nil, err
	}
	if err := validation.ValidateID(candDocID); err != nil {
		return nil, err
	}
	if ac.Role == models.RoleCandidate {
		return nil, apperrors.NewForbiddenError("candidates may not flag attendance records")
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	matched, err := store.Attendance.SetFlag(ctx, eventID, candDocID, ac.UserID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("error flagging attendance: %w", err)
	}
	if !matched {
		return nil, apperrors.ErrAttendanceNotFound
	}

	return s.attendanceResponse(ctx, store, eventID, candDocID)
}

// UnflagAttendance clears the flag, restores the attendance points and
// applies the one-way promotion: an event holding at least one unflagged
// record becomes held even when its time has passed. No transition ever
// goes the other way from here.
func (s *eventServiceImpl) UnflagAttendance(ctx context.Context, ac auth.Context, eventID, candDocID int64) (*dto.AttendanceResponse, error) {
	if err := validation.ValidateID(eventID); err != nil {
		return nil, err
	}
	if err := validation.ValidateID(candDocID); err != nil {
		return nil, err
	}
	if ac.Role == models.RoleCandidate {
		return nil, apperrors.NewForbiddenError("candidates may not unflag attendance records")
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	matched, err := store.Attendance.ClearFlag(ctx, eventID, candDocID)
	if err != nil {
		return nil, fmt.Errorf("error unflagging attendance: %w", err)
	}
	if !matched {
		return nil, apperrors.ErrAttendanceNotFound
	}

	promoted, err := store.Events.PromoteToHeld(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("error promoting event: %w", err)
	}
	if promoted {
		s.logger.Info().Int64("eventId", eventID).Msg("Event promoted to held on unflag")
	}

	return s.attendanceResponse(ctx, store, eventID, candDocID)
}

func (s *eventServiceImpl) attendanceResponse(ctx context.Context, store *tenant.Store, eventID, candDocID int64) (*dto.AttendanceResponse, error) {
	att, err := store.Attendance.GetByEventAndCandidate(ctx, eventID, candDocID)
	if err != nil {
		return nil, fmt.Errorf("error getting attendance: %w", err)
	}
	if att == nil {
		return nil, apperrors.ErrAttendanceNotFound
	}
	resp := dto.NewAttendanceResponse(att)
	return &resp, nil
}

// CandidateTotalPoints computes the candidate's net points as a live sum
// over all attendance rows. Negative totals are reported as-is.
func (s *eventServiceImpl) CandidateTotalPoints(ctx context.Context, ac auth.Context, candDocID int64) (*dto.CandidatePointsResponse, error) {
	if err := validation.ValidateID(candDocID); err != nil {
		return nil, err
	}
	if ac.Role == models.RoleCandidate && candDocID != ac.ProfileID {
		return nil, apperrors.NewForbiddenError("candidates may only view their own points")
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	candidate, err := store.Candidates.GetByID(ctx, candDocID)
	if err != nil {
		return nil, fmt.Errorf("error getting candidate: %w", err)
	}
	if candidate == nil {
		return nil, apperrors.ErrCandidateNotFound
	}

	total, err := store.Attendance.SumPoints(ctx, candDocID)
	if err != nil {
		return nil, fmt.Errorf("error summing points: %w", err)
	}

	return &dto.CandidatePointsResponse{
		CandDocID:   candDocID,
		TotalPoints: total,
	}, nil
}
