package dto

import (
	"time"

	"github.com/surgitrack/surgitrack/internal/app/models"
)

// CreateEventRequest is the payload for scheduling an event.
type CreateEventRequest struct {
	Type          string    `json:"type" binding:"required,oneof=lecture journal conf"`
	DateTime      time.Time `json:"dateTime" binding:"required"`
	Location      string    `json:"location" binding:"required"`
	PresenterRole string    `json:"presenterRole" binding:"required,oneof=supervisor candidate"`
	PresenterID   int64     `json:"presenterId" binding:"required,gt=0"`
}

// AddAttendanceRequest is the payload for recording a candidate's attendance.
type AddAttendanceRequest struct {
	CandDocID int64 `json:"candDocId" binding:"required,gt=0"`
}

// EventResponse is the wire shape of an event.
type EventResponse struct {
	ID        int64               `json:"id"`
	Type      string              `json:"type"`
	DateTime  time.Time           `json:"dateTime"`
	Location  string              `json:"location"`
	Presenter models.PresenterRef `json:"presenter"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
}

// EventListResponse is a paginated list of events.
type EventListResponse struct {
	Events         []EventResponse `json:"events"`
	PaginationInfo PaginationInfo  `json:"pagination"`
}

// AttendanceResponse is the wire shape of an attendance record.
type AttendanceResponse struct {
	ID          int64      `json:"id"`
	EventID     int64      `json:"eventId"`
	CandDocID   int64      `json:"candDocId"`
	AddedBy     int64      `json:"addedBy"`
	AddedByRole string     `json:"addedByRole"`
	Flagged     bool       `json:"flagged"`
	FlaggedBy   *int64     `json:"flaggedBy,omitempty"`
	FlaggedAt   *time.Time `json:"flaggedAt,omitempty"`
	Points      int        `json:"points"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// CandidatePointsResponse carries a candidate's net attendance points.
type CandidatePointsResponse struct {
	CandDocID   int64 `json:"candDocId"`
	TotalPoints int64 `json:"totalPoints" example:"-3"`
}

// NewEventResponse converts a model to its wire shape.
func NewEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:        e.ID,
		Type:      string(e.Type),
		DateTime:  e.EventTime,
		Location:  e.Location,
		Presenter: e.Presenter,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
	}
}

// NewAttendanceResponse converts a model to its wire shape.
func NewAttendanceResponse(a *models.EventAttendance) AttendanceResponse {
	return AttendanceResponse{
		ID:          a.ID,
		EventID:     a.EventID,
		CandDocID:   a.CandDocID,
		AddedBy:     a.AddedBy,
		AddedByRole: string(a.AddedByRole),
		Flagged:     a.Flagged,
		FlaggedBy:   a.FlaggedBy,
		FlaggedAt:   a.FlaggedAt,
		Points:      a.Points,
		CreatedAt:   a.CreatedAt,
	}
}
