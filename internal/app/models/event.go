package models

import "time"

// EventType defines the kind of academic activity.
type EventType string

const (
	EventLecture    EventType = "lecture"
	EventJournal    EventType = "journal"
	EventConference EventType = "conf"
)

// IsValid reports whether the type is one of the known event types.
func (t EventType) IsValid() bool {
	switch t {
	case EventLecture, EventJournal, EventConference:
		return true
	}
	return false
}

// EventStatus defines the derived status of an event. It is a pure function
// of (attendance count, whether the event time has passed) and is recomputed
// on every attendance change rather than stored-and-trusted.
type EventStatus string

const (
	EventBooked   EventStatus = "booked"
	EventHeld     EventStatus = "held"
	EventCanceled EventStatus = "canceled"
)

// PresenterRole is the role side of a typed presenter reference.
type PresenterRole string

const (
	PresenterSupervisor PresenterRole = "supervisor"
	PresenterCandidate  PresenterRole = "candidate"
)

// PresenterRef is a typed reference to an event's presenter. Lectures and
// conferences are presented by a supervisor, journal clubs by a candidate;
// the pairing is validated at construction, not left as an untyped id.
type PresenterRef struct {
	Role PresenterRole `json:"role" db:"presenter_role" example:"supervisor"`
	ID   int64         `json:"id" db:"presenter_id" example:"1"`
}

// NewPresenterRef builds a presenter reference for the given event type,
// enforcing the type/role pairing.
func NewPresenterRef(eventType EventType, role PresenterRole, id int64) (PresenterRef, bool) {
	switch eventType {
	case EventLecture, EventConference:
		if role != PresenterSupervisor {
			return PresenterRef{}, false
		}
	case EventJournal:
		if role != PresenterCandidate {
			return PresenterRef{}, false
		}
	default:
		return PresenterRef{}, false
	}
	return PresenterRef{Role: role, ID: id}, true
}

// Event defines a scheduled academic activity based on the 'events' table.
type Event struct {
	ID        int64        `json:"id" db:"id" example:"1"`
	Type      EventType    `json:"type" db:"type" example:"lecture"`
	EventTime time.Time    `json:"dateTime" db:"event_time"`
	Location  string       `json:"location" db:"location" example:"Lecture Theatre B"`
	Presenter PresenterRef `json:"presenter"`
	Status    EventStatus  `json:"status" db:"status" example:"booked"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}

// Attendance point values. Points are a pure function of the flagged bit.
const (
	PointsAttended = 1
	PointsFlagged  = -2
)

// EventAttendance defines one candidate's participation record at one event,
// based on the 'event_attendance' table. At most one record exists per
// (event, candidate) pair.
type EventAttendance struct {
	ID          int64      `json:"id" db:"id"`
	EventID     int64      `json:"eventId" db:"event_id"`
	CandDocID   int64      `json:"candDocId" db:"cand_doc_id"`
	AddedBy     int64      `json:"addedBy" db:"added_by"`
	AddedByRole Role       `json:"addedByRole" db:"added_by_role"`
	Flagged     bool       `json:"flagged" db:"flagged"`
	FlaggedBy   *int64     `json:"flaggedBy,omitempty" db:"flagged_by"` // Set iff flagged
	FlaggedAt   *time.Time `json:"flaggedAt,omitempty" db:"flagged_at"` // Set iff flagged
	Points      int        `json:"points" db:"points"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}
