package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/surgitrack/surgitrack/internal/app/auth"
	"github.com/surgitrack/surgitrack/internal/app/models"
	"github.com/surgitrack/surgitrack/internal/app/models/dto"
	"github.com/surgitrack/surgitrack/internal/pkg/apperrors"
)

func newEventFixture() (EventService, *memData) {
	data := newMemData()
	data.addCandidate(1, "Alice", "Reed", "alice@hospital.org")
	data.addCandidate(4, "Dev", "Patel", "dev@hospital.org")
	data.addSupervisor(2, "Brian", "Okafor", "brian@hospital.org")
	svc := NewEventService(fixedStores{store: newTestStore(data)}, zerolog.Nop())
	return svc, data
}

func clerkCtx() auth.Context {
	return authContextFor(models.RoleClerk)
}

func authContextFor(role models.Role) auth.Context {
	return auth.Context{UserID: 500, Role: role, Institute: "st-marys"}
}

func createEventReq(eventTime time.Time) *dto.CreateEventRequest {
	return &dto.CreateEventRequest{
		Type:          "lecture",
		DateTime:      eventTime,
		Location:      "Lecture Theatre B",
		PresenterRole: "supervisor",
		PresenterID:   2,
	}
}

func TestEventCreateBooked(t *testing.T) {
	svc, _ := newEventFixture()

	resp, err := svc.Create(context.Background(), clerkCtx(), createEventReq(time.Now().Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if resp.Status != string(models.EventBooked) {
		t.Errorf("new event should be booked, got %q", resp.Status)
	}
}

func TestEventCreatePresenterRoleMismatch(t *testing.T) {
	svc, _ := newEventFixture()

	req := createEventReq(time.Now().Add(48 * time.Hour))
	req.PresenterRole = "candidate"
	req.PresenterID = 1
	_, err := svc.Create(context.Background(), clerkCtx(), req)
	if !errors.Is(err, apperrors.ErrInvalidPresenter) {
		t.Fatalf("lecture with candidate presenter should fail, got %v", err)
	}

	journal := &dto.CreateEventRequest{
		Type:          "journal",
		DateTime:      time.Now().Add(48 * time.Hour),
		Location:      "Seminar Room 1",
		PresenterRole: "supervisor",
		PresenterID:   2,
	}
	if _, err := svc.Create(context.Background(), clerkCtx(), journal); !errors.Is(err, apperrors.ErrInvalidPresenter) {
		t.Fatalf("journal with supervisor presenter should fail, got %v", err)
	}
}

func TestEventAddAttendancePromotesToHeld(t *testing.T) {
	svc, data := newEventFixture()

	event, err := svc.Create(context.Background(), clerkCtx(), createEventReq(time.Now().Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	att, err := svc.AddAttendance(context.Background(), clerkCtx(), event.ID, &dto.AddAttendanceRequest{CandDocID: 1})
	if err != nil {
		t.Fatalf("AddAttendance returned error: %v", err)
	}
	if att.Flagged {
		t.Error("new attendance must start unflagged")
	}
	if att.Points != models.PointsAttended {
		t.Errorf("new attendance worth %d points, got %d", models.PointsAttended, att.Points)
	}
	if data.events[event.ID].Status != models.EventHeld {
		t.Errorf("event with attendance should be held, got %q", data.events[event.ID].Status)
	}
}

func TestEventAddAttendanceDuplicateConflicts(t *testing.T) {
	svc, _ := newEventFixture()

	event, err := svc.Create(context.Background(), clerkCtx(), createEventReq(time.Now().Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.AddAttendance(context.Background(), clerkCtx(), event.ID, &dto.AddAttendanceRequest{CandDocID: 1}); err != nil {
		t.Fatalf("first AddAttendance returned error: %v", err)
	}
	_, err = svc.AddAttendance(context.Background(), clerkCtx(), event.ID, &dto.AddAttendanceRequest{CandDocID: 1})
	if !errors.Is(err, apperrors.ErrAlreadyInAttendance) {
		t.Fatalf("duplicate attendance should conflict, got %v", err)
	}
}

func TestEventRemoveLastAttendanceFutureEventBooked(t *testing.T) {
	svc, data := newEventFixture()

	event, err := svc.Create(context.Background(), clerkCtx(), createEventReq(time.Now().Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.AddAttendance(context.Background(), clerkCtx(), event.ID, &dto.AddAttendanceRequest{CandDocID: 1}); err != nil {
		t.Fatalf("AddAttendance returned error: %v", err)
	}

	if err := svc.RemoveAttendance(context.Background(), clerkCtx(), event.ID, 1); err != nil {
		t.Fatalf("RemoveAttendance returned error: %v", err)
	}
	if data.events[event.ID].Status != models.EventBooked {
		t.Errorf("empty future event should revert to booked, got %q", data.events[event.ID].Status)
	}
}

func TestEventRemoveLastAttendancePastEventCanceled(t *testing.T) {
	svc, data := newEventFixture()

	event, err := svc.Create(context.Background(), clerkCtx(), createEventReq(time.Now().Add(-48*time.Hour)))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.AddAttendance(context.Background(), clerkCtx(), event.ID, &dto.AddAttendanceRequest{CandDocID: 1}); err != nil {
		t.Fatalf("AddAttendance returned error: %v", err)
	}

	if err := svc.RemoveAttendance(context.Background(), clerkCtx(), event.ID, 1); err != nil {
		t.Fatalf("RemoveAttendance returned error: %v", err)
	}
	if data.events[event.ID].Status != models.EventCanceled {
		t.Errorf("empty past event should become canceled, got %q", data.events[event.ID].Status)
	}
}

func TestEventRemoveMissingAttendance(t *testing.T) {
	svc, _ := newEventFixture()

	event, err := svc.Create(context.Background(), clerkCtx(), createEventReq(time.Now().Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	err = svc.RemoveAttendance(context.Background(), clerkCtx(), event.ID, 1)
	if !errors.Is(err, apperrors.ErrAttendanceNotFound) {
		t.Fatalf("removing absent attendance should fail, got %v", err)
	}
}

func TestEventFlagUnflagRoundTrip(t *testing.T) {
	svc, data := newEventFixture()

	event, err := svc.Create(context.Background(), clerkCtx(), createEventReq(time.Now().Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.AddAttendance(context.Background(), clerkCtx(), event.ID, &dto.AddAttendanceRequest{CandDocID: 1}); err != nil {
		t.Fatalf("AddAttendance returned error: %v", err)
	}

	flagged, err := svc.FlagAttendance(context.Background(), clerkCtx(), event.ID, 1)
	if err != nil {
		t.Fatalf("FlagAttendance returned error: %v", err)
	}
	if !flagged.Flagged {
		t.Error("record should be flagged")
	}
	if flagged.Points != models.PointsFlagged {
		t.Errorf("flagged record worth %d points, got %d", models.PointsFlagged, flagged.Points)
	}
	if flagged.FlaggedBy == nil || flagged.FlaggedAt == nil {
		t.Error("flag metadata should be set")
	}

	unflagged, err := svc.UnflagAttendance(context.Background(), clerkCtx(), event.ID, 1)
	if err != nil {
		t.Fatalf("UnflagAttendance returned error: %v", err)
	}
	if unflagged.Flagged {
		t.Error("record should be unflagged")
	}
	if unflagged.Points != models.PointsAttended {
		t.Errorf("unflagged record worth %d points, got %d", models.PointsAttended, unflagged.Points)
	}
	if unflagged.FlaggedBy != nil || unflagged.FlaggedAt != nil {
		t.Error("flag metadata should be cleared")
	}
	if data.events[event.ID].Status != models.EventHeld {
		t.Errorf("event should stay held, got %q", data.events[event.ID].Status)
	}
}

func TestEventUnflagPromotesCanceledEvent(t *testing.T) {
	svc, data := newEventFixture()

	// Past event whose only record is flagged. Flagging does not touch
	// status, so force the canceled state through the derivation first.
	event, err := svc.Create(context.Background(), clerkCtx(), createEventReq(time.Now().Add(-48*time.Hour)))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.AddAttendance(context.Background(), clerkCtx(), event.ID, &dto.AddAttendanceRequest{CandDocID: 1}); err != nil {
		t.Fatalf("AddAttendance returned error: %v", err)
	}
	if _, err := svc.FlagAttendance(context.Background(), clerkCtx(), event.ID, 1); err != nil {
		t.Fatalf("FlagAttendance returned error: %v", err)
	}

	ev := data.events[event.ID]
	ev.Status = models.EventCanceled
	data.events[event.ID] = ev

	if _, err := svc.UnflagAttendance(context.Background(), clerkCtx(), event.ID, 1); err != nil {
		t.Fatalf("UnflagAttendance returned error: %v", err)
	}
	if data.events[event.ID].Status != models.EventHeld {
		t.Errorf("unflag should promote the event to held, got %q", data.events[event.ID].Status)
	}
}

func TestCandidateTotalPointsNegative(t *testing.T) {
	svc, _ := newEventFixture()

	for i := 0; i < 2; i++ {
		event, err := svc.Create(context.Background(), clerkCtx(), createEventReq(time.Now().Add(48*time.Hour)))
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if _, err := svc.AddAttendance(context.Background(), clerkCtx(), event.ID, &dto.AddAttendanceRequest{CandDocID: 1}); err != nil {
			t.Fatalf("AddAttendance returned error: %v", err)
		}
		if _, err := svc.FlagAttendance(context.Background(), clerkCtx(), event.ID, 1); err != nil {
			t.Fatalf("FlagAttendance returned error: %v", err)
		}
	}

	points, err := svc.CandidateTotalPoints(context.Background(), clerkCtx(), 1)
	if err != nil {
		t.Fatalf("CandidateTotalPoints returned error: %v", err)
	}
	if points.TotalPoints != 2*models.PointsFlagged {
		t.Errorf("expected %d points, got %d", 2*models.PointsFlagged, points.TotalPoints)
	}
}

func TestCandidateTotalPointsMixed(t *testing.T) {
	svc, _ := newEventFixture()

	var eventIDs []int64
	for i := 0; i < 3; i++ {
		event, err := svc.Create(context.Background(), clerkCtx(), createEventReq(time.Now().Add(48*time.Hour)))
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		eventIDs = append(eventIDs, event.ID)
		if _, err := svc.AddAttendance(context.Background(), clerkCtx(), event.ID, &dto.AddAttendanceRequest{CandDocID: 1}); err != nil {
			t.Fatalf("AddAttendance returned error: %v", err)
		}
	}
	if _, err := svc.FlagAttendance(context.Background(), clerkCtx(), eventIDs[0], 1); err != nil {
		t.Fatalf("FlagAttendance returned error: %v", err)
	}

	points, err := svc.CandidateTotalPoints(context.Background(), clerkCtx(), 1)
	if err != nil {
		t.Fatalf("CandidateTotalPoints returned error: %v", err)
	}
	want := int64(models.PointsFlagged + 2*models.PointsAttended)
	if points.TotalPoints != want {
		t.Errorf("expected %d points, got %d", want, points.TotalPoints)
	}
}

func TestCandidatePointsInvalidAndMissing(t *testing.T) {
	svc, _ := newEventFixture()

	if _, err := svc.CandidateTotalPoints(context.Background(), clerkCtx(), -1); !errors.Is(err, apperrors.ErrInvalidID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
	if _, err := svc.CandidateTotalPoints(context.Background(), clerkCtx(), 77); !errors.Is(err, apperrors.ErrCandidateNotFound) {
		t.Fatalf("expected candidate not found, got %v", err)
	}
}

func TestCandidateSeesOnlyOwnPoints(t *testing.T) {
	svc, _ := newEventFixture()

	if _, err := svc.CandidateTotalPoints(context.Background(), candidateCtx(1), 4); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("candidate reading another's points should be forbidden, got %v", err)
	}
	if _, err := svc.CandidateTotalPoints(context.Background(), candidateCtx(1), 1); err != nil {
		t.Fatalf("candidate reading own points returned error: %v", err)
	}
}

func TestEventAttendanceMutationsForbiddenForCandidates(t *testing.T) {
	svc, _ := newEventFixture()

	event, err := svc.Create(context.Background(), clerkCtx(), createEventReq(time.Now().Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.AddAttendance(context.Background(), clerkCtx(), event.ID, &dto.AddAttendanceRequest{CandDocID: 1}); err != nil {
		t.Fatalf("AddAttendance returned error: %v", err)
	}

	if err := svc.RemoveAttendance(context.Background(), candidateCtx(1), event.ID, 1); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("candidate remove should be forbidden, got %v", err)
	}
	if _, err := svc.FlagAttendance(context.Background(), candidateCtx(1), event.ID, 1); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("candidate flag should be forbidden, got %v", err)
	}
	if _, err := svc.UnflagAttendance(context.Background(), candidateCtx(1), event.ID, 1); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("candidate unflag should be forbidden, got %v", err)
	}
}
