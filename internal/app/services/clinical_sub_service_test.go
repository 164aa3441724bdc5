package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/surgitrack/surgitrack/internal/app/models"
	"github.com/surgitrack/surgitrack/internal/app/models/dto"
	"github.com/surgitrack/surgitrack/internal/notify"
	"github.com/surgitrack/surgitrack/internal/pkg/apperrors"
)

func newClinicalFixture() (ClinicalSubService, *memData, *recordingNotifier) {
	data := newMemData()
	data.addCandidate(1, "Alice", "Reed", "alice@hospital.org")
	data.addSupervisor(2, "Brian", "Okafor", "brian@hospital.org")
	data.addSupervisor(3, "Carol", "Ng", "carol@hospital.org")
	notifier := &recordingNotifier{}
	svc := NewClinicalSubService(fixedStores{store: newTestStore(data)}, notifier, zerolog.Nop())
	return svc, data, notifier
}

func createClinicalReq() *dto.CreateClinicalSubRequest {
	return &dto.CreateClinicalSubRequest{
		CandDocID:       1,
		SupervisorDocID: 2,
		DateCA:          time.Now().Add(-48 * time.Hour),
		TypeCA:          "ward round",
		Description:     "post-op review of three patients",
	}
}

func strPtr(s string) *string { return &s }

func TestClinicalSubCreateNotifiesSupervisor(t *testing.T) {
	svc, _, notifier := newClinicalFixture()

	resp, err := svc.Create(context.Background(), candidateCtx(1), createClinicalReq())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if resp.SubStatus != string(models.SubStatusPending) {
		t.Errorf("expected pending, got %q", resp.SubStatus)
	}

	msgs := notifier.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(msgs))
	}
	if msgs[0].Kind != notify.KindClinicalSubReceived {
		t.Errorf("expected KindClinicalSubReceived, got %q", msgs[0].Kind)
	}
	if msgs[0].Recipient != "brian@hospital.org" {
		t.Errorf("expected supervisor recipient, got %q", msgs[0].Recipient)
	}
}

func TestClinicalSubUpdateDecisionNotifiesCandidate(t *testing.T) {
	svc, _, notifier := newClinicalFixture()

	created, err := svc.Create(context.Background(), candidateCtx(1), createClinicalReq())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	resp, err := svc.Update(context.Background(), supervisorCtx(2), created.ID, &dto.UpdateClinicalSubRequest{
		SubStatus: strPtr("approved"),
		Review:    strPtr("good coverage"),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if resp.SubStatus != string(models.SubStatusApproved) {
		t.Errorf("expected approved, got %q", resp.SubStatus)
	}
	if resp.ReviewedBy == nil || *resp.ReviewedBy != 2 {
		t.Errorf("expected reviewedBy 2, got %v", resp.ReviewedBy)
	}

	msgs := notifier.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected create + decision notifications, got %d", len(msgs))
	}
	if msgs[1].Kind != notify.KindClinicalSubDecided {
		t.Errorf("expected KindClinicalSubDecided, got %q", msgs[1].Kind)
	}
	if msgs[1].Recipient != "alice@hospital.org" {
		t.Errorf("expected candidate recipient, got %q", msgs[1].Recipient)
	}
}

func TestClinicalSubUpdateFieldsOnlyDoesNotNotify(t *testing.T) {
	svc, data, notifier := newClinicalFixture()

	created, err := svc.Create(context.Background(), candidateCtx(1), createClinicalReq())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	resp, err := svc.Update(context.Background(), supervisorCtx(2), created.ID, &dto.UpdateClinicalSubRequest{
		Description: strPtr("post-op review of four patients"),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if resp.SubStatus != string(models.SubStatusPending) {
		t.Errorf("a field-only update must not change status, got %q", resp.SubStatus)
	}
	if data.clinical[created.ID].Description != "post-op review of four patients" {
		t.Error("description change did not persist")
	}
	if len(notifier.messages()) != 1 {
		t.Error("a field-only update must not dispatch a decision notification")
	}
}

func TestClinicalSubUpdateSameStatusIsNoOp(t *testing.T) {
	svc, _, notifier := newClinicalFixture()

	created, err := svc.Create(context.Background(), candidateCtx(1), createClinicalReq())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Update(context.Background(), supervisorCtx(2), created.ID, &dto.UpdateClinicalSubRequest{
		SubStatus: strPtr("approved"),
	}); err != nil {
		t.Fatalf("first decision returned error: %v", err)
	}

	// Re-sending the same decision changes nothing and notifies nobody.
	if _, err := svc.Update(context.Background(), supervisorCtx(2), created.ID, &dto.UpdateClinicalSubRequest{
		SubStatus: strPtr("approved"),
	}); err != nil {
		t.Fatalf("same-status update returned error: %v", err)
	}
	if len(notifier.messages()) != 2 {
		t.Errorf("expected exactly one decision notification, got %d messages", len(notifier.messages()))
	}
}

func TestClinicalSubUpdateReDecisionConflicts(t *testing.T) {
	svc, _, _ := newClinicalFixture()

	created, err := svc.Create(context.Background(), candidateCtx(1), createClinicalReq())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Update(context.Background(), supervisorCtx(2), created.ID, &dto.UpdateClinicalSubRequest{
		SubStatus: strPtr("approved"),
	}); err != nil {
		t.Fatalf("first decision returned error: %v", err)
	}

	_, err = svc.Update(context.Background(), supervisorCtx(2), created.ID, &dto.UpdateClinicalSubRequest{
		SubStatus: strPtr("rejected"),
	})
	if !errors.Is(err, apperrors.ErrClinicalSubDecided) {
		t.Fatalf("expected already-decided conflict, got %v", err)
	}
}

func TestClinicalSubUpdateByOtherSupervisorForbidden(t *testing.T) {
	svc, data, _ := newClinicalFixture()

	created, err := svc.Create(context.Background(), candidateCtx(1), createClinicalReq())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = svc.Update(context.Background(), supervisorCtx(3), created.ID, &dto.UpdateClinicalSubRequest{
		SubStatus: strPtr("approved"),
	})
	if !errors.Is(err, apperrors.ErrNotAssignedReviewer) {
		t.Fatalf("expected not-assigned-reviewer error, got %v", err)
	}
	if data.clinical[created.ID].SubStatus != models.SubStatusPending {
		t.Error("failed update must leave the record pending")
	}
}

func TestClinicalSubUpdateByAdminAllowed(t *testing.T) {
	svc, _, _ := newClinicalFixture()

	created, err := svc.Create(context.Background(), candidateCtx(1), createClinicalReq())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	resp, err := svc.Update(context.Background(), adminCtx(), created.ID, &dto.UpdateClinicalSubRequest{
		SubStatus: strPtr("rejected"),
	})
	if err != nil {
		t.Fatalf("admin update returned error: %v", err)
	}
	if resp.SubStatus != string(models.SubStatusRejected) {
		t.Errorf("expected rejected, got %q", resp.SubStatus)
	}
}

func TestClinicalSubUpdateMissingRecord(t *testing.T) {
	svc, _, _ := newClinicalFixture()

	_, err := svc.Update(context.Background(), supervisorCtx(2), 404, &dto.UpdateClinicalSubRequest{
		Description: strPtr("x"),
	})
	if !errors.Is(err, apperrors.ErrClinicalSubNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
