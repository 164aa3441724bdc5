package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/surgitrack/surgitrack/internal/app/auth"
	"github.com/surgitrack/surgitrack/internal/app/models"
	"github.com/surgitrack/surgitrack/internal/app/models/dto"
	"github.com/surgitrack/surgitrack/internal/app/repositories"
	"github.com/surgitrack/surgitrack/internal/notify"
	"github.com/surgitrack/surgitrack/internal/pkg/apperrors"
	"github.com/surgitrack/surgitrack/internal/pkg/helpers"
	"github.com/surgitrack/surgitrack/internal/pkg/validation"
	"github.com/surgitrack/surgitrack/internal/tenant"
)

// SubmissionService defines the interface for submission operations
type SubmissionService interface {
	Create(ctx context.Context, ac auth.Context, req *dto.CreateSubmissionRequest) (*dto.SubmissionResponse, error)
	GetByID(ctx context.Context, ac auth.Context, id int64) (*dto.SubmissionResponse, error)
	List(ctx context.Context, ac auth.Context, filter *dto.SubmissionFilterRequest) (*dto.SubmissionListResponse, error)
	Review(ctx context.Context, ac auth.Context, id int64, req *dto.ReviewSubmissionRequest) (*dto.SubmissionResponse, error)
	Delete(ctx context.Context, ac auth.Context, id int64) error
}

// submissionServiceImpl implements SubmissionService
type submissionServiceImpl struct {
	stores   StoreResolver
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(stores StoreResolver, notifier notify.Notifier, logger zerolog.Logger) SubmissionService {
	return &submissionServiceImpl{
		stores:   stores,
		notifier: notifier,
		logger:   logger,
	}
}

// Create records a new submission. Candidates create pending submissions and
// the assigned supervisor is notified; supervisors create self-attested
// approved submissions with no notification.
func (s *submissionServiceImpl) Create(ctx context.Context, ac auth.Context, req *dto.CreateSubmissionRequest) (*dto.SubmissionResponse, error) {
	if err := validation.ValidateID(req.CandDocID); err != nil {
		return nil, err
	}
	if err := validation.ValidateID(req.SupervisorDocID); err != nil {
		return nil, err
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	switch ac.Role {
	case models.RoleCandidate:
		if req.CandDocID != ac.ProfileID {
			return nil, apperrors.NewForbiddenError("candidates may only submit their own procedures")
		}
	case models.RoleSupervisor:
		if req.SupervisorDocID != ac.ProfileID {
			return nil, apperrors.NewForbiddenError("supervisors may only self-attest submissions assigned to them")
		}
	default:
		return nil, apperrors.ErrPermissionDenied
	}

	candidate, err := store.Candidates.GetByID(ctx, req.CandDocID)
	if err != nil {
		return nil, fmt.Errorf("error getting candidate: %w", err)
	}
	if candidate == nil {
		return nil, apperrors.ErrCandidateNotFound
	}

	supervisor, err := store.Supervisors.GetByID(ctx, req.SupervisorDocID)
	if err != nil {
		return nil, fmt.Errorf("error getting supervisor: %w", err)
	}
	if supervisor == nil {
		return nil, apperrors.ErrSupervisorNotFound
	}

	sub := &models.Submission{
		CandDocID:       req.CandDocID,
		SupervisorDocID: req.SupervisorDocID,
		ProcedureID:     req.ProcedureID,
		MainDiagnosisID: req.MainDiagnosisID,
		PerformedAt:     req.PerformedAt,
		Participation:   models.ParticipationLevel(req.Participation),
		CaseNotes:       req.CaseNotes,
		SubStatus:       models.SubStatusPending,
	}

	// Supervisor-authored submissions are self-attested: approved on
	// creation, with the review metadata pointing at the author.
	if ac.Role == models.RoleSupervisor {
		now := time.Now()
		sub.SubStatus = models.SubStatusApproved
		sub.ReviewedAt = &now
		sub.ReviewedBy = &req.SupervisorDocID
	}

	if err := store.Submissions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("error creating submission: %w", err)
	}

	if ac.Role == models.RoleCandidate {
		s.notifier.Dispatch(notify.NewMessage(
			supervisor.Email,
			supervisor.FirstName+" "+supervisor.LastName,
			notify.KindSubmissionReceived,
			map[string]string{
				"candidateName": candidate.FirstName + " " + candidate.LastName,
				"submissionId":  strconv.FormatInt(sub.ID, 10),
			},
		))
	}

	resp := dto.NewSubmissionResponse(sub)
	return &resp, nil
}

// GetByID retrieves a submission.
func (s *submissionServiceImpl) GetByID(ctx context.Context, ac auth.Context, id int64) (*dto.SubmissionResponse, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	sub, err := store.Submissions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting submission: %w", err)
	}
	if sub == nil {
		return nil, apperrors.ErrSubmissionNotFound
	}

	resp := dto.NewSubmissionResponse(sub)
	return &resp, nil
}

// List retrieves submissions visible to the caller. Candidates see their own,
// supervisors the ones assigned to them, admins and clerks everything.
func (s *submissionServiceImpl) List(ctx context.Context, ac auth.Context, filter *dto.SubmissionFilterRequest) (*dto.SubmissionListResponse, error) {
	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	repoFilter := repositories.SubmissionFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Size:   filter.Size,
	}
	switch ac.Role {
	case models.RoleCandidate:
		repoFilter.CandDocID = &ac.ProfileID
	case models.RoleSupervisor:
		repoFilter.SupervisorDocID = &ac.ProfileID
	}

	subs, total, err := store.Submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("error listing submissions: %w", err)
	}

	responses := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		responses = append(responses, dto.NewSubmissionResponse(&subs[i]))
	}

	return &dto.SubmissionListResponse{
		Submissions:    responses,
		PaginationInfo: helpers.NewPaginationInfo(total, filter.Page, filter.Size),
	}, nil
}

// Review applies a supervisor's decision to a pending submission. Only the
// assigned supervisor may review; an already-decided submission conflicts.
// The candidate is notified after the update commits.
func (s *submissionServiceImpl) Review(ctx context.Context, ac auth.Context, id int64, req *dto.ReviewSubmissionRequest) (*dto.SubmissionResponse, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}
	decision := models.SubStatus(req.Decision)
	if !decision.IsDecision() {
		return nil, apperrors.NewValidationError("decision must be approved or rejected")
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	sub, err := store.Submissions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting submission: %w", err)
	}
	if sub == nil {
		return nil, apperrors.ErrSubmissionNotFound
	}

	if ac.Role != models.RoleSupervisor || ac.ProfileID != sub.SupervisorDocID {
		return nil, apperrors.ErrNotAssignedReviewer
	}

	if sub.IsDecided() {
		return nil, apperrors.ErrSubmissionDecided
	}

	reviewedAt := time.Now()
	matched, err := store.Submissions.Review(ctx, id, decision, req.Review, ac.ProfileID, reviewedAt)
	if err != nil {
		return nil, fmt.Errorf("error reviewing submission: %w", err)
	}
	if !matched {
		// Lost a race with a concurrent review; the row is no longer pending.
		return nil, apperrors.ErrSubmissionDecided
	}

	sub.SubStatus = decision
	sub.Review = req.Review
	sub.ReviewedAt = &reviewedAt
	sub.ReviewedBy = &ac.ProfileID

	s.notifyDecision(ctx, store, sub)

	resp := dto.NewSubmissionResponse(sub)
	return &resp, nil
}

// notifyDecision dispatches the candidate's decision notification. Lookup
// failures are logged and swallowed: the review is already committed.
func (s *submissionServiceImpl) notifyDecision(ctx context.Context, store *tenant.Store, sub *models.Submission) {
	candidate, err := store.Candidates.GetByID(ctx, sub.CandDocID)
	if err != nil || candidate == nil {
		s.logger.Error().Err(err).
			Int64("candDocId", sub.CandDocID).
			Int64("submissionId", sub.ID).
			Msg("Could not resolve candidate for decision notification")
		return
	}

	review := ""
	if sub.Review != nil {
		review = *sub.Review
	}

	s.notifier.Dispatch(notify.NewMessage(
		candidate.Email,
		candidate.FirstName+" "+candidate.LastName,
		notify.KindSubmissionDecided,
		map[string]string{
			"decision":     string(sub.SubStatus),
			"review":       review,
			"submissionId": strconv.FormatInt(sub.ID, 10),
		},
	))
}

// Delete removes a submission outright. This is the explicit admin path that
// bypasses the review state machine.
func (s *submissionServiceImpl) Delete(ctx context.Context, ac auth.Context, id int64) error {
	if err := validation.ValidateID(id); err != nil {
		return err
	}
	if !ac.IsAdmin() {
		return apperrors.NewForbiddenError("only administrators may delete submissions")
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return err
	}

	return store.Submissions.Delete(ctx, id)
}
