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

// ClinicalSubService defines the interface for clinical submission operations
type ClinicalSubService interface {
	Create(ctx context.Context, ac auth.Context, req *dto.CreateClinicalSubRequest) (*dto.ClinicalSubResponse, error)
	GetByID(ctx context.Context, ac auth.Context, id int64) (*dto.ClinicalSubResponse, error)
	List(ctx context.Context, ac auth.Context, status *models.SubStatus, page, size int) (*dto.ClinicalSubListResponse, error)
	Update(ctx context.Context, ac auth.Context, id int64, req *dto.UpdateClinicalSubRequest) (*dto.ClinicalSubResponse, error)
	Delete(ctx context.Context, ac auth.Context, id int64) error
}

// clinicalSubServiceImpl implements ClinicalSubService
type clinicalSubServiceImpl struct {
	stores   StoreResolver
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewClinicalSubService creates a new ClinicalSubService
func NewClinicalSubService(stores StoreResolver, notifier notify.Notifier, logger zerolog.Logger) ClinicalSubService {
	return &clinicalSubServiceImpl{
		stores:   stores,
		notifier: notifier,
		logger:   logger,
	}
}

// Create logs a new clinical activity as pending and notifies the assigned
// supervisor.
func (s *clinicalSubServiceImpl) Create(ctx context.Context, ac auth.Context, req *dto.CreateClinicalSubRequest) (*dto.ClinicalSubResponse, error) {
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

	if ac.Role == models.RoleCandidate && req.CandDocID != ac.ProfileID {
		return nil, apperrors.NewForbiddenError("candidates may only log their own clinical activity")
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

	sub := &models.ClinicalSub{
		CandDocID:       req.CandDocID,
		SupervisorDocID: req.SupervisorDocID,
		DateCA:          req.DateCA,
		TypeCA:          req.TypeCA,
		Description:     req.Description,
		SubStatus:       models.SubStatusPending,
	}

	if err := store.ClinicalSubs.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("error creating clinical sub: %w", err)
	}

	s.notifier.Dispatch(notify.NewMessage(
		supervisor.Email,
		supervisor.FirstName+" "+supervisor.LastName,
		notify.KindClinicalSubReceived,
		map[string]string{
			"candidateName": candidate.FirstName + " " + candidate.LastName,
			"clinicalSubId": strconv.FormatInt(sub.ID, 10),
		},
	))

	resp := dto.NewClinicalSubResponse(sub)
	return &resp, nil
}

// GetByID retrieves a clinical submission.
func (s *clinicalSubServiceImpl) GetByID(ctx context.Context, ac auth.Context, id int64) (*dto.ClinicalSubResponse, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	sub, err := store.ClinicalSubs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting clinical sub: %w", err)
	}
	if sub == nil {
		return nil, apperrors.ErrClinicalSubNotFound
	}

	resp := dto.NewClinicalSubResponse(sub)
	return &resp, nil
}

// List retrieves clinical submissions visible to the caller.
func (s *clinicalSubServiceImpl) List(ctx context.Context, ac auth.Context, status *models.SubStatus, page, size int) (*dto.ClinicalSubListResponse, error) {
	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	filter := repositories.ClinicalSubFilter{
		Status: status,
		Page:   page,
		Size:   size,
	}
	switch ac.Role {
	case models.RoleCandidate:
		filter.CandDocID = &ac.ProfileID
	case models.RoleSupervisor:
		filter.SupervisorDocID = &ac.ProfileID
	}

	subs, total, err := store.ClinicalSubs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing clinical subs: %w", err)
	}

	responses := make([]dto.ClinicalSubResponse, 0, len(subs))
	for i := range subs {
		responses = append(responses, dto.NewClinicalSubResponse(&subs[i]))
	}

	return &dto.ClinicalSubListResponse{
		ClinicalSubs:   responses,
		PaginationInfo: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// Update applies field changes through the one update operation. Permitted
// for the supervisor of record or an institute admin. The candidate is
// notified only when the status actually transitioned in this update, which
// is diffed against the previous status to avoid duplicate emails on no-op
// updates.
func (s *clinicalSubServiceImpl) Update(ctx context.Context, ac auth.Context, id int64, req *dto.UpdateClinicalSubRequest) (*dto.ClinicalSubResponse, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return nil, err
	}

	sub, err := store.ClinicalSubs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting clinical sub: %w", err)
	}
	if sub == nil {
		return nil, apperrors.ErrClinicalSubNotFound
	}

	isSupervisorOfRecord := ac.Role == models.RoleSupervisor && ac.ProfileID == sub.SupervisorDocID
	if !isSupervisorOfRecord && !ac.IsAdmin() {
		return nil, apperrors.ErrNotAssignedReviewer
	}

	prevStatus := sub.SubStatus

	if req.DateCA != nil {
		sub.DateCA = *req.DateCA
	}
	if req.TypeCA != nil {
		sub.TypeCA = *req.TypeCA
	}
	if req.Description != nil {
		sub.Description = *req.Description
	}
	if req.SubStatus != nil {
		decision := models.SubStatus(*req.SubStatus)
		if !decision.IsDecision() {
			return nil, apperrors.NewValidationError("subStatus must be approved or rejected")
		}
		if decision != prevStatus {
			if prevStatus.IsTerminal() {
				return nil, apperrors.ErrClinicalSubDecided
			}
			now := time.Now()
			reviewer := ac.ProfileID
			if reviewer == 0 {
				reviewer = ac.UserID
			}
			sub.SubStatus = decision
			sub.Review = req.Review
			sub.ReviewedAt = &now
			sub.ReviewedBy = &reviewer
		}
	}

	if err := store.ClinicalSubs.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("error updating clinical sub: %w", err)
	}

	if sub.SubStatus != prevStatus {
		s.notifyDecision(ctx, store, sub)
	}

	resp := dto.NewClinicalSubResponse(sub)
	return &resp, nil
}

// notifyDecision dispatches the candidate's decision notification. Lookup
// failures are logged and swallowed: the update is already committed.
func (s *clinicalSubServiceImpl) notifyDecision(ctx context.Context, store *tenant.Store, sub *models.ClinicalSub) {
	candidate, err := store.Candidates.GetByID(ctx, sub.CandDocID)
	if err != nil || candidate == nil {
		s.logger.Error().Err(err).
			Int64("candDocId", sub.CandDocID).
			Int64("clinicalSubId", sub.ID).
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
		notify.KindClinicalSubDecided,
		map[string]string{
			"decision":      string(sub.SubStatus),
			"review":        review,
			"clinicalSubId": strconv.FormatInt(sub.ID, 10),
		},
	))
}

// Delete removes a clinical submission outright (admin path).
func (s *clinicalSubServiceImpl) Delete(ctx context.Context, ac auth.Context, id int64) error {
	if err := validation.ValidateID(id); err != nil {
		return err
	}
	if !ac.IsAdmin() {
		return apperrors.NewForbiddenError("only administrators may delete clinical submissions")
	}

	store, err := s.stores.Store(ctx, ac.Institute)
	if err != nil {
		return err
	}

	return store.ClinicalSubs.Delete(ctx, id)
}
