package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/surgitrack/surgitrack/internal/app/models"
	"github.com/surgitrack/surgitrack/internal/pkg/apperrors"
	"github.com/surgitrack/surgitrack/internal/pkg/helpers"
	"github.com/surgitrack/surgitrack/internal/pkg/logger"
)

// SubmissionFilter holds listing filters for submissions.
type SubmissionFilter struct {
	CandDocID       *int64
	SupervisorDocID *int64
	Status          *models.SubStatus
	Page            int
	Size            int
}

// SubmissionRepository handles database operations for Submission.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error)
	// Review applies the decision as one conditional update guarded on the
	// row still being pending. Returns false when no pending row matched.
	Review(ctx context.Context, id int64, decision models.SubStatus, review *string, reviewedBy int64, reviewedAt time.Time) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type submissionRepository struct {
	DB *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(db *pgxpool.Pool) SubmissionRepository {
	return &submissionRepository{DB: db}
}

var submissionColumns = []string{
	"id", "cand_doc_id", "supervisor_doc_id", "procedure_id", "main_diagnosis_id",
	"performed_at", "participation", "case_notes", "sub_status",
	"review", "reviewed_at", "reviewed_by", "created_at",
}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var s models.Submission
	err := row.Scan(
		&s.ID, &s.CandDocID, &s.SupervisorDocID, &s.ProcedureID, &s.MainDiagnosisID,
		&s.PerformedAt, &s.Participation, &s.CaseNotes, &s.SubStatus,
		&s.Review, &s.ReviewedAt, &s.ReviewedBy, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new submission and fills in its generated fields.
func (r *submissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	sql, args, err := psql.Insert("submissions").
		Columns("cand_doc_id", "supervisor_doc_id", "procedure_id", "main_diagnosis_id",
			"performed_at", "participation", "case_notes", "sub_status",
			"review", "reviewed_at", "reviewed_by").
		Values(sub.CandDocID, sub.SupervisorDocID, sub.ProcedureID, sub.MainDiagnosisID,
			sub.PerformedAt, sub.Participation, sub.CaseNotes, sub.SubStatus,
			sub.Review, sub.ReviewedAt, sub.ReviewedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create submission SQL")
		return err
	}

	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&sub.ID, &sub.CreatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create submission query")
		return err
	}
	return nil
}

// GetByID fetches one submission, returning nil for an absent row.
func (r *submissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	sql, args, err := psql.Select(submissionColumns...).
		From("submissions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get submission SQL")
		return nil, err
	}

	sub, err := scanSubmission(r.DB.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Int64("submissionID", id).Msg("Error scanning submission")
		return nil, err
	}
	return sub, nil
}

// List returns submissions matching the filter with the total count.
func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error) {
	base := psql.Select(submissionColumns...).From("submissions")
	countQuery := psql.Select("COUNT(*)").From("submissions")

	if filter.CandDocID != nil {
		base = base.Where(squirrel.Eq{"cand_doc_id": *filter.CandDocID})
		countQuery = countQuery.Where(squirrel.Eq{"cand_doc_id": *filter.CandDocID})
	}
	if filter.SupervisorDocID != nil {
		base = base.Where(squirrel.Eq{"supervisor_doc_id": *filter.SupervisorDocID})
		countQuery = countQuery.Where(squirrel.Eq{"supervisor_doc_id": *filter.SupervisorDocID})
	}
	if filter.Status != nil {
		base = base.Where(squirrel.Eq{"sub_status": *filter.Status})
		countQuery = countQuery.Where(squirrel.Eq{"sub_status": *filter.Status})
	}

	sqlStr, args, err := countQuery.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count submissions SQL")
		return nil, 0, err
	}
	var total int64
	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting submissions")
		return nil, 0, err
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	sqlStr, args, err = base.
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list submissions SQL")
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing submissions")
		return nil, 0, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *sub)
	}
	return subs, total, rows.Err()
}

// Review sets the decision, comment and review metadata in one statement,
// guarded on sub_status still being pending. The guard makes the
// read-check-write sequence in the service safe against a concurrent review.
func (r *submissionRepository) Review(ctx context.Context, id int64, decision models.SubStatus, review *string, reviewedBy int64, reviewedAt time.Time) (bool, error) {
	sql, args, err := psql.Update("submissions").
		Set("sub_status", decision).
		Set("review", review).
		Set("reviewed_at", reviewedAt).
		Set("reviewed_by", reviewedBy).
		Where(squirrel.Eq{"id": id, "sub_status": models.SubStatusPending}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building review submission SQL")
		return false, err
	}

	cmdTag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("submissionID", id).Msg("Error executing review submission query")
		return false, err
	}
	return cmdTag.RowsAffected() > 0, nil
}

// Delete removes a submission outright (admin path, no state machine).
func (r *submissionRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("submissions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete submission SQL")
		return err
	}

	cmdTag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("submissionID", id).Msg("Error executing delete submission query")
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSubmissionNotFound
	}
	return nil
}
