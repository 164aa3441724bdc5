package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/surgitrack/surgitrack/internal/app/models"
	"github.com/surgitrack/surgitrack/internal/pkg/apperrors"
	"github.com/surgitrack/surgitrack/internal/pkg/helpers"
	"github.com/surgitrack/surgitrack/internal/pkg/logger"
)

// ClinicalSubFilter holds listing filters for clinical submissions.
type ClinicalSubFilter struct {
	CandDocID       *int64
	SupervisorDocID *int64
	Status          *models.SubStatus
	Page            int
	Size            int
}

// ClinicalSubRepository handles database operations for ClinicalSub.
type ClinicalSubRepository interface {
	Create(ctx context.Context, sub *models.ClinicalSub) error
	GetByID(ctx context.Context, id int64) (*models.ClinicalSub, error)
	List(ctx context.Context, filter ClinicalSubFilter) ([]models.ClinicalSub, int64, error)
	Update(ctx context.Context, sub *models.ClinicalSub) error
	Delete(ctx context.Context, id int64) error
}

type clinicalSubRepository struct {
	DB *pgxpool.Pool
}

// NewClinicalSubRepository creates a new ClinicalSubRepository.
func NewClinicalSubRepository(db *pgxpool.Pool) ClinicalSubRepository {
	return &clinicalSubRepository{DB: db}
}

var clinicalSubColumns = []string{
	"id", "cand_doc_id", "supervisor_doc_id", "date_ca", "type_ca", "description",
	"sub_status", "review", "reviewed_at", "reviewed_by", "created_at",
}

func scanClinicalSub(row pgx.Row) (*models.ClinicalSub, error) {
	var c models.ClinicalSub
	err := row.Scan(
		&c.ID, &c.CandDocID, &c.SupervisorDocID, &c.DateCA, &c.TypeCA, &c.Description,
		&c.SubStatus, &c.Review, &c.ReviewedAt, &c.ReviewedBy, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new clinical submission.
func (r *clinicalSubRepository) Create(ctx context.Context, sub *models.ClinicalSub) error {
	sql, args, err := psql.Insert("clinical_subs").
		Columns("cand_doc_id", "supervisor_doc_id", "date_ca", "type_ca", "description",
			"sub_status", "review", "reviewed_at", "reviewed_by").
		Values(sub.CandDocID, sub.SupervisorDocID, sub.DateCA, sub.TypeCA, sub.Description,
			sub.SubStatus, sub.Review, sub.ReviewedAt, sub.ReviewedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create clinical sub SQL")
		return err
	}

	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&sub.ID, &sub.CreatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create clinical sub query")
		return err
	}
	return nil
}

// GetByID fetches one clinical submission, returning nil for an absent row.
func (r *clinicalSubRepository) GetByID(ctx context.Context, id int64) (*models.ClinicalSub, error) {
	sql, args, err := psql.Select(clinicalSubColumns...).
		From("clinical_subs").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get clinical sub SQL")
		return nil, err
	}

	sub, err := scanClinicalSub(r.DB.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Int64("clinicalSubID", id).Msg("Error scanning clinical sub")
		return nil, err
	}
	return sub, nil
}

// List returns clinical submissions matching the filter with the total count.
func (r *clinicalSubRepository) List(ctx context.Context, filter ClinicalSubFilter) ([]models.ClinicalSub, int64, error) {
	base := psql.Select(clinicalSubColumns...).From("clinical_subs")
	countQuery := psql.Select("COUNT(*)").From("clinical_subs")

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
		logger.Error().Err(err).Msg("Error building count clinical subs SQL")
		return nil, 0, err
	}
	var total int64
	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting clinical subs")
		return nil, 0, err
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	sqlStr, args, err = base.
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list clinical subs SQL")
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing clinical subs")
		return nil, 0, err
	}
	defer rows.Close()

	var subs []models.ClinicalSub
	for rows.Next() {
		sub, err := scanClinicalSub(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *sub)
	}
	return subs, total, rows.Err()
}

// Update writes all mutable fields of the clinical submission.
func (r *clinicalSubRepository) Update(ctx context.Context, sub *models.ClinicalSub) error {
	sql, args, err := psql.Update("clinical_subs").
		Set("date_ca", sub.DateCA).
		Set("type_ca", sub.TypeCA).
		Set("description", sub.Description).
		Set("sub_status", sub.SubStatus).
		Set("review", sub.Review).
		Set("reviewed_at", sub.ReviewedAt).
		Set("reviewed_by", sub.ReviewedBy).
		Where(squirrel.Eq{"id": sub.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update clinical sub SQL")
		return err
	}

	cmdTag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("clinicalSubID", sub.ID).Msg("Error executing update clinical sub query")
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrClinicalSubNotFound
	}
	return nil
}

// Delete removes a clinical submission outright (admin path).
func (r *clinicalSubRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("clinical_subs").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete clinical sub SQL")
		return err
	}

	cmdTag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("clinicalSubID", id).Msg("Error executing delete clinical sub query")
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrClinicalSubNotFound
	}
	return nil
}
