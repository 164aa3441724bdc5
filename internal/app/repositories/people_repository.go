package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/surgitrack/surgitrack/internal/app/models"
	"github.com/surgitrack/surgitrack/internal/pkg/logger"
)

// CandidateRepository provides read access to candidate records for
// authorization checks and notification addressing.
type CandidateRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Candidate, error)
	List(ctx context.Context) ([]models.Candidate, error)
}

type candidateRepository struct {
	DB *pgxpool.Pool
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(db *pgxpool.Pool) CandidateRepository {
	return &candidateRepository{DB: db}
}

// GetByID fetches one candidate, returning nil for an absent row.
func (r *candidateRepository) GetByID(ctx context.Context, id int64) (*models.Candidate, error) {
	sql, args, err := psql.Select("id", "user_id", "first_name", "last_name", "email", "training_year", "enrolled_at").
		From("candidates").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get candidate SQL")
		return nil, err
	}

	var c models.Candidate
	err = r.DB.QueryRow(ctx, sql, args...).Scan(
		&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.TrainingYear, &c.EnrolledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Int64("candidateID", id).Msg("Error scanning candidate")
		return nil, err
	}
	return &c, nil
}

// List returns every candidate of the institute.
func (r *candidateRepository) List(ctx context.Context) ([]models.Candidate, error) {
	sql, args, err := psql.Select("id", "user_id", "first_name", "last_name", "email", "training_year", "enrolled_at").
		From("candidates").
		OrderBy("last_name ASC, first_name ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list candidates SQL")
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing candidates")
		return nil, err
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.TrainingYear, &c.EnrolledAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// SupervisorRepository provides read access to supervisor records.
type SupervisorRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Supervisor, error)
}

type supervisorRepository struct {
	DB *pgxpool.Pool
}

// NewSupervisorRepository creates a new SupervisorRepository.
func NewSupervisorRepository(db *pgxpool.Pool) SupervisorRepository {
	return &supervisorRepository{DB: db}
}

// GetByID fetches one supervisor, returning nil for an absent row.
func (r *supervisorRepository) GetByID(ctx context.Context, id int64) (*models.Supervisor, error) {
	sql, args, err := psql.Select("id", "user_id", "first_name", "last_name", "email", "title", "specialty").
		From("supervisors").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get supervisor SQL")
		return nil, err
	}

	var s models.Supervisor
	err = r.DB.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.Email, &s.Title, &s.Specialty,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Int64("supervisorID", id).Msg("Error scanning supervisor")
		return nil, err
	}
	return &s, nil
}
