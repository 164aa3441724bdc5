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
	"github.com/surgitrack/surgitrack/internal/pkg/dberrors"
	"github.com/surgitrack/surgitrack/internal/pkg/logger"
)

// EventAttendanceRepository handles database operations for EventAttendance.
type EventAttendanceRepository interface {
	// Create inserts a record; a duplicate (event, candidate) pair fails with
	// ErrAlreadyInAttendance.
	Create(ctx context.Context, att *models.EventAttendance) error
	GetByEventAndCandidate(ctx context.Context, eventID, candDocID int64) (*models.EventAttendance, error)
	ListByEvent(ctx context.Context, eventID int64) ([]models.EventAttendance, error)
	// Delete removes the record, reporting whether one existed.
	Delete(ctx context.Context, eventID, candDocID int64) (bool, error)
	// SetFlag marks the record flagged with the penalty point value.
	SetFlag(ctx context.Context, eventID, candDocID, flaggedBy int64, flaggedAt time.Time) (bool, error)
	// ClearFlag unmarks the record and restores the attendance point value.
	ClearFlag(ctx context.Context, eventID, candDocID int64) (bool, error)
	// SumPoints totals a candidate's points across all events. Never cached.
	SumPoints(ctx context.Context, candDocID int64) (int64, error)
}

type eventAttendanceRepository struct {
	DB *pgxpool.Pool
}

// NewEventAttendanceRepository creates a new EventAttendanceRepository.
func NewEventAttendanceRepository(db *pgxpool.Pool) EventAttendanceRepository {
	return &eventAttendanceRepository{DB: db}
}

var attendanceColumns = []string{
	"id", "event_id", "cand_doc_id", "added_by", "added_by_role",
	"flagged", "flagged_by", "flagged_at", "points", "created_at",
}

func scanAttendance(row pgx.Row) (*models.EventAttendance, error) {
	var a models.EventAttendance
	err := row.Scan(
		&a.ID, &a.EventID, &a.CandDocID, &a.AddedBy, &a.AddedByRole,
		&a.Flagged, &a.FlaggedBy, &a.FlaggedAt, &a.Points, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new attendance record.
func (r *eventAttendanceRepository) Create(ctx context.Context, att *models.EventAttendance) error {
	sql, args, err := psql.Insert("event_attendance").
		Columns("event_id", "cand_doc_id", "added_by", "added_by_role",
			"flagged", "flagged_by", "flagged_at", "points").
		Values(att.EventID, att.CandDocID, att.AddedBy, att.AddedByRole,
			att.Flagged, att.FlaggedBy, att.FlaggedAt, att.Points).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create attendance SQL")
		return err
	}

	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&att.ID, &att.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_event_attendance_event_candidate") {
			return apperrors.ErrAlreadyInAttendance
		}
		logger.Error().Err(err).Msg("Error executing create attendance query")
		return err
	}
	return nil
}

// GetByEventAndCandidate fetches one record, returning nil for an absent row.
func (r *eventAttendanceRepository) GetByEventAndCandidate(ctx context.Context, eventID, candDocID int64) (*models.EventAttendance, error) {
	sql, args, err := psql.Select(attendanceColumns...).
		From("event_attendance").
		Where(squirrel.Eq{"event_id": eventID, "cand_doc_id": candDocID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get attendance SQL")
		return nil, err
	}

	att, err := scanAttendance(r.DB.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Int64("eventID", eventID).Int64("candDocID", candDocID).Msg("Error scanning attendance")
		return nil, err
	}
	return att, nil
}

// ListByEvent returns every attendance record of an event.
func (r *eventAttendanceRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.EventAttendance, error) {
	sql, args, err := psql.Select(attendanceColumns...).
		From("event_attendance").
		Where(squirrel.Eq{"event_id": eventID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list attendance SQL")
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("eventID", eventID).Msg("Error listing attendance")
		return nil, err
	}
	defer rows.Close()

	var records []models.EventAttendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *att)
	}
	return records, rows.Err()
}

// Delete removes one attendance record.
func (r *eventAttendanceRepository) Delete(ctx context.Context, eventID, candDocID int64) (bool, error) {
	sql, args, err := psql.Delete("event_attendance").
		Where(squirrel.Eq{"event_id": eventID, "cand_doc_id": candDocID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete attendance SQL")
		return false, err
	}

	cmdTag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("eventID", eventID).Int64("candDocID", candDocID).Msg("Error executing delete attendance query")
		return false, err
	}
	return cmdTag.RowsAffected() > 0, nil
}

// SetFlag marks the record flagged. Points follow the flagged bit.
func (r *eventAttendanceRepository) SetFlag(ctx context.Context, eventID, candDocID, flaggedBy int64, flaggedAt time.Time) (bool, error) {
	sql, args, err := psql.Update("event_attendance").
		Set("flagged", true).
		Set("flagged_by", flaggedBy).
		Set("flagged_at", flaggedAt).
		Set("points", models.PointsFlagged).
		Where(squirrel.Eq{"event_id": eventID, "cand_doc_id": candDocID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building flag attendance SQL")
		return false, err
	}

	cmdTag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("eventID", eventID).Int64("candDocID", candDocID).Msg("Error executing flag attendance query")
		return false, err
	}
	return cmdTag.RowsAffected() > 0, nil
}

// ClearFlag unmarks the record and clears the flag metadata.
func (r *eventAttendanceRepository) ClearFlag(ctx context.Context, eventID, candDocID int64) (bool, error) {
	sql, args, err := psql.Update("event_attendance").
		Set("flagged", false).
		Set("flagged_by", nil).
		Set("flagged_at", nil).
		Set("points", models.PointsAttended).
		Where(squirrel.Eq{"event_id": eventID, "cand_doc_id": candDocID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building unflag attendance SQL")
		return false, err
	}

	cmdTag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("eventID", eventID).Int64("candDocID", candDocID).Msg("Error executing unflag attendance query")
		return false, err
	}
	return cmdTag.RowsAffected() > 0, nil
}

// SumPoints totals a candidate's attendance points across all events.
func (r *eventAttendanceRepository) SumPoints(ctx context.Context, candDocID int64) (int64, error) {
	sql, args, err := psql.Select("COALESCE(SUM(points), 0)").
		From("event_attendance").
		Where(squirrel.Eq{"cand_doc_id": candDocID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building sum points SQL")
		return 0, err
	}

	var total int64
	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Int64("candDocID", candDocID).Msg("Error summing attendance points")
		return 0, err
	}
	return total, nil
}
