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

// EventFilter holds listing filters for events.
type EventFilter struct {
	Type *models.EventType
	Page int
	Size int
}

// EventRepository handles database operations for Event.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error)
	// RecomputeStatus re-derives the event status from a fresh attendance
	// count and the event time, in one statement. Returns the new status.
	RecomputeStatus(ctx context.Context, id int64, now time.Time) (models.EventStatus, error)
	// PromoteToHeld forces a booked or canceled event to held when at least
	// one unflagged attendance record exists. Returns whether it promoted.
	PromoteToHeld(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type eventRepository struct {
	DB *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *pgxpool.Pool) EventRepository {
	return &eventRepository{DB: db}
}

var eventColumns = []string{
	"id", "type", "event_time", "location", "presenter_role", "presenter_id", "status", "created_at",
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID, &e.Type, &e.EventTime, &e.Location,
		&e.Presenter.Role, &e.Presenter.ID, &e.Status, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event.
func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	sql, args, err := psql.Insert("events").
		Columns("type", "event_time", "location", "presenter_role", "presenter_id", "status").
		Values(event.Type, event.EventTime, event.Location,
			event.Presenter.Role, event.Presenter.ID, event.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create event SQL")
		return err
	}

	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&event.ID, &event.CreatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create event query")
		return err
	}
	return nil
}

// GetByID fetches one event, returning nil for an absent row.
func (r *eventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	sql, args, err := psql.Select(eventColumns...).
		From("events").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get event SQL")
		return nil, err
	}

	event, err := scanEvent(r.DB.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Int64("eventID", id).Msg("Error scanning event")
		return nil, err
	}
	return event, nil
}

// List returns events matching the filter with the total count.
func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error) {
	base := psql.Select(eventColumns...).From("events")
	countQuery := psql.Select("COUNT(*)").From("events")

	if filter.Type != nil {
		base = base.Where(squirrel.Eq{"type": *filter.Type})
		countQuery = countQuery.Where(squirrel.Eq{"type": *filter.Type})
	}

	sqlStr, args, err := countQuery.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count events SQL")
		return nil, 0, err
	}
	var total int64
	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting events")
		return nil, 0, err
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	sqlStr, args, err = base.
		OrderBy("event_time DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list events SQL")
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing events")
		return nil, 0, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *event)
	}
	return events, total, rows.Err()
}

// recomputeStatusSQL derives status from a correlated attendance count inside
// the UPDATE itself, so the count, the decision and the write land as one
// statement with no read-then-write window.
const recomputeStatusSQL = `
UPDATE events e SET status = CASE
	WHEN (SELECT COUNT(*) FROM event_attendance a WHERE a.event_id = e.id) > 0 THEN 'held'
	WHEN e.event_time < $2 THEN 'canceled'
	ELSE 'booked'
END
WHERE e.id = $1
RETURNING e.status`

// RecomputeStatus re-derives the event status in one atomic statement.
func (r *eventRepository) RecomputeStatus(ctx context.Context, id int64, now time.Time) (models.EventStatus, error) {
	var status models.EventStatus
	err := r.DB.QueryRow(ctx, recomputeStatusSQL, id, now).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrEventNotFound
		}
		logger.Error().Err(err).Int64("eventID", id).Msg("Error recomputing event status")
		return "", err
	}
	return status, nil
}

// promoteToHeldSQL is the one-way unflag promotion: a booked or canceled
// event with at least one unflagged record becomes held.
const promoteToHeldSQL = `
UPDATE events e SET status = 'held'
WHERE e.id = $1
  AND e.status IN ('booked', 'canceled')
  AND EXISTS (SELECT 1 FROM event_attendance a WHERE a.event_id = e.id AND NOT a.flagged)`

// PromoteToHeld applies the unflag auto-promotion, reporting whether it fired.
func (r *eventRepository) PromoteToHeld(ctx context.Context, id int64) (bool, error) {
	cmdTag, err := r.DB.Exec(ctx, promoteToHeldSQL, id)
	if err != nil {
		logger.Error().Err(err).Int64("eventID", id).Msg("Error promoting event to held")
		return false, err
	}
	return cmdTag.RowsAffected() > 0, nil
}

// Delete removes an event; its attendance records cascade.
func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("events").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete event SQL")
		return err
	}

	cmdTag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("eventID", id).Msg("Error executing delete event query")
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}
