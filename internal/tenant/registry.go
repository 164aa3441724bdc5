// Package tenant hands out per-institution data-access handles. Each
// institution has an isolated database; the registry opens one pgx pool per
// institute on first use and memoizes the resulting repository bundle.
package tenant

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/surgitrack/surgitrack/internal/app/repositories"
	"github.com/surgitrack/surgitrack/internal/config"
	"github.com/surgitrack/surgitrack/internal/db"
	"github.com/surgitrack/surgitrack/internal/pkg/apperrors"
)

// Store bundles the repositories of one institution's database.
type Store struct {
	Submissions  repositories.SubmissionRepository
	ClinicalSubs repositories.ClinicalSubRepository
	Events       repositories.EventRepository
	Attendance   repositories.EventAttendanceRepository
	Candidates   repositories.CandidateRepository
	Supervisors  repositories.SupervisorRepository
}

// NewStore builds a Store over one tenant pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Submissions:  repositories.NewSubmissionRepository(pool),
		ClinicalSubs: repositories.NewClinicalSubRepository(pool),
		Events:       repositories.NewEventRepository(pool),
		Attendance:   repositories.NewEventAttendanceRepository(pool),
		Candidates:   repositories.NewCandidateRepository(pool),
		Supervisors:  repositories.NewSupervisorRepository(pool),
	}
}

// Registry resolves institute codes to their Store, opening pools lazily.
type Registry struct {
	cfg    *config.Config
	logger zerolog.Logger

	mu     sync.Mutex
	pools  map[string]*pgxpool.Pool
	stores map[string]*Store
}

// NewRegistry creates an empty registry over the configured tenants.
func NewRegistry(cfg *config.Config, logger zerolog.Logger) *Registry {
	return &Registry{
		cfg:    cfg,
		logger: logger,
		pools:  make(map[string]*pgxpool.Pool),
		stores: make(map[string]*Store),
	}
}

// Store returns the repository bundle for an institute code. Unregistered
// codes fail with ErrUnknownInstitute.
func (r *Registry) Store(ctx context.Context, institute string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[institute]; ok {
		return store, nil
	}

	dbname, ok := r.cfg.TenantDBName(institute)
	if !ok {
		return nil, apperrors.ErrUnknownInstitute
	}

	pool, err := db.NewPool(ctx, r.cfg, dbname)
	if err != nil {
		return nil, err
	}

	store := NewStore(pool)
	r.pools[institute] = pool
	r.stores[institute] = store
	r.logger.Info().Str("institute", institute).Str("dbname", dbname).Msg("Tenant store opened")
	return store, nil
}

// Close closes every opened tenant pool.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for institute, pool := range r.pools {
		pool.Close()
		delete(r.pools, institute)
		delete(r.stores, institute)
		r.logger.Info().Str("institute", institute).Msg("Tenant store closed")
	}
}
