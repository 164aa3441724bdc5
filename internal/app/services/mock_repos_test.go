package services

import (
	"context"
	"sync"
	"time"

	"github.com/surgitrack/surgitrack/internal/app/models"
	"github.com/surgitrack/surgitrack/internal/app/repositories"
	"github.com/surgitrack/surgitrack/internal/notify"
	"github.com/surgitrack/surgitrack/internal/pkg/apperrors"
	"github.com/surgitrack/surgitrack/internal/tenant"
)

// memData backs the in-memory repository fakes. Event status derivation and
// the attendance uniqueness constraint behave like the SQL they stand in for.
type memData struct {
	mu          sync.Mutex
	nextID      int64
	submissions map[int64]models.Submission
	clinical    map[int64]models.ClinicalSub
	events      map[int64]models.Event
	attendance  map[int64]models.EventAttendance
	candidates  map[int64]models.Candidate
	supervisors map[int64]models.Supervisor
}

func newMemData() *memData {
	return &memData{
		submissions: make(map[int64]models.Submission),
		clinical:    make(map[int64]models.ClinicalSub),
		events:      make(map[int64]models.Event),
		attendance:  make(map[int64]models.EventAttendance),
		candidates:  make(map[int64]models.Candidate),
		supervisors: make(map[int64]models.Supervisor),
	}
}

func (d *memData) id() int64 {
	d.nextID++
	return d.nextID
}

func (d *memData) addCandidate(id int64, firstName, lastName, email string) {
	d.candidates[id] = models.Candidate{ID: id, FirstName: firstName, LastName: lastName, Email: email}
}

func (d *memData) addSupervisor(id int64, firstName, lastName, email string) {
	d.supervisors[id] = models.Supervisor{ID: id, FirstName: firstName, LastName: lastName, Email: email}
}

func (d *memData) attendanceCount(eventID int64) (total, unflagged int) {
	for _, a := range d.attendance {
		if a.EventID == eventID {
			total++
			if !a.Flagged {
				unflagged++
			}
		}
	}
	return total, unflagged
}

// newTestStore bundles the fakes the way the tenant registry bundles the real
// repositories.
func newTestStore(d *memData) *tenant.Store {
	return &tenant.Store{
		Submissions:  &fakeSubmissionRepo{d: d},
		ClinicalSubs: &fakeClinicalSubRepo{d: d},
		Events:       &fakeEventRepo{d: d},
		Attendance:   &fakeAttendanceRepo{d: d},
		Candidates:   &fakeCandidateRepo{d: d},
		Supervisors:  &fakeSupervisorRepo{d: d},
	}
}

// fixedStores resolves every institute to the same store, or fails outright.
type fixedStores struct {
	store *tenant.Store
	err   error
}

func (f fixedStores) Store(ctx context.Context, institute string) (*tenant.Store, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.store, nil
}

// recordingNotifier captures dispatched messages for assertions.
type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (n *recordingNotifier) Dispatch(msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Message, len(n.msgs))
	copy(out, n.msgs)
	return out
}

type fakeSubmissionRepo struct {
	d *memData
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, sub *models.Submission) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	sub.ID = r.d.id()
	sub.CreatedAt = time.Now()
	r.d.submissions[sub.ID] = *sub
	return nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	sub, ok := r.d.submissions[id]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (r *fakeSubmissionRepo) List(ctx context.Context, filter repositories.SubmissionFilter) ([]models.Submission, int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var out []models.Submission
	for _, sub := range r.d.submissions {
		if filter.CandDocID != nil && sub.CandDocID != *filter.CandDocID {
			continue
		}
		if filter.SupervisorDocID != nil && sub.SupervisorDocID != *filter.SupervisorDocID {
			continue
		}
		if filter.Status != nil && sub.SubStatus != *filter.Status {
			continue
		}
		out = append(out, sub)
	}
	return out, int64(len(out)), nil
}

func (r *fakeSubmissionRepo) Review(ctx context.Context, id int64, decision models.SubStatus, review *string, reviewedBy int64, reviewedAt time.Time) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	sub, ok := r.d.submissions[id]
	if !ok || sub.SubStatus != models.SubStatusPending {
		return false, nil
	}
	sub.SubStatus = decision
	sub.Review = review
	sub.ReviewedBy = &reviewedBy
	sub.ReviewedAt = &reviewedAt
	r.d.submissions[id] = sub
	return true, nil
}

func (r *fakeSubmissionRepo) Delete(ctx context.Context, id int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.submissions[id]; !ok {
		return apperrors.ErrSubmissionNotFound
	}
	delete(r.d.submissions, id)
	return nil
}

type fakeClinicalSubRepo struct {
	d *memData
}

func (r *fakeClinicalSubRepo) Create(ctx context.Context, sub *models.ClinicalSub) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	sub.ID = r.d.id()
	sub.CreatedAt = time.Now()
	r.d.clinical[sub.ID] = *sub
	return nil
}

func (r *fakeClinicalSubRepo) GetByID(ctx context.Context, id int64) (*models.ClinicalSub, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	sub, ok := r.d.clinical[id]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (r *fakeClinicalSubRepo) List(ctx context.Context, filter repositories.ClinicalSubFilter) ([]models.ClinicalSub, int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var out []models.ClinicalSub
	for _, sub := range r.d.clinical {
		if filter.CandDocID != nil && sub.CandDocID != *filter.CandDocID {
			continue
		}
		if filter.SupervisorDocID != nil && sub.SupervisorDocID != *filter.SupervisorDocID {
			continue
		}
		if filter.Status != nil && sub.SubStatus != *filter.Status {
			continue
		}
		out = append(out, sub)
	}
	return out, int64(len(out)), nil
}

func (r *fakeClinicalSubRepo) Update(ctx context.Context, sub *models.ClinicalSub) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.clinical[sub.ID]; !ok {
		return apperrors.ErrClinicalSubNotFound
	}
	r.d.clinical[sub.ID] = *sub
	return nil
}

func (r *fakeClinicalSubRepo) Delete(ctx context.Context, id int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.clinical[id]; !ok {
		return apperrors.ErrClinicalSubNotFound
	}
	delete(r.d.clinical, id)
	return nil
}

type fakeEventRepo struct {
	d *memData
}

func (r *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	event.ID = r.d.id()
	event.CreatedAt = time.Now()
	r.d.events[event.ID] = *event
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	event, ok := r.d.events[id]
	if !ok {
		return nil, nil
	}
	return &event, nil
}

func (r *fakeEventRepo) List(ctx context.Context, filter repositories.EventFilter) ([]models.Event, int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var out []models.Event
	for _, event := range r.d.events {
		if filter.Type != nil && event.Type != *filter.Type {
			continue
		}
		out = append(out, event)
	}
	return out, int64(len(out)), nil
}

func (r *fakeEventRepo) RecomputeStatus(ctx context.Context, id int64, now time.Time) (models.EventStatus, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	event, ok := r.d.events[id]
	if !ok {
		return "", apperrors.ErrEventNotFound
	}
	total, _ := r.d.attendanceCount(id)
	switch {
	case total > 0:
		event.Status = models.EventHeld
	case event.EventTime.Before(now):
		event.Status = models.EventCanceled
	default:
		event.Status = models.EventBooked
	}
	r.d.events[id] = event
	return event.Status, nil
}

func (r *fakeEventRepo) PromoteToHeld(ctx context.Context, id int64) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	event, ok := r.d.events[id]
	if !ok {
		return false, nil
	}
	_, unflagged := r.d.attendanceCount(id)
	if event.Status == models.EventHeld || unflagged == 0 {
		return false, nil
	}
	event.Status = models.EventHeld
	r.d.events[id] = event
	return true, nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.events[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(r.d.events, id)
	for attID, att := range r.d.attendance {
		if att.EventID == id {
			delete(r.d.attendance, attID)
		}
	}
	return nil
}

type fakeAttendanceRepo struct {
	d *memData
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, att *models.EventAttendance) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, existing := range r.d.attendance {
		if existing.EventID == att.EventID && existing.CandDocID == att.CandDocID {
			return apperrors.ErrAlreadyInAttendance
		}
	}
	att.ID = r.d.id()
	att.CreatedAt = time.Now()
	r.d.attendance[att.ID] = *att
	return nil
}

func (r *fakeAttendanceRepo) GetByEventAndCandidate(ctx context.Context, eventID, candDocID int64) (*models.EventAttendance, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, att := range r.d.attendance {
		if att.EventID == eventID && att.CandDocID == candDocID {
			out := att
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) ListByEvent(ctx context.Context, eventID int64) ([]models.EventAttendance, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var out []models.EventAttendance
	for _, att := range r.d.attendance {
		if att.EventID == eventID {
			out = append(out, att)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) Delete(ctx context.Context, eventID, candDocID int64) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for id, att := range r.d.attendance {
		if att.EventID == eventID && att.CandDocID == candDocID {
			delete(r.d.attendance, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttendanceRepo) SetFlag(ctx context.Context, eventID, candDocID, flaggedBy int64, flaggedAt time.Time) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for id, att := range r.d.attendance {
		if att.EventID == eventID && att.CandDocID == candDocID {
			att.Flagged = true
			att.FlaggedBy = &flaggedBy
			att.FlaggedAt = &flaggedAt
			att.Points = models.PointsFlagged
			r.d.attendance[id] = att
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttendanceRepo) ClearFlag(ctx context.Context, eventID, candDocID int64) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for id, att := range r.d.attendance {
		if att.EventID == eventID && att.CandDocID == candDocID {
			att.Flagged = false
			att.FlaggedBy = nil
			att.FlaggedAt = nil
			att.Points = models.PointsAttended
			r.d.attendance[id] = att
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttendanceRepo) SumPoints(ctx context.Context, candDocID int64) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var total int64
	for _, att := range r.d.attendance {
		if att.CandDocID == candDocID {
			total += int64(att.Points)
		}
	}
	return total, nil
}

type fakeCandidateRepo struct {
	d *memData
}

func (r *fakeCandidateRepo) GetByID(ctx context.Context, id int64) (*models.Candidate, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	candidate, ok := r.d.candidates[id]
	if !ok {
		return nil, nil
	}
	return &candidate, nil
}

func (r *fakeCandidateRepo) List(ctx context.Context) ([]models.Candidate, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var out []models.Candidate
	for _, candidate := range r.d.candidates {
		out = append(out, candidate)
	}
	return out, nil
}

type fakeSupervisorRepo struct {
	d *memData
}

func (r *fakeSupervisorRepo) GetByID(ctx context.Context, id int64) (*models.Supervisor, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	supervisor, ok := r.d.supervisors[id]
	if !ok {
		return nil, nil
	}
	return &supervisor, nil
}
