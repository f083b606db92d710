package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
	"github.com/resguardo-civil/incident-reporting-service/internal/repository"
)

type fakeUserRepo struct {
	users        map[string]domain.User
	createErr    error
	setActiveErr error
	lastLogins   map[string]time.Time
	deleteCalls  int
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		users:      make(map[string]domain.User),
		lastLogins: make(map[string]time.Time),
	}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return repository.ErrConflict
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		copy := user
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copy := user
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) SetActive(_ context.Context, id string, active bool) error {
	if r.setActiveErr != nil {
		return r.setActiveErr
	}
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Active = active
	r.users[id] = user
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	r.lastLogins[id] = at
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, filter port.UserFilter) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.Active != nil && user.Active != *filter.Active {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, filter port.UserFilter) (int, error) {
	users, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

func (r *fakeUserRepo) DeleteAll(context.Context) error {
	r.deleteCalls++
	r.users = make(map[string]domain.User)
	return nil
}

var _ port.UserRepository = (*fakeUserRepo)(nil)

type fakeIncidentRepo struct {
	incidents map[string]domain.Incident
	createErr error

	// staleWrites makes the next N Update calls fail with a version
	// mismatch, as if another writer landed in between. Each failed call
	// also bumps the stored version to mimic that writer.
	staleWrites int
	updateCalls int
}

func newFakeIncidentRepo(incidents ...domain.Incident) *fakeIncidentRepo {
	repo := &fakeIncidentRepo{incidents: make(map[string]domain.Incident)}
	for _, incident := range incidents {
		repo.incidents[incident.ID] = incident
	}
	return repo
}

func (r *fakeIncidentRepo) Create(_ context.Context, incident domain.Incident) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.incidents[incident.ID] = incident
	return nil
}

func (r *fakeIncidentRepo) GetByID(_ context.Context, id string) (*domain.Incident, error) {
	if incident, ok := r.incidents[id]; ok {
		copy := incident.Clone()
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeIncidentRepo) Update(_ context.Context, incident domain.Incident, expectedVersion int64) (*domain.Incident, error) {
	r.updateCalls++

	stored, ok := r.incidents[incident.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if r.staleWrites > 0 {
		r.staleWrites--
		stored.Version++
		r.incidents[incident.ID] = stored
		return nil, repository.ErrVersionMismatch
	}

	if stored.Version != expectedVersion {
		return nil, repository.ErrVersionMismatch
	}

	incident.Version = stored.Version + 1
	r.incidents[incident.ID] = incident

	copy := incident.Clone()
	return &copy, nil
}

func (r *fakeIncidentRepo) List(_ context.Context, filter port.IncidentFilter) ([]domain.Incident, error) {
	out := make([]domain.Incident, 0, len(r.incidents))
	for _, incident := range r.incidents {
		if filter.Status != "" && incident.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && incident.Severity != filter.Severity {
			continue
		}
		if filter.CreatedBy != "" && incident.CreatedBy != filter.CreatedBy {
			continue
		}
		out = append(out, incident)
	}
	return out, nil
}

func (r *fakeIncidentRepo) Count(ctx context.Context, filter port.IncidentFilter) (int, error) {
	incidents, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(incidents), nil
}

func (r *fakeIncidentRepo) DeleteAll(context.Context) error {
	r.incidents = make(map[string]domain.Incident)
	return nil
}

var _ port.IncidentRepository = (*fakeIncidentRepo)(nil)

type fakeAuditRepo struct {
	entries   []domain.AuditEntry
	appendErr error
}

func (r *fakeAuditRepo) Append(_ context.Context, entry domain.AuditEntry) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, filter port.AuditFilter) ([]domain.AuditEntry, error) {
	out := make([]domain.AuditEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		if filter.ActorID != "" && entry.ActorID != filter.ActorID {
			continue
		}
		if filter.TargetID != "" && entry.TargetID != filter.TargetID {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if !filter.From.IsZero() && entry.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && entry.Timestamp.After(filter.To) {
			continue
		}
		out = append(out, entry)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []domain.AuditEntry{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (r *fakeAuditRepo) DeleteAll(context.Context) error {
	r.entries = nil
	return nil
}

func (r *fakeAuditRepo) byAction(action domain.AuditAction) []domain.AuditEntry {
	out := make([]domain.AuditEntry, 0)
	for _, entry := range r.entries {
		if entry.Action == action {
			out = append(out, entry)
		}
	}
	return out
}

var _ port.AuditRepository = (*fakeAuditRepo)(nil)

type fakePublisher struct {
	incidentCreated []domain.IncidentCreatedEvent
	transitioned    []domain.ReportTransitionedEvent
	userCreated     []domain.UserAccountCreatedEvent
	publishErr      error
}

func (p *fakePublisher) PublishIncidentCreated(_ context.Context, event domain.IncidentCreatedEvent) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.incidentCreated = append(p.incidentCreated, event)
	return nil
}

func (p *fakePublisher) PublishReportTransitioned(_ context.Context, event domain.ReportTransitionedEvent) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.transitioned = append(p.transitioned, event)
	return nil
}

func (p *fakePublisher) PublishUserAccountCreated(_ context.Context, event domain.UserAccountCreatedEvent) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.userCreated = append(p.userCreated, event)
	return nil
}

var _ port.EventPublisher = (*fakePublisher)(nil)

// fakeTransactor snapshots the fake repositories before fn runs and restores
// them when fn fails, mirroring a rolled-back transaction.
type fakeTransactor struct {
	users     *fakeUserRepo
	incidents *fakeIncidentRepo
	audit     *fakeAuditRepo
}

func (t *fakeTransactor) WithinTx(_ context.Context, fn func(port.RepositorySet) error) error {
	savedUsers := make(map[string]domain.User, len(t.users.users))
	for id, user := range t.users.users {
		savedUsers[id] = user
	}
	savedIncidents := make(map[string]domain.Incident, len(t.incidents.incidents))
	for id, incident := range t.incidents.incidents {
		savedIncidents[id] = incident
	}
	savedAudit := make([]domain.AuditEntry, len(t.audit.entries))
	copy(savedAudit, t.audit.entries)

	err := fn(port.RepositorySet{Users: t.users, Incidents: t.incidents, Audit: t.audit})
	if err != nil {
		t.users.users = savedUsers
		t.incidents.incidents = savedIncidents
		t.audit.entries = savedAudit
		return err
	}
	return nil
}

var _ port.Transactor = (*fakeTransactor)(nil)

var errStorageDown = errors.New("storage unavailable")
