package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
	"github.com/resguardo-civil/incident-reporting-service/internal/repository"
)

var incidentColumns = []string{
	"id",
	"details",
	"severity",
	"status",
	"created_by",
	"updated_by",
	"created_at",
	"updated_at",
	"version",
}

// IncidentRepository implements port.IncidentRepository using PostgreSQL.
type IncidentRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewIncidentRepository wires a PostgreSQL-backed incident repository.
func NewIncidentRepository(pool *pgxpool.Pool) *IncidentRepository {
	return &IncidentRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *IncidentRepository) WithTx(tx pgx.Tx) *IncidentRepository {
	if tx == nil {
		return r
	}
	return &IncidentRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new incident row at version 1.
func (r *IncidentRepository) Create(ctx context.Context, incident domain.Incident) error {
	details, err := json.Marshal(incident.Details)
	if err != nil {
		return fmt.Errorf("marshal incident details: %w", err)
	}

	query := r.builder.Insert("irs.incidents").
		Columns(incidentColumns...).
		Values(
			incident.ID,
			details,
			incident.Severity,
			incident.Status,
			incident.CreatedBy,
			incident.UpdatedBy,
			incident.CreatedAt,
			incident.UpdatedAt,
			incident.Version,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert incident sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("insert incident: %w", repository.ErrConflict)
		}
		return fmt.Errorf("insert incident: %w", err)
	}

	return nil
}

// GetByID retrieves an incident by identifier.
func (r *IncidentRepository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	stmt, args, err := r.builder.
		Select(incidentColumns...).
		From("irs.incidents").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select incident sql: %w", err)
	}

	return scanIncident(r.exec.QueryRow(ctx, stmt, args...))
}

// Update persists the incident only if the stored row is still at
// expectedVersion. On success it returns the row as written, with the
// version bumped by one. A row that exists at a different version yields
// repository.ErrVersionMismatch and is left untouched.
func (r *IncidentRepository) Update(ctx context.Context, incident domain.Incident, expectedVersion int64) (*domain.Incident, error) {
	details, err := json.Marshal(incident.Details)
	if err != nil {
		return nil, fmt.Errorf("marshal incident details: %w", err)
	}

	stmt, args, err := r.builder.Update("irs.incidents").
		Set("details", details).
		Set("severity", incident.Severity).
		Set("status", incident.Status).
		Set("updated_by", incident.UpdatedBy).
		Set("updated_at", incident.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": incident.ID, "version": expectedVersion}).
		Suffix("RETURNING " + returningIncidentColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update incident sql: %w", err)
	}

	updated, err := scanIncident(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Zero rows means either the incident is gone or another
			// writer moved the version. Tell them apart.
			if _, lookupErr := r.GetByID(ctx, incident.ID); lookupErr != nil {
				if errors.Is(lookupErr, repository.ErrNotFound) {
					return nil, repository.ErrNotFound
				}
				return nil, fmt.Errorf("lookup incident after stale update: %w", lookupErr)
			}
			return nil, repository.ErrVersionMismatch
		}
		return nil, err
	}

	return updated, nil
}

// List returns incidents with optional filtering and pagination.
func (r *IncidentRepository) List(ctx context.Context, filter port.IncidentFilter) ([]domain.Incident, error) {
	query := r.builder.Select(incidentColumns...).
		From("irs.incidents").
		OrderBy("created_at DESC")

	query = applyIncidentFilter(query, filter)

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list incidents sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]domain.Incident, 0)
	for rows.Next() {
		var (
			incident domain.Incident
			details  []byte
		)

		if err := rows.Scan(
			&incident.ID,
			&details,
			&incident.Severity,
			&incident.Status,
			&incident.CreatedBy,
			&incident.UpdatedBy,
			&incident.CreatedAt,
			&incident.UpdatedAt,
			&incident.Version,
		); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}

		if err := json.Unmarshal(details, &incident.Details); err != nil {
			return nil, fmt.Errorf("unmarshal incident details: %w", err)
		}

		incidents = append(incidents, incident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}

	return incidents, nil
}

// Count returns the total number of incidents matching the filter.
func (r *IncidentRepository) Count(ctx context.Context, filter port.IncidentFilter) (int, error) {
	query := r.builder.Select("COUNT(*)").From("irs.incidents")
	query = applyIncidentFilter(query, filter)

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count incidents sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan incidents count: %w", err)
	}

	return int(count), nil
}

// DeleteAll removes every incident row. Used by the seeding routine.
func (r *IncidentRepository) DeleteAll(ctx context.Context) error {
	stmt, args, err := r.builder.Delete("irs.incidents").ToSql()
	if err != nil {
		return fmt.Errorf("build delete incidents sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete incidents: %w", err)
	}

	return nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var (
		incident domain.Incident
		details  []byte
	)

	if err := row.Scan(
		&incident.ID,
		&details,
		&incident.Severity,
		&incident.Status,
		&incident.CreatedBy,
		&incident.UpdatedBy,
		&incident.CreatedAt,
		&incident.UpdatedAt,
		&incident.Version,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan incident: %w", err)
	}

	if err := json.Unmarshal(details, &incident.Details); err != nil {
		return nil, fmt.Errorf("unmarshal incident details: %w", err)
	}

	return &incident, nil
}

func returningIncidentColumns() string {
	return strings.Join(incidentColumns, ", ")
}

func applyIncidentFilter(query squirrel.SelectBuilder, filter port.IncidentFilter) squirrel.SelectBuilder {
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	if filter.Severity != "" {
		query = query.Where(squirrel.Eq{"severity": filter.Severity})
	}

	if filter.CreatedBy != "" {
		query = query.Where(squirrel.Eq{"created_by": filter.CreatedBy})
	}

	return query
}

var _ port.IncidentRepository = (*IncidentRepository)(nil)
