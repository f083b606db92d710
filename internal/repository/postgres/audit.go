package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
)

var auditColumns = []string{
	"id",
	"ts",
	"actor_id",
	"action",
	"target_id",
	"resulting_state",
}

// AuditRepository implements port.AuditRepository using PostgreSQL. The
// backing table is append-only: no update or single-row delete exists.
type AuditRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAuditRepository wires a PostgreSQL-backed audit log repository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *AuditRepository) WithTx(tx pgx.Tx) *AuditRepository {
	if tx == nil {
		return r
	}
	return &AuditRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Append inserts a new audit entry.
func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	var stateValue any
	if entry.ResultingState != nil {
		stateValue = *entry.ResultingState
	}

	query := r.builder.Insert("irs.audit_log").
		Columns(auditColumns...).
		Values(
			entry.ID,
			entry.Timestamp,
			entry.ActorID,
			entry.Action,
			entry.TargetID,
			stateValue,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert audit entry sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	return nil
}

// List returns audit entries in arrival order, oldest first.
func (r *AuditRepository) List(ctx context.Context, filter port.AuditFilter) ([]domain.AuditEntry, error) {
	query := r.builder.Select(auditColumns...).
		From("irs.audit_log").
		OrderBy("ts ASC", "id ASC")

	if filter.ActorID != "" {
		query = query.Where(squirrel.Eq{"actor_id": filter.ActorID})
	}

	if filter.TargetID != "" {
		query = query.Where(squirrel.Eq{"target_id": filter.TargetID})
	}

	if filter.Action != "" {
		query = query.Where(squirrel.Eq{"action": filter.Action})
	}

	if !filter.From.IsZero() {
		query = query.Where(squirrel.GtOrEq{"ts": filter.From})
	}

	if !filter.To.IsZero() {
		query = query.Where(squirrel.LtOrEq{"ts": filter.To})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list audit entries sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var (
			entry domain.AuditEntry
			state *domain.ReportStatus
		)

		if err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.ActorID,
			&entry.Action,
			&entry.TargetID,
			&state,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		entry.ResultingState = state
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}

	return entries, nil
}

// DeleteAll removes every audit entry. Used by the seeding routine.
func (r *AuditRepository) DeleteAll(ctx context.Context) error {
	stmt, args, err := r.builder.Delete("irs.audit_log").ToSql()
	if err != nil {
		return fmt.Errorf("build delete audit entries sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete audit entries: %w", err)
	}

	return nil
}

var _ port.AuditRepository = (*AuditRepository)(nil)
