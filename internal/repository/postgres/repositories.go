package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
)

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	pool      *pgxpool.Pool
	Users     *UserRepository
	Incidents *IncidentRepository
	Audit     *AuditRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		pool:      pool,
		Users:     NewUserRepository(pool),
		Incidents: NewIncidentRepository(pool),
		Audit:     NewAuditRepository(pool),
	}
}

// WithinTx runs fn against repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repositories) WithinTx(ctx context.Context, fn func(port.RepositorySet) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	set := port.RepositorySet{
		Users:     r.Users.WithTx(tx),
		Incidents: r.Incidents.WithTx(tx),
		Audit:     r.Audit.WithTx(tx),
	}

	if err := fn(set); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback transaction: %v (original: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

var _ port.Transactor = (*Repositories)(nil)
