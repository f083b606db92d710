package port

import "context"

// RepositorySet bundles the repositories scoped to one unit of work.
type RepositorySet struct {
	Users     UserRepository
	Incidents IncidentRepository
	Audit     AuditRepository
}

// Transactor runs fn against a repository set bound to a single
// transaction: either every write in fn lands or none do.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(RepositorySet) error) error
}
