package domain

import "time"

// SystemActorID marks audit entries produced by bootstrap rather than a user.
const SystemActorID = "system"

// AuditAction enumerates the mutation kinds recorded in the audit log.
type AuditAction string

const (
	AuditIncidentCreated   AuditAction = "incident_created"
	AuditIncidentUpdated   AuditAction = "incident_updated"
	AuditReportTransition  AuditAction = "report_transition"
	AuditUserCreated       AuditAction = "user_created"
	AuditUserStatusChanged AuditAction = "user_status_changed"
	AuditSeedCompleted     AuditAction = "seed_completed"
)

// AuditEntry is one append-only record of who did what to what.
// Entries are never rewritten or deleted.
type AuditEntry struct {
	ID             string
	Timestamp      time.Time
	ActorID        string
	Action         AuditAction
	TargetID       string
	ResultingState *ReportStatus
}
