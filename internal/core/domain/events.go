package domain

import "time"

// IncidentCreatedEvent represents the payload for irs.incident.created messages.
type IncidentCreatedEvent struct {
	EventID    string
	IncidentID string
	CreatedBy  string
	Severity   Severity
	CreatedAt  time.Time
	Metadata   map[string]any
}

// ReportTransitionedEvent represents the payload for irs.report.transitioned messages.
type ReportTransitionedEvent struct {
	EventID    string
	IncidentID string
	Action     Action
	FromStatus ReportStatus
	ToStatus   ReportStatus
	ActorID    string
	OccurredAt time.Time
	Metadata   map[string]any
}

// UserAccountCreatedEvent represents the payload for irs.user.created messages.
type UserAccountCreatedEvent struct {
	EventID    string
	UserID     string
	Username   string
	Role       Role
	Department Department
	CreatedBy  string
	CreatedAt  time.Time
	Metadata   map[string]any
}
