package domain

import "time"

// Severity classifies how serious an incident is (nivelGravedad).
type Severity string

const (
	SeverityBaja  Severity = "baja"
	SeverityMedia Severity = "media"
	SeverityAlta  Severity = "alta"
)

// Valid reports whether the severity is one of the known values.
func (s Severity) Valid() bool {
	switch s {
	case SeverityBaja, SeverityMedia, SeverityAlta:
		return true
	}
	return false
}

// ReportStatus is the workflow status of an incident report (estadoReporte).
type ReportStatus string

const (
	StatusDraft      ReportStatus = "draft"
	StatusEnRevision ReportStatus = "en_revision"
	StatusAprobado   ReportStatus = "aprobado"
	StatusCerrado    ReportStatus = "cerrado"
)

// Valid reports whether the status is one of the known values.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusEnRevision, StatusAprobado, StatusCerrado:
		return true
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s ReportStatus) Terminal() bool {
	return s == StatusCerrado
}

// Incident mirrors the persisted representation of an incident report.
// Details carries the descriptive payload (location, timing, narrative,
// responsible parties); the core validates presence of required keys but
// never interprets the values. Status only changes through the workflow.
type Incident struct {
	ID        string
	Details   map[string]any
	Severity  Severity
	Status    ReportStatus
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

// Clone returns a copy with its own Details map so callers can mutate the
// copy without touching the original record.
func (i Incident) Clone() Incident {
	out := i
	if i.Details != nil {
		out.Details = make(map[string]any, len(i.Details))
		for k, v := range i.Details {
			out.Details[k] = v
		}
	}
	return out
}
