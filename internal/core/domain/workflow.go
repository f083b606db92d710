package domain

import "time"

// transitionEdge describes one edge of the report workflow graph.
type transitionEdge struct {
	From ReportStatus
	To   ReportStatus
}

// workflowEdges is the complete transition graph:
// draft → en_revision → {aprobado, draft} → cerrado. Cerrado is terminal.
var workflowEdges = map[Action]transitionEdge{
	ActionSubmitReport:  {From: StatusDraft, To: StatusEnRevision},
	ActionApproveReport: {From: StatusEnRevision, To: StatusAprobado},
	ActionRejectReport:  {From: StatusEnRevision, To: StatusDraft},
	ActionCloseReport:   {From: StatusAprobado, To: StatusCerrado},
}

// IsWorkflowAction reports whether the action moves a report between states.
func IsWorkflowAction(action Action) bool {
	_, ok := workflowEdges[action]
	return ok
}

// TransitionTarget returns the resulting status of applying action to a
// report currently in from, or false when no such edge exists.
func TransitionTarget(action Action, from ReportStatus) (ReportStatus, bool) {
	edge, ok := workflowEdges[action]
	if !ok || edge.From != from {
		return "", false
	}
	return edge.To, true
}

// ApplyTransition authorizes and computes a workflow transition. On allow
// it returns a copy of the incident with the new status, updatedBy, and
// updatedAt set; the input record is never mutated. On deny it returns
// ErrInvalidTransition for structurally impossible moves or an
// UnauthorizedError carrying the policy's deny reason.
func ApplyTransition(incident Incident, action Action, actor Actor, now time.Time) (Incident, error) {
	decision := Decide(actor, action, &incident)
	if !decision.Allowed {
		if decision.Reason == DenyInvalidTransition {
			return Incident{}, ErrInvalidTransition
		}
		return Incident{}, &UnauthorizedError{Action: action, Reason: decision.Reason}
	}

	next, ok := TransitionTarget(action, incident.Status)
	if !ok {
		return Incident{}, ErrInvalidTransition
	}

	updated := incident.Clone()
	updated.Status = next
	updated.UpdatedBy = actor.ID
	updated.UpdatedAt = now.UTC()

	return updated, nil
}
