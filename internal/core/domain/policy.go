package domain

// Action enumerates every operation the authorization policy rules on.
type Action string

const (
	ActionCreateIncident Action = "incident.create"
	ActionEditIncident   Action = "incident.edit"
	ActionSubmitReport   Action = "report.submit"
	ActionApproveReport  Action = "report.approve"
	ActionRejectReport   Action = "report.reject"
	ActionCloseReport    Action = "report.close"
	ActionManageUsers    Action = "users.manage"
	ActionViewAudit      Action = "audit.view"
)

// Valid reports whether the action is one of the known values.
func (a Action) Valid() bool {
	_, ok := policyTable[a]
	return ok
}

// DenyReason is the machine-readable reason attached to every denial.
type DenyReason string

const (
	DenyInactiveActor     DenyReason = "inactive_actor"
	DenyInsufficientRole  DenyReason = "insufficient_role"
	DenyNotOwner          DenyReason = "not_owner"
	DenyInvalidTransition DenyReason = "invalid_transition"
)

// Actor carries the only identity fields the policy consults.
type Actor struct {
	ID     string
	Role   Role
	Active bool
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow returns an allowing decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a denying decision with the given reason.
func Deny(reason DenyReason) Decision { return Decision{Reason: reason} }

type policyRule uint8

const (
	ruleDeny policyRule = iota
	ruleAllow
	ruleAllowOwn
)

// policyTable is the role/action decision matrix. Ownership and record
// state refine the lookup in Decide; the table itself stays pure data.
var policyTable = map[Action]map[Role]policyRule{
	ActionCreateIncident: {
		RoleBrigadista:  ruleAllow,
		RoleCoordinador: ruleAllow,
		RoleAutoridad:   ruleDeny,
		RoleAdmin:       ruleAllow,
	},
	ActionEditIncident: {
		RoleBrigadista:  ruleAllowOwn,
		RoleCoordinador: ruleAllow,
		RoleAutoridad:   ruleDeny,
		RoleAdmin:       ruleAllow,
	},
	ActionSubmitReport: {
		RoleBrigadista:  ruleAllowOwn,
		RoleCoordinador: ruleAllow,
		RoleAutoridad:   ruleDeny,
		RoleAdmin:       ruleAllow,
	},
	ActionApproveReport: {
		RoleBrigadista:  ruleDeny,
		RoleCoordinador: ruleAllow,
		RoleAutoridad:   ruleAllow,
		RoleAdmin:       ruleAllow,
	},
	ActionRejectReport: {
		RoleBrigadista:  ruleDeny,
		RoleCoordinador: ruleAllow,
		RoleAutoridad:   ruleAllow,
		RoleAdmin:       ruleAllow,
	},
	ActionCloseReport: {
		RoleBrigadista:  ruleDeny,
		RoleCoordinador: ruleDeny,
		RoleAutoridad:   ruleAllow,
		RoleAdmin:       ruleAllow,
	},
	ActionManageUsers: {
		RoleBrigadista:  ruleDeny,
		RoleCoordinador: ruleDeny,
		RoleAutoridad:   ruleDeny,
		RoleAdmin:       ruleAllow,
	},
	ActionViewAudit: {
		RoleBrigadista:  ruleDeny,
		RoleCoordinador: ruleAllow,
		RoleAutoridad:   ruleAllow,
		RoleAdmin:       ruleAllow,
	},
}

// Decide evaluates whether the actor may perform action against target.
// Pure and side-effect free. The target may be nil for actions that do
// not operate on an existing incident (create, user management).
//
// Check order fixes the deny reason: an inactive actor is denied before
// anything else; a workflow action whose edge does not exist from the
// target's current state (including everything out of cerrado) is denied
// as invalid_transition before the role is even looked at; role comes
// next; ownership last.
func Decide(actor Actor, action Action, target *Incident) Decision {
	if !actor.Active {
		return Deny(DenyInactiveActor)
	}

	if target != nil {
		if IsWorkflowAction(action) {
			if _, ok := TransitionTarget(action, target.Status); !ok {
				return Deny(DenyInvalidTransition)
			}
		}
		// Field edits are only permitted while the report is a draft;
		// later states are reviewer-controlled.
		if action == ActionEditIncident && target.Status != StatusDraft {
			return Deny(DenyInvalidTransition)
		}
	}

	rules, ok := policyTable[action]
	if !ok {
		return Deny(DenyInsufficientRole)
	}

	switch rules[actor.Role] {
	case ruleAllow:
		return Allow()
	case ruleAllowOwn:
		if target != nil && target.CreatedBy != actor.ID {
			return Deny(DenyNotOwner)
		}
		return Allow()
	default:
		return Deny(DenyInsufficientRole)
	}
}
