package rooms

import "workforce-lodging/internal/identity"

// Action names a lifecycle transition. The string is also the audit action.
type Action string

const (
	ActionSubmit   Action = "SUBMIT"
	ActionAccept   Action = "ACCEPT"
	ActionReject   Action = "REJECT"
	ActionCancel   Action = "CANCEL"
	ActionAssign   Action = "ASSIGN"
	ActionCheckIn  Action = "CHECK_IN"
	ActionCheckOut Action = "CHECK_OUT"
)

type transition struct {
	from, to Status
	// owner transitions belong to the employer that owns the request;
	// the rest belong to hotel staff.
	owner bool
}

var transitions = map[Action]transition{
	ActionSubmit:   {from: StatusDraft, to: StatusSubmitted, owner: true},
	ActionAccept:   {from: StatusSubmitted, to: StatusAccepted},
	ActionReject:   {from: StatusSubmitted, to: StatusRejected},
	ActionCancel:   {from: StatusSubmitted, to: StatusCanceled, owner: true},
	ActionAssign:   {from: StatusAccepted, to: StatusAssigned},
	ActionCheckIn:  {from: StatusAssigned, to: StatusCheckedIn},
	ActionCheckOut: {from: StatusCheckedIn, to: StatusCheckedOut},
}

func (t transition) allows(role identity.Role) bool {
	switch role {
	case identity.RoleEmployer:
		return t.owner
	case identity.RoleFrontdesk, identity.RoleAdmin:
		return !t.owner
	default:
		return false
	}
}

// Decision is the front-desk verdict on a submitted request or extension.
type Decision string

const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReject Decision = "REJECT"
)

func (d Decision) action() (Action, bool) {
	switch d {
	case DecisionAccept:
		return ActionAccept, true
	case DecisionReject:
		return ActionReject, true
	default:
		return "", false
	}
}
