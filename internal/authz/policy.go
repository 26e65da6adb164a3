// Package authz holds the single authorization policy applied before every
// state-machine transition and read.
package authz

import "ispcrm/internal/models"

// Action names one operation on an owned resource.
type Action string

const (
	ActionView     Action = "view"
	ActionSubmit   Action = "submit"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionActivate Action = "activate"
	ActionConvert  Action = "convert"
	ActionEdit     Action = "edit"
)

// Actor is the authenticated caller as carried in the JWT.
type Actor struct {
	UserID int
	Role   string
}

// Resource is anything with an owning salesperson.
type Resource struct {
	OwnerID int
}

// Decision is a tagged allow/deny result; Reason is set when denied.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision               { return Decision{Allowed: true} }
func deny(reason string) Decision   { return Decision{Reason: reason} }
func (a Actor) IsManager() bool     { return a.Role == models.RoleManager }
func (a Actor) owns(r Resource) bool { return r.OwnerID == a.UserID }

// CanAct decides whether the actor may perform the action on the resource.
// Managers may do everything; approve/reject/convert are manager-only; the
// remaining actions require ownership.
func CanAct(actor Actor, resource Resource, action Action) Decision {
	if actor.IsManager() {
		return allow()
	}
	switch action {
	case ActionApprove, ActionReject, ActionConvert:
		return deny("manager role required")
	case ActionView, ActionSubmit, ActionActivate, ActionEdit:
		if actor.owns(resource) {
			return allow()
		}
		return deny("not the owner")
	default:
		return deny("unknown action")
	}
}
