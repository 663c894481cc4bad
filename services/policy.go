package services

import (
	"github.com/aquasentra/api-go/models"
)

// Actor is the authenticated principal a policy decision is made for.
type Actor struct {
	UserID uint
	Role   string
}

type Action string

const (
	ActionView            Action = "view"
	ActionEdit            Action = "edit"
	ActionVerify          Action = "verify"
	ActionReject          Action = "reject"
	ActionMarkUnderReview Action = "mark-under-review"
	ActionResolve         Action = "resolve"
	ActionDelete          Action = "delete"
)

type AdminAction string

const (
	AdminChangeRole   AdminAction = "change-role"
	AdminChangeStatus AdminAction = "change-status"
	AdminDeleteUser   AdminAction = "delete-user"
)

func (a Actor) hasVerifierRights() bool {
	return a.Role == models.RoleVerifier || a.Role == models.RoleAnalyst || a.Role == models.RoleAdmin
}

// CanPerform is the single access decision for every report action. Pure:
// no side effects, no database access.
func CanPerform(actor Actor, report *models.HazardReport, action Action) bool {
	owns := report.UserID == actor.UserID

	switch action {
	case ActionView:
		return owns || actor.Role != models.RoleCitizen || report.Visibility == models.VisibilityPublic
	case ActionEdit:
		if owns && (report.Status == models.StatusPending || report.Status == models.StatusUnderReview) {
			return true
		}
		return actor.hasVerifierRights()
	case ActionVerify, ActionReject:
		return actor.hasVerifierRights() && report.Status == models.StatusPending
	case ActionMarkUnderReview:
		return owns
	case ActionResolve:
		return owns || actor.hasVerifierRights()
	case ActionDelete:
		return owns || actor.Role == models.RoleAdmin
	}
	return false
}

// CanAdministerUser gates the admin user-management endpoints. newValue is
// the requested role or account status, when relevant to the action.
func CanAdministerUser(actor Actor, targetID uint, action AdminAction, newValue string) bool {
	if actor.Role != models.RoleAdmin {
		return false
	}
	self := actor.UserID == targetID

	switch action {
	case AdminChangeRole:
		// An admin may not demote themselves.
		return !(self && newValue != models.RoleAdmin)
	case AdminChangeStatus:
		return !(self && newValue == models.AccountSuspended)
	case AdminDeleteUser:
		return !self
	}
	return false
}
