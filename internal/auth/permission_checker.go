package auth

import (
	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

type Action string

const (
	ActionManageUsers      Action = "manage_users"
	ActionManageCategories Action = "manage_categories"
	ActionAssignTicket     Action = "assign_ticket"
	ActionChangeStatus     Action = "change_status"
	ActionDeleteTicket     Action = "delete_ticket"
	ActionViewAllTickets   Action = "view_all_tickets"
	ActionInternalComment  Action = "internal_comment"
)

type PermissionChecker interface {
	Can(u *user.User, action Action) bool
	CanViewTicket(u *user.User, t *ticket.Ticket) bool
	CanEditTicket(u *user.User, t *ticket.Ticket) bool
	Require(u *user.User, action Action) error
}

type DefaultPermissionChecker struct {
	grants map[user.Role][]Action
}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{
		grants: map[user.Role][]Action{
			user.RoleAdmin: {
				ActionManageUsers, ActionManageCategories, ActionAssignTicket, ActionChangeStatus,
				ActionDeleteTicket, ActionViewAllTickets, ActionInternalComment,
			},
			user.RoleAgent: {
				ActionAssignTicket, ActionChangeStatus, ActionViewAllTickets, ActionInternalComment,
			},
		},
	}
}

func (c *DefaultPermissionChecker) Can(u *user.User, action Action) bool {
	if u == nil || !u.IsActive {
		return false
	}
	for _, granted := range c.grants[u.Role] {
		if granted == action {
			return true
		}
	}
	return false
}

// CanViewTicket lets staff see every ticket and users see what they created.
func (c *DefaultPermissionChecker) CanViewTicket(u *user.User, t *ticket.Ticket) bool {
	if c.Can(u, ActionViewAllTickets) {
		return true
	}
	return u != nil && u.IsActive && t.CreatedByUserID == u.ID
}

// CanEditTicket allows the creator, the assignee and admins.
func (c *DefaultPermissionChecker) CanEditTicket(u *user.User, t *ticket.Ticket) bool {
	if u == nil || !u.IsActive {
		return false
	}
	if u.IsAdmin() || t.CreatedByUserID == u.ID {
		return true
	}
	return t.AssignedToUserID != nil && *t.AssignedToUserID == u.ID
}

// Require returns ErrSessionInvalid without a user and ErrForbidden when the
// role lacks action.
func (c *DefaultPermissionChecker) Require(u *user.User, action Action) error {
	if u == nil {
		return errors.ErrSessionInvalid
	}
	if !c.Can(u, action) {
		return errors.ErrForbidden.WithDetails(map[string]string{"action": string(action)})
	}
	return nil
}
