package ticket

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/core/common/validation"
)

type CreateTicketDTO struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Priority         Priority   `json:"priority"`
	CategoryID       int64      `json:"category_id"`
	AssignedToUserID *int64     `json:"assigned_to_user_id,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
}

func (d *CreateTicketDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Priority == 0 {
		d.Priority = PriorityMedium
	}
	if d.AssignedToUserID != nil && *d.AssignedToUserID == 0 {
		d.AssignedToUserID = nil
	}
}

func (d CreateTicketDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("description", d.Description).Required()
	v.Field("category_id", d.CategoryID).Required()
	v.Field("priority", d.Priority).OneOf(errors.ErrCodeInvalidPriority, priorityNameList()...)
	return v.Validate()
}

// UpdateTicketDTO holds every field an update overwrites. Creator and
// creation time are not part of it.
type UpdateTicketDTO struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	CategoryID       int64      `json:"category_id"`
	Status           Status     `json:"status"`
	Priority         Priority   `json:"priority"`
	AssignedToUserID *int64     `json:"assigned_to_user_id,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
}

func (d *UpdateTicketDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.AssignedToUserID != nil && *d.AssignedToUserID == 0 {
		d.AssignedToUserID = nil
	}
}

func (d UpdateTicketDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("description", d.Description).Required()
	v.Field("category_id", d.CategoryID).Required()
	v.Field("status", d.Status).OneOf(errors.ErrCodeInvalidStatus, statusNameList()...)
	v.Field("priority", d.Priority).OneOf(errors.ErrCodeInvalidPriority, priorityNameList()...)
	return v.Validate()
}

// UpdateFrom seeds a DTO with the current values of t so callers can change
// only what they need.
func UpdateFrom(t *Ticket) UpdateTicketDTO {
	return UpdateTicketDTO{
		Title:            t.Title,
		Description:      t.Description,
		CategoryID:       t.CategoryID,
		Status:           t.Status,
		Priority:         t.Priority,
		AssignedToUserID: t.AssignedToUserID,
		DueDate:          t.DueDate,
	}
}

func statusNameList() []string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = s.String()
	}
	return names
}

func priorityNameList() []string {
	names := make([]string, len(Priorities))
	for i, p := range Priorities {
		names[i] = p.String()
	}
	return names
}
