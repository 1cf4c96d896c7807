package ticket

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/office-ticketing/internal/category"
	ticketDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/ticket"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

type Status int

const (
	StatusOpen Status = iota + 1
	StatusInProgress
	StatusOnHold
	StatusResolved
	StatusClosed
	StatusReopened
	StatusNew
)

var Statuses = []Status{
	StatusOpen, StatusInProgress, StatusOnHold, StatusResolved,
	StatusClosed, StatusReopened, StatusNew,
}

var statusNames = map[Status]string{
	StatusOpen:       "Open",
	StatusInProgress: "InProgress",
	StatusOnHold:     "OnHold",
	StatusResolved:   "Resolved",
	StatusClosed:     "Closed",
	StatusReopened:   "Reopened",
	StatusNew:        "New",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal statuses carry a resolution timestamp.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// ParseStatus accepts names in any case, with or without separators
// ("in progress", "in-progress", "InProgress"), or the numeric value.
func ParseStatus(s string) (Status, error) {
	key := normalizeName(s)
	for st, name := range statusNames {
		if strings.ToLower(name) == key || fmt.Sprint(int(st)) == key {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

var priorityNames = map[Priority]string{
	PriorityLow:      "Low",
	PriorityMedium:   "Medium",
	PriorityHigh:     "High",
	PriorityCritical: "Critical",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

func (p Priority) Valid() bool {
	_, ok := priorityNames[p]
	return ok
}

func ParsePriority(s string) (Priority, error) {
	key := normalizeName(s)
	for p, name := range priorityNames {
		if strings.ToLower(name) == key || fmt.Sprint(int(p)) == key {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

func normalizeName(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

type Ticket struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           Status     `json:"status"`
	Priority         Priority   `json:"priority"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	CreatedByUserID  int64      `json:"created_by_user_id"`
	AssignedToUserID *int64     `json:"assigned_to_user_id,omitempty"`
	CategoryID       int64      `json:"category_id"`

	CreatedBy  *user.User         `json:"created_by,omitempty"`
	AssignedTo *user.User         `json:"assigned_to,omitempty"`
	Category   *category.Category `json:"category,omitempty"`
	Comments   []*Comment         `json:"comments,omitempty"`
}

func (t *Ticket) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && !t.Status.Terminal() && now.After(*t.DueDate)
}

func (t *Ticket) IsAssigned() bool {
	return t.AssignedToUserID != nil
}

type Comment struct {
	ID         int64      `json:"id"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	IsInternal bool       `json:"is_internal"`
	TicketID   int64      `json:"ticket_id"`
	UserID     int64      `json:"user_id"`
	User       *user.User `json:"user,omitempty"`
}

func ToDataModel(t *Ticket) *ticketDatamodel.Ticket {
	return &ticketDatamodel.Ticket{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Status:           int(t.Status),
		Priority:         int(t.Priority),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		ResolvedAt:       t.ResolvedAt,
		DueDate:          t.DueDate,
		CreatedByUserID:  t.CreatedByUserID,
		AssignedToUserID: t.AssignedToUserID,
		CategoryID:       t.CategoryID,
	}
}

func FromDataModel(t *ticketDatamodel.Ticket) *Ticket {
	if t == nil {
		return nil
	}
	out := &Ticket{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Status:           Status(t.Status),
		Priority:         Priority(t.Priority),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		ResolvedAt:       t.ResolvedAt,
		DueDate:          t.DueDate,
		CreatedByUserID:  t.CreatedByUserID,
		AssignedToUserID: t.AssignedToUserID,
		CategoryID:       t.CategoryID,
		CreatedBy:        user.FromDataModel(t.CreatedByUser),
		AssignedTo:       user.FromDataModel(t.AssignedToUser),
		Category:         category.FromDataModel(t.Category),
	}
	for i := range t.Comments {
		out.Comments = append(out.Comments, CommentFromDataModel(&t.Comments[i]))
	}
	return out
}

func CommentFromDataModel(c *ticketDatamodel.Comment) *Comment {
	if c == nil {
		return nil
	}
	return &Comment{
		ID:         c.ID,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
		IsInternal: c.IsInternal,
		TicketID:   c.TicketID,
		UserID:     c.UserID,
		User:       user.FromDataModel(c.User),
	}
}

func fromDataModels(rows []*ticketDatamodel.Ticket) []*Ticket {
	tickets := make([]*Ticket, 0, len(rows))
	for _, r := range rows {
		tickets = append(tickets, FromDataModel(r))
	}
	return tickets
}
