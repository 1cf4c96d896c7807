package ticket

import (
	"strings"
	"time"

	"github.com/frahmantamala/office-ticketing/internal/user"
)

// Filter describes which tickets a query returns. Nil fields and an empty
// search term place no constraint. With IncludeAll set, CreatedBy and
// AssignedTo are ignored.
type Filter struct {
	CreatedBy       *int64
	AssignedTo      *int64
	IncludeAll      bool
	Search          string
	IncludeComments bool
	// InternalComments lets a comment search match staff-only comments.
	InternalComments bool
	Status           *Status
	From             *time.Time
	To               *time.Time
	CategoryID       *int64
}

// SearchTerm is the trimmed, lower-cased search text, or "" when absent.
func (f Filter) SearchTerm() string {
	return strings.ToLower(strings.TrimSpace(f.Search))
}

var viewerFilters = map[user.Role]func(id int64) Filter{
	user.RoleAdmin: func(int64) Filter {
		return Filter{IncludeAll: true, InternalComments: true}
	},
	user.RoleAgent: func(id int64) Filter {
		return Filter{AssignedTo: &id, IncludeAll: true, InternalComments: true}
	},
	user.RoleUser: func(id int64) Filter {
		return Filter{CreatedBy: &id}
	},
}

// ForViewer returns the base filter for what u may see. Unknown roles get the
// regular user scope.
func ForViewer(u *user.User) Filter {
	build, ok := viewerFilters[u.Role]
	if !ok {
		build = viewerFilters[user.RoleUser]
	}
	return build(u.ID)
}
