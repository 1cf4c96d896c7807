// Package report aggregates ticket counts for the statistics screen.
package report

import (
	"github.com/frahmantamala/office-ticketing/internal/ticket"
)

type CategoryCount struct {
	Name  string `db:"name" json:"name"`
	Total int64  `db:"total" json:"total"`
}

type TicketStats struct {
	Total      int64                     `json:"total"`
	Overdue    int64                     `json:"overdue"`
	ByStatus   map[ticket.Status]int64   `json:"by_status"`
	ByPriority map[ticket.Priority]int64 `json:"by_priority"`
	ByCategory []CategoryCount           `json:"by_category"`
}

// Unresolved counts tickets in a non-terminal status.
func (s *TicketStats) Unresolved() int64 {
	var n int64
	for st, c := range s.ByStatus {
		if !st.Terminal() {
			n += c
		}
	}
	return n
}
