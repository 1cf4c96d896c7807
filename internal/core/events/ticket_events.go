package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeTicketsChanged = "tickets.changed"

// TicketsChangedEvent reports a write that makes cached ticket lists stale.
type TicketsChangedEvent struct {
	BaseEvent
	TicketID int64  `json:"ticket_id"`
	Action   string `json:"action"`
}

func NewTicketsChangedEvent(ticketID int64, action string) *TicketsChangedEvent {
	return &TicketsChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTicketsChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"ticket_id": ticketID,
				"action":    action,
			},
		},
		TicketID: ticketID,
		Action:   action,
	}
}
