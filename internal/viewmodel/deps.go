package viewmodel

import (
	"context"

	"github.com/frahmantamala/office-ticketing/internal/auth"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

type Session interface {
	CurrentUser() *user.User
	Logout()
}

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*user.User, error)
	Register(ctx context.Context, dto auth.RegisterDTO) (*user.User, error)
}

type TicketLoader interface {
	Load(ctx context.Context, viewer *user.User, force bool) ([]*ticket.Ticket, error)
	SetUser(ctx context.Context, u *user.User)
}

type TicketService interface {
	GetTicketsPaged(ctx context.Context, f ticket.Filter, page, size int) (*ticket.PagedResult, error)
	CreateTicket(ctx context.Context, dto ticket.CreateTicketDTO, creatorID int64) (*ticket.Ticket, error)
	UpdateTicketStatus(ctx context.Context, ticketID int64, status ticket.Status) (*ticket.Ticket, error)
	AssignTicket(ctx context.Context, ticketID, userID int64) (*ticket.Ticket, error)
	DeleteTicket(ctx context.Context, id int64) error
	AddComment(ctx context.Context, ticketID, userID int64, content string, internal bool) (*ticket.Comment, error)
}

type UserService interface {
	GetAllUsers(ctx context.Context) ([]*user.User, error)
	CreateUser(ctx context.Context, dto user.CreateUserDTO) (*user.User, error)
	UpdateUser(ctx context.Context, id int64, dto user.UpdateUserDTO) (*user.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
