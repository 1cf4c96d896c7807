package viewmodel

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/auth"
	"github.com/frahmantamala/office-ticketing/internal/core/events"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

const StatusReady = "Ready"

// MainViewModel backs the ticket list screen of a logged-in user.
type MainViewModel struct {
	Observable

	CurrentUser    *user.User
	StatusMessage  string
	IsLoading      bool
	Tickets        []*ticket.Ticket
	SelectedTicket *ticket.Ticket

	session     Session
	loader      TicketLoader
	tickets     TicketService
	permissions auth.PermissionChecker
	bus         events.Publisher
	logger      *slog.Logger
}

func NewMainViewModel(
	session Session,
	loader TicketLoader,
	tickets TicketService,
	permissions auth.PermissionChecker,
	bus events.Publisher,
	logger *slog.Logger,
) *MainViewModel {
	return &MainViewModel{
		StatusMessage: StatusReady,
		session:       session,
		loader:        loader,
		tickets:       tickets,
		permissions:   permissions,
		bus:           bus,
		logger:        logger,
	}
}

func (vm *MainViewModel) IsAdmin() bool       { return vm.CurrentUser.IsAdmin() }
func (vm *MainViewModel) IsAgent() bool       { return vm.CurrentUser.IsAgent() }
func (vm *MainViewModel) IsRegularUser() bool { return vm.CurrentUser.IsRegularUser() }

// Initialize picks up the authenticated user and loads the first ticket list,
// bypassing the cache when force is set. Without a user the session is torn
// down and ErrSessionInvalid returned.
func (vm *MainViewModel) Initialize(ctx context.Context, force bool) error {
	u := vm.session.CurrentUser()
	if u == nil {
		return vm.fail(ctx, "Authentication error", errors.ErrSessionInvalid)
	}

	vm.CurrentUser = u
	vm.notify(PropCurrentUser)
	vm.loader.SetUser(ctx, u)
	vm.setStatus("Welcome, " + u.Username)

	return vm.LoadTickets(ctx, force)
}

// LoadTickets refreshes the list through the cache and selects the first
// ticket.
func (vm *MainViewModel) LoadTickets(ctx context.Context, force bool) error {
	vm.setLoading(true)
	defer vm.setLoading(false)
	vm.setStatus("Loading tickets...")

	list, err := vm.loader.Load(ctx, vm.CurrentUser, force)
	if err != nil {
		return vm.fail(ctx, "Error loading tickets", err)
	}

	vm.Tickets = list
	vm.SelectedTicket = nil
	if len(list) > 0 {
		vm.SelectedTicket = list[0]
	}
	vm.notify(PropTickets, PropSelectedTicket)
	vm.setStatus(fmt.Sprintf("Loaded %d tickets", len(list)))
	return nil
}

// Select makes the ticket with id the current selection.
func (vm *MainViewModel) Select(id int64) error {
	for _, t := range vm.Tickets {
		if t.ID == id {
			vm.SelectedTicket = t
			vm.notify(PropSelectedTicket)
			return nil
		}
	}
	vm.setStatus(statusf("Error selecting ticket", errors.ErrTicketNotFound))
	return errors.ErrTicketNotFound
}

func (vm *MainViewModel) UpdateSelectedTicketStatus(ctx context.Context, status ticket.Status) error {
	t, err := vm.selected()
	if err != nil {
		return err
	}
	if !vm.permissions.CanEditTicket(vm.CurrentUser, t) && !vm.permissions.Can(vm.CurrentUser, auth.ActionChangeStatus) {
		return vm.fail(ctx, "Error updating ticket status", errors.ErrForbidden)
	}

	if _, err := vm.tickets.UpdateTicketStatus(ctx, t.ID, status); err != nil {
		return vm.fail(ctx, "Error updating ticket status", err)
	}
	return vm.reload(ctx, t.ID, "Ticket status updated to "+status.String())
}

func (vm *MainViewModel) AssignSelectedTicket(ctx context.Context, userID int64) error {
	t, err := vm.selected()
	if err != nil {
		return err
	}
	if err := vm.permissions.Require(vm.CurrentUser, auth.ActionAssignTicket); err != nil {
		return vm.fail(ctx, "Error assigning ticket", err)
	}

	assigned, err := vm.tickets.AssignTicket(ctx, t.ID, userID)
	if err != nil {
		return vm.fail(ctx, "Error assigning ticket", err)
	}
	name := fmt.Sprintf("user %d", userID)
	if assigned.AssignedTo != nil {
		name = assigned.AssignedTo.FullName()
	}
	return vm.reload(ctx, t.ID, "Ticket assigned to "+name)
}

func (vm *MainViewModel) CreateTicket(ctx context.Context, dto ticket.CreateTicketDTO) (*ticket.Ticket, error) {
	if vm.CurrentUser == nil {
		return nil, vm.fail(ctx, "Error creating ticket", errors.ErrSessionInvalid)
	}

	created, err := vm.tickets.CreateTicket(ctx, dto, vm.CurrentUser.ID)
	if err != nil {
		return nil, vm.fail(ctx, "Error creating ticket", err)
	}
	if err := vm.reload(ctx, created.ID, "Ticket created successfully"); err != nil {
		return nil, err
	}
	return created, nil
}

func (vm *MainViewModel) DeleteSelectedTicket(ctx context.Context) error {
	t, err := vm.selected()
	if err != nil {
		return err
	}
	if err := vm.permissions.Require(vm.CurrentUser, auth.ActionDeleteTicket); err != nil {
		return vm.fail(ctx, "Error deleting ticket", err)
	}

	if err := vm.tickets.DeleteTicket(ctx, t.ID); err != nil {
		return vm.fail(ctx, "Error deleting ticket", err)
	}
	return vm.reload(ctx, 0, "Ticket deleted successfully")
}

// Logout clears the session and the ticket cache, then tells the session
// host so that it drops the persisted token.
func (vm *MainViewModel) Logout(ctx context.Context) error {
	var userID int64
	if vm.CurrentUser != nil {
		userID = vm.CurrentUser.ID
	}

	vm.session.Logout()
	vm.loader.SetUser(ctx, nil)
	vm.CurrentUser = nil
	vm.Tickets = nil
	vm.SelectedTicket = nil
	vm.notify(PropCurrentUser, PropTickets, PropSelectedTicket)

	if err := vm.bus.PublishSync(ctx, events.NewLogoutEvent(userID)); err != nil {
		vm.setStatus(statusf("Error during logout", err))
		return err
	}
	vm.setStatus("Logged out")
	return nil
}

func (vm *MainViewModel) selected() (*ticket.Ticket, error) {
	if vm.SelectedTicket == nil {
		vm.setStatus("Please select a ticket first.")
		return nil, errors.ErrNoSelection
	}
	return vm.SelectedTicket, nil
}

// reload forces a fresh list after a write and keeps keepID selected when it
// is still visible.
func (vm *MainViewModel) reload(ctx context.Context, keepID int64, message string) error {
	if err := vm.LoadTickets(ctx, true); err != nil {
		return err
	}
	if keepID != 0 {
		for _, t := range vm.Tickets {
			if t.ID == keepID {
				vm.SelectedTicket = t
				vm.notify(PropSelectedTicket)
				break
			}
		}
	}
	vm.setStatus(message)
	return nil
}

func (vm *MainViewModel) fail(ctx context.Context, prefix string, err error) error {
	vm.logger.Warn(prefix, "error", err)
	if stdErrors.Is(err, errors.ErrSessionInvalid) {
		_ = vm.Logout(ctx)
	}
	vm.setStatus(statusf(prefix, err))
	return err
}

func (vm *MainViewModel) setStatus(message string) {
	vm.StatusMessage = message
	vm.notify(PropStatusMessage)
}

func (vm *MainViewModel) setLoading(loading bool) {
	vm.IsLoading = loading
	vm.notify(PropIsLoading)
}
