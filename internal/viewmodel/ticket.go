package viewmodel

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/core/events"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
)

// TicketForm is the input of the create-ticket screen.
type TicketForm struct {
	Title       string
	Description string
	Priority    ticket.Priority
	CategoryID  int64
	AssigneeID  *int64
	DueDate     *time.Time
}

// TicketFilters narrow the paged ticket list on top of the viewer scope.
type TicketFilters struct {
	SearchText     string
	SearchComments bool
	Status         *ticket.Status
	CategoryID     *int64
	From           *time.Time
	To             *time.Time
}

// TicketViewModel backs the searchable, paged ticket list and the ticket
// form.
type TicketViewModel struct {
	Observable

	Form          TicketForm
	Filters       TicketFilters
	PageNumber    int
	PageSize      int
	Page          *ticket.PagedResult
	StatusMessage string
	IsLoading     bool

	session Session
	tickets TicketService
	bus     events.Publisher
	logger  *slog.Logger
}

func NewTicketViewModel(session Session, tickets TicketService, bus events.Publisher, logger *slog.Logger) *TicketViewModel {
	return &TicketViewModel{
		Form:          TicketForm{Priority: ticket.PriorityMedium},
		PageNumber:    1,
		PageSize:      ticket.DefaultPageSize,
		StatusMessage: StatusReady,
		session:       session,
		tickets:       tickets,
		bus:           bus,
		logger:        logger,
	}
}

// Filter combines the viewer scope of the current user with the filters.
func (vm *TicketViewModel) Filter() (ticket.Filter, error) {
	u := vm.session.CurrentUser()
	if u == nil {
		return ticket.Filter{}, errors.ErrSessionInvalid
	}

	f := ticket.ForViewer(u)
	f.Search = vm.Filters.SearchText
	f.IncludeComments = vm.Filters.SearchComments
	f.Status = vm.Filters.Status
	f.CategoryID = vm.Filters.CategoryID
	f.From = vm.Filters.From
	f.To = vm.Filters.To
	return f, nil
}

// Search starts over at the first page.
func (vm *TicketViewModel) Search(ctx context.Context) error {
	vm.PageNumber = 1
	return vm.Refresh(ctx)
}

// Refresh reloads the current page.
func (vm *TicketViewModel) Refresh(ctx context.Context) error {
	f, err := vm.Filter()
	if err != nil {
		return vm.fail(ctx, "Error loading tickets", err)
	}

	vm.setLoading(true)
	defer vm.setLoading(false)

	page, err := vm.tickets.GetTicketsPaged(ctx, f, vm.PageNumber, vm.PageSize)
	if err != nil {
		return vm.fail(ctx, "Error loading tickets", err)
	}

	vm.Page = page
	vm.PageNumber = page.PageNumber
	vm.PageSize = page.PageSize
	vm.notify(PropPage)
	vm.setStatus(vm.describePage())
	return nil
}

func (vm *TicketViewModel) describePage() string {
	n := len(vm.Page.Items)
	switch {
	case strings.TrimSpace(vm.Filters.SearchText) != "":
		return fmt.Sprintf("Found %d tickets matching '%s'", vm.Page.TotalCount, strings.TrimSpace(vm.Filters.SearchText))
	case vm.Filters.Status != nil:
		return fmt.Sprintf("Showing %d %s tickets", n, vm.Filters.Status.String())
	default:
		return fmt.Sprintf("Page %d of %d (%d tickets)", vm.Page.PageNumber, vm.Page.TotalPages(), vm.Page.TotalCount)
	}
}

// NextPage moves forward when a next page exists and reports whether it did.
func (vm *TicketViewModel) NextPage(ctx context.Context) (bool, error) {
	if vm.Page == nil || !vm.Page.HasNext() {
		return false, nil
	}
	vm.PageNumber++
	return true, vm.Refresh(ctx)
}

func (vm *TicketViewModel) PreviousPage(ctx context.Context) (bool, error) {
	if vm.Page == nil || !vm.Page.HasPrevious() {
		return false, nil
	}
	vm.PageNumber--
	return true, vm.Refresh(ctx)
}

func (vm *TicketViewModel) CanCreate() bool {
	return strings.TrimSpace(vm.Form.Title) != "" &&
		strings.TrimSpace(vm.Form.Description) != "" &&
		vm.Form.CategoryID != 0
}

// CreateTicket submits the form and clears it on success.
func (vm *TicketViewModel) CreateTicket(ctx context.Context) (*ticket.Ticket, error) {
	u := vm.session.CurrentUser()
	if u == nil {
		return nil, vm.fail(ctx, "Error creating ticket", errors.ErrSessionInvalid)
	}
	if !vm.CanCreate() {
		return nil, vm.fail(ctx, "Error creating ticket",
			errors.NewValidationError("Please fill in all required fields", errors.ErrCodeValidationFailed))
	}

	created, err := vm.tickets.CreateTicket(ctx, ticket.CreateTicketDTO{
		Title:            vm.Form.Title,
		Description:      vm.Form.Description,
		Priority:         vm.Form.Priority,
		CategoryID:       vm.Form.CategoryID,
		AssignedToUserID: vm.Form.AssigneeID,
		DueDate:          vm.Form.DueDate,
	}, u.ID)
	if err != nil {
		return nil, vm.fail(ctx, "Error creating ticket", err)
	}

	vm.ClearForm()
	vm.setStatus("Ticket created successfully")
	return created, nil
}

func (vm *TicketViewModel) AddComment(ctx context.Context, ticketID int64, content string, internal bool) (*ticket.Comment, error) {
	u := vm.session.CurrentUser()
	if u == nil {
		return nil, vm.fail(ctx, "Error adding comment", errors.ErrSessionInvalid)
	}

	c, err := vm.tickets.AddComment(ctx, ticketID, u.ID, content, internal)
	if err != nil {
		return nil, vm.fail(ctx, "Error adding comment", err)
	}
	vm.setStatus("Comment added")
	return c, nil
}

func (vm *TicketViewModel) ClearForm() {
	vm.Form = TicketForm{Priority: ticket.PriorityMedium}
	vm.notify(PropForm)
}

func (vm *TicketViewModel) ClearFilters() {
	vm.Filters = TicketFilters{}
	vm.PageNumber = 1
}

// fail reports err in the status line. An invalid session ends the session
// the same way MainViewModel does, so the shell returns to login.
func (vm *TicketViewModel) fail(ctx context.Context, prefix string, err error) error {
	vm.logger.Warn(prefix, "error", err)
	if stdErrors.Is(err, errors.ErrSessionInvalid) {
		vm.logout(ctx)
	}
	vm.setStatus(statusf(prefix, err))
	return err
}

func (vm *TicketViewModel) logout(ctx context.Context) {
	var userID int64
	if u := vm.session.CurrentUser(); u != nil {
		userID = u.ID
	}
	vm.session.Logout()
	vm.Page = nil
	vm.notify(PropPage)
	if err := vm.bus.PublishSync(ctx, events.NewLogoutEvent(userID)); err != nil {
		vm.logger.Warn("Error during logout", "error", err)
	}
}

func (vm *TicketViewModel) setStatus(message string) {
	vm.StatusMessage = message
	vm.notify(PropStatusMessage)
}

func (vm *TicketViewModel) setLoading(loading bool) {
	vm.IsLoading = loading
	vm.notify(PropIsLoading)
}
