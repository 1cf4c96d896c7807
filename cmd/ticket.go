package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/auth"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/frahmantamala/office-ticketing/internal/viewmodel"
	"github.com/spf13/cobra"
)

var listOpts struct {
	page     int
	size     int
	search   string
	status   string
	category string
	from     string
	to       string
	comments bool
	refresh  bool
}

var ticketOpts struct {
	title       string
	description string
	priority    string
	category    string
	assignee    int64
	due         string
	internal    bool
}

var ticketsCmd = &cobra.Command{
	Use:     "tickets",
	Aliases: []string{"ticket", "t"},
	Short:   "Raise, browse and work on tickets",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tickets you can see",
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *App) error {
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		if _, err := a.RequireUser(ctx); err != nil {
			return err
		}

		// Plain listing goes through the cached loader, anything narrower
		// through the paged query.
		if !filtered(cmd) {
			vm := a.mainViewModel()
			if err := vm.Initialize(ctx, listOpts.refresh); err != nil {
				return err
			}
			a.println(a.Renderer.TicketList(vm.Tickets, 0))
			a.println(a.Renderer.Status(vm.StatusMessage))
			return nil
		}

		vm := viewmodel.NewTicketViewModel(a.Auth, a.Tickets, a.Bus, a.Logger)
		if err := applyListFilters(ctx, a, vm); err != nil {
			return err
		}
		vm.PageNumber, vm.PageSize = ticket.ClampPage(listOpts.page, listOpts.size)
		if err := vm.Refresh(ctx); err != nil {
			return err
		}

		a.println(a.Renderer.TicketList(vm.Page.Items, 0))
		a.println(a.Renderer.PageFooter(vm.Page))
		a.println(a.Renderer.Status(vm.StatusMessage))
		return nil
	}),
}

func filtered(cmd *cobra.Command) bool {
	for _, name := range []string{"page", "size", "search", "status", "category", "from", "to"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func applyListFilters(ctx context.Context, a *App, vm *viewmodel.TicketViewModel) error {
	vm.Filters.SearchText = listOpts.search
	vm.Filters.SearchComments = listOpts.comments

	if listOpts.status != "" {
		s, err := ticket.ParseStatus(listOpts.status)
		if err != nil {
			return internal.NewValidationFieldError("status", err.Error(), internal.ErrCodeInvalidStatus)
		}
		vm.Filters.Status = &s
	}
	if listOpts.category != "" {
		id, err := resolveCategory(ctx, a, listOpts.category)
		if err != nil {
			return err
		}
		vm.Filters.CategoryID = &id
	}

	var err error
	if vm.Filters.From, err = parseDate(listOpts.from); err != nil {
		return internal.NewValidationFieldError("from", err.Error(), internal.ErrCodeValidationFailed)
	}
	if vm.Filters.To, err = parseDate(listOpts.to); err != nil {
		return internal.NewValidationFieldError("to", err.Error(), internal.ErrCodeValidationFailed)
	}
	return nil
}

var ticketsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a ticket with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		id, err := parseID("ticket id", args[0])
		if err != nil {
			return err
		}
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		u, err := a.RequireUser(ctx)
		if err != nil {
			return err
		}
		t, err := a.Tickets.GetTicketByID(ctx, id)
		if err != nil {
			return err
		}
		if !a.Permissions.CanViewTicket(u, t) {
			return internal.ErrTicketNotFound
		}

		a.println(a.Renderer.TicketDetail(t, a.Permissions.Can(u, auth.ActionInternalComment)))
		return nil
	}),
}

var ticketsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Raise a new ticket",
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *App) error {
		p := newPrompter(cmd)
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		if _, err := a.RequireUser(ctx); err != nil {
			return err
		}

		vm := viewmodel.NewTicketViewModel(a.Auth, a.Tickets, a.Bus, a.Logger)
		var err error
		if vm.Form.Title, err = p.valueOr(ticketOpts.title, "Title: "); err != nil {
			return err
		}
		if vm.Form.Description, err = p.valueOr(ticketOpts.description, "Description: "); err != nil {
			return err
		}
		name, err := p.valueOr(ticketOpts.category, "Category: ")
		if err != nil {
			return err
		}
		if vm.Form.CategoryID, err = resolveCategory(ctx, a, name); err != nil {
			return err
		}
		if ticketOpts.priority != "" {
			if vm.Form.Priority, err = parsePriority(ticketOpts.priority); err != nil {
				return err
			}
		}
		if ticketOpts.assignee != 0 {
			vm.Form.AssigneeID = &ticketOpts.assignee
		}
		if vm.Form.DueDate, err = parseDate(ticketOpts.due); err != nil {
			return internal.NewValidationFieldError("due_date", err.Error(), internal.ErrCodeValidationFailed)
		}

		created, err := vm.CreateTicket(ctx)
		if err != nil {
			return err
		}
		a.ticketsChanged(ctx, created.ID, "created")

		a.printf("#%d %s\n", created.ID, created.Title)
		a.println(a.Renderer.Status(vm.StatusMessage))
		return nil
	}),
}

var ticketsUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Edit the title, description, priority, category or due date of a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		id, err := parseID("ticket id", args[0])
		if err != nil {
			return err
		}
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		u, err := a.RequireUser(ctx)
		if err != nil {
			return err
		}
		t, err := a.Tickets.GetTicketByID(ctx, id)
		if err != nil {
			return err
		}
		if !a.Permissions.CanViewTicket(u, t) {
			return internal.ErrTicketNotFound
		}
		if !a.Permissions.CanEditTicket(u, t) {
			return internal.ErrForbidden
		}

		dto := ticket.UpdateFrom(t)
		flags := cmd.Flags()
		if flags.Changed("title") {
			dto.Title = ticketOpts.title
		}
		if flags.Changed("description") {
			dto.Description = ticketOpts.description
		}
		if flags.Changed("priority") {
			if dto.Priority, err = parsePriority(ticketOpts.priority); err != nil {
				return err
			}
		}
		if flags.Changed("category") {
			if dto.CategoryID, err = resolveCategory(ctx, a, ticketOpts.category); err != nil {
				return err
			}
		}
		if flags.Changed("due") {
			if dto.DueDate, err = parseDate(ticketOpts.due); err != nil {
				return internal.NewValidationFieldError("due_date", err.Error(), internal.ErrCodeValidationFailed)
			}
		}

		updated, err := a.Tickets.UpdateTicket(ctx, id, dto)
		if err != nil {
			return err
		}
		a.ticketsChanged(ctx, updated.ID, "updated")

		a.println(a.Renderer.TicketDetail(updated, a.Permissions.Can(u, auth.ActionInternalComment)))
		a.println(a.Renderer.Status("Ticket updated successfully"))
		return nil
	}),
}

// selectTicket loads the main screen and selects id. A stale cache gets one
// forced reload before the ticket counts as missing.
func selectTicket(ctx context.Context, a *App, id int64) (*viewmodel.MainViewModel, error) {
	if _, err := a.RequireUser(ctx); err != nil {
		return nil, err
	}
	vm := a.mainViewModel()
	if err := vm.Initialize(ctx, false); err != nil {
		return nil, err
	}
	if err := vm.Select(id); err == nil {
		return vm, nil
	}
	if err := vm.LoadTickets(ctx, true); err != nil {
		return nil, err
	}
	if err := vm.Select(id); err != nil {
		return nil, err
	}
	return vm, nil
}

var ticketsStatusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Move a ticket to Open, InProgress, Resolved or Closed",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		id, err := parseID("ticket id", args[0])
		if err != nil {
			return err
		}
		status, err := ticket.ParseStatus(args[1])
		if err != nil {
			return internal.NewValidationFieldError("status", err.Error(), internal.ErrCodeInvalidStatus)
		}
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		vm, err := selectTicket(ctx, a, id)
		if err != nil {
			return err
		}
		if err := vm.UpdateSelectedTicketStatus(ctx, status); err != nil {
			return err
		}
		a.println(a.Renderer.Status(vm.StatusMessage))
		return nil
	}),
}

var ticketsAssignCmd = &cobra.Command{
	Use:   "assign ID USER_ID",
	Short: "Assign a ticket to a user",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		id, err := parseID("ticket id", args[0])
		if err != nil {
			return err
		}
		userID, err := parseID("user id", args[1])
		if err != nil {
			return err
		}
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		vm, err := selectTicket(ctx, a, id)
		if err != nil {
			return err
		}
		if err := vm.AssignSelectedTicket(ctx, userID); err != nil {
			return err
		}
		a.println(a.Renderer.Status(vm.StatusMessage))
		return nil
	}),
}

var ticketsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a ticket and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		id, err := parseID("ticket id", args[0])
		if err != nil {
			return err
		}
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		vm, err := selectTicket(ctx, a, id)
		if err != nil {
			return err
		}
		if err := vm.DeleteSelectedTicket(ctx); err != nil {
			return err
		}
		a.println(a.Renderer.Status(vm.StatusMessage))
		return nil
	}),
}

var ticketsCommentCmd = &cobra.Command{
	Use:   "comment ID TEXT",
	Short: "Add a comment to a ticket",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		id, err := parseID("ticket id", args[0])
		if err != nil {
			return err
		}
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		u, err := a.RequireUser(ctx)
		if err != nil {
			return err
		}
		t, err := a.Tickets.GetTicketByID(ctx, id)
		if err != nil {
			return err
		}
		if !a.Permissions.CanViewTicket(u, t) {
			return internal.ErrTicketNotFound
		}
		if ticketOpts.internal {
			if err := a.Permissions.Require(u, auth.ActionInternalComment); err != nil {
				return err
			}
		}

		vm := viewmodel.NewTicketViewModel(a.Auth, a.Tickets, a.Bus, a.Logger)
		if _, err := vm.AddComment(ctx, id, strings.Join(args[1:], " "), ticketOpts.internal); err != nil {
			return err
		}
		a.ticketsChanged(ctx, id, "commented")
		a.println(a.Renderer.Status(vm.StatusMessage))
		return nil
	}),
}

var ticketsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the tickets you can see",
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *App) error {
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		u, err := a.RequireUser(ctx)
		if err != nil {
			return err
		}

		var extra ticket.Filter
		if listOpts.category != "" {
			id, err := resolveCategory(ctx, a, listOpts.category)
			if err != nil {
				return err
			}
			extra.CategoryID = &id
		}
		if extra.From, err = parseDate(listOpts.from); err != nil {
			return internal.NewValidationFieldError("from", err.Error(), internal.ErrCodeValidationFailed)
		}
		if extra.To, err = parseDate(listOpts.to); err != nil {
			return internal.NewValidationFieldError("to", err.Error(), internal.ErrCodeValidationFailed)
		}

		stats, err := a.Reports.TicketStats(ctx, u, extra)
		if err != nil {
			return err
		}
		a.println(a.Renderer.Stats(stats))
		return nil
	}),
}

func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(strings.ReplaceAll(what, " ", "_"), what+" must be a positive number", internal.ErrCodeValidationFailed)
	}
	return id, nil
}

func parsePriority(s string) (ticket.Priority, error) {
	p, err := ticket.ParsePriority(s)
	if err != nil {
		return 0, internal.NewValidationFieldError("priority", err.Error(), internal.ErrCodeInvalidPriority)
	}
	return p, nil
}

// resolveCategory accepts a category id or name.
func resolveCategory(ctx context.Context, a *App, s string) (int64, error) {
	if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		if _, err := a.Categories.GetCategoryByID(ctx, id); err != nil {
			return 0, err
		}
		return id, nil
	}
	c, err := a.Categories.GetCategoryByName(ctx, s)
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

func init() {
	lf := ticketsListCmd.Flags()
	lf.IntVar(&listOpts.page, "page", 1, "page number")
	lf.IntVar(&listOpts.size, "size", ticket.DefaultPageSize, "tickets per page")
	lf.StringVarP(&listOpts.search, "search", "s", "", "text to look for in title and description")
	lf.StringVar(&listOpts.status, "status", "", "only tickets with this status")
	lf.StringVar(&listOpts.category, "category", "", "category name or id")
	lf.StringVar(&listOpts.from, "from", "", "created on or after (YYYY-MM-DD)")
	lf.StringVar(&listOpts.to, "to", "", "created on or before (YYYY-MM-DD)")
	lf.BoolVar(&listOpts.comments, "comments", false, "also search comment text")
	lf.BoolVar(&listOpts.refresh, "refresh", false, "bypass the ticket cache")

	sf := ticketsStatsCmd.Flags()
	sf.StringVar(&listOpts.category, "category", "", "category name or id")
	sf.StringVar(&listOpts.from, "from", "", "created on or after (YYYY-MM-DD)")
	sf.StringVar(&listOpts.to, "to", "", "created on or before (YYYY-MM-DD)")

	for _, c := range []*cobra.Command{ticketsCreateCmd, ticketsUpdateCmd} {
		f := c.Flags()
		f.StringVar(&ticketOpts.title, "title", "", "ticket title")
		f.StringVar(&ticketOpts.description, "description", "", "ticket description")
		f.StringVar(&ticketOpts.priority, "priority", "", "Low, Medium, High or Critical")
		f.StringVar(&ticketOpts.category, "category", "", "category name or id")
		f.StringVar(&ticketOpts.due, "due", "", "due date (YYYY-MM-DD)")
	}
	ticketsCreateCmd.Flags().Int64Var(&ticketOpts.assignee, "assignee", 0, "user id to assign the ticket to")
	ticketsCommentCmd.Flags().BoolVar(&ticketOpts.internal, "internal", false, "only visible to agents and admins")

	ticketsCmd.AddCommand(
		ticketsListCmd, ticketsShowCmd, ticketsCreateCmd, ticketsUpdateCmd, ticketsStatusCmd,
		ticketsAssignCmd, ticketsDeleteCmd, ticketsCommentCmd, ticketsStatsCmd,
	)
}
