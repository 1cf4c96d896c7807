package viewmodel_test

import (
	"context"
	"errors"
	"time"

	errs "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/auth"
	"github.com/frahmantamala/office-ticketing/internal/core/events"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/frahmantamala/office-ticketing/internal/user"
	"github.com/frahmantamala/office-ticketing/internal/viewmodel"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MainViewModel", func() {
	var (
		ctx      context.Context
		session  *fakeSession
		service  *fakeTicketService
		loader   *ticket.Loader
		bus      *recordingBus
		vm       *viewmodel.MainViewModel
		admin    *user.User
		agent    *user.User
		regular  *user.User
		statuses []string
	)

	BeforeEach(func() {
		ctx = context.Background()
		admin = &user.User{ID: 1, Username: "admin", FirstName: "System", LastName: "Admin", Role: user.RoleAdmin, IsActive: true}
		agent = &user.User{ID: 2, Username: "agent1", FirstName: "Alice", LastName: "Agent", Role: user.RoleAgent, IsActive: true}
		regular = &user.User{ID: 3, Username: "user1", FirstName: "Ursula", LastName: "User", Role: user.RoleUser, IsActive: true}

		service = newFakeTicketService(admin, agent, regular)
		service.tickets = []*ticket.Ticket{
			{ID: 2, Title: "Email configuration", Status: ticket.StatusInProgress, CreatedByUserID: 3},
			{ID: 1, Title: "Printer not working", Status: ticket.StatusOpen, CreatedByUserID: 3},
		}
		loader = ticket.NewLoader(service, ticket.NewMemoryStore(), time.Minute, quietLogger())
		session = &fakeSession{}
		bus = newRecordingBus()
		vm = viewmodel.NewMainViewModel(session, loader, service, auth.NewPermissionChecker(), bus, quietLogger())

		statuses = nil
		vm.Subscribe(func(property string) {
			if property == viewmodel.PropStatusMessage {
				statuses = append(statuses, vm.StatusMessage)
			}
		})
	})

	It("should start out ready", func() {
		Expect(vm.StatusMessage).To(Equal("Ready"))
		Expect(vm.IsLoading).To(BeFalse())
		Expect(vm.IsAdmin()).To(BeFalse())
	})

	Describe("Initialize", func() {
		It("should log out and report an invalid session without a user", func() {
			err := vm.Initialize(ctx, false)

			Expect(errors.Is(err, errs.ErrSessionInvalid)).To(BeTrue())
			Expect(session.logouts).To(Equal(1))
			Expect(bus.received).To(ContainElement(events.EventTypeLogout))
			Expect(vm.StatusMessage).To(HavePrefix("Authentication error: "))
			Expect(service.getCalls).To(Equal(0))
		})

		It("should greet the user and load the ticket list", func() {
			session.current = agent

			Expect(vm.Initialize(ctx, false)).To(Succeed())

			Expect(statuses).To(ContainElement("Welcome, agent1"))
			Expect(vm.StatusMessage).To(Equal("Loaded 2 tickets"))
			Expect(vm.Tickets).To(HaveLen(2))
			Expect(vm.SelectedTicket.ID).To(Equal(int64(2)))
			Expect(vm.IsAgent()).To(BeTrue())
			Expect(vm.IsRegularUser()).To(BeFalse())
			Expect(loader.UserID()).To(Equal(agent.ID))
			Expect(service.lastFilter.IncludeAll).To(BeTrue())
		})

		It("should query the store once when forced past a warm cache", func() {
			session.current = agent
			Expect(vm.Initialize(ctx, false)).To(Succeed())
			Expect(service.getCalls).To(Equal(1))

			Expect(vm.Initialize(ctx, true)).To(Succeed())

			Expect(service.getCalls).To(Equal(2))
			Expect(vm.StatusMessage).To(Equal("Loaded 2 tickets"))
		})
	})

	Describe("LoadTickets", func() {
		BeforeEach(func() {
			session.current = regular
			Expect(vm.Initialize(ctx, false)).To(Succeed())
		})

		It("should use the cache unless forced", func() {
			Expect(vm.LoadTickets(ctx, false)).To(Succeed())
			Expect(service.getCalls).To(Equal(1))

			Expect(vm.LoadTickets(ctx, true)).To(Succeed())
			Expect(service.getCalls).To(Equal(2))
		})

		It("should report a store failure in the status line", func() {
			service.shouldFail = true

			err := vm.LoadTickets(ctx, true)

			Expect(err).To(MatchError(errStoreDown))
			Expect(vm.StatusMessage).To(Equal("Error loading tickets: store down"))
			Expect(vm.IsLoading).To(BeFalse())
		})

		It("should clear the selection for an empty list", func() {
			service.tickets = nil
			Expect(vm.LoadTickets(ctx, true)).To(Succeed())
			Expect(vm.SelectedTicket).To(BeNil())
			Expect(vm.StatusMessage).To(Equal("Loaded 0 tickets"))
		})
	})

	Describe("ticket commands", func() {
		It("should require a selection", func() {
			session.current = admin
			service.tickets = nil
			Expect(vm.Initialize(ctx, false)).To(Succeed())

			err := vm.UpdateSelectedTicketStatus(ctx, ticket.StatusResolved)

			Expect(errors.Is(err, errs.ErrNoSelection)).To(BeTrue())
			Expect(vm.StatusMessage).To(Equal("Please select a ticket first."))
		})

		It("should update the status and refresh past the cache", func() {
			session.current = agent
			Expect(vm.Initialize(ctx, false)).To(Succeed())

			Expect(vm.UpdateSelectedTicketStatus(ctx, ticket.StatusResolved)).To(Succeed())

			Expect(service.getCalls).To(Equal(2))
			Expect(vm.SelectedTicket.Status).To(Equal(ticket.StatusResolved))
			Expect(vm.StatusMessage).To(Equal("Ticket status updated to Resolved"))
		})

		It("should let the creator change the status of their own ticket", func() {
			session.current = regular
			Expect(vm.Initialize(ctx, false)).To(Succeed())

			Expect(vm.UpdateSelectedTicketStatus(ctx, ticket.StatusClosed)).To(Succeed())
		})

		It("should name the assignee after assigning", func() {
			session.current = admin
			Expect(vm.Initialize(ctx, false)).To(Succeed())
			Expect(vm.Select(1)).To(Succeed())

			Expect(vm.AssignSelectedTicket(ctx, agent.ID)).To(Succeed())

			Expect(vm.StatusMessage).To(Equal("Ticket assigned to Alice Agent"))
			Expect(vm.SelectedTicket.ID).To(Equal(int64(1)))
			Expect(*vm.SelectedTicket.AssignedToUserID).To(Equal(agent.ID))
		})

		It("should keep regular users from assigning", func() {
			session.current = regular
			Expect(vm.Initialize(ctx, false)).To(Succeed())

			err := vm.AssignSelectedTicket(ctx, agent.ID)

			Expect(errs.IsForbidden(err)).To(BeTrue())
			Expect(vm.StatusMessage).To(HavePrefix("Error assigning ticket: "))
		})

		It("should report an unknown assignee", func() {
			session.current = admin
			Expect(vm.Initialize(ctx, false)).To(Succeed())

			err := vm.AssignSelectedTicket(ctx, 99)

			Expect(errors.Is(err, errs.ErrUserNotFound)).To(BeTrue())
			Expect(vm.StatusMessage).To(Equal("Error assigning ticket: user not found"))
		})

		It("should create a ticket and select it", func() {
			session.current = regular
			Expect(vm.Initialize(ctx, false)).To(Succeed())

			created, err := vm.CreateTicket(ctx, ticket.CreateTicketDTO{
				Title:       "VPN drops",
				Description: "Disconnects every hour",
				CategoryID:  3,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Priority).To(Equal(ticket.PriorityMedium))
			Expect(vm.Tickets).To(HaveLen(3))
			Expect(vm.SelectedTicket.ID).To(Equal(created.ID))
			Expect(vm.StatusMessage).To(Equal("Ticket created successfully"))
		})

		It("should list every invalid field when creation fails validation", func() {
			session.current = regular
			Expect(vm.Initialize(ctx, false)).To(Succeed())

			_, err := vm.CreateTicket(ctx, ticket.CreateTicketDTO{})

			Expect(errs.IsValidation(err)).To(BeTrue())
			Expect(vm.StatusMessage).To(ContainSubstring("title is required"))
			Expect(vm.StatusMessage).To(ContainSubstring("category_id is required"))
		})

		It("should only let admins delete", func() {
			session.current = agent
			Expect(vm.Initialize(ctx, false)).To(Succeed())
			Expect(errs.IsForbidden(vm.DeleteSelectedTicket(ctx))).To(BeTrue())
			Expect(service.tickets).To(HaveLen(2))

			vm.CurrentUser = admin
			Expect(vm.DeleteSelectedTicket(ctx)).To(Succeed())
			Expect(service.tickets).To(HaveLen(1))
			Expect(vm.StatusMessage).To(Equal("Ticket deleted successfully"))
		})
	})

	Describe("Logout", func() {
		It("should clear the session, the loader and announce the logout", func() {
			session.current = agent
			Expect(vm.Initialize(ctx, false)).To(Succeed())

			Expect(vm.Logout(ctx)).To(Succeed())

			Expect(session.current).To(BeNil())
			Expect(loader.UserID()).To(BeZero())
			Expect(vm.CurrentUser).To(BeNil())
			Expect(vm.Tickets).To(BeEmpty())
			Expect(bus.received).To(Equal([]string{events.EventTypeLogout}))
			Expect(vm.StatusMessage).To(Equal("Logged out"))
		})

		It("should surface a failing logout handler", func() {
			bus.Subscribe(events.EventTypeLogout, func(context.Context, events.Event) error {
				return errors.New("cannot remove session file")
			})

			err := vm.Logout(ctx)

			Expect(err).To(HaveOccurred())
			Expect(vm.StatusMessage).To(HavePrefix("Error during logout: "))
		})
	})

	It("should notify subscribers in the order they subscribed", func() {
		var order []string
		for _, name := range []string{"first", "second", "third", "fourth"} {
			name := name
			vm.Subscribe(func(property string) {
				if property == viewmodel.PropSelectedTicket {
					order = append(order, name)
				}
			})
		}
		session.current = agent
		Expect(vm.Initialize(ctx, false)).To(Succeed())
		order = nil

		Expect(vm.Select(1)).To(Succeed())

		Expect(order).To(Equal([]string{"first", "second", "third", "fourth"}))
	})

	It("should keep the order of the remaining subscribers after unsubscribe", func() {
		var order []string
		record := func(name string) func(string) {
			return func(property string) {
				if property == viewmodel.PropSelectedTicket {
					order = append(order, name)
				}
			}
		}
		vm.Subscribe(record("first"))
		unsubscribe := vm.Subscribe(record("second"))
		vm.Subscribe(record("third"))
		session.current = agent
		Expect(vm.Initialize(ctx, false)).To(Succeed())

		unsubscribe()
		order = nil
		Expect(vm.Select(1)).To(Succeed())

		Expect(order).To(Equal([]string{"first", "third"}))
	})

	It("should stop notifying after unsubscribe", func() {
		calls := 0
		unsubscribe := vm.Subscribe(func(string) { calls++ })
		Expect(vm.Select(42)).NotTo(Succeed())
		seen := calls

		unsubscribe()
		Expect(vm.Select(42)).NotTo(Succeed())
		Expect(calls).To(Equal(seen))
		Expect(seen).To(BeNumerically(">", 0))
	})
})
