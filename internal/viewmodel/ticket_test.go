package viewmodel_test

import (
	"context"
	"errors"
	"fmt"

	errs "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/core/events"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/frahmantamala/office-ticketing/internal/user"
	"github.com/frahmantamala/office-ticketing/internal/viewmodel"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TicketViewModel", func() {
	var (
		ctx     context.Context
		session *fakeSession
		service *fakeTicketService
		bus     *recordingBus
		vm      *viewmodel.TicketViewModel
		agent   *user.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		agent = &user.User{ID: 2, Username: "agent1", Role: user.RoleAgent, IsActive: true}
		session = &fakeSession{current: agent}
		service = newFakeTicketService(agent)
		for i := 1; i <= 12; i++ {
			status := ticket.StatusOpen
			if i%3 == 0 {
				status = ticket.StatusResolved
			}
			service.tickets = append(service.tickets, &ticket.Ticket{
				ID:     int64(i),
				Title:  fmt.Sprintf("Printer %d jammed", i),
				Status: status,
			})
		}
		bus = newRecordingBus()
		vm = viewmodel.NewTicketViewModel(session, service, bus, quietLogger())
	})

	It("should start on the first page with the default size", func() {
		Expect(vm.PageNumber).To(Equal(1))
		Expect(vm.PageSize).To(Equal(ticket.DefaultPageSize))
		Expect(vm.Form.Priority).To(Equal(ticket.PriorityMedium))
	})

	It("should combine the viewer scope with the filters", func() {
		resolved := ticket.StatusResolved
		vm.Filters.SearchText = "printer"
		vm.Filters.SearchComments = true
		vm.Filters.Status = &resolved

		f, err := vm.Filter()

		Expect(err).NotTo(HaveOccurred())
		Expect(*f.AssignedTo).To(Equal(agent.ID))
		Expect(f.IncludeAll).To(BeTrue())
		Expect(f.Search).To(Equal("printer"))
		Expect(f.IncludeComments).To(BeTrue())
		Expect(*f.Status).To(Equal(ticket.StatusResolved))
	})

	It("should refuse to search without a session", func() {
		session.current = nil

		err := vm.Search(ctx)

		Expect(errors.Is(err, errs.ErrSessionInvalid)).To(BeTrue())
		Expect(vm.StatusMessage).To(HavePrefix("Error loading tickets: "))
		Expect(session.logouts).To(Equal(1))
		Expect(bus.received).To(Equal([]string{events.EventTypeLogout}))
	})

	It("should log out when the store rejects the session", func() {
		service.failWith = errs.ErrSessionInvalid

		err := vm.Refresh(ctx)

		Expect(errors.Is(err, errs.ErrSessionInvalid)).To(BeTrue())
		Expect(session.logouts).To(Equal(1))
		Expect(session.current).To(BeNil())
		Expect(bus.received).To(Equal([]string{events.EventTypeLogout}))
		Expect(vm.StatusMessage).To(HavePrefix("Error loading tickets: "))
	})

	It("should keep the session on other failures", func() {
		service.shouldFail = true

		Expect(vm.Refresh(ctx)).To(MatchError(errStoreDown))
		Expect(session.logouts).To(BeZero())
		Expect(session.current).To(Equal(agent))
		Expect(bus.received).To(BeEmpty())
	})

	It("should page through the results", func() {
		Expect(vm.Search(ctx)).To(Succeed())
		Expect(vm.Page.Items).To(HaveLen(10))
		Expect(vm.Page.TotalPages()).To(Equal(2))
		Expect(vm.StatusMessage).To(Equal("Page 1 of 2 (12 tickets)"))

		moved, err := vm.PreviousPage(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(moved).To(BeFalse())

		moved, err = vm.NextPage(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(moved).To(BeTrue())
		Expect(vm.PageNumber).To(Equal(2))
		Expect(vm.Page.Items).To(HaveLen(2))

		moved, err = vm.NextPage(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(moved).To(BeFalse())
	})

	It("should reset to the first page on a new search", func() {
		Expect(vm.Search(ctx)).To(Succeed())
		_, _ = vm.NextPage(ctx)

		vm.Filters.SearchText = "printer 1"
		Expect(vm.Search(ctx)).To(Succeed())

		Expect(service.lastPage).To(Equal(1))
		Expect(vm.StatusMessage).To(Equal("Found 4 tickets matching 'printer 1'"))
	})

	It("should describe a status filter", func() {
		resolved := ticket.StatusResolved
		vm.Filters.Status = &resolved

		Expect(vm.Search(ctx)).To(Succeed())

		Expect(vm.StatusMessage).To(Equal("Showing 4 Resolved tickets"))
	})

	It("should clamp a bad page size", func() {
		vm.PageSize = 0
		Expect(vm.Search(ctx)).To(Succeed())
		Expect(vm.PageSize).To(Equal(ticket.DefaultPageSize))
	})

	Describe("CreateTicket", func() {
		It("should require title, description and category", func() {
			vm.Form.Title = "Broken mouse"

			_, err := vm.CreateTicket(ctx)

			Expect(errs.IsValidation(err)).To(BeTrue())
			Expect(vm.StatusMessage).To(Equal("Error creating ticket: Please fill in all required fields"))
			Expect(vm.Form.Title).To(Equal("Broken mouse"))
		})

		It("should create and clear the form", func() {
			vm.Form = viewmodel.TicketForm{
				Title:       "Broken mouse",
				Description: "Left button sticks",
				Priority:    ticket.PriorityHigh,
				CategoryID:  1,
			}

			created, err := vm.CreateTicket(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(created.CreatedByUserID).To(Equal(agent.ID))
			Expect(created.Priority).To(Equal(ticket.PriorityHigh))
			Expect(vm.Form).To(Equal(viewmodel.TicketForm{Priority: ticket.PriorityMedium}))
			Expect(vm.StatusMessage).To(Equal("Ticket created successfully"))
		})
	})

	It("should add a comment as the current user", func() {
		c, err := vm.AddComment(ctx, 1, "Replaced the toner", true)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.UserID).To(Equal(agent.ID))
		Expect(c.IsInternal).To(BeTrue())

		_, err = vm.AddComment(ctx, 404, "Anyone?", false)
		Expect(errors.Is(err, errs.ErrTicketNotFound)).To(BeTrue())
		Expect(vm.StatusMessage).To(Equal("Error adding comment: ticket not found"))
	})
})
