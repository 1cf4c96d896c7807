package view_test

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/frahmantamala/office-ticketing/internal/category"
	"github.com/frahmantamala/office-ticketing/internal/report"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/frahmantamala/office-ticketing/internal/user"
	"github.com/frahmantamala/office-ticketing/internal/view"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Renderer", func() {
	var (
		renderer *view.Renderer
		now      time.Time
		agent    *user.User
		printer  *ticket.Ticket
	)

	BeforeEach(func() {
		now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		renderer = view.NewRenderer(view.DefaultTheme, 120).WithClock(func() time.Time { return now })
		agent = &user.User{ID: 2, FirstName: "Alice", LastName: "Agent", Role: user.RoleAgent}
		due := now.Add(-24 * time.Hour)
		printer = &ticket.Ticket{
			ID:          7,
			Title:       "Printer not working",
			Description: "The office printer shows a paper jam.",
			Status:      ticket.StatusOpen,
			Priority:    ticket.PriorityHigh,
			CreatedAt:   now.Add(-72 * time.Hour),
			DueDate:     &due,
			AssignedTo:  agent,
			Category:    &category.Category{ID: 1, Name: "Hardware"},
			CreatedBy:   &user.User{ID: 3, FirstName: "Ursula", LastName: "User"},
			Comments: []*ticket.Comment{
				{ID: 1, Content: "Looking into it", UserID: 2, User: agent, CreatedAt: now},
				{ID: 2, Content: "Needs a new fuser", UserID: 2, User: agent, IsInternal: true, CreatedAt: now},
			},
		}
	})

	Describe("TicketList", func() {
		It("should show the columns of each ticket and mark overdue ones", func() {
			out := renderer.TicketList([]*ticket.Ticket{printer}, 0)

			Expect(out).To(ContainSubstring("TITLE"))
			Expect(out).To(ContainSubstring("#7"))
			Expect(out).To(ContainSubstring("Open"))
			Expect(out).To(ContainSubstring("High"))
			Expect(out).To(ContainSubstring("Hardware"))
			Expect(out).To(ContainSubstring("Alice Agent"))
			Expect(strings.Split(out, "\n")[1]).To(HavePrefix("! "))
		})

		It("should say so when there is nothing to show", func() {
			Expect(renderer.TicketList(nil, 0)).To(Equal("No tickets found."))
		})

		It("should keep rows within the configured width", func() {
			printer.Title = strings.Repeat("very long title ", 20)
			out := renderer.TicketList([]*ticket.Ticket{printer}, printer.ID)

			for _, line := range strings.Split(out, "\n") {
				Expect(lipgloss.Width(line)).To(BeNumerically("<=", 122))
			}
			Expect(out).To(ContainSubstring("…"))
		})
	})

	Describe("TicketDetail", func() {
		It("should hide internal comments from regular users", func() {
			out := renderer.TicketDetail(printer, false)

			Expect(out).To(ContainSubstring("#7 Printer not working"))
			Expect(out).To(ContainSubstring("Ursula User"))
			Expect(out).To(ContainSubstring("(overdue)"))
			Expect(out).To(ContainSubstring("Comments (1)"))
			Expect(out).To(ContainSubstring("Looking into it"))
			Expect(out).NotTo(ContainSubstring("Needs a new fuser"))
		})

		It("should show and label internal comments for staff", func() {
			out := renderer.TicketDetail(printer, true)

			Expect(out).To(ContainSubstring("Comments (2)"))
			Expect(out).To(ContainSubstring("[internal]"))
		})
	})

	It("should describe the paging position", func() {
		out := renderer.PageFooter(&ticket.PagedResult{TotalCount: 25, PageNumber: 2, PageSize: 10})

		Expect(out).To(ContainSubstring("Page 2 of 3"))
		Expect(out).To(ContainSubstring("25 tickets"))
		Expect(out).To(ContainSubstring("--page 1 for previous"))
		Expect(out).To(ContainSubstring("--page 3 for next"))
	})

	It("should render an empty page as page 1 of 1", func() {
		out := renderer.PageFooter(&ticket.PagedResult{PageNumber: 1, PageSize: 10})
		Expect(out).To(ContainSubstring("Page 1 of 1"))
		Expect(out).NotTo(ContainSubstring("next"))
	})

	It("should mark inactive users", func() {
		out := renderer.UserList([]*user.User{
			{ID: 1, Username: "admin", FirstName: "System", LastName: "Admin", Role: user.RoleAdmin, IsActive: true},
			{ID: 4, Username: "gone", FirstName: "Former", LastName: "Staff", Role: user.RoleUser},
		})

		lines := strings.Split(out, "\n")
		Expect(lines).To(HaveLen(3))
		Expect(lines[1]).To(ContainSubstring("yes"))
		Expect(lines[2]).To(ContainSubstring("no"))
	})

	It("should list categories", func() {
		out := renderer.CategoryList([]*category.Category{{ID: 1, Name: "Hardware", Description: "Printers and PCs"}})
		Expect(out).To(ContainSubstring("Printers and PCs"))
	})

	It("should summarize statistics", func() {
		out := renderer.Stats(&report.TicketStats{
			Total:      5,
			Overdue:    1,
			ByStatus:   map[ticket.Status]int64{ticket.StatusOpen: 3, ticket.StatusClosed: 2},
			ByPriority: map[ticket.Priority]int64{ticket.PriorityLow: 5},
			ByCategory: []report.CategoryCount{{Name: "Hardware", Total: 5}},
		})

		Expect(out).To(ContainSubstring("Unresolved"))
		Expect(out).To(ContainSubstring("Closed"))
		Expect(out).NotTo(ContainSubstring("InProgress"))
		Expect(out).To(ContainSubstring("Hardware"))
	})

	It("should leave ordinary status lines alone", func() {
		Expect(renderer.Status("Loaded 3 tickets")).To(Equal("Loaded 3 tickets"))
	})
})
