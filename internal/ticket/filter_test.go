package ticket_test

import (
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/frahmantamala/office-ticketing/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Filter", func() {
	Describe("ForViewer", func() {
		It("should give admins every ticket", func() {
			f := ticket.ForViewer(&user.User{ID: 1, Role: user.RoleAdmin})
			Expect(f.IncludeAll).To(BeTrue())
			Expect(f.CreatedBy).To(BeNil())
			Expect(f.AssignedTo).To(BeNil())
			Expect(f.InternalComments).To(BeTrue())
		})

		It("should scope agents to their assignments with include-all set", func() {
			f := ticket.ForViewer(&user.User{ID: 2, Role: user.RoleAgent})
			Expect(f.IncludeAll).To(BeTrue())
			Expect(*f.AssignedTo).To(Equal(int64(2)))
			Expect(f.CreatedBy).To(BeNil())
			Expect(f.InternalComments).To(BeTrue())
		})

		It("should scope regular users to what they created", func() {
			f := ticket.ForViewer(&user.User{ID: 3, Role: user.RoleUser})
			Expect(f.IncludeAll).To(BeFalse())
			Expect(*f.CreatedBy).To(Equal(int64(3)))
			Expect(f.InternalComments).To(BeFalse())
		})

		It("should treat unknown roles as regular users", func() {
			f := ticket.ForViewer(&user.User{ID: 9, Role: "Guest"})
			Expect(f.IncludeAll).To(BeFalse())
			Expect(*f.CreatedBy).To(Equal(int64(9)))
		})
	})

	It("should trim and lower-case the search term", func() {
		Expect(ticket.Filter{Search: "  PrInTeR "}.SearchTerm()).To(Equal("printer"))
		Expect(ticket.Filter{Search: "   "}.SearchTerm()).To(BeEmpty())
	})
})

var _ = Describe("Paging", func() {
	DescribeTable("ClampPage",
		func(page, size, wantPage, wantSize int) {
			p, s := ticket.ClampPage(page, size)
			Expect(p).To(Equal(wantPage))
			Expect(s).To(Equal(wantSize))
		},
		Entry("negative size and zero page", 0, -5, 1, 10),
		Entry("valid input", 3, 25, 3, 25),
		Entry("zero size", 2, 0, 2, 10),
	)

	It("should derive total pages and neighbours", func() {
		r := &ticket.PagedResult{TotalCount: 21, PageNumber: 2, PageSize: 10}
		Expect(r.TotalPages()).To(Equal(3))
		Expect(r.HasPrevious()).To(BeTrue())
		Expect(r.HasNext()).To(BeTrue())

		r.PageNumber = 3
		Expect(r.HasNext()).To(BeFalse())

		empty := &ticket.PagedResult{PageNumber: 1, PageSize: 10}
		Expect(empty.TotalPages()).To(Equal(0))
		Expect(empty.HasPrevious()).To(BeFalse())
		Expect(empty.HasNext()).To(BeFalse())
	})
})

var _ = Describe("Status and Priority", func() {
	It("should parse names loosely", func() {
		s, err := ticket.ParseStatus("in progress")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(ticket.StatusInProgress))

		s, err = ticket.ParseStatus("4")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(ticket.StatusResolved))

		_, err = ticket.ParseStatus("done")
		Expect(err).To(HaveOccurred())

		p, err := ticket.ParsePriority("HIGH")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(ticket.PriorityHigh))
	})

	It("should mark resolved and closed as terminal", func() {
		Expect(ticket.StatusResolved.Terminal()).To(BeTrue())
		Expect(ticket.StatusClosed.Terminal()).To(BeTrue())
		Expect(ticket.StatusReopened.Terminal()).To(BeFalse())
		Expect(ticket.Status(42).String()).To(Equal("Status(42)"))
	})
})
