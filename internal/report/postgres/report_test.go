package postgres_test

import (
	"context"
	"time"

	categoryDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/category"
	ticketDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/ticket"
	userDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/user"
	"github.com/frahmantamala/office-ticketing/internal/database"
	"github.com/frahmantamala/office-ticketing/internal/database/databasetest"
	"github.com/frahmantamala/office-ticketing/internal/report"
	"github.com/frahmantamala/office-ticketing/internal/report/postgres"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Report Repository", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		repo     *postgres.Repository
		base     time.Time
		creator  *userDatamodel.User
		agent    *userDatamodel.User
		hardware *categoryDatamodel.Category
		software *categoryDatamodel.Category
	)

	insert := func(status ticket.Status, priority ticket.Priority, categoryID int64, assignee *int64, due *time.Time, createdAt time.Time) {
		Expect(db.Create(&ticketDatamodel.Ticket{
			Title:            "ticket",
			Description:      "details",
			Status:           int(status),
			Priority:         int(priority),
			CreatedAt:        createdAt,
			DueDate:          due,
			CreatedByUserID:  creator.ID,
			AssignedToUserID: assignee,
			CategoryID:       categoryID,
		}).Error).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = databasetest.Open()
		Expect(err).NotTo(HaveOccurred())

		base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
		creator = &userDatamodel.User{Username: "user1", FirstName: "U", LastName: "One", Email: "user@office.com", PasswordHash: "x", Role: "User", IsActive: true, CreatedAt: base}
		agent = &userDatamodel.User{Username: "agent1", FirstName: "A", LastName: "One", Email: "agent@office.com", PasswordHash: "x", Role: "Agent", IsActive: true, CreatedAt: base}
		Expect(db.Create(creator).Error).To(Succeed())
		Expect(db.Create(agent).Error).To(Succeed())
		hardware = &categoryDatamodel.Category{Name: "Hardware", CreatedAt: base}
		software = &categoryDatamodel.Category{Name: "Software", CreatedAt: base}
		Expect(db.Create(hardware).Error).To(Succeed())
		Expect(db.Create(software).Error).To(Succeed())

		past := base.Add(-48 * time.Hour)
		future := base.Add(30 * 24 * time.Hour)
		insert(ticket.StatusOpen, ticket.PriorityHigh, hardware.ID, &agent.ID, &past, base)
		insert(ticket.StatusOpen, ticket.PriorityMedium, hardware.ID, nil, &future, base.Add(time.Hour))
		insert(ticket.StatusResolved, ticket.PriorityMedium, hardware.ID, &agent.ID, &past, base.Add(2*time.Hour))
		insert(ticket.StatusInProgress, ticket.PriorityCritical, software.ID, &agent.ID, nil, base.Add(72*time.Hour))

		repo, err = postgres.NewRepository(db)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(database.Close(db)).To(Succeed())
	})

	It("should count tickets per status", func() {
		counts, err := repo.CountByStatus(ctx, ticket.Filter{IncludeAll: true})

		Expect(err).NotTo(HaveOccurred())
		Expect(counts).To(Equal(map[ticket.Status]int64{
			ticket.StatusOpen:       2,
			ticket.StatusResolved:   1,
			ticket.StatusInProgress: 1,
		}))
	})

	It("should count tickets per priority", func() {
		counts, err := repo.CountByPriority(ctx, ticket.Filter{IncludeAll: true})

		Expect(err).NotTo(HaveOccurred())
		Expect(counts[ticket.PriorityMedium]).To(Equal(int64(2)))
		Expect(counts[ticket.PriorityLow]).To(BeZero())
	})

	It("should list categories largest first", func() {
		counts, err := repo.CountByCategory(ctx, ticket.Filter{IncludeAll: true})

		Expect(err).NotTo(HaveOccurred())
		Expect(counts).To(Equal([]report.CategoryCount{
			{Name: "Hardware", Total: 3},
			{Name: "Software", Total: 1},
		}))
	})

	It("should apply the assignee scope", func() {
		counts, err := repo.CountByStatus(ctx, ticket.Filter{AssignedTo: &agent.ID})

		Expect(err).NotTo(HaveOccurred())
		Expect(counts[ticket.StatusOpen]).To(Equal(int64(1)))
	})

	It("should narrow by category and creation date", func() {
		from := base.Add(90 * time.Minute)
		counts, err := repo.CountByStatus(ctx, ticket.Filter{IncludeAll: true, CategoryID: &hardware.ID, From: &from})

		Expect(err).NotTo(HaveOccurred())
		Expect(counts).To(Equal(map[ticket.Status]int64{ticket.StatusResolved: 1}))
	})

	It("should count only unresolved tickets past their due date", func() {
		n, err := repo.CountOverdue(ctx, ticket.Filter{IncludeAll: true}, base)

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))
	})

	It("should return an empty category list for a user without tickets", func() {
		nobody := int64(999)
		counts, err := repo.CountByCategory(ctx, ticket.Filter{CreatedBy: &nobody})

		Expect(err).NotTo(HaveOccurred())
		Expect(counts).To(BeEmpty())
	})
})
