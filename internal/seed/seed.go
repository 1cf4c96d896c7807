// Package seed fills an empty store with the demo accounts, categories and
// tickets.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	categoryDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/category"
	ticketDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/ticket"
	userDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/user"
	"github.com/frahmantamala/office-ticketing/internal/database"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/frahmantamala/office-ticketing/internal/user"
	"gorm.io/gorm"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type account struct {
	Username, Password, FirstName, LastName, Email string
	Role                                           user.Role
}

var defaultCategories = []categoryDatamodel.Category{
	{Name: "Hardware", Description: "Hardware related issues"},
	{Name: "Software", Description: "Software installation and issues"},
	{Name: "Network", Description: "Network and connectivity issues"},
	{Name: "Email", Description: "Email and communication issues"},
	{Name: "Account", Description: "User account and access issues"},
}

var accounts = []account{
	{"admin", "admin123", "Admin", "User", "admin@office.com", user.RoleAdmin},
	{"agent1", "agent123", "Support", "Agent", "agent@office.com", user.RoleAgent},
	{"user1", "user123", "Regular", "User", "user@office.com", user.RoleUser},
}

type Seeder struct {
	db     *gorm.DB
	hasher PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

func NewSeeder(db *gorm.DB, hasher PasswordHasher, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, hasher: hasher, logger: logger, now: database.NowUTC}
}

// Run inserts the demo data in one transaction when the users table is
// empty. It reports whether anything was written.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&userDatamodel.User{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		s.logger.Debug("store already seeded", "users", count)
		return false, nil
	}

	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := make([]*categoryDatamodel.Category, len(defaultCategories))
		for i, c := range defaultCategories {
			row := c
			row.CreatedAt = now
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to insert category %s: %w", c.Name, err)
			}
			categories[i] = &row
		}

		users := make(map[user.Role]*userDatamodel.User, len(accounts))
		for _, a := range accounts {
			hash, err := s.hasher.Hash(a.Password)
			if err != nil {
				return fmt.Errorf("failed to hash password for %s: %w", a.Username, err)
			}
			row := &userDatamodel.User{
				Username:     a.Username,
				FirstName:    a.FirstName,
				LastName:     a.LastName,
				Email:        a.Email,
				PasswordHash: hash,
				Role:         string(a.Role),
				IsActive:     true,
				CreatedAt:    now,
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("failed to insert user %s: %w", a.Username, err)
			}
			users[a.Role] = row
		}

		regular, agent := users[user.RoleUser], users[user.RoleAgent]
		printer := &ticketDatamodel.Ticket{
			Title:            "Printer not working",
			Description:      "The office printer is showing an error message and won't print.",
			Status:           int(ticket.StatusOpen),
			Priority:         int(ticket.PriorityMedium),
			CreatedAt:        now.AddDate(0, 0, -2),
			UpdatedAt:        timePtr(now.AddDate(0, 0, -1)),
			CreatedByUserID:  regular.ID,
			AssignedToUserID: &agent.ID,
			CategoryID:       categories[0].ID,
		}
		email := &ticketDatamodel.Ticket{
			Title:            "Email configuration",
			Description:      "Need help setting up email on my new laptop.",
			Status:           int(ticket.StatusInProgress),
			Priority:         int(ticket.PriorityHigh),
			CreatedAt:        now.AddDate(0, 0, -1),
			UpdatedAt:        timePtr(now),
			CreatedByUserID:  regular.ID,
			AssignedToUserID: &agent.ID,
			CategoryID:       categories[1].ID,
		}
		for _, t := range []*ticketDatamodel.Ticket{printer, email} {
			if err := tx.Create(t).Error; err != nil {
				return fmt.Errorf("failed to insert ticket %q: %w", t.Title, err)
			}
		}

		comments := []*ticketDatamodel.Comment{
			{Content: "I've restarted the printer but the issue persists.", CreatedAt: now.Add(-12 * time.Hour), UserID: regular.ID},
			{Content: "I'll take a look at the printer in the morning.", CreatedAt: now.Add(-2 * time.Hour), UserID: agent.ID},
			{Content: "Thanks for the quick response!", CreatedAt: now.Add(-time.Hour), UserID: regular.ID},
		}
		for _, c := range comments {
			c.TicketID = printer.ID
			if err := tx.Create(c).Error; err != nil {
				return fmt.Errorf("failed to insert comment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("seeded demo data",
		"categories", len(defaultCategories),
		"users", len(accounts),
		"tickets", 2)
	return true, nil
}

func timePtr(t time.Time) *time.Time { return &t }
