package report

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

type RepositoryAPI interface {
	CountByStatus(ctx context.Context, f ticket.Filter) (map[ticket.Status]int64, error)
	CountByPriority(ctx context.Context, f ticket.Filter) (map[ticket.Priority]int64, error)
	CountByCategory(ctx context.Context, f ticket.Filter) ([]CategoryCount, error)
	CountOverdue(ctx context.Context, f ticket.Filter, now time.Time) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// TicketStats summarizes the tickets viewer may see. extra narrows the set
// further by category or creation date; its role fields are ignored.
func (s *Service) TicketStats(ctx context.Context, viewer *user.User, extra ticket.Filter) (*TicketStats, error) {
	if viewer == nil {
		return nil, errors.ErrSessionInvalid
	}

	f := ticket.ForViewer(viewer)
	f.CategoryID = extra.CategoryID
	f.From = extra.From
	f.To = extra.To

	byStatus, err := s.repo.CountByStatus(ctx, f)
	if err != nil {
		return nil, s.storeFailure("status", err)
	}
	byPriority, err := s.repo.CountByPriority(ctx, f)
	if err != nil {
		return nil, s.storeFailure("priority", err)
	}
	byCategory, err := s.repo.CountByCategory(ctx, f)
	if err != nil {
		return nil, s.storeFailure("category", err)
	}
	overdue, err := s.repo.CountOverdue(ctx, f, s.now())
	if err != nil {
		return nil, s.storeFailure("overdue", err)
	}

	stats := &TicketStats{
		Overdue:    overdue,
		ByStatus:   byStatus,
		ByPriority: byPriority,
		ByCategory: byCategory,
	}
	for _, n := range byStatus {
		stats.Total += n
	}
	return stats, nil
}

func (s *Service) storeFailure(grouping string, err error) error {
	s.logger.Error("failed to count tickets", "grouping", grouping, "error", err)
	return errors.NewInternalError("failed to compute ticket statistics", err)
}
