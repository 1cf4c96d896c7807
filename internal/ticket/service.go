package ticket

import (
	"context"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/core/common/validation"
	ticketDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/ticket"
	"github.com/frahmantamala/office-ticketing/internal/database"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

type RepositoryAPI interface {
	// Find returns tickets matching f, newest first. A limit of 0 means no limit.
	Find(ctx context.Context, f Filter, offset, limit int) ([]*ticketDatamodel.Ticket, error)
	Count(ctx context.Context, f Filter) (int64, error)
	GetByID(ctx context.Context, id int64) (*ticketDatamodel.Ticket, error)
	Search(ctx context.Context, term string) ([]*ticketDatamodel.Ticket, error)
	Create(ctx context.Context, t *ticketDatamodel.Ticket) error
	Update(ctx context.Context, t *ticketDatamodel.Ticket) error
	Delete(ctx context.Context, id int64) (bool, error)
	AddComment(ctx context.Context, c *ticketDatamodel.Comment) error
}

type CategoryChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*user.User, error)
}

type Service struct {
	repo       RepositoryAPI
	categories CategoryChecker
	users      UserLookup
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo RepositoryAPI, categories CategoryChecker, users UserLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		users:      users,
		logger:     logger,
		now:        database.NowUTC,
	}
}

func (s *Service) GetTickets(ctx context.Context, f Filter) ([]*Ticket, error) {
	rows, err := s.repo.Find(ctx, f, 0, 0)
	if err != nil {
		s.logger.Error("failed to query tickets", "error", err)
		return nil, errors.NewInternalError("failed to load tickets", err)
	}
	return fromDataModels(rows), nil
}

func (s *Service) GetTicketsPaged(ctx context.Context, f Filter, page, size int) (*PagedResult, error) {
	page, size = ClampPage(page, size)

	total, err := s.repo.Count(ctx, f)
	if err != nil {
		s.logger.Error("failed to count tickets", "error", err)
		return nil, errors.NewInternalError("failed to count tickets", err)
	}

	rows, err := s.repo.Find(ctx, f, (page-1)*size, size)
	if err != nil {
		s.logger.Error("failed to query ticket page", "page", page, "size", size, "error", err)
		return nil, errors.NewInternalError("failed to load tickets", err)
	}

	return &PagedResult{
		Items:      fromDataModels(rows),
		TotalCount: total,
		PageNumber: page,
		PageSize:   size,
	}, nil
}

func (s *Service) GetAllTickets(ctx context.Context) ([]*Ticket, error) {
	return s.GetTickets(ctx, Filter{IncludeAll: true})
}

func (s *Service) GetTicketsByStatus(ctx context.Context, status Status) ([]*Ticket, error) {
	return s.GetTickets(ctx, Filter{IncludeAll: true, Status: &status})
}

func (s *Service) GetTicketsByUser(ctx context.Context, userID int64) ([]*Ticket, error) {
	return s.GetTickets(ctx, Filter{CreatedBy: &userID})
}

func (s *Service) GetAssignedTickets(ctx context.Context, userID int64) ([]*Ticket, error) {
	return s.GetTickets(ctx, Filter{AssignedTo: &userID})
}

func (s *Service) GetTicketByID(ctx context.Context, id int64) (*Ticket, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get ticket", "ticket_id", id, "error", err)
		return nil, errors.NewInternalError("failed to load ticket", err)
	}
	if row == nil {
		return nil, errors.ErrTicketNotFound
	}
	return FromDataModel(row), nil
}

// SearchTickets matches term against title, description and the creator's
// name. A blank term returns every ticket.
func (s *Service) SearchTickets(ctx context.Context, term string) ([]*Ticket, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return s.GetAllTickets(ctx)
	}
	rows, err := s.repo.Search(ctx, term)
	if err != nil {
		s.logger.Error("failed to search tickets", "term", term, "error", err)
		return nil, errors.NewInternalError("failed to search tickets", err)
	}
	return fromDataModels(rows), nil
}

func (s *Service) CreateTicket(ctx context.Context, dto CreateTicketDTO, creatorID int64) (*Ticket, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	if creatorID <= 0 {
		return nil, errors.ErrSessionInvalid
	}
	if err := s.checkReferences(ctx, dto.CategoryID, dto.AssignedToUserID); err != nil {
		return nil, err
	}

	t := &Ticket{
		Title:            dto.Title,
		Description:      dto.Description,
		Status:           StatusOpen,
		Priority:         dto.Priority,
		CreatedAt:        s.now(),
		DueDate:          dto.DueDate,
		CreatedByUserID:  creatorID,
		AssignedToUserID: dto.AssignedToUserID,
		CategoryID:       dto.CategoryID,
	}

	row := ToDataModel(t)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create ticket", "title", dto.Title, "error", err)
		return nil, errors.NewInternalError("failed to create ticket", err)
	}

	s.logger.Info("ticket created", "ticket_id", row.ID, "created_by", creatorID)
	return s.GetTicketByID(ctx, row.ID)
}

func (s *Service) UpdateTicket(ctx context.Context, id int64, dto UpdateTicketDTO) (*Ticket, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, dto.CategoryID, dto.AssignedToUserID); err != nil {
		return nil, err
	}

	now := s.now()
	row.Title = dto.Title
	row.Description = dto.Description
	row.CategoryID = dto.CategoryID
	row.Priority = int(dto.Priority)
	row.AssignedToUserID = dto.AssignedToUserID
	row.DueDate = dto.DueDate
	row.UpdatedAt = &now
	setStatus(row, dto.Status, now)

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update ticket", "ticket_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update ticket", err)
	}

	return s.GetTicketByID(ctx, id)
}

// DeleteTicket removes the ticket and, through the schema, its comments.
func (s *Service) DeleteTicket(ctx context.Context, id int64) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete ticket", "ticket_id", id, "error", err)
		return errors.NewInternalError("failed to delete ticket", err)
	}
	if !found {
		return errors.ErrTicketNotFound
	}
	s.logger.Info("ticket deleted", "ticket_id", id)
	return nil
}

// AssignTicket sets the assignee. An Open ticket moves to InProgress.
func (s *Service) AssignTicket(ctx context.Context, ticketID, userID int64) (*Ticket, error) {
	row, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, row.CategoryID, &userID); err != nil {
		return nil, err
	}

	now := s.now()
	row.AssignedToUserID = &userID
	row.UpdatedAt = &now
	if Status(row.Status) == StatusOpen {
		row.Status = int(StatusInProgress)
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to assign ticket", "ticket_id", ticketID, "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to assign ticket", err)
	}

	s.logger.Info("ticket assigned", "ticket_id", ticketID, "user_id", userID)
	return s.GetTicketByID(ctx, ticketID)
}

func (s *Service) UpdateTicketStatus(ctx context.Context, ticketID int64, status Status) (*Ticket, error) {
	if !status.Valid() {
		return nil, errors.NewValidationFieldError("status", "status is not a known value", errors.ErrCodeInvalidStatus)
	}

	row, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	row.UpdatedAt = &now
	setStatus(row, status, now)

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update ticket status", "ticket_id", ticketID, "status", status, "error", err)
		return nil, errors.NewInternalError("failed to update ticket status", err)
	}

	s.logger.Info("ticket status changed", "ticket_id", ticketID, "status", status.String())
	return s.GetTicketByID(ctx, ticketID)
}

func (s *Service) AddComment(ctx context.Context, ticketID, userID int64, content string, internal bool) (*Comment, error) {
	content = strings.TrimSpace(content)
	v := validation.NewValidator()
	v.Field("content", content).Required()
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}
	if userID <= 0 {
		return nil, errors.ErrSessionInvalid
	}
	if _, err := s.load(ctx, ticketID); err != nil {
		return nil, err
	}

	row := &ticketDatamodel.Comment{
		Content:    content,
		CreatedAt:  s.now(),
		IsInternal: internal,
		TicketID:   ticketID,
		UserID:     userID,
	}
	if err := s.repo.AddComment(ctx, row); err != nil {
		s.logger.Error("failed to add comment", "ticket_id", ticketID, "error", err)
		return nil, errors.NewInternalError("failed to add comment", err)
	}

	return CommentFromDataModel(row), nil
}

func (s *Service) load(ctx context.Context, id int64) (*ticketDatamodel.Ticket, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get ticket", "ticket_id", id, "error", err)
		return nil, errors.NewInternalError("failed to load ticket", err)
	}
	if row == nil {
		return nil, errors.ErrTicketNotFound
	}
	return row, nil
}

func (s *Service) checkReferences(ctx context.Context, categoryID int64, assigneeID *int64) error {
	ok, err := s.categories.Exists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrCategoryNotFound
	}
	if assigneeID != nil {
		if _, err := s.users.GetUserByID(ctx, *assigneeID); err != nil {
			return err
		}
	}
	return nil
}

// setStatus applies status and keeps resolved_at in step: it is stamped on
// entering Resolved or Closed and cleared when the ticket leaves them.
func setStatus(row *ticketDatamodel.Ticket, status Status, now time.Time) {
	prev := Status(row.Status)
	row.Status = int(status)
	switch {
	case status.Terminal() && !prev.Terminal():
		row.ResolvedAt = &now
	case status.Terminal() && row.ResolvedAt == nil:
		row.ResolvedAt = &now
	case !status.Terminal():
		row.ResolvedAt = nil
	}
}
