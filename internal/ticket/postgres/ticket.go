package postgres

import (
	"context"
	"errors"
	"strings"

	ticketDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/ticket"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

var _ ticket.RepositoryAPI = (*TicketRepository)(nil)

// likeEscaper uses '!' rather than a backslash, which MySQL string literals
// would swallow.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern matches term as plain text anywhere in a LIKE ... ESCAPE '!'
// comparison.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// filterScope turns a ticket.Filter into WHERE clauses. The predicates are
// ANDed in a fixed order.
func filterScope(f ticket.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !f.IncludeAll {
			if f.CreatedBy != nil {
				db = db.Where("tickets.created_by_user_id = ?", *f.CreatedBy)
			}
			if f.AssignedTo != nil {
				db = db.Where("tickets.assigned_to_user_id = ?", *f.AssignedTo)
			}
		}
		if f.Status != nil {
			db = db.Where("tickets.status = ?", int(*f.Status))
		}
		if term := f.SearchTerm(); term != "" {
			like := containsPattern(term)
			switch {
			case f.IncludeComments && f.InternalComments:
				db = db.Where("(LOWER(tickets.title) LIKE ? ESCAPE '!' OR LOWER(tickets.description) LIKE ? ESCAPE '!' OR EXISTS "+
					"(SELECT 1 FROM comments c WHERE c.ticket_id = tickets.id AND LOWER(c.content) LIKE ? ESCAPE '!'))",
					like, like, like)
			case f.IncludeComments:
				db = db.Where("(LOWER(tickets.title) LIKE ? ESCAPE '!' OR LOWER(tickets.description) LIKE ? ESCAPE '!' OR EXISTS "+
					"(SELECT 1 FROM comments c WHERE c.ticket_id = tickets.id AND c.is_internal = ? AND LOWER(c.content) LIKE ? ESCAPE '!'))",
					like, like, false, like)
			default:
				db = db.Where("(LOWER(tickets.title) LIKE ? ESCAPE '!' OR LOWER(tickets.description) LIKE ? ESCAPE '!')", like, like)
			}
		}
		if f.From != nil {
			db = db.Where("tickets.created_at >= ?", f.From.UTC())
		}
		if f.To != nil {
			db = db.Where("tickets.created_at <= ?", f.To.UTC())
		}
		if f.CategoryID != nil {
			db = db.Where("tickets.category_id = ?", *f.CategoryID)
		}
		return db
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("tickets.created_at DESC").Order("tickets.id DESC")
}

func withRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("CreatedByUser").Preload("AssignedToUser").Preload("Category")
}

func (r *TicketRepository) Find(ctx context.Context, f ticket.Filter, offset, limit int) ([]*ticketDatamodel.Ticket, error) {
	q := r.db.WithContext(ctx).Model(&ticketDatamodel.Ticket{}).Scopes(filterScope(f), newestFirst, withRefs)
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}

	var tickets []*ticketDatamodel.Ticket
	err := q.Find(&tickets).Error
	return tickets, err
}

func (r *TicketRepository) Count(ctx context.Context, f ticket.Filter) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ticketDatamodel.Ticket{}).Scopes(filterScope(f)).Count(&n).Error
	return n, err
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*ticketDatamodel.Ticket, error) {
	var t ticketDatamodel.Ticket
	err := r.db.WithContext(ctx).
		Scopes(withRefs).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC").Order("comments.id ASC")
		}).
		Preload("Comments.User").
		Where("tickets.id = ?", id).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Search expects a lower-cased term.
func (r *TicketRepository) Search(ctx context.Context, term string) ([]*ticketDatamodel.Ticket, error) {
	like := containsPattern(term)

	var tickets []*ticketDatamodel.Ticket
	err := r.db.WithContext(ctx).
		Model(&ticketDatamodel.Ticket{}).
		Joins("JOIN users creator ON creator.id = tickets.created_by_user_id").
		Where("(LOWER(tickets.title) LIKE ? ESCAPE '!' OR LOWER(tickets.description) LIKE ? ESCAPE '!' OR "+
			"LOWER(creator.first_name) LIKE ? ESCAPE '!' OR LOWER(creator.last_name) LIKE ? ESCAPE '!')", like, like, like, like).
		Scopes(newestFirst, withRefs).
		Find(&tickets).Error
	return tickets, err
}

func (r *TicketRepository) Create(ctx context.Context, t *ticketDatamodel.Ticket) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error
}

func (r *TicketRepository) Update(ctx context.Context, t *ticketDatamodel.Ticket) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(t).Error
}

func (r *TicketRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&ticketDatamodel.Ticket{}, id)
	return res.RowsAffected > 0, res.Error
}

func (r *TicketRepository) AddComment(ctx context.Context, c *ticketDatamodel.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}
