package ticket

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/core/events"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

const DefaultFreshnessWindow = 5 * time.Minute

type Lister interface {
	GetTickets(ctx context.Context, f Filter) ([]*Ticket, error)
}

// Loader serves the role-scoped ticket list of the current user and keeps
// the last result for the freshness window. It is driven by a single caller
// and does no locking.
type Loader struct {
	lister Lister
	store  CacheStore
	window time.Duration
	logger *slog.Logger
	now    func() time.Time
	userID int64
}

func NewLoader(lister Lister, store CacheStore, window time.Duration, logger *slog.Logger) *Loader {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return &Loader{
		lister: lister,
		store:  store,
		window: window,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (l *Loader) WithClock(now func() time.Time) *Loader {
	l.now = now
	return l
}

// Load returns the tickets viewer may see. Unless force is set, a result
// cached for the same user within the freshness window is returned without
// touching the store.
func (l *Loader) Load(ctx context.Context, viewer *user.User, force bool) ([]*Ticket, error) {
	if viewer == nil {
		return nil, errors.ErrSessionInvalid
	}
	if viewer.ID != l.userID {
		l.SetUser(ctx, viewer)
	}

	if force {
		l.Invalidate(ctx)
	} else if cached := l.cached(ctx, viewer.ID); cached != nil {
		l.logger.Debug("ticket cache hit", "user_id", viewer.ID, "count", len(cached.Tickets))
		return cached.Tickets, nil
	}

	tickets, err := l.lister.GetTickets(ctx, ForViewer(viewer))
	if err != nil {
		return nil, err
	}

	entry := &CacheEntry{UserID: viewer.ID, RefreshedAt: l.now(), Tickets: tickets}
	if err := l.store.Set(ctx, entry); err != nil {
		l.logger.Warn("failed to store ticket cache", "user_id", viewer.ID, "error", err)
	}
	return tickets, nil
}

func (l *Loader) cached(ctx context.Context, userID int64) *CacheEntry {
	entry, err := l.store.Get(ctx)
	if err != nil {
		l.logger.Warn("failed to read ticket cache", "error", err)
		return nil
	}
	if entry == nil || entry.UserID != userID {
		return nil
	}
	if l.now().Sub(entry.RefreshedAt) >= l.window {
		return nil
	}
	return entry
}

// SetUser records the current user and drops the cache when it changes.
// A nil user means nobody is logged in. The first user seen by a fresh
// process keeps whatever a shared store holds; entries are still matched
// on user id before use.
func (l *Loader) SetUser(ctx context.Context, u *user.User) {
	var id int64
	if u != nil {
		id = u.ID
	}
	prev := l.userID
	l.userID = id
	if prev != 0 && prev != id {
		l.Invalidate(ctx)
	}
}

func (l *Loader) UserID() int64 {
	return l.userID
}

func (l *Loader) Invalidate(ctx context.Context) {
	if err := l.store.Clear(ctx); err != nil {
		l.logger.Warn("failed to clear ticket cache", "error", err)
	}
}

// HandleTicketsChanged drops the cache after a ticket or category write.
// It only touches the store, so it is safe to run from a bus goroutine.
func (l *Loader) HandleTicketsChanged(ctx context.Context, event events.Event) error {
	l.logger.Debug("ticket cache invalidated", "event_id", event.EventID(), "payload", event.Payload())
	l.Invalidate(ctx)
	return nil
}
