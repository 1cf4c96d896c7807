package ticket_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	errs "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/core/events"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/frahmantamala/office-ticketing/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// countingLister records every query and the filter it was given.
type countingLister struct {
	calls      int
	lastFilter ticket.Filter
	shouldFail bool
	failError  error
}

func (c *countingLister) GetTickets(ctx context.Context, f ticket.Filter) ([]*ticket.Ticket, error) {
	c.calls++
	c.lastFilter = f
	if c.shouldFail {
		return nil, c.failError
	}
	return []*ticket.Ticket{{ID: int64(c.calls), Title: "Printer not working"}}, nil
}

type failingStore struct{}

func (failingStore) Get(context.Context) (*ticket.CacheEntry, error) {
	return nil, errors.New("store down")
}
func (failingStore) Set(context.Context, *ticket.CacheEntry) error { return errors.New("store down") }
func (failingStore) Clear(context.Context) error                   { return errors.New("store down") }

var _ = Describe("Loader", func() {
	var (
		ctx     context.Context
		lister  *countingLister
		loader  *ticket.Loader
		clock   time.Time
		admin   *user.User
		regular *user.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		lister = &countingLister{}
		clock = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		loader = ticket.NewLoader(lister, ticket.NewMemoryStore(), 5*time.Minute, logger).
			WithClock(func() time.Time { return clock })
		admin = &user.User{ID: 1, Username: "admin", Role: user.RoleAdmin}
		regular = &user.User{ID: 3, Username: "user1", Role: user.RoleUser}
	})

	It("should report an invalid session when nobody is logged in", func() {
		_, err := loader.Load(ctx, nil, false)
		Expect(errors.Is(err, errs.ErrSessionInvalid)).To(BeTrue())
		Expect(errs.IsUnauthorized(err)).To(BeTrue())
		Expect(lister.calls).To(Equal(0))
	})

	It("should serve a second load inside the window from cache", func() {
		first, err := loader.Load(ctx, admin, false)
		Expect(err).NotTo(HaveOccurred())

		clock = clock.Add(4 * time.Minute)
		second, err := loader.Load(ctx, admin, false)
		Expect(err).NotTo(HaveOccurred())

		Expect(lister.calls).To(Equal(1))
		Expect(second).To(Equal(first))
	})

	It("should refresh once the window has passed", func() {
		_, _ = loader.Load(ctx, admin, false)
		clock = clock.Add(5 * time.Minute)
		_, _ = loader.Load(ctx, admin, false)
		Expect(lister.calls).To(Equal(2))
	})

	It("should always query on force", func() {
		_, _ = loader.Load(ctx, admin, false)
		_, _ = loader.Load(ctx, admin, true)
		_, _ = loader.Load(ctx, admin, true)
		Expect(lister.calls).To(Equal(3))
	})

	It("should use the viewer's role filter", func() {
		_, _ = loader.Load(ctx, regular, false)
		Expect(lister.lastFilter.IncludeAll).To(BeFalse())
		Expect(*lister.lastFilter.CreatedBy).To(Equal(int64(3)))
	})

	It("should drop the cache on a user switch", func() {
		_, _ = loader.Load(ctx, admin, false)
		_, _ = loader.Load(ctx, regular, false)
		_, _ = loader.Load(ctx, admin, false)
		Expect(lister.calls).To(Equal(3))
	})

	It("should drop the cache on logout and invalidate", func() {
		_, _ = loader.Load(ctx, admin, false)
		loader.SetUser(ctx, nil)
		Expect(loader.UserID()).To(BeZero())
		_, _ = loader.Load(ctx, admin, false)
		Expect(lister.calls).To(Equal(2))

		loader.Invalidate(ctx)
		_, _ = loader.Load(ctx, admin, false)
		Expect(lister.calls).To(Equal(3))
	})

	It("should drop the cache when tickets change", func() {
		_, _ = loader.Load(ctx, admin, false)
		Expect(loader.HandleTicketsChanged(ctx, events.NewTicketsChangedEvent(1, "updated"))).To(Succeed())
		_, _ = loader.Load(ctx, admin, false)
		Expect(lister.calls).To(Equal(2))
	})

	It("should pass query failures through", func() {
		lister.shouldFail = true
		lister.failError = errs.NewInternalError("failed to load tickets", errors.New("database error"))
		_, err := loader.Load(ctx, admin, false)
		Expect(err).To(MatchError(ContainSubstring("database error")))
	})

	It("should treat store failures as misses", func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		broken := ticket.NewLoader(lister, failingStore{}, time.Minute, logger)

		tickets, err := broken.Load(ctx, admin, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(tickets).To(HaveLen(1))

		_, err = broken.Load(ctx, admin, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(lister.calls).To(Equal(2))
	})
})
