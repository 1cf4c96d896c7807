package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/frahmantamala/office-ticketing/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventBus", func() {
	var (
		bus *events.EventBus
		ctx context.Context
	)

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
		ctx = context.Background()
	})

	Describe("PublishSync", func() {
		It("runs handlers in registration order", func() {
			var order []string
			bus.Subscribe(events.EventTypeLogout, func(context.Context, events.Event) error {
				order = append(order, "first")
				return nil
			})
			bus.Subscribe(events.EventTypeLogout, func(context.Context, events.Event) error {
				order = append(order, "second")
				return nil
			})

			Expect(bus.PublishSync(ctx, events.NewLogoutEvent(1))).To(Succeed())
			Expect(order).To(Equal([]string{"first", "second"}))
		})

		It("stops at the first failing handler and wraps its error", func() {
			cause := errors.New("disk full")
			called := false
			bus.Subscribe(events.EventTypeLoginSucceeded, func(context.Context, events.Event) error { return cause })
			bus.Subscribe(events.EventTypeLoginSucceeded, func(context.Context, events.Event) error {
				called = true
				return nil
			})

			err := bus.PublishSync(ctx, events.NewLoginSucceededEvent(1, "admin", "Admin"))
			Expect(err).To(MatchError(cause))
			Expect(err.Error()).To(ContainSubstring(events.EventTypeLoginSucceeded))
			Expect(called).To(BeFalse())
		})

		It("does nothing without subscribers", func() {
			Expect(bus.PublishSync(ctx, events.NewNavigationEvent(events.EventTypeNavigateToLogin))).To(Succeed())
		})
	})

	Describe("Publish", func() {
		It("runs every handler before Wait returns", func() {
			var calls, seen atomic.Int64
			for i := 0; i < 3; i++ {
				bus.Subscribe(events.EventTypeTicketsChanged, func(_ context.Context, e events.Event) error {
					seen.Add(e.(*events.TicketsChangedEvent).TicketID)
					calls.Add(1)
					return nil
				})
			}

			Expect(bus.Publish(ctx, events.NewTicketsChangedEvent(7, "updated"))).To(Succeed())
			bus.Wait()
			Expect(calls.Load()).To(Equal(int64(3)))
			Expect(seen.Load()).To(Equal(int64(21)))
		})

		It("swallows handler errors", func() {
			bus.Subscribe(events.EventTypeTicketsChanged, func(context.Context, events.Event) error {
				return errors.New("cache down")
			})

			Expect(bus.Publish(ctx, events.NewTicketsChangedEvent(1, "created"))).To(Succeed())
			bus.Wait()
		})
	})

	It("carries the payload of a tickets changed event", func() {
		e := events.NewTicketsChangedEvent(3, "commented")
		Expect(e.EventType()).To(Equal(events.EventTypeTicketsChanged))
		Expect(e.EventID()).NotTo(BeEmpty())
		Expect(e.Payload()).To(HaveKeyWithValue("action", "commented"))
	})
})
