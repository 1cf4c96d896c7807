// Package session keeps the logged-in user across CLI invocations. It
// listens for session events on the bus and persists a signed token file.
package session

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/auth"
	"github.com/frahmantamala/office-ticketing/internal/core/events"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*user.User, error)
}

// UserSetter receives the restored user. The ticket loader's SetUser fits
// directly; the auth service is adapted with a closure.
type UserSetter func(ctx context.Context, u *user.User)

type Host struct {
	tokens  auth.TokenGenerator
	users   UserLookup
	targets []UserSetter
	path    string
	logger  *slog.Logger
	lastNav string
}

func NewHost(tokens auth.TokenGenerator, users UserLookup, path string, logger *slog.Logger, targets ...UserSetter) *Host {
	return &Host{
		tokens:  tokens,
		users:   users,
		targets: targets,
		path:    path,
		logger:  logger,
	}
}

// Register subscribes the host to the session events.
func (h *Host) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeLoginSucceeded, h.handleLogin)
	bus.Subscribe(events.EventTypeLogout, h.handleLogout)
	bus.Subscribe(events.EventTypeNavigateToRegister, h.handleNavigation)
	bus.Subscribe(events.EventTypeNavigateToLogin, h.handleNavigation)
}

func (h *Host) handleLogin(ctx context.Context, event events.Event) error {
	ev, ok := event.(*events.LoginSucceededEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	u, err := h.users.GetUserByID(ctx, ev.UserID)
	if err != nil {
		return err
	}

	token, expiresAt, err := h.tokens.GenerateSessionToken(u)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}
	if err := h.write(token); err != nil {
		return err
	}

	h.logger.Debug("session stored", "user_id", u.ID, "expires_at", expiresAt, "path", h.path)
	return nil
}

func (h *Host) handleLogout(ctx context.Context, event events.Event) error {
	if err := h.clear(); err != nil {
		return err
	}
	h.logger.Debug("session cleared", "path", h.path)
	return nil
}

func (h *Host) handleNavigation(ctx context.Context, event events.Event) error {
	h.lastNav = event.EventType()
	return nil
}

// LastNavigation is the type of the most recent navigation event, or "".
func (h *Host) LastNavigation() string {
	return h.lastNav
}

func (h *Host) Path() string {
	return h.path
}

// Restore loads the user of a stored session and makes it current. Without a
// session file it returns nil, nil. A token that fails validation, or whose
// user is gone or inactive, is removed and reported as an unauthorized error.
func (h *Host) Restore(ctx context.Context) (*user.User, error) {
	raw, err := os.ReadFile(h.path)
	if err != nil {
		if stdErrors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	claims, err := h.tokens.ValidateToken(strings.TrimSpace(string(raw)))
	if err != nil {
		h.logger.Info("discarding stored session", "error", err)
		_ = h.clear()
		return nil, err
	}

	u, err := h.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.IsNotFound(err) {
			_ = h.clear()
			return nil, errors.ErrSessionInvalid.WithCause(err)
		}
		return nil, err
	}
	if !u.IsActive {
		_ = h.clear()
		return nil, errors.ErrSessionInvalid.WithCause(errors.ErrUserInactive)
	}

	for _, t := range h.targets {
		t(ctx, u)
	}
	h.logger.Debug("session restored", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (h *Host) write(token string) error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(h.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (h *Host) clear() error {
	if err := os.Remove(h.path); err != nil && !stdErrors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
