package viewmodel

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/core/events"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

const (
	msgInvalidLogin = "Invalid username or password"
	msgLoginFailed  = "An error occurred during login. Please try again."
)

type LoginViewModel struct {
	Observable

	Username     string
	ErrorMessage string
	IsLoading    bool

	auth   Authenticator
	bus    events.Publisher
	logger *slog.Logger
}

func NewLoginViewModel(auth Authenticator, bus events.Publisher, logger *slog.Logger) *LoginViewModel {
	return &LoginViewModel{auth: auth, bus: bus, logger: logger}
}

func (vm *LoginViewModel) HasError() bool { return vm.ErrorMessage != "" }

// Login authenticates and announces the new session on the bus. Wrong
// credentials and inactive accounts share one message.
func (vm *LoginViewModel) Login(ctx context.Context, password string) (*user.User, error) {
	vm.setError("")
	if strings.TrimSpace(vm.Username) == "" || password == "" {
		vm.setError("Please enter username and password")
		return nil, errors.NewValidationError(vm.ErrorMessage, errors.ErrCodeValidationFailed)
	}

	vm.IsLoading = true
	vm.notify(PropIsLoading)
	defer func() {
		vm.IsLoading = false
		vm.notify(PropIsLoading)
	}()

	u, err := vm.auth.Authenticate(ctx, strings.TrimSpace(vm.Username), password)
	if err != nil {
		if errors.IsUnauthorized(err) || errors.IsForbidden(err) || errors.IsValidation(err) {
			vm.setError(msgInvalidLogin)
		} else {
			vm.logger.Error("login failed", "username", vm.Username, "error", err)
			vm.setError(msgLoginFailed)
		}
		return nil, err
	}

	if err := vm.bus.PublishSync(ctx, events.NewLoginSucceededEvent(u.ID, u.Username, u.Role.String())); err != nil {
		vm.setError(msgLoginFailed)
		return nil, err
	}
	return u, nil
}

func (vm *LoginViewModel) NavigateToRegister(ctx context.Context) error {
	return vm.bus.PublishSync(ctx, events.NewNavigationEvent(events.EventTypeNavigateToRegister))
}

func (vm *LoginViewModel) setError(message string) {
	vm.ErrorMessage = message
	vm.notify(PropErrorMessage)
}
