package viewmodel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/auth"
	"github.com/frahmantamala/office-ticketing/internal/core/events"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

type RegisterViewModel struct {
	Observable

	Username     string
	FirstName    string
	LastName     string
	Email        string
	ErrorMessage string
	IsLoading    bool

	auth   Authenticator
	bus    events.Publisher
	logger *slog.Logger
}

func NewRegisterViewModel(auth Authenticator, bus events.Publisher, logger *slog.Logger) *RegisterViewModel {
	return &RegisterViewModel{auth: auth, bus: bus, logger: logger}
}

func (vm *RegisterViewModel) HasError() bool { return vm.ErrorMessage != "" }

// CanRegister is true once every field is filled and the password is long
// enough.
func (vm *RegisterViewModel) CanRegister(password string) bool {
	for _, s := range []string{vm.Username, vm.FirstName, vm.LastName, vm.Email} {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return len(password) >= user.MinPasswordLength && !vm.IsLoading
}

// Register creates a regular user account and sends the user back to the
// login screen.
func (vm *RegisterViewModel) Register(ctx context.Context, password string) (*user.User, error) {
	vm.setError("")
	if !vm.CanRegister(password) {
		vm.setError(fmt.Sprintf("Please fill in all fields. The password needs at least %d characters.", user.MinPasswordLength))
		return nil, errors.NewValidationError(vm.ErrorMessage, errors.ErrCodeValidationFailed)
	}

	vm.IsLoading = true
	vm.notify(PropIsLoading)
	defer func() {
		vm.IsLoading = false
		vm.notify(PropIsLoading)
	}()

	u, err := vm.auth.Register(ctx, auth.RegisterDTO{
		Username:  vm.Username,
		Password:  password,
		FirstName: vm.FirstName,
		LastName:  vm.LastName,
		Email:     vm.Email,
	})
	if err != nil {
		vm.logger.Warn("registration failed", "username", vm.Username, "error", err)
		vm.setError(describe(err))
		return nil, err
	}

	vm.Username, vm.FirstName, vm.LastName, vm.Email = "", "", "", ""
	return u, vm.NavigateToLogin(ctx)
}

func (vm *RegisterViewModel) NavigateToLogin(ctx context.Context) error {
	return vm.bus.PublishSync(ctx, events.NewNavigationEvent(events.EventTypeNavigateToLogin))
}

func (vm *RegisterViewModel) setError(message string) {
	vm.ErrorMessage = message
	vm.notify(PropErrorMessage)
}
