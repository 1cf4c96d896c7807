package viewmodel

import (
	"context"
	"fmt"
	"log/slog"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/auth"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

type UserForm struct {
	Username   string
	Email      string
	FirstName  string
	LastName   string
	Role       user.Role
	IsActive   bool
	Department *string
	Phone      *string
}

func emptyUserForm() UserForm {
	return UserForm{Role: user.RoleUser, IsActive: true}
}

// UserViewModel is the admin screen for managing accounts. Every command
// requires the manage_users permission.
type UserViewModel struct {
	Observable

	Users         []*user.User
	SelectedUser  *user.User
	Form          UserForm
	StatusMessage string

	session     Session
	users       UserService
	permissions auth.PermissionChecker
	logger      *slog.Logger
}

func NewUserViewModel(session Session, users UserService, permissions auth.PermissionChecker, logger *slog.Logger) *UserViewModel {
	return &UserViewModel{
		Form:          emptyUserForm(),
		StatusMessage: StatusReady,
		session:       session,
		users:         users,
		permissions:   permissions,
		logger:        logger,
	}
}

func (vm *UserViewModel) Load(ctx context.Context) error {
	if err := vm.permissions.Require(vm.session.CurrentUser(), auth.ActionManageUsers); err != nil {
		return vm.fail("Error loading users", err)
	}

	list, err := vm.users.GetAllUsers(ctx)
	if err != nil {
		return vm.fail("Error loading users", err)
	}
	vm.Users = list
	vm.notify(PropUsers)
	vm.setStatus(fmt.Sprintf("Loaded %d users", len(list)))
	return nil
}

// Select copies the user with id into the form.
func (vm *UserViewModel) Select(id int64) error {
	for _, u := range vm.Users {
		if u.ID != id {
			continue
		}
		vm.SelectedUser = u
		vm.Form = UserForm{
			Username:   u.Username,
			Email:      u.Email,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			Role:       u.Role,
			IsActive:   u.IsActive,
			Department: u.Department,
			Phone:      u.Phone,
		}
		vm.notify(PropSelectedUser, PropForm)
		return nil
	}
	return vm.fail("Error selecting user", errors.ErrUserNotFound)
}

func (vm *UserViewModel) AddUser(ctx context.Context, password string) (*user.User, error) {
	if err := vm.permissions.Require(vm.session.CurrentUser(), auth.ActionManageUsers); err != nil {
		return nil, vm.fail("Error adding user", err)
	}

	created, err := vm.users.CreateUser(ctx, user.CreateUserDTO{
		Username:   vm.Form.Username,
		Password:   password,
		FirstName:  vm.Form.FirstName,
		LastName:   vm.Form.LastName,
		Email:      vm.Form.Email,
		Role:       vm.Form.Role,
		Department: vm.Form.Department,
		Phone:      vm.Form.Phone,
	})
	if err != nil {
		return nil, vm.fail("Error adding user", err)
	}

	vm.ClearForm()
	if err := vm.Load(ctx); err != nil {
		return created, err
	}
	vm.setStatus("User added successfully")
	return created, nil
}

func (vm *UserViewModel) UpdateUser(ctx context.Context) (*user.User, error) {
	admin := vm.session.CurrentUser()
	if err := vm.permissions.Require(admin, auth.ActionManageUsers); err != nil {
		return nil, vm.fail("Error updating user", err)
	}
	if vm.SelectedUser == nil {
		vm.setStatus("Please select a user first.")
		return nil, errors.ErrUserNotFound
	}

	updated, err := vm.users.UpdateUser(errors.ContextWithUserID(ctx, admin.ID), vm.SelectedUser.ID, user.UpdateUserDTO{
		FirstName:  vm.Form.FirstName,
		LastName:   vm.Form.LastName,
		Role:       vm.Form.Role,
		IsActive:   vm.Form.IsActive,
		Department: vm.Form.Department,
		Phone:      vm.Form.Phone,
	})
	if err != nil {
		return nil, vm.fail("Error updating user", err)
	}

	if err := vm.Load(ctx); err != nil {
		return updated, err
	}
	vm.setStatus("User updated successfully")
	return updated, nil
}

func (vm *UserViewModel) DeleteUser(ctx context.Context) error {
	admin := vm.session.CurrentUser()
	if err := vm.permissions.Require(admin, auth.ActionManageUsers); err != nil {
		return vm.fail("Error deleting user", err)
	}
	if vm.SelectedUser == nil {
		vm.setStatus("Please select a user first.")
		return errors.ErrUserNotFound
	}
	if vm.SelectedUser.ID == admin.ID {
		return vm.fail("Error deleting user",
			errors.NewValidationError("you cannot delete your own account", errors.ErrCodeValidationFailed))
	}

	if err := vm.users.DeleteUser(ctx, vm.SelectedUser.ID); err != nil {
		return vm.fail("Error deleting user", err)
	}

	vm.ClearForm()
	if err := vm.Load(ctx); err != nil {
		return err
	}
	vm.setStatus("User deleted successfully")
	return nil
}

func (vm *UserViewModel) ClearForm() {
	vm.SelectedUser = nil
	vm.Form = emptyUserForm()
	vm.notify(PropSelectedUser, PropForm)
}

func (vm *UserViewModel) fail(prefix string, err error) error {
	vm.logger.Warn(prefix, "error", err)
	vm.setStatus(statusf(prefix, err))
	return err
}

func (vm *UserViewModel) setStatus(message string) {
	vm.StatusMessage = message
	vm.notify(PropStatusMessage)
}
