package cmd

import (
	"github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/auth"
	"github.com/frahmantamala/office-ticketing/internal/user"
	"github.com/frahmantamala/office-ticketing/internal/viewmodel"
	"github.com/spf13/cobra"
)

var userOpts struct {
	email      string
	firstName  string
	lastName   string
	role       string
	department string
	phone      string
	inactive   bool
}

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Manage user accounts (admin only)",
}

func (a *App) userViewModel() *viewmodel.UserViewModel {
	return viewmodel.NewUserViewModel(a.Auth, a.Users, a.Permissions, a.Logger)
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *App) error {
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		if _, err := a.RequireUser(ctx); err != nil {
			return err
		}
		vm := a.userViewModel()
		if err := vm.Load(ctx); err != nil {
			return err
		}
		a.println(a.Renderer.UserList(vm.Users))
		a.println(a.Renderer.Status(vm.StatusMessage))
		return nil
	}),
}

var usersCreateCmd = &cobra.Command{
	Use:   "create USERNAME",
	Short: "Add a user account",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		p := newPrompter(cmd)
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		if _, err := a.RequireUser(ctx); err != nil {
			return err
		}

		vm := a.userViewModel()
		vm.Form.Username = args[0]
		if err := applyUserFlags(cmd, &vm.Form); err != nil {
			return err
		}
		password, err := p.password("Password: ")
		if err != nil {
			return err
		}

		if _, err := vm.AddUser(ctx, password); err != nil {
			return err
		}
		a.println(a.Renderer.Status(vm.StatusMessage))
		return nil
	}),
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change the name, role, status or contact details of a user",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		id, err := parseID("user id", args[0])
		if err != nil {
			return err
		}
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		if _, err := a.RequireUser(ctx); err != nil {
			return err
		}
		vm := a.userViewModel()
		if err := vm.Load(ctx); err != nil {
			return err
		}
		if err := vm.Select(id); err != nil {
			return err
		}
		if err := applyUserFlags(cmd, &vm.Form); err != nil {
			return err
		}

		if _, err := vm.UpdateUser(ctx); err != nil {
			return err
		}
		a.println(a.Renderer.Status(vm.StatusMessage))
		return nil
	}),
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a user account",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		id, err := parseID("user id", args[0])
		if err != nil {
			return err
		}
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		if _, err := a.RequireUser(ctx); err != nil {
			return err
		}
		vm := a.userViewModel()
		if err := vm.Load(ctx); err != nil {
			return err
		}
		if err := vm.Select(id); err != nil {
			return err
		}
		if err := vm.DeleteUser(ctx); err != nil {
			return err
		}
		a.println(a.Renderer.Status(vm.StatusMessage))
		return nil
	}),
}

var usersResetPasswordCmd = &cobra.Command{
	Use:   "reset-password ID",
	Short: "Set a new password for a user",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		id, err := parseID("user id", args[0])
		if err != nil {
			return err
		}
		u, err := a.RequireUser(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.Permissions.Require(u, auth.ActionManageUsers); err != nil {
			return err
		}
		password, err := newPrompter(cmd).password("New password: ")
		if err != nil {
			return err
		}

		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		if err := a.Auth.ResetPassword(ctx, id, password, u.ID); err != nil {
			return err
		}
		a.println("Password reset")
		return nil
	}),
}

// applyUserFlags copies the flags that were given onto form.
func applyUserFlags(cmd *cobra.Command, form *viewmodel.UserForm) error {
	flags := cmd.Flags()
	if flags.Changed("email") {
		form.Email = userOpts.email
	}
	if flags.Changed("first-name") {
		form.FirstName = userOpts.firstName
	}
	if flags.Changed("last-name") {
		form.LastName = userOpts.lastName
	}
	if flags.Changed("role") {
		role, err := user.ParseRole(userOpts.role)
		if err != nil {
			return internal.NewValidationFieldError("role", err.Error(), internal.ErrCodeInvalidRole)
		}
		form.Role = role
	}
	if flags.Changed("department") {
		form.Department = optional(userOpts.department)
	}
	if flags.Changed("phone") {
		form.Phone = optional(userOpts.phone)
	}
	if flags.Changed("inactive") {
		form.IsActive = !userOpts.inactive
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func init() {
	for _, c := range []*cobra.Command{usersCreateCmd, usersUpdateCmd} {
		f := c.Flags()
		f.StringVar(&userOpts.firstName, "first-name", "", "first name")
		f.StringVar(&userOpts.lastName, "last-name", "", "last name")
		f.StringVar(&userOpts.role, "role", "", "Admin, Agent or User")
		f.StringVar(&userOpts.department, "department", "", "department")
		f.StringVar(&userOpts.phone, "phone", "", "phone number")
	}
	usersUpdateCmd.Flags().BoolVar(&userOpts.inactive, "inactive", false, "disable the account")
	usersCreateCmd.Flags().StringVar(&userOpts.email, "email", "", "email address")

	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd, usersResetPasswordCmd)
}
