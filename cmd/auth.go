package cmd

import (
	"fmt"

	"github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/viewmodel"
	"github.com/spf13/cobra"
)

var (
	loginPassword string

	registerFirstName string
	registerLastName  string
	registerEmail     string
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in and keep the session for later commands",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		p := newPrompter(cmd)
		vm := viewmodel.NewLoginViewModel(a.Auth, a.Bus, a.Logger)

		var err error
		if len(args) == 1 {
			vm.Username = args[0]
		} else if vm.Username, err = p.line("Username: "); err != nil {
			return err
		}
		password := loginPassword
		if password == "" {
			if password, err = p.password("Password: "); err != nil {
				return err
			}
		}

		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		u, err := vm.Login(ctx, password)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), vm.ErrorMessage)
			return reportedError{err}
		}

		a.printf("Welcome, %s (%s)\n", u.FullName(), u.Role)
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the stored session",
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *App) error {
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		u, err := a.Session.Restore(ctx)
		if err != nil && !internal.IsUnauthorized(err) {
			return err
		}
		if u == nil {
			a.println("Not logged in")
			return nil
		}

		vm := a.mainViewModel()
		vm.CurrentUser = u
		if err := vm.Logout(ctx); err != nil {
			return err
		}
		a.println(vm.StatusMessage)
		return nil
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register [username]",
	Short: "Create a regular user account",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		p := newPrompter(cmd)
		vm := viewmodel.NewRegisterViewModel(a.Auth, a.Bus, a.Logger)

		var err error
		username := ""
		if len(args) == 1 {
			username = args[0]
		}
		if vm.Username, err = p.valueOr(username, "Username: "); err != nil {
			return err
		}
		if vm.FirstName, err = p.valueOr(registerFirstName, "First name: "); err != nil {
			return err
		}
		if vm.LastName, err = p.valueOr(registerLastName, "Last name: "); err != nil {
			return err
		}
		if vm.Email, err = p.valueOr(registerEmail, "Email: "); err != nil {
			return err
		}
		password, err := p.password("Password: ")
		if err != nil {
			return err
		}
		confirm, err := p.password("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return internal.NewValidationFieldError("confirm_password", "passwords do not match", internal.ErrCodeValidationFailed)
		}

		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		u, err := vm.Register(ctx, password)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), vm.ErrorMessage)
			return reportedError{err}
		}
		a.printf("Account %s created. Run `ticketing login %s` to sign in.\n", u.Username, u.Username)
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *App) error {
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		u, err := a.RequireUser(ctx)
		if err != nil {
			return err
		}
		a.printf("%s (%s) <%s>, role %s\n", u.Username, u.FullName(), u.Email, u.Role)
		return nil
	}),
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *App) error {
		p := newPrompter(cmd)

		u, err := a.RequireUser(cmd.Context())
		if err != nil {
			return err
		}
		current, err := p.password("Current password: ")
		if err != nil {
			return err
		}
		next, err := p.password("New password: ")
		if err != nil {
			return err
		}

		ctx, cancel := a.timeout(internal.ContextWithUserID(cmd.Context(), u.ID))
		defer cancel()

		if err := a.Auth.ChangePassword(ctx, u.ID, current, next); err != nil {
			return err
		}
		a.println("Password changed")
		return nil
	}),
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerFirstName, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&registerLastName, "last-name", "", "last name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "email address")
}
