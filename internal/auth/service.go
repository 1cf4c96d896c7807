package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/core/common/validation"
	"github.com/frahmantamala/office-ticketing/internal/database"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

// Service authenticates users and holds the single current user of the
// process.
type Service struct {
	creds   CredentialStore
	users   UserDirectory
	hasher  *PasswordHasher
	logger  *slog.Logger
	now     func() time.Time
	current *user.User
}

// NewService creates a new auth service
func NewService(creds CredentialStore, users UserDirectory, hasher *PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		creds:  creds,
		users:  users,
		hasher: hasher,
		logger: logger,
		now:    database.NowUTC,
	}
}

// Authenticate checks the credentials of an active user and makes that user
// current. Unknown users, inactive users and wrong passwords all yield
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	username = strings.TrimSpace(username)
	if appErr := (LoginDTO{Username: username, Password: password}).Validate(); appErr != nil {
		return nil, appErr
	}

	c, err := s.creds.GetCredentials(ctx, username)
	if err != nil {
		s.logger.Error("failed to load credentials", "username", username, "error", err)
		return nil, errors.NewInternalError("failed to authenticate", err)
	}
	if c == nil || !c.IsActive || !s.hasher.Verify(c.PasswordHash, password) {
		s.logger.Info("login rejected", "username", username)
		return nil, errors.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(c.PasswordHash) {
		s.rehash(ctx, c.UserID, password)
	}

	u, err := s.users.GetUserByID(ctx, c.UserID)
	if err != nil {
		return nil, err
	}

	s.current = u
	s.logger.Info("user logged in", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return u, nil
}

func (s *Service) rehash(ctx context.Context, userID int64, password string) {
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("failed to rehash password", "user_id", userID, "error", err)
		return
	}
	if _, err := s.creds.UpdatePasswordHash(ctx, userID, newHash, nil, s.now()); err != nil {
		s.logger.Warn("failed to store rehashed password", "user_id", userID, "error", err)
		return
	}
	s.logger.Info("password rehashed", "user_id", userID)
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*user.User, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	u, err := s.users.CreateUser(ctx, dto.toCreateUser())
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// ChangePassword replaces the password of userID after checking the current
// one. The change is attributed to the acting user on ctx, falling back to the
// logged-in user.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if appErr := validateNewPassword(newPassword); appErr != nil {
		return appErr
	}

	c, err := s.creds.GetCredentialsByID(ctx, userID)
	if err != nil {
		return errors.NewInternalError("failed to load credentials", err)
	}
	if c == nil {
		return errors.ErrUserNotFound
	}
	if !s.hasher.Verify(c.PasswordHash, currentPassword) {
		return errors.ErrInvalidCredentials
	}

	var updatedBy *int64
	if id := errors.UserIDFromContext(ctx); id > 0 {
		updatedBy = &id
	} else if s.current != nil {
		id := s.current.ID
		updatedBy = &id
	}
	return s.storePassword(ctx, userID, newPassword, updatedBy)
}

// ResetPassword sets a new password without knowing the old one. Only admins
// may do this.
func (s *Service) ResetPassword(ctx context.Context, userID int64, newPassword string, resetBy int64) error {
	if appErr := validateNewPassword(newPassword); appErr != nil {
		return appErr
	}

	admin, err := s.users.GetUserByID(ctx, resetBy)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.ErrForbidden
		}
		return err
	}
	if !admin.IsAdmin() || !admin.IsActive {
		return errors.ErrForbidden
	}

	if err := s.storePassword(ctx, userID, newPassword, &resetBy); err != nil {
		return err
	}
	s.logger.Info("password reset", "user_id", userID, "reset_by", resetBy)
	return nil
}

func (s *Service) storePassword(ctx context.Context, userID int64, password string, updatedBy *int64) error {
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		return errors.NewInternalError("failed to hash password", err)
	}
	found, err := s.creds.UpdatePasswordHash(ctx, userID, newHash, updatedBy, s.now())
	if err != nil {
		s.logger.Error("failed to update password", "user_id", userID, "error", err)
		return errors.NewInternalError("failed to update password", err)
	}
	if !found {
		return errors.ErrUserNotFound
	}
	return nil
}

func validateNewPassword(password string) *errors.AppError {
	v := validation.NewValidator()
	v.Field("new_password", password).Required().MinLength(user.MinPasswordLength)
	return v.Validate()
}

func (s *Service) Logout() {
	if s.current != nil {
		s.logger.Info("user logged out", "user_id", s.current.ID)
	}
	s.current = nil
}

func (s *Service) CurrentUser() *user.User {
	return s.current
}

func (s *Service) IsAuthenticated() bool {
	return s.current != nil
}

// SetCurrentUser installs u without a password check. Session restore uses
// it after validating the stored token.
func (s *Service) SetCurrentUser(u *user.User) {
	s.current = u
}
