package user

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/office-ticketing/internal"
	userDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/user"
	"github.com/frahmantamala/office-ticketing/internal/database"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetByRole(ctx context.Context, role string) ([]*userDatamodel.User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	Deactivate(ctx context.Context, id int64, at time.Time) (bool, error)
}

// PasswordHasher turns a plaintext password into a stored credential.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type Service struct {
	repo   RepositoryAPI
	hasher PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
		now:    database.NowUTC,
	}
}

func (s *Service) GetAllUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get users from repository", "error", err)
		return nil, errors.NewInternalError("failed to load users", err)
	}
	return fromDataModels(rows), nil
}

func (s *Service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get user", "user_id", id, "error", err)
		return nil, errors.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, errors.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		s.logger.Error("failed to get user by username", "username", username, "error", err)
		return nil, errors.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, errors.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) GetUsersByRole(ctx context.Context, role Role) ([]*User, error) {
	rows, err := s.repo.GetByRole(ctx, string(role))
	if err != nil {
		s.logger.Error("failed to get users by role", "role", role, "error", err)
		return nil, errors.NewInternalError("failed to load users", err)
	}
	return fromDataModels(rows), nil
}

// HasUsers reports whether at least one account exists. Seeding keys off it.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, errors.NewInternalError("failed to count users", err)
	}
	return n > 0, nil
}

func (s *Service) CreateUser(ctx context.Context, dto CreateUserDTO) (*User, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	if existing, err := s.repo.GetByUsername(ctx, dto.Username); err != nil {
		return nil, errors.NewInternalError("failed to check username", err)
	} else if existing != nil {
		return nil, errors.ErrUsernameTaken
	}

	if existing, err := s.repo.GetByEmail(ctx, dto.Email); err != nil {
		return nil, errors.NewInternalError("failed to check email", err)
	} else if existing != nil {
		return nil, errors.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Username:     dto.Username,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		PasswordHash: hash,
		Phone:        dto.Phone,
		Department:   dto.Department,
		Role:         dto.Role,
		IsActive:     true,
		CreatedAt:    s.now(),
	}

	row := ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, errors.ErrUsernameTaken.WithCause(err)
		}
		s.logger.Error("failed to create user", "username", dto.Username, "error", err)
		return nil, errors.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", row.ID, "username", row.Username, "role", row.Role)
	return FromDataModel(row), nil
}

// UpdateUser overwrites profile fields. Username, email, password hash and
// creation time always keep their stored values. The acting user on ctx is
// recorded as the editor.
func (s *Service) UpdateUser(ctx context.Context, id int64, dto UpdateUserDTO) (*User, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, errors.ErrUserNotFound
	}

	now := s.now()
	row.FirstName = dto.FirstName
	row.LastName = dto.LastName
	row.Role = string(dto.Role)
	row.IsActive = dto.IsActive
	row.Department = dto.Department
	row.Phone = dto.Phone
	row.UpdatedAt = &now
	if updatedBy := errors.UserIDFromContext(ctx); updatedBy > 0 {
		row.UpdatedBy = &updatedBy
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update user", err)
	}

	return FromDataModel(row), nil
}

// DeleteUser deactivates the account. Tickets and comments keep pointing at it.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	found, err := s.repo.Deactivate(ctx, id, s.now())
	if err != nil {
		s.logger.Error("failed to deactivate user", "user_id", id, "error", err)
		return errors.NewInternalError("failed to delete user", err)
	}
	if !found {
		return errors.ErrUserNotFound
	}
	s.logger.Info("user deactivated", "user_id", id)
	return nil
}

func fromDataModels(rows []*userDatamodel.User) []*User {
	users := make([]*User, 0, len(rows))
	for _, r := range rows {
		users = append(users, FromDataModel(r))
	}
	return users
}
