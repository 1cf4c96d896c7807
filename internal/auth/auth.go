package auth

import (
	"context"
	"strings"
	"time"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/core/common/validation"
	"github.com/frahmantamala/office-ticketing/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

// Credentials is the slice of a user row needed to check a password.
type Credentials struct {
	UserID       int64
	PasswordHash string
	IsActive     bool
}

// CredentialStore reads and replaces stored password hashes. Lookups return
// nil, nil when no row matches.
type CredentialStore interface {
	GetCredentials(ctx context.Context, username string) (*Credentials, error)
	GetCredentialsByID(ctx context.Context, userID int64) (*Credentials, error)
	UpdatePasswordHash(ctx context.Context, userID int64, hash string, updatedBy *int64, at time.Time) (bool, error)
}

type UserDirectory interface {
	GetUserByID(ctx context.Context, id int64) (*user.User, error)
	CreateUser(ctx context.Context, dto user.CreateUserDTO) (*user.User, error)
}

// TokenGenerator issues and checks the signed session token kept on disk
// between invocations.
type TokenGenerator interface {
	GenerateSessionToken(u *user.User) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents JWT token claims
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

// RegisterDTO is the self-service sign-up form. Accounts created through it
// always get the User role.
type RegisterDTO struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (d RegisterDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("username", strings.TrimSpace(d.Username)).Required().MaxLength(50)
	v.Field("password", d.Password).Required().MinLength(user.MinPasswordLength)
	v.Field("first_name", strings.TrimSpace(d.FirstName)).Required()
	v.Field("last_name", strings.TrimSpace(d.LastName)).Required()
	v.Field("email", strings.TrimSpace(d.Email)).Required().Email()
	return v.Validate()
}

func (d RegisterDTO) toCreateUser() user.CreateUserDTO {
	return user.CreateUserDTO{
		Username:  d.Username,
		Password:  d.Password,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Role:      user.RoleUser,
	}
}
