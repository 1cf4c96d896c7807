package user

import (
	"fmt"
	"strings"
	"time"

	userDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/user"
)

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleAgent Role = "Agent"
	RoleUser  Role = "User"
)

var Roles = []Role{RoleAdmin, RoleAgent, RoleUser}

// ParseRole accepts any casing of a role name.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Phone        *string    `json:"phone,omitempty"`
	Department   *string    `json:"department,omitempty"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	UpdatedBy    *int64     `json:"updated_by,omitempty"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsAgent is true for agents and for admins, who can do everything an agent can.
func (u *User) IsAgent() bool {
	return u != nil && (u.Role == RoleAgent || u.Role == RoleAdmin)
}

func (u *User) IsRegularUser() bool {
	return u != nil && u.Role == RoleUser
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Department:   u.Department,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		UpdatedBy:    u.UpdatedBy,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Department:   u.Department,
		Role:         Role(u.Role),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		UpdatedBy:    u.UpdatedBy,
	}
}
