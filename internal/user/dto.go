package user

import (
	"strings"

	errors "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/core/common/validation"
)

const MinPasswordLength = 6

type CreateUserDTO struct {
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Role       Role    `json:"role"`
	Department *string `json:"department,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

func (d *CreateUserDTO) Normalize() {
	d.Username = strings.TrimSpace(d.Username)
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if d.Role == "" {
		d.Role = RoleUser
	}
}

func (d CreateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MaxLength(50)
	v.Field("password", d.Password).Required().MinLength(MinPasswordLength)
	v.Field("first_name", d.FirstName).Required().MaxLength(100)
	v.Field("last_name", d.LastName).Required().MaxLength(100)
	v.Field("email", d.Email).Required().Email().MaxLength(255)
	v.Field("role", d.Role).OneOf(errors.ErrCodeInvalidRole, roleNames()...)
	v.Field("department", d.Department).MaxLength(100)
	v.Field("phone", d.Phone).MaxLength(50)
	return v.Validate()
}

// UpdateUserDTO carries the fields a generic update may overwrite. Identity
// fields are deliberately absent.
type UpdateUserDTO struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Role       Role    `json:"role"`
	IsActive   bool    `json:"is_active"`
	Department *string `json:"department,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

func (d UpdateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("first_name", d.FirstName).Required().MaxLength(100)
	v.Field("last_name", d.LastName).Required().MaxLength(100)
	v.Field("role", d.Role).OneOf(errors.ErrCodeInvalidRole, roleNames()...)
	v.Field("department", d.Department).MaxLength(100)
	v.Field("phone", d.Phone).MaxLength(50)
	return v.Validate()
}

func roleNames() []string {
	names := make([]string, len(Roles))
	for i, r := range Roles {
		names[i] = string(r)
	}
	return names
}
