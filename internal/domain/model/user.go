//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
)

const maxUserNameLen = 255

// User is the application-side mirror of an identity held by the auth provider.
type User struct {
	ID        string          `json:"id"         db:"id"`
	Email     string          `json:"email"      db:"email"`
	Name      string          `json:"name"       db:"name"`
	Role      domainauth.Role `json:"role"       db:"role"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the stored role is admin.
func (u *User) IsAdmin() bool { return u != nil && u.Role == domainauth.RoleAdmin }

// CreateUserRequest represents parameters to create a User.
// ID is optional; when empty the database assigns one.
type CreateUserRequest struct {
	ID    string          `json:"id,omitempty"`
	Email string          `json:"email"`
	Name  string          `json:"name"`
	Role  domainauth.Role `json:"role"`
}

// Validate normalizes and validates the request in place.
func (r *CreateUserRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	if r.Email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("email is invalid")
	}
	if len(r.Name) > maxUserNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	switch r.Role {
	case "":
		r.Role = domainauth.RoleUser
	case domainauth.RoleAdmin, domainauth.RoleUser:
	default:
		return errors.New("role must be admin or user")
	}
	return nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
