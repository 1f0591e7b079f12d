package user

import (
	"net/http"
	"time"

	"github.com/marcyhel/room-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusForbidden, "user is inactive")
	ErrNameRequired       = apperror.New(http.StatusBadRequest, "name is required")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
	ErrInvalidRole        = apperror.New(http.StatusBadRequest, "invalid role")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account in the system.
type User struct {
	ID           string // UUID
	Name         string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// IsAdmin reports whether the user holds administrative authority.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Filter defines filter options for listing users.
type Filter struct {
	Search   string // matches name, last name or email
	Role     string
	IsActive *bool // pointer to distinguish false from not-set

	Page     int
	PageSize int
}
