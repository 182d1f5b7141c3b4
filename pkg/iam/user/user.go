package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/Abraxas-365/authcore/pkg/ptrx"
	"github.com/google/uuid"
)

// ============================================================================
// Entity
// ============================================================================

// User is an identity record. It always has a password hash, a Google
// subject id, or both.
type User struct {
	ID           kernel.UserID `json:"id"`
	Username     string        `json:"userName"`
	Email        string        `json:"email"`
	PasswordHash *string       `json:"-"`
	GoogleID     *string       `json:"googleId,omitempty"`
	Role         kernel.Role   `json:"role"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// NewUser builds a user with a fresh id. An empty role becomes RoleUser.
func NewUser(username, email string, role kernel.Role) *User {
	if role.IsEmpty() {
		role = kernel.RoleUser
	}
	return &User{
		ID:        kernel.NewUserID(uuid.NewString()),
		Username:  strings.TrimSpace(username),
		Email:     NormalizeEmail(email),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) HasGoogleID() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}

// HasAuthMethod reports whether the user can log in at all.
func (u *User) HasAuthMethod() bool {
	return u.HasPassword() || u.HasGoogleID()
}

// LinkGoogle attaches a Google subject id if none is recorded yet.
// It reports whether the user changed.
func (u *User) LinkGoogle(subject string) bool {
	if u.HasGoogleID() || subject == "" {
		return false
	}
	u.GoogleID = ptrx.String(subject)
	return true
}

// ============================================================================
// DTOs
// ============================================================================

// PublicUser is the redacted projection returned after registration.
type PublicUser struct {
	ID        kernel.UserID `json:"id"`
	Username  string        `json:"userName"`
	Email     string        `json:"email"`
	Role      kernel.Role   `json:"role"`
	GoogleID  *string       `json:"googleId,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Summary is the user projection embedded in login responses.
type Summary struct {
	Username string      `json:"userName"`
	Email    string      `json:"email"`
	Role     kernel.Role `json:"role"`
}

func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		GoogleID:  u.GoogleID,
		CreatedAt: u.CreatedAt,
	}
}

func (u *User) Summary() Summary {
	return Summary{Username: u.Username, Email: u.Email, Role: u.Role}
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeUserNotFound      = ErrRegistry.Register("USER_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found!")
	CodeDuplicateIdentity = ErrRegistry.Register("DUPLICATE_IDENTITY", errx.TypeConflict, http.StatusConflict, "Username or email already in use")
)

func ErrUserNotFound() *errx.Error {
	return ErrRegistry.New(CodeUserNotFound)
}

func ErrDuplicateIdentity() *errx.Error {
	return ErrRegistry.New(CodeDuplicateIdentity)
}
