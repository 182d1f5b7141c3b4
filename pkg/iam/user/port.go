package user

import (
	"context"

	"github.com/Abraxas-365/authcore/pkg/kernel"
)

// UserRepository is the credential store. Implementations enforce
// uniqueness of username, email and Google id and report collisions as
// DUPLICATE_IDENTITY. Lookups that match nothing return USER_NOT_FOUND.
type UserRepository interface {
	// Create persists a new user
	Create(ctx context.Context, u *User) error

	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsernameOrEmail matches on whichever arguments are non-empty
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)

	// FindByGoogleID matches the linked Google subject only
	FindByGoogleID(ctx context.Context, googleID string) (*User, error)

	// LinkGoogleID sets the Google id only when none is recorded
	LinkGoogleID(ctx context.Context, id kernel.UserID, googleID string) error

	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Ping checks store connectivity
	Ping(ctx context.Context) error
}
