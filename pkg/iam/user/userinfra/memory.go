package userinfra

import (
	"context"
	"strings"
	"sync"

	"github.com/Abraxas-365/authcore/pkg/iam/user"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/Abraxas-365/authcore/pkg/ptrx"
)

// MemoryUserRepository keeps users in process memory. Uniqueness is checked
// under the write lock, so concurrent colliding creates see one winner.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[kernel.UserID]user.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[kernel.UserID]user.User)}
}

var _ user.UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.ID == u.ID ||
			existing.Username == u.Username ||
			strings.EqualFold(existing.Email, u.Email) ||
			(u.HasGoogleID() && existing.HasGoogleID() && *existing.GoogleID == *u.GoogleID) {
			return user.ErrDuplicateIdentity().WithDetail("userName", u.Username)
		}
	}

	r.users[u.ID] = clone(*u)
	return nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	return r.findFirst(func(u user.User) bool { return u.ID == id })
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	if email == "" {
		return nil, user.ErrUserNotFound()
	}
	return r.findFirst(func(u user.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *MemoryUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error) {
	if username == "" && email == "" {
		return nil, user.ErrUserNotFound()
	}
	return r.findFirst(func(u user.User) bool {
		return (username != "" && u.Username == username) ||
			(email != "" && strings.EqualFold(u.Email, email))
	})
}

func (r *MemoryUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	if googleID == "" {
		return nil, user.ErrUserNotFound()
	}
	return r.findFirst(func(u user.User) bool {
		return u.HasGoogleID() && *u.GoogleID == googleID
	})
}

func (r *MemoryUserRepository) LinkGoogleID(ctx context.Context, id kernel.UserID, googleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound().WithDetail("user_id", id.String())
	}
	if u.HasGoogleID() {
		return nil
	}
	for _, other := range r.users {
		if other.HasGoogleID() && *other.GoogleID == googleID {
			return user.ErrDuplicateIdentity().WithDetail("googleId", googleID)
		}
	}

	u.LinkGoogle(googleID)
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.findFirst(func(u user.User) bool { return u.Username == username })
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *MemoryUserRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryUserRepository) findFirst(match func(user.User) bool) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			found := clone(u)
			return &found, nil
		}
	}
	return nil, user.ErrUserNotFound()
}

// clone detaches the pointer fields so callers cannot mutate stored state.
func clone(u user.User) user.User {
	if u.PasswordHash != nil {
		u.PasswordHash = ptrx.Of(*u.PasswordHash)
	}
	if u.GoogleID != nil {
		u.GoogleID = ptrx.Of(*u.GoogleID)
	}
	return u
}
