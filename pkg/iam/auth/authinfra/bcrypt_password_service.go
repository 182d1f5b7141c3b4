package authinfra

import (
	"errors"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input beyond this many bytes, so longer passwords are refused
const maxPasswordBytes = 72

// BcryptPasswordService implements auth.PasswordService with bcrypt
type BcryptPasswordService struct {
	cost int
}

// NewBcryptPasswordService uses bcrypt.DefaultCost (10) when cost is out of range
func NewBcryptPasswordService(cost int) *BcryptPasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordService{cost: cost}
}

var _ auth.PasswordService = (*BcryptPasswordService)(nil)

func (s *BcryptPasswordService) HashPassword(plain string) (string, error) {
	if len(plain) > maxPasswordBytes {
		return "", auth.ErrRegistry.New(auth.CodePasswordTooLong)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", auth.ErrRegistry.New(auth.CodePasswordTooLong)
		}
		return "", errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}
	return string(hash), nil
}

func (s *BcryptPasswordService) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
