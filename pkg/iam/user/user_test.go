package user

import (
	"encoding/json"
	"testing"

	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/Abraxas-365/authcore/pkg/ptrx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_Defaults(t *testing.T) {
	u := NewUser(" alice ", "A@X.com", "")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, kernel.RoleUser, u.Role)
	assert.False(t, u.HasAuthMethod())
}

func TestLinkGoogle_SetOnce(t *testing.T) {
	u := NewUser("alice", "a@x.com", kernel.RoleUser)

	assert.True(t, u.LinkGoogle("sub-1"))
	assert.False(t, u.LinkGoogle("sub-2"))
	assert.Equal(t, "sub-1", *u.GoogleID)
}

func TestUser_JSONNeverContainsHash(t *testing.T) {
	u := NewUser("alice", "a@x.com", kernel.RoleUser)
	u.PasswordHash = ptrx.String("$2a$10$secret")

	for _, v := range []any{u, u.ToPublic(), u.Summary()} {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "secret")
		assert.NotContains(t, string(raw), "password")
	}
}
