package userinfra

import (
	"errors"
	"testing"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/user"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestAnyOf_SkipsEmptyCriteria(t *testing.T) {
	filter, ok := anyOf(bson.E{Key: "username", Value: ""}, bson.E{Key: "email", Value: "a@x.com"})
	assert.True(t, ok)
	assert.Equal(t, bson.M{"$or": bson.A{bson.D{{Key: "email", Value: "a@x.com"}}}}, filter)

	_, ok = anyOf(bson.E{Key: "username", Value: ""}, bson.E{Key: "email", Value: ""})
	assert.False(t, ok)
}

func TestMapWriteError(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.True(t, errx.HasCode(mapWriteError(dup, "insert"), user.CodeDuplicateIdentity))

	other := mapWriteError(errors.New("network"), "insert")
	assert.False(t, errx.HasCode(other, user.CodeDuplicateIdentity))
	assert.Equal(t, errx.TypeInternal, other.Type)
}

func TestUserDocument_OmitsAbsentGoogleID(t *testing.T) {
	u := newPasswordUser("alice", "a@x.com")

	raw, err := bson.Marshal(toDocument(u))
	assert.NoError(t, err)

	var m bson.M
	assert.NoError(t, bson.Unmarshal(raw, &m))
	_, has := m["google_id"]
	assert.False(t, has)
	assert.Equal(t, u.ID.String(), m["_id"])
}
