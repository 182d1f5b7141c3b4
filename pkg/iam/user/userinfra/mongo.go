package userinfra

import (
	"context"
	"errors"
	"time"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/user"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UsersCollection is the collection holding user documents
const UsersCollection = "users"

// MongoUserRepository is the MongoDB implementation of UserRepository.
// Uniqueness comes from the indexes created by EnsureIndexes.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(UsersCollection)}
}

var _ user.UserRepository = (*MongoUserRepository)(nil)

type userDocument struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash *string   `bson:"password_hash,omitempty"`
	GoogleID     *string   `bson:"google_id,omitempty"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
}

// EnsureIndexes creates the unique indexes. google_id is unique only among
// documents that have one.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_unique"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys: bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("google_id_unique").
				SetPartialFilterExpression(bson.M{"google_id": bson.M{"$exists": true}}),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return errx.Wrap(err, "failed to create user indexes", errx.TypeInternal)
	}
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, u *user.User) error {
	if _, err := r.coll.InsertOne(ctx, toDocument(u)); err != nil {
		return mapWriteError(err, "failed to create user").WithDetail("userName", u.Username)
	}
	return nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	if email == "" {
		return nil, user.ErrUserNotFound()
	}
	return r.findOne(ctx, bson.M{"email": user.NormalizeEmail(email)})
}

func (r *MongoUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error) {
	filter, ok := anyOf(bson.E{Key: "username", Value: username}, bson.E{Key: "email", Value: user.NormalizeEmail(email)})
	if !ok {
		return nil, user.ErrUserNotFound()
	}
	return r.findOne(ctx, filter)
}

func (r *MongoUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	if googleID == "" {
		return nil, user.ErrUserNotFound()
	}
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *MongoUserRepository) LinkGoogleID(ctx context.Context, id kernel.UserID, googleID string) error {
	filter := bson.M{"_id": id.String(), "google_id": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"google_id": googleID}}

	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return mapWriteError(err, "failed to link google id").WithDetail("user_id", id.String())
	}
	return nil
}

func (r *MongoUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, errx.Wrap(err, "failed to check username", errx.TypeInternal)
	}
	return n > 0, nil
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter any) (*user.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrUserNotFound()
		}
		return nil, errx.Wrap(err, "failed to find user", errx.TypeInternal)
	}
	return doc.toDomain(), nil
}

// anyOf builds an $or over the criteria with non-empty values.
func anyOf(criteria ...bson.E) (bson.M, bool) {
	var clauses bson.A
	for _, c := range criteria {
		if s, _ := c.Value.(string); s != "" {
			clauses = append(clauses, bson.D{c})
		}
	}
	if len(clauses) == 0 {
		return nil, false
	}
	return bson.M{"$or": clauses}, true
}

func mapWriteError(err error, message string) *errx.Error {
	if mongo.IsDuplicateKeyError(err) {
		return user.ErrDuplicateIdentity().WithCause(err)
	}
	return errx.Wrap(err, message, errx.TypeInternal)
}

func toDocument(u *user.User) userDocument {
	return userDocument{
		ID:           u.ID.String(),
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		GoogleID:     u.GoogleID,
		Role:         u.Role.String(),
		CreatedAt:    u.CreatedAt,
	}
}

func (d userDocument) toDomain() *user.User {
	return &user.User{
		ID:           kernel.NewUserID(d.ID),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		GoogleID:     d.GoogleID,
		Role:         kernel.Role(d.Role),
		CreatedAt:    d.CreatedAt,
	}
}
