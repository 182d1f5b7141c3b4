package userinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/user"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "email", "password_hash", "google_id", "role", "created_at"}

func newPostgresRepoWithMock(t *testing.T) (*PostgresUserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresUserRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestPostgres_Create(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)
	u := newPasswordUser("alice", "a@x.com")

	mock.ExpectExec(`^INSERT INTO users \(id, username, email, password_hash, google_id, role, created_at\) VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\)$`).
		WithArgs(u.ID.String(), "alice", "a@x.com", "hash", nil, "user", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateUniqueViolation(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)

	mock.ExpectExec(`^INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	err := repo.Create(context.Background(), newPasswordUser("alice", "a@x.com"))
	assert.True(t, errx.HasCode(err, user.CodeDuplicateIdentity))
}

func TestPostgres_CreateOtherErrorIsInternal(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)

	mock.ExpectExec(`^INSERT INTO users`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), newPasswordUser("alice", "a@x.com"))
	var e *errx.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, errx.TypeInternal, e.Type)
	assert.False(t, errx.HasCode(err, user.CodeDuplicateIdentity))
}

func TestPostgres_FindByUsernameOrEmail_OnlyNonEmptyCriteria(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM users WHERE username = \$1 LIMIT 1$`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-1", "alice", "a@x.com", "hash", nil, "manager", created))

	got, err := repo.FindByUsernameOrEmail(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID.String())
	assert.Equal(t, "manager", got.Role.String())
	assert.True(t, got.HasPassword())
	assert.Nil(t, got.GoogleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindByGoogleID(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)

	mock.ExpectQuery(`FROM users WHERE google_id = \$1$`).
		WithArgs("sub-1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-1", "alice", "a@x.com", nil, "sub-1", "user", time.Now()))

	got, err := repo.FindByGoogleID(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.False(t, got.HasPassword())
	assert.Equal(t, "sub-1", *got.GoogleID)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = repo.FindByGoogleID(context.Background(), "")
	assert.True(t, errx.HasCode(err, user.CodeUserNotFound))
}

func TestPostgres_FindByID_NotFound(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)

	mock.ExpectQuery(`FROM users WHERE id = \$1$`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, errx.HasCode(err, user.CodeUserNotFound))
}

func TestPostgres_LinkGoogleID(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)

	mock.ExpectExec(`^UPDATE users SET google_id = \$2 WHERE id = \$1 AND google_id IS NULL$`).
		WithArgs("u-1", "sub-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.LinkGoogleID(context.Background(), "u-1", "sub-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ExistsByUsername(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)

	mock.ExpectQuery(`^SELECT EXISTS\(SELECT 1 FROM users WHERE username = \$1\)$`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}
