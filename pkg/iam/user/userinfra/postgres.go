package userinfra

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/user"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/Abraxas-365/authcore/pkg/ptrx"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const pgUniqueViolation = "23505"

const userColumns = `id, username, email, password_hash, google_id, role, created_at`

// PostgresUserRepository is the PostgreSQL implementation of UserRepository
type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

var _ user.UserRepository = (*PostgresUserRepository)(nil)

// userRow is the persisted form of user.User
type userRow struct {
	ID           string         `db:"id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	PasswordHash sql.NullString `db:"password_hash"`
	GoogleID     sql.NullString `db:"google_id"`
	Role         string         `db:"role"`
	CreatedAt    time.Time      `db:"created_at"`
}

// Migrate applies the embedded schema migrations.
func (r *PostgresUserRepository) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errx.Wrap(err, "failed to set migration dialect", errx.TypeInternal)
	}
	if err := goose.UpContext(ctx, r.db.DB, "migrations"); err != nil {
		return errx.Wrap(err, "failed to run user migrations", errx.TypeInternal)
	}
	return nil
}

// Create inserts a new user
func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	row := toRow(u)
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.Username, row.Email, row.PasswordHash, row.GoogleID, row.Role, row.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrDuplicateIdentity().WithDetail("userName", u.Username)
		}
		return errx.Wrap(err, "failed to create user", errx.TypeInternal)
	}
	return nil
}

// FindByID looks a user up by id
func (r *PostgresUserRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())
}

// FindByEmail looks a user up by email
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	if email == "" {
		return nil, user.ErrUserNotFound()
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, user.NormalizeEmail(email))
}

// FindByUsernameOrEmail matches on the non-empty criteria
func (r *PostgresUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error) {
	return r.findByAny(ctx, map[string]string{
		"username": username,
		"email":    user.NormalizeEmail(email),
	})
}

// FindByGoogleID looks a user up by linked Google subject
func (r *PostgresUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	if googleID == "" {
		return nil, user.ErrUserNotFound()
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID)
}

// LinkGoogleID sets google_id when it is still NULL
func (r *PostgresUserRepository) LinkGoogleID(ctx context.Context, id kernel.UserID, googleID string) error {
	query := `UPDATE users SET google_id = $2 WHERE id = $1 AND google_id IS NULL`

	if _, err := r.db.ExecContext(ctx, query, id.String(), googleID); err != nil {
		if isUniqueViolation(err) {
			return user.ErrDuplicateIdentity().WithDetail("googleId", googleID)
		}
		return errx.Wrap(err, "failed to link google id", errx.TypeInternal).
			WithDetail("user_id", id.String())
	}
	return nil
}

// ExistsByUsername reports whether the username is taken
func (r *PostgresUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, errx.Wrap(err, "failed to check username", errx.TypeInternal)
	}
	return exists, nil
}

func (r *PostgresUserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// findByAny builds an OR over the non-empty criteria in column order.
func (r *PostgresUserRepository) findByAny(ctx context.Context, criteria map[string]string) (*user.User, error) {
	var (
		conds []string
		args  []any
	)
	for _, col := range []string{"username", "email", "google_id"} {
		if v := criteria[col]; v != "" {
			args = append(args, v)
			conds = append(conds, col+" = $"+strconv.Itoa(len(args)))
		}
	}
	if len(conds) == 0 {
		return nil, user.ErrUserNotFound()
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(conds, " OR ") + ` LIMIT 1`
	return r.getOne(ctx, query, args...)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, args ...any) (*user.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound()
		}
		return nil, errx.Wrap(err, "failed to find user", errx.TypeInternal)
	}
	return row.toDomain(), nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

func toRow(u *user.User) userRow {
	row := userRow{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
	row.PasswordHash = sql.NullString{String: ptrx.Value(u.PasswordHash), Valid: u.PasswordHash != nil}
	row.GoogleID = sql.NullString{String: ptrx.Value(u.GoogleID), Valid: u.GoogleID != nil}
	return row
}

func (row userRow) toDomain() *user.User {
	u := &user.User{
		ID:        kernel.NewUserID(row.ID),
		Username:  row.Username,
		Email:     row.Email,
		Role:      kernel.Role(row.Role),
		CreatedAt: row.CreatedAt,
	}
	if row.PasswordHash.Valid {
		u.PasswordHash = ptrx.String(row.PasswordHash.String)
	}
	if row.GoogleID.Valid {
		u.GoogleID = ptrx.String(row.GoogleID.String)
	}
	return u
}
