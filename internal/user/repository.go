package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email uniqueness constraint rejected a write.
	ErrEmailTaken = errors.New("email already registered")
)

const uniqueViolation = "23505"

// Repository persists users. Implementations must enforce email uniqueness.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByRefreshToken(ctx context.Context, token string) (User, error)
	Update(ctx context.Context, user User) error
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error
	// ClearRefreshToken drops the stored session token wherever it matches.
	// A missing match is not an error.
	ClearRefreshToken(ctx context.Context, token string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, name, email, password_hash, photo, is_verified, otp, otp_expires_at, roles, refresh_token, created_at, updated_at`

// Create inserts a new user, mapping unique violations to ErrEmailTaken.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (`+userColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		userID, user.Name, user.Email, user.PasswordHash, user.Photo, user.IsVerified,
		nullString(user.OTP), nullTime(user.OTPExpiresAt), RolesToStrings(user.Roles),
		nullString(user.RefreshToken), user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// FindByEmail fetches a user by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByRefreshToken fetches the user currently holding the session token.
func (r *PostgresRepository) FindByRefreshToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE refresh_token = $1`, token)
	return scanUser(row)
}

// Update persists the full mutable state of a user record.
func (r *PostgresRepository) Update(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users
        SET name = $1, email = $2, password_hash = $3, photo = $4, is_verified = $5,
            otp = $6, otp_expires_at = $7, roles = $8, refresh_token = $9, updated_at = $10
        WHERE id = $11`,
		user.Name, user.Email, user.PasswordHash, user.Photo, user.IsVerified,
		nullString(user.OTP), nullTime(user.OTPExpiresAt), RolesToStrings(user.Roles),
		nullString(user.RefreshToken), time.Now().UTC(), userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all users ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Delete removes a user record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearRefreshToken ends whichever session holds the token.
func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, err := r.db.Exec(ctx, `UPDATE users SET refresh_token = NULL, updated_at = $1
        WHERE refresh_token = $2`, time.Now().UTC(), token)
	return err
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u         User
		id        uuid.UUID
		otp       *string
		otpExp    *time.Time
		roles     []string
		refresh   *string
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &u.Photo, &u.IsVerified,
		&otp, &otpExp, &roles, &refresh, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.ID = id.String()
	if otp != nil {
		u.OTP = *otp
	}
	if otpExp != nil {
		u.OTPExpiresAt = otpExp.UTC()
	}
	u.Roles = RolesFromStrings(roles)
	if refresh != nil {
		u.RefreshToken = *refresh
	}
	u.CreatedAt = createdAt.UTC()
	u.UpdatedAt = updatedAt.UTC()
	return u, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}
