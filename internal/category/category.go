package category

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no category matches the id.
	ErrNotFound = errors.New("category not found")
	// ErrSlugTaken indicates the slug uniqueness constraint rejected a write.
	ErrSlugTaken = errors.New("category slug already in use")
)

const uniqueViolation = "23505"

// Category groups catalog entries. Parent links model secondary and tertiary
// levels.
type Category struct {
	ID        string
	Name      string
	Slug      string
	Thumbnail string
	ParentID  string
}

// Repository persists categories.
type Repository interface {
	Create(ctx context.Context, cat Category) error
	Get(ctx context.Context, id string) (Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, cat Category) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository stores categories in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a category record.
func (r *PostgresRepository) Create(ctx context.Context, cat Category) error {
	catID, err := uuid.Parse(cat.ID)
	if err != nil {
		return err
	}
	var parent *uuid.UUID
	if cat.ParentID != "" {
		parsed, err := uuid.Parse(cat.ParentID)
		if err != nil {
			return err
		}
		parent = &parsed
	}
	_, err = r.db.Exec(ctx, `INSERT INTO categories (id, name, slug, thumbnail, parent_id)
        VALUES ($1, $2, $3, $4, $5)`, catID, cat.Name, cat.Slug, cat.Thumbnail, parent)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrSlugTaken
	}
	return err
}

// Get fetches a category by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Category, error) {
	catID, err := uuid.Parse(id)
	if err != nil {
		return Category{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, slug, thumbnail, parent_id FROM categories WHERE id = $1`, catID)
	return scanCategory(row)
}

// List returns all categories.
func (r *PostgresRepository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug, thumbnail, parent_id FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// Update persists the full category state.
func (r *PostgresRepository) Update(ctx context.Context, cat Category) error {
	catID, err := uuid.Parse(cat.ID)
	if err != nil {
		return ErrNotFound
	}
	var parent *uuid.UUID
	if cat.ParentID != "" {
		parsed, err := uuid.Parse(cat.ParentID)
		if err != nil {
			return err
		}
		parent = &parsed
	}
	cmd, err := r.db.Exec(ctx, `UPDATE categories SET name = $1, slug = $2, thumbnail = $3, parent_id = $4
        WHERE id = $5`, cat.Name, cat.Slug, cat.Thumbnail, parent, catID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlugTaken
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a category record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	catID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, catID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (Category, error) {
	var (
		cat    Category
		id     uuid.UUID
		parent *uuid.UUID
	)
	err := row.Scan(&id, &cat.Name, &cat.Slug, &cat.Thumbnail, &parent)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, err
	}
	cat.ID = id.String()
	if parent != nil {
		cat.ParentID = parent.String()
	}
	return cat, nil
}
