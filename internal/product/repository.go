package product

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no product matches the id.
	ErrNotFound = errors.New("product not found")
	// ErrSlugTaken indicates the slug uniqueness constraint rejected a write.
	ErrSlugTaken = errors.New("product slug already in use")
)

const uniqueViolation = "23505"

// Repository persists catalog entries.
type Repository interface {
	Create(ctx context.Context, p Product) error
	Get(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository stores products in PostgreSQL. Nested category refs and
// variants live in jsonb columns.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `id, name, slug, photos, description, meta_key, price, discount, default_price, stock_status, status, categories, variants`

// Create inserts a product record.
func (r *PostgresRepository) Create(ctx context.Context, p Product) error {
	productID, err := uuid.Parse(p.ID)
	if err != nil {
		return err
	}
	categories, variants, err := encodeNested(p)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO products (`+productColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		productID, p.Name, p.Slug, p.Photos, p.Description, p.MetaKey,
		p.Price, p.Discount, p.DefaultPrice, p.StockStatus, p.Status, categories, variants)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrSlugTaken
	}
	return err
}

// Get fetches a product by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return Product{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID)
	return scanProduct(row)
}

// List returns the full catalog.
func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Update persists the full product state.
func (r *PostgresRepository) Update(ctx context.Context, p Product) error {
	productID, err := uuid.Parse(p.ID)
	if err != nil {
		return ErrNotFound
	}
	categories, variants, err := encodeNested(p)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE products
        SET name = $1, slug = $2, photos = $3, description = $4, meta_key = $5,
            price = $6, discount = $7, default_price = $8, stock_status = $9,
            status = $10, categories = $11, variants = $12
        WHERE id = $13`,
		p.Name, p.Slug, p.Photos, p.Description, p.MetaKey,
		p.Price, p.Discount, p.DefaultPrice, p.StockStatus, p.Status,
		categories, variants, productID)
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

// Delete removes a product record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeNested(p Product) ([]byte, []byte, error) {
	categories, err := json.Marshal(p.Categories)
	if err != nil {
		return nil, nil, err
	}
	variants, err := json.Marshal(p.Variants)
	if err != nil {
		return nil, nil, err
	}
	return categories, variants, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p          Product
		id         uuid.UUID
		categories []byte
		variants   []byte
	)
	err := row.Scan(&id, &p.Name, &p.Slug, &p.Photos, &p.Description, &p.MetaKey,
		&p.Price, &p.Discount, &p.DefaultPrice, &p.StockStatus, &p.Status, &categories, &variants)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	p.ID = id.String()
	if err := json.Unmarshal(categories, &p.Categories); err != nil {
		return Product{}, err
	}
	if err := json.Unmarshal(variants, &p.Variants); err != nil {
		return Product{}, err
	}
	return p, nil
}
