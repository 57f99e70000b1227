package address

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no address matches the id.
var ErrNotFound = errors.New("address not found")

// Address is a shipping destination.
type Address struct {
	ID          string
	Division    string
	District    string
	SubDistrict string
	Line        string
	Name        string
	Phone       string
}

// Repository persists shipping addresses.
type Repository interface {
	Create(ctx context.Context, a Address) error
	Get(ctx context.Context, id string) (Address, error)
	List(ctx context.Context) ([]Address, error)
	Update(ctx context.Context, a Address) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository stores addresses in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an address record.
func (r *PostgresRepository) Create(ctx context.Context, a Address) error {
	addressID, err := uuid.Parse(a.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO addresses (id, division, district, sub_district, line, name, phone)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		addressID, a.Division, a.District, a.SubDistrict, a.Line, a.Name, a.Phone)
	return err
}

// Get fetches an address by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Address, error) {
	addressID, err := uuid.Parse(id)
	if err != nil {
		return Address{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, division, district, sub_district, line, name, phone
        FROM addresses WHERE id = $1`, addressID)
	return scanAddress(row)
}

// List returns all addresses.
func (r *PostgresRepository) List(ctx context.Context) ([]Address, error) {
	rows, err := r.db.Query(ctx, `SELECT id, division, district, sub_district, line, name, phone
        FROM addresses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

// Update persists the full address state.
func (r *PostgresRepository) Update(ctx context.Context, a Address) error {
	addressID, err := uuid.Parse(a.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE addresses
        SET division = $1, district = $2, sub_district = $3, line = $4, name = $5, phone = $6
        WHERE id = $7`,
		a.Division, a.District, a.SubDistrict, a.Line, a.Name, a.Phone, addressID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an address record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	addressID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, addressID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAddress(row pgx.Row) (Address, error) {
	var (
		a  Address
		id uuid.UUID
	)
	err := row.Scan(&id, &a.Division, &a.District, &a.SubDistrict, &a.Line, &a.Name, &a.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}
	a.ID = id.String()
	return a, nil
}
