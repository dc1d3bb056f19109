package postgres

import (
	"context"
	"database/sql"

	"inventario/internal/model"
	"inventario/internal/repository"
)

// ProductPostgres is a PostgreSQL implementation of repository.ProductRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ProductPostgres struct {
	db *sql.DB
}

// NewProductPostgres creates a new ProductPostgres repository.
func NewProductPostgres(db *sql.DB) *ProductPostgres {
	return &ProductPostgres{db: db}
}

var _ repository.ProductRepository = (*ProductPostgres)(nil)

const productColumns = `id, producto, cantidad, imagen_url, video_url`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*model.Product, error) {
	var (
		p     model.Product
		image sql.NullString
		video sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Quantity, &image, &video); err != nil {
		return nil, err
	}
	if image.Valid {
		p.Image = &image.String
	}
	if video.Valid {
		p.Video = &video.String
	}
	return &p, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Create inserts a new product row and returns the stored record with its assigned ID.
func (r *ProductPostgres) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	const q = `
		INSERT INTO productos (producto, cantidad, imagen_url, video_url)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + productColumns
	row := r.db.QueryRowContext(ctx, q, p.Name, p.Quantity, nullable(p.Image), nullable(p.Video))
	return scanProduct(row)
}

// FindByID fetches a single product by its ID.
func (r *ProductPostgres) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	const q = `
		SELECT ` + productColumns + `
		FROM productos
		WHERE id = $1
	`
	return scanProduct(r.db.QueryRowContext(ctx, q, id))
}

// List returns all products ordered by ID.
func (r *ProductPostgres) List(ctx context.Context) ([]model.Product, error) {
	const q = `
		SELECT ` + productColumns + `
		FROM productos
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update writes every mutable column. Returns sql.ErrNoRows if the row is gone.
func (r *ProductPostgres) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	const q = `
		UPDATE productos
		SET producto = $1, cantidad = $2, imagen_url = $3, video_url = $4
		WHERE id = $5
		RETURNING ` + productColumns
	row := r.db.QueryRowContext(ctx, q, p.Name, p.Quantity, nullable(p.Image), nullable(p.Video), p.ID)
	return scanProduct(row)
}

// Delete removes a product and returns the deleted row. Returns sql.ErrNoRows if nothing matched.
func (r *ProductPostgres) Delete(ctx context.Context, id int64) (*model.Product, error) {
	const q = `DELETE FROM productos WHERE id = $1 RETURNING ` + productColumns
	return scanProduct(r.db.QueryRowContext(ctx, q, id))
}
