package repository

import (
	"context"

	"inventario/internal/model"
)

// ProductRepository defines data access for products using SQL queries only.
// No business logic here, only persistence.
// Lookups and writes that match no row return sql.ErrNoRows.
type ProductRepository interface {
	// Create inserts a new product. The ID field is ignored; the store assigns it.
	Create(ctx context.Context, p *model.Product) (*model.Product, error)

	// FindByID returns a product by its ID.
	FindByID(ctx context.Context, id int64) (*model.Product, error)

	// List returns every product ordered by ascending ID.
	List(ctx context.Context) ([]model.Product, error)

	// Update overwrites all mutable columns of the row identified by p.ID.
	Update(ctx context.Context, p *model.Product) (*model.Product, error)

	// Delete removes a product by ID and returns the removed row.
	Delete(ctx context.Context, id int64) (*model.Product, error)
}
