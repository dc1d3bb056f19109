package events

import (
	"context"
	"errors"
	"time"

	"inventario/internal/model"
)

// Type names a product lifecycle change.
type Type string

const (
	ProductCreated Type = "product.created"
	ProductUpdated Type = "product.updated"
	ProductDeleted Type = "product.deleted"
)

// ProductEvent is emitted after a product change has been committed.
type ProductEvent struct {
	Type    Type          `json:"type"`
	Product model.Product `json:"producto"`
	At      time.Time     `json:"at"`
}

// NewProductEvent stamps an event with the current UTC time.
func NewProductEvent(t Type, p model.Product) ProductEvent {
	return ProductEvent{Type: t, Product: p, At: time.Now().UTC()}
}

// Publisher delivers product events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, e ProductEvent) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e ProductEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, ProductEvent) error { return nil }
