package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"inventario/internal/attachment"
	"inventario/internal/events"
	"inventario/internal/model"
	"inventario/internal/repository"
)

// CreateInput is a validated create request. Image and Video are optional.
type CreateInput struct {
	Name     string             `json:"producto" validate:"required,notblank"`
	Quantity *int               `json:"cantidad" validate:"required,min=-2147483648,max=2147483647"`
	Image    *attachment.Upload `json:"-" validate:"-"`
	Video    *attachment.Upload `json:"-" validate:"-"`
}

// UpdateInput is a partial update. Nil fields keep their stored value.
type UpdateInput struct {
	Name     *string            `json:"producto" validate:"omitnil,notblank"`
	Quantity *int               `json:"cantidad" validate:"omitnil,min=-2147483648,max=2147483647"`
	Image    *attachment.Upload `json:"-" validate:"-"`
	Video    *attachment.Upload `json:"-" validate:"-"`
}

// AttachmentStore is the part of attachment.Store the service needs.
type AttachmentStore interface {
	Save(ctx context.Context, up attachment.Upload) (string, error)
	Remove(ctx context.Context, ref string) error
}

// ProductService defines the inventory use cases.
type ProductService interface {
	// List returns every product ordered by ascending id.
	List(ctx context.Context) ([]model.Product, error)

	// Get returns a single product.
	Get(ctx context.Context, id int64) (*model.Product, error)

	// Create stores the attachments, then inserts the row. Attachments written
	// for the request are removed again if the insert fails.
	Create(ctx context.Context, in CreateInput) (*model.Product, error)

	// Update merges the supplied fields into the stored product.
	Update(ctx context.Context, id int64, in UpdateInput) (*model.Product, error)

	// Delete removes the product row.
	Delete(ctx context.Context, id int64) error
}

// Option customizes a product service.
type Option func(*productService)

// WithPublisher sets where product events go. Defaults to events.Noop.
func WithPublisher(p events.Publisher) Option {
	return func(s *productService) { s.pub = p }
}

// WithPrune enables removal of attachment files that are no longer referenced.
func WithPrune(prune bool) Option {
	return func(s *productService) { s.prune = prune }
}

// WithLogger sets the logger for event and cleanup failures. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(s *productService) { s.log = log }
}

type productService struct {
	repo  repository.ProductRepository
	files AttachmentStore
	pub   events.Publisher
	prune bool
	log   *slog.Logger
}

// NewProductService constructs a ProductService.
func NewProductService(repo repository.ProductRepository, files AttachmentStore, opts ...Option) ProductService {
	s := &productService{
		repo:  repo,
		files: files,
		pub:   events.Noop{},
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "product_service")
	return s
}

func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list products", Err: err}
	}
	return items, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "find product", Err: err}
	}
	return p, nil
}

func (s *productService) Create(ctx context.Context, in CreateInput) (*model.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	refs, err := s.saveAttachments(ctx, in.Image, in.Video)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.Create(ctx, &model.Product{
		Name:     in.Name,
		Quantity: *in.Quantity,
		Image:    refs.image,
		Video:    refs.video,
	})
	if err != nil {
		s.discard(ctx, refs.written...)
		return nil, &StorageError{Op: "create product", Err: err}
	}

	s.publish(ctx, events.ProductCreated, *stored)
	return stored, nil
}

func (s *productService) Update(ctx context.Context, id int64, in UpdateInput) (*model.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	refs, err := s.saveAttachments(ctx, in.Image, in.Video)
	if err != nil {
		return nil, err
	}

	next := *current
	if in.Name != nil {
		next.Name = *in.Name
	}
	if in.Quantity != nil {
		next.Quantity = *in.Quantity
	}
	if refs.image != nil {
		next.Image = refs.image
	}
	if refs.video != nil {
		next.Video = refs.video
	}

	stored, err := s.repo.Update(ctx, &next)
	if err != nil {
		s.discard(ctx, refs.written...)
		// deleted between read and write
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "update product", Err: err}
	}

	if s.prune {
		if refs.image != nil && current.Image != nil && *current.Image != *refs.image {
			s.discard(ctx, *current.Image)
		}
		if refs.video != nil && current.Video != nil && *current.Video != *refs.video {
			s.discard(ctx, *current.Video)
		}
	}

	s.publish(ctx, events.ProductUpdated, *stored)
	return stored, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return &StorageError{Op: "delete product", Err: err}
	}

	if s.prune {
		for _, ref := range []*string{removed.Image, removed.Video} {
			if ref != nil {
				s.discard(ctx, *ref)
			}
		}
	}

	s.publish(ctx, events.ProductDeleted, *removed)
	return nil
}

type savedRefs struct {
	image   *string
	video   *string
	written []string
}

// saveAttachments stores whichever uploads are present. On failure the ones
// already written are removed again.
func (s *productService) saveAttachments(ctx context.Context, image, video *attachment.Upload) (savedRefs, error) {
	var out savedRefs
	for _, up := range []*attachment.Upload{image, video} {
		if up == nil {
			continue
		}
		ref, err := s.files.Save(ctx, *up)
		if err != nil {
			s.discard(ctx, out.written...)
			return savedRefs{}, attachmentError(up.Kind, err)
		}
		out.written = append(out.written, ref)
		switch up.Kind {
		case attachment.KindImage:
			out.image = &ref
		case attachment.KindVideo:
			out.video = &ref
		}
	}
	return out, nil
}

func attachmentError(kind attachment.Kind, err error) error {
	field := string(kind)
	switch {
	case errors.Is(err, attachment.ErrTooLarge):
		return &ValidationError{Field: field, Message: field + " exceeds the maximum upload size"}
	case errors.Is(err, attachment.ErrUnsupportedType):
		return &ValidationError{Field: field, Message: field + " has an unsupported file type"}
	case errors.Is(err, attachment.ErrEmpty):
		return &ValidationError{Field: field, Message: field + " is empty"}
	default:
		return &StorageError{Op: "save " + field, Err: err}
	}
}

// discard removes attachment files best-effort. Failures are only logged.
func (s *productService) discard(ctx context.Context, refs ...string) {
	for _, ref := range refs {
		if err := s.files.Remove(ctx, ref); err != nil {
			s.log.WarnContext(ctx, "attachment_remove_failed", "ref", ref, "error", err)
		}
	}
}

func (s *productService) publish(ctx context.Context, t events.Type, p model.Product) {
	if err := s.pub.Publish(ctx, events.NewProductEvent(t, p)); err != nil {
		s.log.WarnContext(ctx, "product_event_publish_failed", "type", t, "id", p.ID, "error", err)
	}
}
