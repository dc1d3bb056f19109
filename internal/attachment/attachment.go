package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"inventario/internal/storage"
)

// Kind is the product slot an upload is destined for.
type Kind string

const (
	KindImage Kind = "imagen"
	KindVideo Kind = "video"
)

// URLPrefix is the public path under which stored attachments are served.
const URLPrefix = "/uploads/"

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

var (
	ErrTooLarge        = errors.New("attachment exceeds size limit")
	ErrUnsupportedType = errors.New("attachment type not allowed")
	ErrEmpty           = errors.New("attachment is empty")
	ErrNotFound        = errors.New("attachment not found")
)

// Upload is one incoming file part.
type Upload struct {
	Kind     Kind
	Filename string
	// Size is the declared length in bytes, or -1 if unknown.
	Size   int64
	Reader io.Reader
}

// File is an opened attachment ready to be streamed to a client.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// Store turns uploads into stored blobs with collision-free names and hands back URL references.
type Store struct {
	backend  storage.Storage
	maxBytes int64
	stored   *prometheus.CounterVec
}

// NewStore wraps backend. Uploads larger than maxBytes are rejected.
// Metrics are registered on reg when it is non-nil.
func NewStore(backend storage.Storage, maxBytes int64, reg prometheus.Registerer) (*Store, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	s := &Store{
		backend:  backend,
		maxBytes: maxBytes,
		stored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventario_attachments_stored_total",
				Help: "Attachments written to the attachment store.",
			},
			[]string{"kind"},
		),
	}
	if reg != nil {
		if err := reg.Register(s.stored); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MaxBytes reports the per-file limit.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// Save checks size and sniffed content type, writes the payload under a fresh
// name and returns its reference (URLPrefix + name).
func (s *Store) Save(ctx context.Context, up Upload) (string, error) {
	if up.Reader == nil {
		return "", ErrEmpty
	}
	if up.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Reader, head)
	switch {
	case errors.Is(err, io.EOF) || n == 0:
		return "", ErrEmpty
	case err != nil && !errors.Is(err, io.ErrUnexpectedEOF):
		return "", fmt.Errorf("read attachment: %w", err)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !allowed(up.Kind, mt.String()) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	name := uuid.NewString() + extensionFor(up.Kind, up.Filename, mt)
	body := &capReader{
		r:         io.MultiReader(bytes.NewReader(head), up.Reader),
		remaining: s.maxBytes,
	}
	size := up.Size
	if size <= 0 {
		size = -1
	}

	_, err = s.backend.Put(ctx, name, body, storage.PutObjectOptions{
		Size:        size,
		ContentType: mt.String(),
		Metadata:    map[string]string{"original-filename": filepath.Base(up.Filename)},
	})
	if err != nil {
		if body.exceeded {
			return "", ErrTooLarge
		}
		return "", fmt.Errorf("store attachment: %w", err)
	}

	s.stored.WithLabelValues(string(up.Kind)).Inc()
	return URLPrefix + name, nil
}

// Open returns the stored file for name (the part after URLPrefix).
func (s *Store) Open(ctx context.Context, name string) (*File, error) {
	rc, info, err := s.backend.Get(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open attachment: %w", err)
	}

	f := &File{Name: name, ContentType: info.ContentType, Size: info.Size, Body: rc}
	if f.ContentType == "" {
		f.ContentType = mime.TypeByExtension(filepath.Ext(name))
	}
	if f.ContentType == "" {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(rc, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			rc.Close()
			return nil, fmt.Errorf("open attachment: %w", err)
		}
		f.ContentType = mimetype.Detect(head[:n]).String()
		f.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(head[:n]), rc), rc}
	}
	return f, nil
}

// Remove deletes the blob behind ref. References that are empty, foreign, or already gone are ignored.
func (s *Store) Remove(ctx context.Context, ref string) error {
	name := NameFromRef(ref)
	if name == "" {
		return nil
	}
	if err := s.backend.Delete(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("remove attachment %s: %w", name, err)
	}
	return nil
}

// NameFromRef extracts the stored name from a reference, or "" if ref is not one of ours.
func NameFromRef(ref string) string {
	name, ok := strings.CutPrefix(ref, URLPrefix)
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return ""
	}
	return name
}

func family(k Kind) string {
	switch k {
	case KindImage:
		return "image/"
	case KindVideo:
		return "video/"
	default:
		return ""
	}
}

func allowed(k Kind, contentType string) bool {
	f := family(k)
	if f == "" || !strings.HasPrefix(contentType, f) {
		return false
	}
	// scriptable when served inline
	return contentType != "image/svg+xml"
}

// extensionFor keeps the client's extension when it maps to the same media family,
// otherwise uses the sniffed type's canonical extension.
func extensionFor(k Kind, filename string, mt *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" {
		byExt, _, _ := strings.Cut(mime.TypeByExtension(ext), ";")
		if allowed(k, byExt) {
			return ext
		}
	}
	return mt.Extension()
}

// capReader fails once more than remaining bytes have been read.
type capReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (c *capReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		c.exceeded = true
		return n, ErrTooLarge
	}
	return n, err
}
