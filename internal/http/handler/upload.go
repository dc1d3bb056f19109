package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"inventario/internal/attachment"
)

// FileOpener is the read side of attachment.Store.
type FileOpener interface {
	Open(ctx context.Context, name string) (*attachment.File, error)
}

// ServeUpload streams a stored attachment by name.
// Stored names are never reused, so responses are cacheable indefinitely.
func ServeUpload(files FileOpener) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := files.Open(c.UserContext(), c.Params("file"))
		if err != nil {
			if errors.Is(err, attachment.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			slog.ErrorContext(c.UserContext(), "attachment_open_failed",
				"request_id", requestIDFromCtx(c), "file", c.Params("file"), "error", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Set(fiber.HeaderContentType, f.ContentType)
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
		if f.Size > 0 {
			return c.SendStream(f.Body, int(f.Size))
		}
		return c.SendStream(f.Body)
	}
}
