package handler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"inventario/internal/database"
	"inventario/internal/service"
)

// Routes carries the dependencies of the HTTP surface.
type Routes struct {
	DB       database.Pinger
	Products service.ProductService
	Files    FileOpener
	// Events serves one websocket client. The /ws route is skipped when nil.
	Events    func(*websocket.Conn)
	Metrics   fiber.Handler
	PublicDir string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Static files and the index.html fallback are registered last.
func RegisterRoutes(app *fiber.App, r Routes) {
	api := app.Group("/api")
	api.Get("/health", HealthCheck())
	if r.DB != nil {
		api.Get("/ready", Readiness(r.DB))
	}

	api.Get("/productos", ListProducts(r.Products))
	api.Post("/productos", CreateProduct(r.Products))
	api.Get("/productos/:id", GetProduct(r.Products))
	api.Put("/productos/:id", UpdateProduct(r.Products))
	api.Delete("/productos/:id", DeleteProduct(r.Products))
	api.All("/*", func(c *fiber.Ctx) error {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	})

	app.Get("/uploads/:file", ServeUpload(r.Files))

	if r.Metrics != nil {
		app.Get("/metrics", r.Metrics)
	}

	if r.Events != nil {
		app.Use("/ws", RequireUpgrade())
		app.Get("/ws", websocket.New(r.Events))
	}

	if r.PublicDir != "" {
		app.Static("/", r.PublicDir)
		app.Get("*", SPAFallback(r.PublicDir))
	}
}

// RequireUpgrade rejects plain HTTP requests to websocket routes.
func RequireUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// SPAFallback answers any other GET with the UI's index.html.
func SPAFallback(publicDir string) fiber.Handler {
	index := filepath.Join(publicDir, "index.html")
	return func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Path(), "/uploads/") {
			return fiber.ErrNotFound
		}
		if _, err := os.Stat(index); err != nil {
			return c.Type("txt").SendString("frontend not found")
		}
		return c.SendFile(index)
	}
}
