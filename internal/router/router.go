// Package router sets up all HTTP routes and middleware chains for the
// Moneybox API. Reads sit behind the general rate limit; mutations add the
// write limit and the admin key check.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"moneybox/internal/handlers"
	"moneybox/internal/middleware"
)

// Deps collects everything the router wires together. Changes and
// UploadDir are optional.
type Deps struct {
	Catalog *handlers.Catalog
	Images  *handlers.Images
	Health  *handlers.Health
	Changes *handlers.Changes // nil when no change log is configured

	General *middleware.RateLimiter
	Write   *middleware.RateLimiter

	AdminKeyHash string
	CORSOrigins  []string
	UploadDir    string // served at /uploads when images are stored locally
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.AdminKeyHeader},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Use(d.General.Middleware)

		r.Get("/health", d.Health.Check)

		// Reads
		r.Get("/categories", d.Catalog.List)
		r.Get("/categories/{id}", d.Catalog.GetCategory)
		r.Get("/images", d.Images.List)
		r.Get("/images/{filename}", d.Images.Serve)
		if d.Changes != nil {
			r.Get("/changes", d.Changes.List)
		}

		// Mutations
		r.Group(func(r chi.Router) {
			r.Use(d.Write.Middleware)
			r.Use(middleware.RequireAdminKey(d.AdminKeyHash))

			r.Post("/categories", d.Catalog.CreateCategory)
			r.Put("/categories/{id}", d.Catalog.UpdateCategory)
			r.Delete("/categories/{id}", d.Catalog.DeleteCategory)
			r.Put("/categories/{categoryId}/products/reorder", d.Catalog.ReorderProducts)

			r.Post("/products", d.Catalog.CreateProduct)
			r.Post("/products/bulk", d.Catalog.BulkProducts)
			r.Put("/products/{id}", d.Catalog.UpdateProduct)
			r.Delete("/products/{id}", d.Catalog.DeleteProduct)

			r.Post("/images/upload", d.Images.Upload)
			r.Delete("/images/{filename}", d.Images.Delete)
		})
	})

	if d.UploadDir != "" {
		r.Get("/uploads/*", uploadsHandler(d.UploadDir))
	}

	return r
}

// uploadsHandler serves files from dir without directory listings.
// http.Dir confines lookups to dir.
func uploadsHandler(dir string) http.HandlerFunc {
	fs := http.StripPrefix("/uploads", http.FileServer(http.Dir(dir)))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}
}
