package routes

import (
	"github.com/Twahaaa/JOURNY/internal/handlers"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/signout", handlers.Signout)
	r.Get("/api/auth/me", handlers.GetMe)

	// Journal entry routes (single resource: ?id= selects one entry)
	r.Post("/api/entries", handlers.SubmitEntry)
	r.Get("/api/entries", handlers.GetEntries)
	r.Delete("/api/entries", handlers.DeleteEntry)
}
