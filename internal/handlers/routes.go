package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the landing page, shorten and redirect routes.
func RegisterRoutes(r chi.Router, landing *LandingHandler, urls *URLHandler) {
	// GET / - Landing page
	r.Get("/", landing.ServeLanding)

	// POST / - Create short code from form field "url"
	r.Post("/", urls.CreateShortCode)

	// GET /{code} - Redirect to target, or home when unknown
	r.Get("/{code}", urls.Redirect)
}
