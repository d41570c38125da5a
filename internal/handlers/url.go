package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/serroba/tinyurl/internal/base62"
	"github.com/serroba/tinyurl/internal/middleware"
	"github.com/serroba/tinyurl/internal/shortener"
	"go.uber.org/zap"
)

const (
	invalidURLMessage    = `Invalid URL. <a href="/">Go back.</a>`
	databaseErrorMessage = `Database error! <a href="/">Go back.</a>`
	shortenedFormat      = `Your shortened url is <a href="/%s">%s/%s</a>`
)

// Shortener is the part of shortener.Service the handlers depend on.
type Shortener interface {
	Shorten(ctx context.Context, rawURL string) (*shortener.Result, error)
	Resolve(ctx context.Context, code shortener.Code) (string, error)
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	shortener  Shortener
	publicHost string
	logger     *zap.Logger
}

// NewURLHandler creates a new URL handler. When publicHost is empty the
// request Host is shown in short links.
func NewURLHandler(s Shortener, publicHost string, logger *zap.Logger) *URLHandler {
	return &URLHandler{
		shortener:  s,
		publicHost: publicHost,
		logger:     logger,
	}
}

// CreateShortCode handles POST / with the form field url.
func (h *URLHandler) CreateShortCode(w http.ResponseWriter, r *http.Request) {
	rawURL := r.PostFormValue("url")

	res, err := h.shortener.Shorten(r.Context(), rawURL)
	if err != nil {
		if errors.Is(err, shortener.ErrInvalidURL) {
			h.logger.Debug("rejected url",
				zap.String("request_id", middleware.RequestID(r.Context())),
				zap.String("url", rawURL),
			)
			writeHTML(w, invalidURLMessage)

			return
		}

		h.storageFailure(w, r, err)

		return
	}

	if res.Created {
		h.logger.Info("shortened url",
			zap.String("request_id", middleware.RequestID(r.Context())),
			zap.String("code", string(res.Code)),
			zap.String("target", res.Target),
		)
	}

	host := h.publicHost
	if host == "" {
		host = r.Host
	}

	writeHTML(w, fmt.Sprintf(shortenedFormat, res.Code, html.EscapeString(host), res.Code))
}

// Redirect handles GET /{code}. Unknown codes go back to the landing page.
// Paths outside the code alphabet, like /favicon.ico, never reach storage.
func (h *URLHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := shortener.Code(chi.URLParam(r, "code"))
	if !base62.Valid(string(code)) {
		http.Redirect(w, r, "/", http.StatusFound)

		return
	}

	target, err := h.shortener.Resolve(r.Context(), code)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			http.Redirect(w, r, "/", http.StatusFound)

			return
		}

		h.storageFailure(w, r, err)

		return
	}

	h.logger.Debug("resolved code",
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.String("code", string(code)),
		zap.String("target", target),
	)

	http.Redirect(w, r, target, http.StatusFound)
}

// storageFailure logs err and writes the generic message; the cause never reaches the client.
func (h *URLHandler) storageFailure(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("storage failure",
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	writeHTML(w, databaseErrorMessage)
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, body)
}
