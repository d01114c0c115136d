package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Varun5711/shortlinks/internal/logger"
	"github.com/Varun5711/shortlinks/internal/service"
)

const resolveTimeout = 3 * time.Second

// RedirectHandler serves GET /l/{code}. The click is handed to the recorder
// before the redirect is written and never delays or fails the response.
type RedirectHandler struct {
	resolver Resolver
	clicks   ClickRecorder
	log      *logger.Logger
}

func NewRedirectHandler(resolver Resolver, clicks ClickRecorder, log *logger.Logger) *RedirectHandler {
	return &RedirectHandler{
		resolver: resolver,
		clicks:   clicks,
		log:      log,
	}
}

func (h *RedirectHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /l/{code}", h.HandleRedirect)
}

func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	shortCode := r.PathValue("code")

	ctx, cancel := context.WithTimeout(r.Context(), resolveTimeout)
	defer cancel()

	link, err := h.resolver.ResolveLink(ctx, shortCode)
	if errors.Is(err, service.ErrNotFound) {
		http.Error(w, "Link not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("Failed to resolve %q: %v", shortCode, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.clicks.Record(link.ShortCode)

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, link.OriginalURL, http.StatusTemporaryRedirect)
}
