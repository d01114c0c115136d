package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Varun5711/shortlinks/internal/logger"
	"github.com/Varun5711/shortlinks/internal/middleware"
	"github.com/Varun5711/shortlinks/internal/models"
	"github.com/Varun5711/shortlinks/internal/qrcode"
	"github.com/Varun5711/shortlinks/internal/service"
	"github.com/Varun5711/shortlinks/internal/validation"
)

const (
	requestTimeout = 10 * time.Second
	maxBodyBytes   = 64 << 10
)

// LinkHandler is the api-gateway's JSON API over LinkAPI. The owner comes
// from the verified bearer token placed in the context by AuthMiddleware.
type LinkHandler struct {
	links   LinkAPI
	baseURL string
	log     *logger.Logger
}

func NewLinkHandler(links LinkAPI, baseURL string, log *logger.Logger) *LinkHandler {
	return &LinkHandler{
		links:   links,
		baseURL: baseURL,
		log:     log,
	}
}

func (h *LinkHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/links", h.CreateLink)
	mux.HandleFunc("GET /api/links", h.ListLinks)
	mux.HandleFunc("GET /api/links/{id}", h.GetLink)
	mux.HandleFunc("PUT /api/links/{id}", h.UpdateLink)
	mux.HandleFunc("DELETE /api/links/{id}", h.DeleteLink)
	mux.HandleFunc("GET /api/links/{id}/qrcode", h.QRCode)
}

func (h *LinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserID(r.Context())
	if owner == "" {
		h.respondServiceError(w, service.ErrUnauthenticated, "create")
		return
	}

	var req models.CreateLinkRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	link, err := h.links.CreateLink(ctx, owner, req)
	if err != nil {
		h.respondServiceError(w, err, "create")
		return
	}

	respondJSON(w, http.StatusCreated, link)
}

func (h *LinkHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	links, err := h.links.ListLinks(ctx, middleware.GetUserID(r.Context()))
	if err != nil {
		h.respondServiceError(w, err, "view")
		return
	}

	res := models.ListLinksResponse{
		Links: make([]models.Link, len(links)),
		Total: len(links),
	}
	for i, link := range links {
		res.Links[i] = *link
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *LinkHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	link, err := h.links.GetLink(ctx, middleware.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, err, "view")
		return
	}

	respondJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserID(r.Context())
	if owner == "" {
		h.respondServiceError(w, service.ErrUnauthenticated, "update")
		return
	}

	var req models.UpdateLinkRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.LinkID = r.PathValue("id")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	link, err := h.links.UpdateLink(ctx, owner, req)
	if err != nil {
		h.respondServiceError(w, err, "update")
		return
	}

	respondJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.links.DeleteLink(ctx, middleware.GetUserID(r.Context()), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err, "delete")
		return
	}

	respondJSON(w, http.StatusOK, models.DeleteLinkResponse{Success: true})
}

func (h *LinkHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	link, err := h.links.GetLink(ctx, middleware.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, err, "view")
		return
	}

	shortURL := link.ShortURL
	if shortURL == "" {
		shortURL = h.baseURL + "/l/" + link.ShortCode
	}

	png, err := qrcode.PNG(shortURL, qrcode.DefaultSize)
	if err != nil {
		h.log.Error("Failed to render QR code for %s: %v", link.ShortCode, err)
		respondError(w, http.StatusInternalServerError, "Failed to generate QR code. Please try again.", "")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *LinkHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body", "")
		return false
	}
	return true
}

// respondServiceError maps the link-service error taxonomy to HTTP. action
// is the verb used in user-facing messages ("create", "update", ...).
func (h *LinkHandler) respondServiceError(w http.ResponseWriter, err error, action string) {
	var verr *validation.Error
	var taken *service.CodeTakenError

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, fmt.Sprintf("Unauthorized. Please sign in to %s links.", action), "")
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, "Validation failed", verr.Details())
	case errors.As(err, &taken):
		respondError(w, http.StatusConflict, taken.Error(), taken.Details())
	case errors.Is(err, service.ErrCodeTaken):
		respondError(w, http.StatusConflict, "Short code is already taken. Please choose another.", "")
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, fmt.Sprintf("Link not found or you do not have permission to %s it.", action), "")
	case errors.Is(err, service.ErrCodeGenerationExhausted):
		respondError(w, http.StatusServiceUnavailable, "Failed to generate a unique short code. Please try again.", "")
	default:
		h.log.Error("Failed to %s link: %v", action, err)
		if action == "view" {
			respondError(w, http.StatusInternalServerError, "Failed to load links. Please try again.", "")
			return
		}
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s link. Please try again.", action), "")
	}
}
