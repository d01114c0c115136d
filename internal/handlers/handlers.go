package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Varun5711/shortlinks/internal/models"
)

//go:generate mockgen -destination=mocks/mock_handlers.go -package=mocks github.com/Varun5711/shortlinks/internal/handlers LinkAPI,Resolver,ClickRecorder

// LinkAPI is the owner-scoped management surface of link-service.
type LinkAPI interface {
	CreateLink(ctx context.Context, ownerID string, req models.CreateLinkRequest) (*models.Link, error)
	UpdateLink(ctx context.Context, ownerID string, req models.UpdateLinkRequest) (*models.Link, error)
	DeleteLink(ctx context.Context, ownerID, linkID string) error
	GetLink(ctx context.Context, ownerID, linkID string) (*models.Link, error)
	ListLinks(ctx context.Context, ownerID string) ([]*models.Link, error)
}

// Resolver looks up the destination of a short code.
type Resolver interface {
	ResolveLink(ctx context.Context, shortCode string) (*models.Link, error)
}

// ClickRecorder accepts a click without blocking the caller.
type ClickRecorder interface {
	Record(shortCode string)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message, details string) {
	respondJSON(w, status, models.ErrorResponse{
		Error:   message,
		Details: details,
	})
}
