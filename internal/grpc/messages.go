package grpc

import "github.com/Varun5711/shortlinks/internal/models"

type CreateLinkRequest struct {
	OwnerID     string  `json:"owner_id"`
	OriginalURL string  `json:"original_url"`
	ShortCode   string  `json:"short_code,omitempty"`
	Title       *string `json:"title,omitempty"`
}

type UpdateLinkRequest struct {
	OwnerID     string  `json:"owner_id"`
	LinkID      string  `json:"link_id"`
	OriginalURL string  `json:"original_url"`
	Title       *string `json:"title,omitempty"`
}

type DeleteLinkRequest struct {
	OwnerID string `json:"owner_id"`
	LinkID  string `json:"link_id"`
}

type DeleteLinkResponse struct {
	Success bool `json:"success"`
}

type GetLinkRequest struct {
	OwnerID string `json:"owner_id"`
	LinkID  string `json:"link_id"`
}

type ListLinksRequest struct {
	OwnerID string `json:"owner_id"`
}

type ListLinksResponse struct {
	Links []*models.Link `json:"links"`
	Total int            `json:"total"`
}

type ResolveLinkRequest struct {
	ShortCode string `json:"short_code"`
}

type IncrementClicksRequest struct {
	ShortCode string `json:"short_code"`
}

type IncrementClicksResponse struct{}

type LinkResponse struct {
	Link *models.Link `json:"link"`
}
