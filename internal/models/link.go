package models

import "time"

// Link is one row of the links table.
type Link struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"user_id"`
	ShortCode   string    `json:"short_code" db:"short_code"`
	ShortURL    string    `json:"short_url,omitempty" db:"-"`
	OriginalURL string    `json:"original_url" db:"original_url"`
	Title       *string   `json:"title,omitempty" db:"title"`
	Clicks      int64     `json:"clicks" db:"clicks"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type CreateLinkRequest struct {
	OriginalURL string  `json:"original_url"`
	ShortCode   string  `json:"short_code,omitempty"`
	Title       *string `json:"title,omitempty"`
}

// UpdateLinkRequest carries the mutable fields. A nil Title clears the stored title.
type UpdateLinkRequest struct {
	LinkID      string  `json:"link_id"`
	OriginalURL string  `json:"original_url"`
	Title       *string `json:"title,omitempty"`
}

type ListLinksResponse struct {
	Links []Link `json:"links"`
	Total int    `json:"total"`
}

type DeleteLinkResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
