package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Varun5711/shortlinks/internal/logger"
	"github.com/Varun5711/shortlinks/internal/models"
	"github.com/Varun5711/shortlinks/internal/storage"
	"github.com/Varun5711/shortlinks/internal/validation"
)

const DefaultMaxAttempts = 10

// CodeGenerator draws candidate short codes.
type CodeGenerator interface {
	Next() (string, error)
}

// Cache is the resolve cache consulted by Resolve.
type Cache interface {
	Get(ctx context.Context, shortCode string) (*models.Link, bool)
	Set(ctx context.Context, link *models.Link) error
	Invalidate(ctx context.Context, shortCode string) error
}

type Config struct {
	// MaxAttempts bounds the generator loop.
	MaxAttempts int
	// BaseURL prefixes ShortURL as BaseURL/l/{code}. Empty leaves ShortURL unset.
	BaseURL string
}

type LinkService struct {
	store       storage.Storage
	gen         CodeGenerator
	cache       Cache
	maxAttempts int
	baseURL     string
	log         *logger.Logger
}

// NewLinkService wires the link lifecycle. cache may be nil.
func NewLinkService(store storage.Storage, gen CodeGenerator, cache Cache, cfg Config, log *logger.Logger) *LinkService {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &LinkService{
		store:       store,
		gen:         gen,
		cache:       cache,
		maxAttempts: maxAttempts,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		log:         log,
	}
}

// ShortURL is the public redirect address for a code.
func (s *LinkService) ShortURL(shortCode string) string {
	if s.baseURL == "" {
		return ""
	}
	return s.baseURL + "/l/" + shortCode
}

func (s *LinkService) decorate(link *models.Link) *models.Link {
	link.ShortURL = s.ShortURL(link.ShortCode)
	return link
}

// normalizeTitle stores an empty title as no title.
func normalizeTitle(title *string) *string {
	if title == nil || *title == "" {
		return nil
	}
	return title
}

func (s *LinkService) Create(ctx context.Context, ownerID string, req models.CreateLinkRequest) (*models.Link, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validation.ValidateCreate(req); err != nil {
		return nil, err
	}

	link := &models.Link{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		OriginalURL: req.OriginalURL,
		Title:       normalizeTitle(req.Title),
	}

	var err error
	if req.ShortCode != "" {
		err = s.createWithCode(ctx, link, req.ShortCode)
	} else {
		err = s.createWithGeneratedCode(ctx, link)
	}
	if err != nil {
		return nil, err
	}

	// Delete already cleared the cache for a reused code.
	s.log.Info("Created link %s (%s) for owner %s", link.ShortCode, link.ID, ownerID)
	return s.decorate(link), nil
}

func (s *LinkService) createWithCode(ctx context.Context, link *models.Link, code string) error {
	exists, err := s.store.ShortCodeExists(ctx, code)
	if err != nil {
		return s.internal("creating link", err)
	}
	if exists {
		return s.codeTaken(ctx, code)
	}

	link.ShortCode = code
	err = s.store.Create(ctx, link)
	if errors.Is(err, storage.ErrDuplicateShortCode) {
		return s.codeTaken(ctx, code)
	}
	if err != nil {
		return s.internal("creating link", err)
	}
	return nil
}

// createWithGeneratedCode draws codes until one is free. A duplicate on insert
// means another writer won the race for that code and counts as a collision.
func (s *LinkService) createWithGeneratedCode(ctx context.Context, link *models.Link) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.gen.Next()
		if err != nil {
			return s.internal("generating short code", err)
		}

		exists, err := s.store.ShortCodeExists(ctx, code)
		if err != nil {
			return s.internal("generating short code", err)
		}
		if exists {
			s.log.Debug("Generated code %s collided (attempt %d/%d)", code, attempt, s.maxAttempts)
			continue
		}

		link.ShortCode = code
		err = s.store.Create(ctx, link)
		if errors.Is(err, storage.ErrDuplicateShortCode) {
			s.log.Debug("Generated code %s lost insert race (attempt %d/%d)", code, attempt, s.maxAttempts)
			continue
		}
		if err != nil {
			return s.internal("creating link", err)
		}
		return nil
	}

	s.log.Warn("Short code generation exhausted after %d attempts", s.maxAttempts)
	return ErrCodeGenerationExhausted
}

func (s *LinkService) codeTaken(ctx context.Context, code string) error {
	suggestions := make([]string, 0, suggestionCount)
	for _, candidate := range validation.SuggestAlternatives(code, suggestionCount) {
		exists, err := s.store.ShortCodeExists(ctx, candidate)
		if err != nil || exists {
			continue
		}
		suggestions = append(suggestions, candidate)
	}
	return &CodeTakenError{Code: code, Suggestions: suggestions}
}

// Update replaces the destination and title of an owned link. A nil title
// clears the stored one. The short code never changes.
func (s *LinkService) Update(ctx context.Context, ownerID string, req models.UpdateLinkRequest) (*models.Link, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validation.ValidateUpdate(req); err != nil {
		return nil, err
	}

	link, err := s.store.UpdateForOwner(ctx, req.LinkID, ownerID, req.OriginalURL, normalizeTitle(req.Title))
	if err != nil {
		return nil, s.internal("updating link", err)
	}
	if link == nil {
		return nil, ErrNotFound
	}

	s.invalidate(ctx, link.ShortCode)
	s.log.Info("Updated link %s (%s)", link.ShortCode, link.ID)
	return s.decorate(link), nil
}

func (s *LinkService) Delete(ctx context.Context, ownerID, linkID string) error {
	if ownerID == "" {
		return ErrUnauthenticated
	}
	if err := validation.ValidateLinkID(linkID); err != nil {
		return err
	}

	link, err := s.store.DeleteForOwner(ctx, linkID, ownerID)
	if err != nil {
		return s.internal("deleting link", err)
	}
	if link == nil {
		return ErrNotFound
	}

	s.invalidate(ctx, link.ShortCode)
	s.log.Info("Deleted link %s (%s)", link.ShortCode, link.ID)
	return nil
}

func (s *LinkService) Get(ctx context.Context, ownerID, linkID string) (*models.Link, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validation.ValidateLinkID(linkID); err != nil {
		return nil, err
	}

	link, err := s.store.GetForOwner(ctx, linkID, ownerID)
	if err != nil {
		return nil, s.internal("getting link", err)
	}
	if link == nil {
		return nil, ErrNotFound
	}
	return s.decorate(link), nil
}

// List returns the owner's links, newest first.
func (s *LinkService) List(ctx context.Context, ownerID string) ([]*models.Link, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}

	links, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.internal("listing links", err)
	}
	for _, link := range links {
		s.decorate(link)
	}
	return links, nil
}

// Resolve looks a code up for the redirect path. It never mutates anything
// except the resolve cache. Codes that cannot exist are rejected without I/O.
func (s *LinkService) Resolve(ctx context.Context, shortCode string) (*models.Link, error) {
	if validation.ValidateShortCode(shortCode) != nil {
		return nil, ErrNotFound
	}

	if s.cache != nil {
		if link, found := s.cache.Get(ctx, shortCode); found {
			return s.decorate(link), nil
		}
	}

	link, err := s.store.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, s.internal("resolving link", err)
	}
	if link == nil {
		return nil, ErrNotFound
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, link); err != nil {
			s.log.Warn("Failed to cache link %s: %v", shortCode, err)
		}
	}
	return s.decorate(link), nil
}

// RecordClick adds one click to the code's counter in the datastore.
func (s *LinkService) RecordClick(ctx context.Context, shortCode string) error {
	if shortCode == "" {
		return ErrNotFound
	}

	err := s.store.IncrementClicks(ctx, shortCode)
	if errors.Is(err, storage.ErrLinkNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to record click for %s: %w", shortCode, err)
	}
	return nil
}

func (s *LinkService) invalidate(ctx context.Context, shortCode string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, shortCode); err != nil {
		s.log.Warn("Failed to invalidate cached link %s: %v", shortCode, err)
	}
}

func (s *LinkService) internal(action string, err error) error {
	s.log.Error("Error %s: %v", action, err)
	return fmt.Errorf("%s: %w", action, err)
}
