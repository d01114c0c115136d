package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Varun5711/shortlinks/internal/models"
)

// MemoryStorage keeps links in process. Returned links are copies, so callers
// cannot mutate stored rows.
type MemoryStorage struct {
	mu     sync.RWMutex
	byID   map[string]*models.Link
	byCode map[string]*models.Link
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byID:   make(map[string]*models.Link),
		byCode: make(map[string]*models.Link),
	}
}

func clone(link *models.Link) *models.Link {
	cp := *link
	if link.Title != nil {
		title := *link.Title
		cp.Title = &title
	}
	return &cp
}

func (s *MemoryStorage) Create(ctx context.Context, link *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCode[link.ShortCode]; exists {
		return ErrDuplicateShortCode
	}
	if _, exists := s.byID[link.ID]; exists {
		return fmt.Errorf("link %s already exists", link.ID)
	}

	ts := now()
	link.Clicks = 0
	link.CreatedAt = ts
	link.UpdatedAt = ts

	stored := clone(link)
	stored.ShortURL = ""
	s.byID[stored.ID] = stored
	s.byCode[stored.ShortCode] = stored
	return nil
}

func (s *MemoryStorage) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, exists := s.byCode[shortCode]
	if !exists {
		return nil, nil
	}
	return clone(link), nil
}

func (s *MemoryStorage) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.byCode[shortCode]
	return exists, nil
}

func (s *MemoryStorage) owned(id, ownerID string) (*models.Link, bool) {
	link, exists := s.byID[id]
	if !exists || link.OwnerID != ownerID {
		return nil, false
	}
	return link, true
}

func (s *MemoryStorage) GetForOwner(ctx context.Context, id, ownerID string) (*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.owned(id, ownerID)
	if !ok {
		return nil, nil
	}
	return clone(link), nil
}

func (s *MemoryStorage) ListByOwner(ctx context.Context, ownerID string) ([]*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := make([]*models.Link, 0)
	for _, link := range s.byID {
		if link.OwnerID == ownerID {
			links = append(links, clone(link))
		}
	}

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	return links, nil
}

func (s *MemoryStorage) UpdateForOwner(ctx context.Context, id, ownerID, originalURL string, title *string) (*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.owned(id, ownerID)
	if !ok {
		return nil, nil
	}

	link.OriginalURL = originalURL
	link.Title = nil
	if title != nil {
		t := *title
		link.Title = &t
	}
	link.UpdatedAt = now()
	return clone(link), nil
}

func (s *MemoryStorage) DeleteForOwner(ctx context.Context, id, ownerID string) (*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.owned(id, ownerID)
	if !ok {
		return nil, nil
	}

	delete(s.byID, link.ID)
	delete(s.byCode, link.ShortCode)
	return link, nil
}

func (s *MemoryStorage) IncrementClicks(ctx context.Context, shortCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, exists := s.byCode[shortCode]
	if !exists {
		return fmt.Errorf("short code %s: %w", shortCode, ErrLinkNotFound)
	}

	link.Clicks++
	return nil
}

func (s *MemoryStorage) IncrementClicksBy(ctx context.Context, counts map[string]int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for _, code := range sortedCodes(counts) {
		if link, exists := s.byCode[code]; exists {
			link.Clicks += counts[code]
			updated++
		}
	}
	return updated, nil
}
