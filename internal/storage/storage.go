package storage

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/Varun5711/shortlinks/internal/models"
)

var (
	// ErrDuplicateShortCode is returned by Create when the UNIQUE constraint on short_code fires.
	ErrDuplicateShortCode = errors.New("short code already exists")
	// ErrLinkNotFound is returned by IncrementClicks when no row has the code.
	ErrLinkNotFound = errors.New("link not found")
)

const (
	queryTimeout = 5 * time.Second
	listTimeout  = 10 * time.Second
)

//go:embed schema/postgres.sql
var PostgresSchema string

//go:embed schema/sqlite.sql
var SQLiteSchema string

// Storage is the links table. Lookups return (nil, nil) when no row matches.
// Owner-scoped mutations match on (id, owner) and return nil when nothing
// matched, so a missing link and a foreign link look the same.
type Storage interface {
	Create(ctx context.Context, link *models.Link) error
	GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error)
	// ShortCodeExists reads from the primary so a code inserted a moment ago is seen.
	ShortCodeExists(ctx context.Context, shortCode string) (bool, error)
	GetForOwner(ctx context.Context, id, ownerID string) (*models.Link, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Link, error)
	UpdateForOwner(ctx context.Context, id, ownerID, originalURL string, title *string) (*models.Link, error)
	DeleteForOwner(ctx context.Context, id, ownerID string) (*models.Link, error)
	IncrementClicks(ctx context.Context, shortCode string) error
	// IncrementClicksBy applies several counts atomically and reports how many rows changed.
	IncrementClicksBy(ctx context.Context, counts map[string]int64) (int64, error)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
