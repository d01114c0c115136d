package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/Varun5711/shortlinks/internal/models"
)

// Fixed width so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// SQLiteStorage serves local development and tests. DSNs starting with
// libsql:// or wss:// go to a remote libSQL server, anything else to an
// embedded SQLite file.
type SQLiteStorage struct {
	db *sqlx.DB
}

func NewSQLiteStorage(ctx context.Context, dsn string) (*SQLiteStorage, error) {
	driverName := "sqlite"
	if strings.Contains(dsn, "libsql://") || strings.Contains(dsn, "wss://") {
		driverName = "libsql"
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}
	// One connection keeps :memory: databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply links schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type sqliteTime time.Time

func (t *sqliteTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*t = sqliteTime(v.UTC())
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (t *sqliteTime) parse(s string) error {
	parsed, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
	}
	*t = sqliteTime(parsed.UTC())
	return nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

type sqliteLinkRow struct {
	ID          string     `db:"id"`
	OwnerID     string     `db:"user_id"`
	ShortCode   string     `db:"short_code"`
	OriginalURL string     `db:"original_url"`
	Title       *string    `db:"title"`
	Clicks      int64      `db:"clicks"`
	CreatedAt   sqliteTime `db:"created_at"`
	UpdatedAt   sqliteTime `db:"updated_at"`
}

func (r *sqliteLinkRow) toModel() *models.Link {
	return &models.Link{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		Title:       r.Title,
		Clicks:      r.Clicks,
		CreatedAt:   time.Time(r.CreatedAt),
		UpdatedAt:   time.Time(r.UpdatedAt),
	}
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *SQLiteStorage) getOne(ctx context.Context, query string, args ...interface{}) (*models.Link, error) {
	var row sqliteLinkRow
	err := s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (s *SQLiteStorage) Create(ctx context.Context, link *models.Link) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ts := now()
	query := `
		INSERT INTO links (id, user_id, short_code, original_url, title, clicks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		link.ID,
		link.OwnerID,
		link.ShortCode,
		link.OriginalURL,
		link.Title,
		formatSQLiteTime(ts),
		formatSQLiteTime(ts),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicateShortCode
		}
		return fmt.Errorf("failed to insert link: %w", err)
	}

	link.Clicks = 0
	link.CreatedAt = ts
	link.UpdatedAt = ts
	return nil
}

func (s *SQLiteStorage) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	link, err := s.getOne(ctx, `SELECT `+linkColumns+` FROM links WHERE short_code = ?`, shortCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get link by short code: %w", err)
	}
	return link, nil
}

func (s *SQLiteStorage) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM links WHERE short_code = ?)`, shortCode); err != nil {
		return false, fmt.Errorf("failed to check short code: %w", err)
	}
	return exists, nil
}

func (s *SQLiteStorage) GetForOwner(ctx context.Context, id, ownerID string) (*models.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	link, err := s.getOne(ctx, `SELECT `+linkColumns+` FROM links WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return link, nil
}

func (s *SQLiteStorage) ListByOwner(ctx context.Context, ownerID string) ([]*models.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	var rows []sqliteLinkRow
	query := `SELECT ` + linkColumns + ` FROM links WHERE user_id = ? ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	links := make([]*models.Link, 0, len(rows))
	for i := range rows {
		links = append(links, rows[i].toModel())
	}
	return links, nil
}

func (s *SQLiteStorage) UpdateForOwner(ctx context.Context, id, ownerID, originalURL string, title *string) (*models.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE links
		SET original_url = ?,
			title = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING ` + linkColumns

	link, err := s.getOne(ctx, query, originalURL, title, formatSQLiteTime(now()), id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to update link: %w", err)
	}
	return link, nil
}

func (s *SQLiteStorage) DeleteForOwner(ctx context.Context, id, ownerID string) (*models.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	link, err := s.getOne(ctx, `DELETE FROM links WHERE id = ? AND user_id = ? RETURNING `+linkColumns, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete link: %w", err)
	}
	return link, nil
}

func (s *SQLiteStorage) IncrementClicks(ctx context.Context, shortCode string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `UPDATE links SET clicks = clicks + 1 WHERE short_code = ?`, shortCode)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("short code %s: %w", shortCode, ErrLinkNotFound)
	}
	return nil
}

func (s *SQLiteStorage) IncrementClicksBy(ctx context.Context, counts map[string]int64) (int64, error) {
	if len(counts) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin click batch: %w", err)
	}
	defer tx.Rollback()

	var updated int64
	for _, code := range sortedCodes(counts) {
		res, err := tx.ExecContext(ctx, `UPDATE links SET clicks = clicks + ? WHERE short_code = ?`, counts[code], code)
		if err != nil {
			return 0, fmt.Errorf("failed to apply click batch: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		updated += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit click batch: %w", err)
	}
	return updated, nil
}
