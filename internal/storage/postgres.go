package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Varun5711/shortlinks/internal/database"
	"github.com/Varun5711/shortlinks/internal/models"
)

const uniqueViolation = "23505"

const linkColumns = `id, user_id, short_code, original_url, title, clicks, created_at, updated_at`

type PostgresStorage struct {
	db *database.DBManager
}

func NewPostgresStorage(db *database.DBManager) *PostgresStorage {
	return &PostgresStorage{
		db: db,
	}
}

// EnsurePostgresSchema creates the links table when it does not exist yet.
func EnsurePostgresSchema(ctx context.Context, db *database.DBManager) error {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	if _, err := db.Write().Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("failed to apply links schema: %w", err)
	}
	return nil
}

func scanLink(row pgx.Row) (*models.Link, error) {
	var link models.Link
	err := row.Scan(
		&link.ID,
		&link.OwnerID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.Title,
		&link.Clicks,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *PostgresStorage) Create(ctx context.Context, link *models.Link) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO links (id, user_id, short_code, original_url, title, clicks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, NOW(), NOW())
		RETURNING clicks, created_at, updated_at
	`

	err := s.db.Write().QueryRow(ctx, query,
		link.ID,
		link.OwnerID,
		link.ShortCode,
		link.OriginalURL,
		link.Title,
	).Scan(&link.Clicks, &link.CreatedAt, &link.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateShortCode
		}
		return fmt.Errorf("failed to insert link: %w", err)
	}

	return nil
}

func (s *PostgresStorage) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1`

	// Resolves fill the shared cache, so they must not see a lagging replica.
	link, err := scanLink(s.db.Write().QueryRow(ctx, query, shortCode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link by short code: %w", err)
	}

	return link, nil
}

func (s *PostgresStorage) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM links WHERE short_code = $1)`
	if err := s.db.Write().QueryRow(ctx, query, shortCode).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check short code: %w", err)
	}
	return exists, nil
}

func (s *PostgresStorage) GetForOwner(ctx context.Context, id, ownerID string) (*models.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1 AND user_id = $2`

	link, err := scanLink(s.db.Read().QueryRow(ctx, query, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

func (s *PostgresStorage) ListByOwner(ctx context.Context, ownerID string) ([]*models.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Read().Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := make([]*models.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		links = append(links, link)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return links, nil
}

func (s *PostgresStorage) UpdateForOwner(ctx context.Context, id, ownerID, originalURL string, title *string) (*models.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE links
		SET original_url = $3,
			title = $4,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + linkColumns

	link, err := scanLink(s.db.Write().QueryRow(ctx, query, id, ownerID, originalURL, title))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update link: %w", err)
	}

	return link, nil
}

func (s *PostgresStorage) DeleteForOwner(ctx context.Context, id, ownerID string) (*models.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `DELETE FROM links WHERE id = $1 AND user_id = $2 RETURNING ` + linkColumns

	link, err := scanLink(s.db.Write().QueryRow(ctx, query, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete link: %w", err)
	}

	return link, nil
}

// IncrementClicks leaves updated_at alone; a click is not an owner edit.
func (s *PostgresStorage) IncrementClicks(ctx context.Context, shortCode string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `UPDATE links SET clicks = clicks + 1 WHERE short_code = $1`

	cmdTag, err := s.db.Write().Exec(ctx, query, shortCode)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("short code %s: %w", shortCode, ErrLinkNotFound)
	}

	return nil
}

func (s *PostgresStorage) IncrementClicksBy(ctx context.Context, counts map[string]int64) (int64, error) {
	if len(counts) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	var updated int64
	err := pgx.BeginFunc(ctx, s.db.Write(), func(tx pgx.Tx) error {
		for _, code := range sortedCodes(counts) {
			cmdTag, err := tx.Exec(ctx, `UPDATE links SET clicks = clicks + $2 WHERE short_code = $1`, code, counts[code])
			if err != nil {
				return err
			}
			updated += cmdTag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to apply click batch: %w", err)
	}

	return updated, nil
}

// sortedCodes fixes the row lock order so concurrent batches cannot deadlock.
func sortedCodes(counts map[string]int64) []string {
	codes := make([]string, 0, len(counts))
	for code, n := range counts {
		if n > 0 {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}
