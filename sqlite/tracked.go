package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pricewatch.TrackedURLService = (*TrackedURLService)(nil)

// TrackedURLService implements pricewatch.TrackedURLService using SQLite.
// URLs keep the order in which they were added.
type TrackedURLService struct {
	db *DB
}

// NewTrackedURLService creates a new TrackedURLService.
func NewTrackedURLService(db *DB) *TrackedURLService {
	return &TrackedURLService{db: db}
}

// FindURLsBySource returns the URLs tracked for source in insertion order.
func (s *TrackedURLService) FindURLsBySource(ctx context.Context, source pricewatch.Source) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url FROM tracked_urls
		WHERE source = ?
		ORDER BY position
	`, string(source))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// AddURL tracks url under source. Reports false if it was already tracked.
func (s *TrackedURLService) AddURL(ctx context.Context, source pricewatch.Source, url string) (bool, error) {
	if err := validateSource(source); err != nil {
		return false, err
	}
	if url == "" {
		return false, pricewatch.Errorf(pricewatch.EINVALID, "URL required")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tracked_urls (id, source, url, position, created_at)
		SELECT ?, ?, ?, COALESCE(MAX(position), 0) + 1, ?
		FROM tracked_urls
		WHERE true
		ON CONFLICT (source, url) DO NOTHING
	`, uuid.New().String(), string(source), url, formatTime(time.Now()))
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindAllURLs returns every source that has at least one tracked URL.
func (s *TrackedURLService) FindAllURLs(ctx context.Context) ([]pricewatch.SourceURLs, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT source, url FROM tracked_urls ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bySource := make(map[pricewatch.Source][]string)
	for rows.Next() {
		var source, url string
		if err := rows.Scan(&source, &url); err != nil {
			return nil, err
		}
		bySource[pricewatch.Source(source)] = append(bySource[pricewatch.Source(source)], url)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var groups []pricewatch.SourceURLs
	for _, source := range pricewatch.Sources() {
		if urls := bySource[source]; len(urls) > 0 {
			groups = append(groups, pricewatch.SourceURLs{Source: source, URLs: urls})
		}
	}
	return groups, nil
}

// UpdateURL replaces oldURL with newURL, keeping its position.
func (s *TrackedURLService) UpdateURL(ctx context.Context, source pricewatch.Source, oldURL, newURL string) error {
	if newURL == "" {
		return pricewatch.Errorf(pricewatch.EINVALID, "URL required")
	}

	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM tracked_urls WHERE source = ? AND url = ?
	`, string(source), oldURL).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return pricewatch.Errorf(pricewatch.ENOTFOUND, "URL not tracked for %s: %s", source, oldURL)
	}
	if err != nil {
		return err
	}
	if oldURL == newURL {
		return nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tracked_urls WHERE source = ? AND url = ?
	`, string(source), newURL).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return pricewatch.Errorf(pricewatch.ECONFLICT, "URL already tracked for %s: %s", source, newURL)
	}

	_, err = s.db.ExecContext(ctx, "UPDATE tracked_urls SET url = ? WHERE id = ?", newURL, id)
	return err
}

// DeleteURL stops tracking url.
func (s *TrackedURLService) DeleteURL(ctx context.Context, source pricewatch.Source, url string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tracked_urls WHERE source = ? AND url = ?", string(source), url)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return pricewatch.Errorf(pricewatch.ENOTFOUND, "URL not tracked for %s: %s", source, url)
	}

	return nil
}
