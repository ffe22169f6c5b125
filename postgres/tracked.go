package postgres

import (
	"context"
	"errors"

	"github.com/fwojciec/pricewatch"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ pricewatch.TrackedURLService = (*TrackedURLService)(nil)

// TrackedURLService implements pricewatch.TrackedURLService using PostgreSQL.
type TrackedURLService struct {
	db *DB
}

// NewTrackedURLService creates a new TrackedURLService.
func NewTrackedURLService(db *DB) *TrackedURLService {
	return &TrackedURLService{db: db}
}

// FindURLsBySource returns the URLs tracked for source in insertion order.
func (s *TrackedURLService) FindURLsBySource(ctx context.Context, source pricewatch.Source) ([]string, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT url FROM tracked_urls WHERE source = $1 ORDER BY position
	`, string(source))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// AddURL tracks url under source. Reports false if it was already tracked.
func (s *TrackedURLService) AddURL(ctx context.Context, source pricewatch.Source, url string) (bool, error) {
	if _, err := pricewatch.ParseSource(string(source)); err != nil {
		return false, err
	}
	if url == "" {
		return false, pricewatch.Errorf(pricewatch.EINVALID, "URL required")
	}

	tag, err := s.db.pool.Exec(ctx, `
		INSERT INTO tracked_urls (id, source, url)
		VALUES ($1, $2, $3)
		ON CONFLICT (source, url) DO NOTHING
	`, uuid.New().String(), string(source), url)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FindAllURLs returns every source that has at least one tracked URL.
func (s *TrackedURLService) FindAllURLs(ctx context.Context) ([]pricewatch.SourceURLs, error) {
	rows, err := s.db.pool.Query(ctx, "SELECT source, url FROM tracked_urls ORDER BY position")
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
	err := s.db.pool.QueryRow(ctx, `
		UPDATE tracked_urls SET url = $3 WHERE source = $1 AND url = $2 RETURNING id
	`, string(source), oldURL, newURL).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return pricewatch.Errorf(pricewatch.ENOTFOUND, "URL not tracked for %s: %s", source, oldURL)
	case isUniqueViolation(err):
		return pricewatch.Errorf(pricewatch.ECONFLICT, "URL already tracked for %s: %s", source, newURL)
	}
	return err
}

// DeleteURL stops tracking url.
func (s *TrackedURLService) DeleteURL(ctx context.Context, source pricewatch.Source, url string) error {
	tag, err := s.db.pool.Exec(ctx, "DELETE FROM tracked_urls WHERE source = $1 AND url = $2", string(source), url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pricewatch.Errorf(pricewatch.ENOTFOUND, "URL not tracked for %s: %s", source, url)
	}
	return nil
}
