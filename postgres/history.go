package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ pricewatch.HistoryService = (*HistoryService)(nil)

// HistoryService implements pricewatch.HistoryService using PostgreSQL.
type HistoryService struct {
	db *DB
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(db *DB) *HistoryService {
	return &HistoryService{db: db}
}

const historyColumns = "id, source, url, product_name, price1, price2, price3, page_hash, captured_at, created_at"

// CreateEntry appends an entry to the history.
func (s *HistoryService) CreateEntry(ctx context.Context, entry *pricewatch.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if _, err := pricewatch.ParseSource(string(entry.Source)); err != nil {
		return err
	}

	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now().UTC()
	if entry.CapturedAt.IsZero() {
		entry.CapturedAt = entry.CreatedAt
	}

	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO history (`+historyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, entry.ID, string(entry.Source), entry.URL, entry.ProductName,
		entry.Prices[0], entry.Prices[1], entry.Prices[2],
		entry.PageHash, entry.CapturedAt, entry.CreatedAt)
	return err
}

// FindLatestEntry returns the most recent entry for url by capture time.
func (s *HistoryService) FindLatestEntry(ctx context.Context, url string) (*pricewatch.HistoryEntry, error) {
	row := s.db.pool.QueryRow(ctx, `
		SELECT `+historyColumns+`
		FROM history
		WHERE url = $1
		ORDER BY captured_at DESC, created_at DESC
		LIMIT 1
	`, url)

	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pricewatch.Errorf(pricewatch.ENOTFOUND, "no history for %s", url)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// FindEntries retrieves entries matching the filter, newest first.
func (s *HistoryService) FindEntries(ctx context.Context, filter pricewatch.HistoryFilter) ([]*pricewatch.HistoryEntry, error) {
	var query strings.Builder
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	query.WriteString("SELECT " + historyColumns + " FROM history WHERE true")
	if filter.URL != nil {
		query.WriteString(" AND url = " + arg(*filter.URL))
	}
	if filter.Source != nil {
		query.WriteString(" AND source = " + arg(string(*filter.Source)))
	}
	query.WriteString(" ORDER BY captured_at DESC, created_at DESC")
	if filter.Limit > 0 {
		query.WriteString(" LIMIT " + arg(filter.Limit))
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET " + arg(filter.Offset))
	}

	rows, err := s.db.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*pricewatch.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*pricewatch.HistoryEntry, error) {
	var entry pricewatch.HistoryEntry
	var source string
	if err := row.Scan(&entry.ID, &source, &entry.URL, &entry.ProductName,
		&entry.Prices[0], &entry.Prices[1], &entry.Prices[2],
		&entry.PageHash, &entry.CapturedAt, &entry.CreatedAt); err != nil {
		return nil, err
	}
	entry.Source = pricewatch.Source(source)
	entry.CapturedAt = entry.CapturedAt.UTC()
	entry.CreatedAt = entry.CreatedAt.UTC()
	return &entry, nil
}
