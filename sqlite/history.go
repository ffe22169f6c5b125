package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pricewatch.HistoryService = (*HistoryService)(nil)

// HistoryService implements pricewatch.HistoryService using SQLite.
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
	if err := validateSource(entry.Source); err != nil {
		return err
	}

	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now().UTC()
	if entry.CapturedAt.IsZero() {
		entry.CapturedAt = entry.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (`+historyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, string(entry.Source), entry.URL, entry.ProductName,
		nullPrice(entry.Prices[0]), nullPrice(entry.Prices[1]), nullPrice(entry.Prices[2]),
		entry.PageHash, formatTime(entry.CapturedAt), formatTime(entry.CreatedAt))

	return err
}

// FindLatestEntry returns the most recent entry for url by capture time.
func (s *HistoryService) FindLatestEntry(ctx context.Context, url string) (*pricewatch.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+historyColumns+`
		FROM history
		WHERE url = ?
		ORDER BY captured_at DESC, created_at DESC
		LIMIT 1
	`, url)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
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

	query.WriteString("SELECT " + historyColumns + " FROM history WHERE 1=1")

	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Source != nil {
		query.WriteString(" AND source = ?")
		args = append(args, string(*filter.Source))
	}

	query.WriteString(" ORDER BY captured_at DESC, created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*pricewatch.HistoryEntry, error) {
	var entry pricewatch.HistoryEntry
	var source, capturedAt, createdAt string
	var prices [pricewatch.NumSlots]sql.NullInt64

	if err := row.Scan(&entry.ID, &source, &entry.URL, &entry.ProductName,
		&prices[0], &prices[1], &prices[2],
		&entry.PageHash, &capturedAt, &createdAt); err != nil {
		return nil, err
	}

	entry.Source = pricewatch.Source(source)
	for i, p := range prices {
		entry.Prices[i] = pricePtr(p)
	}

	var err error
	if entry.CapturedAt, err = parseRFC3339(capturedAt, "captured_at"); err != nil {
		return nil, err
	}
	if entry.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &entry, nil
}
