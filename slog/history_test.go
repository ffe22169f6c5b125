package slog_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/mock"
	pwslog "github.com/fwojciec/pricewatch/slog"
	"github.com/stretchr/testify/assert"
)

func TestLoggingHistoryService(t *testing.T) {
	t.Parallel()

	t.Run("not found passes through but is not logged as error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.HistoryService{
			FindLatestEntryFn: func(context.Context, string) (*pricewatch.HistoryEntry, error) {
				return nil, pricewatch.Errorf(pricewatch.ENOTFOUND, "no history")
			},
		}

		_, err := pwslog.NewLoggingHistoryService(inner, debugLogger(&buf)).FindLatestEntry(context.Background(), "https://www.paris.cl/a")

		assert.Equal(t, pricewatch.ENOTFOUND, pricewatch.ErrorCode(err))
		assert.Contains(t, buf.String(), "found=false")
		assert.NotContains(t, buf.String(), "no history")
	})

	t.Run("create logs assigned ID", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.HistoryService{
			CreateEntryFn: func(_ context.Context, e *pricewatch.HistoryEntry) error {
				e.ID = "entry-1"
				return nil
			},
		}

		err := pwslog.NewLoggingHistoryService(inner, debugLogger(&buf)).CreateEntry(context.Background(), &pricewatch.HistoryEntry{URL: "https://www.paris.cl/a"})

		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "id=entry-1")
	})

	t.Run("find entries logs count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.HistoryService{
			FindEntriesFn: func(context.Context, pricewatch.HistoryFilter) ([]*pricewatch.HistoryEntry, error) {
				return []*pricewatch.HistoryEntry{{}, {}}, nil
			},
		}

		entries, err := pwslog.NewLoggingHistoryService(inner, debugLogger(&buf)).FindEntries(context.Background(), pricewatch.HistoryFilter{})

		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Contains(t, buf.String(), "n=2")
	})
}
