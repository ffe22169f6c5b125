package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryService_CreateEntry(t *testing.T) {
	t.Parallel()

	t.Run("delegates to CreateEntryFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *pricewatch.HistoryEntry
		s := &mock.HistoryService{
			CreateEntryFn: func(_ context.Context, e *pricewatch.HistoryEntry) error {
				calledWith = e
				return nil
			},
		}

		entry := &pricewatch.HistoryEntry{URL: "https://www.paris.cl/x"}
		err := s.CreateEntry(context.Background(), entry)

		require.NoError(t, err)
		assert.Same(t, entry, calledWith)
	})

	t.Run("returns error from CreateEntryFn", func(t *testing.T) {
		t.Parallel()

		s := &mock.HistoryService{
			CreateEntryFn: func(_ context.Context, _ *pricewatch.HistoryEntry) error {
				return pricewatch.Errorf(pricewatch.EINVALID, "bad entry")
			},
		}

		err := s.CreateEntry(context.Background(), &pricewatch.HistoryEntry{})

		assert.Equal(t, pricewatch.EINVALID, pricewatch.ErrorCode(err))
	})
}
