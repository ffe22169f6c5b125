package pricewatch_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/pricewatch"
	"github.com/stretchr/testify/assert"
)

func TestDecision_Stores(t *testing.T) {
	t.Parallel()

	assert.True(t, pricewatch.DecisionBaseline.Stores())
	assert.True(t, pricewatch.DecisionChange.Stores())
	assert.False(t, pricewatch.DecisionDuplicate.Stores())
	assert.False(t, pricewatch.DecisionRejected.Stores())
}

func TestPriceDelta_Direction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pricewatch.DirectionDown, pricewatch.PriceDelta{Old: 100, New: 90}.Direction())
	assert.Equal(t, pricewatch.DirectionUp, pricewatch.PriceDelta{Old: 90, New: 100}.Direction())
	assert.Equal(t, pricewatch.DirectionUnchanged, pricewatch.PriceDelta{Old: 90, New: 90}.Direction())
}

func TestCheckReport_Summary(t *testing.T) {
	t.Parallel()

	t.Run("nothing to compare for empty batch", func(t *testing.T) {
		t.Parallel()

		report := &pricewatch.CheckReport{}
		assert.Equal(t, "nothing to compare", report.Summary())
	})

	t.Run("nothing to compare when every task failed early", func(t *testing.T) {
		t.Parallel()

		report := &pricewatch.CheckReport{Results: []*pricewatch.CheckResult{
			{URL: "a", Stage: pricewatch.StageFetching, Err: errors.New("timeout")},
			{URL: "b", Stage: pricewatch.StageParsing, Err: errors.New("empty")},
		}}
		assert.Equal(t, "nothing to compare", report.Summary())
	})

	t.Run("nothing to compare when every product was rejected", func(t *testing.T) {
		t.Parallel()

		rejected := &pricewatch.CheckResult{URL: "a", Stage: pricewatch.StageDone, Decision: pricewatch.DecisionRejected}
		assert.False(t, rejected.Compared())

		report := &pricewatch.CheckReport{Results: []*pricewatch.CheckResult{
			rejected,
			{URL: "b", Stage: pricewatch.StageDone, Decision: pricewatch.DecisionRejected},
		}}
		assert.Equal(t, "nothing to compare", report.Summary())
	})

	t.Run("counts outcomes", func(t *testing.T) {
		t.Parallel()

		report := &pricewatch.CheckReport{Results: []*pricewatch.CheckResult{
			{URL: "a", Stage: pricewatch.StageDone, Decision: pricewatch.DecisionChange, Stored: true},
			{URL: "b", Stage: pricewatch.StageDone, Decision: pricewatch.DecisionBaseline, Stored: true},
			{URL: "c", Stage: pricewatch.StageDone, Decision: pricewatch.DecisionDuplicate},
			{URL: "d", Stage: pricewatch.StageFetching, Err: errors.New("timeout")},
		}}

		checked, stored, changed, failed := report.Counts()
		assert.Equal(t, 4, checked)
		assert.Equal(t, 2, stored)
		assert.Equal(t, 1, changed)
		assert.Equal(t, 1, failed)
		assert.Equal(t, "checked 4, changed 1, stored 2, failed 1", report.Summary())
	})

	t.Run("notifier failure still counts as compared", func(t *testing.T) {
		t.Parallel()

		report := &pricewatch.CheckReport{Results: []*pricewatch.CheckResult{
			{URL: "a", Stage: pricewatch.StageNotifying, Decision: pricewatch.DecisionChange, Stored: true, Err: errors.New("webhook down")},
		}}
		assert.NotEqual(t, "nothing to compare", report.Summary())
	})
}
