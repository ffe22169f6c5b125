package pricewatch

import (
	"context"
	"fmt"
)

// Decision is the outcome of comparing a fresh product against history.
type Decision int

const (
	// DecisionDuplicate means every comparable slot equals the latest entry.
	DecisionDuplicate Decision = iota
	// DecisionBaseline means the URL has no history yet.
	DecisionBaseline
	// DecisionChange means at least one comparable slot differs.
	DecisionChange
	// DecisionRejected means the product had no valid price at all.
	DecisionRejected
)

// Stores reports whether the decision results in a history write.
func (d Decision) Stores() bool {
	return d == DecisionBaseline || d == DecisionChange
}

func (d Decision) String() string {
	switch d {
	case DecisionDuplicate:
		return "duplicate"
	case DecisionBaseline:
		return "baseline"
	case DecisionChange:
		return "change"
	case DecisionRejected:
		return "rejected"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Direction is the sign of a price movement.
type Direction int

// Price movement directions.
const (
	DirectionUnchanged Direction = iota
	DirectionUp
	DirectionDown
)

// PriceDelta describes the change of one slot.
type PriceDelta struct {
	Slot  Slot   `json:"slot"`
	Label string `json:"label"`
	Old   int64  `json:"old"`
	New   int64  `json:"new"`
}

// Direction returns whether the price went up or down.
func (d PriceDelta) Direction() Direction {
	switch {
	case d.New > d.Old:
		return DirectionUp
	case d.New < d.Old:
		return DirectionDown
	}
	return DirectionUnchanged
}

// Stage is the pipeline step a per-URL task reached.
type Stage string

// Pipeline stages.
const (
	StageFetching  Stage = "fetching"
	StageParsing   Stage = "parsing"
	StageDeciding  Stage = "deciding"
	StageStoring   Stage = "storing"
	StageNotifying Stage = "notifying"
	StageDone      Stage = "done"
)

// CheckResult is the outcome of checking one URL. Err is set when the task
// failed; Stage then names the step that failed.
type CheckResult struct {
	Source   Source       `json:"source"`
	URL      string       `json:"url"`
	Stage    Stage        `json:"stage"`
	Product  *Product     `json:"product,omitempty"`
	Decision Decision     `json:"decision"`
	Deltas   []PriceDelta `json:"deltas,omitempty"`
	Labels   LabelMapping `json:"-"`
	Stored   bool         `json:"stored"`
	Notified bool         `json:"notified"`
	Err      error        `json:"-"`
}

// Compared reports whether the task got as far as a decision.
func (r *CheckResult) Compared() bool {
	if r.Decision == DecisionRejected {
		return false
	}
	switch r.Stage {
	case StageStoring, StageNotifying:
		return true
	case StageDone:
		return r.Err == nil
	}
	return false
}

// CheckReport summarizes a batch.
type CheckReport struct {
	Results []*CheckResult `json:"results"`
}

// Counts returns the number of URLs checked, stored, changed and failed.
func (r *CheckReport) Counts() (checked, stored, changed, failed int) {
	for _, res := range r.Results {
		checked++
		if res.Stored {
			stored++
		}
		if res.Decision == DecisionChange {
			changed++
		}
		if res.Err != nil {
			failed++
		}
	}
	return checked, stored, changed, failed
}

// Summary returns a one-line description of the batch.
func (r *CheckReport) Summary() string {
	compared := 0
	for _, res := range r.Results {
		if res.Compared() {
			compared++
		}
	}
	if compared == 0 {
		return "nothing to compare"
	}
	checked, stored, changed, failed := r.Counts()
	return fmt.Sprintf("checked %d, changed %d, stored %d, failed %d", checked, changed, stored, failed)
}

// PriceChecker runs one check over every tracked URL.
type PriceChecker interface {
	CheckAll(ctx context.Context) (*CheckReport, error)
}
