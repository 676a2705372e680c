package core

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// VariationComputer computes measure deltas against period baselines.
type VariationComputer struct {
	measures contract.MeasureFinder
}

// NewVariationComputer returns a computer reading baselines from finder.
func NewVariationComputer(finder contract.MeasureFinder) *VariationComputer {
	return &VariationComputer{measures: finder}
}

// Compute returns current minus the stored value of metric for the component
// in each period's snapshot. A missing baseline leaves the slot absent.
func (v *VariationComputer) Compute(ctx context.Context, metric, componentUUID string, current float64, periods []schema.Period) (schema.Variations, error) {
	var out schema.Variations
	for _, p := range periods {
		base, err := v.measures.FindMeasure(ctx, p.SnapshotID, componentUUID, metric)
		if errors.Is(err, contract.ErrNotFound) {
			continue
		}
		if err != nil {
			return out, err
		}
		if base.Value == nil {
			continue
		}
		out.Set(p.Index, current-*base.Value)
	}
	return out, nil
}

// NewIssuesVariations counts, per period, the open issues created strictly
// after the period's snapshot date.
func NewIssuesVariations(creationDates []time.Time, periods []schema.Period) schema.Variations {
	var out schema.Variations
	for _, p := range periods {
		n := 0
		for _, d := range creationDates {
			if d.After(p.SnapshotDate) {
				n++
			}
		}
		out.Set(p.Index, float64(n))
	}
	return out
}
