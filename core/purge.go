package core

import (
	"context"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/telemetry"
	"github.com/huangsam/trendline/schema"
)

// MeasurePurger stores measures that carry information and drops the rest.
type MeasurePurger struct {
	metrics *telemetry.EngineMetrics
}

// NewMeasurePurger returns a purger recording to metrics, which may be nil.
func NewMeasurePurger(metrics *telemetry.EngineMetrics) *MeasurePurger {
	return &MeasurePurger{metrics: metrics}
}

// Apply saves m unless it is empty. An empty measure is never inserted and is
// deleted when it was stored before. It reports whether m was stored.
func (p *MeasurePurger) Apply(ctx context.Context, sess contract.Session, m *schema.Measure) (bool, error) {
	if m.IsEmpty() {
		if m.ID != 0 {
			if err := sess.DeleteMeasure(ctx, m.ID); err != nil {
				return false, err
			}
			m.ID = 0
		}
		p.metrics.RecordMeasure(ctx, false)
		return false, nil
	}
	if err := sess.SaveMeasure(ctx, m); err != nil {
		return false, err
	}
	p.metrics.RecordMeasure(ctx, true)
	return true, nil
}
