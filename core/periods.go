package core

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// PeriodRegistry resolves period settings against stored project history.
type PeriodRegistry struct {
	snapshots contract.SnapshotFinder
}

// NewPeriodRegistry returns a registry reading history from finder.
func NewPeriodRegistry(finder contract.SnapshotFinder) *PeriodRegistry {
	return &PeriodRegistry{snapshots: finder}
}

// Resolve loads the project history and resolves settings for the current
// snapshot of that project.
func (r *PeriodRegistry) Resolve(ctx context.Context, projectUUID string, settings []schema.PeriodSetting,
	current schema.Snapshot,
) ([]schema.Period, error) {
	history, err := r.snapshots.FindSnapshots(ctx, projectUUID)
	if err != nil {
		return nil, err
	}
	return ResolvePeriods(history, settings, current), nil
}

// ResolvePeriods picks the baseline snapshot of every setting among the
// snapshots that precede current: taken before current.CreatedAt, or at the
// same instant with a lower ID when current is stored. Periods without a
// baseline are omitted, so a project with no prior analysis gets an empty
// list. The result is ordered by index and two periods may share a baseline.
func ResolvePeriods(history []schema.Snapshot, settings []schema.PeriodSetting, current schema.Snapshot) []schema.Period {
	analysisDate, currentVersion := current.CreatedAt, current.Version
	var prior []schema.Snapshot
	for _, s := range history {
		if precedes(s, current) {
			prior = append(prior, s)
		}
	}
	if len(prior) == 0 {
		return nil
	}
	slices.SortStableFunc(prior, func(a, b schema.Snapshot) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	ordered := slices.Clone(settings)
	slices.SortStableFunc(ordered, func(a, b schema.PeriodSetting) int { return cmp.Compare(a.Index, b.Index) })

	var periods []schema.Period
	for _, setting := range ordered {
		snap, ok := findBaseline(prior, setting, analysisDate, currentVersion)
		if !ok {
			continue
		}
		periods = append(periods, schema.Period{
			Index:        setting.Index,
			Mode:         setting.Mode,
			Param:        setting.Param,
			SnapshotID:   snap.ID,
			SnapshotDate: snap.CreatedAt,
			Version:      snap.Version,
		})
	}
	return periods
}

// precedes reports whether s is an earlier analysis than current.
func precedes(s, current schema.Snapshot) bool {
	if s.CreatedAt.Before(current.CreatedAt) {
		return true
	}
	return current.ID != 0 && s.CreatedAt.Equal(current.CreatedAt) && s.ID < current.ID
}

// findBaseline applies one period mode to prior snapshots sorted oldest first.
func findBaseline(prior []schema.Snapshot, setting schema.PeriodSetting, analysisDate time.Time, currentVersion string) (schema.Snapshot, bool) {
	switch setting.Mode {
	case schema.PreviousAnalysisMode:
		return prior[len(prior)-1], true

	case schema.DateMode:
		// The whole day counts as "at or before" the date.
		end := setting.Date().AddDate(0, 0, 1)
		return latest(prior, func(s schema.Snapshot) bool { return s.CreatedAt.Before(end) })

	case schema.DaysMode:
		target := analysisDate.AddDate(0, 0, -setting.Days())
		if prior[0].CreatedAt.After(target) {
			return schema.Snapshot{}, false
		}
		return nearest(prior, target), true

	case schema.VersionMode:
		if setting.Param == currentVersion {
			return schema.Snapshot{}, false
		}
		return latest(prior, func(s schema.Snapshot) bool { return s.Version == setting.Param })

	case schema.PreviousVersionMode:
		return latest(prior, func(s schema.Snapshot) bool { return s.Version != "" && s.Version != currentVersion })
	}
	return schema.Snapshot{}, false
}

// latest returns the most recent snapshot matching keep.
func latest(prior []schema.Snapshot, keep func(schema.Snapshot) bool) (schema.Snapshot, bool) {
	for i := len(prior) - 1; i >= 0; i-- {
		if keep(prior[i]) {
			return prior[i], true
		}
	}
	return schema.Snapshot{}, false
}

// nearest returns the snapshot closest to target; ties go to the later one.
func nearest(prior []schema.Snapshot, target time.Time) schema.Snapshot {
	best := prior[0]
	bestDist := absDuration(best.CreatedAt.Sub(target))
	for _, s := range prior[1:] {
		if d := absDuration(s.CreatedAt.Sub(target)); d <= bestDist {
			best, bestDist = s, d
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
