package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/telemetry"
	"github.com/huangsam/trendline/schema"
	"github.com/rs/zerolog"
)

// EngineConfig holds the per-deployment settings of an Engine.
type EngineConfig struct {
	Identity       schema.IdentityMode
	Periods        []schema.PeriodSetting
	SkippedModules []string
	Logger         *zerolog.Logger
	Metrics        *telemetry.EngineMetrics
}

// Engine runs analysis jobs. It does no locking: jobs for the same project
// must not run concurrently.
type Engine struct {
	store contract.SessionOpener
	clock contract.Clock
	cfg   EngineConfig
	log   zerolog.Logger
}

// NewEngine returns an engine writing through store.
func NewEngine(store contract.SessionOpener, clock contract.Clock, cfg EngineConfig) *Engine {
	l := zerolog.Nop()
	if cfg.Logger != nil {
		l = *cfg.Logger
	}
	return &Engine{store: store, clock: clock, cfg: cfg, log: l}
}

// steps returns the job steps bound to one session. Rows of the job share
// the stamp now.
func (e *Engine) steps(sess contract.Session, now time.Time) []Step {
	reconciler := NewReconciler(
		NewCachingRuleResolver(sess),
		NewIdentityResolver(e.cfg.Identity, sess),
		contract.FixedClock(now),
		WithLogger(e.log),
		WithMetrics(e.cfg.Metrics),
	)
	return []Step{
		persistComponentsStep{},
		trackIssuesStep{},
		persistIssuesStep{reconciler: reconciler},
		resolvePeriodsStep{registry: NewPeriodRegistry(sess)},
		computeMeasuresStep{variations: NewVariationComputer(sess)},
		storeMeasuresStep{purger: NewMeasurePurger(e.cfg.Metrics)},
		markLastSnapshotStep{},
		invalidateCacheStep{},
	}
}

// Run processes one report in a single session. Any failure rolls the whole
// job back.
func (e *Engine) Run(ctx context.Context, rep schema.Report) (schema.AnalysisSummary, error) {
	// Elapsed times use the monotonic wall clock; only stored stamps come from e.clock.
	start := time.Now()
	if rep.Project.Key == "" || rep.Project.UUID == "" {
		return schema.AnalysisSummary{}, errors.New("report has no project key or uuid")
	}
	ctx = withJobID(ctx, uuid.NewString())
	rep = FilterSkippedModules(rep, e.cfg.SkippedModules)

	now := e.clock.Now()
	date := rep.AnalysisDate
	if date.IsZero() {
		date = now
	}

	sess, err := e.store.Begin(ctx)
	if err != nil {
		return schema.AnalysisSummary{}, err
	}
	jc := newJobContext(rep, e.cfg.Periods, date, now, sess)
	logger := e.log.With().Str("job", jobIDFromContext(ctx)).Str("project", rep.Project.Key).Logger()

	for _, step := range e.steps(sess, now) {
		stepStart := time.Now()
		if err := step.Execute(ctx, jc); err != nil {
			_ = sess.Rollback()
			logger.Error().Err(err).Str("step", step.Description()).Msg("analysis failed")
			return jc.Summary, fmt.Errorf("%s: %w", step.Description(), err)
		}
		elapsed := time.Since(stepStart)
		e.cfg.Metrics.RecordStep(ctx, step.Description(), elapsed)
		logger.Debug().Str("step", step.Description()).Dur("elapsed", elapsed).Msg("step done")
	}
	if err := sess.Commit(); err != nil {
		return jc.Summary, err
	}

	jc.Summary.Duration = time.Since(start)
	logger.Info().
		Int64("snapshot", jc.Summary.SnapshotID).
		Int("inserted", jc.Summary.IssuesInserted).
		Int("updated", jc.Summary.IssuesUpdated).
		Int("closed", jc.Summary.IssuesClosed).
		Int("periods", len(jc.Summary.Periods)).
		Msg("analysis stored")
	return jc.Summary, nil
}
