package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/store"
	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVariationComputer_Compute(t *testing.T) {
	sess := &store.MockSession{}
	sess.On("FindMeasure", mock.Anything, int64(10), "c1", "ncloc").Return(schema.Measure{Value: schema.Float(100)}, nil)
	sess.On("FindMeasure", mock.Anything, int64(20), "c1", "ncloc").Return(schema.Measure{}, contract.ErrNotFound)
	sess.On("FindMeasure", mock.Anything, int64(30), "c1", "ncloc").Return(schema.Measure{}, nil)

	periods := []schema.Period{
		{Index: 1, SnapshotID: 10},
		{Index: 2, SnapshotID: 20},
		{Index: 4, SnapshotID: 30},
	}
	vars, err := NewVariationComputer(sess).Compute(context.Background(), "ncloc", "c1", 130, periods)
	require.NoError(t, err)

	require.NotNil(t, vars.Get(1))
	assert.InDelta(t, 30.0, *vars.Get(1), 1e-9)
	assert.Nil(t, vars.Get(2), "no baseline measure")
	assert.Nil(t, vars.Get(3), "no period")
	assert.Nil(t, vars.Get(4), "baseline without value")
	assert.Nil(t, vars.Get(5))
}

func TestVariationComputer_Error(t *testing.T) {
	boom := errors.New("boom")
	sess := &store.MockSession{}
	sess.On("FindMeasure", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(schema.Measure{}, boom)

	_, err := NewVariationComputer(sess).Compute(context.Background(), "ncloc", "c1", 1, []schema.Period{{Index: 1, SnapshotID: 1}})
	require.ErrorIs(t, err, boom)
}

func TestNewIssuesVariations(t *testing.T) {
	base := time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{
		base.Add(-time.Hour),
		base,
		base.Add(time.Hour),
		base.AddDate(0, 0, 10),
	}
	periods := []schema.Period{
		{Index: 1, SnapshotDate: base},
		{Index: 3, SnapshotDate: base.AddDate(0, 0, 5)},
	}

	vars := NewIssuesVariations(dates, periods)
	require.NotNil(t, vars.Get(1))
	assert.InDelta(t, 2.0, *vars.Get(1), 1e-9, "strictly after the baseline")
	require.NotNil(t, vars.Get(3))
	assert.InDelta(t, 1.0, *vars.Get(3), 1e-9)
	assert.Nil(t, vars.Get(2))
}

func TestNewIssuesVariations_NoIssues(t *testing.T) {
	vars := NewIssuesVariations(nil, []schema.Period{{Index: 1}})
	require.NotNil(t, vars.Get(1))
	assert.Zero(t, *vars.Get(1))
	assert.True(t, vars.AllZero())
}
