package core

import (
	"context"
	"testing"

	"github.com/huangsam/trendline/internal/store"
	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMeasurePurger_Apply(t *testing.T) {
	zero := schema.Variations{}
	zero.Set(1, 0)
	nonZero := schema.Variations{}
	nonZero.Set(2, 3)

	tests := []struct {
		name    string
		measure schema.Measure
		stored  bool
		setup   func(*store.MockSession)
	}{
		{
			name:    "empty new measure is skipped",
			measure: schema.Measure{MetricKey: "new_violations", Variations: zero},
			setup:   func(*store.MockSession) {},
		},
		{
			name:    "empty stored measure is deleted",
			measure: schema.Measure{ID: 9, MetricKey: "new_violations"},
			setup: func(s *store.MockSession) {
				s.On("DeleteMeasure", mock.Anything, int64(9)).Return(nil).Once()
			},
		},
		{
			name:    "measure with value is saved",
			measure: schema.Measure{MetricKey: "violations", Value: schema.Float(0)},
			stored:  true,
			setup: func(s *store.MockSession) {
				s.On("SaveMeasure", mock.Anything, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:    "measure with a variation is saved",
			measure: schema.Measure{MetricKey: "new_violations", Variations: nonZero},
			stored:  true,
			setup: func(s *store.MockSession) {
				s.On("SaveMeasure", mock.Anything, mock.Anything).Return(nil).Once()
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &store.MockSession{}
			tt.setup(sess)
			m := tt.measure

			stored, err := NewMeasurePurger(nil).Apply(context.Background(), sess, &m)
			require.NoError(t, err)
			assert.Equal(t, tt.stored, stored)
			sess.AssertExpectations(t)
			if !tt.stored {
				sess.AssertNotCalled(t, "SaveMeasure", mock.Anything, mock.Anything)
				assert.Zero(t, m.ID)
			}
		})
	}
}
