package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriodSetting(t *testing.T) {
	tests := []struct {
		raw   string
		mode  PeriodMode
		param string
	}{
		{"previous_analysis", PreviousAnalysisMode, ""},
		{"PREVIOUS_VERSION", PreviousVersionMode, ""},
		{"30", DaysMode, "30"},
		{"2013-01-01", DateMode, "2013-01-01"},
		{"1.0", VersionMode, "1.0"},
		{" 2.3-SNAPSHOT ", VersionMode, "2.3-SNAPSHOT"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			s, err := ParsePeriodSetting(2, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, 2, s.Index)
			assert.Equal(t, tt.mode, s.Mode)
			assert.Equal(t, tt.param, s.Param)
		})
	}

	t.Run("errors", func(t *testing.T) {
		for _, raw := range []string{"", "-3", "0"} {
			_, err := ParsePeriodSetting(1, raw)
			assert.ErrorIs(t, err, ErrInvalidPeriod, raw)
		}
		_, err := ParsePeriodSetting(6, "30")
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})
}

func TestPeriodSettingAccessors(t *testing.T) {
	days, err := ParsePeriodSetting(2, "30")
	require.NoError(t, err)
	assert.Equal(t, 30, days.Days())

	date, err := ParsePeriodSetting(3, "2013-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC), date.Date())
}

func TestParsePeriodSettings(t *testing.T) {
	settings, err := ParsePeriodSettings([]string{"previous_analysis", "30", "", "", "1.0"})
	require.NoError(t, err)
	require.Len(t, settings, 3)
	assert.Equal(t, 1, settings[0].Index)
	assert.Equal(t, 2, settings[1].Index)
	assert.Equal(t, 5, settings[2].Index)

	_, err = ParsePeriodSettings(make([]string, 6))
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestMeasureIsEmpty(t *testing.T) {
	var m Measure
	assert.True(t, m.IsEmpty())

	m.Variations.Set(1, 0)
	m.Variations.Set(2, 0)
	assert.True(t, m.IsEmpty())

	m.Variations.Set(3, -2)
	assert.False(t, m.IsEmpty())
	assert.Equal(t, -2.0, *m.Variations.Get(3))
	assert.Nil(t, m.Variations.Get(4))
	assert.Nil(t, m.Variations.Get(9))

	withValue := Measure{Value: Float(0)}
	assert.False(t, withValue.IsEmpty())
}
