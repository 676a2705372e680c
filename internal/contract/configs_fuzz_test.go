package contract

import (
	"testing"

	"github.com/huangsam/trendline/schema"
)

// FuzzParsePeriodSetting fuzzes period parsing with arbitrary configuration values.
func FuzzParsePeriodSetting(f *testing.F) {
	for _, seed := range []string{"previous_analysis", "previous_version", "30", "-1", "2013-01-01", "1.0", ""} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		s, err := schema.ParsePeriodSetting(1, raw)
		if err != nil {
			return
		}
		if s.Mode == schema.DaysMode && s.Days() <= 0 {
			t.Errorf("days period with non-positive count: %q", raw)
		}
	})
}

// FuzzSplitList fuzzes list splitting.
func FuzzSplitList(f *testing.F) {
	f.Add("a,b,c")
	f.Add(" , ,")
	f.Fuzz(func(t *testing.T, s string) {
		for _, item := range SplitList(s) {
			if item == "" {
				t.Errorf("empty item from %q", s)
			}
		}
	})
}
