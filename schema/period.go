package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxPeriods is the number of period slots a project can configure.
const MaxPeriods = 5

// PeriodDateLayout is the layout of date period parameters.
const PeriodDateLayout = "2006-01-02"

// ErrInvalidPeriod is returned for malformed period settings.
var ErrInvalidPeriod = errors.New("invalid period setting")

// PeriodMode is the way a period baseline is chosen.
type PeriodMode string

// All period modes supported.
const (
	PreviousAnalysisMode PeriodMode = "previous_analysis"
	DateMode             PeriodMode = "date"
	DaysMode             PeriodMode = "days"
	VersionMode          PeriodMode = "version"
	PreviousVersionMode  PeriodMode = "previous_version"
)

// PeriodSetting is the configuration of one period slot.
type PeriodSetting struct {
	Index int        `json:"index"`
	Mode  PeriodMode `json:"mode"`
	Param string     `json:"param,omitempty"`
}

// Period is a period setting resolved against project history.
type Period struct {
	Index        int        `json:"index"`
	Mode         PeriodMode `json:"mode"`
	Param        string     `json:"param,omitempty"`
	SnapshotID   int64      `json:"snapshot_id"`
	SnapshotDate time.Time  `json:"snapshot_date"`
	Version      string     `json:"version,omitempty"`
}

// Days returns the day count of a days period.
func (s PeriodSetting) Days() int {
	n, _ := strconv.Atoi(s.Param)
	return n
}

// Date returns the target date of a date period.
func (s PeriodSetting) Date() time.Time {
	t, _ := time.ParseInLocation(PeriodDateLayout, s.Param, time.UTC)
	return t
}

// String returns the raw configuration form of the setting.
func (s PeriodSetting) String() string {
	switch s.Mode {
	case PreviousAnalysisMode, PreviousVersionMode:
		return string(s.Mode)
	default:
		return s.Param
	}
}

// Label returns a short human description of the period.
func (p Period) Label() string {
	switch p.Mode {
	case PreviousAnalysisMode:
		return "since previous analysis"
	case DaysMode:
		return fmt.Sprintf("over %s days", p.Param)
	case DateMode:
		return "since " + p.Param
	case VersionMode:
		return "since version " + p.Param
	case PreviousVersionMode:
		if p.Version != "" {
			return "since previous version (" + p.Version + ")"
		}
		return "since previous version"
	default:
		return string(p.Mode)
	}
}

// ParsePeriodSetting parses the configured value of period slot index.
// Accepted forms: previous_analysis, previous_version, a positive day count,
// a yyyy-MM-dd date, or any other string naming a version.
func ParsePeriodSetting(index int, raw string) (PeriodSetting, error) {
	if index < 1 || index > MaxPeriods {
		return PeriodSetting{}, fmt.Errorf("%w: index %d out of range 1..%d", ErrInvalidPeriod, index, MaxPeriods)
	}
	raw = strings.TrimSpace(raw)
	setting := PeriodSetting{Index: index, Param: raw}
	switch {
	case raw == "":
		return PeriodSetting{}, fmt.Errorf("%w: period%d is empty", ErrInvalidPeriod, index)
	case strings.EqualFold(raw, string(PreviousAnalysisMode)):
		setting.Mode = PreviousAnalysisMode
		setting.Param = ""
	case strings.EqualFold(raw, string(PreviousVersionMode)):
		setting.Mode = PreviousVersionMode
		setting.Param = ""
	default:
		if n, err := strconv.Atoi(raw); err == nil {
			if n <= 0 {
				return PeriodSetting{}, fmt.Errorf("%w: period%d days must be positive, got %d", ErrInvalidPeriod, index, n)
			}
			setting.Mode = DaysMode
		} else if _, err := time.Parse(PeriodDateLayout, raw); err == nil {
			setting.Mode = DateMode
		} else {
			setting.Mode = VersionMode
		}
	}
	return setting, nil
}

// ParsePeriodSettings parses up to MaxPeriods raw values. Slot i+1 comes from
// raw[i]; empty values leave the slot unconfigured.
func ParsePeriodSettings(raw []string) ([]PeriodSetting, error) {
	if len(raw) > MaxPeriods {
		return nil, fmt.Errorf("%w: at most %d periods, got %d", ErrInvalidPeriod, MaxPeriods, len(raw))
	}
	var settings []PeriodSetting
	for idx, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		s, err := ParsePeriodSetting(idx+1, r)
		if err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, nil
}
