package schema

// Variations holds one optional delta per period slot, indexed from 1.
type Variations [MaxPeriods]*float64

// Get returns the variation of period index, or nil.
func (v Variations) Get(index int) *float64 {
	if index < 1 || index > MaxPeriods {
		return nil
	}
	return v[index-1]
}

// Set stores the variation of period index. Out of range indexes are ignored.
func (v *Variations) Set(index int, value float64) {
	if index < 1 || index > MaxPeriods {
		return
	}
	v[index-1] = &value
}

// AllZero reports whether every slot is absent or exactly zero.
func (v Variations) AllZero() bool {
	for _, p := range v {
		if p != nil && *p != 0 {
			return false
		}
	}
	return true
}

// Measure is a metric value for a component at one snapshot.
type Measure struct {
	ID            int64      `json:"id,omitempty"`
	SnapshotID    int64      `json:"snapshot_id"`
	ComponentUUID string     `json:"component_uuid"`
	MetricKey     string     `json:"metric"`
	Value         *float64   `json:"value,omitempty"`
	Variations    Variations `json:"variations"`
}

// IsEmpty reports whether the measure carries no information and must not be stored.
func (m Measure) IsEmpty() bool {
	return m.Value == nil && m.Variations.AllZero()
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
