package cohort

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// WeekCount is the number of weekly retention columns in a heatmap row.
const WeekCount = 12

// Row is one signup cohort in the retention heatmap.
//
// Values[k-1] holds the retention percentage at week k. A nil value means the
// cohort has not reached that age yet (right-censored), not zero retention.
// Rows are expected to be monotonically censored: once a week is nil every
// later week is nil too. The dataset loader enforces that, this package
// does not.
type Row struct {
	Cohort string
	Values [WeekCount]*float64
}

// Week returns the retention at week k (1-based), or nil if k is out of range
// or the week is censored.
func (r Row) Week(k int) *float64 {
	if k < 1 || k > WeekCount {
		return nil
	}
	return r.Values[k-1]
}

// Latest returns the highest-numbered week with a value, scanning from week
// 12 down to week 1. ok is false when every week is censored.
func (r Row) Latest() (week int, value float64, ok bool) {
	for k := WeekCount; k >= 1; k-- {
		if v := r.Week(k); v != nil {
			return k, *v, true
		}
	}
	return 0, 0, false
}

// MarshalJSON encodes the row in the fixture shape:
// {"cohort": "Oct 2025", "week1": 89, ..., "week12": null}.
func (r Row) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteString(`{"cohort":`)
	label, err := json.Marshal(r.Cohort)
	if err != nil {
		return nil, err
	}
	b.Write(label)
	for k := 1; k <= WeekCount; k++ {
		b.WriteString(`,"week`)
		b.WriteString(strconv.Itoa(k))
		b.WriteString(`":`)
		b.WriteString(formatNullable(r.Week(k)))
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// UnmarshalJSON decodes the fixture shape. Missing week keys decode as
// censored; keys other than cohort and week1..week12 are ignored.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Row
	if v, ok := raw["cohort"]; ok {
		if err := json.Unmarshal(v, &out.Cohort); err != nil {
			return fmt.Errorf("cohort: %w", err)
		}
	}
	for k := 1; k <= WeekCount; k++ {
		key := "week" + strconv.Itoa(k)
		v, ok := raw[key]
		if !ok {
			continue
		}
		var f *float64
		if err := json.Unmarshal(v, &f); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		out.Values[k-1] = f
	}
	*r = out
	return nil
}

// QuarterPoint is one week of the quarterly comparison curves. A nil quarter
// value means that quarter's cohorts have not reached the week yet.
type QuarterPoint struct {
	Week int      `json:"week"`
	Q1   *float64 `json:"Q1_2025"`
	Q2   *float64 `json:"Q2_2025"`
	Q3   *float64 `json:"Q3_2025"`
	Q4   *float64 `json:"Q4_2025"`
}

// Value returns the point's value for quarter q, or nil for All and unknown
// filters.
func (p QuarterPoint) Value(q Filter) *float64 {
	switch q {
	case Q1:
		return p.Q1
	case Q2:
		return p.Q2
	case Q3:
		return p.Q3
	case Q4:
		return p.Q4
	default:
		return nil
	}
}

// Set stores v as the point's value for quarter q. Non-quarter filters are
// ignored.
func (p *QuarterPoint) Set(q Filter, v *float64) {
	switch q {
	case Q1:
		p.Q1 = v
	case Q2:
		p.Q2 = v
	case Q3:
		p.Q3 = v
	case Q4:
		p.Q4 = v
	}
}

// Data is the raw dataset the dashboard reads: the heatmap rows and the
// quarterly comparison series, in fixture order.
type Data struct {
	Heatmap    []Row          `json:"heatmapData"`
	Comparison []QuarterPoint `json:"cohortComparison"`
}

// Pct returns a pointer to v. It is a convenience for building rows and
// points in code.
func Pct(v float64) *float64 {
	return &v
}

// formatNullable renders v as a JSON number, or null when v is nil.
func formatNullable(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
