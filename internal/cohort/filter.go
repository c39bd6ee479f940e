package cohort

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FilterRows returns the heatmap rows that belong to f.
//
// For All the input slice itself is returned; callers must not mutate it.
// For a quarter the result is a fresh slice holding, in input order, the rows
// whose label classifies into that quarter. Rows with unclassifiable labels
// never match a quarter filter. An empty result is not an error.
func FilterRows(rows []Row, f Filter) []Row {
	if f == All {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if q, ok := ClassifyMonth(r.Cohort); ok && q == f {
			out = append(out, r)
		}
	}
	return out
}

// Series is a filtered comparison series: either AllQuarters or
// SingleQuarter.
type Series interface {
	// Len returns the number of weekly points.
	Len() int
	isSeries()
}

// AllQuarters is the unfiltered comparison series with every quarter field.
type AllQuarters struct {
	Points []QuarterPoint
}

func (AllQuarters) isSeries() {}

// Len implements Series.
func (s AllQuarters) Len() int { return len(s.Points) }

// MarshalJSON encodes the points as a JSON array. A nil slice encodes as [].
func (s AllQuarters) MarshalJSON() ([]byte, error) {
	if s.Points == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Points)
}

// WeekValue is one week of a single quarter's curve.
type WeekValue struct {
	Week  int
	Value *float64
}

// SingleQuarter is the comparison series narrowed to one quarter. The other
// quarters are dropped, not nulled.
type SingleQuarter struct {
	Quarter Filter
	Key     string // e.g. "Q4_2025"
	Values  []WeekValue
}

func (SingleQuarter) isSeries() {}

// Len implements Series.
func (s SingleQuarter) Len() int { return len(s.Values) }

// MarshalJSON encodes each point with exactly two keys:
// [{"week": 1, "Q4_2025": 89}, ...].
func (s SingleQuarter) MarshalJSON() ([]byte, error) {
	key, err := json.Marshal(s.Key)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	b.WriteByte('[')
	for i, v := range s.Values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"week":`)
		b.WriteString(strconv.Itoa(v.Week))
		b.WriteByte(',')
		b.Write(key)
		b.WriteByte(':')
		b.WriteString(formatNullable(v.Value))
		b.WriteByte('}')
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

// FilterSeries narrows the comparison points to f.
//
// All returns every point unchanged, wrapped in AllQuarters. A quarter filter
// returns a SingleQuarter holding that quarter's value for every week,
// nil values included. Any other filter yields an empty SingleQuarter.
func FilterSeries(points []QuarterPoint, f Filter) Series {
	if f == All {
		return AllQuarters{Points: points}
	}
	out := SingleQuarter{Quarter: f, Key: f.SeriesKey()}
	if !f.IsQuarter() {
		return out
	}
	out.Values = make([]WeekValue, 0, len(points))
	for _, p := range points {
		out.Values = append(out.Values, WeekValue{Week: p.Week, Value: p.Value(f)})
	}
	return out
}
