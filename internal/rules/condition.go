package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cohortlens/cohortlens/internal/cohort"
)

// Fields lists the numeric fields a condition may reference.
var Fields = []string{
	"avg_week4_drop",
	"avg_week4",
	"stabilization_week",
	"best_retention",
	"worst_retention",
	"cohorts",
}

// condition is a parsed "field op value" expression.
type condition struct {
	field     string
	op        string
	threshold float64
}

// parseCondition parses an expression of the form field operator value:
//
//	avg_week4_drop > 55
//	stabilization_week >= 11
//	worst_retention < 20
//	cohorts == 0
func parseCondition(expr string) (condition, error) {
	parts := strings.Fields(expr)
	if len(parts) != 3 {
		return condition{}, fmt.Errorf("condition %q: want \"field op value\"", expr)
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	if !knownField(field) {
		return condition{}, fmt.Errorf("condition %q: unknown field %q", expr, field)
	}
	switch op {
	case ">", ">=", "<", "<=", "==":
	default:
		return condition{}, fmt.Errorf("condition %q: unknown operator %q", expr, op)
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return condition{}, fmt.Errorf("condition %q: value %q is not a number", expr, rhs)
	}
	return condition{field: field, op: op, threshold: threshold}, nil
}

// eval tests the condition against st. It returns whether it fires and the
// field value it was tested with. A field without data never fires.
func (c condition) eval(st cohort.Stats) (bool, float64) {
	v, ok := numericField(c.field, st)
	if !ok {
		return false, 0
	}
	return compareFloat(v, c.op, c.threshold), v
}

func knownField(field string) bool {
	for _, f := range Fields {
		if f == field {
			return true
		}
	}
	return false
}

// numericField maps a field name to its value in st. ok is false when the
// filtered view has no data for the field.
func numericField(field string, st cohort.Stats) (float64, bool) {
	if field == "cohorts" {
		return float64(st.Cohorts), true
	}
	if st.Cohorts == 0 {
		return 0, false
	}
	switch field {
	case "avg_week4_drop":
		return float64(st.Week4Drop), true
	case "avg_week4":
		return float64(st.AvgWeek4), true
	case "stabilization_week":
		return float64(st.StabilizationWeek), true
	case "best_retention":
		if st.Best == nil {
			return 0, false
		}
		return st.Best.Latest, true
	case "worst_retention":
		if st.Worst == nil {
			return 0, false
		}
		return st.Worst.Latest, true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
