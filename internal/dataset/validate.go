package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cohortlens/cohortlens/internal/cohort"
)

// Validate checks the invariants the cohort package relies on. It returns
// nil or an error joining every violation found.
func Validate(data *cohort.Data) error {
	if data == nil {
		return errors.New("dataset: no data")
	}
	var errs []error

	seen := make(map[string]int, len(data.Heatmap))
	for i, r := range data.Heatmap {
		if strings.TrimSpace(r.Cohort) == "" {
			errs = append(errs, fmt.Errorf("heatmapData[%d]: cohort label is required", i))
		} else if first, dup := seen[r.Cohort]; dup {
			errs = append(errs, fmt.Errorf("heatmapData[%d] %q: duplicate of heatmapData[%d]", i, r.Cohort, first))
		} else {
			seen[r.Cohort] = i
		}
		if _, ok := cohort.ClassifyMonth(r.Cohort); !ok {
			slog.Debug("dataset: cohort label has no quarter, quarter filters will skip it",
				"cohort", r.Cohort)
		}

		censoredAt := 0
		for k := 1; k <= cohort.WeekCount; k++ {
			v := r.Week(k)
			if v == nil {
				if censoredAt == 0 {
					censoredAt = k
				}
				continue
			}
			if censoredAt != 0 {
				errs = append(errs, fmt.Errorf("heatmapData[%d] %q: week%d has a value after week%d is null",
					i, r.Cohort, k, censoredAt))
				break
			}
			if *v < 0 || *v > 100 {
				errs = append(errs, fmt.Errorf("heatmapData[%d] %q: week%d = %g is outside 0-100",
					i, r.Cohort, k, *v))
			}
		}
	}

	weeks := make(map[int]int, len(data.Comparison))
	for i, p := range data.Comparison {
		if p.Week < 1 {
			errs = append(errs, fmt.Errorf("cohortComparison[%d]: week %d must be positive", i, p.Week))
		} else if first, dup := weeks[p.Week]; dup {
			errs = append(errs, fmt.Errorf("cohortComparison[%d]: week %d duplicates cohortComparison[%d]",
				i, p.Week, first))
		} else {
			weeks[p.Week] = i
		}
		for _, q := range cohort.Quarters {
			if v := p.Value(q); v != nil && (*v < 0 || *v > 100) {
				errs = append(errs, fmt.Errorf("cohortComparison[%d] %s: %g is outside 0-100",
					i, q.SeriesKey(), *v))
			}
		}
	}

	return errors.Join(errs...)
}
