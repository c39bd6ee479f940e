package cohort

import (
	"fmt"
	"math"
	"strconv"
)

// Sentinels reported when there is not enough data for a statistic.
const (
	NotAvailable = "N/A"
	NoData       = "No data"
)

// Stabilization search window and threshold. The first week from
// StabilizationFirstWeek through WeekCount whose cross-cohort standard
// deviation is below StabilizationMaxStdDev is the stabilization week.
const (
	StabilizationFirstWeek = 9
	StabilizationMaxStdDev = 3.0
)

// Color is the accent a summary card is rendered with.
type Color string

// Summary card colors.
const (
	Green Color = "green"
	Red   Color = "red"
	Amber Color = "amber"
	Blue  Color = "blue"
)

// Summary card labels, in display order.
const (
	LabelBestCohort    = "Best Cohort"
	LabelWorstCohort   = "Worst Cohort"
	LabelWeek4Drop     = "Avg Week 4 Drop"
	LabelStabilization = "Stabilization Point"
)

// SummaryStat is one display-ready summary card.
type SummaryStat struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Metric string `json:"metric"`
	Color  Color  `json:"color"`
}

// Ranked is a cohort picked as best or worst.
type Ranked struct {
	// Index is the row's position in the analysed slice.
	Index  int    `json:"index"`
	Cohort string `json:"cohort"`

	// LatestWeek and Latest are the highest-numbered observed week and its
	// value. They decide the ranking.
	LatestWeek int     `json:"latest_week"`
	Latest     float64 `json:"latest"`

	// DisplayWeek and Display are what the card shows: week 12 if present,
	// else week 11. Display is nil when both are censored, even if an earlier
	// week ranked the cohort.
	DisplayWeek int      `json:"display_week,omitempty"`
	Display     *float64 `json:"display"`
}

// Stats holds the numbers behind the summary cards.
type Stats struct {
	Cohorts int `json:"cohorts"`

	// Best and Worst are nil when no row has any observed week.
	Best  *Ranked `json:"best"`
	Worst *Ranked `json:"worst"`

	// Week4Samples is the number of rows with a week-4 value. AvgWeek4 is
	// their mean rounded half-up, or 0 without samples; Week4Drop is
	// 100 - AvgWeek4.
	Week4Samples int `json:"week4_samples"`
	AvgWeek4     int `json:"avg_week4"`
	Week4Drop    int `json:"week4_drop"`

	// StabilizationWeek defaults to StabilizationFirstWeek when no week
	// qualifies; Stabilized tells the two cases apart.
	StabilizationWeek   int     `json:"stabilization_week"`
	StabilizationStdDev float64 `json:"stabilization_stddev"`
	Stabilized          bool    `json:"stabilized"`
}

// Analyze derives the summary numbers for rows. rows is normally the output
// of FilterRows. It never fails; an empty slice yields zero Stats with the
// default stabilization week.
func Analyze(rows []Row) Stats {
	st := Stats{
		Cohorts:           len(rows),
		StabilizationWeek: StabilizationFirstWeek,
	}
	if len(rows) == 0 {
		return st
	}

	st.Best, st.Worst = rankCohorts(rows)

	var avg float64
	avg, st.Week4Samples = weekMean(rows, 4)
	st.AvgWeek4 = int(roundHalfUp(avg))
	st.Week4Drop = 100 - st.AvgWeek4

	for k := StabilizationFirstWeek; k <= WeekCount; k++ {
		values := weekValues(rows, k)
		if len(values) <= 1 {
			continue
		}
		if sd := stdDev(values); sd < StabilizationMaxStdDev {
			st.StabilizationWeek = k
			st.StabilizationStdDev = sd
			st.Stabilized = true
			break
		}
	}
	return st
}

// Summarize renders st as the four summary cards, in display order.
func Summarize(st Stats) [4]SummaryStat {
	if st.Cohorts == 0 {
		return [4]SummaryStat{
			{Label: LabelBestCohort, Value: NotAvailable, Metric: NoData, Color: Green},
			{Label: LabelWorstCohort, Value: NotAvailable, Metric: NoData, Color: Red},
			{Label: LabelWeek4Drop, Value: NotAvailable, Metric: NoData, Color: Amber},
			{Label: LabelStabilization, Value: NotAvailable, Metric: NoData, Color: Blue},
		}
	}

	stabilization := SummaryStat{
		Label:  LabelStabilization,
		Value:  fmt.Sprintf("Week %d", st.StabilizationWeek),
		Metric: fmt.Sprintf("no week under %s pt std dev", formatNumber(StabilizationMaxStdDev)),
		Color:  Blue,
	}
	if st.Stabilized {
		stabilization.Metric = fmt.Sprintf("%.1f pt std dev", st.StabilizationStdDev)
	}

	return [4]SummaryStat{
		rankedStat(LabelBestCohort, st.Best, Green),
		rankedStat(LabelWorstCohort, st.Worst, Red),
		{
			Label:  LabelWeek4Drop,
			Value:  fmt.Sprintf("%d%%", st.Week4Drop),
			Metric: "from signup",
			Color:  Amber,
		},
		stabilization,
	}
}

// ComputeSummary returns the four summary cards for rows.
func ComputeSummary(rows []Row) [4]SummaryStat {
	return Summarize(Analyze(rows))
}

// rankCohorts picks the rows with the highest and lowest latest observed
// retention. Comparisons are strict, so the first row wins a tie. Rows
// without any observed week are skipped.
func rankCohorts(rows []Row) (best, worst *Ranked) {
	for i, r := range rows {
		week, v, ok := r.Latest()
		if !ok {
			continue
		}
		if best == nil || v > best.Latest {
			best = newRanked(i, r, week, v)
		}
		if worst == nil || v < worst.Latest {
			worst = newRanked(i, r, week, v)
		}
	}
	return best, worst
}

func newRanked(i int, r Row, week int, v float64) *Ranked {
	out := &Ranked{Index: i, Cohort: r.Cohort, LatestWeek: week, Latest: v}
	for _, k := range []int{12, 11} {
		if d := r.Week(k); d != nil {
			out.DisplayWeek = k
			out.Display = Pct(*d)
			break
		}
	}
	return out
}

func rankedStat(label string, r *Ranked, c Color) SummaryStat {
	if r == nil {
		return SummaryStat{Label: label, Value: NotAvailable, Metric: NoData, Color: c}
	}
	metric := NotAvailable
	if r.Display != nil {
		metric = fmt.Sprintf("%s%% at W%d", formatNumber(*r.Display), r.DisplayWeek)
	}
	return SummaryStat{Label: label, Value: r.Cohort, Metric: metric, Color: c}
}

// weekValues collects the observed values of week k across rows.
func weekValues(rows []Row, k int) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v := r.Week(k); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// weekMean returns the mean of week k's observed values and how many there
// were. The mean is 0 when there are none.
func weekMean(rows []Row, k int) (float64, int) {
	values := weekValues(rows, k)
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), len(values)
}

// stdDev is the population standard deviation of values.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(values)))
}

// roundHalfUp rounds to the nearest integer, halves towards +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// formatNumber prints v without trailing zeros: 25, 25.5.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
