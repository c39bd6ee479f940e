// Package cohort derives retention summaries from cohort heatmap rows and
// quarterly comparison curves.
//
// quarter.go maps signup-month labels ("Oct 2025") and user filters
// (all|q1|q2|q3|q4) onto quarters, their display labels and their series keys.
//
// filter.go provides FilterRows and FilterSeries. A quarter filter narrows the
// comparison series to a SingleQuarter; the unfiltered series is AllQuarters.
//
// summary.go provides the pure Analyze(rows) and Summarize(Stats) functions.
// ComputeSummary combines them into the four display-ready statistics:
// best cohort, worst cohort, average week-4 drop and stabilization week.
//
// engine.go provides Compute(data, filter) and the Engine that holds the
// currently loaded dataset so it can be swapped when fixtures are reloaded.
//
// None of the functions in this package return errors. Missing or
// unclassifiable data degrades to "N/A" / "No data" sentinels.
package cohort
