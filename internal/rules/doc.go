// Package rules evaluates threshold conditions against cohort summary
// statistics. A rule such as "avg_week4_drop > 55" fires when the named
// field of a view's Stats satisfies the comparison. Rules are evaluated per
// view; fields without data (for example best_retention over an empty
// filter) never fire.
package rules
