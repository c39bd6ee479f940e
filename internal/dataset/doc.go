// Package dataset loads the cohort fixtures and guards the boundary between
// raw records and the cohort package.
//
// A Source returns a validated *cohort.Data:
//   - FileSource reads the dashboard JSON fixture
//     ({"heatmapData": [...], "cohortComparison": [...]}).
//   - SQLSource reads the same shapes from MySQL/MariaDB tables stored in
//     long format (one row per cohort and week) and pivots them.
//
// Validate enforces what the summary functions assume without checking:
// monotonic right-censoring, retention within 0–100, unique cohort labels
// and unique comparison weeks. Every violation is reported, joined into one
// error.
//
// Watch(ctx, path, onChange) uses fsnotify to reload a fixture file when it
// changes and hands the new data to onChange. A reload that fails to parse or
// validate is logged and the previous data stays in use.
package dataset
