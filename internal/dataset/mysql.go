package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/cohortlens/cohortlens/internal/cohort"
)

// Queries run by SQLSource. Both tables are in long format:
//
//	cohort_retention(cohort_order INT, cohort VARCHAR, week INT, retention DOUBLE NULL)
//	quarter_retention(week INT, quarter VARCHAR, retention DOUBLE NULL)
//
// quarter holds series keys such as "Q4_2025". Missing weeks are censored.
const (
	heatmapQuery = `
		SELECT cohort, week, retention
		FROM cohort_retention
		ORDER BY cohort_order, week`

	comparisonQuery = `
		SELECT week, quarter, retention
		FROM quarter_retention
		ORDER BY week`
)

// SQLSource reads the dataset from MySQL or MariaDB.
type SQLSource struct {
	// DSN is a mysql:// or mariadb:// URL, or a native driver DSN.
	DSN string

	// Timeout bounds the whole load. Zero means no timeout.
	Timeout time.Duration
}

// Load queries both tables, pivots them and validates the result.
func (s *SQLSource) Load(ctx context.Context) (*cohort.Data, error) {
	db, err := Open(s.DSN)
	if err != nil {
		return nil, fmt.Errorf("dataset: open mysql: %w", err)
	}
	defer db.Close()

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	cells, err := queryCohortCells(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("dataset: query cohort_retention: %w", err)
	}
	points, err := queryQuarterCells(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("dataset: query quarter_retention: %w", err)
	}

	data := &cohort.Data{}
	if data.Heatmap, err = pivotHeatmap(cells); err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	if data.Comparison, err = pivotComparison(points); err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	slog.Debug("dataset: loaded from mysql",
		"cohorts", len(data.Heatmap), "weeks", len(data.Comparison))
	return data, nil
}

// Open converts dsn to the driver format and opens a pool.
func Open(dsn string) (*sql.DB, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// toMySQLDSN converts mariadb:// and mysql:// URLs to the driver's
// user:pass@tcp(host)/db form. Anything else is passed through unchanged.
func toMySQLDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mariadb://") && !strings.HasPrefix(dsn, "mysql://") {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	db := strings.TrimPrefix(u.Path, "/")
	if user == "" || u.Host == "" || db == "" {
		return "", fmt.Errorf("dsn incomplete: user, host and database are required")
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC", user, pass, u.Host, db), nil
}

// cohortCell is one (cohort, week) row of cohort_retention.
type cohortCell struct {
	Cohort    string
	Week      int
	Retention sql.NullFloat64
}

// quarterCell is one (week, quarter) row of quarter_retention.
type quarterCell struct {
	Week      int
	Quarter   string
	Retention sql.NullFloat64
}

func queryCohortCells(ctx context.Context, db *sql.DB) ([]cohortCell, error) {
	rows, err := db.QueryContext(ctx, heatmapQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []cohortCell
	for rows.Next() {
		var c cohortCell
		if err := rows.Scan(&c.Cohort, &c.Week, &c.Retention); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func queryQuarterCells(ctx context.Context, db *sql.DB) ([]quarterCell, error) {
	rows, err := db.QueryContext(ctx, comparisonQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []quarterCell
	for rows.Next() {
		var c quarterCell
		if err := rows.Scan(&c.Week, &c.Quarter, &c.Retention); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// pivotHeatmap folds long-format cells into one Row per cohort, in order of
// first appearance.
func pivotHeatmap(cells []cohortCell) ([]cohort.Row, error) {
	out := []cohort.Row{}
	index := make(map[string]int)
	for _, c := range cells {
		if c.Week < 1 || c.Week > cohort.WeekCount {
			return nil, fmt.Errorf("cohort %q: week %d outside 1-%d", c.Cohort, c.Week, cohort.WeekCount)
		}
		i, ok := index[c.Cohort]
		if !ok {
			i = len(out)
			index[c.Cohort] = i
			out = append(out, cohort.Row{Cohort: c.Cohort})
		}
		if c.Retention.Valid {
			out[i].Values[c.Week-1] = cohort.Pct(c.Retention.Float64)
		}
	}
	return out, nil
}

// pivotComparison folds long-format cells into one QuarterPoint per week,
// in order of first appearance.
func pivotComparison(cells []quarterCell) ([]cohort.QuarterPoint, error) {
	out := []cohort.QuarterPoint{}
	index := make(map[int]int)
	for _, c := range cells {
		q, ok := cohort.QuarterForKey(c.Quarter)
		if !ok {
			return nil, fmt.Errorf("week %d: unknown quarter %q", c.Week, c.Quarter)
		}
		i, seen := index[c.Week]
		if !seen {
			i = len(out)
			index[c.Week] = i
			out = append(out, cohort.QuarterPoint{Week: c.Week})
		}
		if c.Retention.Valid {
			out[i].Set(q, cohort.Pct(c.Retention.Float64))
		}
	}
	return out, nil
}
