package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cohortlens/cohortlens/internal/cohort"
	"github.com/cohortlens/cohortlens/internal/rules"
)

// censored is printed for weeks a cohort has not reached yet.
const censored = "-"

// RenderView writes the summary, heatmap and comparison series of v.
func RenderView(w io.Writer, v cohort.View) error {
	if err := RenderSummary(w, v); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := RenderRows(w, v.Rows); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return RenderSeries(w, v.Series)
}

// RenderSummary writes the four summary cards of v, one per line. Each card
// value is painted in the card's accent color.
func RenderSummary(w io.Writer, v cohort.View) error {
	title := fmt.Sprintf("Summary: %s (%d cohorts)", v.Label, v.Stats.Cohorts)
	if _, err := fmt.Fprintln(w, SectionTitle(title)); err != nil {
		return err
	}

	var labelWidth, valueWidth int
	for _, s := range v.Summary {
		labelWidth = max(labelWidth, len(s.Label))
		valueWidth = max(valueWidth, len(s.Value))
	}
	for _, s := range v.Summary {
		value := ColorCard(s.Color, s.Value) + spaces(valueWidth-len(s.Value))
		if _, err := fmt.Fprintf(w, "  %s  %s  %s\n", pad(s.Label, labelWidth, AlignLeft), value, s.Metric); err != nil {
			return fmt.Errorf("render summary: %w", err)
		}
	}
	return nil
}

// RenderRows writes the heatmap: one line per cohort, one column per week.
func RenderRows(w io.Writer, rows []cohort.Row) error {
	if _, err := fmt.Fprintln(w, SectionTitle("Retention by cohort (%)")); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "  "+cohort.NoData)
		return err
	}

	cols := []Column{{Header: "Cohort"}}
	for k := 1; k <= cohort.WeekCount; k++ {
		cols = append(cols, Column{Header: "W" + strconv.Itoa(k), Align: AlignRight, Color: colorRetention})
	}
	t := newTable(cols...)
	for _, r := range rows {
		cells := []string{r.Cohort}
		for k := 1; k <= cohort.WeekCount; k++ {
			cells = append(cells, formatCell(r.Week(k)))
		}
		t.addRow(cells...)
	}
	return t.render(w)
}

// RenderSeries writes the quarterly comparison curves: every quarter side by
// side for AllQuarters, a single column for SingleQuarter.
func RenderSeries(w io.Writer, s cohort.Series) error {
	if _, err := fmt.Fprintln(w, SectionTitle("Quarterly retention curves (%)")); err != nil {
		return err
	}
	if s == nil || s.Len() == 0 {
		_, err := fmt.Fprintln(w, "  "+cohort.NoData)
		return err
	}

	switch s := s.(type) {
	case cohort.AllQuarters:
		cols := []Column{{Header: "Week", Align: AlignRight}}
		for _, q := range cohort.Quarters {
			cols = append(cols, Column{Header: q.Label(), Align: AlignRight, Color: colorRetention})
		}
		t := newTable(cols...)
		for _, p := range s.Points {
			cells := []string{strconv.Itoa(p.Week)}
			for _, q := range cohort.Quarters {
				cells = append(cells, formatCell(p.Value(q)))
			}
			t.addRow(cells...)
		}
		return t.render(w)

	case cohort.SingleQuarter:
		t := newTable(
			Column{Header: "Week", Align: AlignRight},
			Column{Header: s.Quarter.Label(), Align: AlignRight, Color: colorRetention},
		)
		for _, v := range s.Values {
			t.addRow(strconv.Itoa(v.Week), formatCell(v.Value))
		}
		return t.render(w)

	default:
		return fmt.Errorf("render series: unsupported type %T", s)
	}
}

// RenderResults writes fired rules, or a single line when none fired.
func RenderResults(w io.Writer, results []rules.Result) error {
	if _, err := fmt.Fprintln(w, SectionTitle("Rule checks")); err != nil {
		return err
	}
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "  "+colorGreen.Sprint("ok")+": no rules fired")
		return err
	}
	t := newTable(
		Column{Header: "Severity", Color: ColorSeverity},
		Column{Header: "Rule"},
		Column{Header: "Filter"},
		Column{Header: "Value", Align: AlignRight},
		Column{Header: "Message"},
	)
	for _, r := range results {
		t.addRow(r.Severity, r.Rule, string(r.Filter), strconv.FormatFloat(r.Value, 'f', -1, 64), r.Message)
	}
	return t.render(w)
}

// RenderLoaded writes a one-line reload banner used by watch mode.
func RenderLoaded(w io.Writer, source string, at time.Time) error {
	_, err := fmt.Fprintf(w, "%s loaded %s\n", at.Format(time.RFC3339), source)
	return err
}

func formatCell(v *float64) string {
	if v == nil {
		return censored
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseCell(s string) (float64, bool) {
	if s == "" || s == censored {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func spaces(n int) string {
	return pad("", n, AlignLeft)
}
