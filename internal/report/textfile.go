package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/cohortlens/cohortlens/internal/cohort"
)

// Metric names, without the namespace prefix.
const (
	metricLoaded            = "dataset_loaded_timestamp_seconds"
	metricCohorts           = "cohorts"
	metricLatestRetention   = "cohort_latest_retention_pct"
	metricWeek4Avg          = "week4_avg_retention_pct"
	metricWeek4Drop         = "week4_drop_pct"
	metricStabilizationWeek = "stabilization_week"
	metricStabilizationSD   = "stabilization_stddev"
	metricStabilized        = "stabilized"
)

// Families converts views into one gauge family per statistic, each holding
// one sample per view labelled with its filter. Statistics a view has no data
// for are left out rather than exported as zero. loadedAt is exported as a
// timestamp unless it is zero.
//
// The result is ordered and stable, so two calls over the same views encode
// to identical text.
func Families(namespace string, views []cohort.View, loadedAt time.Time) []*dto.MetricFamily {
	b := familyBuilder{namespace: namespace}

	if !loadedAt.IsZero() {
		b.add(metricLoaded, "Unix time the cohort dataset was loaded.",
			float64(loadedAt.UnixNano())/1e9)
	}
	for _, v := range views {
		f := string(v.Filter)
		st := v.Stats

		b.add(metricCohorts, "Cohorts in the filtered view.",
			float64(st.Cohorts), "filter", f)

		for _, r := range []struct {
			rank   string
			ranked *cohort.Ranked
		}{{"best", st.Best}, {"worst", st.Worst}} {
			if r.ranked == nil {
				continue
			}
			b.add(metricLatestRetention, "Latest observed retention of the best and worst cohort.",
				r.ranked.Latest, "filter", f, "rank", r.rank, "cohort", r.ranked.Cohort)
		}

		if st.Cohorts == 0 {
			continue
		}
		b.add(metricWeek4Avg, "Mean week-4 retention, rounded.",
			float64(st.AvgWeek4), "filter", f)
		b.add(metricWeek4Drop, "Percentage points lost between signup and week 4.",
			float64(st.Week4Drop), "filter", f)
		b.add(metricStabilizationWeek, "First week whose cross-cohort spread is under the threshold.",
			float64(st.StabilizationWeek), "filter", f)
		if st.Stabilized {
			b.add(metricStabilizationSD, "Cross-cohort standard deviation at the stabilization week.",
				st.StabilizationStdDev, "filter", f)
		}
		b.add(metricStabilized, "1 if some week stabilized, 0 if the default week is reported.",
			boolFloat(st.Stabilized), "filter", f)
	}
	return b.families
}

// familyBuilder groups gauge samples by family name in first-seen order.
type familyBuilder struct {
	namespace string
	families  []*dto.MetricFamily
	index     map[string]*dto.MetricFamily
}

// add appends a gauge sample. labels alternates names and values.
func (b *familyBuilder) add(name, help string, value float64, labels ...string) {
	full := name
	if b.namespace != "" {
		full = b.namespace + "_" + name
	}
	if b.index == nil {
		b.index = make(map[string]*dto.MetricFamily)
	}
	mf, ok := b.index[full]
	if !ok {
		mf = &dto.MetricFamily{
			Name: ptr(full),
			Help: ptr(help),
			Type: dto.MetricType_GAUGE.Enum(),
		}
		b.index[full] = mf
		b.families = append(b.families, mf)
	}

	m := &dto.Metric{Gauge: &dto.Gauge{Value: ptr(value)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{Name: ptr(labels[i]), Value: ptr(labels[i+1])})
	}
	mf.Metric = append(mf.Metric, m)
}

// WriteTextfile encodes families in the Prometheus text exposition format.
func WriteTextfile(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("report: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteTextfileAtomic writes families to path through a temporary file in
// the same directory, so a collector never reads a partial file.
func WriteTextfileAtomic(path string, families []*dto.MetricFamily) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cohortlens-*.prom.tmp")
	if err != nil {
		return fmt.Errorf("report: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := WriteTextfile(tmp, families); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("report: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("report: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("report: rename textfile: %w", err)
	}
	return nil
}

// ParseTextfile decodes a Prometheus text exposition from r into metric
// families keyed by name. A partial result with a non-fatal parse warning is
// still returned successfully.
func ParseTextfile(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("report: parse textfile: %w", err)
	}
	return mfs, nil
}

// GaugeValue returns the value of the sample in mf whose labels include every
// pair in match.
func GaugeValue(mf *dto.MetricFamily, match map[string]string) (float64, bool) {
	if mf == nil {
		return 0, false
	}
	for _, m := range mf.GetMetric() {
		if labelsMatch(m.GetLabel(), match) {
			return m.GetGauge().GetValue(), true
		}
	}
	return 0, false
}

func labelsMatch(pairs []*dto.LabelPair, match map[string]string) bool {
	for name, want := range match {
		found := false
		for _, p := range pairs {
			if p.GetName() == name && p.GetValue() == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func ptr[T any](v T) *T { return &v }
