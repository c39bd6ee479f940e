package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/cohortlens/cohortlens/internal/cohort"
)

func sampleViews() []cohort.View {
	data := sampleData()
	return []cohort.View{
		cohort.Compute(data, cohort.All),
		cohort.Compute(data, cohort.Q1),
		cohort.Compute(data, cohort.Q2),
	}
}

func encodeAndParse(t *testing.T, fams []*dto.MetricFamily) map[string]*dto.MetricFamily {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteTextfile(&buf, fams); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	parsed, err := ParseTextfile(&buf)
	if err != nil {
		t.Fatalf("ParseTextfile: %v", err)
	}
	return parsed
}

func TestFamilies_RoundTrip(t *testing.T) {
	loaded := time.Unix(1760000000, 0)
	parsed := encodeAndParse(t, Families("cohortlens", sampleViews(), loaded))

	tests := []struct {
		metric string
		labels map[string]string
		want   float64
	}{
		{"cohortlens_dataset_loaded_timestamp_seconds", nil, 1760000000},
		{"cohortlens_cohorts", map[string]string{"filter": "all"}, 2},
		{"cohortlens_cohorts", map[string]string{"filter": "q1"}, 1},
		{"cohortlens_cohorts", map[string]string{"filter": "q2"}, 0},
		{"cohortlens_cohort_latest_retention_pct", map[string]string{"filter": "all", "rank": "best", "cohort": "Dec 2025"}, 68},
		{"cohortlens_cohort_latest_retention_pct", map[string]string{"filter": "all", "rank": "worst", "cohort": "Jan 2025"}, 25},
		{"cohortlens_week4_avg_retention_pct", map[string]string{"filter": "all"}, 49},
		{"cohortlens_week4_drop_pct", map[string]string{"filter": "all"}, 51},
		{"cohortlens_stabilization_week", map[string]string{"filter": "all"}, 9},
		{"cohortlens_stabilized", map[string]string{"filter": "all"}, 0},
	}
	for _, tc := range tests {
		got, ok := GaugeValue(parsed[tc.metric], tc.labels)
		if !ok {
			t.Errorf("%s%v: sample missing", tc.metric, tc.labels)
			continue
		}
		if got != tc.want {
			t.Errorf("%s%v = %g, want %g", tc.metric, tc.labels, got, tc.want)
		}
	}
}

func TestFamilies_OmitsMissingData(t *testing.T) {
	parsed := encodeAndParse(t, Families("cohortlens", sampleViews(), time.Time{}))

	if _, ok := parsed["cohortlens_dataset_loaded_timestamp_seconds"]; ok {
		t.Error("zero load time should not be exported")
	}
	if _, ok := parsed["cohortlens_stabilization_stddev"]; ok {
		t.Error("stddev exported although no view stabilized")
	}
	if _, ok := GaugeValue(parsed["cohortlens_week4_drop_pct"], map[string]string{"filter": "q2"}); ok {
		t.Error("week-4 drop exported for an empty view")
	}
	if _, ok := GaugeValue(parsed["cohortlens_cohort_latest_retention_pct"], map[string]string{"filter": "q2"}); ok {
		t.Error("ranked cohort exported for an empty view")
	}
}

func TestFamilies_Stabilized(t *testing.T) {
	data := &cohort.Data{Heatmap: []cohort.Row{
		row("Jan 2025", 85, 71, 58, 49, 42, 37, 33, 30, 28, 27, 26, 25),
		row("Feb 2025", 84, 70, 57, 48, 41, 36, 32, 29, 27, 26, 25, 24),
	}}
	views := []cohort.View{cohort.Compute(data, cohort.Q1)}
	parsed := encodeAndParse(t, Families("", views, time.Time{}))

	q1 := map[string]string{"filter": "q1"}
	if v, _ := GaugeValue(parsed["stabilized"], q1); v != 1 {
		t.Errorf("stabilized = %g, want 1", v)
	}
	if v, ok := GaugeValue(parsed["stabilization_stddev"], q1); !ok || v != 0.5 {
		t.Errorf("stabilization_stddev = %g (present %v), want 0.5", v, ok)
	}
}

func TestFamilies_Deterministic(t *testing.T) {
	views := sampleViews()
	var a, b bytes.Buffer
	if err := WriteTextfile(&a, Families("cohortlens", views, time.Time{})); err != nil {
		t.Fatal(err)
	}
	if err := WriteTextfile(&b, Families("cohortlens", views, time.Time{})); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Errorf("encodings differ:\n%s\n---\n%s", a.String(), b.String())
	}
	if n := strings.Count(a.String(), "# TYPE cohortlens_cohorts gauge"); n != 1 {
		t.Errorf("cohorts TYPE lines = %d, want 1", n)
	}
}

func TestWriteTextfileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cohortlens.prom")

	if err := WriteTextfileAtomic(path, Families("cohortlens", sampleViews(), time.Time{})); err != nil {
		t.Fatalf("WriteTextfileAtomic: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "cohortlens.prom" {
		t.Errorf("dir entries = %v, want only cohortlens.prom", entries)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	parsed, err := ParseTextfile(f)
	if err != nil {
		t.Fatalf("ParseTextfile: %v", err)
	}
	if v, ok := GaugeValue(parsed["cohortlens_cohorts"], map[string]string{"filter": "all"}); !ok || v != 2 {
		t.Errorf("cohorts{all} = %g (present %v), want 2", v, ok)
	}
}

func TestWriteTextfileAtomic_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "cohortlens.prom")
	if err := WriteTextfileAtomic(path, nil); err == nil {
		t.Fatal("expected error for missing directory, got nil")
	}
}

func TestParseTextfile_Invalid(t *testing.T) {
	if _, err := ParseTextfile(strings.NewReader("not a metric line {{{\n")); err == nil {
		t.Fatal("expected error for garbage input, got nil")
	}
}
