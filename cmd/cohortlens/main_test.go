package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cohortlens/cohortlens/internal/report"
)

const fixture = `{
  "heatmapData": [
    {"cohort": "Jan 2025", "week1": 85, "week2": 71, "week3": 58, "week4": 49, "week5": 42, "week6": 37,
     "week7": 33, "week8": 30, "week9": 28, "week10": 27, "week11": 26, "week12": 25},
    {"cohort": "Dec 2025", "week1": 90, "week2": 79, "week3": 68, "week4": null, "week5": null, "week6": null,
     "week7": null, "week8": null, "week9": null, "week10": null, "week11": null, "week12": null}
  ],
  "cohortComparison": [
    {"week": 1, "Q1_2025": 85, "Q2_2025": 86, "Q3_2025": 86, "Q4_2025": 90},
    {"week": 12, "Q1_2025": 25, "Q2_2025": 26, "Q3_2025": 27, "Q4_2025": null}
  ]
}`

// writeFile writes content to name under dir and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func fixturePath(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "cohorts.json", fixture)
}

// run executes the CLI with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--no-color", "--quiet"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSummary_Text(t *testing.T) {
	out, err := run(t, "--data", fixturePath(t), "summary")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{
		"Summary: All Months (2 cohorts)",
		"Dec 2025",
		"25% at W12",
		"51%",
		"Week 9",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
}

func TestSummary_JSONFiltered(t *testing.T) {
	out, err := run(t, "--data", fixturePath(t), "--filter", "Q1", "summary", "--json")
	if err != nil {
		t.Fatalf("summary --json: %v", err)
	}
	var got summaryOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if got.Filter != "q1" || got.Label != "Q1 2025" {
		t.Errorf("filter/label = %q/%q", got.Filter, got.Label)
	}
	if got.Summary[0].Value != "Jan 2025" || got.Summary[1].Value != "Jan 2025" {
		t.Errorf("best/worst = %q/%q, want Jan 2025 for both", got.Summary[0].Value, got.Summary[1].Value)
	}
	if got.Stats.Cohorts != 1 || got.Stats.Week4Drop != 51 {
		t.Errorf("stats = %+v", got.Stats)
	}
}

func TestRows_Filtered(t *testing.T) {
	out, err := run(t, "--data", fixturePath(t), "--filter", "q4", "rows")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if !strings.Contains(out, "Dec 2025") || strings.Contains(out, "Jan 2025") {
		t.Errorf("q4 rows output:\n%s", out)
	}
}

func TestSeries_JSONSingleQuarter(t *testing.T) {
	out, err := run(t, "--data", fixturePath(t), "--filter", "q4", "series", "--json")
	if err != nil {
		t.Fatalf("series --json: %v", err)
	}
	var points []map[string]any
	if err := json.Unmarshal([]byte(out), &points); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}
	for _, p := range points {
		if len(p) != 2 {
			t.Errorf("point %v, want only week and Q4_2025", p)
		}
	}
	if points[1]["Q4_2025"] != nil {
		t.Errorf("week 12 Q4 = %v, want null", points[1]["Q4_2025"])
	}
}

func TestUnknownFilter(t *testing.T) {
	_, err := run(t, "--data", fixturePath(t), "--filter", "q5", "summary")
	if err == nil || !strings.Contains(err.Error(), "unknown filter") {
		t.Fatalf("err = %v, want unknown filter", err)
	}
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "summary")
	if err == nil {
		t.Fatal("expected error for missing config, got nil")
	}
}

func TestValidate(t *testing.T) {
	out, err := run(t, "--data", fixturePath(t), "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "has 2 cohorts and 2 comparison weeks") {
		t.Errorf("validate output = %q", out)
	}

	bad := writeFile(t, t.TempDir(), "bad.json",
		`{"heatmapData":[{"cohort":"Jan 2025","week1":85,"week2":null,"week3":60}]}`)
	_, err = run(t, "--data", bad, "validate")
	var ece *exitCodeError
	if !errors.As(err, &ece) || ece.ExitCode() != ExitError {
		t.Fatalf("err = %v, want exit code %d", err, ExitError)
	}
	if !strings.Contains(ece.msg, "week3 has a value after week2 is null") {
		t.Errorf("msg = %q", ece.msg)
	}
}

func TestExport(t *testing.T) {
	data := fixturePath(t)

	stdout, err := run(t, "--data", data, "export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(stdout, "# TYPE cohortlens_cohorts gauge") {
		t.Errorf("stdout export missing cohorts family:\n%s", stdout)
	}

	path := filepath.Join(t.TempDir(), "cohortlens.prom")
	if _, err := run(t, "--data", data, "export", "--out", path); err != nil {
		t.Fatalf("export --out: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	fams, err := report.ParseTextfile(f)
	if err != nil {
		t.Fatalf("ParseTextfile: %v", err)
	}
	if v, ok := report.GaugeValue(fams["cohortlens_week4_drop_pct"], map[string]string{"filter": "all"}); !ok || v != 51 {
		t.Errorf("week4_drop_pct{all} = %g (present %v), want 51", v, ok)
	}
	if v, ok := report.GaugeValue(fams["cohortlens_cohorts"], map[string]string{"filter": "q2"}); !ok || v != 0 {
		t.Errorf("cohorts{q2} = %g (present %v), want 0", v, ok)
	}
}

func checkConfig(t *testing.T, condition string) string {
	t.Helper()
	dir := t.TempDir()
	data := writeFile(t, dir, "cohorts.json", fixture)
	return writeFile(t, dir, "cohortlens.yaml", `
dataset:
  path: `+data+`
rules:
  - name: drop-high
    condition: "`+condition+`"
    severity: critical
    filter: all
`)
}

func TestCheck_CriticalFails(t *testing.T) {
	out, err := run(t, "--config", checkConfig(t, "avg_week4_drop > 50"), "check")
	var ece *exitCodeError
	if !errors.As(err, &ece) || ece.ExitCode() != ExitRulesFailed {
		t.Fatalf("err = %v, want exit code %d", err, ExitRulesFailed)
	}
	if !strings.Contains(out, "drop-high") || !strings.Contains(out, "critical") {
		t.Errorf("check output:\n%s", out)
	}
}

func TestCheck_Passes(t *testing.T) {
	out, err := run(t, "--config", checkConfig(t, "avg_week4_drop > 60"), "check", "--json")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("check --json output = %q, want []", out)
	}
}

func TestWatch_RequiresFileSource(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "cohortlens.yaml", "dataset:\n  source: mysql\n")
	_, err := run(t, "--config", cfg, "watch")
	if err == nil || !strings.Contains(err.Error(), "watch needs the file source") {
		t.Fatalf("err = %v, want file source error", err)
	}
}

// syncBuffer is a bytes.Buffer safe for one writer and one poller.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func waitFor(t *testing.T, buf *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), want) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q in:\n%s", want, buf.String())
}

func TestWatch_RerendersOnChange(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "cohorts.json", fixture)
	prom := filepath.Join(dir, "cohortlens.prom")
	cfg := writeFile(t, dir, "cohortlens.yaml", "dataset:\n  path: "+data+"\nexport:\n  textfile: "+prom+"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--no-color", "--quiet", "--config", cfg, "watch"})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	waitFor(t, &out, "Summary: All Months (2 cohorts)")
	if _, err := os.Stat(prom); err != nil {
		t.Errorf("textfile not written on start: %v", err)
	}
	// Give the watcher a moment to register before rewriting the fixture.
	time.Sleep(200 * time.Millisecond)

	updated := strings.Replace(fixture, `"heatmapData": [`,
		`"heatmapData": [{"cohort": "Feb 2025", "week1": 84, "week2": 70},`, 1)
	tmp := writeFile(t, dir, "cohorts.json.tmp", updated)
	if err := os.Rename(tmp, data); err != nil {
		t.Fatal(err)
	}
	waitFor(t, &out, "Summary: All Months (3 cohorts)")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "cohortlens dev\n" {
		t.Errorf("version output = %q", out)
	}
}
