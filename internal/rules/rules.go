package rules

import (
	"fmt"
	"log/slog"

	"github.com/cohortlens/cohortlens/internal/cohort"
)

// Severity levels.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Rule is a threshold check loaded from the config file.
type Rule struct {
	// Name is the human-readable rule identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "avg_week4_drop > 55".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info. Empty means warning.
	Severity string `yaml:"severity"`

	// Filter restricts the rule to one view (all|q1..q4). Empty checks
	// every view it is given.
	Filter string `yaml:"filter"`
}

// Validate checks the rule's name, condition, severity and filter.
func (r Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := parseCondition(r.Condition); err != nil {
		return err
	}
	switch r.Severity {
	case SeverityCritical, SeverityWarning, SeverityInfo, "":
	default:
		return fmt.Errorf("unknown severity %q", r.Severity)
	}
	if r.Filter != "" {
		if _, err := cohort.ParseFilter(r.Filter); err != nil {
			return err
		}
	}
	return nil
}

func (r Rule) severity() string {
	if r.Severity == "" {
		return SeverityWarning
	}
	return r.Severity
}

// appliesTo reports whether the rule should be checked against view f.
func (r Rule) appliesTo(f cohort.Filter) bool {
	if r.Filter == "" {
		return true
	}
	want, err := cohort.ParseFilter(r.Filter)
	return err == nil && want == f
}

// Result is one rule that fired against one view.
type Result struct {
	Rule     string        `json:"rule"`
	Severity string        `json:"severity"`
	Filter   cohort.Filter `json:"filter"`
	Value    float64       `json:"value"`
	Message  string        `json:"message"`
}

// Evaluate checks every rule against every view it applies to and returns
// the rules that fired, in rule order then view order. Rules whose condition
// does not parse are skipped; Validate reports them at load time.
func Evaluate(rs []Rule, views []cohort.View) []Result {
	var out []Result
	for _, r := range rs {
		cond, err := parseCondition(r.Condition)
		if err != nil {
			slog.Warn("rules: skipping invalid rule", "rule", r.Name, "err", err)
			continue
		}
		for _, v := range views {
			if !r.appliesTo(v.Filter) {
				continue
			}
			fires, value := cond.eval(v.Stats)
			if !fires {
				continue
			}
			res := Result{
				Rule:     r.Name,
				Severity: r.severity(),
				Filter:   v.Filter,
				Value:    value,
				Message: fmt.Sprintf("[%s] %s fired on %s: %s = %g",
					r.severity(), r.Name, v.Label, r.Condition, value),
			}
			slog.Debug("rules: fired", "rule", r.Name, "filter", v.Filter, "value", value)
			out = append(out, res)
		}
	}
	return out
}

// HasCritical reports whether any result has critical severity.
func HasCritical(results []Result) bool {
	for _, r := range results {
		if r.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
