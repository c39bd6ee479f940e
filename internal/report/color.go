package report

import (
	"github.com/fatih/color"

	"github.com/cohortlens/cohortlens/internal/cohort"
	"github.com/cohortlens/cohortlens/internal/rules"
)

// Shared color printers.
var (
	colorRed    = color.New(color.FgRed)
	colorYellow = color.New(color.FgYellow)
	colorGreen  = color.New(color.FgGreen)
	colorBlue   = color.New(color.FgBlue)
	colorBold   = color.New(color.Bold)
)

// SetColor turns ANSI colors on or off for every renderer in the package.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// ColorCard paints s in the accent of a summary card. Amber has no ANSI
// equivalent and is rendered yellow.
func ColorCard(c cohort.Color, s string) string {
	switch c {
	case cohort.Green:
		return colorGreen.Sprint(s)
	case cohort.Red:
		return colorRed.Sprint(s)
	case cohort.Amber:
		return colorYellow.Sprint(s)
	case cohort.Blue:
		return colorBlue.Sprint(s)
	default:
		return s
	}
}

// ColorSeverity colors a rule severity label.
func ColorSeverity(val string) string {
	switch val {
	case rules.SeverityCritical:
		return colorRed.Sprint(val)
	case rules.SeverityWarning:
		return colorYellow.Sprint(val)
	default:
		return val
	}
}

// colorRetention colors a heatmap cell: 50 and above green, 30 and above
// yellow, lower red. Censored cells stay plain.
func colorRetention(val string) string {
	v, ok := parseCell(val)
	if !ok {
		return val
	}
	switch {
	case v >= 50:
		return colorGreen.Sprint(val)
	case v >= 30:
		return colorYellow.Sprint(val)
	default:
		return colorRed.Sprint(val)
	}
}

// SectionTitle renders a bold section title.
func SectionTitle(title string) string {
	return colorBold.Sprint(title)
}
