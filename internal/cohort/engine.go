package cohort

import (
	"sync"
	"time"
)

// View is everything the dashboard renders for one filter selection.
type View struct {
	Filter  Filter         `json:"filter"`
	Label   string         `json:"label"`
	Rows    []Row          `json:"heatmapData"`
	Series  Series         `json:"cohortComparison"`
	Summary [4]SummaryStat `json:"summary"`
	Stats   Stats          `json:"stats"`
}

// Compute builds the view of data for filter f. A nil data yields an empty
// view. Every call returns freshly built values; nothing is cached.
func Compute(data *Data, f Filter) View {
	if data == nil {
		data = &Data{}
	}
	rows := FilterRows(data.Heatmap, f)
	if rows == nil {
		rows = []Row{}
	}
	st := Analyze(rows)
	return View{
		Filter:  f,
		Label:   f.Label(),
		Rows:    rows,
		Series:  FilterSeries(data.Comparison, f),
		Summary: Summarize(st),
		Stats:   st,
	}
}

// Engine holds the currently loaded dataset and computes views over it.
//
// All exported methods are safe for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	data     *Data
	loadedAt time.Time
}

// NewEngine returns an Engine serving data. now is recorded as the load
// time; pass time.Now() in production.
func NewEngine(data *Data, now time.Time) *Engine {
	return &Engine{data: data, loadedAt: now}
}

// Swap replaces the dataset. Callers must not modify data afterwards.
func (e *Engine) Swap(data *Data, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data = data
	e.loadedAt = now
}

// LoadedAt returns when the current dataset was installed.
func (e *Engine) LoadedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadedAt
}

// View computes the view for f over the current dataset.
func (e *Engine) View(f Filter) View {
	e.mu.RLock()
	data := e.data
	e.mu.RUnlock()
	return Compute(data, f)
}

// Views computes one view per filter in Filters order, all over the same
// dataset.
func (e *Engine) Views() []View {
	e.mu.RLock()
	data := e.data
	e.mu.RUnlock()

	out := make([]View, 0, len(Filters))
	for _, f := range Filters {
		out = append(out, Compute(data, f))
	}
	return out
}
