package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cohortlens/cohortlens/internal/cohort"
)

// FileSource reads the dashboard JSON fixture at Path.
type FileSource struct {
	Path string
}

// Load reads, decodes and validates the fixture.
func (s *FileSource) Load(_ context.Context) (*cohort.Data, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", s.Path, err)
	}
	defer f.Close()

	data, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", s.Path, err)
	}
	return data, nil
}

// Decode parses a JSON fixture from r and validates it.
func Decode(r io.Reader) (*cohort.Data, error) {
	var data cohort.Data
	dec := json.NewDecoder(r)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if data.Heatmap == nil {
		data.Heatmap = []cohort.Row{}
	}
	if data.Comparison == nil {
		data.Comparison = []cohort.QuarterPoint{}
	}
	if err := Validate(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
