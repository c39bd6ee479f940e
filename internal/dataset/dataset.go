package dataset

import (
	"context"
	"fmt"

	"github.com/cohortlens/cohortlens/internal/cohort"
	"github.com/cohortlens/cohortlens/internal/config"
)

// Source loads the cohort dataset.
type Source interface {
	Load(ctx context.Context) (*cohort.Data, error)
}

// New returns the Source described by cfg.
func New(cfg config.DatasetConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceFile, "":
		return &FileSource{Path: cfg.Path}, nil
	case config.SourceMySQL:
		dsn := cfg.DSN()
		if dsn == "" {
			return nil, fmt.Errorf("dataset: environment variable %q holds no DSN", cfg.DSNEnv)
		}
		return &SQLSource{DSN: dsn, Timeout: cfg.QueryTimeout}, nil
	default:
		return nil, fmt.Errorf("dataset: unsupported source %q", cfg.Source)
	}
}
