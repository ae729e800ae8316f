package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
	"golang.org/x/sync/errgroup"
)

// Loader reads every configured source once and merges the results
type Loader struct {
	sources []production.RecordSource
	logger  *slog.Logger
}

func NewLoader(logger *slog.Logger, sources ...production.RecordSource) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{sources: sources, logger: logger}
}

// Load reads all sources in parallel. Records are concatenated in source order,
// so the merged dataset is the same on every start regardless of which source
// finishes first. Any failing source fails the whole load.
func (l *Loader) Load(ctx context.Context) ([]production.Record, error) {
	if len(l.sources) == 0 {
		return nil, fmt.Errorf("%w: no sources configured", production.ErrDatasetNotFound)
	}

	results := make([][]production.Record, len(l.sources))

	g, gCtx := errgroup.WithContext(ctx)
	for i, src := range l.sources {
		g.Go(func() error {
			started := time.Now()
			records, err := src.Load(gCtx)
			if err != nil {
				return fmt.Errorf("load %s: %w", src.Name(), err)
			}
			results[i] = records
			l.logger.Info("Dataset source loaded",
				"source", src.Name(),
				"records", len(records),
				"duration", time.Since(started),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, records := range results {
		total += len(records)
	}

	merged := make([]production.Record, 0, total)
	anomalies := 0
	for _, records := range results {
		for _, r := range records {
			if r.HasDefectAnomaly() {
				anomalies++
			}
			merged = append(merged, r)
		}
	}

	if anomalies > 0 {
		l.logger.Warn("Dataset has rows with more defects than production",
			"rows", anomalies,
		)
	}
	l.logger.Info("Dataset loaded", "sources", len(l.sources), "records", len(merged))

	return merged, nil
}
