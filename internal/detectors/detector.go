package detectors

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"censusqc/internal/census"
)

// Detector is one independent, read-only scan over a table snapshot.
// Detectors never fail on missing preconditions: an absent column
// yields an empty result, and unparsable cells are skipped for that
// check only.
type Detector interface {
	Name() string
	Detect(t *census.Table) []Issue
}

// Options configures a validation run.
type Options struct {
	// Now anchors age calculations. Zero means time.Now().
	Now    time.Time
	Logger *slog.Logger
}

// Catalog returns the full detector catalog in its canonical order.
func Catalog(now time.Time) []Detector {
	return []Detector{
		&RequiredFieldsDetector{},
		&DateFormatDetector{},
		&SSNFormatDetector{},
		&NumericFormatDetector{},
		&DateOrderDetector{},
		&AgeRangeDetector{Now: now},
		&CompensationRangeDetector{},
		&IQROutlierDetector{},
		&ZScoreOutlierDetector{},
		&AgeClusterDetector{Now: now},
		&MassTerminationDetector{},
		&MassHiringDetector{},
		&IdenticalValueDetector{},
		&RoundNumberDetector{},
		&ComplianceReadinessDetector{},
	}
}

// Run executes the whole catalog concurrently over one immutable table
// snapshot and returns the issues in catalog order. The caller must not
// mutate the table while a run is in flight.
func Run(ctx context.Context, t *census.Table, opts Options) ([]Issue, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	catalog := Catalog(now)
	results := make([][]Issue, len(catalog))

	g, ctx := errgroup.WithContext(ctx)
	for i, d := range catalog {
		i, d := i, d
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = d.Detect(t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var issues []Issue
	for i, found := range results {
		for _, issue := range found {
			issue.ID = uuid.NewString()
			issue.CreatedAt = now
			issues = append(issues, issue)
		}
		if len(found) > 0 {
			logger.Debug("detector reported issues",
				slog.String("detector", catalog[i].Name()),
				slog.Int("count", len(found)))
		}
	}

	logger.Info("validation run complete",
		slog.Int("rows", t.RowCount()),
		slog.Int("issues", len(issues)))
	return issues, nil
}

// cellString renders a cell for format checks. Nulls return ok=false.
func cellString(t *census.Table, row int, column string) (string, bool) {
	v, ok := t.Cell(row, column)
	if !ok || v.IsNull() {
		return "", false
	}
	return v.Display(), true
}
