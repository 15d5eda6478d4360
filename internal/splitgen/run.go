package splitgen

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"geosplit/internal/correlate"
	"geosplit/internal/logging"
	"geosplit/internal/orientation"
)

// Result summarizes a completed Run.
type Result struct {
	RunID      string
	OutputPath string
	Rows       int
	Stats      correlate.Stats

	Orientations int
	// Duplicates lists orientation labels that were overwritten by a later line.
	Duplicates []string
	// MaxNormDrift is the largest |‖q‖ − 1| among parsed orientations.
	MaxNormDrift float64
	// Repairs counts rows whose translation fields needed sanitizing.
	Repairs int
}

// Run executes the pipeline described by opts. Inputs are read and
// correlated before anything is created next to opts.OutputPath; on error no
// manifest is written and any existing file there is left untouched.
func Run(ctx context.Context, opts Options, logger *slog.Logger) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if opts.Strategy == nil {
		opts.Strategy = correlate.UseGeo{}
	}

	runID := uuid.NewString()
	logger = logging.NewComponentLogger(logger, "splitgen").With(logging.String(logging.FieldRunID, runID))
	result := Result{RunID: runID, OutputPath: filepath.Clean(opts.OutputPath)}

	set, err := orientation.ParseFile(opts.OrientPath, logger)
	if err != nil {
		return result, err
	}
	result.Orientations = set.Len()
	result.Duplicates = set.Duplicates()
	result.MaxNormDrift = set.MaxNormDrift()
	if len(result.Duplicates) > 0 {
		logging.WarnWithContext(logger, "orientation log repeats labels; later lines replace earlier ones",
			"duplicate_orientation",
			logging.Int("count", len(result.Duplicates)),
			logging.Strings("labels", result.Duplicates),
			logging.String(logging.FieldImpact, "last occurrence used"),
		)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	images, err := correlate.ListImages(opts.ImagesDir, opts.ImageExtensions)
	if err != nil {
		return result, err
	}
	logger.Info("inputs loaded",
		logging.Int("orientations", result.Orientations),
		logging.Int("images", len(images)),
		logging.String("scheme", opts.Strategy.Name()),
	)

	rows, stats, err := correlate.New(opts.correlatorOptions(), logger).Correlate(ctx, images, set)
	result.Stats = stats
	if err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	repairs, err := install(result.OutputPath, rows, logger)
	if err != nil {
		return result, err
	}
	result.Rows = len(rows)
	result.Repairs = repairs

	logger.Info("manifest written",
		logging.String("path", result.OutputPath),
		logging.Int("rows", result.Rows),
		logging.Int("skipped", stats.Skipped()),
		logging.Float64("max_norm_drift", result.MaxNormDrift),
	)
	return result, nil
}
