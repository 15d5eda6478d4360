package correlate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"

	"geosplit/internal/logging"
	"geosplit/internal/manifest"
	"geosplit/internal/orientation"
)

// MissingKind names the correlate that could not be found.
type MissingKind string

const (
	MissingOrientation MissingKind = "orientation"
	MissingDepth       MissingKind = "depth"
)

// MissingError reports an image without an orientation record or depth map.
type MissingError struct {
	Image string
	Kind  MissingKind
	// Key is the orientation label looked up or the depth path checked.
	Key string
}

func (e *MissingError) Error() string {
	switch e.Kind {
	case MissingOrientation:
		return fmt.Sprintf("missing orientation for %s (key %s)", e.Image, e.Key)
	default:
		return fmt.Sprintf("missing depth for %s: %s", e.Image, e.Key)
	}
}

// Options configures a Correlator. The zero value uses the usegeo strategy,
// per-record intrinsics, and fails on the first missing correlate.
type Options struct {
	ImagesDir string
	DepthsDir string
	Strategy  Strategy
	// Intrinsics, when set, replaces per-record focal length and principal
	// point on every row.
	Intrinsics  *manifest.Intrinsics
	SkipMissing bool
	// UnicodeNFC compares orientation keys after NFC normalization.
	UnicodeNFC bool
}

// Stats summarizes a correlation pass.
type Stats struct {
	Images             int
	Rows               int
	MissingOrientation int
	MissingDepth       int
}

// Skipped returns the number of images dropped for missing correlates.
func (s Stats) Skipped() int { return s.MissingOrientation + s.MissingDepth }

// Correlator builds manifest rows from images and orientation records.
type Correlator struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Correlator for opts.
func New(opts Options, logger *slog.Logger) *Correlator {
	if opts.Strategy == nil {
		opts.Strategy = UseGeo{}
	}
	if opts.Intrinsics != nil {
		override := *opts.Intrinsics
		opts.Intrinsics = &override
	}
	return &Correlator{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "correlate").With(logging.String("scheme", opts.Strategy.Name())),
	}
}

// Correlate resolves every image in order. Rows for skipped images are
// omitted. Without SkipMissing the first missing correlate is returned as a
// *MissingError and no rows are returned.
func (c *Correlator) Correlate(ctx context.Context, images []string, set *orientation.Set) ([]manifest.Row, Stats, error) {
	stats := Stats{Images: len(images)}
	lookup := c.lookupFunc(set)
	rows := make([]manifest.Row, 0, len(images))

	for _, name := range images {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		key := c.opts.Strategy.OrientationKey(name)
		rec, ok := lookup(key)
		if !ok {
			stats.MissingOrientation++
			if err := c.missing(&MissingError{Image: name, Kind: MissingOrientation, Key: key}); err != nil {
				return nil, stats, err
			}
			continue
		}

		depthPath := filepath.Join(c.opts.DepthsDir, c.opts.Strategy.DepthName(name))
		exists, err := isRegularFile(depthPath)
		if err != nil {
			return nil, stats, err
		}
		if !exists {
			stats.MissingDepth++
			if err := c.missing(&MissingError{Image: name, Kind: MissingDepth, Key: depthPath}); err != nil {
				return nil, stats, err
			}
			continue
		}

		rows = append(rows, manifest.Row{
			RGB:         filepath.Join(c.opts.ImagesDir, name),
			Depth:       depthPath,
			Intrinsics:  c.intrinsics(rec),
			Rotation:    rec.Rotation,
			Translation: rec.Position(),
		})
	}

	stats.Rows = len(rows)
	return rows, stats, nil
}

func (c *Correlator) missing(err *MissingError) error {
	impact := "run aborted"
	if c.opts.SkipMissing {
		impact = "image skipped"
	}
	logging.WarnWithContext(c.logger, "image has no "+string(err.Kind),
		"missing_"+string(err.Kind),
		logging.String(logging.FieldImage, err.Image),
		logging.String("key", err.Key),
		logging.String(logging.FieldImpact, impact),
		logging.String(logging.FieldErrorHint, "pass --skip-missing to drop incomplete samples"),
	)
	if c.opts.SkipMissing {
		return nil
	}
	return err
}

func (c *Correlator) intrinsics(rec orientation.Record) manifest.Intrinsics {
	if c.opts.Intrinsics != nil {
		return *c.opts.Intrinsics
	}
	return manifest.Intrinsics{FX: rec.Focal, FY: rec.Focal, CX: rec.CX, CY: rec.CY}
}

func (c *Correlator) lookupFunc(set *orientation.Set) func(string) (orientation.Record, bool) {
	if !c.opts.UnicodeNFC {
		return set.Lookup
	}
	// Exact matches win. Labels that collide after normalization resolve to
	// the first in sorted order.
	index := make(map[string]string, set.Len())
	set.Labels(func(label string) bool {
		key := norm.NFC.String(label)
		if kept, ok := index[key]; ok {
			logging.WarnWithContext(c.logger, "orientation labels collide after NFC normalization",
				"nfc_collision",
				logging.Strings("labels", []string{kept, label}),
				logging.String("kept", kept),
				logging.String(logging.FieldImpact, "images matching only by normalization use the kept label"),
			)
			return true
		}
		index[key] = label
		return true
	})
	return func(key string) (orientation.Record, bool) {
		if rec, ok := set.Lookup(key); ok {
			return rec, true
		}
		label, ok := index[norm.NFC.String(key)]
		if !ok {
			return orientation.Record{}, false
		}
		return set.Lookup(label)
	}
}

func isRegularFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("check depth map %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}
