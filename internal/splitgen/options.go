package splitgen

import (
	"fmt"
	"strings"

	"geosplit/internal/correlate"
	"geosplit/internal/manifest"
)

// Options configures a single Run.
type Options struct {
	OrientPath string
	ImagesDir  string
	DepthsDir  string
	OutputPath string

	// Intrinsics overrides per-record intrinsics on every row when set.
	Intrinsics  *manifest.Intrinsics
	SkipMissing bool

	// Strategy defaults to correlate.UseGeo.
	Strategy        correlate.Strategy
	ImageExtensions []string
	UnicodeNFC      bool
}

// Validate reports the first missing required field.
func (o Options) Validate() error {
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"orientation file", o.OrientPath},
		{"images directory", o.ImagesDir},
		{"depths directory", o.DepthsDir},
		{"output path", o.OutputPath},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required options: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (o Options) correlatorOptions() correlate.Options {
	return correlate.Options{
		ImagesDir:   o.ImagesDir,
		DepthsDir:   o.DepthsDir,
		Strategy:    o.Strategy,
		Intrinsics:  o.Intrinsics,
		SkipMissing: o.SkipMissing,
		UnicodeNFC:  o.UnicodeNFC,
	}
}
