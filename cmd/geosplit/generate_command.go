package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"geosplit/internal/config"
	"geosplit/internal/correlate"
	"geosplit/internal/manifest"
	"geosplit/internal/splitgen"
)

type generateFlags struct {
	orient string
	images string
	depths string
	out    string

	fx, fy, cx, cy float64

	skipMissing bool
	scheme      string
	depthSuffix string
	extensions  []string
	unicodeNFC  bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Correlate images, depth maps and orientations into a manifest",
		Long: `Parse an orientation log, pair every image in --images with its orientation
record and depth map in --depths, and write a tab-separated manifest to --out.

By default the first image without an orientation or depth map aborts the run
and no manifest is written. Pass --skip-missing to drop such images instead.`,
		Example: `  geosplit generate --orient orientations.txt --images images --depths depth_npy --out splits/train.csv
  geosplit generate --orient o.txt --images img --depths d --out m.csv --fx 4000 --fy 4000 --cx 2000 --cy 1500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			res, err := splitgen.Run(cmd.Context(), opts, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d rows to %s\n", res.Rows, res.OutputPath)
			if skipped := res.Stats.Skipped(); skipped > 0 {
				fmt.Fprintf(out, "Skipped %d of %d images (%d without orientation, %d without depth)\n",
					skipped, res.Stats.Images, res.Stats.MissingOrientation, res.Stats.MissingDepth)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.orient, "orient", "", "Orientation log (label X0 Y0 Z0 omega phi kappa f cx cy per line)")
	f.StringVar(&flags.images, "images", "", "Directory containing RGB images")
	f.StringVar(&flags.depths, "depths", "", "Directory containing depth maps")
	f.StringVar(&flags.out, "out", "", "Manifest output path")
	f.Float64Var(&flags.fx, "fx", 0, "Focal length x override in pixels")
	f.Float64Var(&flags.fy, "fy", 0, "Focal length y override in pixels")
	f.Float64Var(&flags.cx, "cx", 0, "Principal point x override in pixels")
	f.Float64Var(&flags.cy, "cy", 0, "Principal point y override in pixels")
	f.BoolVar(&flags.skipMissing, "skip-missing", false, "Skip images without orientation or depth instead of failing")
	f.StringVar(&flags.scheme, "scheme", "", "Correlation scheme ("+strings.Join(correlate.Names(), ", ")+")")
	f.StringVar(&flags.depthSuffix, "depth-suffix", "", "Depth filename suffix for the stem scheme")
	f.StringSliceVar(&flags.extensions, "ext", nil, "Image extensions to include (repeatable)")
	f.BoolVar(&flags.unicodeNFC, "nfc", false, "Match filenames and labels after Unicode NFC normalization")

	for _, name := range []string{"orient", "images", "depths", "out"} {
		_ = cmd.MarkFlagRequired(name)
	}
	cmd.MarkFlagsRequiredTogether("fx", "fy", "cx", "cy")

	return cmd
}

// options merges flags over configuration values. Flags only win when set.
func (g *generateFlags) options(cmd *cobra.Command, cfg *config.Config) (splitgen.Options, error) {
	changed := cmd.Flags().Changed

	paths := map[string]*string{"orient": &g.orient, "images": &g.images, "depths": &g.depths, "out": &g.out}
	resolved := make(map[string]string, len(paths))
	for name, value := range paths {
		expanded, err := expandHome(strings.TrimSpace(*value))
		if err != nil {
			return splitgen.Options{}, fmt.Errorf("--%s: %w", name, err)
		}
		resolved[name] = expanded
	}

	scheme := cfg.Correlator.Scheme
	if changed("scheme") {
		scheme = g.scheme
	}
	depthSuffix := cfg.Correlator.DepthSuffix
	if changed("depth-suffix") {
		if err := correlate.ValidateDepthSuffix(g.depthSuffix); err != nil {
			return splitgen.Options{}, fmt.Errorf("--depth-suffix: %w", err)
		}
		depthSuffix = g.depthSuffix
	}
	strategy, err := correlate.Lookup(scheme, depthSuffix)
	if err != nil {
		return splitgen.Options{}, err
	}

	exts := cfg.Correlator.ImageExtensions
	if changed("ext") {
		exts = config.NormalizeExtensions(g.extensions)
	}

	opts := splitgen.Options{
		OrientPath:      resolved["orient"],
		ImagesDir:       resolved["images"],
		DepthsDir:       resolved["depths"],
		OutputPath:      resolved["out"],
		SkipMissing:     cfg.Manifest.SkipMissing,
		Strategy:        strategy,
		ImageExtensions: exts,
		UnicodeNFC:      cfg.Correlator.UnicodeNFC,
	}
	if changed("skip-missing") {
		opts.SkipMissing = g.skipMissing
	}
	if changed("nfc") {
		opts.UnicodeNFC = g.unicodeNFC
	}
	if changed("fx") {
		opts.Intrinsics = &manifest.Intrinsics{FX: g.fx, FY: g.fy, CX: g.cx, CY: g.cy}
	}
	return opts, nil
}

// expandHome resolves a leading "~" and otherwise keeps the path as typed so
// relative paths stay relative in the manifest.
func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		return config.ExpandPath(path)
	}
	return path, nil
}
