package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"geosplit/internal/logging"
	"geosplit/internal/manifest"
	"geosplit/internal/orientation"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var checkFiles bool
	var listRows int

	cmd := &cobra.Command{
		Use:   "inspect <manifest>",
		Short: "Summarize a manifest the way a training loader would read it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := expandHome(args[0])
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rows, err := manifest.ReadFile(path)
			if err != nil {
				return err
			}
			logger.Debug("manifest loaded", logging.String("path", path), logging.Int("rows", len(rows)))

			summary := summarizeManifest(rows, checkFiles)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(summary.table(path, checkFiles)))
			if listRows > 0 && len(rows) > 0 {
				fmt.Fprintln(out, renderTable(rowsTable(rows, listRows)))
			}
			if checkFiles && (summary.missingRGB > 0 || summary.missingDepth > 0) {
				return fmt.Errorf("manifest references %d missing images and %d missing depth maps", summary.missingRGB, summary.missingDepth)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkFiles, "check-files", true, "Verify that referenced image and depth files exist")
	cmd.Flags().IntVarP(&listRows, "rows", "n", 0, "Also list the first N rows")
	return cmd
}

type valueRange struct {
	min, max float64
	set      bool
}

func (r *valueRange) add(v float64) {
	if !r.set {
		r.min, r.max, r.set = v, v, true
		return
	}
	r.min = math.Min(r.min, v)
	r.max = math.Max(r.max, v)
}

func (r valueRange) String() string {
	if !r.set {
		return "-"
	}
	if r.min == r.max {
		return formatNumber(r.min)
	}
	return formatNumber(r.min) + " … " + formatNumber(r.max)
}

type manifestSummary struct {
	rows         int
	missingRGB   int
	missingDepth int
	fx, fy       valueRange
	cx, cy       valueRange
	tx, ty, tz   valueRange
	maxDrift     float64
}

func summarizeManifest(rows []manifest.Row, checkFiles bool) manifestSummary {
	s := manifestSummary{rows: len(rows)}
	for _, row := range rows {
		s.fx.add(row.Intrinsics.FX)
		s.fy.add(row.Intrinsics.FY)
		s.cx.add(row.Intrinsics.CX)
		s.cy.add(row.Intrinsics.CY)
		s.tx.add(row.Translation.X)
		s.ty.add(row.Translation.Y)
		s.tz.add(row.Translation.Z)
		if d := orientation.NormDrift(row.Rotation); d > s.maxDrift {
			s.maxDrift = d
		}
		if checkFiles {
			if !fileExists(row.RGB) {
				s.missingRGB++
			}
			if !fileExists(row.Depth) {
				s.missingDepth++
			}
		}
	}
	return s
}

func (s manifestSummary) table(path string, checkFiles bool) tableView {
	rows := [][]string{
		{"Rows", strconv.Itoa(s.rows)},
		{"f_x", s.fx.String()},
		{"f_y", s.fy.String()},
		{"c_x", s.cx.String()},
		{"c_y", s.cy.String()},
		{"trans_x", s.tx.String()},
		{"trans_y", s.ty.String()},
		{"trans_z", s.tz.String()},
		{"Max |‖q‖−1|", strconv.FormatFloat(s.maxDrift, 'g', 3, 64)},
	}
	if checkFiles {
		rows = append(rows,
			[]string{"Missing images", strconv.Itoa(s.missingRGB)},
			[]string{"Missing depth maps", strconv.Itoa(s.missingDepth)},
		)
	}
	return tableView{
		title:   filepath.Base(path),
		headers: []string{"Field", "Value"},
		rows:    rows,
		numeric: map[int]bool{1: true},
	}
}

func rowsTable(rows []manifest.Row, limit int) tableView {
	if limit > len(rows) {
		limit = len(rows)
	}
	out := make([][]string, 0, limit)
	for _, row := range rows[:limit] {
		out = append(out, []string{
			filepath.Base(row.RGB),
			filepath.Base(row.Depth),
			formatNumber(row.Intrinsics.FX),
			strconv.FormatFloat(row.Rotation.Real, 'f', 4, 64),
			strconv.FormatFloat(row.Rotation.Imag, 'f', 4, 64),
			strconv.FormatFloat(row.Rotation.Jmag, 'f', 4, 64),
			strconv.FormatFloat(row.Rotation.Kmag, 'f', 4, 64),
			formatNumber(row.Translation.X),
			formatNumber(row.Translation.Y),
			formatNumber(row.Translation.Z),
		})
	}
	return tableView{
		headers: []string{"RGB_im", "depth", "f_x", "rot_w", "rot_x", "rot_y", "rot_z", "trans_x", "trans_y", "trans_z"},
		rows:    out,
		numeric: map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true, 9: true},
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
