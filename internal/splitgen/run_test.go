package splitgen_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats/scalar"

	"geosplit/internal/correlate"
	"geosplit/internal/logging"
	"geosplit/internal/manifest"
	"geosplit/internal/orientation"
	"geosplit/internal/splitgen"
	"geosplit/internal/testsupport"
)

func optionsFor(ds *testsupport.Dataset) splitgen.Options {
	return splitgen.Options{
		OrientPath: ds.OrientPath,
		ImagesDir:  ds.ImagesDir,
		DepthsDir:  ds.DepthsDir,
		OutputPath: ds.OutputPath,
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestRunWritesSortedManifest(t *testing.T) {
	ds := testsupport.NewDataset(t)
	images := ds.Sequence(4)

	res, err := splitgen.Run(context.Background(), optionsFor(ds), logging.NewNop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Rows != 4 || res.Orientations != 4 {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := uuid.Parse(res.RunID); err != nil {
		t.Fatalf("run id is not a uuid: %q", res.RunID)
	}

	lines := readLines(t, ds.OutputPath)
	if len(lines) != 5 {
		t.Fatalf("expected header + 4 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(manifest.Columns, "\t") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	for i, line := range lines[1:] {
		cols := strings.Split(line, "\t")
		if len(cols) != 13 {
			t.Fatalf("row %d has %d columns", i, len(cols))
		}
		if cols[0] != filepath.Join(ds.ImagesDir, images[i]) {
			t.Fatalf("row %d out of order: %q", i, cols[0])
		}
	}

	// The fourth sample has kappa=60 and translation (42, -9, 100).
	cols := strings.Split(lines[4], "\t")
	if cols[2] != "4004.000000" || cols[4] != "2000.000000" {
		t.Fatalf("unexpected intrinsics %v", cols[2:6])
	}
	if cols[10] != "42.000000000" || cols[11] != "-9.000000000" || cols[12] != "100.000000000" {
		t.Fatalf("unexpected translation %v", cols[10:])
	}
	w, _ := strconv.ParseFloat(cols[6], 64)
	x, _ := strconv.ParseFloat(cols[7], 64)
	if !scalar.EqualWithinAbs(w, math.Sqrt(3)/2, 1e-15) || !scalar.EqualWithinAbs(x, -0.5, 1e-15) {
		t.Fatalf("unexpected rotation %v", cols[6:10])
	}
	if len(cols[6]) != len("0.8660254037844387") {
		t.Fatalf("rotation not formatted to 16 decimals: %q", cols[6])
	}

	rows, err := manifest.ReadFile(ds.OutputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("manifest re-read returned %d rows", len(rows))
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(ds.OutputPath), ".*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temporary files left behind: %v", matches)
	}
}

func TestRunIntrinsicsOverride(t *testing.T) {
	ds := testsupport.NewDataset(t)
	ds.Sequence(2)

	opts := optionsFor(ds)
	opts.Intrinsics = &manifest.Intrinsics{FX: 1000, FY: 1001, CX: 640, CY: 480}
	if _, err := splitgen.Run(context.Background(), opts, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, line := range readLines(t, ds.OutputPath)[1:] {
		cols := strings.Split(line, "\t")
		if got := strings.Join(cols[2:6], " "); got != "1000.000000 1001.000000 640.000000 480.000000" {
			t.Fatalf("override not applied: %s", got)
		}
	}
}

func TestRunSkipMissingDropsIncompleteSamples(t *testing.T) {
	ds := testsupport.NewDataset(t)
	ds.Sequence(3)
	ds.AddImage("img_0100_res.jpg")       // no orientation, no depth
	ds.AddImage("img_0200_res.jpg")       // orientation only
	ds.AddDepth("img_0300_depth_res.npy") // depth only
	ds.AddImage("img_0300_res.jpg")
	ds.AddOrientation(testsupport.OrientationLine("img_0200.jpg", 1, 1, 1, 0, 0, 0, 1, 1, 1))

	opts := optionsFor(ds)
	opts.SkipMissing = true
	res, err := splitgen.Run(context.Background(), opts, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stats.Images != 6 {
		t.Fatalf("expected 6 images, got %d", res.Stats.Images)
	}
	if res.Rows != res.Stats.Images-res.Stats.Skipped() || res.Rows != 3 {
		t.Fatalf("row count %d does not equal images minus missing (%+v)", res.Rows, res.Stats)
	}
	if res.Stats.MissingOrientation != 2 || res.Stats.MissingDepth != 1 {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
	if got := len(readLines(t, ds.OutputPath)); got != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", got)
	}
}

func TestRunMissingDepthFailsWithoutOutput(t *testing.T) {
	ds := testsupport.NewDataset(t)
	ds.Sequence(2)
	if err := os.Remove(filepath.Join(ds.DepthsDir, "img_0002_depth_res.npy")); err != nil {
		t.Fatalf("remove depth: %v", err)
	}

	_, err := splitgen.Run(context.Background(), optionsFor(ds), nil)
	var missing *correlate.MissingError
	if !errors.As(err, &missing) || missing.Kind != correlate.MissingDepth {
		t.Fatalf("expected missing depth error, got %v", err)
	}
	if _, statErr := os.Stat(ds.OutputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no manifest after failure, stat err = %v", statErr)
	}
}

func TestRunFailureLeavesNothingBehind(t *testing.T) {
	ds := testsupport.NewDataset(t)
	ds.Sequence(1)
	ds.AddOrientation("broken 1 2 3")

	_, err := splitgen.Run(context.Background(), optionsFor(ds), nil)
	var perr *orientation.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Dir(ds.OutputPath)); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output directory after parse failure, stat err = %v", statErr)
	}
}

func TestRunWriteFailureRemovesLockFile(t *testing.T) {
	ds := testsupport.NewDataset(t)
	ds.Sequence(1)
	// A directory in place of the manifest makes the final rename fail.
	if err := os.MkdirAll(ds.OutputPath, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if _, err := splitgen.Run(context.Background(), optionsFor(ds), nil); err == nil {
		t.Fatal("expected install error")
	}
	if _, statErr := os.Stat(ds.OutputPath + ".lock"); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected lock file to be removed, stat err = %v", statErr)
	}
	entries, err := os.ReadDir(filepath.Dir(ds.OutputPath))
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != filepath.Base(ds.OutputPath) {
		t.Fatalf("unexpected leftovers: %v", entries)
	}
}

func TestRunFailureKeepsPreviousManifest(t *testing.T) {
	ds := testsupport.NewDataset(t)
	ds.Sequence(1)
	if err := os.MkdirAll(filepath.Dir(ds.OutputPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(ds.OutputPath, []byte("previous\n"), 0o644); err != nil {
		t.Fatalf("seed manifest: %v", err)
	}
	ds.AddOrientation("broken 1 2 3")

	_, err := splitgen.Run(context.Background(), optionsFor(ds), nil)
	var perr *orientation.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected parse error, got %v", err)
	}
	data, readErr := os.ReadFile(ds.OutputPath)
	if readErr != nil || string(data) != "previous\n" {
		t.Fatalf("previous manifest modified: %q, %v", data, readErr)
	}
}

func TestRunReportsDuplicatesAndStrategy(t *testing.T) {
	ds := testsupport.NewDataset(t)
	ds.AddImage("a.jpg", "b.JPG")
	ds.AddDepth("a_depth.npy", "b_depth.npy")
	ds.WriteOrientations(
		testsupport.OrientationLine("a.jpg", 1, 1, 1, 0, 0, 0, 10, 5, 5),
		testsupport.OrientationLine("b.JPG", 2, 2, 2, 0, 0, 0, 10, 5, 5),
		testsupport.OrientationLine("a.jpg", 3, 3, 3, 0, 0, 0, 10, 5, 5),
	)

	opts := optionsFor(ds)
	opts.Strategy = correlate.Stem{DepthSuffix: "_depth.npy"}
	res, err := splitgen.Run(context.Background(), opts, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Rows != 2 || res.Orientations != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Duplicates) != 1 || res.Duplicates[0] != "a.jpg" {
		t.Fatalf("unexpected duplicates %v", res.Duplicates)
	}
	rows, err := manifest.ReadFile(ds.OutputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if rows[0].Translation.X != 3 {
		t.Fatalf("expected last duplicate to win, got %v", rows[0].Translation)
	}
}

func TestRunRefusesLockedOutput(t *testing.T) {
	ds := testsupport.NewDataset(t)
	ds.Sequence(1)
	if err := os.MkdirAll(filepath.Dir(ds.OutputPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	held := flock.New(ds.OutputPath + ".lock")
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-lock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	_, err = splitgen.Run(context.Background(), optionsFor(ds), nil)
	if !errors.Is(err, splitgen.ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
}

func TestRunValidatesOptions(t *testing.T) {
	_, err := splitgen.Run(context.Background(), splitgen.Options{ImagesDir: "x"}, nil)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"orientation file", "depths directory", "output path"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %q", err, want)
		}
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ds := testsupport.NewDataset(t)
	ds.Sequence(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := splitgen.Run(ctx, optionsFor(ds), nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(ds.OutputPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no output after cancellation")
	}
}
