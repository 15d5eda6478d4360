package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"geosplit/internal/correlate"
	"geosplit/internal/manifest"
	"geosplit/internal/testsupport"
)

func generateArgs(ds *testsupport.Dataset, extra ...string) []string {
	args := []string{
		"generate",
		"--orient", ds.OrientPath,
		"--images", ds.ImagesDir,
		"--depths", ds.DepthsDir,
		"--out", ds.OutputPath,
	}
	return append(args, extra...)
}

func TestGenerateWritesManifest(t *testing.T) {
	isolateHome(t)
	ds := testsupport.NewDataset(t)
	ds.Sequence(3)

	out, _, err := runCLI(t, generateArgs(ds), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	requireContains(t, out, "Wrote 3 rows to "+ds.OutputPath)

	rows, err := manifest.ReadFile(ds.OutputPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Intrinsics.FX != 4001 || rows[2].Intrinsics.FY != 4003 {
		t.Fatalf("unexpected intrinsics: %+v / %+v", rows[0].Intrinsics, rows[2].Intrinsics)
	}
}

func TestGenerateIntrinsicsOverride(t *testing.T) {
	isolateHome(t)
	ds := testsupport.NewDataset(t)
	ds.Sequence(2)

	_, _, err := runCLI(t, generateArgs(ds, "--fx", "1200", "--fy", "1210", "--cx", "640", "--cy", "480"), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	rows, err := manifest.ReadFile(ds.OutputPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	want := manifest.Intrinsics{FX: 1200, FY: 1210, CX: 640, CY: 480}
	for i, row := range rows {
		if row.Intrinsics != want {
			t.Fatalf("row %d intrinsics = %+v, want %+v", i, row.Intrinsics, want)
		}
	}
}

func TestGenerateRequiresAllIntrinsicsFlags(t *testing.T) {
	isolateHome(t)
	ds := testsupport.NewDataset(t)
	ds.Sequence(1)

	_, _, err := runCLI(t, generateArgs(ds, "--fx", "1200"), "")
	if err == nil {
		t.Fatal("expected error when only --fx is given")
	}
	requireContains(t, err.Error(), "fx fy cx cy")
	if _, statErr := os.Stat(ds.OutputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no manifest, stat err = %v", statErr)
	}
}

func TestGenerateMissingDepthFails(t *testing.T) {
	isolateHome(t)
	ds := testsupport.NewDataset(t)
	ds.Sequence(2)
	ds.AddImage("img_0100_res.jpg")
	ds.AddOrientation(testsupport.OrientationLine("img_0100.jpg", 1, 2, 3, 0, 0, 0, 4000, 2000, 1500))

	_, stderr, err := runCLI(t, generateArgs(ds), "")
	var missing *correlate.MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingError, got %v", err)
	}
	if missing.Kind != correlate.MissingDepth {
		t.Fatalf("expected missing depth, got %s", missing.Kind)
	}
	requireContains(t, stderr, "img_0100_res.jpg")
	if _, statErr := os.Stat(ds.OutputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no manifest, stat err = %v", statErr)
	}
}

func TestGenerateSkipMissingFlag(t *testing.T) {
	isolateHome(t)
	ds := testsupport.NewDataset(t)
	ds.Sequence(2)
	ds.AddImage("img_0100_res.jpg")

	out, _, err := runCLI(t, generateArgs(ds, "--skip-missing"), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	requireContains(t, out, "Wrote 2 rows")
	requireContains(t, out, "Skipped 1 of 3 images (1 without orientation, 0 without depth)")
}

func TestGenerateUsesConfigFile(t *testing.T) {
	isolateHome(t)
	ds := testsupport.NewDataset(t)
	ds.AddImage("a.jpg", "b.JPG")
	ds.AddDepth("a_depth.npy")
	ds.WriteOrientations(
		testsupport.OrientationLine("a.jpg", 1, 2, 3, 0, 0, 0, 3000, 100, 200),
		testsupport.OrientationLine("b.JPG", 4, 5, 6, 0, 0, 0, 3000, 100, 200),
	)

	cfg := testsupport.NewConfig(t, testsupport.WithScheme("stem"), testsupport.WithSkipMissing(true))
	configPath := writeTestConfig(t, ds.Root, cfg)

	out, _, err := runCLI(t, generateArgs(ds), configPath)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	requireContains(t, out, "Wrote 1 rows")
	requireContains(t, out, "0 without orientation, 1 without depth")

	// Flags override the configuration.
	_, _, err = runCLI(t, generateArgs(ds, "--skip-missing=false"), configPath)
	var missing *correlate.MissingError
	if !errors.As(err, &missing) || missing.Image != "b.JPG" {
		t.Fatalf("expected missing depth for b.JPG, got %v", err)
	}
}

func TestGenerateJSONLogs(t *testing.T) {
	isolateHome(t)
	ds := testsupport.NewDataset(t)
	ds.Sequence(1)

	_, stderr, err := runCLI(t, generateArgs(ds, "--log-format", "json"), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	requireContains(t, stderr, `"msg":"manifest written"`)
}

func TestRejectsUnknownLogFormat(t *testing.T) {
	isolateHome(t)
	ds := testsupport.NewDataset(t)
	ds.Sequence(1)

	_, _, err := runCLI(t, generateArgs(ds, "--log-format", "xml"), "")
	if err == nil {
		t.Fatal("expected error for unknown log format")
	}
	requireContains(t, err.Error(), "logging.format")
}

func TestGenerateAppendsLogsToFile(t *testing.T) {
	isolateHome(t)
	ds := testsupport.NewDataset(t)
	ds.Sequence(1)
	logPath := filepath.Join(ds.Root, "logs", "geosplit.log")

	_, stderr, err := runCLI(t, generateArgs(ds, "--log-format", "json", "--log-file", logPath), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	requireContains(t, string(content), `"msg":"manifest written"`)
	requireContains(t, stderr, `"msg":"manifest written"`)
}

func TestGenerateRejectsEscapingDepthSuffix(t *testing.T) {
	isolateHome(t)
	ds := testsupport.NewDataset(t)
	ds.AddImage("a.jpg")
	ds.WriteOrientations(testsupport.OrientationLine("a.jpg", 1, 2, 3, 0, 0, 0, 3000, 100, 200))
	testsupport.WriteFile(t, filepath.Join(ds.Root, "outside.npy"), 16)

	_, _, err := runCLI(t, generateArgs(ds, "--scheme", "stem", "--depth-suffix", "/../../outside.npy"), "")
	if err == nil {
		t.Fatal("expected depth suffix with path separators to be rejected")
	}
	requireContains(t, err.Error(), "path separators")
	if _, statErr := os.Stat(ds.OutputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no manifest, stat err = %v", statErr)
	}
}
