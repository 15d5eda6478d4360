package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Dataset is a throwaway image/depth/orientation tree rooted in a test temp dir.
type Dataset struct {
	t testing.TB

	Root        string
	ImagesDir   string
	DepthsDir   string
	OrientPath  string
	OutputPath  string
	orientLines []string
}

// NewDataset creates empty image and depth directories.
func NewDataset(t testing.TB) *Dataset {
	t.Helper()

	root := t.TempDir()
	d := &Dataset{
		t:          t,
		Root:       root,
		ImagesDir:  filepath.Join(root, "images"),
		DepthsDir:  filepath.Join(root, "depth_npy"),
		OrientPath: filepath.Join(root, "orientations.txt"),
		OutputPath: filepath.Join(root, "splits", "train.csv"),
	}
	for _, dir := range []string{d.ImagesDir, d.DepthsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return d
}

// AddImage creates placeholder image files.
func (d *Dataset) AddImage(names ...string) {
	d.t.Helper()
	for _, name := range names {
		WriteFile(d.t, filepath.Join(d.ImagesDir, name), 16)
	}
}

// AddDepth creates placeholder depth-map files.
func (d *Dataset) AddDepth(names ...string) {
	d.t.Helper()
	for _, name := range names {
		WriteFile(d.t, filepath.Join(d.DepthsDir, name), 16)
	}
}

// AddOrientation appends a record line and rewrites the orientation file.
func (d *Dataset) AddOrientation(line string) {
	d.t.Helper()
	d.orientLines = append(d.orientLines, line)
	d.WriteOrientations(d.orientLines...)
}

// WriteOrientations replaces the orientation file with lines.
func (d *Dataset) WriteOrientations(lines ...string) {
	d.t.Helper()
	content := "# PhotoID X Y Z Omega Phi Kappa f cx cy\n" + strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(d.OrientPath, []byte(content), 0o644); err != nil {
		d.t.Fatalf("write orientations: %v", err)
	}
}

// Sequence adds n complete usegeo-style samples named img_0001_res.jpg and
// so on, and returns the image names in order.
func (d *Dataset) Sequence(n int) []string {
	d.t.Helper()
	names := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		stem := fmt.Sprintf("img_%04d", i)
		image := stem + "_res.jpg"
		d.AddImage(image)
		d.AddDepth(stem + "_depth_res.npy")
		d.AddOrientation(OrientationLine(stem+".jpg", float64(i)*10.5, float64(i)*-2.25, 100, 0, 0, float64(i)*15, 4000+float64(i), 2000, 1500))
		names = append(names, image)
	}
	return names
}

// OrientationLine formats one orientation record.
func OrientationLine(label string, x, y, z, omega, phi, kappa, focal, cx, cy float64) string {
	fields := []string{label}
	for _, v := range []float64{x, y, z, omega, phi, kappa, focal, cx, cy} {
		fields = append(fields, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(fields, " ")
}
