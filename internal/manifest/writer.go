package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"

	"geosplit/internal/logging"
)

const (
	intrinsicsPrecision  = 6
	rotationPrecision    = 16
	translationPrecision = 9
)

// Writer emits manifest rows with the canonical header and formatting.
type Writer struct {
	csv     *csv.Writer
	logger  *slog.Logger
	header  bool
	rows    int
	repairs int
}

// NewWriter returns a Writer that writes tab-separated, LF-terminated records to w.
func NewWriter(w io.Writer, logger *slog.Logger) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	cw.UseCRLF = false
	return &Writer{
		csv:    cw,
		logger: logging.NewComponentLogger(logger, "manifest"),
	}
}

// WriteHeader writes the column header. Write calls it implicitly.
func (w *Writer) WriteHeader() error {
	if w.header {
		return nil
	}
	if err := w.csv.Write(Columns); err != nil {
		return fmt.Errorf("write manifest header: %w", err)
	}
	w.header = true
	return nil
}

// Write formats and writes a single row.
func (w *Writer) Write(row Row) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.csv.Write(w.format(row)); err != nil {
		return fmt.Errorf("write manifest row %d: %w", w.rows+1, err)
	}
	w.rows++
	return nil
}

// Flush flushes buffered records and reports any write error.
func (w *Writer) Flush() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("flush manifest: %w", err)
	}
	return nil
}

// Rows returns the number of data rows written.
func (w *Writer) Rows() int { return w.rows }

// Repairs returns the number of rows whose translation needed sanitizing.
func (w *Writer) Repairs() int { return w.repairs }

func (w *Writer) format(row Row) []string {
	trans := w.sanitizeTranslation(row.RGB, [3]string{
		formatFloat(row.Translation.X, translationPrecision),
		formatFloat(row.Translation.Y, translationPrecision),
		formatFloat(row.Translation.Z, translationPrecision),
	})

	return []string{
		filepath.Clean(row.RGB),
		filepath.Clean(row.Depth),
		formatFloat(row.Intrinsics.FX, intrinsicsPrecision),
		formatFloat(row.Intrinsics.FY, intrinsicsPrecision),
		formatFloat(row.Intrinsics.CX, intrinsicsPrecision),
		formatFloat(row.Intrinsics.CY, intrinsicsPrecision),
		formatFloat(row.Rotation.Real, rotationPrecision),
		formatFloat(row.Rotation.Imag, rotationPrecision),
		formatFloat(row.Rotation.Jmag, rotationPrecision),
		formatFloat(row.Rotation.Kmag, rotationPrecision),
		trans[0],
		trans[1],
		trans[2],
	}
}

// sanitizeTranslation reduces each formatted component to its first decimal
// match and reports rows where any component held more than one.
func (w *Writer) sanitizeTranslation(image string, raw [3]string) [3]string {
	tx := SanitizeNumeric(raw[0])
	ty := SanitizeNumeric(raw[1])
	tz := SanitizeNumeric(raw[2])
	if len(tx) > 1 || len(ty) > 1 || len(tz) > 1 {
		w.repairs++
		logging.WarnWithContext(w.logger, "translation contains multiple numeric values; using the first",
			"numeric_anomaly",
			logging.String(logging.FieldImage, filepath.Base(image)),
			logging.Strings("trans_x", tx),
			logging.Strings("trans_y", ty),
			logging.Strings("trans_z", tz),
			logging.String(logging.FieldErrorHint, "inspect the orientation log for merged columns"),
		)
	}
	return [3]string{tx[0], ty[0], tz[0]}
}

func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// WriteAll writes the header followed by rows and flushes.
func WriteAll(w io.Writer, rows []Row, logger *slog.Logger) error {
	mw := NewWriter(w, logger)
	if err := mw.WriteHeader(); err != nil {
		return err
	}
	for _, row := range rows {
		if err := mw.Write(row); err != nil {
			return err
		}
	}
	return mw.Flush()
}
