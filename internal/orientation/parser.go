package orientation

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"geosplit/internal/logging"
)

// FieldCount is the number of fields required on every orientation line.
const FieldCount = 10

var fieldNames = [FieldCount]string{"label", "X0", "Y0", "Z0", "omega", "phi", "kappa", "focal", "cx", "cy"}

// ParseError reports a malformed orientation line. It is always fatal.
type ParseError struct {
	Path   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse orientation %s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("parse orientation line %d: %s", e.Line, e.Reason)
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path string, logger *slog.Logger) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open orientation file: %w", err)
	}
	defer f.Close()

	return parse(f, path, logger)
}

// Parse reads orientation lines from r. Blank lines and lines starting with
// '#' are skipped. Fields beyond the tenth are ignored. Repeated labels
// overwrite earlier ones.
func Parse(r io.Reader, logger *slog.Logger) (*Set, error) {
	return parse(r, "", logger)
}

func parse(r io.Reader, path string, logger *slog.Logger) (*Set, error) {
	logger = logging.NewComponentLogger(logger, "orientation")
	set := &Set{records: make(map[string]Record)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rec, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Path: path, Line: lineNo, Reason: err.Error()}
		}
		if set.put(rec) {
			logger.Debug("duplicate orientation label; keeping latest",
				logging.String("label", rec.Label),
				logging.Int("line", lineNo),
				logging.Vec("position", rec.Position()),
				logging.Quat("rotation", rec.Rotation),
			)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read orientation file: %w", err)
	}

	logger.Debug("orientations parsed",
		logging.Int("records", set.Len()),
		logging.Int("duplicates", len(set.duplicates)),
		logging.Int("lines", lineNo),
	)
	return set, nil
}

func parseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) < FieldCount {
		return Record{}, fmt.Errorf("expected %d fields, got %d", FieldCount, len(fields))
	}

	var values [FieldCount]float64
	for i := 1; i < FieldCount; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return Record{}, fmt.Errorf("field %s: invalid number %q", fieldNames[i], fields[i])
		}
		values[i] = v
	}

	rec := Record{
		Label: fields[0],
		X0:    values[1],
		Y0:    values[2],
		Z0:    values[3],
		Omega: values[4],
		Phi:   values[5],
		Kappa: values[6],
		Focal: values[7],
		CX:    values[8],
		CY:    values[9],
	}
	rec.Rotation = EulerToQuaternion(rec.Omega, rec.Phi, rec.Kappa)
	return rec, nil
}
