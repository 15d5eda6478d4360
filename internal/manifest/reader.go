package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Reader decodes manifest rows by column name, so extra columns and
// reordered columns are tolerated.
type Reader struct {
	csv   *csv.Reader
	index map[string]int
	line  int
}

// NewReader consumes the header from r and checks that every required
// column is present.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("manifest is empty")
		}
		return nil, fmt.Errorf("read manifest header: %w", err)
	}
	cr.FieldsPerRecord = len(header)

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range Columns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("manifest header missing columns: %s", strings.Join(missing, ", "))
	}

	return &Reader{csv: cr, index: index, line: 1}, nil
}

// Read returns the next row, or io.EOF when the manifest is exhausted.
func (r *Reader) Read() (Row, error) {
	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		return Row{}, fmt.Errorf("read manifest: %w", err)
	}
	r.line++

	var parseErr error
	num := func(column string) float64 {
		if parseErr != nil {
			return 0
		}
		raw := strings.TrimSpace(record[r.index[column]])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			parseErr = fmt.Errorf("manifest line %d: column %s: invalid number %q", r.line, column, raw)
		}
		return v
	}

	row := Row{
		RGB:   record[r.index["RGB_im"]],
		Depth: record[r.index["depth"]],
		Intrinsics: Intrinsics{
			FX: num("f_x"),
			FY: num("f_y"),
			CX: num("c_x"),
			CY: num("c_y"),
		},
		Rotation: quat.Number{
			Real: num("rot_w"),
			Imag: num("rot_x"),
			Jmag: num("rot_y"),
			Kmag: num("rot_z"),
		},
		Translation: r3.Vec{
			X: num("trans_x"),
			Y: num("trans_y"),
			Z: num("trans_z"),
		},
	}
	if parseErr != nil {
		return Row{}, parseErr
	}
	return row, nil
}

// ReadAll drains the reader.
func (r *Reader) ReadAll() ([]Row, error) {
	var rows []Row
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// ReadFile reads every row of the manifest at path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	r, err := NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r.ReadAll()
}
