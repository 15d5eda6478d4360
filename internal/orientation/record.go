package orientation

import (
	"sort"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Record is one camera pose from an orientation log.
type Record struct {
	Label string

	X0, Y0, Z0 float64

	// Omega, Phi and Kappa are the source angles in degrees.
	Omega, Phi, Kappa float64

	// Rotation is derived from Omega/Phi/Kappa at parse time.
	Rotation quat.Number

	Focal  float64
	CX, CY float64
}

// Position returns the projection centre.
func (r Record) Position() r3.Vec {
	return r3.Vec{X: r.X0, Y: r.Y0, Z: r.Z0}
}

// NormDrift returns |‖Rotation‖ − 1|.
func (r Record) NormDrift() float64 {
	return NormDrift(r.Rotation)
}

// Set indexes records by label.
type Set struct {
	records    map[string]Record
	duplicates []string
}

// Lookup returns the record for label.
func (s *Set) Lookup(label string) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	rec, ok := s.records[label]
	return rec, ok
}

// Len returns the number of distinct labels.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Labels calls fn for every label in sorted order until fn returns false.
func (s *Set) Labels(fn func(label string) bool) {
	if s == nil {
		return
	}
	labels := make([]string, 0, len(s.records))
	for label := range s.records {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if !fn(label) {
			return
		}
	}
}

// Duplicates lists labels that appeared more than once, in the order the
// repeats were read. The last occurrence of each is the one retained.
func (s *Set) Duplicates() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.duplicates...)
}

// MaxNormDrift returns the largest NormDrift across the set.
func (s *Set) MaxNormDrift() float64 {
	if s == nil {
		return 0
	}
	var worst float64
	for _, rec := range s.records {
		if d := rec.NormDrift(); d > worst {
			worst = d
		}
	}
	return worst
}

func (s *Set) put(rec Record) bool {
	if s.records == nil {
		s.records = make(map[string]Record)
	}
	_, existed := s.records[rec.Label]
	s.records[rec.Label] = rec
	if existed {
		s.duplicates = append(s.duplicates, rec.Label)
	}
	return existed
}

// NewSet builds a Set from records, applying the same last-wins rule as Parse.
func NewSet(records ...Record) *Set {
	s := &Set{records: make(map[string]Record, len(records))}
	for _, rec := range records {
		s.put(rec)
	}
	return s
}
