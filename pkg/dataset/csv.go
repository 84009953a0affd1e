// Package dataset reads and writes diamond CSV files. Grade columns may hold
// either ranks (the cleaned file) or labels (the raw file).
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lad94220/ML-Lab1/pkg/common"
	"github.com/lad94220/ML-Lab1/pkg/grade"
)

var (
	ErrMissingColumn = errors.New("dataset: missing column")
	ErrNonFinite     = errors.New("value is not a finite number")
)

// Columns are the fields every dataset must carry, in cleaned-file order.
var Columns = []string{"price", "carat", "cut", "color", "clarity"}

// ReadFile reads the CSV at path.
func ReadFile(path string) ([]common.Diamond, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read parses a header row followed by data rows. Extra columns are ignored.
func Read(r io.Reader) ([]common.Diamond, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	pos := make([]int, len(Columns))
	for i, c := range Columns {
		p, ok := idx[c]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, c)
		}
		pos[i] = p
	}

	var rows []common.Diamond
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		d, err := parseRow(rec, pos)
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}
		rows = append(rows, d)
	}
	return rows, nil
}

func parseRow(rec []string, pos []int) (common.Diamond, error) {
	field := func(i int) (string, error) {
		if pos[i] >= len(rec) {
			return "", fmt.Errorf("%w %q", ErrMissingColumn, Columns[i])
		}
		return strings.TrimSpace(rec[pos[i]]), nil
	}

	var d common.Diamond
	var err error
	var s string

	if s, err = field(0); err != nil {
		return d, err
	}
	if d.Price, err = parseFinite(s); err != nil {
		return d, fmt.Errorf("price: %w", err)
	}
	if s, err = field(1); err != nil {
		return d, err
	}
	if d.Carat, err = parseFinite(s); err != nil {
		return d, fmt.Errorf("carat: %w", err)
	}

	scales := []*grade.Scale{grade.Cut, grade.Color, grade.Clarity}
	ranks := []*int{&d.Cut, &d.Color, &d.Clarity}
	for i, sc := range scales {
		if s, err = field(2 + i); err != nil {
			return d, err
		}
		if *ranks[i], err = parseGrade(sc, s); err != nil {
			return d, err
		}
	}
	return d, nil
}

// parseFinite rejects NaN and infinities, which strconv accepts.
func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNonFinite, s)
	}
	return f, nil
}

// parseGrade accepts a rank ("5") or a label ("Ideal").
func parseGrade(sc *grade.Scale, s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := sc.Label(n); ok {
			return n, nil
		}
		return 0, fmt.Errorf("%s: rank %d out of range 1..%d", sc.Name(), n, sc.Len())
	}
	if r := sc.Encode(s); r != grade.Unknown {
		return r, nil
	}
	return 0, fmt.Errorf("%s: unknown grade %q", sc.Name(), s)
}

// Clean drops rows the log transforms cannot handle.
func Clean(rows []common.Diamond) []common.Diamond {
	out := rows[:0:0]
	for _, d := range rows {
		if d.Carat > 0 && d.Price > 0 {
			out = append(out, d)
		}
	}
	return out
}

// Write emits rows in the cleaned, rank-encoded layout.
func Write(w io.Writer, rows []common.Diamond) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, d := range rows {
		rec := []string{
			strconv.FormatFloat(d.Price, 'f', -1, 64),
			strconv.FormatFloat(d.Carat, 'f', -1, 64),
			strconv.Itoa(d.Cut),
			strconv.Itoa(d.Color),
			strconv.Itoa(d.Clarity),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to path in the cleaned layout, creating parent
// directories.
func WriteFile(path string, rows []common.Diamond) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
