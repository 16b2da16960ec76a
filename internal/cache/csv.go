package cache

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

	"HypeChart/internal/align"
	"HypeChart/internal/model"
)

// ErrNoDateColumn is returned when a cached file has no date column.
var ErrNoDateColumn = errors.New("no date column")

const utf8BOM = "\ufeff"

// ReadTable parses a CSV file with a header row. The column named "date"
// (any case) becomes the date column; rows whose date cannot be parsed are
// dropped.
func ReadTable(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	t, err := DecodeTable(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// DecodeTable parses CSV content in the format written by EncodeTable.
func DecodeTable(r io.Reader) (*model.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: %w", ErrNoDateColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	dateIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "date") {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("%w in header %v", ErrNoDateColumn, header)
	}

	var cols []string
	var idx []int
	for i, h := range header {
		if i == dateIdx {
			continue
		}
		cols = append(cols, strings.TrimSpace(h))
		idx = append(idx, i)
	}
	t := model.NewTable(header[dateIdx], cols...)

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if dateIdx >= len(rec) {
			continue
		}
		date, err := align.ParseDate(rec[dateIdx])
		if err != nil {
			continue
		}
		values := make([]float64, len(idx))
		for j, i := range idx {
			if i < len(rec) {
				values[j] = parseValue(rec[i])
			} else {
				values[j] = math.NaN()
			}
		}
		t.Rows = append(t.Rows, model.Row{Date: date, Values: values})
	}
	return t, nil
}

func parseValue(s string) float64 {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return math.NaN()
	case "true":
		return 1
	case "false":
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// WriteTable writes t to path, creating the parent directory.
func WriteTable(path string, t *model.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := EncodeTable(f, t); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// EncodeTable writes t as CSV with the date column first.
func EncodeTable(w io.Writer, t *model.Table) error {
	cw := csv.NewWriter(w)
	dateCol := t.DateColumn
	if dateCol == "" {
		dateCol = "date"
	}
	if err := cw.Write(append([]string{dateCol}, t.Columns...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Columns)+1)
	for _, r := range t.Rows {
		rec[0] = align.FormatDate(r.Date)
		for i := range t.Columns {
			v := math.NaN()
			if i < len(r.Values) {
				v = r.Values[i]
			}
			rec[i+1] = formatValue(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
