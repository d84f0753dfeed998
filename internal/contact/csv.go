package contact

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadCSV reads contact records from a CSV with a header row.
//
// Unknown columns are ignored and missing recognized columns yield empty values, so
// only a readable header is required. Rows may be shorter than the header.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = trimBOM(name)
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var records []Record
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		records = append(records, Record{
			Company:  get(ColumnCompany),
			Industry: get(ColumnIndustry),
			Name:     get(ColumnName),
			Position: get(ColumnPosition),
			Notes:    get(ColumnNotes),
		})
	}
}

// ReadFile opens path and reads it with ReadCSV.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// WriteCSV writes results with the stable OutputHeader() ordering.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(OutputHeader()); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write([]string{
			r.Company,
			r.Name,
			r.Email,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates (or truncates) path and writes results to it.
func WriteFile(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	if err := WriteCSV(f, results); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Spreadsheet exports often prefix the first header cell with a UTF-8 byte order mark.
func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
