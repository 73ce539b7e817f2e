package fields

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
	"github.com/matzehuels/labelpress/pkg/schema"
)

// ExampleHeader is the lone column of a CSV for a layout with no inputs.
const ExampleHeader = "example_field"

// Headers returns the CSV columns for bulk data entry: the text and image
// keys of s in first-seen order. Code values are not columns.
func Headers(s schema.Schema) []string {
	var headers []string
	for _, d := range Discover(s) {
		if d.Kind.IsCode() {
			continue
		}
		headers = append(headers, d.Key)
	}
	if len(headers) == 0 {
		return []string{ExampleHeader}
	}
	return headers
}

// WriteCSV writes the header row for s.
func WriteCSV(w io.Writer, s schema.Schema) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers(s)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// ReadRows reads a CSV with a header row into one mapping per data row.
// Header names are trimmed; short rows leave trailing columns empty.
func ReadRows(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, lperrors.New(lperrors.ErrCodeInvalidInput, "csv has no header row")
	}
	if err != nil {
		return nil, lperrors.Wrap(lperrors.ErrCodeInvalidInput, err, "read csv header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, lperrors.Wrap(lperrors.ErrCodeInvalidInput, err, "read csv row %d", len(rows)+2)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
}
