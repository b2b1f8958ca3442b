package rates

import (
	"fmt"

	"github.com/carrier-rates/backend/internal/models"
)

// DefaultSampleSize is how many data rows Validate inspects for warnings.
const DefaultSampleSize = 10

// Table splits uploaded rows into the header row and the data region
// according to the template's CSV structure. Without a header row the
// template's expected columns stand in for it.
type Table struct {
	Headers []string
	Data    [][]string
	// DataOffset is the index of the first data row in the uploaded rows.
	DataOffset int
}

// Split locates the header row and data region in rows.
func Split(rows [][]string, s *models.CSVStructure) Table {
	t := Table{DataOffset: s.DataStartRow}
	if s.HeaderRow() {
		if s.HeaderRowIndex < len(rows) {
			t.Headers = rows[s.HeaderRowIndex]
		}
	} else {
		t.Headers = s.ExpectedColumns
	}
	if s.DataStartRow < len(rows) {
		t.Data = rows[s.DataStartRow:]
	}
	return t
}

// Validate checks rows against the template. Structural problems are
// errors; sample cell problems are warnings. sampleSize <= 0 uses
// DefaultSampleSize.
func Validate(rows [][]string, t *models.CarrierRateTemplate, sampleSize int) *models.ValidationResult {
	result := models.NewValidationResult()
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	table := Split(rows, &t.CSVStructure)
	if len(table.Data) == 0 {
		result.AddError("CSV file has no data rows")
		return result
	}

	index := make(map[string]int, len(table.Headers))
	for i, h := range table.Headers {
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}

	for _, col := range t.CSVStructure.RequiredColumns {
		if _, ok := index[col]; !ok {
			result.AddError(fmt.Sprintf("Missing required column: %q", col))
		}
	}
	for _, m := range t.FieldMappings.Mapped() {
		if _, ok := index[m.Column]; !ok {
			result.AddError(fmt.Sprintf("Mapped column %q for field %s not found in CSV headers", m.Column, m.Field))
		}
	}
	// Rows are read by position in expectedColumns, so a column the upload
	// has but the template does not know would be read as absent.
	if t.CSVStructure.HeaderRow() {
		expected := make(map[string]struct{}, len(t.CSVStructure.ExpectedColumns))
		for _, col := range t.CSVStructure.ExpectedColumns {
			expected[col] = struct{}{}
		}
		for _, col := range t.CSVStructure.RequiredColumns {
			if _, ok := expected[col]; !ok {
				result.AddError(fmt.Sprintf("Required column %q is not in the template's expected columns", col))
			}
		}
		for _, m := range t.FieldMappings.Mapped() {
			if _, ok := expected[m.Column]; !ok {
				result.AddError(fmt.Sprintf("Mapped column %q for field %s is not in the template's expected columns", m.Column, m.Field))
			}
		}
	}
	for name, col := range t.FieldMappings.CustomFields {
		if _, ok := index[col]; !ok {
			result.AddWarning(fmt.Sprintf("Custom field %s column %q not found in CSV headers", name, col))
		}
	}
	if t.CSVStructure.HeaderRow() && !sameOrder(table.Headers, t.CSVStructure.ExpectedColumns) {
		result.AddWarning("Column order differs from the template's expected columns")
	}

	sample := table.Data
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	rules := &t.ValidationRules
	for i, row := range sample {
		rowNum := table.DataOffset + i + 1
		for _, f := range rules.NumericFields {
			v, ok := sampleCell(row, f, &t.FieldMappings, index)
			if !ok || isBlank(v) {
				continue
			}
			if _, err := ParseNumber(v); err != nil {
				result.AddWarning(fmt.Sprintf("Row %d: %s value %q is not numeric", rowNum, f, v))
			}
		}
		for _, f := range rules.RequiredFields {
			v, _ := sampleCell(row, f, &t.FieldMappings, index)
			if isBlank(v) {
				result.AddWarning(fmt.Sprintf("Row %d: required field %s is empty", rowNum, f))
			}
		}
		for f, rng := range rules.Ranges {
			v, ok := sampleCell(row, f, &t.FieldMappings, index)
			if !ok || isBlank(v) {
				continue
			}
			n, err := ParseNumber(v)
			if err != nil {
				continue
			}
			if rng.Min != nil && n < *rng.Min {
				result.AddWarning(fmt.Sprintf("Row %d: %s value %v is below minimum %v", rowNum, f, n, *rng.Min))
			}
			if rng.Max != nil && n > *rng.Max {
				result.AddWarning(fmt.Sprintf("Row %d: %s value %v is above maximum %v", rowNum, f, n, *rng.Max))
			}
		}
	}

	return result
}

// sampleCell reads the cell for f using the uploaded header positions.
func sampleCell(row []string, f models.Field, m *models.FieldMappings, index map[string]int) (string, bool) {
	col, ok := m.Column(f)
	if !ok {
		return "", false
	}
	i, ok := index[col]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

// sameOrder reports whether headers begin with expected in order. An empty
// expected list matches anything.
func sameOrder(headers, expected []string) bool {
	if len(headers) < len(expected) {
		return false
	}
	for i, c := range expected {
		if headers[i] != c {
			return false
		}
	}
	return true
}
