package rates

import (
	"errors"
	"fmt"

	"github.com/carrier-rates/backend/internal/models"
)

// BatchResult collects the processed records of a data region.
type BatchResult struct {
	Records   []models.RateRecord
	Skipped   int
	RowErrors []*RowError
}

// ProcessRows runs ProcessRow over data, numbering rows from 1. Failed rows
// are skipped and counted. limit > 0 stops after that many data rows.
func ProcessRows(data [][]string, t *models.CarrierRateTemplate, limit int) BatchResult {
	if limit > 0 && len(data) > limit {
		data = data[:limit]
	}
	res := BatchResult{Records: make([]models.RateRecord, 0, len(data))}
	for i, row := range data {
		rec, err := processRowSafe(row, t, i+1)
		if err != nil {
			res.Skipped++
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				rowErr = &RowError{Row: i + 1, Err: err}
			}
			res.RowErrors = append(res.RowErrors, rowErr)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// processRowSafe turns a panic inside ProcessRow into a row error so one
// malformed row cannot abort the batch.
func processRowSafe(row []string, t *models.CarrierRateTemplate, rowNumber int) (rec models.RateRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing row %d: %v", rowNumber, r)
		}
	}()
	return ProcessRow(row, t, rowNumber)
}
