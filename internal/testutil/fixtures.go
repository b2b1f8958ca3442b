package testutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/carrier-rates/backend/internal/models"
)

// LTLHeaders are the columns of the sample LTL rate sheet.
var LTLHeaders = []string{"Origin City", "Destination City", "Weight", "Base Rate", "Fuel %", "Min Charge"}

// LTLTemplate returns a normalized per-100lbs template for the sample sheet.
// The id is fixed so tests can address it directly.
func LTLTemplate() *models.CarrierRateTemplate {
	t := &models.CarrierRateTemplate{
		ID:        "tmpl-ltl",
		CarrierID: "acme",
		Name:      "Acme LTL",
		Enabled:   true,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	t.CSVStructure.ExpectedColumns = append([]string{}, LTLHeaders...)
	t.CSVStructure.RequiredColumns = []string{"Origin City", "Destination City", "Base Rate"}
	t.FieldMappings.Set(models.FieldOriginCity, "Origin City")
	t.FieldMappings.Set(models.FieldDestinationCity, "Destination City")
	t.FieldMappings.Set(models.FieldWeight, "Weight")
	t.FieldMappings.Set(models.FieldBaseRate, "Base Rate")
	t.FieldMappings.Set(models.FieldFuelSurchargePct, "Fuel %")
	t.FieldMappings.Set(models.FieldMinCharge, "Min Charge")
	t.RateCalculationRules.CalculationType = models.CalculationPerUnit
	t.RateCalculationRules.BaseUnit = models.BaseUnitWeight
	t.ValidationRules.NumericFields = []models.Field{models.FieldWeight, models.FieldBaseRate}
	t.ValidationRules.RequiredFields = []models.Field{models.FieldOriginCity}
	t.Normalize()
	return t
}

// LTLRows returns a header row followed by n data rows for LTLTemplate.
func LTLRows(n int) [][]string {
	rows := [][]string{append([]string{}, LTLHeaders...)}
	for i := 0; i < n; i++ {
		rows = append(rows, []string{
			"Toronto",
			fmt.Sprintf("City %d", i),
			fmt.Sprintf("%d", 100+i*10),
			"12.50",
			"10",
			"50",
		})
	}
	return rows
}

// CSV renders rows as comma-separated text.
func CSV(rows [][]string) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strings.Join(r, ","))
		b.WriteString("\n")
	}
	return b.String()
}
