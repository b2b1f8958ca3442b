// Package models contains domain types for the carrier rate import engine.
package models

import "time"

// CalculationType selects whether totalRate is read from the file or derived.
type CalculationType string

const (
	CalculationExplicit CalculationType = "explicit"
	CalculationPerUnit  CalculationType = "per_unit"
)

// BaseUnit is the quantity a per-unit rate is multiplied by.
type BaseUnit string

const (
	BaseUnitWeight BaseUnit = "weight"
	BaseUnitSkid   BaseUnit = "skid"
	BaseUnitLF     BaseUnit = "lf"
	BaseUnitCube   BaseUnit = "cube"
)

// WeightMethod is how a weight-based base rate is applied.
type WeightMethod string

const (
	WeightPerLb     WeightMethod = "per_lb"
	WeightPer100Lbs WeightMethod = "per_100lbs"
	WeightFlatRate  WeightMethod = "flat_rate"
)

// RoundingRule controls rounding of the weight quantity before rating.
type RoundingRule string

const (
	RoundingNone    RoundingRule = "none"
	RoundingUp      RoundingRule = "up"
	RoundingDown    RoundingRule = "down"
	RoundingNearest RoundingRule = "nearest"
)

// FuelApplyTo is the amount a fuel percentage is applied against.
type FuelApplyTo string

const (
	FuelOnBaseRate  FuelApplyTo = "base_rate"
	FuelOnTotalRate FuelApplyTo = "total_rate"
)

// CarrierRateTemplate describes one carrier CSV format and how to rate it.
type CarrierRateTemplate struct {
	ID          string `json:"id" yaml:"id"`
	CarrierID   string `json:"carrierId" yaml:"carrierId"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Version     int    `json:"version" yaml:"version"`

	CSVStructure         CSVStructure         `json:"csvStructure" yaml:"csvStructure"`
	FieldMappings        FieldMappings        `json:"fieldMappings" yaml:"fieldMappings"`
	RateCalculationRules RateCalculationRules `json:"rateCalculationRules" yaml:"rateCalculationRules"`
	ValidationRules      ValidationRules      `json:"validationRules" yaml:"validationRules"`
	SampleData           [][]string           `json:"sampleData,omitempty" yaml:"sampleData,omitempty"`
	Usage                TemplateUsage        `json:"usage" yaml:"-"`

	CreatedAt time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`
	CreatedBy string    `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
}

// CSVStructure is the remembered shape of the carrier file.
type CSVStructure struct {
	HasHeaders      *bool    `json:"hasHeaders,omitempty" yaml:"hasHeaders,omitempty"`
	HeaderRowIndex  int      `json:"headerRowIndex" yaml:"headerRowIndex"`
	DataStartRow    int      `json:"dataStartRow" yaml:"dataStartRow"`
	Delimiter       string   `json:"delimiter" yaml:"delimiter"`
	Encoding        string   `json:"encoding" yaml:"encoding"`
	ExpectedColumns []string `json:"expectedColumns" yaml:"expectedColumns"`
	RequiredColumns []string `json:"requiredColumns" yaml:"requiredColumns"`
}

// HeaderRow reports whether the file carries a header row. Unset means true.
func (s CSVStructure) HeaderRow() bool {
	return s.HasHeaders == nil || *s.HasHeaders
}

// ColumnIndex returns the position of column in ExpectedColumns, or -1.
func (s CSVStructure) ColumnIndex(column string) int {
	for i, c := range s.ExpectedColumns {
		if c == column {
			return i
		}
	}
	return -1
}

// RateCalculationRules holds the per-unit formula and surcharge policies.
type RateCalculationRules struct {
	CalculationType   CalculationType     `json:"calculationType" yaml:"calculationType"`
	BaseUnit          BaseUnit            `json:"baseUnit" yaml:"baseUnit"`
	UnitMultiplier    float64             `json:"unitMultiplier" yaml:"unitMultiplier"`
	WeightCalculation WeightCalculation   `json:"weightCalculation" yaml:"weightCalculation"`
	FuelSurcharge     FuelSurchargePolicy `json:"fuelSurcharge" yaml:"fuelSurcharge"`
	MinimumCharge     MinimumChargePolicy `json:"minimumCharge" yaml:"minimumCharge"`
	// CustomFormulas are stored verbatim and not interpreted.
	CustomFormulas []map[string]any `json:"customFormulas,omitempty" yaml:"customFormulas,omitempty"`
}

type WeightCalculation struct {
	Method            WeightMethod `json:"method" yaml:"method"`
	RoundingRule      RoundingRule `json:"roundingRule" yaml:"roundingRule"`
	RoundingIncrement float64      `json:"roundingIncrement" yaml:"roundingIncrement"`
}

type FuelSurchargePolicy struct {
	Type         string      `json:"type" yaml:"type"`
	ApplyTo      FuelApplyTo `json:"applyTo" yaml:"applyTo"`
	DefaultValue float64     `json:"defaultValue" yaml:"defaultValue"`
}

type MinimumChargePolicy struct {
	ApplyGlobally bool    `json:"applyGlobally" yaml:"applyGlobally"`
	Field         Field   `json:"field" yaml:"field"`
	DefaultValue  float64 `json:"defaultValue" yaml:"defaultValue"`
}

// ValidationRules are soft checks run against a data sample.
type ValidationRules struct {
	RequiredFields []Field                `json:"requiredFields" yaml:"requiredFields"`
	NumericFields  []Field                `json:"numericFields" yaml:"numericFields"`
	Ranges         map[Field]NumericRange `json:"ranges,omitempty" yaml:"ranges,omitempty"`
	Custom         []map[string]any       `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// NumericRange bounds a numeric field; nil ends are open.
type NumericRange struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// TemplateUsage is maintained by the store's increment operation.
type TemplateUsage struct {
	ImportCount int        `json:"importCount"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
	SuccessRate float64    `json:"successRate"`
}
