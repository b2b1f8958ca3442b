package models

import "strings"

const (
	DefaultDelimiter = ","
	DefaultEncoding  = "utf-8"

	// MaxSampleRows is how many example rows a template retains.
	MaxSampleRows = 10
)

// DefaultCSVStructure returns the structure assumed for a plain comma file
// with one header row.
func DefaultCSVStructure() CSVStructure {
	hasHeaders := true
	return CSVStructure{
		HasHeaders:      &hasHeaders,
		HeaderRowIndex:  0,
		DataStartRow:    1,
		Delimiter:       DefaultDelimiter,
		Encoding:        DefaultEncoding,
		ExpectedColumns: []string{},
		RequiredColumns: []string{},
	}
}

// DefaultRateCalculationRules returns the rules applied when a template
// leaves them unset.
func DefaultRateCalculationRules() RateCalculationRules {
	return RateCalculationRules{
		CalculationType: CalculationExplicit,
		BaseUnit:        BaseUnitWeight,
		UnitMultiplier:  1,
		WeightCalculation: WeightCalculation{
			Method:            WeightPer100Lbs,
			RoundingRule:      RoundingNone,
			RoundingIncrement: 1,
		},
		FuelSurcharge: FuelSurchargePolicy{
			Type:    "percentage",
			ApplyTo: FuelOnBaseRate,
		},
		MinimumCharge: MinimumChargePolicy{
			ApplyGlobally: false,
			Field:         FieldMinCharge,
		},
	}
}

// DefaultValidationRules returns empty, non-nil rule lists.
func DefaultValidationRules() ValidationRules {
	return ValidationRules{
		RequiredFields: []Field{},
		NumericFields:  []Field{},
	}
}

// Normalize fills every unset setting with its default. It is applied once
// when a template is created or loaded so readers never re-derive fallbacks.
func (t *CarrierRateTemplate) Normalize() {
	def := DefaultCSVStructure()
	s := &t.CSVStructure
	if s.HasHeaders == nil {
		s.HasHeaders = def.HasHeaders
	}
	if s.HeaderRowIndex < 0 {
		s.HeaderRowIndex = 0
	}
	if s.HeaderRow() && s.DataStartRow <= s.HeaderRowIndex {
		s.DataStartRow = s.HeaderRowIndex + 1
	}
	if s.DataStartRow < 0 {
		s.DataStartRow = 0
	}
	if s.Delimiter == "" {
		s.Delimiter = def.Delimiter
	}
	if s.Encoding == "" {
		s.Encoding = def.Encoding
	}
	s.Encoding = strings.ToLower(s.Encoding)
	if s.ExpectedColumns == nil {
		s.ExpectedColumns = []string{}
	}
	if s.RequiredColumns == nil {
		s.RequiredColumns = []string{}
	}

	defRules := DefaultRateCalculationRules()
	r := &t.RateCalculationRules
	if r.CalculationType == "" {
		r.CalculationType = defRules.CalculationType
	}
	if r.BaseUnit == "" {
		r.BaseUnit = defRules.BaseUnit
	}
	if r.UnitMultiplier == 0 {
		r.UnitMultiplier = defRules.UnitMultiplier
	}
	w := &r.WeightCalculation
	if w.Method == "" {
		w.Method = defRules.WeightCalculation.Method
	}
	if w.RoundingRule == "" {
		w.RoundingRule = defRules.WeightCalculation.RoundingRule
	}
	if w.RoundingIncrement <= 0 {
		w.RoundingIncrement = defRules.WeightCalculation.RoundingIncrement
	}
	if r.FuelSurcharge.Type == "" {
		r.FuelSurcharge.Type = defRules.FuelSurcharge.Type
	}
	if r.FuelSurcharge.ApplyTo == "" {
		r.FuelSurcharge.ApplyTo = defRules.FuelSurcharge.ApplyTo
	}
	if r.MinimumCharge.Field == "" {
		r.MinimumCharge.Field = defRules.MinimumCharge.Field
	}

	v := &t.ValidationRules
	if v.RequiredFields == nil {
		v.RequiredFields = []Field{}
	}
	if v.NumericFields == nil {
		v.NumericFields = []Field{}
	}

	if len(t.SampleData) > MaxSampleRows {
		t.SampleData = t.SampleData[:MaxSampleRows]
	}
	if t.Version < 1 {
		t.Version = 1
	}
}
