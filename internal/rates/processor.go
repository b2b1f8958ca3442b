package rates

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carrier-rates/backend/internal/models"
)

// ErrRowCoercion is wrapped by every RowError caused by a bad cell value.
var ErrRowCoercion = errors.New("cell cannot be coerced")

// RowError reports why a single data row was skipped.
type RowError struct {
	Row    int
	Field  models.Field
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: field %s (column %q, value %q): %v", e.Row, e.Field, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// rowReader resolves mapped cells by the template's remembered column order.
type rowReader struct {
	row       []string
	structure *models.CSVStructure
	mappings  *models.FieldMappings
	rowNumber int
}

func (r *rowReader) cell(column string) (string, bool) {
	idx := r.structure.ColumnIndex(column)
	if idx < 0 || idx >= len(r.row) {
		return "", false
	}
	return r.row[idx], true
}

func (r *rowReader) text(f models.Field) *string {
	col, ok := r.mappings.Column(f)
	if !ok {
		return nil
	}
	v, ok := r.cell(col)
	if !ok || isBlank(v) {
		return nil
	}
	return &v
}

// float returns nil for an unmapped, absent or blank cell and a RowError for
// a cell that holds something other than a number.
func (r *rowReader) float(f models.Field) (*float64, error) {
	col, ok := r.mappings.Column(f)
	if !ok {
		return nil, nil
	}
	v, ok := r.cell(col)
	if !ok || isBlank(v) {
		return nil, nil
	}
	n, err := ParseNumber(v)
	if err != nil {
		return nil, &RowError{
			Row:    r.rowNumber,
			Field:  f,
			Column: col,
			Value:  v,
			Err:    fmt.Errorf("%w: %v", ErrRowCoercion, err),
		}
	}
	return &n, nil
}

func (r *rowReader) integer(f models.Field) *int {
	col, ok := r.mappings.Column(f)
	if !ok {
		return nil
	}
	v, ok := r.cell(col)
	if !ok {
		return nil
	}
	n, ok := parseInt(v)
	if !ok {
		return nil
	}
	return &n
}

// ProcessRow converts one data row into a rate record. rowNumber is 1-based
// within the data region. The template is expected to be normalized.
func ProcessRow(row []string, t *models.CarrierRateTemplate, rowNumber int) (models.RateRecord, error) {
	r := &rowReader{
		row:       row,
		structure: &t.CSVStructure,
		mappings:  &t.FieldMappings,
		rowNumber: rowNumber,
	}
	rules := &t.RateCalculationRules

	rec := models.RateRecord{
		RowNumber:           rowNumber,
		Origin:              r.text(models.FieldOrigin),
		Destination:         r.text(models.FieldDestination),
		OriginCity:          r.text(models.FieldOriginCity),
		OriginProvince:      r.text(models.FieldOriginProvince),
		OriginPostal:        r.text(models.FieldOriginPostal),
		DestinationCity:     r.text(models.FieldDestinationCity),
		DestinationProvince: r.text(models.FieldDestinationProvince),
		DestinationPostal:   r.text(models.FieldDestinationPostal),
		SkidCount:           r.integer(models.FieldSkidCount),
		Pieces:              r.integer(models.FieldPieces),
		TransitDays:         r.integer(models.FieldTransitDays),
		ServiceLevel:        r.text(models.FieldServiceLevel),
		EquipmentType:       r.text(models.FieldEquipmentType),
		CalculationType:     rules.CalculationType,
		BaseUnit:            rules.BaseUnit,
	}

	floats := []struct {
		field models.Field
		dst   **float64
	}{
		{models.FieldWeightMax, &rec.WeightMax},
		{models.FieldWeight, &rec.Weight},
		{models.FieldLinearFeet, &rec.LinearFeet},
		{models.FieldCube, &rec.Cube},
		{models.FieldFuelSurcharge, &rec.FuelSurcharge},
		{models.FieldFuelSurchargePct, &rec.FuelSurchargePct},
		{models.FieldMinCharge, &rec.MinCharge},
		{models.FieldAccessorials, &rec.Accessorials},
		{models.FieldTotalRate, &rec.TotalRate},
	}
	for _, f := range floats {
		v, err := r.float(f.field)
		if err != nil {
			return models.RateRecord{}, err
		}
		*f.dst = v
	}

	weightMin, err := r.float(models.FieldWeightMin)
	if err != nil {
		return models.RateRecord{}, err
	}
	if weightMin != nil {
		rec.WeightMin = *weightMin
	}
	baseRate, err := r.float(models.FieldBaseRate)
	if err != nil {
		return models.RateRecord{}, err
	}
	if baseRate != nil {
		rec.BaseRate = *baseRate
	}

	if len(t.FieldMappings.CustomFields) > 0 {
		rec.Custom = make(map[string]string, len(t.FieldMappings.CustomFields))
		for name, col := range t.FieldMappings.CustomFields {
			if v, ok := r.cell(col); ok {
				rec.Custom[name] = v
			}
		}
	}

	if rules.CalculationType == models.CalculationPerUnit && rec.TotalRate == nil {
		total := perUnitTotal(&rec, rules)
		rec.TotalRate = &total
	}
	applyFuel(&rec, &rules.FuelSurcharge)
	applyMinimum(&rec, &rules.MinimumCharge)

	return rec, nil
}

func perUnitTotal(rec *models.RateRecord, rules *models.RateCalculationRules) float64 {
	base := decimal.NewFromFloat(rec.BaseRate)
	var total decimal.Decimal

	switch rules.BaseUnit {
	case models.BaseUnitWeight:
		// A zero weight falls back to the bracket minimum.
		qty := rec.WeightMin
		if rec.Weight != nil && *rec.Weight != 0 {
			qty = *rec.Weight
		}
		wc := rules.WeightCalculation
		qty = RoundQuantity(qty, wc.RoundingRule, wc.RoundingIncrement)

		switch wc.Method {
		case models.WeightPer100Lbs:
			total = decimal.NewFromFloat(qty).Div(decimal.NewFromInt(100)).Mul(base)
		case models.WeightPerLb:
			total = decimal.NewFromFloat(qty).Mul(base)
		default:
			total = base
		}
	case models.BaseUnitSkid:
		count := int64(1)
		if rec.SkidCount != nil && *rec.SkidCount != 0 {
			count = int64(*rec.SkidCount)
		}
		total = decimal.NewFromInt(count).Mul(base)
	case models.BaseUnitLF:
		feet := decimal.NewFromInt(1)
		if rec.LinearFeet != nil && *rec.LinearFeet != 0 {
			feet = decimal.NewFromFloat(*rec.LinearFeet)
		}
		total = feet.Mul(base)
	default:
		total = base
	}

	if m := rules.UnitMultiplier; m != 0 && m != 1 {
		total = total.Mul(decimal.NewFromFloat(m))
	}
	return total.InexactFloat64()
}

// applyFuel derives the fuel amount from a percentage. A percentage policy
// with a positive default supplies the percentage when the row has none.
func applyFuel(rec *models.RateRecord, policy *models.FuelSurchargePolicy) {
	if rec.FuelSurcharge != nil {
		return
	}
	if rec.FuelSurchargePct == nil && policy.Type == "percentage" && policy.DefaultValue > 0 {
		pct := policy.DefaultValue
		rec.FuelSurchargePct = &pct
	}
	if rec.FuelSurchargePct == nil {
		return
	}

	base := rec.BaseRate
	if policy.ApplyTo == models.FuelOnTotalRate && rec.TotalRate != nil {
		base = *rec.TotalRate
	}
	fuel := decimal.NewFromFloat(base).
		Mul(decimal.NewFromFloat(*rec.FuelSurchargePct)).
		Div(decimal.NewFromInt(100)).
		InexactFloat64()
	rec.FuelSurcharge = &fuel
}

func applyMinimum(rec *models.RateRecord, policy *models.MinimumChargePolicy) {
	minimum := rateField(rec, policy.Field)
	if minimum == nil && policy.ApplyGlobally && policy.DefaultValue > 0 {
		v := policy.DefaultValue
		minimum = &v
	}
	if minimum == nil {
		return
	}
	// A row without a total is charged the minimum.
	if rec.TotalRate == nil || *rec.TotalRate < *minimum {
		floor := *minimum
		rec.TotalRate = &floor
		rec.MinimumApplied = true
	}
}

// rateField returns the value of a charge field by name. Fields that are
// not charges return nil.
func rateField(rec *models.RateRecord, f models.Field) *float64 {
	switch f {
	case models.FieldMinCharge:
		return rec.MinCharge
	case models.FieldBaseRate:
		v := rec.BaseRate
		return &v
	case models.FieldAccessorials:
		return rec.Accessorials
	case models.FieldFuelSurcharge:
		return rec.FuelSurcharge
	}
	return nil
}
