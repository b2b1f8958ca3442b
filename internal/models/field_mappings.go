package models

// Field names a logical rate field.
type Field string

const (
	FieldOrigin              Field = "origin"
	FieldDestination         Field = "destination"
	FieldOriginCity          Field = "originCity"
	FieldOriginProvince      Field = "originProvince"
	FieldOriginPostal        Field = "originPostal"
	FieldDestinationCity     Field = "destinationCity"
	FieldDestinationProvince Field = "destinationProvince"
	FieldDestinationPostal   Field = "destinationPostal"
	FieldWeightMin           Field = "weightMin"
	FieldWeightMax           Field = "weightMax"
	FieldWeight              Field = "weight"
	FieldSkidCount           Field = "skidCount"
	FieldLinearFeet          Field = "linearFeet"
	FieldCube                Field = "cube"
	FieldPieces              Field = "pieces"
	FieldBaseRate            Field = "baseRate"
	FieldFuelSurcharge       Field = "fuelSurcharge"
	FieldFuelSurchargePct    Field = "fuelSurchargePct"
	FieldMinCharge           Field = "minCharge"
	FieldAccessorials        Field = "accessorials"
	FieldTotalRate           Field = "totalRate"
	FieldServiceLevel        Field = "serviceLevel"
	FieldTransitDays         Field = "transitDays"
	FieldEquipmentType       Field = "equipmentType"
)

// AllFields lists every fixed logical field in declaration order.
var AllFields = []Field{
	FieldOrigin, FieldDestination,
	FieldOriginCity, FieldOriginProvince, FieldOriginPostal,
	FieldDestinationCity, FieldDestinationProvince, FieldDestinationPostal,
	FieldWeightMin, FieldWeightMax, FieldWeight,
	FieldSkidCount, FieldLinearFeet, FieldCube, FieldPieces,
	FieldBaseRate, FieldFuelSurcharge, FieldFuelSurchargePct, FieldMinCharge,
	FieldAccessorials, FieldTotalRate,
	FieldServiceLevel, FieldTransitDays, FieldEquipmentType,
}

// IsKnown reports whether f is one of the fixed logical fields.
func (f Field) IsKnown() bool {
	for _, k := range AllFields {
		if k == f {
			return true
		}
	}
	return false
}

// FieldMappings maps each logical field to a CSV column name, or nil.
type FieldMappings struct {
	Origin              *string `json:"origin" yaml:"origin"`
	Destination         *string `json:"destination" yaml:"destination"`
	OriginCity          *string `json:"originCity" yaml:"originCity"`
	OriginProvince      *string `json:"originProvince" yaml:"originProvince"`
	OriginPostal        *string `json:"originPostal" yaml:"originPostal"`
	DestinationCity     *string `json:"destinationCity" yaml:"destinationCity"`
	DestinationProvince *string `json:"destinationProvince" yaml:"destinationProvince"`
	DestinationPostal   *string `json:"destinationPostal" yaml:"destinationPostal"`
	WeightMin           *string `json:"weightMin" yaml:"weightMin"`
	WeightMax           *string `json:"weightMax" yaml:"weightMax"`
	Weight              *string `json:"weight" yaml:"weight"`
	SkidCount           *string `json:"skidCount" yaml:"skidCount"`
	LinearFeet          *string `json:"linearFeet" yaml:"linearFeet"`
	Cube                *string `json:"cube" yaml:"cube"`
	Pieces              *string `json:"pieces" yaml:"pieces"`
	BaseRate            *string `json:"baseRate" yaml:"baseRate"`
	FuelSurcharge       *string `json:"fuelSurcharge" yaml:"fuelSurcharge"`
	FuelSurchargePct    *string `json:"fuelSurchargePct" yaml:"fuelSurchargePct"`
	MinCharge           *string `json:"minCharge" yaml:"minCharge"`
	Accessorials        *string `json:"accessorials" yaml:"accessorials"`
	TotalRate           *string `json:"totalRate" yaml:"totalRate"`
	ServiceLevel        *string `json:"serviceLevel" yaml:"serviceLevel"`
	TransitDays         *string `json:"transitDays" yaml:"transitDays"`
	EquipmentType       *string `json:"equipmentType" yaml:"equipmentType"`

	CustomFields map[string]string `json:"customFields,omitempty" yaml:"customFields,omitempty"`
}

// MappedField is a resolved (field, column) pair.
type MappedField struct {
	Field  Field
	Column string
}

func (m *FieldMappings) slot(f Field) **string {
	switch f {
	case FieldOrigin:
		return &m.Origin
	case FieldDestination:
		return &m.Destination
	case FieldOriginCity:
		return &m.OriginCity
	case FieldOriginProvince:
		return &m.OriginProvince
	case FieldOriginPostal:
		return &m.OriginPostal
	case FieldDestinationCity:
		return &m.DestinationCity
	case FieldDestinationProvince:
		return &m.DestinationProvince
	case FieldDestinationPostal:
		return &m.DestinationPostal
	case FieldWeightMin:
		return &m.WeightMin
	case FieldWeightMax:
		return &m.WeightMax
	case FieldWeight:
		return &m.Weight
	case FieldSkidCount:
		return &m.SkidCount
	case FieldLinearFeet:
		return &m.LinearFeet
	case FieldCube:
		return &m.Cube
	case FieldPieces:
		return &m.Pieces
	case FieldBaseRate:
		return &m.BaseRate
	case FieldFuelSurcharge:
		return &m.FuelSurcharge
	case FieldFuelSurchargePct:
		return &m.FuelSurchargePct
	case FieldMinCharge:
		return &m.MinCharge
	case FieldAccessorials:
		return &m.Accessorials
	case FieldTotalRate:
		return &m.TotalRate
	case FieldServiceLevel:
		return &m.ServiceLevel
	case FieldTransitDays:
		return &m.TransitDays
	case FieldEquipmentType:
		return &m.EquipmentType
	}
	return nil
}

// Column returns the column mapped to f and whether it is mapped.
func (m *FieldMappings) Column(f Field) (string, bool) {
	p := m.slot(f)
	if p == nil || *p == nil {
		return "", false
	}
	return **p, true
}

// Set maps f to column. Unknown fields are ignored.
func (m *FieldMappings) Set(f Field, column string) {
	if p := m.slot(f); p != nil {
		c := column
		*p = &c
	}
}

// Clear unmaps f.
func (m *FieldMappings) Clear(f Field) {
	if p := m.slot(f); p != nil {
		*p = nil
	}
}

// Mapped returns every non-null fixed mapping in AllFields order.
func (m *FieldMappings) Mapped() []MappedField {
	var out []MappedField
	for _, f := range AllFields {
		if col, ok := m.Column(f); ok {
			out = append(out, MappedField{Field: f, Column: col})
		}
	}
	return out
}

// Count returns the number of non-null fixed mappings.
func (m *FieldMappings) Count() int {
	return len(m.Mapped())
}
