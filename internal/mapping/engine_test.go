package mapping

import (
	"testing"

	"github.com/carrier-rates/backend/internal/models"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Origin City", "origincity"},
		{"  ORIGIN_city ", "origincity"},
		{"Fuel %", "fuel"},
		{"Wt. (lbs) 100-499", "wtlbs100499"},
		{"", ""},
		{"***", ""},
		{"Prov/État", "provtat"},
	}

	for _, tt := range tests {
		if got := NormalizeHeader(tt.in); got != tt.want {
			t.Errorf("NormalizeHeader(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestEngineMapSingleHeaders(t *testing.T) {
	e := NewDefaultEngine()

	tests := []struct {
		header string
		want   models.Field
	}{
		{"Origin City", models.FieldOriginCity},
		{"From State", models.FieldOriginProvince},
		{"Origin Postal", models.FieldOriginPostal},
		{"Origin", models.FieldOrigin},
		{"Destination City", models.FieldDestinationCity},
		{"Dest Province", models.FieldDestinationProvince},
		{"Dest Zip", models.FieldDestinationPostal},
		{"Destination", models.FieldDestination},
		{"Weight Min", models.FieldWeightMin},
		{"Max Weight", models.FieldWeightMax},
		{"Weight", models.FieldWeight},
		{"Base Rate", models.FieldBaseRate},
		{"Linehaul Cost", models.FieldBaseRate},
		{"Min Rate", models.FieldMinCharge},
		{"Total Rate", models.FieldTotalRate},
		{"Price", models.FieldBaseRate},
		{"Fuel %", models.FieldFuelSurchargePct},
		{"Fuel Pct", models.FieldFuelSurchargePct},
		{"Fuel Surcharge", models.FieldFuelSurcharge},
		{"Service Level", models.FieldServiceLevel},
		{"Transit Days", models.FieldTransitDays},
		{"Skids", models.FieldSkidCount},
		{"Pallet Count", models.FieldSkidCount},
		{"Linear Feet", models.FieldLinearFeet},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			m := e.Map([]string{tt.header})
			col, ok := m.Column(tt.want)
			if !ok {
				t.Fatalf("expected %s to be mapped, got %+v", tt.want, m.Mapped())
			}
			if col != tt.header {
				t.Errorf("expected column %q, got %q", tt.header, col)
			}
		})
	}
}

func TestEngineMapOriginCityNeverPlainOrigin(t *testing.T) {
	e := NewDefaultEngine()
	variants := []string{
		"origin city",
		"ORIGIN-CITY",
		"Origin_City (name)",
		"city of origin",
		"Ship Origin City",
		"ORIGINCITY",
	}

	for _, h := range variants {
		m := e.Map([]string{h})
		if col, ok := m.Column(models.FieldOriginCity); !ok || col != h {
			t.Errorf("%q: expected originCity mapping, got %+v", h, m.Mapped())
		}
		if _, ok := m.Column(models.FieldOrigin); ok {
			t.Errorf("%q: plain origin should not be mapped", h)
		}
	}
}

func TestEngineMapTotalIsNotDestination(t *testing.T) {
	m := NewDefaultEngine().Map([]string{"Destination", "Total Rate", "Total"})

	if col, _ := m.Column(models.FieldDestination); col != "Destination" {
		t.Errorf("expected destination to stay on Destination, got %q", col)
	}
	if col, _ := m.Column(models.FieldTotalRate); col != "Total Rate" {
		t.Errorf("expected totalRate on Total Rate, got %q", col)
	}
}

func TestEngineMapLastMatchWins(t *testing.T) {
	m := NewDefaultEngine().Map([]string{"Rate", "Base Rate"})
	if col, _ := m.Column(models.FieldBaseRate); col != "Base Rate" {
		t.Errorf("expected the later header to win, got %q", col)
	}
}

func TestEngineMapSkipsBlankHeaders(t *testing.T) {
	m := NewDefaultEngine().Map([]string{"", "   ", "Origin"})
	if m.Count() != 1 {
		t.Errorf("expected 1 mapped field, got %d", m.Count())
	}
}

func TestSuggestBaseUnit(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    models.BaseUnit
	}{
		{"skid wins", []string{"Origin", "Skids", "Linear Feet", "Weight", "Rate"}, models.BaseUnitSkid},
		{"linear feet", []string{"Origin", "Linear Feet", "Weight", "Rate"}, models.BaseUnitLF},
		{"weight", []string{"Origin", "Min Weight", "Rate"}, models.BaseUnitWeight},
		{"default", []string{"Origin", "Rate"}, models.BaseUnitWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDefaultEngine().Suggest(tt.headers, nil)
			if s.RateCalculationRules.BaseUnit != tt.want {
				t.Errorf("expected base unit %s, got %s", tt.want, s.RateCalculationRules.BaseUnit)
			}
		})
	}
}

func TestSuggestSkeleton(t *testing.T) {
	headers := []string{"Origin City", "Destination", "Rate", "Weight"}
	s := NewDefaultEngine().Suggest(headers, []string{"Toronto", "Montreal"})

	if s.RateCalculationRules.CalculationType != models.CalculationPerUnit {
		t.Errorf("expected per_unit without a total column, got %s", s.RateCalculationRules.CalculationType)
	}
	if len(s.CSVStructure.ExpectedColumns) != 4 {
		t.Errorf("expected 4 expected columns, got %d", len(s.CSVStructure.ExpectedColumns))
	}
	wantRequired := []string{"Origin City", "Destination", "Rate"}
	if len(s.CSVStructure.RequiredColumns) != len(wantRequired) {
		t.Fatalf("expected required %v, got %v", wantRequired, s.CSVStructure.RequiredColumns)
	}
	for i, c := range wantRequired {
		if s.CSVStructure.RequiredColumns[i] != c {
			t.Errorf("required[%d]: expected %q, got %q", i, c, s.CSVStructure.RequiredColumns[i])
		}
	}
	if len(s.SampleData) != 1 || len(s.SampleData[0]) != 4 {
		t.Fatalf("expected one padded sample row, got %v", s.SampleData)
	}
	if s.SampleData[0][0] != "Toronto" || s.SampleData[0][3] != "" {
		t.Errorf("unexpected sample row %v", s.SampleData[0])
	}
	if len(s.ValidationRules.NumericFields) != 2 {
		t.Errorf("expected weight and baseRate numeric, got %v", s.ValidationRules.NumericFields)
	}

	explicit := NewDefaultEngine().Suggest([]string{"Origin", "Destination", "Total Rate"}, nil)
	if explicit.RateCalculationRules.CalculationType != models.CalculationExplicit {
		t.Errorf("expected explicit with a total column, got %s", explicit.RateCalculationRules.CalculationType)
	}
	if explicit.SampleData != nil {
		t.Errorf("expected no sample data, got %v", explicit.SampleData)
	}
}
