package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carrier-rates/backend/internal/models"
	"github.com/carrier-rates/backend/internal/testutil"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *testutil.MockStore, *testutil.MockPublisher) {
	t.Helper()
	store := testutil.NewMockStore()
	pub := &testutil.MockPublisher{}
	svc := NewService(store,
		WithPublisher(pub),
		WithClock(func() time.Time { return fixedNow }),
	)
	return svc, store, pub
}

func TestSuggestMapping(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		tmpl := testutil.LTLTemplate()
		tmpl.ID = ""
		store.SeedTemplate(tmpl)
	}

	res, err := svc.SuggestMapping(ctx, testutil.LTLHeaders, []string{"Toronto", "Ottawa", "500", "12", "10", "50"}, "acme")
	require.NoError(t, err)

	col, ok := res.Suggestions.FieldMappings.Column(models.FieldOriginCity)
	assert.True(t, ok)
	assert.Equal(t, "Origin City", col)
	assert.Len(t, res.ExistingTemplates, 5)
	assert.Equal(t, 5, store.LastListLimit)
	assert.Equal(t, 5, res.Confidence.ExistingCount)
	assert.Equal(t, 20.0, res.Confidence.ExistingPenalty)
	assert.Equal(t, 30.0, res.Confidence.EssentialBonus)
}

func TestSuggestMappingWithoutCarrier(t *testing.T) {
	svc, store, _ := newTestService(t)

	res, err := svc.SuggestMapping(context.Background(), []string{"From", "To", "Rate"}, nil, "")
	require.NoError(t, err)
	assert.Empty(t, res.ExistingTemplates)
	assert.Zero(t, store.ListTemplatesCalls)

	_, err = svc.SuggestMapping(context.Background(), nil, nil, "acme")
	assert.True(t, errors.Is(err, ErrNoHeaders))
}

func TestValidateImportTemplateNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ValidateImport(context.Background(), "missing", testutil.LTLRows(1))
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
	var vErr *ValidationError
	assert.False(t, errors.As(err, &vErr))
}

func TestValidateImport(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.SeedTemplate(testutil.LTLTemplate())

	res, err := svc.ValidateImport(context.Background(), "tmpl-ltl", testutil.LTLRows(3))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	rows := testutil.LTLRows(3)
	rows[0][3] = "Linehaul"
	res, err = svc.ValidateImport(context.Background(), "tmpl-ltl", rows)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)
}

func TestPreviewImport(t *testing.T) {
	svc, store, pub := newTestService(t)
	store.SeedTemplate(testutil.LTLTemplate())

	res, err := svc.PreviewImport(context.Background(), "tmpl-ltl", testutil.LTLRows(20))
	require.NoError(t, err)
	assert.True(t, res.Validation.Valid)
	require.Len(t, res.Records, 5)
	assert.Equal(t, 20, res.TotalRows)

	first := res.Records[0]
	assert.Equal(t, 1, first.RowNumber)
	// 100 lbs at 12.50 per 100 lbs, floored to the 50 minimum.
	assert.Equal(t, 50.0, *first.TotalRate)
	assert.True(t, first.MinimumApplied)
	assert.InDelta(t, 1.25, *first.FuelSurcharge, 1e-9)

	assert.Zero(t, store.CreateRateCardCalls)
	assert.Empty(t, pub.Published())
}

func TestPreviewImportInvalid(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.SeedTemplate(testutil.LTLTemplate())

	res, err := svc.PreviewImport(context.Background(), "tmpl-ltl", testutil.LTLRows(0))
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.False(t, res.Validation.Valid)
	assert.Empty(t, res.Records)
	assert.Equal(t, []string{"CSV file has no data rows"}, vErr.Result.Errors)
}

func TestCommitImport(t *testing.T) {
	svc, store, pub := newTestService(t)
	store.SeedTemplate(testutil.LTLTemplate())
	ctx := context.Background()

	res, err := svc.CommitImport(ctx, "tmpl-ltl", testutil.LTLRows(10), CommitOptions{Name: "June", CreatedBy: "ops"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RateCardID)
	assert.Equal(t, 10, res.ProcessedCount)
	assert.Zero(t, res.SkippedCount)

	card, err := svc.GetRateCard(ctx, res.RateCardID)
	require.NoError(t, err)
	assert.Equal(t, "tmpl-ltl", card.TemplateID)
	assert.Equal(t, 1, card.TemplateVersion)
	assert.Equal(t, "acme", card.CarrierID)
	assert.Equal(t, "June", card.Name)
	assert.Equal(t, "ops", card.CreatedBy)
	assert.Len(t, card.Records, 10)
	assert.True(t, fixedNow.Equal(card.CreatedAt))

	tmpl, err := svc.GetTemplate(ctx, "tmpl-ltl")
	require.NoError(t, err)
	assert.Equal(t, 1, tmpl.Usage.ImportCount)
	require.NotNil(t, tmpl.Usage.LastUsedAt)
	assert.True(t, fixedNow.Equal(*tmpl.Usage.LastUsedAt))

	events := pub.Published()
	require.Len(t, events, 1)
	assert.Equal(t, res.RateCardID, events[0].RateCardID)
	assert.Equal(t, 10, events[0].ProcessedCount)
}

func TestCommitImportTwiceIncrementsUsage(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.SeedTemplate(testutil.LTLTemplate())
	ctx := context.Background()
	rows := testutil.LTLRows(100)

	first, err := svc.CommitImport(ctx, "tmpl-ltl", rows, CommitOptions{})
	require.NoError(t, err)
	second, err := svc.CommitImport(ctx, "tmpl-ltl", rows, CommitOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, first.RateCardID, second.RateCardID)
	assert.Equal(t, 100, first.ProcessedCount)
	assert.Equal(t, 100, second.ProcessedCount)

	tmpl, err := svc.GetTemplate(ctx, "tmpl-ltl")
	require.NoError(t, err)
	assert.Equal(t, 2, tmpl.Usage.ImportCount)

	cards, err := svc.ListRateCards(ctx, "tmpl-ltl", 0)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestCommitImportSkipsBadRows(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.SeedTemplate(testutil.LTLTemplate())
	ctx := context.Background()

	rows := testutil.LTLRows(20)
	rows[15][2] = "heavy"

	res, err := svc.CommitImport(ctx, "tmpl-ltl", rows, CommitOptions{})
	require.NoError(t, err)
	assert.Equal(t, 19, res.ProcessedCount)
	assert.Equal(t, 1, res.SkippedCount)

	card, err := svc.GetRateCard(ctx, res.RateCardID)
	require.NoError(t, err)
	assert.Equal(t, 1, card.SkippedCount)
	for _, rec := range card.Records {
		assert.NotEqual(t, 15, rec.RowNumber)
	}
}

func TestCommitImportInvalidProcessesNothing(t *testing.T) {
	svc, store, pub := newTestService(t)
	store.SeedTemplate(testutil.LTLTemplate())

	rows := testutil.LTLRows(5)
	rows[0][0] = "From"
	res, err := svc.CommitImport(context.Background(), "tmpl-ltl", rows, CommitOptions{})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.False(t, res.Validation.Valid)
	assert.Zero(t, res.ProcessedCount)
	assert.Zero(t, store.CreateRateCardCalls)
	assert.Empty(t, pub.Published())
}

func TestCommitImportMappingOutsideExpectedColumns(t *testing.T) {
	svc, store, pub := newTestService(t)
	tmpl := testutil.LTLTemplate()
	tmpl.CSVStructure.ExpectedColumns = []string{"Origin City", "Destination City", "Weight"}
	store.SeedTemplate(tmpl)
	ctx := context.Background()

	res, err := svc.CommitImport(ctx, "tmpl-ltl", testutil.LTLRows(3), CommitOptions{})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Result.Errors,
		`Mapped column "Base Rate" for field baseRate is not in the template's expected columns`)
	assert.Zero(t, res.ProcessedCount)
	assert.Zero(t, store.CreateRateCardCalls)
	assert.Empty(t, pub.Published())

	got, err := svc.GetTemplate(ctx, "tmpl-ltl")
	require.NoError(t, err)
	assert.Zero(t, got.Usage.ImportCount)
}

func TestCommitImportAllRowsSkipped(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.SeedTemplate(testutil.LTLTemplate())

	rows := testutil.LTLRows(3)
	for _, r := range rows[1:] {
		r[3] = "n/a"
	}
	res, err := svc.CommitImport(context.Background(), "tmpl-ltl", rows, CommitOptions{})
	assert.True(t, errors.Is(err, ErrNoValidRows))
	assert.Equal(t, 3, res.SkippedCount)
	assert.Zero(t, store.CreateRateCardCalls)
}

func TestCommitImportStoreFailure(t *testing.T) {
	svc, store, pub := newTestService(t)
	store.SeedTemplate(testutil.LTLTemplate())
	store.CreateRateCardErr = errors.New("disk full")
	ctx := context.Background()

	_, err := svc.CommitImport(ctx, "tmpl-ltl", testutil.LTLRows(3), CommitOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, pub.Published())

	tmpl, err := svc.GetTemplate(ctx, "tmpl-ltl")
	require.NoError(t, err)
	assert.Zero(t, tmpl.Usage.ImportCount)
}

func TestCommitImportPublishFailureKeepsCommit(t *testing.T) {
	svc, store, pub := newTestService(t)
	store.SeedTemplate(testutil.LTLTemplate())
	pub.Err = errors.New("broker down")

	res, err := svc.CommitImport(context.Background(), "tmpl-ltl", testutil.LTLRows(3), CommitOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RateCardID)
}

func TestCreateTemplate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in := &models.CarrierRateTemplate{
		CarrierID:  "acme",
		Name:       "Acme skids",
		Version:    7,
		Usage:      models.TemplateUsage{ImportCount: 99},
		SampleData: make([][]string, 25),
	}
	in.RateCalculationRules.BaseUnit = models.BaseUnitSkid

	out, err := svc.CreateTemplate(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, 1, out.Version)
	assert.Zero(t, out.Usage.ImportCount)
	assert.Len(t, out.SampleData, models.MaxSampleRows)
	assert.True(t, fixedNow.Equal(out.CreatedAt))
	assert.Equal(t, models.CalculationExplicit, out.RateCalculationRules.CalculationType)
	assert.Equal(t, models.BaseUnitSkid, out.RateCalculationRules.BaseUnit)
	assert.Equal(t, models.WeightPer100Lbs, out.RateCalculationRules.WeightCalculation.Method)
	assert.Equal(t, ",", out.CSVStructure.Delimiter)

	got, err := svc.GetTemplate(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme skids", got.Name)
}

func TestCreateTemplateRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CarrierRateTemplate)
		want   string
	}{
		{"missing carrier", func(t *models.CarrierRateTemplate) { t.CarrierID = "" }, "carrierId is required"},
		{"missing name", func(t *models.CarrierRateTemplate) { t.Name = " " }, "name is required"},
		{"bad base unit", func(t *models.CarrierRateTemplate) { t.RateCalculationRules.BaseUnit = "pallet" }, "unknown baseUnit"},
		{"bad delimiter", func(t *models.CarrierRateTemplate) { t.CSVStructure.Delimiter = ";;" }, "single character"},
		{"bad validation field", func(t *models.CarrierRateTemplate) {
			t.ValidationRules.NumericFields = []models.Field{"volume"}
		}, "unknown validation field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			tmpl := &models.CarrierRateTemplate{CarrierID: "acme", Name: "ok"}
			tt.mutate(tmpl)

			_, err := svc.CreateTemplate(context.Background(), tmpl)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTemplate))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

const yamlTemplate = `
carrierId: acme
name: Acme skid rates
enabled: true
csvStructure:
  delimiter: ";"
  expectedColumns: [From, To, Skids, Rate]
  requiredColumns: [From, To]
fieldMappings:
  origin: From
  destination: To
  skidCount: Skids
  baseRate: Rate
  customFields:
    lane: Lane
rateCalculationRules:
  calculationType: per_unit
  baseUnit: skid
  unitMultiplier: 1.1
`

func TestImportTemplateYAML(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tmpl, err := svc.ImportTemplateYAML(ctx, strings.NewReader(yamlTemplate), "ops")
	require.NoError(t, err)
	assert.Equal(t, "ops", tmpl.CreatedBy)
	assert.Equal(t, ";", tmpl.CSVStructure.Delimiter)
	assert.Equal(t, "Lane", tmpl.FieldMappings.CustomFields["lane"])
	assert.Equal(t, 1.1, tmpl.RateCalculationRules.UnitMultiplier)

	rows, err := svc.DecodeFile(ctx, tmpl.ID, []byte("From;To;Skids;Rate\nToronto;Ottawa;3;100\n"))
	require.NoError(t, err)

	res, err := svc.CommitImport(ctx, tmpl.ID, rows, CommitOptions{})
	require.NoError(t, err)
	card, err := svc.GetRateCard(ctx, res.RateCardID)
	require.NoError(t, err)
	assert.InDelta(t, 330.0, *card.Records[0].TotalRate, 1e-9)
}

func TestImportTemplateYAMLRejectsUnknownKeys(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ImportTemplateYAML(context.Background(), strings.NewReader("carrierId: a\nname: b\ncolour: red\n"), "")
	assert.True(t, errors.Is(err, ErrInvalidTemplate))
}

func TestListRateCardsUnknownTemplate(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ListRateCards(context.Background(), "missing", 0)
	assert.True(t, errors.Is(err, ErrTemplateNotFound))

	_, err = svc.GetRateCard(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrRateCardNotFound))
}
