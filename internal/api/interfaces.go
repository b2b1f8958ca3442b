// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/carrier-rates/backend/internal/importer"
	"github.com/carrier-rates/backend/internal/models"
)

// TemplateHandler handles carrier template operations
type TemplateHandler interface {
	HandleCreateTemplate(c echo.Context) error
	HandleImportTemplateYAML(c echo.Context) error
	HandleGetTemplate(c echo.Context) error
	HandleListTemplates(c echo.Context) error
	HandleSuggestMapping(c echo.Context) error
}

// ImportHandler handles validate, preview and commit of carrier files
type ImportHandler interface {
	HandleValidate(c echo.Context) error
	HandlePreview(c echo.Context) error
	HandleCommit(c echo.Context) error
}

// RateCardHandler handles reading and exporting imported rate cards
type RateCardHandler interface {
	HandleGetRateCard(c echo.Context) error
	HandleListRateCards(c echo.Context) error
	HandleExportRateCard(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// ImportService is the importer surface the handlers depend on.
// This allows mocking in tests
type ImportService interface {
	SuggestMapping(ctx context.Context, headers, sampleRow []string, carrierID string) (*importer.SuggestResult, error)
	ValidateImport(ctx context.Context, templateID string, rows [][]string) (*models.ValidationResult, error)
	PreviewImport(ctx context.Context, templateID string, rows [][]string) (*importer.PreviewResult, error)
	CommitImport(ctx context.Context, templateID string, rows [][]string, opts importer.CommitOptions) (*importer.CommitResult, error)
	DecodeFile(ctx context.Context, templateID string, data []byte) ([][]string, error)

	CreateTemplate(ctx context.Context, t *models.CarrierRateTemplate) (*models.CarrierRateTemplate, error)
	ImportTemplateYAML(ctx context.Context, r io.Reader, createdBy string) (*models.CarrierRateTemplate, error)
	GetTemplate(ctx context.Context, id string) (*models.CarrierRateTemplate, error)
	ListTemplates(ctx context.Context, carrierID string, limit int) ([]*models.CarrierRateTemplate, error)

	GetRateCard(ctx context.Context, id string) (*models.RateCard, error)
	ListRateCards(ctx context.Context, templateID string, limit int) ([]*models.RateCard, error)
}

var _ ImportService = (*importer.Service)(nil)
