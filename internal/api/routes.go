// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Service        ImportService
	Version        string
	StoreDriver    string
	MaxUploadBytes int64
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Template TemplateHandler
	Import   ImportHandler
	RateCard RateCardHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version, deps.StoreDriver),
		Template: NewTemplateHandler(deps.Service, deps.MaxUploadBytes),
		Import:   NewImportHandler(deps.Service, deps.MaxUploadBytes),
		RateCard: NewRateCardHandler(deps.Service),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	apiGroup := e.Group("/api")
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Template routes
	templateGroup := apiGroup.Group("/templates")
	templateGroup.POST("", handlers.Template.HandleCreateTemplate)
	templateGroup.GET("", handlers.Template.HandleListTemplates)
	templateGroup.POST("/import", handlers.Template.HandleImportTemplateYAML)
	templateGroup.POST("/suggest", handlers.Template.HandleSuggestMapping)
	templateGroup.GET("/:id", handlers.Template.HandleGetTemplate)
	templateGroup.GET("/:id/rate-cards", handlers.RateCard.HandleListRateCards)

	// Import routes
	importGroup := apiGroup.Group("/imports/:templateId")
	importGroup.POST("/validate", handlers.Import.HandleValidate)
	importGroup.POST("/preview", handlers.Import.HandlePreview)
	importGroup.POST("/commit", handlers.Import.HandleCommit)

	// Rate card routes
	rateCardGroup := apiGroup.Group("/rate-cards")
	rateCardGroup.GET("/:id", handlers.RateCard.HandleGetRateCard)
	rateCardGroup.GET("/:id/export", handlers.RateCard.HandleExportRateCard)
}

// MiddlewareOptions carries the server settings the middleware stack reads
type MiddlewareOptions struct {
	RequestLogging bool
	AllowOrigins   []string
	BodyLimit      string
	Timeout        time.Duration
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !opts.RequestLogging {
				return true
			}
			return strings.HasSuffix(c.Request().URL.Path, "/health")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if opts.Timeout > 0 {
		e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout:      opts.Timeout,
			ErrorMessage: "Request timeout - import took too long",
		}))
	}

	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	if len(opts.AllowOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: opts.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}
}
