package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/carrier-rates/backend/internal/api"
	"github.com/carrier-rates/backend/internal/config"
	"github.com/carrier-rates/backend/internal/importer"
	"github.com/carrier-rates/backend/internal/mapping"
	"github.com/carrier-rates/backend/internal/notify"
	"github.com/carrier-rates/backend/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to the XML config file")
	flag.Parse()

	if *configPath == "" {
		// Get the executable's directory for config resolution
		exePath, err := os.Executable()
		if err != nil {
			fmt.Printf("Failed to get executable path: %v\n", err)
			os.Exit(1)
		}
		*configPath = filepath.Join(filepath.Dir(exePath), "CarrierRates.config")
	}

	// Load XML configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	level := cfg.GetLogLevel()
	newLogger := func(prefix string) *log.Logger {
		l := log.New(prefix)
		l.SetLevel(level)
		return l
	}
	logger := newLogger("server")
	api.ShowErrorDetails = cfg.Advanced.ShowErrorDetails

	// Initialize storage
	var store storage.Store
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store = storage.NewMemoryStore()
	default:
		store, err = storage.NewDuckStore(cfg.GetDatabasePath(), storage.DuckOptions{
			MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
			Threads:     cfg.Advanced.DuckDBThreads,
			Logger:      newLogger("storage"),
		})
		if err != nil {
			fmt.Printf("Failed to initialize storage: %v\n", err)
			os.Exit(1)
		}
	}
	defer store.Close()

	// Mapping heuristics, optionally extended by a keyword pack
	engine := mapping.NewDefaultEngine()
	if cfg.Import.KeywordPackFile != "" {
		pack, err := mapping.LoadKeywordPack(cfg.Import.KeywordPackFile)
		if err != nil {
			logger.Warnf("keyword pack not loaded: %v", err)
		} else {
			engine = engine.WithPack(pack)
			logger.Infof("keyword pack loaded from %s", cfg.Import.KeywordPackFile)
		}
	}

	// Event publisher
	var publisher notify.Publisher = notify.NopPublisher{}
	if cfg.Messaging.KafkaBrokers != "" {
		publisher = notify.NewKafkaPublisher(cfg.Messaging.KafkaBrokers, cfg.Messaging.KafkaTopic, newLogger("notify"))
	}
	defer publisher.Close()

	svc := importer.NewService(store,
		importer.WithEngine(engine),
		importer.WithPublisher(publisher),
		importer.WithLogger(newLogger("importer")),
		importer.WithLimits(importer.Limits{
			ValidationSample:   cfg.Import.ValidationSample,
			PreviewRows:        cfg.Import.PreviewRows,
			SampleRetention:    cfg.Import.SampleRetention,
			SuggestionLookback: cfg.Import.SuggestionLookback,
		}),
	)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(level)

	api.SetupMiddleware(e, api.MiddlewareOptions{
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		AllowOrigins:   cfg.GetAllowOrigins(),
		BodyLimit:      cfg.Server.BodyLimit,
		Timeout:        time.Duration(cfg.Server.ReadTimeout) * time.Second,
	})
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Service:        svc,
		Version:        Version,
		StoreDriver:    cfg.Storage.Driver,
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
	}))

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	messaging := "disabled"
	if cfg.Messaging.KafkaBrokers != "" {
		messaging = cfg.Messaging.KafkaTopic + " @ " + cfg.Messaging.KafkaBrokers
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Carrier Rates Import Server                     ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Store:      %-45s║\n", cfg.Storage.Driver)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", *configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("║  Events:    %-46s║\n", messaging)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	logger.Info("server stopped")
}
