// Package config provides XML-based configuration management for the rate import server.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

// Store drivers
const (
	DriverMemory = "memory"
	DriverDuckDB = "duckdb"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"CarrierRates"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Import limits
	Import ImportConfig `xml:"Import"`

	// Event publishing
	Messaging MessagingConfig `xml:"Messaging"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains template and rate card storage settings
type StorageConfig struct {
	Driver        string `xml:"Driver"`
	DataDirectory string `xml:"DataDirectory"`
	DatabaseFile  string `xml:"DatabaseFile"`
}

// ImportConfig contains import processing limits
type ImportConfig struct {
	MaxUploadBytes     int64  `xml:"MaxUploadBytes"`
	ValidationSample   int    `xml:"ValidationSampleRows"`
	PreviewRows        int    `xml:"PreviewRows"`
	SampleRetention    int    `xml:"SampleRetentionRows"`
	SuggestionLookback int    `xml:"SuggestionLookback"`
	KeywordPackFile    string `xml:"KeywordPackFile"`
}

// MessagingConfig contains Kafka settings. Empty brokers disable publishing.
type MessagingConfig struct {
	KafkaBrokers string `xml:"KafkaBrokers"`
	KafkaTopic   string `xml:"KafkaTopic"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	ShowErrorDetails     bool   `xml:"ShowErrorDetails"`
	DuckDBThreads        int    `xml:"DuckDBThreads"`
	DuckDBMemoryLimit    string `xml:"DuckDBMemoryLimit"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "64M",
		},
		Storage: StorageConfig{
			Driver:        DriverDuckDB,
			DataDirectory: "./data",
			DatabaseFile:  "rates.duckdb",
		},
		Import: ImportConfig{
			MaxUploadBytes:     32 << 20,
			ValidationSample:   10,
			PreviewRows:        5,
			SampleRetention:    10,
			SuggestionLookback: 5,
		},
		Messaging: MessagingConfig{
			KafkaTopic: "rate-cards",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			ShowErrorDetails:     true,
			DuckDBThreads:        2,
			DuckDBMemoryLimit:    "512MB",
		},
	}
}

// LoadConfig loads configuration from XML file. A missing file is created
// with defaults. A .env file next to the config is loaded first so its
// values take part in the environment overrides.
func LoadConfig(configPath string) (*AppConfig, error) {
	configDir := filepath.Dir(configPath)
	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := DefaultConfig()

	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(configDir)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Carrier Rates Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects settings the server cannot start with
func (c *AppConfig) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverDuckDB:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Import.MaxUploadBytes < 0 {
		return fmt.Errorf("MaxUploadBytes must not be negative")
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}

	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		c.Storage.Driver = strings.ToLower(driver)
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Messaging.KafkaBrokers = brokers
	}
	if topic := os.Getenv("KAFKA_TOPIC"); topic != "" {
		c.Messaging.KafkaTopic = topic
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if c.Import.KeywordPackFile != "" && !filepath.IsAbs(c.Import.KeywordPackFile) {
		c.Import.KeywordPackFile = filepath.Join(configDir, c.Import.KeywordPackFile)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetDatabasePath returns the DuckDB file path
func (c *AppConfig) GetDatabasePath() string {
	if filepath.IsAbs(c.Storage.DatabaseFile) {
		return c.Storage.DatabaseFile
	}
	return filepath.Join(c.Storage.DataDirectory, c.Storage.DatabaseFile)
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetAllowOrigins splits AllowOrigins. CORS disabled yields nil.
func (c *AppConfig) GetAllowOrigins() []string {
	if !c.Server.EnableCORS {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(c.Server.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

// GetLogLevel maps LogLevel onto a gommon level, defaulting to INFO
func (c *AppConfig) GetLogLevel() log.Lvl {
	switch strings.ToLower(c.Advanced.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.Storage.DataDirectory, err)
	}
	return nil
}
