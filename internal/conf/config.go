// config.go: settings struct and functions to load the dairytrack-go configuration.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SheetSource identifies one Google Sheets source: the spreadsheet ID and
// the tab name passed to the CSV export endpoint.
type SheetSource struct {
	ID    string // spreadsheet ID
	Sheet string // sheet tab name, e.g. "dailylog"
}

// SheetsSettings contains settings for the Google Sheets source client.
type SheetsSettings struct {
	BaseURL         string        // base URL of the spreadsheets service, overridable for testing
	Timeout         time.Duration // HTTP timeout for a single fetch
	CacheTTL        time.Duration // snapshot cache TTL, default 600s
	TimestampColumn string        // audit/ingestion timestamp column stripped before normalization

	Production          SheetSource // per-cow milking & feeding log
	DistributionMorning SheetSource // morning distribution channel
	DistributionEvening SheetSource // evening distribution channel
	Expense             SheetSource // expense ledger
	Payment             SheetSource // payment ledger
	Investment          SheetSource // investment ledger
}

// ValidationSettings governs windowed computations and the completeness audit.
type ValidationSettings struct {
	StartDate string   // lower bound of the validation window, "2006-01-02"
	Parties   []string // named parties to compute fund balances for
}

// WebServerSettings contains settings for the HTTP API server.
type WebServerSettings struct {
	Enabled bool   // true to enable web server
	Port    string // port for web server
}

// Address returns the listen address for the HTTP server.
func (w *WebServerSettings) Address() string {
	return ":" + w.Port
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled     bool         // true to enable this log
	Path        string       // Path to the log file
	Rotation    RotationType // Type of log rotation
	MaxSize     int64        // Max size in bytes for RotationSize
	RotationDay string       // Day of the week for RotationWeekly
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// Settings contains all runtime settings for the application.
type Settings struct {
	Debug bool // true to enable debug mode

	Main struct {
		Name string    // name of the instance, shown in reports
		Log  LogConfig // main log configuration
	}

	Sheets     SheetsSettings     // source tables
	Validation ValidationSettings // validation window and tracked parties
	WebServer  WebServerSettings  // web server configuration
}

// ValidationStart returns the configured start of the validation window.
// Falls back to the zero time if the configured date is malformed; callers
// treat that as "no lower bound" and the validate step reports it.
func (s *Settings) ValidationStart() time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s.Validation.StartDate))
	if err != nil {
		return time.Time{}
	}
	return t
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration and populates the global settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets up viper with config paths and defaults, and reads the
// config file if one exists. A missing config file is not an error; the
// defaults are written out so the operator has a file to edit.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// function defined in defaults.go
	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes a config file populated with the current
// defaults to the first config path.
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	yamlData, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("error marshaling default settings to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, yamlData, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	log.Printf("Created default config file at: %s", configPath)
	return viper.ReadInConfig()
}

// GetDefaultConfigPaths returns the ordered list of directories searched
// for the config file: working directory first, then the user config dir.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "dairytrack-go"))
	}
	return paths, nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}
