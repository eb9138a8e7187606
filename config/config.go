// Package config provides configuration loading for the dashboard server.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultPort        = 8003
	DefaultReportsDir  = "reports"
	DefaultLogsDir     = "logs"
	DefaultStaticDir   = "."
	DefaultProductName = "Aziro Cluster Center"

	// ReportFileName is the pytest-html artifact inside the reports dir.
	ReportFileName = "test-report.html"
	// HistoryFileName is the persisted run-history file inside the reports dir.
	HistoryFileName = "test_history.json"
	// AllureResultsDirName is the allure output dir inside the reports dir.
	AllureResultsDirName = "allure-results"
)

// Config holds the dashboard settings. All fields have working defaults;
// a config file and command-line flags only override them.
type Config struct {
	// Port the HTTP server listens on.
	Port int `yaml:"port"`
	// ReportsDir contains the report artifact, the history file and the
	// allure results.
	ReportsDir string `yaml:"reports_dir"`
	// LogsDir contains the test_execution_*.log files.
	LogsDir string `yaml:"logs_dir"`
	// StaticDir is the root served for paths no handler claims.
	StaticDir string `yaml:"static_dir"`
	// ProductName labels the dashboard and history entries.
	ProductName string `yaml:"product_name"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Port:        DefaultPort,
		ReportsDir:  DefaultReportsDir,
		LogsDir:     DefaultLogsDir,
		StaticDir:   DefaultStaticDir,
		ProductName: DefaultProductName,
	}
}

// Load reads a YAML config file and applies defaults for unset fields.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = DefaultReportsDir
	}
	if cfg.LogsDir == "" {
		cfg.LogsDir = DefaultLogsDir
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = DefaultStaticDir
	}
	if cfg.ProductName == "" {
		cfg.ProductName = DefaultProductName
	}
}

// ReportPath returns the path of the report artifact.
func (c Config) ReportPath() string {
	return filepath.Join(c.ReportsDir, ReportFileName)
}

// HistoryPath returns the path of the persisted run history.
func (c Config) HistoryPath() string {
	return filepath.Join(c.ReportsDir, HistoryFileName)
}

// AllureResultsDir returns the path of the allure results directory.
func (c Config) AllureResultsDir() string {
	return filepath.Join(c.ReportsDir, AllureResultsDirName)
}
