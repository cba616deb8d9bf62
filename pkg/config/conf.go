package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	AppName = "tmscan"

	portDefault = 8080
	maxPort     = 65535
)

// Config represents the app config object. One file drives every
// dashboard variant (sidebar, data source label, mobile styling).
type Config struct {
	Title          string    `yaml:"title"`
	Locale         string    `yaml:"locale"`
	LogLevel       string    `yaml:"log_level"`
	Dashboard      Dashboard `yaml:"dashboard"`
	Classes        []string  `yaml:"classes"`
	DefaultClasses []string  `yaml:"default_classes"`
	Report         Report    `yaml:"report"`
	Catalog        Catalog   `yaml:"catalog"`
	Server         Server    `yaml:"server"`
}

// Dashboard holds presentation parameters served to the UI.
type Dashboard struct {
	SidebarExpanded bool   `yaml:"sidebar_expanded" json:"sidebar_expanded"`
	DataSourceLabel string `yaml:"data_source_label" json:"data_source_label"`
	MobileStyling   bool   `yaml:"mobile_styling" json:"mobile_styling"`
	Badge           string `yaml:"badge" json:"badge"`
	Footer          string `yaml:"footer" json:"footer"`
}

// Report configures the exporter.
type Report struct {
	Name        string `yaml:"name"`
	Spreadsheet bool   `yaml:"spreadsheet"`
}

// Catalog selects the registration source. An empty path uses the
// built-in demonstration records.
type Catalog struct {
	Path            string `yaml:"path"`
	CacheSize       int    `yaml:"cache_size"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// Server configures the local API server.
type Server struct {
	Port       int  `yaml:"port"`
	RequireKey bool `yaml:"require_key"`
}

// CacheTTL returns the catalog cache TTL as a duration.
func (c Catalog) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Default returns the configuration written on first use.
func Default() *Config {
	return &Config{
		Title:    "美国商标检索分析系统",
		Locale:   "zh",
		LogLevel: "info",
		Dashboard: Dashboard{
			SidebarExpanded: true,
			DataSourceLabel: "USPTO (mock)",
			MobileStyling:   false,
			Badge:           "BETA 1.0",
			Footer:          "Confidential & Proprietary - GuoRui Law Tech",
		},
		Classes:        []string{"007", "009", "011", "025", "035"},
		DefaultClasses: []string{"009"},
		Report: Report{
			Name:        "GuoRui_Report",
			Spreadsheet: true,
		},
		Catalog: Catalog{
			CacheSize:       256,
			CacheTTLSeconds: 600,
		},
		Server: Server{
			Port:       portDefault,
			RequireKey: true,
		},
	}
}

// Validate checks the values a user may have edited by hand.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config required")
	}

	switch c.Locale {
	case "zh", "en":
	default:
		return fmt.Errorf("invalid locale %q, expected zh or en", c.Locale)
	}

	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Catalog.CacheSize < 0 || c.Catalog.CacheTTLSeconds < 0 {
		return errors.New("catalog cache size and ttl must not be negative")
	}

	for _, v := range c.DefaultClasses {
		if len(c.Classes) > 0 && !slices.Contains(c.Classes, v) {
			return fmt.Errorf("default class %s is not in the selectable classes", v)
		}
	}

	if strings.ContainsAny(c.Report.Name, `/\`) {
		return fmt.Errorf("invalid report name: %s", c.Report.Name)
	}

	return nil
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file: %s: %w", configFileName, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
// Values missing from the file keep their defaults.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("failed to create dir: %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, Default()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return c, nil
}

// GetOrCreateHomeDir returns the app directory under the user home.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("failed to create dir: %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
