package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"assetscan-backend/internal/engine"
)

// Backup evaluator modes.
const (
	BackupModeLogs = "logs"
	BackupModeJobs = "jobs"
	BackupModeBoth = "both"
)

// Config is the root configuration, loaded once at startup. Scan policy is
// snapshotted into an engine.Policy at each scan start; there is no
// hot-reload.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	HTTP     HTTPConfig     `yaml:"http"`
	Scan     ScanConfig     `yaml:"scan"`
}

type DatabaseConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type HTTPConfig struct {
	Port string `yaml:"port"`
}

type ScanConfig struct {
	ComplianceCron        string       `yaml:"compliance_cron"`
	HealthIntervalSeconds int          `yaml:"health_interval_seconds"`
	WarrantyWindowDays    int          `yaml:"warranty_window_days"`
	LicenseWindowDays     int          `yaml:"license_window_days"`
	AuthorizedSoftware    []string     `yaml:"authorized_software"`
	Backup                BackupConfig `yaml:"backup"`
}

// HealthInterval is the tick period of the health scan.
func (s ScanConfig) HealthInterval() time.Duration {
	return time.Duration(s.HealthIntervalSeconds) * time.Second
}

type BackupConfig struct {
	Mode           string `yaml:"mode"`
	LogDir         string `yaml:"log_dir"`
	LogMaxAgeHours int    `yaml:"log_max_age_hours"`
	StaleAfterDays int    `yaml:"stale_after_days"`
}

// Load reads the optional yaml file at path, applies defaults and
// validates. An empty path loads pure defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Type == "" {
		c.Database.Type = "postgres"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Database == "" {
		c.Database.Database = "assets"
	}
	if c.NATS.URL == "" {
		c.NATS.URL = "nats://localhost:4222"
	}
	if c.HTTP.Port == "" {
		c.HTTP.Port = "8092"
	}
	if c.Scan.ComplianceCron == "" {
		c.Scan.ComplianceCron = "0 0 * * *"
	}
	if c.Scan.HealthIntervalSeconds == 0 {
		c.Scan.HealthIntervalSeconds = 60
	}
	if c.Scan.WarrantyWindowDays == 0 {
		c.Scan.WarrantyWindowDays = 30
	}
	if c.Scan.LicenseWindowDays == 0 {
		c.Scan.LicenseWindowDays = 30
	}
	if len(c.Scan.AuthorizedSoftware) == 0 {
		c.Scan.AuthorizedSoftware = []string{"MS OFFICE", "AUTOCAD", "PHOTOSHOP", "VS CODE", "SQL SERVER"}
	}
	if c.Scan.Backup.Mode == "" {
		c.Scan.Backup.Mode = BackupModeLogs
	}
	if c.Scan.Backup.LogDir == "" {
		c.Scan.Backup.LogDir = "backup_logs"
	}
	if c.Scan.Backup.LogMaxAgeHours == 0 {
		c.Scan.Backup.LogMaxAgeHours = 2
	}
	if c.Scan.Backup.StaleAfterDays == 0 {
		c.Scan.Backup.StaleAfterDays = 7
	}
}

// Validate rejects policy errors at load time rather than at scan time.
func (c *Config) Validate() error {
	if c.Scan.WarrantyWindowDays < 0 {
		return fmt.Errorf("scan.warranty_window_days must not be negative, got %d", c.Scan.WarrantyWindowDays)
	}
	if c.Scan.LicenseWindowDays < 0 {
		return fmt.Errorf("scan.license_window_days must not be negative, got %d", c.Scan.LicenseWindowDays)
	}
	if c.Scan.HealthIntervalSeconds < 0 {
		return fmt.Errorf("scan.health_interval_seconds must not be negative, got %d", c.Scan.HealthIntervalSeconds)
	}
	if _, err := cron.ParseStandard(c.Scan.ComplianceCron); err != nil {
		return fmt.Errorf("scan.compliance_cron: %w", err)
	}
	switch c.Scan.Backup.Mode {
	case BackupModeLogs, BackupModeJobs, BackupModeBoth:
	default:
		return fmt.Errorf("scan.backup.mode must be logs, jobs or both, got %q", c.Scan.Backup.Mode)
	}
	if c.Scan.Backup.LogMaxAgeHours < 0 {
		return fmt.Errorf("scan.backup.log_max_age_hours must not be negative, got %d", c.Scan.Backup.LogMaxAgeHours)
	}
	if c.Scan.Backup.StaleAfterDays < 0 {
		return fmt.Errorf("scan.backup.stale_after_days must not be negative, got %d", c.Scan.Backup.StaleAfterDays)
	}
	for _, name := range c.Scan.AuthorizedSoftware {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("scan.authorized_software entries must not be blank")
		}
	}
	return nil
}

// Policy converts the scan section into the parameter struct the evaluators
// take. Called once per scan so every evaluator in a scan sees the same
// values.
func (c *Config) Policy() engine.Policy {
	return engine.Policy{
		WarrantyWindowDays: c.Scan.WarrantyWindowDays,
		LicenseWindowDays:  c.Scan.LicenseWindowDays,
		AuthorizedSoftware: append([]string(nil), c.Scan.AuthorizedSoftware...),
		BackupMode:         c.Scan.Backup.Mode,
		BackupLogDir:       c.Scan.Backup.LogDir,
		BackupLogMaxAge:    time.Duration(c.Scan.Backup.LogMaxAgeHours) * time.Hour,
		BackupStaleAge:     time.Duration(c.Scan.Backup.StaleAfterDays) * 24 * time.Hour,
	}
}
