package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/trendline/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 1
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// DefaultPeriods are the period slots used when nothing is configured.
var DefaultPeriods = []string{string(schema.PreviousAnalysisMode), "30", string(schema.PreviousVersionMode), "", ""}

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration.
// This struct is the "final, validated" config.
type Config struct {
	DBBackend schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	LogLevel    string
	LogFormat   string
	MetricsAddr string

	Identity       schema.IdentityMode
	ProjectDate    *time.Time // analysis date override
	SkippedModules []string
	Periods        []schema.PeriodSetting

	Metrics       []string
	Trends        bool
	TargetVersion int
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	DBBackend   string `mapstructure:"db-backend"`
	DBConnect   string `mapstructure:"db-connect"`
	Output      string `mapstructure:"output"`
	OutputFile  string `mapstructure:"output-file"`
	Precision   int    `mapstructure:"precision"`
	Width       int    `mapstructure:"width"`
	Color       string `mapstructure:"color"`
	LogLevel    string `mapstructure:"log-level"`
	LogFormat   string `mapstructure:"log-format"`
	MetricsAddr string `mapstructure:"metrics-addr"`

	// --- Fields from analyzeCmd.Flags() and the config file ---
	Identity       string `mapstructure:"identity"`
	ProjectDate    string `mapstructure:"project-date"`
	SkippedModules string `mapstructure:"skipped-modules"`
	Period1        string `mapstructure:"period1"`
	Period2        string `mapstructure:"period2"`
	Period3        string `mapstructure:"period3"`
	Period4        string `mapstructure:"period4"`
	Period5        string `mapstructure:"period5"`

	// --- Fields from measuresCmd.Flags() ---
	Metrics string `mapstructure:"metrics"`
	Trends  bool   `mapstructure:"trends"`

	// --- Fields from dbMigrateCmd.Flags() ---
	TargetVersion int `mapstructure:"target-version"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := processAnalysisInputs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfig validates the database backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	backend := input.DBBackend
	if backend == "" {
		backend = string(schema.SQLiteBackend)
	}
	cfg.DBBackend = schema.DatabaseBackend(strings.ToLower(backend))
	if _, ok := schema.ValidDatabaseBackends[cfg.DBBackend]; !ok {
		return fmt.Errorf("invalid db backend '%s'. must be sqlite, mysql, postgresql", input.DBBackend)
	}
	cfg.DBConnect = input.DBConnect
	return ValidateDatabaseConnectionString(cfg.DBBackend, cfg.DBConnect)
}

// validateSimpleInputs processes and validates output and logging fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MetricsAddr = strings.TrimSpace(input.MetricsAddr)
	cfg.Trends = input.Trends
	cfg.TargetVersion = input.TargetVersion

	colors, err := ParseBoolString(defaultString(input.Color, "yes"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(defaultString(input.Output, string(schema.TextOut))))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	cfg.LogLevel = strings.ToLower(defaultString(input.LogLevel, DefaultLogLevel))
	switch cfg.LogLevel {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("invalid log level '%s'. must be trace, debug, info, warn, error, disabled", input.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(defaultString(input.LogFormat, DefaultLogFormat))
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log format '%s'. must be console or json", input.LogFormat)
	}

	cfg.Metrics = SplitList(input.Metrics)
	return nil
}

// processAnalysisInputs handles identity, analysis date, skipped modules and periods.
func processAnalysisInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Identity = schema.IdentityMode(strings.ToLower(defaultString(input.Identity, string(schema.ServerIdentity))))
	if _, ok := schema.ValidIdentityModes[cfg.Identity]; !ok {
		return fmt.Errorf("invalid identity '%s'. must be server or batch", input.Identity)
	}

	cfg.ProjectDate = nil
	if s := strings.TrimSpace(input.ProjectDate); s != "" {
		t, err := ParseProjectDate(s)
		if err != nil {
			return err
		}
		cfg.ProjectDate = &t
	}

	cfg.SkippedModules = SplitList(input.SkippedModules)

	raw := []string{input.Period1, input.Period2, input.Period3, input.Period4, input.Period5}
	settings, err := schema.ParsePeriodSettings(raw)
	if err != nil {
		return err
	}
	cfg.Periods = settings
	return nil
}

// ParseProjectDate accepts either yyyy-MM-dd or RFC3339.
func ParseProjectDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(schema.PeriodDateLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateTimeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid project date '%s'. Expected yyyy-MM-dd or RFC3339", s)
	}
	return t, nil
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
