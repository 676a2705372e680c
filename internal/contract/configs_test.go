package contract

import (
	"testing"
	"time"

	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Precision: 1,
		Output:    "text",
		Color:     "yes",
		Period1:   DefaultPeriods[0],
		Period2:   DefaultPeriods[1],
		Period3:   DefaultPeriods[2],
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "invalid precision", mutate: func(in *ConfigRawInput) { in.Precision = 5 }, expectError: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: true},
		{name: "invalid backend", mutate: func(in *ConfigRawInput) { in.DBBackend = "oracle" }, expectError: true},
		{name: "mysql without connect", mutate: func(in *ConfigRawInput) { in.DBBackend = "mysql" }, expectError: true},
		{name: "invalid identity", mutate: func(in *ConfigRawInput) { in.Identity = "client" }, expectError: true},
		{name: "invalid project date", mutate: func(in *ConfigRawInput) { in.ProjectDate = "yesterday" }, expectError: true},
		{name: "invalid period", mutate: func(in *ConfigRawInput) { in.Period4 = "-1" }, expectError: true},
		{name: "invalid log level", mutate: func(in *ConfigRawInput) { in.LogLevel = "loud" }, expectError: true},
		{name: "invalid log format", mutate: func(in *ConfigRawInput) { in.LogFormat = "xml" }, expectError: true},
		{
			name: "postgres with connect",
			mutate: func(in *ConfigRawInput) {
				in.DBBackend = "PostgreSQL"
				in.DBConnect = "host=localhost dbname=trendline"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, schema.SQLiteBackend, cfg.DBBackend)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, schema.ServerIdentity, cfg.Identity)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.True(t, cfg.UseColors)
	assert.Nil(t, cfg.ProjectDate)
	require.Len(t, cfg.Periods, 3)
	assert.Equal(t, schema.PreviousAnalysisMode, cfg.Periods[0].Mode)
	assert.Equal(t, schema.DaysMode, cfg.Periods[1].Mode)
	assert.Equal(t, schema.PreviousVersionMode, cfg.Periods[2].Mode)
}

func TestProcessAndValidate_AnalysisInputs(t *testing.T) {
	input := validInput()
	input.ProjectDate = "2013-01-01"
	input.SkippedModules = "module_b, ,module_c"
	input.Identity = "BATCH"
	input.Metrics = "violations,new_violations"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	require.NotNil(t, cfg.ProjectDate)
	assert.Equal(t, time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC), *cfg.ProjectDate)
	assert.Equal(t, []string{"module_b", "module_c"}, cfg.SkippedModules)
	assert.Equal(t, schema.BatchIdentity, cfg.Identity)
	assert.Equal(t, []string{"violations", "new_violations"}, cfg.Metrics)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/trendline", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/trendline", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=trendline", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=trendline", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseProjectDate(t *testing.T) {
	d, err := ParseProjectDate("2013-05-18")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2013, 5, 18, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseProjectDate("2013-05-18T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	_, err = ParseProjectDate("18/05/2013")
	assert.Error(t, err)
}
