// Package cmd defines the command-line interface for trendline.
package cmd

import (
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(measuresCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(changelogCmd)
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the rules subcommands to the parent rules command
	rulesCmd.AddCommand(rulesImportCmd)
	rulesCmd.AddCommand(rulesListCmd)

	// Add the db subcommands to the parent db command
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbClearCmd)
	dbCmd.AddCommand(dbExportCmd)
	dbCmd.AddCommand(dbMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("db-backend", string(schema.SQLiteBackend), "Database backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string (defaults to ~/.trendline.db for sqlite)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: trace, debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().String("log-format", contract.DefaultLogFormat, "Log format: console or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of analyzeCmd to Viper
	analyzeCmd.Flags().String("identity", string(schema.ServerIdentity), "Identity resolution: server or batch")
	analyzeCmd.Flags().String("project-date", "", "Analysis date override (yyyy-MM-dd or RFC3339)")
	analyzeCmd.Flags().String("skipped-modules", "", "Comma-separated module keys whose issues are left untouched")
	analyzeCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address during the analysis (e.g. :9464)")
	for i, p := range contract.DefaultPeriods {
		analyzeCmd.Flags().String(periodFlag(i+1), p, "Differential period: previous_analysis, previous_version, days, yyyy-MM-dd or a version")
	}
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyze flags", err)
	}

	// Bind all flags of measuresCmd to Viper
	measuresCmd.Flags().String("metrics", "", "Comma-separated metric keys (default: all)")
	measuresCmd.Flags().Bool("trends", false, "Show variations over each resolved period")
	if err := viper.BindPFlags(measuresCmd.Flags()); err != nil {
		contract.LogFatal("Error binding measures flags", err)
	}

	// Bind all flags of dbMigrateCmd to Viper
	dbMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(dbMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding db migrate flags", err)
	}
}
