package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/logger"
	"github.com/huangsam/trendline/internal/outwriter"
	"github.com/huangsam/trendline/internal/store"
	"github.com/huangsam/trendline/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// out renders every command result.
var out = outwriter.NewOutWriter()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "trendline",
	Short: "Persist analyzer issues and track measures across analyses.",
	Long: `Trendline stores the issues and measures of each analysis, keeps an audit trail
of every issue change and shows how measures moved over differential periods.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig sets config search paths, ENV variables and defaults.
func initConfig() {
	// Set environment variable prefix
	viper.SetEnvPrefix("TRENDLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("db-backend", schema.SQLiteBackend)
	viper.SetDefault("db-connect", "")
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("log-format", contract.DefaultLogFormat)
	viper.SetDefault("identity", schema.ServerIdentity)
	for i, p := range contract.DefaultPeriods {
		viper.SetDefault(fmt.Sprintf("period%d", i+1), p)
	}
	viper.SetDefault("target-version", -1)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".trendline") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and configures logging and colors.
func sharedSetup() error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// Logs go to stderr so stdout stays clean for results and the MCP protocol.
	logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	color.NoColor = color.NoColor || !cfg.UseColors
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide Cobra's PreRunE.
func sharedSetupWrapper(_ *cobra.Command, _ []string) error {
	return sharedSetup()
}

// withStore opens the configured store, runs fn and closes the store.
func withStore(fn func(st *store.Store) error) error {
	st, err := store.Open(cfg.DBBackend, cfg.DBConnect)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()
	return fn(st)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
