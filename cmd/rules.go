package cmd

import (
	"github.com/huangsam/trendline/core"
	"github.com/huangsam/trendline/internal/report"
	"github.com/huangsam/trendline/internal/store"
	"github.com/spf13/cobra"
)

// rulesCmd focused on rule definitions.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage the rule definitions issues refer to",
	Long: `Issues reference rules by repository:key. A report can only be stored once
every rule it uses is known.

Subcommands:
  import - Insert or refresh rule definitions from a YAML file
  list   - Show every stored rule

Examples:
  trendline rules import rules.yaml
  trendline rules list`,
}

// rulesImportCmd imports rule definitions.
var rulesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Insert or refresh rule definitions from a YAML file",
	Long: `Read rule definitions and insert them, or refresh name, severity and status
of rules that already exist.

File format:
  rules:
    - key: squid:AvoidCycle
      name: Avoid cycles between packages
      severity: MAJOR`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		rules, err := report.LoadRules(args[0])
		if err != nil {
			return err
		}
		return withStore(func(st *store.Store) error {
			return core.ExecuteImportRules(rootCtx, cfg, st, rules, out)
		})
	},
}

// rulesListCmd lists stored rules.
var rulesListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show every stored rule",
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withStore(func(st *store.Store) error {
			return core.ExecuteListRules(rootCtx, cfg, st, out)
		})
	},
}
