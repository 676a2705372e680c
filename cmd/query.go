package cmd

import (
	"github.com/huangsam/trendline/core"
	"github.com/huangsam/trendline/internal/store"
	"github.com/spf13/cobra"
)

// measuresCmd shows the measures of a component.
var measuresCmd = &cobra.Command{
	Use:   "measures <component>",
	Short: "Show the measures of a project or component at its last analysis.",
	Long: `Read the measures stored for a component (key or uuid) at the last analysis
of its project. With --trends every resolved period gets a column with the
variation of each measure: the change since the baseline analysis, or for
new_violations the number of open issues created after it.

Examples:
  # Every measure of a project
  trendline measures org.apache.struts:struts

  # Violation trends of one module
  trendline measures org.apache.struts:struts-core --metrics violations,new_violations --trends`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			return core.ExecuteMeasures(rootCtx, cfg, st, args[0], out)
		})
	},
}

// issuesCmd lists the issues of a project.
var issuesCmd = &cobra.Command{
	Use:   "issues <project>",
	Short: "List the stored issues of a project.",
	Long: `List every stored issue of a project (key or uuid), open or resolved.

Examples:
  trendline issues org.apache.struts:struts
  trendline issues org.apache.struts:struts --output csv --output-file issues.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			return core.ExecuteIssues(rootCtx, cfg, st, args[0], out)
		})
	},
}

// changelogCmd shows the audit trail of an issue.
var changelogCmd = &cobra.Command{
	Use:   "changelog <issue-key>",
	Short: "Show the field changes and comments of an issue.",
	Long: `Show the audit trail of one issue, oldest first: every field change with its
old and new value and every comment, with who made it and when.

Examples:
  trendline changelog ABCDE`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			return core.ExecuteChangelog(rootCtx, cfg, st, args[0], out)
		})
	},
}

// periodsCmd shows the analysis history of a project.
var periodsCmd = &cobra.Command{
	Use:   "periods <project>",
	Short: "Show the analysis history of a project with its resolved periods.",
	Long: `List every analysis of a project, oldest first, with the baseline analysis
each differential period resolved to.

Examples:
  trendline periods org.apache.struts:struts --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			return core.ExecutePeriods(rootCtx, cfg, st, args[0], out)
		})
	},
}
