package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configDir string
	rootCmd   = &cobra.Command{
		Use:   "portal-academico",
		Short: "Portal Academico - Natural language questions over student academic data",
		Long: `Portal Academico compiles natural language questions from students into
safe, parameterized SQL and executes it against the academic database.

Use "ask" for one-shot questions, "serve" to run the HTTP API, and
"schema" to inspect the cached database schema.

Requires the DATABASE_URL and ANTHROPIC_API_KEY environment variables.`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", "", "Directory containing config.yaml (defaults to the working directory)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
