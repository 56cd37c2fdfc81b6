package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	schemaRefresh bool
	schemaJSON    bool
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the cached database schema snapshot",
	Long: `Show the schema snapshot the SQL writer works from. The snapshot is
cached with a TTL; --refresh forces a reload from the database.

Examples:
  portal-academico schema
  portal-academico schema --refresh --json`,
	Run: func(cmd *cobra.Command, args []string) {
		app, cleanup, err := InitApp(configDir)
		if err != nil {
			HandleError(err, "Failed to initialize application")
		}
		defer cleanup()

		ctx := context.Background()
		load := app.Schema
		if schemaRefresh {
			load = app.RefreshSchema
		}
		snap, err := load(ctx)
		if err != nil {
			HandleError(err, "Failed to load schema")
		}

		if schemaJSON {
			output, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				HandleError(err, "Failed to encode JSON")
			}
			fmt.Println(string(output))
			return
		}

		if snap.Builtin {
			fmt.Println("(builtin snapshot: live introspection unavailable)")
		}
		fmt.Println(snap.Format())
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaRefresh, "refresh", false, "Force a reload from the database")
	schemaCmd.Flags().BoolVar(&schemaJSON, "json", false, "Output the snapshot as JSON")
	rootCmd.AddCommand(schemaCmd)
}
