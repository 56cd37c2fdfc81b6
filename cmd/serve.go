package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	serveAddr string
	serveCmd  = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Endpoints:
  POST /api/ask     answer a natural language question
  GET  /api/schema  current schema snapshot (?refresh=1 to reload)
  GET  /api/health  database reachability`,
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (defaults to the configured listen_addr)")
}

func runServe() {
	app, cleanup, err := InitApp(configDir)
	if err != nil {
		HandleError(err, "Failed to initialize application")
	}
	defer cleanup()

	fmt.Printf("Starting Portal Academico API server...\n")

	if err := app.Serve(serveAddr); err != nil {
		HandleError(err, "Server failed")
	}
}
