package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couy-victor/portal-academico-ai/internal/nlsql"
)

var (
	askRA      string
	askPeriodo string
	askIntent  string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a natural language question about your academic data",
	Long: `Compile a natural language question into SQL and execute it against the
academic database. The student's RA is bound as a query parameter.

Examples:
  portal-academico ask --ra 12345 "Quais disciplinas estou cursando?"
  portal-academico ask --ra 12345 --intent consultar_notas "Quais são minhas notas?"
  portal-academico ask --ra 12345 --json "Quantas faltas eu tenho em Cálculo?"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		question := strings.Join(args, " ")

		app, cleanup, err := InitApp(configDir)
		if err != nil {
			HandleError(err, "Failed to initialize application")
		}
		defer cleanup()

		callerContext := map[string]string{"RA": askRA}
		if askPeriodo != "" {
			callerContext["periodo_atual"] = askPeriodo
		}

		result, err := app.Answer(context.Background(), nlsql.Request{
			Question:      question,
			CallerContext: callerContext,
			Intent:        askIntent,
		})
		if err != nil {
			HandleError(err, "Failed to answer question")
		}

		if askJSON {
			output, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				HandleError(err, "Failed to encode JSON")
			}
			fmt.Println(string(output))
			return
		}

		printResult(result)
	},
}

func printResult(result *nlsql.Result) {
	if result.Failure != nil {
		fmt.Printf("%s (%s)\n", result.Failure.Summary, result.Failure.Category)
		return
	}
	if result.SQL != "" {
		fmt.Printf("SQL: %s\n\n", result.SQL)
	}
	if len(result.Rows) == 0 {
		fmt.Println("Nenhum resultado encontrado.")
		return
	}
	for i, row := range result.Rows {
		fmt.Printf("--- %d ---\n", i+1)
		for col, val := range row {
			fmt.Printf("  %s: %v\n", col, val)
		}
	}
	if result.FromFallback {
		fmt.Println("\n(resposta obtida via consulta padrão)")
	}
}

func init() {
	askCmd.Flags().StringVar(&askRA, "ra", "", "Student registration number (required)")
	askCmd.Flags().StringVar(&askPeriodo, "periodo", "", "Current academic period, e.g. 2026-2")
	askCmd.Flags().StringVar(&askIntent, "intent", "", "Question intent for fallback templates (e.g. consultar_notas)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Output the full result as JSON")
	_ = askCmd.MarkFlagRequired("ra")
	rootCmd.AddCommand(askCmd)
}
