package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/couy-victor/portal-academico-ai/internal/nlsql"
	"github.com/couy-victor/portal-academico-ai/internal/schema"
)

// App is the wired application surface the commands run against. The main
// package builds it; commands never touch the pipeline internals directly.
type App interface {
	Answer(ctx context.Context, req nlsql.Request) (*nlsql.Result, error)
	Schema(ctx context.Context) (*schema.Snapshot, error)
	RefreshSchema(ctx context.Context) (*schema.Snapshot, error)
	Serve(addr string) error
}

// InitApp is set by the main package before Execute runs.
var InitApp func(configDir string) (App, func(), error)

// HandleError prints error and exits
func HandleError(err error, message string) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, err)
	os.Exit(1)
}
