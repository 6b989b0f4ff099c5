// Where: dlq-reconciler/cmd/dlq-reconciler/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"os"

	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/app"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/config"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/reconciler"
)

// buildDependencies constructs all runtime dependencies required by the CLI.
func buildDependencies() app.Dependencies {
	return app.Dependencies{
		Out:        os.Stdout,
		Err:        os.Stderr,
		NewFactory: reconciler.NewClientFactory,
		LoadConfig: config.Load,
	}
}
