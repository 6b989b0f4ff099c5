// Where: dlq-reconciler/cmd/dlq-reconciler/main.go
// What: CLI entrypoint.
// Why: Execute reconciler commands with configured dependencies.
package main

import (
	"os"

	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:], buildDependencies()))
}
