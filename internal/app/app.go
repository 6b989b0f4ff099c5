// Where: dlq-reconciler/internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/config"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/reconciler"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/version"
)

// Dependencies holds all injected dependencies required for CLI command
// execution. This structure enables dependency injection for testing and
// allows swapping the AWS client construction.
type Dependencies struct {
	Out        io.Writer
	Err        io.Writer
	NewFactory func(endpoint string) reconciler.ClientFactory
	LoadConfig func(path string) (config.Config, error)
}

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	Config   string `short:"c" help:"Path to reconciler config file"`
	EnvFile  string `name:"env-file" help:"Path to .env file"`
	Endpoint string `help:"AWS endpoint override for local stacks"`
	JSON     bool   `name:"json" help:"Print the summary as JSON"`

	Reconcile ReconcileCmd `cmd:"" help:"Ensure a DLQ per rule and clean up orphans"`
	Teardown  TeardownCmd  `cmd:"" help:"Delete every managed DLQ on the bus"`
	Version   VersionCmd   `cmd:"" help:"Show version information"`
}

type ReconcileCmd struct {
	BusName   string   `name:"bus-name" help:"Event bus name"`
	BusARN    string   `name:"bus-arn" help:"Event bus ARN"`
	EnvPrefix string   `name:"env-prefix" help:"Environment prefix for queue names"`
	SkipRules []string `name:"skip-rules" help:"Rule names to leave untouched"`
	DryRun    bool     `name:"dry-run" help:"Simulate without mutating anything"`
}

type TeardownCmd struct {
	BusName   string   `name:"bus-name" help:"Event bus name"`
	BusARN    string   `name:"bus-arn" help:"Event bus ARN"`
	EnvPrefix string   `name:"env-prefix" help:"Environment prefix for queue names"`
	SkipRules []string `name:"skip-rules" help:"Rule names to leave untouched"`
	DryRun    bool     `name:"dry-run" help:"Simulate without mutating anything"`
	Force     bool     `help:"Delete queues even when they still hold messages"`
}

type VersionCmd struct{}

// Run is the main entry point for CLI command execution. It parses the
// arguments and dispatches to the matching handler. Returns 0 on success,
// 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := deps.Err
	if errOut == nil {
		errOut = os.Stderr
	}
	if deps.NewFactory == nil {
		deps.NewFactory = reconciler.NewClientFactory
	}
	if deps.LoadConfig == nil {
		deps.LoadConfig = config.Load
	}

	cli := CLI{}
	parser, err := kong.New(&cli)
	if err != nil {
		return exitWithError(errOut, err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(errOut, err)
	}

	loadEnvFile(cli.EnvFile, errOut)

	switch ctx.Command() {
	case "reconcile":
		return runReconcile(cli, deps, out, errOut)
	case "teardown":
		return runTeardown(cli, deps, out, errOut)
	case "version":
		fmt.Fprintln(out, version.GetVersion())
		return 0
	}

	fmt.Fprintln(errOut, "unknown command")
	return 1
}

// loadEnvFile loads the given .env file, or ./.env when present.
func loadEnvFile(path string, errOut io.Writer) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(errOut, "Warning: failed to load env file %s: %v\n", path, err)
		}
		return
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(errOut, "Warning: failed to load .env: %v\n", err)
		}
	}
}

func exitWithError(out io.Writer, err error) int {
	fmt.Fprintln(out, err)
	return 1
}
