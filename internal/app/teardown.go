// Where: dlq-reconciler/internal/app/teardown.go
// What: The teardown command handler.
// Why: Bulk-delete managed DLQs with the same config resolution as reconcile.
package app

import (
	"context"
	"io"

	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/config"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/ui"
)

func runTeardown(cli CLI, deps Dependencies, out, errOut io.Writer) int {
	cfg, err := deps.LoadConfig(cli.Config)
	if err != nil {
		return exitWithError(errOut, err)
	}
	applyTeardownFlags(&cfg, cli.Teardown)
	cfg.Action = config.ActionDeleteAllForBus
	if err := cfg.Validate(); err != nil {
		return exitWithError(errOut, err)
	}

	rec, err := buildReconciler(cli, deps, out, errOut)
	if err != nil {
		return exitWithError(errOut, err)
	}

	summary, err := rec.Teardown(context.Background(), cfg.Input())
	if err != nil {
		return exitWithError(errOut, err)
	}
	if cli.JSON {
		return printJSON(out, errOut, summary)
	}

	console := ui.New(out)
	console.Item("Queues deleted", summary.DeletedCount)
	console.Item("Rules processed", summary.RulesProcessed)
	return 0
}

func applyTeardownFlags(cfg *config.Config, cmd TeardownCmd) {
	if cmd.BusName != "" {
		cfg.BusName = cmd.BusName
	}
	if cmd.BusARN != "" {
		cfg.BusARN = cmd.BusARN
	}
	if cmd.EnvPrefix != "" {
		cfg.EnvPrefix = cmd.EnvPrefix
	}
	if len(cmd.SkipRules) > 0 {
		cfg.SkipRules = cmd.SkipRules
	}
	if cmd.DryRun {
		cfg.DryRun = true
	}
	if cmd.Force {
		cfg.ForceDelete = true
	}
}
