// Where: dlq-reconciler/internal/app/reconcile.go
// What: The reconcile command handler.
// Why: Resolve config, build collaborators, run one pass, render the summary.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/config"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/reconciler"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/ui"
)

func runReconcile(cli CLI, deps Dependencies, out, errOut io.Writer) int {
	cfg, err := deps.LoadConfig(cli.Config)
	if err != nil {
		return exitWithError(errOut, err)
	}
	applyReconcileFlags(&cfg, cli.Reconcile)
	cfg.Action = config.ActionReconcile
	if err := cfg.Validate(); err != nil {
		return exitWithError(errOut, err)
	}

	rec, err := buildReconciler(cli, deps, out, errOut)
	if err != nil {
		return exitWithError(errOut, err)
	}

	summary, err := rec.Reconcile(context.Background(), cfg.Input())
	if err != nil {
		return exitWithError(errOut, err)
	}
	if cli.JSON {
		return printJSON(out, errOut, summary)
	}

	console := ui.New(out)
	console.Item("Queues created", summary.QueuesCreated)
	console.Item("Policies updated", summary.PoliciesUpdated)
	console.Item("Targets attached", summary.TargetsAttached)
	console.Item("Rules skipped", fmt.Sprintf("%d/%d", summary.RulesSkipped, summary.RulesTotal))
	console.Item("Orphans deleted", summary.OrphanedCleanup.DeletedCount)
	return 0
}

func applyReconcileFlags(cfg *config.Config, cmd ReconcileCmd) {
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
}

// buildReconciler wires the AWS collaborators and the console. In JSON
// mode progress lines go to stderr so stdout stays machine-readable.
func buildReconciler(cli CLI, deps Dependencies, out, errOut io.Writer) (*reconciler.Reconciler, error) {
	factory := deps.NewFactory(cli.Endpoint)
	ctx := context.Background()

	events, err := factory.EventBridge(ctx)
	if err != nil {
		return nil, fmt.Errorf("build eventbridge client: %w", err)
	}
	queues, err := factory.SQS(ctx)
	if err != nil {
		return nil, fmt.Errorf("build sqs client: %w", err)
	}

	consoleOut := out
	if cli.JSON {
		consoleOut = errOut
	}
	return reconciler.New(events, queues, ui.New(consoleOut)), nil
}

func printJSON(out, errOut io.Writer, value any) int {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return exitWithError(errOut, err)
	}
	fmt.Fprintln(out, string(encoded))
	return 0
}
