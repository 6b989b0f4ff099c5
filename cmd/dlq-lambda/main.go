// Where: dlq-reconciler/cmd/dlq-lambda/main.go
// What: Lambda entrypoint.
// Why: Run scheduled reconciliation passes with env-derived configuration.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/config"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/constants"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/reconciler"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/ui"
)

// event is the optional invocation payload. Set fields override the
// environment-derived configuration.
type event struct {
	Action      string   `json:"action"`
	DryRun      *bool    `json:"dryRun"`
	ForceDelete *bool    `json:"forceDelete"`
	SkipRules   []string `json:"skipRules"`
}

// response wraps the pass summary for the caller.
type response struct {
	Action string `json:"action"`
	Result any    `json:"result"`
	DryRun bool   `json:"dry_run"`
}

func handler(ctx context.Context, evt event) (response, error) {
	cfg, err := config.Load("")
	if err != nil {
		return response{}, err
	}
	if evt.Action != "" {
		cfg.Action = evt.Action
	}
	if evt.DryRun != nil {
		cfg.DryRun = *evt.DryRun
	}
	if evt.ForceDelete != nil {
		cfg.ForceDelete = *evt.ForceDelete
	}
	if evt.SkipRules != nil {
		cfg.SkipRules = evt.SkipRules
	}
	if err := cfg.Validate(); err != nil {
		return response{}, err
	}

	factory := reconciler.NewClientFactory(os.Getenv(constants.EnvAWSEndpoint))
	events, err := factory.EventBridge(ctx)
	if err != nil {
		return response{}, fmt.Errorf("build eventbridge client: %w", err)
	}
	queues, err := factory.SQS(ctx)
	if err != nil {
		return response{}, fmt.Errorf("build sqs client: %w", err)
	}
	rec := reconciler.New(events, queues, ui.New(os.Stdout))

	if cfg.Action == config.ActionDeleteAllForBus {
		summary, err := rec.Teardown(ctx, cfg.Input())
		if err != nil {
			return response{}, err
		}
		return response{Action: cfg.Action, Result: summary, DryRun: cfg.DryRun}, nil
	}

	summary, err := rec.Reconcile(ctx, cfg.Input())
	if err != nil {
		return response{}, err
	}
	return response{Action: config.ActionReconcile, Result: summary, DryRun: cfg.DryRun}, nil
}

func main() {
	lambda.Start(handler)
}
