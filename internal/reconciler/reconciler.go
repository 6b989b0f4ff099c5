// Where: dlq-reconciler/internal/reconciler/reconciler.go
// What: Reconciler construction and collaborator interfaces.
// Why: Inject service clients explicitly instead of process-wide handles.
package reconciler

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/ui"
)

// EventBridgeAPI is the rule/target registry collaborator. It is satisfied
// by *eventbridge.Client and by test fakes.
type EventBridgeAPI interface {
	ListRules(ctx context.Context, params *eventbridge.ListRulesInput, optFns ...func(*eventbridge.Options)) (*eventbridge.ListRulesOutput, error)
	ListTargetsByRule(ctx context.Context, params *eventbridge.ListTargetsByRuleInput, optFns ...func(*eventbridge.Options)) (*eventbridge.ListTargetsByRuleOutput, error)
	PutTargets(ctx context.Context, params *eventbridge.PutTargetsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutTargetsOutput, error)
}

// SQSAPI is the queue service collaborator. It is satisfied by *sqs.Client
// and by test fakes.
type SQSAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
	SetQueueAttributes(ctx context.Context, params *sqs.SetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.SetQueueAttributesOutput, error)
	CreateQueue(ctx context.Context, params *sqs.CreateQueueInput, optFns ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error)
	DeleteQueue(ctx context.Context, params *sqs.DeleteQueueInput, optFns ...func(*sqs.Options)) (*sqs.DeleteQueueOutput, error)
	ListQueues(ctx context.Context, params *sqs.ListQueuesInput, optFns ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error)
}

// QueueSettings is the fixed attribute set applied to every created DLQ.
type QueueSettings struct {
	RetentionSeconds         int
	VisibilityTimeoutSeconds int
	MaxMessageSizeBytes      int
	SSEEnabled               bool
}

// Input carries one invocation's fully-resolved configuration.
type Input struct {
	BusName     string
	BusARN      string
	Tags        map[string]string
	Settings    QueueSettings
	DryRun      bool
	ForceDelete bool
	EnvPrefix   string
	SkipRules   []string
}

// Reconciler converges DLQ state for one event bus per invocation.
type Reconciler struct {
	events  EventBridgeAPI
	queues  SQSAPI
	console *ui.Console
}

// New creates a Reconciler with the given collaborators. A nil console
// falls back to stdout.
func New(events EventBridgeAPI, queues SQSAPI, console *ui.Console) *Reconciler {
	if console == nil {
		console = ui.New(os.Stdout)
	}
	return &Reconciler{events: events, queues: queues, console: console}
}

func skipSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
