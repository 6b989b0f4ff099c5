// Where: dlq-reconciler/internal/reconciler/teardown_test.go
// What: Scenario tests for bulk DLQ teardown.
// Why: Teardown must never delete a queue the guard protects.
package reconciler

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

func TestTeardownDeletesEachRuleQueue(t *testing.T) {
	events := &fakeEventBridge{
		rulePages: [][]ebtypes.Rule{{
			{Name: aws.String("order-events")},
			{Name: aws.String("audit-events")},
		}},
		targetPages: map[string][][]ebtypes.Target{
			"order-events": {},
			"audit-events": {},
		},
	}
	queues := newFakeSQS()
	queues.addQueue("prod-order-events-rule-dlq")
	queues.addQueue("prod-audit-events-rule-dlq")
	r := newTestReconciler(events, queues)

	summary, err := r.Teardown(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Teardown: %v", err)
	}

	if summary.RulesProcessed != 2 || summary.DeletedCount != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(queues.queues) != 0 {
		t.Fatalf("queues remain after teardown: %v", queues.queues)
	}
	for _, deleted := range summary.DeletedQueues {
		if deleted.Action != ActionDeleted {
			t.Fatalf("unexpected action: %+v", deleted)
		}
	}
}

func TestTeardownDryRunRecordsWouldDelete(t *testing.T) {
	events := &fakeEventBridge{
		rulePages: [][]ebtypes.Rule{{
			{Name: aws.String("order-events")},
			{Name: aws.String("no-queue-yet")},
		}},
		targetPages: map[string][][]ebtypes.Target{},
	}
	queues := newFakeSQS()
	queues.addQueue("prod-order-events-rule-dlq")
	r := newTestReconciler(events, queues)

	in := testInput()
	in.DryRun = true
	summary, err := r.Teardown(context.Background(), in)
	if err != nil {
		t.Fatalf("Teardown: %v", err)
	}

	if summary.RulesProcessed != 2 || summary.DeletedCount != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.DeletedQueues) != 1 {
		t.Fatalf("expected one would_delete entry, got %+v", summary.DeletedQueues)
	}
	entry := summary.DeletedQueues[0]
	if entry.RuleName != "order-events" || entry.Action != ActionWouldDelete {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if len(queues.deleteCalls) != 0 {
		t.Fatalf("dry-run deleted a queue")
	}
}

func TestTeardownGuardSkipsNonEmptyQueue(t *testing.T) {
	events := &fakeEventBridge{
		rulePages:   [][]ebtypes.Rule{{{Name: aws.String("order-events")}}},
		targetPages: map[string][][]ebtypes.Target{"order-events": {}},
	}
	queues := newFakeSQS()
	queue := queues.addQueue("prod-order-events-rule-dlq")
	queue.attrs[string(sqstypes.QueueAttributeNameApproximateNumberOfMessages)] = "3"
	r := newTestReconciler(events, queues)

	summary, err := r.Teardown(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Teardown: %v", err)
	}

	if summary.DeletedCount != 0 || len(summary.DeletedQueues) != 0 {
		t.Fatalf("guarded queue was recorded as deleted: %+v", summary)
	}
	if _, ok := queues.queues["prod-order-events-rule-dlq"]; !ok {
		t.Fatalf("guarded queue was deleted")
	}
}

func TestTeardownForceOverridesGuard(t *testing.T) {
	events := &fakeEventBridge{
		rulePages:   [][]ebtypes.Rule{{{Name: aws.String("order-events")}}},
		targetPages: map[string][][]ebtypes.Target{"order-events": {}},
	}
	queues := newFakeSQS()
	queue := queues.addQueue("prod-order-events-rule-dlq")
	queue.attrs[string(sqstypes.QueueAttributeNameApproximateNumberOfMessagesNotVisible)] = "12"
	r := newTestReconciler(events, queues)

	in := testInput()
	in.ForceDelete = true
	summary, err := r.Teardown(context.Background(), in)
	if err != nil {
		t.Fatalf("Teardown: %v", err)
	}

	if summary.DeletedCount != 1 {
		t.Fatalf("force delete did not remove the queue: %+v", summary)
	}
}

func TestTeardownSkipListCountsRuleButKeepsQueue(t *testing.T) {
	events := &fakeEventBridge{
		rulePages: [][]ebtypes.Rule{{
			{Name: aws.String("order-events")},
			{Name: aws.String("keep-me")},
		}},
		targetPages: map[string][][]ebtypes.Target{
			"order-events": {},
			"keep-me":      {},
		},
	}
	queues := newFakeSQS()
	queues.addQueue("prod-order-events-rule-dlq")
	queues.addQueue("prod-keep-me-rule-dlq")
	r := newTestReconciler(events, queues)

	in := testInput()
	in.SkipRules = []string{"keep-me"}
	summary, err := r.Teardown(context.Background(), in)
	if err != nil {
		t.Fatalf("Teardown: %v", err)
	}

	if summary.RulesProcessed != 2 {
		t.Fatalf("skip-listed rules still count as processed: %+v", summary)
	}
	if summary.DeletedCount != 1 {
		t.Fatalf("unexpected delete count: %+v", summary)
	}
	if _, ok := queues.queues["prod-keep-me-rule-dlq"]; !ok {
		t.Fatalf("skip-listed rule's queue was deleted")
	}
}

func TestTeardownDetachesQueueBeforeDeleting(t *testing.T) {
	queues := newFakeSQS()
	queue := queues.addQueue("prod-order-events-rule-dlq")
	events := &fakeEventBridge{
		rulePages: [][]ebtypes.Rule{{{Name: aws.String("order-events")}}},
		targetPages: map[string][][]ebtypes.Target{
			"order-events": {{
				{
					Id:               aws.String("t1"),
					Arn:              aws.String("arn:aws:lambda:eu-west-1:123456789012:function:consume"),
					DeadLetterConfig: &ebtypes.DeadLetterConfig{Arn: aws.String(queue.arn)},
				},
			}},
		},
	}
	r := newTestReconciler(events, queues)

	if _, err := r.Teardown(context.Background(), testInput()); err != nil {
		t.Fatalf("Teardown: %v", err)
	}

	if len(events.putCalls) != 1 {
		t.Fatalf("expected one detach batch, got %d", len(events.putCalls))
	}
	rewritten := events.putCalls[0].Targets[0]
	if rewritten.DeadLetterConfig != nil {
		t.Fatalf("dead-letter reference survived the detach")
	}
	if len(queues.deleteCalls) != 1 {
		t.Fatalf("queue was not deleted after detach")
	}
}
