// Where: dlq-reconciler/internal/reconciler/teardown.go
// What: Bulk teardown of every managed DLQ on a bus.
// Why: Locate and safe-delete each eligible rule's queue with a per-rule action log.
package reconciler

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Teardown deletes the DLQ of every non-managed, non-skipped rule on the
// bus. Dry-run records would_delete actions without mutating anything.
// Real deletions run the full safe-delete sequence; a failed delete is
// warned about and omitted from the action log.
func (r *Reconciler) Teardown(ctx context.Context, in Input) (*TeardownSummary, error) {
	r.console.Header("🗑️", fmt.Sprintf("Cleaning up all DLQs (dry_run=%v, force=%v)", in.DryRun, in.ForceDelete))

	rules, err := r.listRules(ctx, in.BusName)
	if err != nil {
		return nil, fmt.Errorf("list rules for bus %s: %w", in.BusName, err)
	}

	skip := skipSet(in.SkipRules)
	summary := &TeardownSummary{DeletedQueues: []DeletedQueue{}}

	for _, rule := range rules {
		if isManagedRule(rule) {
			continue
		}
		summary.RulesProcessed++

		ruleName := aws.ToString(rule.Name)
		if _, ok := skip[ruleName]; ok {
			continue
		}

		dlqName := DeriveDLQName(ruleName, in.EnvPrefix)
		if in.DryRun {
			url, _, err := r.findQueue(ctx, dlqName)
			if err != nil {
				return nil, fmt.Errorf("look up queue %s: %w", dlqName, err)
			}
			if url != "" {
				summary.DeletedQueues = append(summary.DeletedQueues, DeletedQueue{
					RuleName: ruleName,
					DLQName:  dlqName,
					Action:   ActionWouldDelete,
				})
				r.console.Info("[DRY] Would delete: " + dlqName)
			}
			continue
		}

		url, arn, err := r.findQueue(ctx, dlqName)
		if err != nil {
			r.console.Warn(fmt.Sprintf("Failed to delete %s: %v", dlqName, err))
			continue
		}
		if url == "" {
			continue
		}
		if r.deleteQueue(ctx, url, arn, ruleName, in.BusName, in.ForceDelete) {
			summary.DeletedQueues = append(summary.DeletedQueues, DeletedQueue{
				RuleName: ruleName,
				DLQName:  dlqName,
				Action:   ActionDeleted,
			})
			summary.DeletedCount++
		}
	}

	r.console.Success(fmt.Sprintf("Cleanup complete: %d deleted", summary.DeletedCount))
	return summary, nil
}
