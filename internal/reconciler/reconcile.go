// Where: dlq-reconciler/internal/reconciler/reconcile.go
// What: One full reconciliation pass over a bus.
// Why: Per rule, converge queue + policy + attachment; then clean up orphans.
package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Reconcile runs one synchronous pass over every rule on the bus. Managed
// and explicitly skipped rules are counted but not touched. Listing
// failures abort the pass; per-rule mutation failures do not.
func (r *Reconciler) Reconcile(ctx context.Context, in Input) (*Summary, error) {
	r.console.Header("🔄", fmt.Sprintf("Reconciling %s (dry_run=%v)", in.BusName, in.DryRun))

	rules, err := r.listRules(ctx, in.BusName)
	if err != nil {
		return nil, fmt.Errorf("list rules for bus %s: %w", in.BusName, err)
	}

	skip := skipSet(in.SkipRules)
	summary := &Summary{
		RulesTotal: len(rules),
		Operations: []PerRuleOp{},
	}

	for _, rule := range rules {
		ruleName := aws.ToString(rule.Name)
		if isManagedRule(rule) {
			summary.RulesSkipped++
			continue
		}
		if _, ok := skip[ruleName]; ok {
			summary.RulesSkipped++
			continue
		}

		op, err := r.ensureRule(ctx, ruleName, in)
		if err != nil {
			return nil, err
		}
		summary.Operations = append(summary.Operations, op)

		if op.QueueCreated {
			summary.QueuesCreated++
		}
		if op.PolicyUpdated {
			summary.PoliciesUpdated++
		}
		summary.TargetsAttached += op.TargetsUpdated
	}

	summary.OrphanedCleanup = r.cleanupOrphans(ctx, rules, in.DryRun)

	r.console.Success(fmt.Sprintf("Complete: %d created, %d attached, %d skipped, %d orphaned",
		summary.QueuesCreated, summary.TargetsAttached, summary.RulesSkipped,
		len(summary.OrphanedCleanup.OrphanedQueues)))
	return summary, nil
}

// ensureRule converges one rule: find-or-create its DLQ, authorize the bus,
// attach to eligible targets. In dry-run mode a simulated outcome is
// returned without any collaborator call. Queue lookup and creation errors
// propagate; policy and attachment follow their own best-effort contracts.
func (r *Reconciler) ensureRule(ctx context.Context, ruleName string, in Input) (PerRuleOp, error) {
	op := PerRuleOp{
		RuleName: ruleName,
		DLQName:  DeriveDLQName(ruleName, in.EnvPrefix),
		Status:   StatusSkipped,
	}

	if in.DryRun {
		op.QueueCreated = true
		op.PolicyUpdated = true
		op.TargetsUpdated = 1
		op.Status = StatusWouldCreate
		r.console.Info(fmt.Sprintf("[DRY] %s -> %s", ruleName, op.DLQName))
		return op, nil
	}

	if r.ruleHasLiveDLQ(ctx, ruleName, in.BusName) {
		op.Reason = "dlq_exists"
		return op, nil
	}

	url, arn, err := r.findQueue(ctx, op.DLQName)
	if err != nil {
		return op, fmt.Errorf("look up queue %s: %w", op.DLQName, err)
	}
	if url == "" {
		url, arn, err = r.createQueue(ctx, op.DLQName, in.Settings, in.Tags)
		if err != nil {
			return op, fmt.Errorf("create queue %s: %w", op.DLQName, err)
		}
		op.QueueCreated = true
		r.console.Success(fmt.Sprintf("Created: %s -> %s", ruleName, op.DLQName))
	} else {
		r.console.Info(fmt.Sprintf("Exists: %s -> %s", ruleName, op.DLQName))
	}

	ruleARN, err := RuleARN(in.BusARN, ruleName)
	if err != nil {
		return op, err
	}
	op.PolicyUpdated = r.ensureAuthorized(ctx, url, arn, ruleARN)
	op.TargetsUpdated = r.attachToTargets(ctx, ruleName, in.BusName, arn)

	if op.QueueCreated || op.TargetsUpdated > 0 {
		op.Status = StatusUpdated
	} else {
		op.Status = StatusNoChange
	}
	return op, nil
}

// ruleHasLiveDLQ reports whether any target of the rule references a DLQ
// whose queue still exists. Collaborator errors yield false so the
// reconcile path re-provisions rather than silently skipping.
func (r *Reconciler) ruleHasLiveDLQ(ctx context.Context, ruleName, busName string) bool {
	targets, err := r.listTargets(ctx, ruleName, busName)
	if err != nil {
		return false
	}
	for _, target := range targets {
		if target.DeadLetterConfig == nil {
			continue
		}
		dlqARN := aws.ToString(target.DeadLetterConfig.Arn)
		if dlqARN == "" {
			continue
		}
		url, _, err := r.findQueue(ctx, queueNameFromARN(dlqARN))
		if err == nil && url != "" {
			return true
		}
	}
	return false
}

// dlqCandidate is a queue whose name matches the DLQ naming convention.
type dlqCandidate struct {
	name     string
	url      string
	ruleName string
}

// cleanupOrphans deletes DLQs whose recovered rule name is no longer a
// live, non-managed rule on the bus. Dry-run skips the pass entirely: it
// would require a queue listing the dry-run contract forbids, so no
// would_delete entries are produced here.
func (r *Reconciler) cleanupOrphans(ctx context.Context, rules []ebtypes.Rule, dryRun bool) OrphanCleanup {
	result := OrphanCleanup{OrphanedQueues: []OrphanedQueue{}}
	if dryRun {
		return result
	}

	live := make(map[string]struct{}, len(rules))
	for _, rule := range rules {
		if !isManagedRule(rule) {
			live[aws.ToString(rule.Name)] = struct{}{}
		}
	}

	candidates, err := r.listDLQCandidates(ctx)
	if err != nil {
		r.console.Warn(fmt.Sprintf("Failed to list queues for orphan cleanup: %v", err))
		return result
	}

	for _, candidate := range candidates {
		if _, ok := live[candidate.ruleName]; ok {
			continue
		}
		result.OrphanedQueues = append(result.OrphanedQueues, OrphanedQueue{
			QueueName: candidate.name,
			RuleName:  candidate.ruleName,
			Action:    ActionDeleted,
		})
		if _, err := r.queues.DeleteQueue(ctx, &sqs.DeleteQueueInput{QueueUrl: aws.String(candidate.url)}); err != nil {
			r.console.Warn(fmt.Sprintf("Failed to delete %s: %v", candidate.name, err))
			continue
		}
		result.DeletedCount++
		r.console.Header("🗑️", "Deleted orphaned: "+candidate.name)
	}
	return result
}

// listDLQCandidates enumerates every queue whose name recovers to a rule
// name under the naming convention.
func (r *Reconciler) listDLQCandidates(ctx context.Context) ([]dlqCandidate, error) {
	var candidates []dlqCandidate
	var nextToken *string
	for {
		out, err := r.queues.ListQueues(ctx, &sqs.ListQueuesInput{NextToken: nextToken})
		if err != nil {
			return nil, err
		}
		for _, url := range out.QueueUrls {
			name := url[strings.LastIndex(url, "/")+1:]
			ruleName, ok := RecoverRuleName(name)
			if !ok {
				continue
			}
			candidates = append(candidates, dlqCandidate{name: name, url: url, ruleName: ruleName})
		}
		nextToken = out.NextToken
		if nextToken == nil {
			break
		}
	}
	return candidates, nil
}
