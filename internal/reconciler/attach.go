// Where: dlq-reconciler/internal/reconciler/attach.go
// What: Attach a DLQ to the targets of a rule.
// Why: Republish targets with dead-letter config while preserving every other field.
package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
)

// emptyARNSentinel marks pseudo-targets that carry no real destination.
const emptyARNSentinel = "arn:aws:events:::"

// attachToTargets rewrites every eligible target of the rule with the DLQ
// attached and returns the number of targets modified. Archive
// pseudo-targets, sentinel destinations, and targets that already carry a
// dead-letter reference are skipped. Collaborator errors are reported as
// warnings and yield zero; attachment is best-effort.
func (r *Reconciler) attachToTargets(ctx context.Context, ruleName, busName, queueARN string) int {
	targets, err := r.listTargets(ctx, ruleName, busName)
	if err != nil {
		r.console.Warn(fmt.Sprintf("Failed to list targets for rule %s: %v", ruleName, err))
		return 0
	}

	var toUpdate []ebtypes.Target
	for _, target := range targets {
		if !targetAttachable(target) {
			continue
		}
		clone := cloneTargetFields(target)
		clone.DeadLetterConfig = &ebtypes.DeadLetterConfig{Arn: aws.String(queueARN)}
		toUpdate = append(toUpdate, clone)
	}
	if len(toUpdate) == 0 {
		return 0
	}

	_, err = r.events.PutTargets(ctx, &eventbridge.PutTargetsInput{
		Rule:         aws.String(ruleName),
		EventBusName: aws.String(busName),
		Targets:      toUpdate,
	})
	if err != nil {
		r.console.Warn(fmt.Sprintf("Failed to attach DLQ to rule %s: %v", ruleName, err))
		return 0
	}
	return len(toUpdate)
}

// targetAttachable reports whether a DLQ may be attached to the target.
func targetAttachable(target ebtypes.Target) bool {
	arn := aws.ToString(target.Arn)
	if arn == "" || arn == emptyARNSentinel || strings.Contains(arn, ":archive/") {
		return false
	}
	if target.DeadLetterConfig != nil && aws.ToString(target.DeadLetterConfig.Arn) != "" {
		return false
	}
	return true
}

// cloneTargetFields copies the fields a target rewrite preserves: identity,
// destination, and the per-destination-type parameter blocks. The
// dead-letter reference is deliberately left unset; callers decide whether
// the clone carries one.
func cloneTargetFields(target ebtypes.Target) ebtypes.Target {
	return ebtypes.Target{
		Id:                     target.Id,
		Arn:                    target.Arn,
		RoleArn:                target.RoleArn,
		Input:                  target.Input,
		InputPath:              target.InputPath,
		InputTransformer:       target.InputTransformer,
		KinesisParameters:      target.KinesisParameters,
		RunCommandParameters:   target.RunCommandParameters,
		EcsParameters:          target.EcsParameters,
		BatchParameters:        target.BatchParameters,
		SqsParameters:          target.SqsParameters,
		HttpParameters:         target.HttpParameters,
		RedshiftDataParameters: target.RedshiftDataParameters,
		RetryPolicy:            target.RetryPolicy,
	}
}
