// Where: dlq-reconciler/internal/reconciler/queue.go
// What: DLQ lookup, creation, and safe deletion.
// Why: Queue lifecycle with the message-count guard and target detachment.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// findQueue resolves a queue name to (url, arn). A non-existent queue is
// the only error translated into empty results; everything else propagates.
func (r *Reconciler) findQueue(ctx context.Context, name string) (url, arn string, err error) {
	out, err := r.queues.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
	if err != nil {
		var notFound *sqstypes.QueueDoesNotExist
		if errors.As(err, &notFound) {
			return "", "", nil
		}
		return "", "", err
	}

	url = aws.ToString(out.QueueUrl)
	attrs, err := r.queues.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       out.QueueUrl,
		AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameQueueArn},
	})
	if err != nil {
		return "", "", err
	}
	return url, attrs.Attributes[string(sqstypes.QueueAttributeNameQueueArn)], nil
}

// createQueue provisions a DLQ with the fixed attribute set and tags.
// Callers must have checked for an existing queue first.
func (r *Reconciler) createQueue(ctx context.Context, name string, settings QueueSettings, tags map[string]string) (url, arn string, err error) {
	attributes := map[string]string{
		string(sqstypes.QueueAttributeNameMessageRetentionPeriod): strconv.Itoa(settings.RetentionSeconds),
		string(sqstypes.QueueAttributeNameVisibilityTimeout):      strconv.Itoa(settings.VisibilityTimeoutSeconds),
		string(sqstypes.QueueAttributeNameMaximumMessageSize):     strconv.Itoa(settings.MaxMessageSizeBytes),
		string(sqstypes.QueueAttributeNameSqsManagedSseEnabled):   strconv.FormatBool(settings.SSEEnabled),
	}

	out, err := r.queues.CreateQueue(ctx, &sqs.CreateQueueInput{
		QueueName:  aws.String(name),
		Attributes: attributes,
		Tags:       tags,
	})
	if err != nil {
		return "", "", err
	}

	attrs, err := r.queues.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       out.QueueUrl,
		AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameQueueArn},
	})
	if err != nil {
		return "", "", err
	}
	return aws.ToString(out.QueueUrl), attrs.Attributes[string(sqstypes.QueueAttributeNameQueueArn)], nil
}

// deleteQueue removes a DLQ after detaching it from the rule's targets.
// Unless force is set, a queue still holding visible or in-flight messages
// is left alone. Collaborator errors during detach/delete are reported as
// warnings and yield false; deletion is best-effort and never aborts the
// surrounding pass.
func (r *Reconciler) deleteQueue(ctx context.Context, url, arn, ruleName, busName string, force bool) bool {
	if !force {
		if count, ok := r.approximateMessageCount(ctx, url); ok && count > 0 {
			r.console.Warn(fmt.Sprintf("Skipping %s - has %d messages (use forceDelete=true)", queueNameFromARN(arn), count))
			return false
		}
	}

	if err := r.detachFromTargets(ctx, arn, ruleName, busName); err != nil {
		r.console.Warn(fmt.Sprintf("Failed to detach %s from rule %s: %v", queueNameFromARN(arn), ruleName, err))
		return false
	}

	if _, err := r.queues.DeleteQueue(ctx, &sqs.DeleteQueueInput{QueueUrl: aws.String(url)}); err != nil {
		r.console.Warn(fmt.Sprintf("Failed to delete %s: %v", queueNameFromARN(arn), err))
		return false
	}

	r.console.Header("🗑️", "Deleted: "+queueNameFromARN(arn))
	return true
}

// approximateMessageCount sums visible and in-flight messages. A failed
// attribute read reports ok=false and the guard is skipped, matching the
// best-effort delete contract.
func (r *Reconciler) approximateMessageCount(ctx context.Context, url string) (int, bool) {
	out, err := r.queues.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl: aws.String(url),
		AttributeNames: []sqstypes.QueueAttributeName{
			sqstypes.QueueAttributeNameApproximateNumberOfMessages,
			sqstypes.QueueAttributeNameApproximateNumberOfMessagesNotVisible,
		},
	})
	if err != nil {
		return 0, false
	}

	visible, _ := strconv.Atoi(out.Attributes[string(sqstypes.QueueAttributeNameApproximateNumberOfMessages)])
	inFlight, _ := strconv.Atoi(out.Attributes[string(sqstypes.QueueAttributeNameApproximateNumberOfMessagesNotVisible)])
	return visible + inFlight, true
}

// detachFromTargets rewrites every target of the rule whose dead-letter
// reference equals queueARN, removing the reference and preserving all
// other fields, as one batch update.
func (r *Reconciler) detachFromTargets(ctx context.Context, queueARN, ruleName, busName string) error {
	targets, err := r.listTargets(ctx, ruleName, busName)
	if err != nil {
		return err
	}

	var toUpdate []ebtypes.Target
	for _, target := range targets {
		if target.DeadLetterConfig == nil || aws.ToString(target.DeadLetterConfig.Arn) != queueARN {
			continue
		}
		toUpdate = append(toUpdate, cloneTargetFields(target))
	}
	if len(toUpdate) == 0 {
		return nil
	}

	_, err = r.events.PutTargets(ctx, &eventbridge.PutTargetsInput{
		Rule:         aws.String(ruleName),
		EventBusName: aws.String(busName),
		Targets:      toUpdate,
	})
	return err
}
