// Where: dlq-reconciler/internal/reconciler/policy.go
// What: Queue access policy merge for EventBridge delivery grants.
// Why: The policy document must never accumulate duplicate grants across runs.
package reconciler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const (
	eventsServicePrincipal = "events.amazonaws.com"
	sendMessageAction      = "sqs:SendMessage"
	policyVersion          = "2012-10-17"
	arnEqualsOperator      = "ArnEquals"
	sourceArnConditionKey  = "aws:SourceArn"
)

// policyDocument keeps statements as raw JSON so statements this system did
// not write survive a round-trip untouched. An unparsable document is
// replaced by an empty one; that failure mode is accepted, not fatal.
type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []json.RawMessage `json:"Statement"`
}

type policyStatement struct {
	Sid       string                       `json:"Sid,omitempty"`
	Effect    string                       `json:"Effect"`
	Principal policyPrincipal              `json:"Principal"`
	Action    string                       `json:"Action"`
	Resource  string                       `json:"Resource,omitempty"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

type policyPrincipal struct {
	Service string `json:"Service,omitempty"`
}

// ensureAuthorized grants EventBridge permission to send failure messages
// from one rule to the queue. The grant is appended only when no statement
// with the same principal, action, and source-rule condition exists, so
// repeated runs never duplicate it. Collaborator errors are reported as
// warnings and yield false.
func (r *Reconciler) ensureAuthorized(ctx context.Context, queueURL, queueARN, ruleARN string) bool {
	doc := r.fetchPolicy(ctx, queueURL)

	for _, raw := range doc.Statement {
		if statementGrantsRule(raw, ruleARN) {
			return false
		}
	}

	desired := policyStatement{
		Sid:       "AllowEventBridgeSend-" + ruleNameFromARN(ruleARN),
		Effect:    "Allow",
		Principal: policyPrincipal{Service: eventsServicePrincipal},
		Action:    sendMessageAction,
		Resource:  queueARN,
		Condition: map[string]map[string]string{
			arnEqualsOperator: {sourceArnConditionKey: ruleARN},
		},
	}
	raw, err := json.Marshal(desired)
	if err != nil {
		r.console.Warn(fmt.Sprintf("Failed to encode policy statement for %s: %v", queueNameFromARN(queueARN), err))
		return false
	}
	doc.Statement = append(doc.Statement, raw)

	encoded, err := json.Marshal(doc)
	if err != nil {
		r.console.Warn(fmt.Sprintf("Failed to encode policy for %s: %v", queueNameFromARN(queueARN), err))
		return false
	}
	_, err = r.queues.SetQueueAttributes(ctx, &sqs.SetQueueAttributesInput{
		QueueUrl:   aws.String(queueURL),
		Attributes: map[string]string{string(sqstypes.QueueAttributeNamePolicy): string(encoded)},
	})
	if err != nil {
		r.console.Warn(fmt.Sprintf("Failed to update policy for %s: %v", queueNameFromARN(queueARN), err))
		return false
	}
	return true
}

// fetchPolicy reads the queue's current policy. A missing attribute, a
// read failure, or an unparsable document all yield an empty policy.
func (r *Reconciler) fetchPolicy(ctx context.Context, queueURL string) policyDocument {
	empty := policyDocument{Version: policyVersion}

	out, err := r.queues.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(queueURL),
		AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNamePolicy},
	})
	if err != nil {
		return empty
	}
	raw := out.Attributes[string(sqstypes.QueueAttributeNamePolicy)]
	if raw == "" {
		return empty
	}

	var doc policyDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return empty
	}
	if doc.Version == "" {
		doc.Version = policyVersion
	}
	return doc
}

// statementGrantsRule reports whether a statement already authorizes
// EventBridge to send for the given rule. Statements that do not decode
// into the expected shape never match.
func statementGrantsRule(raw json.RawMessage, ruleARN string) bool {
	var st policyStatement
	if err := json.Unmarshal(raw, &st); err != nil {
		return false
	}
	return st.Principal.Service == eventsServicePrincipal &&
		st.Action == sendMessageAction &&
		st.Condition[arnEqualsOperator][sourceArnConditionKey] == ruleARN
}
