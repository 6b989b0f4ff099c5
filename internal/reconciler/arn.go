// Where: dlq-reconciler/internal/reconciler/arn.go
// What: ARN derivation and parsing helpers.
// Why: Replace ad hoc string splitting with explicit parse functions.
package reconciler

import (
	"fmt"
	"strings"
)

// RuleARN derives the ARN of a rule on the given event bus:
// arn:aws:events:{region}:{account}:rule/{busName}/{ruleName}.
// A bus ARN that does not carry region and account segments is malformed.
func RuleARN(busARN, ruleName string) (string, error) {
	region, account, err := splitBusARN(busARN)
	if err != nil {
		return "", err
	}
	busName := busARN[strings.LastIndex(busARN, "/")+1:]
	return fmt.Sprintf("arn:aws:events:%s:%s:rule/%s/%s", region, account, busName, ruleName), nil
}

// ValidateBusARN reports whether the configured bus ARN can be used to
// derive rule ARNs. Called at configuration time so a malformed ARN fails
// before any reconciliation work begins.
func ValidateBusARN(busARN string) error {
	_, _, err := splitBusARN(busARN)
	return err
}

func splitBusARN(busARN string) (region, account string, err error) {
	parts := strings.Split(busARN, ":")
	if len(parts) < 6 || parts[0] != "arn" {
		return "", "", fmt.Errorf("malformed event bus arn: %q", busARN)
	}
	region, account = parts[3], parts[4]
	if region == "" || account == "" {
		return "", "", fmt.Errorf("event bus arn %q is missing region or account", busARN)
	}
	return region, account, nil
}

// queueNameFromARN returns the final segment of an SQS queue ARN.
func queueNameFromARN(queueARN string) string {
	return queueARN[strings.LastIndex(queueARN, ":")+1:]
}

// ruleNameFromARN returns the final segment of a rule ARN.
func ruleNameFromARN(ruleARN string) string {
	return ruleARN[strings.LastIndex(ruleARN, "/")+1:]
}
