// Where: dlq-reconciler/internal/reconciler/naming.go
// What: DLQ name derivation and rule-name recovery.
// Why: Keep the queue<->rule naming relationship in one auditable place.
package reconciler

import "strings"

const (
	// dlqSuffix terminates every queue name this system manages.
	dlqSuffix = "-rule-dlq"

	// maxQueueNameLength is the SQS queue name limit.
	maxQueueNameLength = 80
)

// DeriveDLQName builds the queue name for a rule, optionally prefixed with
// an environment name: {envPrefix}-{ruleName}-rule-dlq. The rule name is
// truncated from the tail so the result never exceeds 80 characters.
// Truncation is lossy: two long rule names sharing a prefix can collide.
// That is an accepted limitation of the scheme.
func DeriveDLQName(ruleName, envPrefix string) string {
	if envPrefix != "" {
		maxRuleLen := maxQueueNameLength - len(envPrefix) - 1 - len(dlqSuffix)
		if len(ruleName) > maxRuleLen {
			ruleName = ruleName[:maxRuleLen]
		}
		return envPrefix + "-" + ruleName + dlqSuffix
	}

	maxRuleLen := maxQueueNameLength - len(dlqSuffix)
	if len(ruleName) > maxRuleLen {
		ruleName = ruleName[:maxRuleLen]
	}
	return ruleName + dlqSuffix
}

// RecoverRuleName extracts the candidate rule name from a queue name of the
// form {prefix}-{ruleName}-rule-dlq. It returns false when the name does not
// look like a managed DLQ: the final two hyphen-delimited segments are not
// "rule","dlq", there are fewer than four segments, or no prefix segment
// precedes the rule name. Requiring the pair at the tail keeps queues with
// trailing segments (backups, copies) out of orphan cleanup's reach.
//
// The scan assumes the environment prefix is a single segment; that
// assumption is carried over as a documented limitation.
func RecoverRuleName(queueName string) (string, bool) {
	if !strings.HasSuffix(queueName, dlqSuffix) {
		return "", false
	}
	if strings.Count(queueName, "-") < 3 {
		return "", false
	}

	parts := strings.Split(queueName, "-")
	return strings.Join(parts[1:len(parts)-2], "-"), true
}
