// Where: dlq-reconciler/internal/reconciler/directory.go
// What: Paginated enumeration of rules and targets on a bus.
// Why: Every higher-level operation reads state through these two lists.
package reconciler

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
)

// listRules returns every rule on the bus, accumulated across pages in
// collaborator order. Listing failures propagate: a pass cannot run
// without a full rule inventory.
func (r *Reconciler) listRules(ctx context.Context, busName string) ([]ebtypes.Rule, error) {
	var rules []ebtypes.Rule
	var nextToken *string
	for {
		out, err := r.events.ListRules(ctx, &eventbridge.ListRulesInput{
			EventBusName: aws.String(busName),
			NextToken:    nextToken,
		})
		if err != nil {
			return nil, err
		}
		rules = append(rules, out.Rules...)
		nextToken = out.NextToken
		if nextToken == nil {
			break
		}
	}
	return rules, nil
}

// listTargets returns every target of one rule, accumulated across pages.
func (r *Reconciler) listTargets(ctx context.Context, ruleName, busName string) ([]ebtypes.Target, error) {
	var targets []ebtypes.Target
	var nextToken *string
	for {
		out, err := r.events.ListTargetsByRule(ctx, &eventbridge.ListTargetsByRuleInput{
			Rule:         aws.String(ruleName),
			EventBusName: aws.String(busName),
			NextToken:    nextToken,
		})
		if err != nil {
			return nil, err
		}
		targets = append(targets, out.Targets...)
		nextToken = out.NextToken
		if nextToken == nil {
			break
		}
	}
	return targets, nil
}

// isManagedRule reports whether a platform service owns the rule. Managed
// rules are never reconciled.
func isManagedRule(rule ebtypes.Rule) bool {
	managedBy := aws.ToString(rule.ManagedBy)
	return managedBy != "" && strings.Contains(strings.ToLower(managedBy), "aws")
}
