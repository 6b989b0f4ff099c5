// Where: dlq-reconciler/internal/reconciler/fake_aws_test.go
// What: In-memory EventBridge and SQS fakes shared by the package tests.
// Why: Exercise the reconciler against stateful collaborators without AWS.
package reconciler

import (
	"context"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const (
	testBusName = "core-bus"
	testBusARN  = "arn:aws:events:eu-west-1:123456789012:event-bus/core-bus"
)

type fakeEventBridge struct {
	rulePages   [][]ebtypes.Rule
	targetPages map[string][][]ebtypes.Target
	putCalls    []*eventbridge.PutTargetsInput

	errListRules   error
	errListTargets error
	errPutTargets  error
}

func (f *fakeEventBridge) ListRules(_ context.Context, params *eventbridge.ListRulesInput, _ ...func(*eventbridge.Options)) (*eventbridge.ListRulesOutput, error) {
	if f.errListRules != nil {
		return nil, f.errListRules
	}
	idx := pageIndex(params.NextToken)
	out := &eventbridge.ListRulesOutput{}
	if idx < len(f.rulePages) {
		out.Rules = f.rulePages[idx]
	}
	if idx+1 < len(f.rulePages) {
		out.NextToken = aws.String(strconv.Itoa(idx + 1))
	}
	return out, nil
}

func (f *fakeEventBridge) ListTargetsByRule(_ context.Context, params *eventbridge.ListTargetsByRuleInput, _ ...func(*eventbridge.Options)) (*eventbridge.ListTargetsByRuleOutput, error) {
	if f.errListTargets != nil {
		return nil, f.errListTargets
	}
	pages := f.targetPages[aws.ToString(params.Rule)]
	idx := pageIndex(params.NextToken)
	out := &eventbridge.ListTargetsByRuleOutput{}
	if idx < len(pages) {
		out.Targets = pages[idx]
	}
	if idx+1 < len(pages) {
		out.NextToken = aws.String(strconv.Itoa(idx + 1))
	}
	return out, nil
}

func (f *fakeEventBridge) PutTargets(_ context.Context, params *eventbridge.PutTargetsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutTargetsOutput, error) {
	if f.errPutTargets != nil {
		return nil, f.errPutTargets
	}
	f.putCalls = append(f.putCalls, params)
	// Republished targets replace the rule's single-page view so a second
	// pass observes the rewrite.
	if f.targetPages != nil {
		rule := aws.ToString(params.Rule)
		merged := mergeTargets(flattenPages(f.targetPages[rule]), params.Targets)
		f.targetPages[rule] = [][]ebtypes.Target{merged}
	}
	return &eventbridge.PutTargetsOutput{}, nil
}

func flattenPages(pages [][]ebtypes.Target) []ebtypes.Target {
	var all []ebtypes.Target
	for _, page := range pages {
		all = append(all, page...)
	}
	return all
}

func mergeTargets(existing, updates []ebtypes.Target) []ebtypes.Target {
	byID := map[string]ebtypes.Target{}
	var order []string
	for _, target := range existing {
		id := aws.ToString(target.Id)
		byID[id] = target
		order = append(order, id)
	}
	for _, target := range updates {
		id := aws.ToString(target.Id)
		if _, ok := byID[id]; !ok {
			order = append(order, id)
		}
		byID[id] = target
	}
	merged := make([]ebtypes.Target, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	return merged
}

func pageIndex(token *string) int {
	if token == nil {
		return 0
	}
	idx, _ := strconv.Atoi(*token)
	return idx
}

type fakeQueue struct {
	name  string
	url   string
	arn   string
	attrs map[string]string
	tags  map[string]string
}

type fakeSQS struct {
	queues map[string]*fakeQueue

	createCalls  []*sqs.CreateQueueInput
	setAttrCalls []*sqs.SetQueueAttributesInput
	deleteCalls  []string

	errGetURL   error
	errGetAttrs error
	errCreate   error
	errSetAttrs error
	errDelete   error
	errList     error
}

func newFakeSQS() *fakeSQS {
	return &fakeSQS{queues: map[string]*fakeQueue{}}
}

func (f *fakeSQS) addQueue(name string) *fakeQueue {
	queue := &fakeQueue{
		name:  name,
		url:   "https://sqs.eu-west-1.amazonaws.com/123456789012/" + name,
		arn:   "arn:aws:sqs:eu-west-1:123456789012:" + name,
		attrs: map[string]string{},
	}
	f.queues[name] = queue
	return queue
}

func (f *fakeSQS) byURL(url string) *fakeQueue {
	for _, queue := range f.queues {
		if queue.url == url {
			return queue
		}
	}
	return nil
}

func (f *fakeSQS) GetQueueUrl(_ context.Context, params *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	if f.errGetURL != nil {
		return nil, f.errGetURL
	}
	queue, ok := f.queues[aws.ToString(params.QueueName)]
	if !ok {
		return nil, &sqstypes.QueueDoesNotExist{}
	}
	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String(queue.url)}, nil
}

func (f *fakeSQS) GetQueueAttributes(_ context.Context, params *sqs.GetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) {
	if f.errGetAttrs != nil {
		return nil, f.errGetAttrs
	}
	queue := f.byURL(aws.ToString(params.QueueUrl))
	if queue == nil {
		return nil, &sqstypes.QueueDoesNotExist{}
	}
	attrs := map[string]string{string(sqstypes.QueueAttributeNameQueueArn): queue.arn}
	for key, value := range queue.attrs {
		attrs[key] = value
	}
	return &sqs.GetQueueAttributesOutput{Attributes: attrs}, nil
}

func (f *fakeSQS) SetQueueAttributes(_ context.Context, params *sqs.SetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.SetQueueAttributesOutput, error) {
	if f.errSetAttrs != nil {
		return nil, f.errSetAttrs
	}
	f.setAttrCalls = append(f.setAttrCalls, params)
	queue := f.byURL(aws.ToString(params.QueueUrl))
	if queue == nil {
		return nil, &sqstypes.QueueDoesNotExist{}
	}
	for key, value := range params.Attributes {
		queue.attrs[key] = value
	}
	return &sqs.SetQueueAttributesOutput{}, nil
}

func (f *fakeSQS) CreateQueue(_ context.Context, params *sqs.CreateQueueInput, _ ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error) {
	if f.errCreate != nil {
		return nil, f.errCreate
	}
	f.createCalls = append(f.createCalls, params)
	queue := f.addQueue(aws.ToString(params.QueueName))
	for key, value := range params.Attributes {
		queue.attrs[key] = value
	}
	queue.tags = params.Tags
	return &sqs.CreateQueueOutput{QueueUrl: aws.String(queue.url)}, nil
}

func (f *fakeSQS) DeleteQueue(_ context.Context, params *sqs.DeleteQueueInput, _ ...func(*sqs.Options)) (*sqs.DeleteQueueOutput, error) {
	if f.errDelete != nil {
		return nil, f.errDelete
	}
	url := aws.ToString(params.QueueUrl)
	f.deleteCalls = append(f.deleteCalls, url)
	queue := f.byURL(url)
	if queue == nil {
		return nil, &sqstypes.QueueDoesNotExist{}
	}
	delete(f.queues, queue.name)
	return &sqs.DeleteQueueOutput{}, nil
}

func (f *fakeSQS) ListQueues(_ context.Context, _ *sqs.ListQueuesInput, _ ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error) {
	if f.errList != nil {
		return nil, f.errList
	}
	var urls []string
	for _, queue := range f.queues {
		urls = append(urls, queue.url)
	}
	sort.Strings(urls)
	return &sqs.ListQueuesOutput{QueueUrls: urls}, nil
}

func queueURLFor(name string) string {
	return "https://sqs.eu-west-1.amazonaws.com/123456789012/" + name
}

func queueARNFor(name string) string {
	return "arn:aws:sqs:eu-west-1:123456789012:" + name
}
