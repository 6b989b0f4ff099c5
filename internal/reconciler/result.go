// Where: dlq-reconciler/internal/reconciler/result.go
// What: Result records returned by reconcile and teardown passes.
// Why: The summary is the authoritative machine-readable outcome, independent of logs.
package reconciler

// Per-rule operation statuses.
const (
	StatusWouldCreate = "would_create"
	StatusSkipped     = "skipped"
	StatusUpdated     = "updated"
	StatusNoChange    = "no_change"
)

// Orphan and teardown actions.
const (
	ActionDeleted     = "deleted"
	ActionWouldDelete = "would_delete"
)

// PerRuleOp records what one reconcile pass did for a single rule.
type PerRuleOp struct {
	RuleName       string `json:"rule_name"`
	DLQName        string `json:"dlq_name"`
	QueueCreated   bool   `json:"queue_created"`
	PolicyUpdated  bool   `json:"policy_updated"`
	TargetsUpdated int    `json:"targets_updated"`
	Status         string `json:"status"`
	Reason         string `json:"reason"`
}

// OrphanedQueue identifies a DLQ whose originating rule no longer exists.
type OrphanedQueue struct {
	QueueName string `json:"queue_name"`
	RuleName  string `json:"rule_name"`
	Action    string `json:"action"`
}

// OrphanCleanup aggregates the orphan pass of a reconcile run.
type OrphanCleanup struct {
	OrphanedQueues []OrphanedQueue `json:"orphaned_queues"`
	DeletedCount   int             `json:"deleted_count"`
}

// Summary is the result record of one reconcile pass.
type Summary struct {
	QueuesCreated   int           `json:"queues_created"`
	PoliciesUpdated int           `json:"policies_updated"`
	TargetsAttached int           `json:"targets_attached"`
	RulesTotal      int           `json:"rules_total"`
	RulesSkipped    int           `json:"rules_skipped"`
	Operations      []PerRuleOp   `json:"operations"`
	OrphanedCleanup OrphanCleanup `json:"orphaned_cleanup"`
}

// DeletedQueue records one teardown action.
type DeletedQueue struct {
	RuleName string `json:"rule_name"`
	DLQName  string `json:"dlq_name"`
	Action   string `json:"action"`
}

// TeardownSummary is the result record of one bulk teardown pass.
type TeardownSummary struct {
	DeletedCount   int            `json:"deleted_count"`
	DeletedQueues  []DeletedQueue `json:"deleted_queues"`
	RulesProcessed int            `json:"rules_processed"`
}
