// Where: dlq-reconciler/internal/constants/env.go
// What: Environment variable naming constants.
// Why: Centralize environment variable names to avoid typos and inconsistencies.
package constants

const (
	// Event bus identity
	EnvEventBusName = "EVENT_BUS_NAME"
	EnvEventBusARN  = "EVENT_BUS_ARN"
	EnvEnvPrefix    = "ENV_PREFIX"

	// Run behavior
	EnvAction      = "ACTION"
	EnvDryRun      = "DRY_RUN"
	EnvForceDelete = "FORCE_DELETE"
	EnvSkipRules   = "SKIP_RULES"

	// Queue provisioning
	EnvTagsJSON             = "TAGS_JSON"
	EnvSQSRetentionSeconds  = "SQS_RETENTION_SECONDS"
	EnvSQSVisibilityTimeout = "SQS_VISIBILITY_TIMEOUT_SECONDS"
	EnvSQSMaxMessageSize    = "SQS_MAX_MESSAGE_SIZE"
	EnvSQSSSEEnabled        = "SQS_SSE_ENABLED"

	// Local development
	EnvAWSRegion   = "AWS_REGION"
	EnvAWSEndpoint = "AWS_ENDPOINT_URL"
)
