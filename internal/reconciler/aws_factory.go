// Where: dlq-reconciler/internal/reconciler/aws_factory.go
// What: AWS client factory for EventBridge and SQS.
// Why: Encapsulate SDK configuration, including local endpoint overrides.
package reconciler

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/constants"
)

const defaultAWSRegion = "ap-northeast-1"

// ClientFactory constructs the service collaborators.
type ClientFactory interface {
	EventBridge(ctx context.Context) (EventBridgeAPI, error)
	SQS(ctx context.Context) (SQSAPI, error)
}

// NewClientFactory returns a factory backed by the default AWS config
// chain. A non-empty endpoint switches every client to that base endpoint
// with static dummy credentials, for local stacks.
func NewClientFactory(endpoint string) ClientFactory {
	return awsClientFactory{endpoint: endpoint}
}

type awsClientFactory struct {
	endpoint string
}

func (f awsClientFactory) EventBridge(ctx context.Context) (EventBridgeAPI, error) {
	cfg, err := f.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := eventbridge.NewFromConfig(cfg, func(options *eventbridge.Options) {
		if f.endpoint != "" {
			options.BaseEndpoint = aws.String(f.endpoint)
		}
	})
	return client, nil
}

func (f awsClientFactory) SQS(ctx context.Context) (SQSAPI, error) {
	cfg, err := f.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := sqs.NewFromConfig(cfg, func(options *sqs.Options) {
		if f.endpoint != "" {
			options.BaseEndpoint = aws.String(f.endpoint)
		}
	})
	return client, nil
}

func (f awsClientFactory) loadConfig(ctx context.Context) (aws.Config, error) {
	if f.endpoint == "" {
		return config.LoadDefaultConfig(ctx)
	}

	region := os.Getenv(constants.EnvAWSRegion)
	if region == "" {
		region = defaultAWSRegion
	}
	creds := credentials.NewStaticCredentialsProvider("dummy", "dummy", "")
	return config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(creds),
	)
}
