package aws

import (
	"context"
	"fmt"

	"go-sqs-bindings/pkg/resource"
	sqslib "go-sqs-bindings/pkg/sqs"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// BindingConfig assembles a binding's ClientConfig from the application
// properties. Queue URL and region accept %ENV_VAR% placeholders; shared
// cloud settings (credentials, endpoint) come from app.cloud.*.
func BindingConfig(name string) sqslib.ClientConfig {
	prefix := "app.bindings." + name

	region := resource.ResolvePlaceholder(resource.GetString(prefix + ".region"))
	if region == "" {
		region = resource.GetString("app.cloud.aws-region")
	}

	return sqslib.ClientConfig{
		QueueURL:        resource.ResolvePlaceholder(resource.GetString(prefix + ".queue-url")),
		Region:          region,
		AccessKeyID:     resource.GetString("app.cloud.aws-access-key-id"),
		SecretAccessKey: resource.GetString("app.cloud.aws-secret-access-key"),
		Endpoint:        resource.GetString("app.cloud.aws-endpoint"),
	}
}

// NewSqsClient builds a raw SQS client from the app.cloud.* properties,
// honoring the LocalStack endpoint override when configured. Used by the
// receive-side Worker, which takes the client directly.
func NewSqsClient(ctx context.Context) (*sqs.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error

	if region := resource.GetString("app.cloud.aws-region"); region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	// If no custom credentials are provided, the SDK uses its default
	// credential chain (environment variables, IAM roles, etc.).
	if accessKey := resource.GetString("app.cloud.aws-access-key-id"); accessKey != "" {
		if secretKey := resource.GetString("app.cloud.aws-secret-access-key"); secretKey != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
			))
		}
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	var clientOpts []func(*sqs.Options)
	if endpoint := resource.GetString("app.cloud.aws-endpoint"); endpoint != "" {
		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = awssdk.String(endpoint)
		})
	}

	return sqs.NewFromConfig(cfg, clientOpts...), nil
}
