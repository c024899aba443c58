package sqs

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
)

// API defines the subset of SQS operations the bindings use.
type API interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
}

// ClientConfig identifies the destination queue and how to reach it.
type ClientConfig struct {
	// QueueURL is the full SQS queue URL (required).
	QueueURL string

	// Region overrides the AWS region. When empty, the region is inferred
	// from QueueURL and falls back to the SDK's default resolution.
	Region string

	// AccessKeyID and SecretAccessKey form an optional static credential
	// pair. When either is empty the SDK's default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// Endpoint overrides the SQS endpoint, e.g. for LocalStack.
	Endpoint string
}

// BatchEntry is one message inside a batch. ID is assigned by the caller and
// only needs to be unique within the batch; it correlates the response's
// per-entry outcomes back to the submitted entries.
type BatchEntry struct {
	ID   string
	Body string
}

// BatchFailure describes one entry the queue rejected.
type BatchFailure struct {
	ID      string
	Code    string
	Message string
}

// BatchResult partitions a submitted batch into successful and failed
// entries. Every submitted entry appears in exactly one of the two lists.
type BatchResult struct {
	Successful []string
	Failed     []BatchFailure
}

// Client sends messages to a single SQS queue, applying the binding's
// OutputOptions to every message.
type Client struct {
	api      API
	queueURL string
	options  OutputOptions
}

// NewClient creates a Client from a ClientConfig, loading AWS configuration
// with the config's region, credentials and endpoint settings.
func NewClient(ctx context.Context, cfg ClientConfig, options OutputOptions) (*Client, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}

	var loadOpts []func(*awsconfig.LoadOptions) error

	region := cfg.Region
	if region == "" {
		region = regionFromQueueURL(cfg.QueueURL)
	}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	// If no custom credentials are provided, the SDK falls back to its
	// default credential chain (environment variables, IAM roles, etc.).
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	var clientOpts []func(*sqs.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &Client{
		api:      sqs.NewFromConfig(awsCfg, clientOpts...),
		queueURL: cfg.QueueURL,
		options:  options,
	}, nil
}

// NewClientFromAPI creates a Client over an already-configured SQS client.
func NewClientFromAPI(api API, queueURL string, options OutputOptions) (*Client, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}
	return &Client{
		api:      api,
		queueURL: queueURL,
		options:  options,
	}, nil
}

// Send delivers a single message body and returns the message ID assigned by
// the queue.
func (c *Client) Send(ctx context.Context, body string) (string, error) {
	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.queueURL),
		MessageBody: aws.String(body),
	}
	if c.options.DelaySeconds > 0 {
		input.DelaySeconds = c.options.DelaySeconds
	}
	if c.options.MessageGroupID != "" {
		input.MessageGroupId = aws.String(c.options.MessageGroupID)
		if !c.options.UseContentBasedDeduplication {
			input.MessageDeduplicationId = aws.String(uuid.NewString())
		}
	}

	output, err := c.api.SendMessage(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to send message to queue %s: %w", c.queueURL, err)
	}
	if output.MessageId == nil {
		return "", nil
	}
	return *output.MessageId, nil
}

// SendBatch submits up to MaxBatchSize entries in a single call and maps the
// response into a BatchResult. The result is verified to account for every
// submitted entry exactly once; a response that does not is an invariant
// violation and is returned as an error.
func (c *Client) SendBatch(ctx context.Context, entries []BatchEntry) (*BatchResult, error) {
	if len(entries) == 0 {
		return &BatchResult{Successful: []string{}, Failed: []BatchFailure{}}, nil
	}
	if len(entries) > MaxBatchSize {
		return nil, fmt.Errorf("batch size cannot exceed %d entries, got %d", MaxBatchSize, len(entries))
	}

	requestEntries := make([]types.SendMessageBatchRequestEntry, len(entries))
	for i, entry := range entries {
		requestEntry := types.SendMessageBatchRequestEntry{
			Id:          aws.String(entry.ID),
			MessageBody: aws.String(entry.Body),
		}
		if c.options.DelaySeconds > 0 {
			requestEntry.DelaySeconds = c.options.DelaySeconds
		}
		if c.options.MessageGroupID != "" {
			requestEntry.MessageGroupId = aws.String(c.options.MessageGroupID)
			if !c.options.UseContentBasedDeduplication {
				requestEntry.MessageDeduplicationId = aws.String(uuid.NewString())
			}
		}
		requestEntries[i] = requestEntry
	}

	output, err := c.api.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
		QueueUrl: aws.String(c.queueURL),
		Entries:  requestEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send message batch to queue %s: %w", c.queueURL, err)
	}

	result := &BatchResult{
		Successful: make([]string, 0, len(output.Successful)),
		Failed:     make([]BatchFailure, 0, len(output.Failed)),
	}
	for _, success := range output.Successful {
		if success.Id != nil {
			result.Successful = append(result.Successful, *success.Id)
		}
	}
	for _, failed := range output.Failed {
		failure := BatchFailure{}
		if failed.Id != nil {
			failure.ID = *failed.Id
		}
		if failed.Code != nil {
			failure.Code = *failed.Code
		}
		if failed.Message != nil {
			failure.Message = *failed.Message
		}
		result.Failed = append(result.Failed, failure)
	}

	if err := result.verifyPartition(entries); err != nil {
		return nil, err
	}
	return result, nil
}

// verifyPartition checks that the batch response accounts for every
// submitted entry exactly once.
func (r *BatchResult) verifyPartition(entries []BatchEntry) error {
	submitted := make(map[string]bool, len(entries))
	for _, entry := range entries {
		submitted[entry.ID] = true
	}

	seen := make(map[string]bool, len(entries))
	check := func(id string) error {
		if !submitted[id] {
			return fmt.Errorf("batch response reports unknown entry %q", id)
		}
		if seen[id] {
			return fmt.Errorf("batch response reports entry %q more than once", id)
		}
		seen[id] = true
		return nil
	}

	for _, id := range r.Successful {
		if err := check(id); err != nil {
			return err
		}
	}
	for _, failure := range r.Failed {
		if err := check(failure.ID); err != nil {
			return err
		}
	}

	if len(seen) != len(entries) {
		return fmt.Errorf("batch response accounts for %d of %d entries", len(seen), len(entries))
	}
	return nil
}

// regionFromQueueURL extracts the AWS region embedded in an SQS queue URL,
// e.g. https://sqs.us-east-1.amazonaws.com/123456789012/my-queue. Returns ""
// when the URL does not carry one.
func regionFromQueueURL(queueURL string) string {
	parsed, err := url.Parse(queueURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(parsed.Hostname(), ".")
	switch {
	case len(parts) >= 3 && parts[0] == "sqs":
		return parts[1]
	case len(parts) >= 3 && parts[1] == "queue":
		// Legacy format: <region>.queue.amazonaws.com
		return parts[0]
	}
	return ""
}
