package main

import (
	"context"

	"go-sqs-bindings/configs"
	"go-sqs-bindings/pkg/log"
	sqslib "go-sqs-bindings/pkg/sqs"
)

func main() {
	ctx := context.Background()

	// Create the output binding. Options are validated here.
	output, err := sqslib.NewOutput(sqslib.ClientConfig{
		QueueURL: "https://sqs.us-west-2.amazonaws.com/123456789012/orders",
		Region:   configs.Env.DefaultRegion,
	}, sqslib.OutputOptions{
		DelaySeconds: 30,
	})
	if err != nil {
		log.Fatalf("Failed to create output binding: %v", err)
	}

	// Wrap the application logic. The return value reaches the caller
	// unchanged and is also sent to the queue after the handler returns.
	handler := output.Wrap(sqslib.HandlerFunc(func(ctx context.Context) (any, error) {
		return map[string]any{
			"orderId": "1234",
			"status":  "created",
		}, nil
	}))

	result, err := handler.Handle(ctx)
	if err != nil {
		log.Fatalf("Handler failed: %v", err)
	}

	log.Infof("Handler returned: %v", result)
}
