package main

import (
	"context"

	"go-sqs-bindings/internal/infra/aws"
	"go-sqs-bindings/pkg/log"
	"go-sqs-bindings/pkg/resource"
	sqslib "go-sqs-bindings/pkg/sqs"
)

func main() {
	ctx := context.Background()

	// Binding settings come from configs/application.yml; the queue URL
	// property may be a %SQS_OUTPUT_QUEUE_URL% placeholder.
	resource.Init("configs/application.yml")
	config := aws.BindingConfig("orders")

	collector, err := sqslib.NewCollector(config, sqslib.OutputOptions{
		MessageGroupID:               "order-events",
		UseContentBasedDeduplication: true,
	})
	if err != nil {
		log.Fatalf("Failed to create collector: %v", err)
	}

	collector.Add("order received")
	collector.Add(map[string]any{"orderId": "1234", "items": 3})
	collector.Add("order confirmed")

	sent, err := collector.Flush(ctx)
	if err != nil {
		log.Errorf("Flush finished with errors: %v", err)
	}

	// Flush reports confirmed successes only; compare against the number
	// of adds when full delivery matters.
	log.Infof("Sent %d of 3 messages", sent)
}
