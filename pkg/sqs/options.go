package sqs

import (
	"errors"
	"fmt"
)

// MaxBatchSize is the maximum number of entries SQS accepts in a single
// SendMessageBatch call.
const MaxBatchSize = 10

// maxDelaySeconds is the upper bound SQS allows for message delivery delay.
const maxDelaySeconds = 900

// ErrInvalidDelay indicates OutputOptions.DelaySeconds is outside the range
// accepted by SQS.
var ErrInvalidDelay = errors.New("delaySeconds must be between 0 and 900")

// OutputOptions configures how messages are sent to the destination queue.
type OutputOptions struct {
	// DelaySeconds delays delivery of sent messages (0-900 seconds).
	DelaySeconds int32

	// MessageGroupID groups messages on FIFO queues. Required for FIFO
	// queues, ignored by standard queues.
	MessageGroupID string

	// UseContentBasedDeduplication relies on the FIFO queue's content
	// hashing instead of an explicit deduplication ID. Only meaningful
	// for FIFO queues.
	UseContentBasedDeduplication bool
}

// validate rejects out-of-range options. Called at binding construction so
// bad options fail fast instead of at send time.
func (o OutputOptions) validate() error {
	if o.DelaySeconds < 0 || o.DelaySeconds > maxDelaySeconds {
		return fmt.Errorf("%w, got %d", ErrInvalidDelay, o.DelaySeconds)
	}
	return nil
}
