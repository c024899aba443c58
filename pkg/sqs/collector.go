package sqs

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"go-sqs-bindings/pkg/log"
)

// Collector accumulates values during one unit of work and sends them to the
// queue in batches when flushed.
//
// A Collector is scoped to a single unit of work and must not be shared
// across concurrent invocations; it keeps no locks around its pending
// messages. It remains reusable after a flush, including a flush with
// failures.
type Collector struct {
	queueURL string
	pending  []string

	once    sync.Once
	client  *Client
	initErr error
	connect func(ctx context.Context) (*Client, error)
}

// NewCollector creates a Collector for the configured queue. Options apply
// to every flushed message and are validated here.
func NewCollector(config ClientConfig, options OutputOptions) (*Collector, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}
	return &Collector{
		queueURL: config.QueueURL,
		connect: func(ctx context.Context) (*Client, error) {
			return NewClient(ctx, config, options)
		},
	}, nil
}

// NewCollectorFromAPI creates a Collector over an already-configured SQS
// client.
func NewCollectorFromAPI(api API, queueURL string, options OutputOptions) (*Collector, error) {
	client, err := NewClientFromAPI(api, queueURL, options)
	if err != nil {
		return nil, err
	}
	return &Collector{
		queueURL: queueURL,
		connect: func(context.Context) (*Client, error) {
			return client, nil
		},
	}, nil
}

// Add serializes value and appends it to the pending messages. A nil value
// is skipped. There is no upper bound at add time; oversized accumulations
// are chunked at flush time.
func (c *Collector) Add(value any) {
	body, ok := Serialize(value)
	if !ok {
		log.Debugf("skipping nil value added for queue %s", c.queueURL)
		return
	}
	c.pending = append(c.pending, body)
}

// Pending returns the number of messages accumulated since the last flush.
func (c *Collector) Pending() int {
	return len(c.pending)
}

// Flush sends all pending messages in batches of at most MaxBatchSize,
// preserving insertion order within and across batches, and returns the
// number of messages the queue confirmed.
//
// Batches are submitted sequentially. A batch that fails wholesale does not
// stop later batches; its error is joined into the returned error. Entries
// the queue rejected individually are logged with their failure detail and
// reflected only in the returned count. The pending messages are cleared
// unconditionally, so a Flush never retries — callers needing full-success
// guarantees must compare the returned count to the number of adds.
func (c *Collector) Flush(ctx context.Context) (int, error) {
	if len(c.pending) == 0 {
		return 0, nil
	}
	defer func() {
		c.pending = c.pending[:0]
	}()

	client, err := c.getClient(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	var errs []error

	for start := 0; start < len(c.pending); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(c.pending) {
			end = len(c.pending)
		}
		chunk := c.pending[start:end]

		entries := make([]BatchEntry, len(chunk))
		for i, body := range chunk {
			entries[i] = BatchEntry{ID: strconv.Itoa(i), Body: body}
		}

		result, err := client.SendBatch(ctx, entries)
		if err != nil {
			log.Errorf("failed to send batch to queue %s: %v", c.queueURL, err)
			errs = append(errs, err)
			continue
		}

		sent += len(result.Successful)
		for _, failure := range result.Failed {
			log.Errorf("failed to send message %s to queue %s: %s (%s)",
				failure.ID, c.queueURL, failure.Message, failure.Code)
		}
	}

	log.Debugf("flushed %d of %d messages to queue %s", sent, len(c.pending), c.queueURL)
	return sent, errors.Join(errs...)
}

func (c *Collector) getClient(ctx context.Context) (*Client, error) {
	c.once.Do(func() {
		c.client, c.initErr = c.connect(ctx)
	})
	if c.initErr != nil {
		return nil, c.initErr
	}
	return c.client, nil
}
