package sqs

import (
	"context"
	"sync"

	"go-sqs-bindings/pkg/log"
)

// Handler defines a unit of application logic whose result is forwarded to
// the queue by an Output binding.
type Handler interface {
	Handle(ctx context.Context) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context) (any, error)

// Handle implements the Handler interface for HandlerFunc.
func (f HandlerFunc) Handle(ctx context.Context) (any, error) {
	return f(ctx)
}

// Output is an output binding: it wraps a Handler and, after the handler
// returns successfully, serializes the result and sends it to the queue as a
// single message. The handler's result always reaches the caller unmodified.
//
// The underlying client is created lazily on first send and cached for the
// lifetime of the Output; a single Output is safe for concurrent use.
type Output struct {
	queueURL string
	options  OutputOptions

	once    sync.Once
	client  *Client
	initErr error
	connect func(ctx context.Context) (*Client, error)
}

// NewOutput creates an Output binding for the configured queue. Options are
// validated here, not at send time.
func NewOutput(config ClientConfig, options OutputOptions) (*Output, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}
	return &Output{
		queueURL: config.QueueURL,
		options:  options,
		connect: func(ctx context.Context) (*Client, error) {
			return NewClient(ctx, config, options)
		},
	}, nil
}

// NewOutputFromAPI creates an Output binding over an already-configured SQS
// client.
func NewOutputFromAPI(api API, queueURL string, options OutputOptions) (*Output, error) {
	client, err := NewClientFromAPI(api, queueURL, options)
	if err != nil {
		return nil, err
	}
	return &Output{
		queueURL: queueURL,
		options:  options,
		connect: func(context.Context) (*Client, error) {
			return client, nil
		},
	}, nil
}

// Wrap returns a Handler that invokes h and sends its result to the queue.
//
// The send happens strictly after h returns. When h fails, nothing is sent
// and its error propagates unchanged. When the send fails, the error is
// returned alongside the handler's result; the result is never replaced or
// discarded because of a send failure.
func (o *Output) Wrap(h Handler) Handler {
	return HandlerFunc(func(ctx context.Context) (any, error) {
		result, err := h.Handle(ctx)
		if err != nil {
			return result, err
		}
		return result, o.Send(ctx, result)
	})
}

// Send serializes value and delivers it as a single message. A nil value is
// the "no message" signal: nothing is sent and no client is created.
func (o *Output) Send(ctx context.Context, value any) error {
	body, ok := Serialize(value)
	if !ok {
		log.Debugf("skipping SQS output, no value to send to queue %s", o.queueURL)
		return nil
	}

	client, err := o.getClient(ctx)
	if err != nil {
		return err
	}

	messageID, err := client.Send(ctx, body)
	if err != nil {
		return err
	}
	log.Debugf("sent message to SQS queue %s with ID %s", o.queueURL, messageID)
	return nil
}

func (o *Output) getClient(ctx context.Context) (*Client, error) {
	o.once.Do(func() {
		o.client, o.initErr = o.connect(ctx)
	})
	if o.initErr != nil {
		return nil, o.initErr
	}
	return o.client, nil
}
