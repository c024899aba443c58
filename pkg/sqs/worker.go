package sqs

import (
	"context"
	"errors"
	"sync"

	"go-sqs-bindings/pkg/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// ConsumerAPI defines the subset of SQS operations the Worker uses.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// MessageHandlerFunc defines a function that handles a received SQS message.
type MessageHandlerFunc func(ctx context.Context, msg types.Message) error

// HandleMessage implements the MessageHandler interface for MessageHandlerFunc.
func (f MessageHandlerFunc) HandleMessage(ctx context.Context, msg types.Message) error {
	return f(ctx, msg)
}

// MessageHandler defines an interface that processes a received SQS message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg types.Message) error
}

// LogLevel represents the logging level for the Worker.
type LogLevel int

const (
	// Silent disables all logs.
	Silent LogLevel = iota
	// ErrorLevel logs only errors.
	ErrorLevel
	// InfoLevel logs informational and error messages.
	InfoLevel
)

// WorkerConfig defines the configuration options for a Worker.
type WorkerConfig struct {
	MaxNumberOfMessages int32
	WaitTimeSeconds     int32
	PoolSize            int
	LogLevel            LogLevel
}

// Worker polls and processes messages from an SQS queue. It is the receive
// side of the bindings, the counterpart of Output and Collector.
type Worker struct {
	api                 ConsumerAPI
	queueURL            string
	maxNumberOfMessages int32
	waitTimeSeconds     int32
	poolSize            int
	logLevel            LogLevel
	handler             MessageHandler
}

// NewWorker creates and returns a new Worker.
//
// If the provided WorkerConfig is nil or its fields are zero,
// the following defaults will be used:
//   - MaxNumberOfMessages: 10
//   - WaitTimeSeconds: 20
//   - PoolSize: 1
//   - LogLevel: Silent
//
// Validations:
//   - MaxNumberOfMessages must be between 1 and 10.
//   - WaitTimeSeconds must be between 1 and 20.
//   - PoolSize must be greater than 0.
func NewWorker(api ConsumerAPI, queueURL string, handler MessageHandler, config *WorkerConfig) (*Worker, error) {
	var maxMessages int32 = 10
	var waitTime int32 = 20
	poolSize := 1
	logLevel := Silent

	if config != nil {
		if config.MaxNumberOfMessages != 0 {
			maxMessages = config.MaxNumberOfMessages
		}
		if config.WaitTimeSeconds != 0 {
			waitTime = config.WaitTimeSeconds
		}
		if config.PoolSize != 0 {
			poolSize = config.PoolSize
		}
		logLevel = config.LogLevel
	}

	if maxMessages < 1 || maxMessages > 10 {
		return nil, errors.New("maxNumberOfMessages must be between 1 and 10")
	}
	if waitTime < 1 || waitTime > 20 {
		return nil, errors.New("waitTimeSeconds must be between 1 and 20")
	}
	if poolSize < 1 {
		return nil, errors.New("poolSize must be greater than 0")
	}
	if queueURL == "" {
		return nil, errors.New("queueURL must not be empty")
	}

	return &Worker{
		api:                 api,
		queueURL:            queueURL,
		maxNumberOfMessages: maxMessages,
		waitTimeSeconds:     waitTime,
		poolSize:            poolSize,
		logLevel:            logLevel,
		handler:             handler,
	}, nil
}

// Start begins polling messages and processing them concurrently.
// It will spawn PoolSize number of workers that keep polling messages
// until the provided context is canceled.
func (w *Worker) Start(ctx context.Context) {
	var wg sync.WaitGroup

	for i := 0; i < w.poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.pollMessages(ctx)
		}()
	}

	wg.Wait()
}

func (w *Worker) pollMessages(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			output, err := w.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            aws.String(w.queueURL),
				MaxNumberOfMessages: w.maxNumberOfMessages,
				WaitTimeSeconds:     w.waitTimeSeconds,
			})
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logf(ErrorLevel, "failed to receive messages: %v", err)
				continue
			}

			for _, msg := range output.Messages {
				go w.handleMessage(ctx, msg)
			}
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg types.Message) {
	err := w.handler.HandleMessage(ctx, msg)
	if err != nil {
		w.logf(ErrorLevel, "error processing message ID %s: %v", safeMessageID(msg), err)
		return
	}

	_, err = w.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(w.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		w.logf(ErrorLevel, "failed to delete message ID %s: %v", safeMessageID(msg), err)
	} else {
		w.logf(InfoLevel, "successfully deleted message ID %s", safeMessageID(msg))
	}
}

func (w *Worker) logf(level LogLevel, format string, v ...interface{}) {
	if w.logLevel == Silent {
		log.Debugf(format, v...)
	}
	if level == ErrorLevel && (w.logLevel == ErrorLevel || w.logLevel == InfoLevel) {
		log.Errorf(format, v...)
	}
	if level == InfoLevel && w.logLevel == InfoLevel {
		log.Infof(format, v...)
	}
}

func safeMessageID(msg types.Message) string {
	if msg.MessageId == nil {
		return ""
	}
	return *msg.MessageId
}
