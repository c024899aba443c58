package sqs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789012/test-queue"

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) != nil {
		return args.Get(0).(*sqs.SendMessageOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) != nil {
		return args.Get(0).(*sqs.SendMessageBatchOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestClientSend_Success(t *testing.T) {
	mockClient := new(mockAPI)
	client, err := NewClientFromAPI(mockClient, testQueueURL, OutputOptions{})
	assert.NoError(t, err)

	mockClient.On("SendMessage", mock.Anything, mock.MatchedBy(func(input *sqs.SendMessageInput) bool {
		return *input.QueueUrl == testQueueURL &&
			*input.MessageBody == "hello" &&
			input.DelaySeconds == 0 &&
			input.MessageGroupId == nil &&
			input.MessageDeduplicationId == nil
	})).Return(&sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil)

	messageID, err := client.Send(context.Background(), "hello")

	assert.NoError(t, err)
	assert.Equal(t, "msg-1", messageID)
	mockClient.AssertExpectations(t)
}

func TestClientSend_AppliesFifoOptions(t *testing.T) {
	mockClient := new(mockAPI)
	client, err := NewClientFromAPI(mockClient, testQueueURL, OutputOptions{
		DelaySeconds:   30,
		MessageGroupID: "group-a",
	})
	assert.NoError(t, err)

	mockClient.On("SendMessage", mock.Anything, mock.MatchedBy(func(input *sqs.SendMessageInput) bool {
		return input.DelaySeconds == 30 &&
			input.MessageGroupId != nil && *input.MessageGroupId == "group-a" &&
			input.MessageDeduplicationId != nil && *input.MessageDeduplicationId != ""
	})).Return(&sqs.SendMessageOutput{MessageId: aws.String("msg-2")}, nil)

	_, err = client.Send(context.Background(), "hello")

	assert.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestClientSend_ContentBasedDeduplicationOmitsDedupID(t *testing.T) {
	mockClient := new(mockAPI)
	client, err := NewClientFromAPI(mockClient, testQueueURL, OutputOptions{
		MessageGroupID:               "group-a",
		UseContentBasedDeduplication: true,
	})
	assert.NoError(t, err)

	mockClient.On("SendMessage", mock.Anything, mock.MatchedBy(func(input *sqs.SendMessageInput) bool {
		return input.MessageDeduplicationId == nil
	})).Return(&sqs.SendMessageOutput{MessageId: aws.String("msg-3")}, nil)

	_, err = client.Send(context.Background(), "hello")

	assert.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestClientSend_TransportError(t *testing.T) {
	mockClient := new(mockAPI)
	client, err := NewClientFromAPI(mockClient, testQueueURL, OutputOptions{})
	assert.NoError(t, err)

	mockClient.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err = client.Send(context.Background(), "hello")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClientOptions_DelayValidation(t *testing.T) {
	mockClient := new(mockAPI)

	for _, delay := range []int32{-1, 901} {
		_, err := NewClientFromAPI(mockClient, testQueueURL, OutputOptions{DelaySeconds: delay})
		assert.ErrorIs(t, err, ErrInvalidDelay)
	}
	for _, delay := range []int32{0, 900} {
		_, err := NewClientFromAPI(mockClient, testQueueURL, OutputOptions{DelaySeconds: delay})
		assert.NoError(t, err)
	}
}

func TestClientSendBatch_MapsOutcomes(t *testing.T) {
	mockClient := new(mockAPI)
	client, err := NewClientFromAPI(mockClient, testQueueURL, OutputOptions{})
	assert.NoError(t, err)

	entries := []BatchEntry{
		{ID: "0", Body: "a"},
		{ID: "1", Body: "b"},
		{ID: "2", Body: "c"},
	}

	mockClient.On("SendMessageBatch", mock.Anything, mock.MatchedBy(func(input *sqs.SendMessageBatchInput) bool {
		if *input.QueueUrl != testQueueURL || len(input.Entries) != 3 {
			return false
		}
		for i, entry := range entries {
			if *input.Entries[i].Id != entry.ID || *input.Entries[i].MessageBody != entry.Body {
				return false
			}
		}
		return true
	})).Return(&sqs.SendMessageBatchOutput{
		Successful: []types.SendMessageBatchResultEntry{
			{Id: aws.String("0")},
			{Id: aws.String("2")},
		},
		Failed: []types.BatchResultErrorEntry{
			{Id: aws.String("1"), Code: aws.String("InternalError"), Message: aws.String("try again")},
		},
	}, nil)

	result, err := client.SendBatch(context.Background(), entries)

	assert.NoError(t, err)
	assert.Equal(t, []string{"0", "2"}, result.Successful)
	assert.Equal(t, []BatchFailure{{ID: "1", Code: "InternalError", Message: "try again"}}, result.Failed)
	mockClient.AssertExpectations(t)
}

func TestClientSendBatch_RejectsOversizedBatch(t *testing.T) {
	mockClient := new(mockAPI)
	client, err := NewClientFromAPI(mockClient, testQueueURL, OutputOptions{})
	assert.NoError(t, err)

	entries := make([]BatchEntry, MaxBatchSize+1)
	for i := range entries {
		entries[i] = BatchEntry{ID: "x", Body: "y"}
	}

	_, err = client.SendBatch(context.Background(), entries)

	assert.Error(t, err)
	mockClient.AssertNotCalled(t, "SendMessageBatch", mock.Anything, mock.Anything)
}

func TestClientSendBatch_UnaccountedEntryIsAnError(t *testing.T) {
	mockClient := new(mockAPI)
	client, err := NewClientFromAPI(mockClient, testQueueURL, OutputOptions{})
	assert.NoError(t, err)

	entries := []BatchEntry{{ID: "0", Body: "a"}, {ID: "1", Body: "b"}}

	// Response drops entry "1" entirely.
	mockClient.On("SendMessageBatch", mock.Anything, mock.Anything).Return(&sqs.SendMessageBatchOutput{
		Successful: []types.SendMessageBatchResultEntry{{Id: aws.String("0")}},
	}, nil)

	_, err = client.SendBatch(context.Background(), entries)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accounts for 1 of 2 entries")
}

func TestClientSendBatch_UnknownEntryIsAnError(t *testing.T) {
	mockClient := new(mockAPI)
	client, err := NewClientFromAPI(mockClient, testQueueURL, OutputOptions{})
	assert.NoError(t, err)

	entries := []BatchEntry{{ID: "0", Body: "a"}}

	mockClient.On("SendMessageBatch", mock.Anything, mock.Anything).Return(&sqs.SendMessageBatchOutput{
		Successful: []types.SendMessageBatchResultEntry{
			{Id: aws.String("0")},
			{Id: aws.String("7")},
		},
	}, nil)

	_, err = client.SendBatch(context.Background(), entries)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `unknown entry "7"`)
}

func TestRegionFromQueueURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://sqs.us-east-1.amazonaws.com/123456789012/my-queue", "us-east-1"},
		{"https://sqs.eu-central-1.amazonaws.com/123456789012/my-queue.fifo", "eu-central-1"},
		{"https://sa-east-1.queue.amazonaws.com/123456789012/legacy", "sa-east-1"},
		{"http://localhost:4566/000000000000/local-queue", ""},
		{"not a url at all", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, regionFromQueueURL(tc.url), tc.url)
	}
}
