package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSQSSinkSendsFlatJSON(t *testing.T) {
	client := &mockSQS{}
	sink := newSQSSink(client, "https://sqs.local/queue/events")

	err := sink.Emit(context.Background(), Event{Name: EventGenerateLead, Fields: map[string]any{"event_id": "e1"}})
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "https://sqs.local/queue/events", aws.ToString(client.input.QueueUrl))
	assert.JSONEq(t, `{"event":"generate_lead","event_id":"e1"}`, aws.ToString(client.input.MessageBody))
	assert.Equal(t, "generate_lead", aws.ToString(client.input.MessageAttributes["event"].StringValue))
}

func TestSQSSinkWrapsErrors(t *testing.T) {
	boom := errors.New("throttled")
	sink := newSQSSink(&mockSQS{err: boom}, "q")
	err := sink.Emit(context.Background(), Event{Name: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestNewSQSSinkValidatesArgs(t *testing.T) {
	assert.Panics(t, func() { NewSQSSink(nil, "q") })
	assert.Panics(t, func() { newSQSSink(&mockSQS{}, "") })
}
