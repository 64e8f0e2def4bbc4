package analytics

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSSink publishes each event as a JSON message.
type SQSSink struct {
	client   sqsAPI
	queueURL string
}

// NewSQSSink creates a sink around the provided SQS client.
func NewSQSSink(client *sqs.Client, queueURL string) *SQSSink {
	if client == nil {
		panic("analytics: SQS client cannot be nil")
	}
	return newSQSSink(client, queueURL)
}

func newSQSSink(client sqsAPI, queueURL string) *SQSSink {
	if queueURL == "" {
		panic("analytics: SQS queueURL cannot be empty")
	}
	return &SQSSink{client: client, queueURL: queueURL}
}

func (s *SQSSink) Emit(ctx context.Context, evt Event) error {
	body, err := evt.MarshalJSON()
	if err != nil {
		return fmt.Errorf("analytics: marshal event: %w", err)
	}
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event": {DataType: aws.String("String"), StringValue: aws.String(evt.Name)},
		},
	})
	if err != nil {
		return fmt.Errorf("analytics: failed to send SQS message: %w", err)
	}
	return nil
}
