package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQS publishes notifications to a single AWS SQS queue. Each message's
// group ID is the chain ID, matching the upstream system's one-queue,
// one-group-per-chain convention.
type SQS struct {
	client   *sqs.Client
	queueURL string
	chainID  string
}

// NewSQS builds an SQS notifier for queueURL, loading AWS credentials and
// region from the standard environment/config chain.
func NewSQS(ctx context.Context, queueURL, chainID string) (*SQS, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("notify: loading aws config: %w", err)
	}

	return &SQS{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
		chainID:  chainID,
	}, nil
}

var _ Notifier = (*SQS)(nil)

// Publish sends the payload as a single SQS message body.
func (s *SQS) Publish(ctx context.Context, chainID string, height uint64) error {
	body, err := encode(chainID, height)
	if err != nil {
		return err
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:       aws.String(s.queueURL),
		MessageBody:    aws.String(string(body)),
		MessageGroupId: aws.String(s.chainID),
	})
	if err != nil {
		return fmt.Errorf("notify: sqs send: %w", err)
	}
	return nil
}
