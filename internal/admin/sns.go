// internal/admin/sns.go
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"cruise-decision-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Publisher is the subset of the SNS client the audit sink uses.
type Publisher interface {
	Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSAuditSink publishes each audit record as JSON to a topic so downstream
// consumers can follow ranking runs.
type SNSAuditSink struct {
	publisher Publisher
	topicARN  string
}

func NewSNSAuditSink(publisher Publisher, topicARN string) *SNSAuditSink {
	return &SNSAuditSink{publisher: publisher, topicARN: topicARN}
}

func (s *SNSAuditSink) Append(ctx context.Context, r models.AuditRecord) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	_, err = s.publisher.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String("decision-audit"),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"inputHash": {
				DataType:    aws.String("String"),
				StringValue: aws.String(r.InputHash),
			},
			"resultCount": {
				DataType:    aws.String("Number"),
				StringValue: aws.String(strconv.Itoa(r.ResultCount)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("publish audit record: %w", err)
	}
	return nil
}
