// internal/common/aws/sns.go

// Package aws holds the AWS clients the worker manager wires in. SNS carries
// a copy of every decision audit record to the configured audit topic.
package aws

import (
	"context"
	"errors"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSClient publishes decision audit notifications. It satisfies
// admin.Publisher; the topic and message attributes come from the caller.
type SNSClient struct {
	client *sns.Client
	region string
}

// NewSNSClient resolves credentials from the default AWS chain for region.
func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	if region == "" {
		return nil, errors.New("sns: region is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("sns: load aws config for %s: %w", region, err)
	}
	return &SNSClient{client: sns.NewFromConfig(cfg), region: region}, nil
}

func (s *SNSClient) Region() string {
	return s.region
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	out, err := s.client.Publish(ctx, input, optFns...)
	if err != nil {
		return nil, fmt.Errorf("sns: publish to %s: %w", awssdk.ToString(input.TopicArn), err)
	}
	return out, nil
}
