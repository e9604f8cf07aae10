package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/config"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/metrics"
)

type publishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher sends payment events to an SNS topic
type SNSPublisher struct {
	client   publishAPI
	topicARN string
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewPublisher returns an SNS publisher when a topic is configured, otherwise a
// publisher that only logs.
func NewPublisher(ctx context.Context, cfg config.EventsConfig, m *metrics.Metrics, logger *zap.Logger) (provider.EventPublisher, error) {
	if !cfg.Enabled() {
		logger.Info("Event topic not configured, payment events are logged only")
		return &LogPublisher{logger: logger}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newSNSPublisher(client, cfg.SNSTopicARN, m, logger), nil
}

func newSNSPublisher(client publishAPI, topicARN string, m *metrics.Metrics, logger *zap.Logger) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN, metrics: m, logger: logger}
}

func (p *SNSPublisher) Publish(ctx context.Context, event *provider.PaymentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Type),
			},
		},
	})
	if err != nil {
		p.count(event.Type, "failed")
		return fmt.Errorf("sns publish failed for topic %s: %w", p.topicARN, err)
	}

	p.count(event.Type, "published")
	p.logger.Debug("Payment event published",
		zap.String("type", event.Type),
		zap.String("payment_id", event.PaymentID.String()))
	return nil
}

func (p *SNSPublisher) count(eventType, result string) {
	if p.metrics != nil {
		p.metrics.EventsPublished.WithLabelValues(eventType, result).Inc()
	}
}

// LogPublisher is used when no topic is configured
type LogPublisher struct {
	logger *zap.Logger
}

func (p *LogPublisher) Publish(ctx context.Context, event *provider.PaymentEvent) error {
	p.logger.Debug("Payment event",
		zap.String("type", event.Type),
		zap.String("payment_id", event.PaymentID.String()),
		zap.String("status", string(event.Status)))
	return nil
}
