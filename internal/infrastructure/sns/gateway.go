package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/conference-api/internal/config"
	"github.com/conference-api/internal/domain"
	"go.uber.org/zap"
)

// Publisher is the part of the SNS client the gateway needs.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Gateway delivers pushes through SNS mobile platform endpoints. A device
// token is the endpoint ARN registered for that device.
type Gateway struct {
	client Publisher
	logger *zap.Logger
}

func NewClient(ctx context.Context, cfg *config.Config) (*sns.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.SNSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		}
	}), nil
}

func NewGateway(client Publisher, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{client: client, logger: logger.Named("sns")}
}

// Send publishes each request to its endpoint. Individual failures are
// logged; the batch fails only when nothing could be published.
func (g *Gateway) Send(ctx context.Context, batch []domain.PushNotificationRequest) error {
	var firstErr error
	failed := 0
	for _, req := range batch {
		msg, err := platformMessage(req.Payload)
		if err != nil {
			return err
		}
		_, err = g.client.Publish(ctx, &sns.PublishInput{
			TargetArn:        aws.String(req.Payload.To),
			Message:          aws.String(msg),
			MessageStructure: aws.String("json"),
		})
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			g.logger.Warn("publish to endpoint failed", zap.String("device_id", req.DeviceID), zap.Error(err))
		}
	}
	if len(batch) > 0 && failed == len(batch) {
		return fmt.Errorf("sns: all %d publishes failed: %w", failed, firstErr)
	}
	return nil
}

type apsAlert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type aps struct {
	Alert apsAlert `json:"alert"`
	Sound string   `json:"sound,omitempty"`
}

type apnsMessage struct {
	APS  aps               `json:"aps"`
	Data map[string]string `json:"data,omitempty"`
}

type gcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

type gcmMessage struct {
	Notification gcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Priority     string            `json:"priority"`
}

// platformMessage renders the per-platform JSON document SNS expects when
// MessageStructure is "json".
func platformMessage(p domain.PushPayload) (string, error) {
	sound := ""
	if p.Sound != nil {
		sound = *p.Sound
	}
	apns, err := json.Marshal(apnsMessage{
		APS:  aps{Alert: apsAlert{Title: p.Title, Body: p.Body}, Sound: sound},
		Data: p.Data,
	})
	if err != nil {
		return "", fmt.Errorf("marshal apns message: %w", err)
	}
	gcm, err := json.Marshal(gcmMessage{
		Notification: gcmNotification{Title: p.Title, Body: p.Body, Sound: sound},
		Data:         p.Data,
		Priority:     p.Priority,
	})
	if err != nil {
		return "", fmt.Errorf("marshal gcm message: %w", err)
	}
	doc, err := json.Marshal(map[string]string{
		"default":      p.Body,
		"APNS":         string(apns),
		"APNS_SANDBOX": string(apns),
		"GCM":          string(gcm),
	})
	if err != nil {
		return "", fmt.Errorf("marshal sns message: %w", err)
	}
	return string(doc), nil
}
