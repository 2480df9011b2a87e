package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/conference-api/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// maxBatch is the most messages FCM accepts in one SendEach call.
const maxBatch = 500

// Messaging is the part of the FCM client the gateway needs.
type Messaging interface {
	SendEach(ctx context.Context, messages []*messaging.Message) (*messaging.BatchResponse, error)
}

type Gateway struct {
	client Messaging
	logger *zap.Logger
}

// NewClient builds an FCM messaging client from a service account file, or
// from default credentials when credentialsFile is empty.
func NewClient(ctx context.Context, logger *zap.Logger, credentialsFile string) (*messaging.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	} else {
		logger.Warn("no firebase credentials file provided, falling back to default credentials")
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}
	return client, nil
}

func NewGateway(client Messaging, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{client: client, logger: logger.Named("fcm")}
}

// Send delivers the batch in chunks FCM accepts. Per-token failures are
// logged; the batch fails on a transport error or when no message went out.
func (g *Gateway) Send(ctx context.Context, batch []domain.PushNotificationRequest) error {
	if len(batch) == 0 {
		return nil
	}
	delivered := 0
	for start := 0; start < len(batch); start += maxBatch {
		end := min(start+maxBatch, len(batch))
		chunk := batch[start:end]

		msgs := make([]*messaging.Message, len(chunk))
		for i, req := range chunk {
			msgs[i] = toMessage(req.Payload)
		}
		resp, err := g.client.SendEach(ctx, msgs)
		if err != nil {
			return fmt.Errorf("fcm send each: %w", err)
		}
		delivered += resp.SuccessCount
		for i, r := range resp.Responses {
			if !r.Success {
				g.logger.Warn("fcm message rejected", zap.String("device_id", chunk[i].DeviceID), zap.Error(r.Error))
			}
		}
	}
	if delivered == 0 {
		return fmt.Errorf("fcm: none of %d messages delivered", len(batch))
	}
	return nil
}

func toMessage(p domain.PushPayload) *messaging.Message {
	androidPriority, apnsPriority := "normal", "5"
	if p.Priority == domain.PriorityHigh {
		androidPriority, apnsPriority = "high", "10"
	}
	msg := &messaging.Message{
		Token:        p.To,
		Notification: &messaging.Notification{Title: p.Title, Body: p.Body},
		Data:         p.Data,
		Android:      &messaging.AndroidConfig{Priority: androidPriority},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": apnsPriority},
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{}},
		},
	}
	if p.Sound != nil {
		msg.Android.Notification = &messaging.AndroidNotification{Sound: *p.Sound}
		msg.APNS.Payload.Aps.Sound = *p.Sound
	}
	return msg
}
