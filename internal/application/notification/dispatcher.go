package notification

import (
	"context"
	"fmt"

	"github.com/conference-api/internal/domain"
	"github.com/conference-api/internal/pkg/logger"
	"go.uber.org/zap"
)

// PushGateway delivers a batch of push notifications. One call is one
// submission; per-device delivery failures are the gateway's concern.
type PushGateway interface {
	Send(ctx context.Context, batch []domain.PushNotificationRequest) error
}

// DispatchResult summarises one dispatch.
type DispatchResult struct {
	Submitted int
	// Skipped lists devices left out because they had no push token.
	Skipped []string
}

// BuildPayload builds the push request for one device. The device must be
// dispatchable.
func BuildPayload(device domain.Device, req domain.NotificationSendRequest, metadata map[string]string) domain.PushNotificationRequest {
	payload := domain.PushPayload{
		Title:    req.Title,
		To:       *device.Token,
		Body:     req.Message,
		Priority: domain.PriorityNormal,
		Data:     metadata,
	}
	if req.Urgent {
		sound := domain.SoundDefault
		payload.Priority = domain.PriorityHigh
		payload.Sound = &sound
	}
	return domain.PushNotificationRequest{DeviceID: device.DeviceID, Payload: payload}
}

// Dispatcher builds payloads for resolved devices and submits them.
type Dispatcher struct {
	gateway PushGateway
	logger  *zap.Logger
}

func NewDispatcher(gateway PushGateway, l *zap.Logger) *Dispatcher {
	return &Dispatcher{gateway: gateway, logger: logger.OrNop(l)}
}

// Dispatch submits one payload per tokened device in a single gateway call.
// Devices without a token are skipped; an empty batch is not submitted.
func (d *Dispatcher) Dispatch(ctx context.Context, devices []domain.Device, req domain.NotificationSendRequest) (DispatchResult, error) {
	var result DispatchResult
	metadata := NotificationMetadata(req)
	batch := make([]domain.PushNotificationRequest, 0, len(devices))
	for _, dev := range devices {
		if !dev.Dispatchable() {
			d.logger.Warn("skipping device without push token",
				zap.String("device_id", dev.DeviceID),
				zap.String("user_id", dev.UserID),
			)
			result.Skipped = append(result.Skipped, dev.DeviceID)
			continue
		}
		batch = append(batch, BuildPayload(dev, req, metadata))
	}
	if len(batch) == 0 {
		return result, nil
	}
	if err := d.gateway.Send(ctx, batch); err != nil {
		return result, fmt.Errorf("submit push batch of %d: %w", len(batch), err)
	}
	result.Submitted = len(batch)
	return result, nil
}
