// Package logpush is a push gateway that only logs what it would send.
// It backs local development where no push provider is configured.
package logpush

import (
	"context"

	"github.com/conference-api/internal/domain"
	"go.uber.org/zap"
)

type Gateway struct {
	logger *zap.Logger
}

func NewGateway(logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{logger: logger.Named("push")}
}

func (g *Gateway) Send(_ context.Context, batch []domain.PushNotificationRequest) error {
	for _, r := range batch {
		g.logger.Info("push",
			zap.String("device_id", r.DeviceID),
			zap.String("to", r.Payload.To),
			zap.String("title", r.Payload.Title),
			zap.String("priority", r.Payload.Priority),
			zap.Any("data", r.Payload.Data),
		)
	}
	return nil
}
