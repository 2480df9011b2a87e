package http

import (
	"context"

	"github.com/conference-api/internal/domain"
	"github.com/conference-api/internal/transport/http/middleware"
	"go.uber.org/zap"
)

// NotificationService is what the router needs from the notification flow.
type NotificationService interface {
	Send(ctx context.Context, req domain.NotificationSendRequest) error
	ListSent(ctx context.Context, limit int) ([]domain.SentNotificationRecord, error)
}

// Deps holds the dependencies the router wires into handlers.
type Deps struct {
	Notifications NotificationService
	// Verifier authenticates admin requests. When nil, admin routes answer
	// 401 to every request.
	Verifier middleware.TokenVerifier
	Logger   *zap.Logger
}
