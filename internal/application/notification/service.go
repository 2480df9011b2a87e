package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/conference-api/internal/domain"
	"github.com/conference-api/internal/pkg/eventbus"
	"github.com/conference-api/internal/pkg/logger"
	"github.com/conference-api/internal/pkg/validate"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Service interface {
	// Send validates req and publishes it for asynchronous handling.
	Send(ctx context.Context, req domain.NotificationSendRequest) error
	// HandleSendRequest targets, resolves, dispatches and records one request.
	HandleSendRequest(ctx context.Context, req domain.NotificationSendRequest) (*domain.SentNotificationRecord, error)
	// ListSent returns sent notifications, newest first.
	ListSent(ctx context.Context, limit int) ([]domain.SentNotificationRecord, error)
	// Subscribe registers the send-request handler on the bus.
	Subscribe(sub eventbus.Subscriber) error
}

type ServiceDeps struct {
	UserRepo   userStore
	DeviceRepo deviceStore
	RecordRepo recordStore
	Push       PushGateway
	Bus        eventbus.Publisher
	Clock      Clock
	Logger     *zap.Logger
}

type service struct {
	resolver   *Resolver
	dispatcher *Dispatcher
	recorder   *Recorder
	records    recordStore
	bus        eventbus.Publisher
	logger     *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	l := logger.OrNop(deps.Logger).Named("conference-notifications")
	return &service{
		resolver:   NewResolver(deps.UserRepo, deps.DeviceRepo),
		dispatcher: NewDispatcher(deps.Push, l),
		recorder:   NewRecorder(deps.RecordRepo, deps.Clock),
		records:    deps.RecordRepo,
		bus:        deps.Bus,
		logger:     l,
	}
}

func (s *service) Send(ctx context.Context, req domain.NotificationSendRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if _, err := TargetsForNotification(req); err != nil {
		return err
	}
	if s.bus == nil {
		return fmt.Errorf("event bus is not configured")
	}
	if err := eventbus.PublishJSON(ctx, s.bus, domain.EventTypeSendNotification, req); err != nil {
		return fmt.Errorf("publish send request: %w", err)
	}
	return nil
}

func (s *service) HandleSendRequest(ctx context.Context, req domain.NotificationSendRequest) (*domain.SentNotificationRecord, error) {
	log := s.logger.With(zap.String("scope", string(req.Scope)), zap.String("title", req.Title))

	target, err := TargetsForNotification(req)
	if err != nil {
		return nil, err
	}
	log.Debug("targeted", zap.Any("user_criteria", target.User), zap.Any("device_criteria", target.Device))

	devices, err := s.resolver.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	log.Debug("resolved", zap.Int("devices", len(devices)))

	result, err := s.dispatcher.Dispatch(ctx, devices, req)
	if err != nil {
		return nil, err
	}

	rec, err := s.recorder.Record(ctx, req)
	if err != nil {
		log.Error("notification sent but not recorded", zap.Int("submitted", result.Submitted), zap.Error(err))
		return nil, err
	}
	log.Info("conference notification sent",
		zap.String("notification_id", rec.NotificationID),
		zap.Int("submitted", result.Submitted),
		zap.Int("skipped", len(result.Skipped)),
	)
	return rec, nil
}

func (s *service) ListSent(ctx context.Context, limit int) ([]domain.SentNotificationRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.records.List(ctx, limit)
}

func (s *service) Subscribe(sub eventbus.Subscriber) error {
	return sub.Subscribe(domain.EventTypeSendNotification, s.handleEvent)
}

// handleEvent is the bus entry point; a returned error marks the delivery failed.
func (s *service) handleEvent(ctx context.Context, payload []byte) error {
	var req domain.NotificationSendRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("decode send request: %v: %w", err, domain.ErrBadRequest)
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	_, err := s.HandleSendRequest(ctx, req)
	return err
}
