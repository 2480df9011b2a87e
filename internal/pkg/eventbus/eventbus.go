// Package eventbus defines the message-bus boundary the notification flow
// subscribes to, plus an in-process implementation for development and tests.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/conference-api/internal/pkg/logger"
	"go.uber.org/zap"
)

// Handler processes one delivered event payload. A non-nil error reports the
// delivery as failed to the bus; retry and dead-lettering are the bus's job.
type Handler func(ctx context.Context, payload []byte) error

// Publisher puts events on the bus.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) error
}

// Subscriber registers handlers for named event types.
type Subscriber interface {
	Subscribe(eventType string, h Handler) error
}

// Bus is both ends of the message bus.
type Bus interface {
	Publisher
	Subscriber
}

// PublishJSON encodes v as JSON and publishes it under eventType.
func PublishJSON(ctx context.Context, p Publisher, eventType string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return p.Publish(ctx, eventType, payload)
}

// Memory is a synchronous in-process Bus. Publish delivers to every handler
// subscribed to the event type before returning; handler failures are logged
// and do not fail the publish, matching a broker that has accepted the event.
type Memory struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

func NewMemory(l *zap.Logger) *Memory {
	return &Memory{handlers: make(map[string][]Handler), logger: logger.OrNop(l)}
}

func (m *Memory) Subscribe(eventType string, h Handler) error {
	if h == nil {
		return fmt.Errorf("subscribe %s: nil handler", eventType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[eventType] = append(m.handlers[eventType], h)
	return nil
}

func (m *Memory) Publish(ctx context.Context, eventType string, payload []byte) error {
	m.mu.RLock()
	handlers := append([]Handler(nil), m.handlers[eventType]...)
	m.mu.RUnlock()

	if len(handlers) == 0 {
		m.logger.Warn("no subscribers for event", zap.String("event_type", eventType))
		return nil
	}
	for _, h := range handlers {
		if err := h(ctx, payload); err != nil {
			m.logger.Error("event handling failed",
				zap.String("event_type", eventType),
				zap.Error(err),
			)
		}
	}
	return nil
}
