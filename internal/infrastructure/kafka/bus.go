package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/conference-api/internal/pkg/eventbus"
	"go.uber.org/zap"
)

// FailedSuffix is appended to a topic to name its dead-letter topic.
const FailedSuffix = ".failed"

// Message headers set by the bus.
const (
	HeaderEventType = "event-type"
	HeaderError     = "error"
)

// Bus publishes events to the topic named after their event type and feeds
// consumed messages to the subscribed handlers. A message whose handler
// fails is forwarded to <topic>.failed with the error in a header and is
// then committed.
type Bus struct {
	producer sarama.SyncProducer
	group    sarama.ConsumerGroup
	logger   *zap.Logger

	mu       sync.RWMutex
	handlers map[string]eventbus.Handler
}

var _ eventbus.Bus = (*Bus)(nil)

// NewConfig returns the sarama settings used for both ends of the bus.
func NewConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	return cfg
}

// Dial connects a producer and a consumer group to brokers.
func Dial(brokers []string, groupID string, logger *zap.Logger) (*Bus, error) {
	cfg := NewConfig()
	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		_ = prod.Close()
		return nil, fmt.Errorf("kafka consumer group: %w", err)
	}
	return New(prod, group, logger), nil
}

// New wraps an existing producer and consumer group. group may be nil for a
// publish-only bus.
func New(producer sarama.SyncProducer, group sarama.ConsumerGroup, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		producer: producer,
		group:    group,
		logger:   logger.Named("kafka"),
		handlers: make(map[string]eventbus.Handler),
	}
}

func (b *Bus) Publish(ctx context.Context, eventType string, payload []byte) error {
	msg := &sarama.ProducerMessage{
		Topic:   eventType,
		Value:   sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{{Key: []byte(HeaderEventType), Value: []byte(eventType)}},
	}
	done := make(chan error, 1)
	go func() {
		_, _, err := b.producer.SendMessage(msg)
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("publish %s: %w", eventType, err)
		}
		return nil
	}
}

// Subscribe registers h for eventType. Only one handler per event type is
// kept; subscriptions must happen before Run.
func (b *Bus) Subscribe(eventType string, h eventbus.Handler) error {
	if h == nil {
		return fmt.Errorf("subscribe %s: nil handler", eventType)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.handlers[eventType]; ok {
		return fmt.Errorf("subscribe %s: handler already registered", eventType)
	}
	b.handlers[eventType] = h
	return nil
}

func (b *Bus) topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.handlers))
	for t := range b.handlers {
		out = append(out, t)
	}
	return out
}

// Run consumes subscribed topics until ctx is cancelled.
func (b *Bus) Run(ctx context.Context) error {
	if b.group == nil {
		return errors.New("kafka bus has no consumer group")
	}
	topics := b.topics()
	if len(topics) == 0 {
		return errors.New("kafka bus has no subscriptions")
	}
	go func() {
		for err := range b.group.Errors() {
			b.logger.Error("consumer group error", zap.Error(err))
		}
	}()
	for {
		if err := b.group.Consume(ctx, topics, b); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			b.logger.Error("consume failed", zap.Error(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (b *Bus) Close() error {
	var errs []error
	if b.group != nil {
		errs = append(errs, b.group.Close())
	}
	errs = append(errs, b.producer.Close())
	return errors.Join(errs...)
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (b *Bus) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (b *Bus) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (b *Bus) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := b.handle(ctx, msg); err != nil {
				// Leave the message uncommitted so it is redelivered.
				return err
			}
			sess.MarkMessage(msg, "")
		case <-ctx.Done():
			return nil
		}
	}
}

// handle runs the handler for msg. It only returns an error when the
// message could neither be handled nor dead-lettered.
func (b *Bus) handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	b.mu.RLock()
	h, ok := b.handlers[msg.Topic]
	b.mu.RUnlock()
	if !ok {
		b.logger.Warn("no handler for topic", zap.String("topic", msg.Topic))
		return nil
	}

	herr := h(ctx, msg.Value)
	if herr == nil {
		return nil
	}
	b.logger.Error("event handling failed",
		zap.String("topic", msg.Topic),
		zap.Int32("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.Error(herr),
	)
	if err := b.deadLetter(msg, herr); err != nil {
		return fmt.Errorf("dead-letter %s@%d: %w", msg.Topic, msg.Offset, err)
	}
	return nil
}

func (b *Bus) deadLetter(msg *sarama.ConsumerMessage, cause error) error {
	headers := []sarama.RecordHeader{
		{Key: []byte(HeaderEventType), Value: []byte(msg.Topic)},
		{Key: []byte(HeaderError), Value: []byte(cause.Error())},
	}
	_, _, err := b.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   msg.Topic + FailedSuffix,
		Key:     sarama.ByteEncoder(msg.Key),
		Value:   sarama.ByteEncoder(msg.Value),
		Headers: headers,
	})
	return err
}
