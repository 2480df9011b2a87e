package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/conference-api/internal/domain"
	"github.com/conference-api/internal/pkg/id"
)

type recordStore interface {
	Insert(ctx context.Context, rec *domain.SentNotificationRecord) error
	List(ctx context.Context, limit int) ([]domain.SentNotificationRecord, error)
}

// Clock returns the current time.
type Clock func() time.Time

// Recorder persists the fact that a notification was sent.
type Recorder struct {
	store recordStore
	clock Clock
}

func NewRecorder(store recordStore, clock Clock) *Recorder {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Recorder{store: store, clock: clock}
}

// Record stamps req with the current time and inserts it.
func (r *Recorder) Record(ctx context.Context, req domain.NotificationSendRequest) (*domain.SentNotificationRecord, error) {
	now := r.clock()
	rec := domain.NewSentNotificationRecord(id.NewAt(now), req, now)
	if err := r.store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert sent notification: %w", err)
	}
	return rec, nil
}
