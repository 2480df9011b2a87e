package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/conference-api/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepo stores sent conference notifications. It is append-only.
type NotificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Insert(ctx context.Context, rec *domain.SentNotificationRecord) error {
	err := r.db.WithContext(ctx).Create(toNotificationModel(rec)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("notification %s already recorded: %w", rec.NotificationID, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (r *NotificationRepo) List(ctx context.Context, limit int) ([]domain.SentNotificationRecord, error) {
	var rows []notificationModel
	if err := r.listQuery(r.db.WithContext(ctx), limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	recs := make([]domain.SentNotificationRecord, len(rows))
	for i, m := range rows {
		recs[i] = m.toDomain()
	}
	return recs, nil
}

func (r *NotificationRepo) listQuery(tx *gorm.DB, limit int) *gorm.DB {
	tx = tx.Model(&notificationModel{}).Order("time_sent DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	return tx
}
