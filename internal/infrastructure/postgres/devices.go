package postgres

import (
	"context"
	"fmt"

	"github.com/conference-api/internal/domain"
	"gorm.io/gorm"
)

type DeviceRepo struct {
	db *gorm.DB
}

func NewDeviceRepo(db *gorm.DB) *DeviceRepo {
	return &DeviceRepo{db: db}
}

var deviceUpdateColumns = []string{"device_uuid", "user_id", "token", "platform", "app_version_id", "enable", "updated_at"}

// Put creates d or updates its fields. Stored attributes are kept when
// d.Attributes is nil.
func (r *DeviceRepo) Put(ctx context.Context, d *domain.Device) error {
	return r.putQuery(r.db.WithContext(ctx), d).Error
}

func (r *DeviceRepo) putQuery(tx *gorm.DB, d *domain.Device) *gorm.DB {
	return upsert(tx, toDeviceModel(d), deviceUpdateColumns, d.Attributes != nil)
}

// FindDevices returns enabled devices owned by one of q.OwnerIDs that
// match q.Criteria, in a single query.
func (r *DeviceRepo) FindDevices(ctx context.Context, q domain.DeviceQuery) ([]domain.Device, error) {
	if len(q.OwnerIDs) == 0 {
		return []domain.Device{}, nil
	}
	var rows []deviceModel
	if err := r.findDevicesQuery(r.db.WithContext(ctx), q).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	devices := make([]domain.Device, len(rows))
	for i, m := range rows {
		devices[i] = m.toDomain()
	}
	return devices, nil
}

func (r *DeviceRepo) findDevicesQuery(tx *gorm.DB, q domain.DeviceQuery) *gorm.DB {
	tx = tx.Model(&deviceModel{}).
		Where("enable = ?", true).
		Where("user_id IN ?", q.OwnerIDs)
	return applyCriteria(tx, q.Criteria, domain.IsDeviceField).Order("id")
}
