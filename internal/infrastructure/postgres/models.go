package postgres

import (
	"time"

	"github.com/conference-api/internal/domain"
	"gorm.io/datatypes"
)

/* -------------------- GORM MODELS -------------------- */

// userModel keeps well-known attributes as columns. Anything else an
// audience may be filtered on lives in Attributes.
type userModel struct {
	ID                     string            `gorm:"primaryKey;type:varchar(26)"`
	Email                  string            `gorm:"type:varchar(320);uniqueIndex"`
	FirstName              string            `gorm:"type:varchar(100)"`
	LastName               string            `gorm:"type:varchar(100)"`
	Role                   string            `gorm:"type:varchar(32);not null;index"`
	OptedIntoNotifications bool              `gorm:"not null;default:false;index"`
	Attributes             datatypes.JSONMap `gorm:"type:jsonb;default:'{}'::jsonb"`
	CreatedAt              time.Time         `gorm:"not null"`
	UpdatedAt              time.Time         `gorm:"not null"`
}

func (userModel) TableName() string { return "users" }

type deviceModel struct {
	ID           string            `gorm:"primaryKey;type:varchar(26)"`
	UUID         string            `gorm:"column:device_uuid;type:varchar(64);index"`
	UserID       string            `gorm:"type:varchar(26);not null;index"`
	Token        *string           `gorm:"type:text"`
	Platform     string            `gorm:"type:varchar(16);not null;index"`
	AppVersionID string            `gorm:"type:varchar(26)"`
	Enable       bool              `gorm:"not null"`
	Attributes   datatypes.JSONMap `gorm:"type:jsonb;default:'{}'::jsonb"`
	CreatedAt    time.Time         `gorm:"not null"`
	UpdatedAt    time.Time         `gorm:"not null"`
}

func (deviceModel) TableName() string { return "devices" }

type notificationModel struct {
	ID                string    `gorm:"primaryKey;type:varchar(26)"`
	Title             string    `gorm:"type:varchar(200);not null"`
	Message           string    `gorm:"type:text;not null"`
	Urgent            bool      `gorm:"not null"`
	Scope             string    `gorm:"type:varchar(16);not null"`
	AssociatedEventID *string   `gorm:"type:varchar(64)"`
	Link              *string   `gorm:"type:text"`
	TargetRole        *string   `gorm:"type:varchar(32)"`
	TargetPlatform    *string   `gorm:"type:varchar(16)"`
	TimeSent          time.Time `gorm:"not null;index"`
}

func (notificationModel) TableName() string { return "conference_notifications" }

/* -------------------- Mapping -------------------- */

func (m userModel) toDomain() domain.User {
	return domain.User{
		UserID:                 m.ID,
		Email:                  m.Email,
		FirstName:              m.FirstName,
		LastName:               m.LastName,
		Role:                   m.Role,
		OptedIntoNotifications: m.OptedIntoNotifications,
		Attributes:             fromJSONMap(m.Attributes),
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) *userModel {
	return &userModel{
		ID:                     u.UserID,
		Email:                  u.Email,
		FirstName:              u.FirstName,
		LastName:               u.LastName,
		Role:                   u.Role,
		OptedIntoNotifications: u.OptedIntoNotifications,
		Attributes:             toJSONMap(u.Attributes),
		CreatedAt:              u.CreatedAt,
		UpdatedAt:              u.UpdatedAt,
	}
}

func (m deviceModel) toDomain() domain.Device {
	return domain.Device{
		DeviceID:     m.ID,
		UUID:         m.UUID,
		UserID:       m.UserID,
		Token:        m.Token,
		Platform:     m.Platform,
		AppVersionID: m.AppVersionID,
		Enable:       m.Enable,
		Attributes:   fromJSONMap(m.Attributes),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toDeviceModel(d *domain.Device) *deviceModel {
	return &deviceModel{
		ID:           d.DeviceID,
		UUID:         d.UUID,
		UserID:       d.UserID,
		Token:        d.Token,
		Platform:     d.Platform,
		AppVersionID: d.AppVersionID,
		Enable:       d.Enable,
		Attributes:   toJSONMap(d.Attributes),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (m notificationModel) toDomain() domain.SentNotificationRecord {
	return domain.SentNotificationRecord{
		NotificationID:    m.ID,
		Title:             m.Title,
		Message:           m.Message,
		Urgent:            m.Urgent,
		Scope:             domain.Scope(m.Scope),
		AssociatedEventID: m.AssociatedEventID,
		Link:              m.Link,
		TargetRole:        m.TargetRole,
		TargetPlatform:    m.TargetPlatform,
		TimeSent:          m.TimeSent,
	}
}

func toNotificationModel(r *domain.SentNotificationRecord) *notificationModel {
	return &notificationModel{
		ID:                r.NotificationID,
		Title:             r.Title,
		Message:           r.Message,
		Urgent:            r.Urgent,
		Scope:             string(r.Scope),
		AssociatedEventID: r.AssociatedEventID,
		Link:              r.Link,
		TargetRole:        r.TargetRole,
		TargetPlatform:    r.TargetPlatform,
		TimeSent:          r.TimeSent,
	}
}
