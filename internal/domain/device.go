package domain

import "time"

// Device platforms reported by the attendee app.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

type Device struct {
	DeviceID     string            `json:"id" dynamodbav:"device_id"`
	UUID         string            `json:"uuid" dynamodbav:"device_uuid"`
	UserID       string            `json:"user_id" dynamodbav:"user_id"`
	Token        *string           `json:"token" dynamodbav:"token"`
	Platform     string            `json:"platform" dynamodbav:"platform"`
	AppVersionID string            `json:"app_version_id" dynamodbav:"app_version_id"`
	Enable       bool              `json:"enable" dynamodbav:"enable"`
	Attributes   map[string]string `json:"attributes,omitempty" dynamodbav:"attributes,omitempty"`
	CreatedAt    time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time         `json:"updated" dynamodbav:"updated_at"`
}

// Dispatchable reports whether the device has a push token to deliver to.
func (d Device) Dispatchable() bool {
	return d.Token != nil && *d.Token != ""
}
