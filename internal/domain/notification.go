package domain

import "time"

// Scope classifies how broad a conference notification's audience is.
type Scope string

const (
	// ScopeEveryone targets every user that opted into notifications.
	ScopeEveryone Scope = "EVERYONE"
	// ScopeRole targets opted-in users holding TargetRole.
	ScopeRole Scope = "ROLE"
	// ScopePlatform targets devices of opted-in users running TargetPlatform.
	ScopePlatform Scope = "PLATFORM"
)

// Filterable attribute names. They double as storage column/attribute names.
const (
	AttrOptedIn      = "opted_into_notifications"
	AttrRole         = "role"
	AttrEmail        = "email"
	AttrPlatform     = "platform"
	AttrAppVersionID = "app_version_id"
)

// EventTypeSendNotification is the bus event carrying a NotificationSendRequest.
const EventTypeSendNotification = "conference.notification.send"

// NotificationSendRequest is the admin's request to notify conference attendees.
type NotificationSendRequest struct {
	Title             string  `json:"title" validate:"required,max=200"`
	Message           string  `json:"message" validate:"required"`
	Urgent            bool    `json:"urgent"`
	Scope             Scope   `json:"scope" validate:"required"`
	AssociatedEventID *string `json:"associated_event_id,omitempty"`
	Link              *string `json:"link,omitempty" validate:"omitempty,url"`
	TargetRole        *string `json:"target_role,omitempty"`
	TargetPlatform    *string `json:"target_platform,omitempty" validate:"omitempty,oneof=ios android"`
}

// Criteria is a set of attribute equality constraints. An empty Criteria
// places no restriction. Keys that name a first-class field (see IsUserField
// and IsDeviceField) match that field; any other key matches Attributes.
type Criteria map[string]string

// IsUserField reports whether name is stored as a User field rather than
// in User.Attributes.
func IsUserField(name string) bool {
	switch name {
	case AttrRole, AttrEmail:
		return true
	}
	return false
}

// IsDeviceField reports whether name is stored as a Device field rather
// than in Device.Attributes.
func IsDeviceField(name string) bool {
	switch name {
	case AttrPlatform, AttrAppVersionID:
		return true
	}
	return false
}

// NotificationTarget selects delivery destinations for one request.
type NotificationTarget struct {
	User   Criteria
	Device Criteria
}

// UserQuery is what the user store is asked for.
type UserQuery struct {
	OptedIntoNotifications bool
	Criteria               Criteria
}

// DeviceQuery is what the device store is asked for.
type DeviceQuery struct {
	OwnerIDs []string
	Criteria Criteria
}

// Push priorities and sounds understood by the push gateways.
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	SoundDefault   = "default"
)

// PushPayload is the device-facing content of one push notification.
type PushPayload struct {
	Title    string            `json:"title"`
	To       string            `json:"to"`
	Body     string            `json:"body"`
	Priority string            `json:"priority"`
	Data     map[string]string `json:"data"`
	Sound    *string           `json:"sound,omitempty"`
}

// PushNotificationRequest is one entry of a batch handed to a push gateway.
type PushNotificationRequest struct {
	DeviceID string      `json:"device_id"`
	Payload  PushPayload `json:"payload"`
}

// SentNotificationRecord is the stored evidence that a notification went out.
type SentNotificationRecord struct {
	NotificationID    string    `json:"id" dynamodbav:"notification_id"`
	Title             string    `json:"title" dynamodbav:"title"`
	Message           string    `json:"message" dynamodbav:"message"`
	Urgent            bool      `json:"urgent" dynamodbav:"urgent"`
	Scope             Scope     `json:"scope" dynamodbav:"scope"`
	AssociatedEventID *string   `json:"associated_event_id,omitempty" dynamodbav:"associated_event_id,omitempty"`
	Link              *string   `json:"link,omitempty" dynamodbav:"link,omitempty"`
	TargetRole        *string   `json:"target_role,omitempty" dynamodbav:"target_role,omitempty"`
	TargetPlatform    *string   `json:"target_platform,omitempty" dynamodbav:"target_platform,omitempty"`
	TimeSent          time.Time `json:"time_sent" dynamodbav:"time_sent"`
}

// NewSentNotificationRecord copies req into a record stamped with timeSent.
func NewSentNotificationRecord(id string, req NotificationSendRequest, timeSent time.Time) *SentNotificationRecord {
	return &SentNotificationRecord{
		NotificationID:    id,
		Title:             req.Title,
		Message:           req.Message,
		Urgent:            req.Urgent,
		Scope:             req.Scope,
		AssociatedEventID: req.AssociatedEventID,
		Link:              req.Link,
		TargetRole:        req.TargetRole,
		TargetPlatform:    req.TargetPlatform,
		TimeSent:          timeSent,
	}
}
