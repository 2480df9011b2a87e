package domain

import "time"

// User is owned by the user-management side of the app; the notification
// flow only reads it. Attributes holds audience attributes without a
// dedicated field, such as a track or badge tier.
type User struct {
	UserID                 string            `json:"id" dynamodbav:"user_id"`
	Email                  string            `json:"email" dynamodbav:"email"`
	FirstName              string            `json:"first_name" dynamodbav:"first_name"`
	LastName               string            `json:"last_name" dynamodbav:"last_name"`
	Role                   string            `json:"role" dynamodbav:"role"`
	OptedIntoNotifications bool              `json:"opted_into_notifications" dynamodbav:"opted_into_notifications"`
	Attributes             map[string]string `json:"attributes,omitempty" dynamodbav:"attributes,omitempty"`
	CreatedAt              time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt              time.Time         `json:"updated" dynamodbav:"updated_at"`
}
