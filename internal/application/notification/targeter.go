package notification

import (
	"fmt"
	"strings"

	"github.com/conference-api/internal/domain"
)

// Metadata keys and values attached to every conference push payload. The
// attendee app routes on these when a notification is tapped.
const (
	MetaType                 = "type"
	MetaAssociatedObject     = "associatedObject"
	MetaAssociatedObjectType = "associatedObjectType"

	metaTypeConference    = "conference-notification"
	associatedObjectEvent = "event"
	associatedObjectLink  = "link"
)

// ErrUnknownScope is returned for a scope no targeting rule exists for.
var ErrUnknownScope = fmt.Errorf("unknown notification scope: %w", domain.ErrBadRequest)

// TargetsForNotification maps a request to the user and device criteria
// that select its audience. The opt-in constraint is not part of the target;
// the resolver always adds it.
func TargetsForNotification(req domain.NotificationSendRequest) (domain.NotificationTarget, error) {
	switch req.Scope {
	case domain.ScopeEveryone:
		return domain.NotificationTarget{}, nil
	case domain.ScopeRole:
		role := trimmed(req.TargetRole)
		if role == "" {
			return domain.NotificationTarget{}, fmt.Errorf("scope %s requires target_role: %w", req.Scope, domain.ErrBadRequest)
		}
		return domain.NotificationTarget{User: domain.Criteria{domain.AttrRole: role}}, nil
	case domain.ScopePlatform:
		platform := trimmed(req.TargetPlatform)
		if platform == "" {
			return domain.NotificationTarget{}, fmt.Errorf("scope %s requires target_platform: %w", req.Scope, domain.ErrBadRequest)
		}
		return domain.NotificationTarget{Device: domain.Criteria{domain.AttrPlatform: platform}}, nil
	default:
		return domain.NotificationTarget{}, fmt.Errorf("%q: %w", req.Scope, ErrUnknownScope)
	}
}

// NotificationMetadata builds the data map sent with each push. An
// associated event takes precedence over a link when both are set.
func NotificationMetadata(req domain.NotificationSendRequest) map[string]string {
	meta := map[string]string{MetaType: metaTypeConference}
	if event := trimmed(req.AssociatedEventID); event != "" {
		meta[MetaAssociatedObject] = event
		meta[MetaAssociatedObjectType] = associatedObjectEvent
	} else if link := trimmed(req.Link); link != "" {
		meta[MetaAssociatedObject] = link
		meta[MetaAssociatedObjectType] = associatedObjectLink
	}
	return meta
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
