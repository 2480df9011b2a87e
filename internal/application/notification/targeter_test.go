package notification

import (
	"errors"
	"testing"

	"github.com/conference-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func someRequest() domain.NotificationSendRequest {
	return domain.NotificationSendRequest{
		Title:   "Update",
		Message: "Venue changed",
		Scope:   domain.ScopeEveryone,
	}
}

// --- targeting ---

func TestTargets_EveryoneHasNoCriteria(t *testing.T) {
	req := someRequest()
	req.TargetRole = strPtr("speaker") // ignored for EVERYONE

	target, err := TargetsForNotification(req)
	require.NoError(t, err)
	assert.Empty(t, target.User)
	assert.Empty(t, target.Device)
}

func TestTargets_Role(t *testing.T) {
	req := someRequest()
	req.Scope = domain.ScopeRole
	req.TargetRole = strPtr(" speaker ")

	target, err := TargetsForNotification(req)
	require.NoError(t, err)
	assert.Equal(t, domain.Criteria{domain.AttrRole: "speaker"}, target.User)
	assert.Empty(t, target.Device)
}

func TestTargets_RoleMissing(t *testing.T) {
	req := someRequest()
	req.Scope = domain.ScopeRole

	_, err := TargetsForNotification(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestTargets_Platform(t *testing.T) {
	req := someRequest()
	req.Scope = domain.ScopePlatform
	req.TargetPlatform = strPtr(domain.PlatformIOS)

	target, err := TargetsForNotification(req)
	require.NoError(t, err)
	assert.Empty(t, target.User)
	assert.Equal(t, domain.Criteria{domain.AttrPlatform: "ios"}, target.Device)
}

func TestTargets_PlatformMissing(t *testing.T) {
	req := someRequest()
	req.Scope = domain.ScopePlatform
	req.TargetPlatform = strPtr("  ")

	_, err := TargetsForNotification(req)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestTargets_UnknownScopeFailsFast(t *testing.T) {
	req := someRequest()
	req.Scope = "SPEAKERS_AND_FRIENDS"

	target, err := TargetsForNotification(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownScope))
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Empty(t, target.User)
}

// --- metadata ---

func TestMetadata_Event(t *testing.T) {
	req := someRequest()
	req.AssociatedEventID = strPtr("123")

	assert.Equal(t, map[string]string{
		"type":                 "conference-notification",
		"associatedObject":     "123",
		"associatedObjectType": "event",
	}, NotificationMetadata(req))
}

func TestMetadata_Link(t *testing.T) {
	req := someRequest()
	req.Link = strPtr("https://example.com/schedule")

	assert.Equal(t, map[string]string{
		"type":                 "conference-notification",
		"associatedObject":     "https://example.com/schedule",
		"associatedObjectType": "link",
	}, NotificationMetadata(req))
}

func TestMetadata_Neither(t *testing.T) {
	assert.Equal(t, map[string]string{"type": "conference-notification"}, NotificationMetadata(someRequest()))
}

func TestMetadata_EventWinsOverLink(t *testing.T) {
	req := someRequest()
	req.AssociatedEventID = strPtr("evt-1")
	req.Link = strPtr("https://example.com")

	meta := NotificationMetadata(req)
	assert.Equal(t, "evt-1", meta[MetaAssociatedObject])
	assert.Equal(t, "event", meta[MetaAssociatedObjectType])
}

func TestMetadata_BlankEventFallsBackToLink(t *testing.T) {
	req := someRequest()
	req.AssociatedEventID = strPtr("")
	req.Link = strPtr("https://example.com")

	assert.Equal(t, "link", NotificationMetadata(req)[MetaAssociatedObjectType])
}
