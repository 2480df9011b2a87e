package validate

import (
	"errors"
	"testing"

	"github.com/conference-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_Valid(t *testing.T) {
	req := domain.NotificationSendRequest{Title: "Update", Message: "Venue changed", Scope: domain.ScopeEveryone}
	assert.NoError(t, Struct(req))
}

func TestStruct_MissingFields(t *testing.T) {
	err := Struct(domain.NotificationSendRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Contains(t, err.Error(), "field 'Title' failed 'required'")
	assert.Contains(t, err.Error(), "field 'Scope' failed 'required'")
}

func TestStruct_BadLink(t *testing.T) {
	link := "not a url"
	req := domain.NotificationSendRequest{Title: "t", Message: "m", Scope: domain.ScopeEveryone, Link: &link}
	err := Struct(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Link' failed 'url'")
}

func TestStruct_UnknownPlatform(t *testing.T) {
	platform := "windows-phone"
	req := domain.NotificationSendRequest{Title: "t", Message: "m", Scope: domain.ScopePlatform, TargetPlatform: &platform}
	err := Struct(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'TargetPlatform' failed 'oneof'")
}
