package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/conference-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserQueryFor_EmptyTargetIsOptInOnly(t *testing.T) {
	q := UserQueryFor(domain.NotificationTarget{})
	assert.True(t, q.OptedIntoNotifications)
	assert.Empty(t, q.Criteria)
}

func TestUserQueryFor_CriteriaCannotDropOptIn(t *testing.T) {
	q := UserQueryFor(domain.NotificationTarget{User: domain.Criteria{
		domain.AttrOptedIn: "false",
		domain.AttrRole:    "speaker",
	}})
	assert.True(t, q.OptedIntoNotifications)
	assert.Equal(t, domain.Criteria{domain.AttrRole: "speaker"}, q.Criteria)
}

func TestResolve_PassesDeviceCriteriaAndOwners(t *testing.T) {
	users := &mockUserStore{}
	devices := &mockDeviceStore{}
	users.On("FindUsers", mock.Anything, mock.Anything).Return(optedIn("u1", "u2", "u1"), nil)
	want := []domain.Device{tokenedDevice("d2", "u2"), tokenedDevice("d1", "u1")}
	devices.On("FindDevices", mock.Anything, domain.DeviceQuery{
		OwnerIDs: []string{"u1", "u2"},
		Criteria: domain.Criteria{domain.AttrPlatform: "android"},
	}).Return(want, nil).Once()

	got, err := NewResolver(users, devices).Resolve(context.Background(), domain.NotificationTarget{
		Device: domain.Criteria{domain.AttrPlatform: "android"},
	})

	require.NoError(t, err)
	assert.Equal(t, want, got) // store order preserved
	users.AssertNumberOfCalls(t, "FindUsers", 1)
	devices.AssertExpectations(t)
}

func TestResolve_NoUsersShortCircuits(t *testing.T) {
	users := &mockUserStore{}
	devices := &mockDeviceStore{}
	users.On("FindUsers", mock.Anything, mock.Anything).Return(nil, nil)

	got, err := NewResolver(users, devices).Resolve(context.Background(), domain.NotificationTarget{})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	devices.AssertNotCalled(t, "FindDevices", mock.Anything, mock.Anything)
}

func TestResolve_DeviceStoreFailure(t *testing.T) {
	users := &mockUserStore{}
	devices := &mockDeviceStore{}
	users.On("FindUsers", mock.Anything, mock.Anything).Return(optedIn("u1"), nil)
	devices.On("FindDevices", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	_, err := NewResolver(users, devices).Resolve(context.Background(), domain.NotificationTarget{})
	assert.ErrorContains(t, err, "find devices: timeout")
}
