package notification

import (
	"context"
	"fmt"

	"github.com/conference-api/internal/domain"
)

type userStore interface {
	FindUsers(ctx context.Context, q domain.UserQuery) ([]domain.User, error)
}

type deviceStore interface {
	FindDevices(ctx context.Context, q domain.DeviceQuery) ([]domain.Device, error)
}

// UserQueryFor merges target criteria into the mandatory opt-in constraint.
// Criteria add to the query; an opted_into_notifications entry in them is
// dropped so the constraint can never be relaxed.
func UserQueryFor(target domain.NotificationTarget) domain.UserQuery {
	criteria := make(domain.Criteria, len(target.User))
	for k, v := range target.User {
		if k == domain.AttrOptedIn {
			continue
		}
		criteria[k] = v
	}
	return domain.UserQuery{OptedIntoNotifications: true, Criteria: criteria}
}

// Resolver turns a NotificationTarget into concrete devices with at most two
// store round trips: one for users, one for their devices.
type Resolver struct {
	users   userStore
	devices deviceStore
}

func NewResolver(users userStore, devices deviceStore) *Resolver {
	return &Resolver{users: users, devices: devices}
}

// Resolve returns the devices owned by matching opted-in users, in store
// order. No users means no device query and an empty result.
func (r *Resolver) Resolve(ctx context.Context, target domain.NotificationTarget) ([]domain.Device, error) {
	users, err := r.users.FindUsers(ctx, UserQueryFor(target))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	ownerIDs := userIDs(users)
	if len(ownerIDs) == 0 {
		return []domain.Device{}, nil
	}

	devices, err := r.devices.FindDevices(ctx, domain.DeviceQuery{
		OwnerIDs: ownerIDs,
		Criteria: target.Device,
	})
	if err != nil {
		return nil, fmt.Errorf("find devices: %w", err)
	}
	return devices, nil
}

func userIDs(users []domain.User) []string {
	seen := make(map[string]struct{}, len(users))
	ids := make([]string, 0, len(users))
	for _, u := range users {
		if _, ok := seen[u.UserID]; ok {
			continue
		}
		seen[u.UserID] = struct{}{}
		ids = append(ids, u.UserID)
	}
	return ids
}
