package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/conference-api/internal/domain"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// userUpdateColumns are overwritten when Put hits an existing user.
var userUpdateColumns = []string{"email", "first_name", "last_name", "role", "opted_into_notifications", "updated_at"}

// Put creates u or updates its fields. Stored attributes are kept when
// u.Attributes is nil.
func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	return r.putQuery(r.db.WithContext(ctx), u).Error
}

func (r *UserRepo) putQuery(tx *gorm.DB, u *domain.User) *gorm.DB {
	return upsert(tx, toUserModel(u), userUpdateColumns, u.Attributes != nil)
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	u := m.toDomain()
	return &u, nil
}

// FindUsers runs one query for the users matching q.
func (r *UserRepo) FindUsers(ctx context.Context, q domain.UserQuery) ([]domain.User, error) {
	var rows []userModel
	if err := r.findUsersQuery(r.db.WithContext(ctx), q).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	users := make([]domain.User, len(rows))
	for i, m := range rows {
		users[i] = m.toDomain()
	}
	return users, nil
}

func (r *UserRepo) findUsersQuery(tx *gorm.DB, q domain.UserQuery) *gorm.DB {
	tx = tx.Model(&userModel{})
	if q.OptedIntoNotifications {
		tx = tx.Where("opted_into_notifications = ?", true)
	}
	return applyCriteria(tx, q.Criteria, domain.IsUserField).Order("id")
}
