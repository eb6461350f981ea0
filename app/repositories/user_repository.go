package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/sweetshop/app/models"
)

// UserRepository is the gorm UserStore.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := conn(ctx, r.db).Create(user).Error; err != nil {
		return fmt.Errorf("users: create: %w", translate(err))
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&user).Error; err != nil {
		return user, fmt.Errorf("users: find %s: %w", id, translate(err))
	}
	return user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where("username = ?", username).Take(&user).Error; err != nil {
		return user, fmt.Errorf("users: find by username: %w", translate(err))
	}
	return user, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []models.User
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("users: find many: %w", translate(err))
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
